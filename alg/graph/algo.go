package graph

import (
	"fmt"
	"strconv"

	"github.com/katalvlaran/lvlath/bfs"
	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
)

func vertexKey(v int) string {
	return strconv.Itoa(v)
}

// Arborescence copies g into a directed lvlath graph with one governor to
// dependent edge for every directed edge of g. Self-governed vertices keep
// their loop.
func Arborescence(g DirectedGraph) (*core.Graph, error) {
	ag := core.NewGraph(core.WithDirected(true), core.WithLoops())
	for _, v := range g.GetVertices() {
		if err := ag.AddVertex(vertexKey(v)); err != nil {
			return nil, err
		}
	}
	for _, edgeID := range g.GetEdges() {
		edge := g.GetDirectedEdge(edgeID)
		if edge == nil {
			continue
		}
		if _, err := ag.AddEdge(vertexKey(edge.To()), vertexKey(edge.From()), 0); err != nil {
			return nil, fmt.Errorf("graph: edge %d (%d <- %d): %w", edgeID, edge.To(), edge.From(), err)
		}
	}
	return ag, nil
}

// Orphans returns the vertices of g, in GetVertices order, that root does
// not reach through governor to dependent edges: vertices without a
// governor, on a cycle, or hanging below one.
func Orphans(g DirectedGraph, root int) ([]int, error) {
	ag, err := Arborescence(g)
	if err != nil {
		return nil, err
	}
	reached, err := bfs.BFS(ag, vertexKey(root))
	if err != nil {
		return nil, fmt.Errorf("graph: search from %d: %w", root, err)
	}
	var orphans []int
	for _, v := range g.GetVertices() {
		if _, ok := reached.Depth[vertexKey(v)]; !ok {
			orphans = append(orphans, v)
		}
	}
	return orphans, nil
}

// Cycles returns every governor cycle of g, each listed once starting from
// its lowest vertex key and without repeating it at the end.
func Cycles(g DirectedGraph) ([][]int, error) {
	ag, err := Arborescence(g)
	if err != nil {
		return nil, err
	}
	_, found, err := dfs.DetectCycles(ag)
	if err != nil {
		return nil, err
	}
	cycles := make([][]int, len(found))
	for i, cycle := range found {
		// closed: the first vertex repeats at the end
		ids := make([]int, len(cycle)-1)
		for j, key := range cycle[:len(cycle)-1] {
			if ids[j], err = strconv.Atoi(key); err != nil {
				return nil, fmt.Errorf("graph: cycle vertex %q: %w", key, err)
			}
		}
		cycles[i] = ids
	}
	return cycles, nil
}
