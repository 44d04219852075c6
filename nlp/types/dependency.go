package types

import (
	"sbparse/alg/graph"
	"sbparse/util"
)

type DepNode interface {
	graph.Vertex
	String() string
}

type DepArc interface {
	graph.DirectedEdge
	GetModifier() int
	GetHead() int
	String() string
}

type DepRel string

func (d DepRel) String() string {
	return string(d)
}

type LabeledDepArc interface {
	DepArc
	GetRelation() DepRel
}

type Labeled interface {
	GetLabeledArc(int) LabeledDepArc
}

// DependencyGraph is the read-only view of a finished parse. Arc ids are the
// ids of their modifiers.
type DependencyGraph interface {
	graph.DirectedGraph
	GetNode(int) DepNode
	GetArc(int) DepArc
	NumberOfNodes() int
	NumberOfArcs() int
	Equal(otherEq util.Equaler) bool
	Sentence() Sentence
	TaggedSentence() TaggedSentence
}

type LabeledDependencyGraph interface {
	DependencyGraph
	Labeled
}
