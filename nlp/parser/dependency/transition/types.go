package transition

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"sbparse/alg/graph"
	nlp "sbparse/nlp/types"
	"sbparse/util"
)

const (
	// feature key of the secondary part-of-speech slot
	FEAT_POS2 = "p2"

	NO_HEAD = -1
)

var (
	ErrNodeRange     = errors.New("dependency: node id out of range")
	ErrRootDependent = errors.New("dependency: root cannot be a dependent")
	ErrCycle         = errors.New("dependency: head assignment creates a cycle")
	ErrIncomplete    = errors.New("dependency: tree is incomplete")
	ErrDisconnected  = errors.New("dependency: nodes not connected to root")
)

// DepNode is one token of a sentence; Id 0 is the artificial root. Head is
// NO_HEAD until the node is attached.
type DepNode struct {
	Id    int
	Token string
	Lemma string
	POS   string
	Feats map[string]string
	Head  int
	Label string
}

var _ nlp.DepNode = &DepNode{}

func (n *DepNode) ID() int {
	return n.Id
}

func (n *DepNode) String() string {
	return n.Token
}

func (n *DepNode) Equal(otherEq util.Equaler) bool {
	other, ok := otherEq.(*DepNode)
	if !ok {
		return false
	}
	if n.Id != other.Id || n.Token != other.Token || n.Lemma != other.Lemma ||
		n.POS != other.POS || n.Head != other.Head || n.Label != other.Label {
		return false
	}
	if len(n.Feats) == 0 && len(other.Feats) == 0 {
		return true
	}
	return reflect.DeepEqual(n.Feats, other.Feats)
}

func (n *DepNode) HasHead() bool {
	return n.Head != NO_HEAD
}

func (n *DepNode) Feat(key string) (string, bool) {
	val, exists := n.Feats[key]
	return val, exists
}

func (n *DepNode) SetFeat(key, val string) {
	if n.Feats == nil {
		n.Feats = make(map[string]string, 1)
	}
	n.Feats[key] = val
}

func (n *DepNode) Copy() *DepNode {
	cp := *n
	if n.Feats != nil {
		cp.Feats = make(map[string]string, len(n.Feats))
		for k, v := range n.Feats {
			cp.Feats[k] = v
		}
	}
	return &cp
}

type BasicDepArc struct {
	Head        int
	Modifier    int
	RawRelation nlp.DepRel
}

var _ nlp.LabeledDepArc = &BasicDepArc{}

// ID of an arc is the id of its modifier
func (arc *BasicDepArc) ID() int {
	return arc.Modifier
}

func (arc *BasicDepArc) Vertices() []int {
	return []int{arc.Head, arc.Modifier}
}

func (arc *BasicDepArc) From() int {
	return arc.Modifier
}

func (arc *BasicDepArc) To() int {
	return arc.Head
}

func (arc *BasicDepArc) GetHead() int {
	return arc.Head
}

func (arc *BasicDepArc) GetModifier() int {
	return arc.Modifier
}

func (arc *BasicDepArc) GetRelation() nlp.DepRel {
	return arc.RawRelation
}

func (arc *BasicDepArc) Equal(otherEq util.Equaler) bool {
	other, ok := otherEq.(*BasicDepArc)
	return ok && *arc == *other
}

func (arc *BasicDepArc) String() string {
	return fmt.Sprintf("(%d,%s,%d)", arc.GetHead(), arc.RawRelation, arc.GetModifier())
}

// DepTree is an arena of nodes indexed by position. Dependents are never
// stored; they are found by scanning for nodes whose head is the node.
type DepTree struct {
	Nodes []*DepNode
}

var _ nlp.LabeledDependencyGraph = &DepTree{}

func NewDepTree(sent nlp.TaggedSentence) *DepTree {
	tokens := sent.TaggedTokens()
	t := &DepTree{Nodes: make([]*DepNode, len(tokens)+1)}
	t.Nodes[0] = &DepNode{Id: 0, Token: nlp.ROOT_TOKEN, Lemma: nlp.ROOT_TOKEN, POS: nlp.ROOT_TOKEN, Head: NO_HEAD}
	for i, tok := range tokens {
		t.Nodes[i+1] = &DepNode{Id: i + 1, Token: tok.Token, Lemma: tok.Lemma, POS: tok.POS, Head: NO_HEAD}
	}
	return t
}

// Len is the number of nodes including the root
func (t *DepTree) Len() int {
	return len(t.Nodes)
}

func (t *DepTree) inRange(i int) bool {
	return i >= 0 && i < len(t.Nodes)
}

func (t *DepTree) Node(i int) *DepNode {
	if !t.inRange(i) {
		return nil
	}
	return t.Nodes[i]
}

// SetHead attaches dep under head, replacing any previous head
func (t *DepTree) SetHead(dep, head int, label string) error {
	if !t.inRange(dep) || !t.inRange(head) {
		return fmt.Errorf("%w: %d <- %d of %d", ErrNodeRange, dep, head, len(t.Nodes))
	}
	if dep == 0 {
		return ErrRootDependent
	}
	if dep == head || t.IsDescendantOf(head, dep) {
		return fmt.Errorf("%w: %d <- %d", ErrCycle, dep, head)
	}
	t.Nodes[dep].Head = head
	t.Nodes[dep].Label = label
	return nil
}

func (t *DepTree) ClearHead(i int) {
	if t.inRange(i) {
		t.Nodes[i].Head = NO_HEAD
		t.Nodes[i].Label = ""
	}
}

func (t *DepTree) IsDependentOf(i, h int) bool {
	return t.inRange(i) && t.Nodes[i].Head == h && h != NO_HEAD
}

// IsDescendantOf reports whether a is on the head chain above i
func (t *DepTree) IsDescendantOf(i, a int) bool {
	if !t.inRange(i) || !t.inRange(a) {
		return false
	}
	cur := t.Nodes[i].Head
	for steps := 0; cur != NO_HEAD && steps < len(t.Nodes); steps++ {
		if cur == a {
			return true
		}
		cur = t.Nodes[cur].Head
	}
	return false
}

// Dependents lists the dependents of h with ids in [from, to)
func (t *DepTree) Dependents(h, from, to int) []int {
	var retval []int
	if from < 1 {
		from = 1
	}
	if to > len(t.Nodes) {
		to = len(t.Nodes)
	}
	for i := from; i < to; i++ {
		if t.Nodes[i].Head == h {
			retval = append(retval, i)
		}
	}
	return retval
}

func (t *DepTree) Copy() *DepTree {
	cp := &DepTree{Nodes: make([]*DepNode, len(t.Nodes))}
	for i, n := range t.Nodes {
		cp.Nodes[i] = n.Copy()
	}
	return cp
}

// Validate checks that every non-root node is headed, labeled and reaches
// the root
func (t *DepTree) Validate() error {
	var missing []string
	for _, n := range t.Nodes[1:] {
		if !n.HasHead() || n.Label == "" {
			missing = append(missing, fmt.Sprintf("%d:%s", n.Id, n.Token))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: unattached %s", ErrIncomplete, strings.Join(missing, " "))
	}
	orphans, err := graph.Orphans(t, 0)
	if err != nil {
		return err
	}
	if len(orphans) == 0 {
		return nil
	}
	// with one head per node, any cycle leaves its nodes orphaned
	cycles, err := graph.Cycles(t)
	if err != nil {
		return err
	}
	if len(cycles) > 0 {
		return fmt.Errorf("%w: %v, %w %v", ErrDisconnected, orphans, ErrCycle, cycles[0])
	}
	return fmt.Errorf("%w: %v", ErrDisconnected, orphans)
}

// graph view

func (t *DepTree) GetVertices() []int {
	return util.RangeInt(len(t.Nodes))
}

func (t *DepTree) GetEdges() []int {
	retval := make([]int, 0, len(t.Nodes))
	for _, n := range t.Nodes {
		if n.HasHead() {
			retval = append(retval, n.Id)
		}
	}
	return retval
}

func (t *DepTree) GetVertex(n int) graph.Vertex {
	if !t.inRange(n) {
		return nil
	}
	return t.Nodes[n]
}

func (t *DepTree) arc(n int) *BasicDepArc {
	if !t.inRange(n) || !t.Nodes[n].HasHead() {
		return nil
	}
	return &BasicDepArc{t.Nodes[n].Head, n, nlp.DepRel(t.Nodes[n].Label)}
}

func (t *DepTree) GetEdge(n int) graph.Edge {
	if arc := t.arc(n); arc != nil {
		return arc
	}
	return nil
}

func (t *DepTree) GetDirectedEdge(n int) graph.DirectedEdge {
	if arc := t.arc(n); arc != nil {
		return arc
	}
	return nil
}

func (t *DepTree) NumberOfVertices() int {
	return len(t.Nodes)
}

func (t *DepTree) NumberOfEdges() int {
	var count int
	for _, n := range t.Nodes {
		if n.HasHead() {
			count++
		}
	}
	return count
}

func (t *DepTree) GetNode(n int) nlp.DepNode {
	if !t.inRange(n) {
		return nil
	}
	return t.Nodes[n]
}

func (t *DepTree) GetArc(n int) nlp.DepArc {
	if arc := t.arc(n); arc != nil {
		return arc
	}
	return nil
}

func (t *DepTree) GetLabeledArc(n int) nlp.LabeledDepArc {
	if arc := t.arc(n); arc != nil {
		return arc
	}
	return nil
}

func (t *DepTree) NumberOfNodes() int {
	return t.NumberOfVertices()
}

func (t *DepTree) NumberOfArcs() int {
	return t.NumberOfEdges()
}

func (t *DepTree) Equal(otherEq util.Equaler) bool {
	other, ok := otherEq.(nlp.LabeledDependencyGraph)
	if !ok || t.NumberOfNodes() != other.NumberOfNodes() || t.NumberOfArcs() != other.NumberOfArcs() {
		return false
	}
	for _, n := range t.Nodes {
		if other.GetNode(n.Id).String() != n.Token {
			return false
		}
		arc, otherArc := t.GetLabeledArc(n.Id), other.GetLabeledArc(n.Id)
		if (arc == nil) != (otherArc == nil) {
			return false
		}
		if arc != nil && (arc.GetHead() != otherArc.GetHead() || arc.GetRelation() != otherArc.GetRelation()) {
			return false
		}
	}
	return true
}

func (t *DepTree) Sentence() nlp.Sentence {
	return t.TaggedSentence()
}

func (t *DepTree) TaggedSentence() nlp.TaggedSentence {
	sent := make(nlp.BasicTaggedSentence, len(t.Nodes)-1)
	for i, n := range t.Nodes[1:] {
		sent[i] = nlp.TaggedToken{Token: n.Token, Lemma: n.Lemma, POS: n.POS}
	}
	return sent
}

func (t *DepTree) StringEdges() string {
	arcs := make([]string, 0, len(t.Nodes))
	for _, id := range t.GetEdges() {
		arcs = append(arcs, t.arc(id).String())
	}
	return strings.Join(arcs, "\n")
}
