package transition

import (
	"fmt"

	"sbparse/alg/search"
	"sbparse/alg/transition"
	nlp "sbparse/nlp/types"
)

// ListConfiguration is one derivation: a tree under construction and the
// cursors walking it. Copies share nothing.
type ListConfiguration struct {
	Tree     *DepTree
	State    *State
	Sequence transition.Sequence
}

var (
	_ search.Derivation        = &ListConfiguration{}
	_ transition.Configuration = &ListConfiguration{}
)

func NewListConfiguration(sent nlp.TaggedSentence) *ListConfiguration {
	return NewListConfigurationFromTree(NewDepTree(sent))
}

// NewListConfigurationFromTree starts a derivation over the nodes of t, keeping
// their tags and features but not their arcs
func NewListConfigurationFromTree(t *DepTree) *ListConfiguration {
	tree := t.Copy()
	for i := range tree.Nodes {
		tree.ClearHead(i)
	}
	return &ListConfiguration{Tree: tree, State: NewState(tree.Len())}
}

func (c *ListConfiguration) Copy() search.Derivation {
	return &ListConfiguration{
		Tree:     c.Tree.Copy(),
		State:    c.State.Copy(),
		Sequence: append(transition.Sequence(nil), c.Sequence...),
	}
}

func (c *ListConfiguration) Score() float64 {
	return c.State.Score
}

func (c *ListConfiguration) Terminal() bool {
	return c.State.Terminal()
}

func (c *ListConfiguration) Len() int {
	return c.Tree.Len()
}

func (c *ListConfiguration) Lambda() int {
	return c.State.Lambda
}

func (c *ListConfiguration) Beta() int {
	return c.State.Beta
}

func (c *ListConfiguration) Reduced(nodeID int) bool {
	return c.State.IsReduced(nodeID)
}

func (c *ListConfiguration) Head(nodeID int) (int, bool) {
	n := c.Tree.Node(nodeID)
	if n == nil || !n.HasHead() {
		return NO_HEAD, false
	}
	return n.Head, true
}

func (c *ListConfiguration) Attribute(nodeID int, attribute byte) (string, bool) {
	n := c.Tree.Node(nodeID)
	if n == nil {
		return "", false
	}
	switch attribute {
	case transition.ATTR_FORM:
		return n.Token, true
	case transition.ATTR_LEMMA:
		return n.Lemma, true
	case transition.ATTR_POS:
		return n.POS, true
	case transition.ATTR_POS2:
		return n.Feat(FEAT_POS2)
	case transition.ATTR_DEPREL:
		return n.Label, n.HasHead()
	}
	return "", false
}

func (c *ListConfiguration) String() string {
	return fmt.Sprintf("%v [%d transitions]", c.State, len(c.Sequence))
}

type CorrectionKind byte

const (
	NoCorrection CorrectionKind = iota
	Rewind
)

// Correction is what a hook asks of the engine. Hooks never move cursors
// themselves; a Rewind sets Lambda and, with Pass, passes once from there.
type Correction struct {
	Kind   CorrectionKind
	Lambda int
	Pass   bool
}

var NO_CORRECTION = Correction{}

func RewindTo(lambda int, pass bool) Correction {
	return Correction{Rewind, lambda, pass}
}

func (c Correction) String() string {
	if c.Kind == NoCorrection {
		return "none"
	}
	if c.Pass {
		return fmt.Sprintf("rewind to %d and pass", c.Lambda)
	}
	return fmt.Sprintf("rewind to %d", c.Lambda)
}

// Policy carries the language specific rules the engine consults
type Policy interface {
	// IsNotHead reports whether node id may not take dependents
	IsNotHead(c *ListConfiguration, id int) bool
	// Rerank suppresses candidates in place and re-sorts them when any
	// changed, reporting whether any did
	Rerank(c *ListConfiguration, ps transition.Predictions) bool
	// ResetPre may restructure the tree before a transition is chosen
	ResetPre(c *ListConfiguration) (Correction, error)
	// ResetPost runs after an arc from head to dep was committed
	ResetPost(c *ListConfiguration, dep, head int) (Correction, error)
	// PostParse corrects a finished tree, returning the number of changes
	PostParse(t *DepTree) int
}

// NoPolicy applies no rules
type NoPolicy struct{}

var _ Policy = NoPolicy{}

func (NoPolicy) IsNotHead(*ListConfiguration, int) bool { return false }
func (NoPolicy) Rerank(*ListConfiguration, transition.Predictions) bool { return false }
func (NoPolicy) ResetPre(*ListConfiguration) (Correction, error) { return NO_CORRECTION, nil }
func (NoPolicy) ResetPost(*ListConfiguration, int, int) (Correction, error) { return NO_CORRECTION, nil }
func (NoPolicy) PostParse(*DepTree) int { return 0 }
