package transition

import (
	"context"
	"fmt"
	"log"

	"sbparse/alg/search"
	"sbparse/alg/transition"
	"sbparse/nlp/parser/dependency"
	nlp "sbparse/nlp/types"
	"sbparse/util"
)

type ParseResultParameters struct {
	Score           float64
	Sequence        transition.Sequence
	Search          *search.Stats
	PostCorrections int
	// secondary tags committed to POS
	SecondPOS int
}

// Parser is the list-based transition engine:
//
//	LR  Left-Reduce   lambda <- beta, reduce lambda, pass
//	LP  Left-Pass     lambda <- beta, pass
//	RS  Right-Shift   lambda -> beta, shift
//	RP  Right-Pass    lambda -> beta, pass
//	NS  No-Shift      shift
//	NR  No-Reduce     reduce lambda, pass
//	NP  No-Pass       pass
//
// It steps derivations for a selectional branching search and consults a
// Policy before and after every transition.
type Parser struct {
	Model  transition.Model
	Policy Policy

	BeamSize       int
	Margin         float64
	ConcurrentBeam bool
	// added to a derivation's score whenever a pre-transition correction fires
	PreBonus float64
	// votes needed to commit a node's secondary tag; 0 never commits
	SecondPOSVotes int
	// 0 derives the limit from the sentence length
	MaxTransitions int

	ShowConsiderations bool
	Log                bool
}

var (
	_ search.Stepper              = &Parser{}
	_ dependency.DependencyParser = &Parser{}
)

func (p *Parser) policy() Policy {
	if p.Policy == nil {
		return NoPolicy{}
	}
	return p.Policy
}

// TransitionLimit bounds the predictions requested for a tree of n nodes
func (p *Parser) TransitionLimit(n int) int {
	if p.MaxTransitions > 0 {
		return p.MaxTransitions
	}
	return 3*n*n + 10*n
}

func (p *Parser) correct(c *ListConfiguration, corr Correction) error {
	if corr.Kind != Rewind {
		return nil
	}
	return c.State.Rewind(corr.Lambda, corr.Pass)
}

func (p *Parser) Predict(d search.Derivation) (transition.Predictions, error) {
	c := d.(*ListConfiguration)
	s := c.State
	if err := s.Check(); err != nil {
		return nil, err
	}
	s.Steps++
	if limit := p.TransitionLimit(c.Len()); s.Steps > limit {
		return nil, fmt.Errorf("%w: %d over %d nodes", ErrTransitionLimit, limit, c.Len())
	}
	policy := p.policy()

	corr, err := policy.ResetPre(c)
	if err != nil {
		return nil, err
	}
	if corr.Kind == Rewind {
		if err := p.correct(c, corr); err != nil {
			return nil, err
		}
		s.Score += p.PreBonus
		if p.ShowConsiderations {
			log.Println("\tPre-transition correction:", corr, "now", s)
		}
		return nil, nil
	}

	if p.Model == nil {
		panic("Set a Model to predict with")
	}
	ps, err := p.Model.Predict(c)
	if err != nil {
		return nil, fmt.Errorf("model at lambda %d beta %d: %w", s.Lambda, s.Beta, err)
	}
	if err := ps.Validate(); err != nil {
		return nil, fmt.Errorf("model at lambda %d beta %d: %w", s.Lambda, s.Beta, err)
	}
	ps.Rank()
	changed := policy.Rerank(c, ps)
	if p.ShowConsiderations {
		log.Printf("\tlambda %d beta %d (reranked %v): %v", s.Lambda, s.Beta, changed, ps)
	}
	return ps, nil
}

// legalize downgrades arcs the tree cannot take to the matching no-arc
// transition
func (p *Parser) legalize(c *ListConfiguration, l transition.Label) transition.Label {
	lambda, beta := c.State.Lambda, c.State.Beta
	switch l.Arc {
	case transition.Left:
		if lambda == 0 {
			return transition.NO_SHIFT
		}
		if c.Tree.Node(lambda).HasHead() || c.Tree.IsDescendantOf(beta, lambda) || p.policy().IsNotHead(c, beta) {
			return transition.NO_PASS
		}
	case transition.Right:
		if c.Tree.Node(beta).HasHead() || c.Tree.IsDescendantOf(lambda, beta) || p.policy().IsNotHead(c, lambda) {
			if l.List == transition.Shift {
				return transition.NO_SHIFT
			}
			return transition.NO_PASS
		}
	}
	return l
}

func (p *Parser) Apply(d search.Derivation, pred transition.Prediction) error {
	c := d.(*ListConfiguration)
	s := c.State
	if err := s.Check(); err != nil {
		return err
	}
	if s.Terminal() {
		return fmt.Errorf("%w: transition %v on a terminal derivation", ErrCursorRange, pred.Label)
	}
	label := p.legalize(c, pred.Label)
	if p.ShowConsiderations && !label.Equal(pred.Label) {
		log.Println("\tDowngraded", pred.Label, "to", label)
	}
	s.Score += pred.Score
	s.Last = label
	c.Sequence = append(c.Sequence, label)

	lambda, beta := s.Lambda, s.Beta
	dep, head := NO_HEAD, NO_HEAD
	switch label.Arc {
	case transition.Left:
		dep, head = lambda, beta
	case transition.Right:
		dep, head = beta, lambda
	}
	if dep != NO_HEAD {
		if err := c.Tree.SetHead(dep, head, label.Deprel); err != nil {
			return err
		}
	}
	switch label.List {
	case transition.Reduce:
		s.Reduce(lambda)
		s.Pass()
	case transition.Pass:
		s.Pass()
	case transition.Shift:
		s.Shift()
	}
	if dep == NO_HEAD {
		return nil
	}

	corr, err := p.policy().ResetPost(c, dep, head)
	if err != nil {
		return err
	}
	if corr.Kind == Rewind && p.ShowConsiderations {
		log.Println("\tPost-transition correction:", corr)
	}
	return p.correct(c, corr)
}

// Finalize attaches headless nodes to the root and commits secondary tags
// with enough votes. It returns the number of tags committed.
func (p *Parser) Finalize(t *DepTree, s *State) int {
	var committed int
	for _, n := range t.Nodes[1:] {
		if !n.HasHead() {
			n.Head, n.Label = 0, nlp.ROOT_LABEL
		}
		if p.SecondPOSVotes <= 0 || s == nil || s.Votes(n.Id) < p.SecondPOSVotes {
			continue
		}
		if p2, exists := n.Feat(FEAT_POS2); exists && p2 != n.POS {
			n.POS = p2
			committed++
		}
	}
	return committed
}

// ParseFrom searches from start and returns the finished tree
func (p *Parser) ParseFrom(ctx context.Context, start *ListConfiguration, model transition.Model) (*DepTree, *ParseResultParameters, error) {
	q := *p
	if model != nil {
		q.Model = model
	}
	if q.Model == nil {
		panic("Set a Model to parse with")
	}
	size := util.Max(q.BeamSize, 1)
	b := &search.Branching{
		Stepper:        &q,
		Margin:         q.Margin,
		Size:           size,
		ConcurrentExec: q.ConcurrentBeam,
		Log:            q.Log,
	}
	d, stats, err := b.Search(ctx, start)
	if err != nil {
		return nil, &ParseResultParameters{Search: stats}, err
	}
	c := d.(*ListConfiguration)
	result := &ParseResultParameters{
		Score:    c.State.Score,
		Sequence: c.Sequence,
		Search:   stats,
	}
	result.PostCorrections = q.policy().PostParse(c.Tree)
	result.SecondPOS = q.Finalize(c.Tree, c.State)
	if err := c.Tree.Validate(); err != nil {
		return nil, result, err
	}
	return c.Tree, result, nil
}

func (p *Parser) ParseTree(ctx context.Context, sent nlp.TaggedSentence, model transition.Model) (*DepTree, *ParseResultParameters, error) {
	return p.ParseFrom(ctx, NewListConfiguration(sent), model)
}

func (p *Parser) Parse(ctx context.Context, sent nlp.TaggedSentence, model dependency.ParameterModel) (nlp.LabeledDependencyGraph, interface{}, error) {
	var m transition.Model
	if model != nil {
		m = model
	}
	tree, result, err := p.ParseTree(ctx, sent, m)
	if err != nil {
		return nil, result, err
	}
	return tree, result, nil
}
