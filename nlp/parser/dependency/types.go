package dependency

import (
	"context"

	"sbparse/alg/transition"
	nlp "sbparse/nlp/types"
)

// ParameterModel scores transitions for a parser
type ParameterModel interface {
	transition.Model
}

type DependencyParser interface {
	// Parse builds a tree for sent; a nil model selects the parser's own
	Parse(ctx context.Context, sent nlp.TaggedSentence, model ParameterModel) (nlp.LabeledDependencyGraph, interface{}, error)
}

// Dependency binds a parser to the model it parses with
type Dependency struct {
	Parameters ParameterModel
	Parser     DependencyParser
}

func (d *Dependency) Parse(ctx context.Context, sent nlp.TaggedSentence) (nlp.LabeledDependencyGraph, interface{}, error) {
	return d.Parser.Parse(ctx, sent, d.Parameters)
}
