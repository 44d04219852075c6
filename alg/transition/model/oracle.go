package model

import (
	"errors"
	"fmt"

	. "sbparse/alg/transition"
)

var ErrGoldLength = errors.New("model: gold heads and labels differ in length")

// alternative scores handed out after the gold transition, in order
var ORACLE_DECAY = []float64{0.5, 0.25, 0.125}

// Oracle predicts the gold transition of the list-based system for a known
// tree, followed by the remaining no-arc transitions at decaying scores.
// Heads and Labels are indexed by node id; index 0 is the root.
type Oracle struct {
	Heads  []int
	Labels []string
}

var _ Model = &Oracle{}

func NewOracle(heads []int, labels []string) (*Oracle, error) {
	if len(heads) != len(labels) {
		return nil, fmt.Errorf("%w: %d heads, %d labels", ErrGoldLength, len(heads), len(labels))
	}
	return &Oracle{heads, labels}, nil
}

func (o *Oracle) Predict(conf Configuration) (Predictions, error) {
	if conf.Len() != len(o.Heads) {
		return nil, fmt.Errorf("%w: configuration has %d nodes, gold has %d", ErrGoldLength, conf.Len(), len(o.Heads))
	}
	gold := o.Transition(conf)
	retval := make(Predictions, 1, 4)
	retval[0] = Prediction{Label: gold, Score: 1}
	for _, alt := range []Label{NO_SHIFT, NO_PASS, NO_REDUCE} {
		if alt.Equal(gold) {
			continue
		}
		retval = append(retval, Prediction{Label: alt, Score: ORACLE_DECAY[len(retval)-1]})
	}
	return retval, nil
}

// Transition is the gold transition at conf
func (o *Oracle) Transition(conf Configuration) Label {
	lambda, beta := conf.Lambda(), conf.Beta()
	if lambda < 0 || beta >= conf.Len() {
		return NO_SHIFT
	}
	switch {
	case lambda > 0 && o.Heads[lambda] == beta:
		if o.reducible(conf, true) {
			return Label{Left, Reduce, o.Labels[lambda]}
		}
		return Label{Left, Pass, o.Labels[lambda]}
	case o.Heads[beta] == lambda:
		if o.shiftable(conf) {
			return Label{Right, Shift, o.Labels[beta]}
		}
		return Label{Right, Pass, o.Labels[beta]}
	case o.shiftable(conf):
		return NO_SHIFT
	case o.reducible(conf, false):
		return NO_REDUCE
	}
	return NO_PASS
}

// shiftable holds when beta has no gold relation left with any open node
// at or below lambda other than the pair being decided
func (o *Oracle) shiftable(conf Configuration) bool {
	lambda, beta := conf.Lambda(), conf.Beta()
	for i := lambda - 1; i >= 0; i-- {
		if conf.Reduced(i) {
			continue
		}
		if o.Heads[beta] == i || (i > 0 && o.Heads[i] == beta) {
			return false
		}
	}
	return true
}

// reducible holds when lambda has its head and no gold dependents past beta
func (o *Oracle) reducible(conf Configuration, gettingHead bool) bool {
	lambda, beta := conf.Lambda(), conf.Beta()
	if lambda == 0 {
		return false
	}
	if _, exists := conf.Head(lambda); !exists && !gettingHead {
		return false
	}
	for i := beta + 1; i < len(o.Heads); i++ {
		if o.Heads[i] == lambda {
			return false
		}
	}
	return true
}
