package model

import (
	"sync/atomic"

	. "sbparse/alg/transition"
)

// Scripted replays fixed candidate lists keyed by the (lambda, beta) cursor
// pair, falling back to Default. It is read-only after construction and may
// be shared by concurrent derivations.
type Scripted struct {
	Script  map[[2]int]Predictions
	Default Predictions
	calls   int64
}

var _ Model = &Scripted{}

func NewScripted(def Predictions) *Scripted {
	return &Scripted{Script: make(map[[2]int]Predictions), Default: def}
}

// At registers the candidate list for a cursor pair
func (s *Scripted) At(lambda, beta int, ps Predictions) *Scripted {
	s.Script[[2]int{lambda, beta}] = ps
	return s
}

func (s *Scripted) Predict(conf Configuration) (Predictions, error) {
	atomic.AddInt64(&s.calls, 1)
	if ps, exists := s.Script[[2]int{conf.Lambda(), conf.Beta()}]; exists {
		return ps.Copy(), nil
	}
	return s.Default.Copy(), nil
}

func (s *Scripted) Calls() int {
	return int(atomic.LoadInt64(&s.calls))
}
