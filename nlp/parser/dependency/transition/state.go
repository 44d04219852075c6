package transition

import (
	"errors"
	"fmt"

	"sbparse/alg/transition"
)

var (
	ErrCursorRange     = errors.New("transition: cursor out of range")
	ErrTransitionLimit = errors.New("transition: derivation exceeded the transition limit")
)

// State holds the cursors of the list-based system over a tree of n nodes.
// Open nodes below Lambda form the left list; nodes passed over between
// Lambda and Beta wait to be revisited by the next Beta. Beta reaching n
// ends the derivation.
type State struct {
	Lambda, Beta int
	Score        float64
	// predictions requested so far, preempted ones included
	Steps   int
	Last    transition.Label
	reduced []bool
	votes   []int
}

func NewState(n int) *State {
	return &State{
		Lambda:  0,
		Beta:    1,
		reduced: make([]bool, n),
		votes:   make([]int, n),
	}
}

func (s *State) Len() int {
	return len(s.reduced)
}

func (s *State) Terminal() bool {
	return s.Beta >= len(s.reduced)
}

// Check verifies 0 <= Lambda < Beta <= n
func (s *State) Check() error {
	if s.Beta < 1 || s.Beta > len(s.reduced) {
		return fmt.Errorf("%w: beta %d of %d", ErrCursorRange, s.Beta, len(s.reduced))
	}
	if !s.Terminal() && (s.Lambda < 0 || s.Lambda >= s.Beta) {
		return fmt.Errorf("%w: lambda %d beta %d", ErrCursorRange, s.Lambda, s.Beta)
	}
	return nil
}

func (s *State) Shift() {
	s.Lambda = s.Beta
	s.Beta++
}

// Pass moves Lambda to the closest open node below it, shifting when the
// left list is exhausted
func (s *State) Pass() {
	s.Lambda--
	for s.Lambda >= 0 && s.reduced[s.Lambda] {
		s.Lambda--
	}
	if s.Lambda < 0 {
		s.Shift()
	}
}

func (s *State) IsReduced(i int) bool {
	return i >= 0 && i < len(s.reduced) && s.reduced[i]
}

func (s *State) Reduce(i int) {
	if i > 0 && i < len(s.reduced) {
		s.reduced[i] = true
	}
}

func (s *State) Unreduce(i int) {
	if i >= 0 && i < len(s.reduced) {
		s.reduced[i] = false
	}
}

// Rewind moves Lambda back to lambda, or to the open node below it when
// lambda is reduced or pass is set
func (s *State) Rewind(lambda int, pass bool) error {
	if lambda < 0 || lambda >= s.Beta || s.Terminal() {
		return fmt.Errorf("%w: rewind to %d with beta %d", ErrCursorRange, lambda, s.Beta)
	}
	s.Lambda = lambda
	if pass || s.reduced[lambda] {
		s.Pass()
	}
	return nil
}

// Vote records one more secondary tag vote for node i and returns the count
func (s *State) Vote(i int) int {
	if i < 0 || i >= len(s.votes) {
		return 0
	}
	s.votes[i]++
	return s.votes[i]
}

func (s *State) Votes(i int) int {
	if i < 0 || i >= len(s.votes) {
		return 0
	}
	return s.votes[i]
}

func (s *State) Copy() *State {
	cp := *s
	cp.reduced = make([]bool, len(s.reduced))
	copy(cp.reduced, s.reduced)
	cp.votes = make([]int, len(s.votes))
	copy(cp.votes, s.votes)
	return &cp
}

func (s *State) String() string {
	return fmt.Sprintf("lambda %d beta %d score %.4f steps %d last %v", s.Lambda, s.Beta, s.Score, s.Steps, s.Last)
}
