package transition

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"sbparse/util"
)

var (
	ErrEmptyPredictions = errors.New("transition: model returned no predictions")
	ErrInvalidScore     = errors.New("transition: prediction score is not finite")
)

type Status byte

const (
	Valid Status = iota
	Invalidated
)

func (s Status) String() string {
	if s == Invalidated {
		return "invalidated"
	}
	return "valid"
}

// Prediction is one scored transition candidate. Score is the model's score
// and survives invalidation untouched.
type Prediction struct {
	Label  Label
	Score  float64
	Status Status
}

func (p *Prediction) IsValid() bool {
	return p.Status == Valid
}

// Invalidate marks the prediction as suppressed, reporting whether the status
// changed. There is no way back to Valid.
func (p *Prediction) Invalidate() bool {
	if p.Status == Invalidated {
		return false
	}
	p.Status = Invalidated
	return true
}

func (p Prediction) String() string {
	if p.Status == Invalidated {
		return fmt.Sprintf("%v:%.4f(x)", p.Label, p.Score)
	}
	return fmt.Sprintf("%v:%.4f", p.Label, p.Score)
}

// Predictions is a candidate list, best first
type Predictions []Prediction

// Validate checks that a model produced a usable list
func (ps Predictions) Validate() error {
	if len(ps) == 0 {
		return ErrEmptyPredictions
	}
	for i, p := range ps {
		if !util.Finite(p.Score) {
			return fmt.Errorf("%w: candidate %d %v", ErrInvalidScore, i, p.Label)
		}
		if err := p.Label.Validate(); err != nil {
			return fmt.Errorf("candidate %d: %w", i, err)
		}
	}
	return nil
}

// Rank re-sorts in place: valid before invalidated, then by descending score.
// Ties keep their relative order.
func (ps Predictions) Rank() {
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].Status != ps[j].Status {
			return ps[i].Status == Valid
		}
		return ps[i].Score > ps[j].Score
	})
}

// Best is the first valid candidate; if every candidate was invalidated the
// head of the list is returned so the caller can still fall back on it
func (ps Predictions) Best() (Prediction, bool) {
	for _, p := range ps {
		if p.Status == Valid {
			return p, true
		}
	}
	if len(ps) > 0 {
		return ps[0], false
	}
	return Prediction{}, false
}

func (ps Predictions) Valid() Predictions {
	retval := make(Predictions, 0, len(ps))
	for _, p := range ps {
		if p.Status == Valid {
			retval = append(retval, p)
		}
	}
	return retval
}

// Gap is the score difference between the two best valid candidates, +Inf
// when fewer than two are valid
func (ps Predictions) Gap() float64 {
	var (
		first, second float64
		found         int
	)
	for _, p := range ps {
		if p.Status != Valid {
			continue
		}
		if found == 0 {
			first = p.Score
		} else {
			second = p.Score
		}
		found++
		if found == 2 {
			return first - second
		}
	}
	return math.Inf(1)
}

// Close returns the valid candidates other than the best whose score is
// within margin of it (strictly less), in list order
func (ps Predictions) Close(margin float64) Predictions {
	best, ok := ps.Best()
	if !ok {
		return nil
	}
	var (
		retval  Predictions
		skipped bool
	)
	for _, p := range ps {
		if p.Status != Valid {
			continue
		}
		if !skipped {
			skipped = true
			continue
		}
		if best.Score-p.Score < margin {
			retval = append(retval, p)
		}
	}
	return retval
}

func (ps Predictions) Copy() Predictions {
	if ps == nil {
		return nil
	}
	retval := make(Predictions, len(ps))
	copy(retval, ps)
	return retval
}

func (ps Predictions) String() string {
	strs := make([]string, len(ps))
	for i, p := range ps {
		strs[i] = p.String()
	}
	return strings.Join(strs, " ")
}
