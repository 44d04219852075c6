package search

import (
	"context"
	"errors"
	"log"
	"sort"

	"sbparse/alg/transition"

	"golang.org/x/sync/errgroup"
)

var (
	AllOut bool = false

	ErrNoDerivation = errors.New("search: no derivation to search from")
)

// Derivation is one partial parse owned by a single search path
type Derivation interface {
	Copy() Derivation
	Score() float64
	Terminal() bool
}

// Stepper advances derivations. Predict returns the ranked candidates for
// the next transition; a nil list with a nil error means the stepper already
// moved the derivation itself and the search should ask again.
type Stepper interface {
	Predict(d Derivation) (transition.Predictions, error)
	Apply(d Derivation, p transition.Prediction) error
}

type branchPoint struct {
	snapshot Derivation
	forced   transition.Prediction
	step     int
	gap      float64
}

func (p *branchPoint) priority() float64 {
	return p.snapshot.Score() + p.forced.Score
}

type Stats struct {
	// transitions applied across all derivations
	Steps int
	// branch points found during the first pass
	Considered int
	// branches followed after the first pass
	Forked int
	// index of the winning derivation, 0 being the first pass
	Winner int
	Scores []float64
}

// Branching is selectional branching search. A greedy first pass records
// every step where a valid candidate other than the best scores within
// Margin of it; the Size-1 most promising of those are then replayed from
// their snapshot with the alternative forced, each continuing greedily.
// At most Size derivations are ever built and the best scoring one wins,
// ties going to the earlier derivation.
type Branching struct {
	Stepper        Stepper
	Margin         float64
	Size           int
	ConcurrentExec bool
	Log            bool
}

func (b *Branching) Name() string {
	return "Selectional Branching"
}

func (b *Branching) greedy(ctx context.Context, d Derivation, record bool) ([]*branchPoint, int, error) {
	var (
		points []*branchPoint
		steps  int
	)
	for !d.Terminal() {
		if err := ctx.Err(); err != nil {
			return nil, steps, err
		}
		ps, err := b.Stepper.Predict(d)
		if err != nil {
			return nil, steps, err
		}
		if ps == nil {
			continue
		}
		best, _ := ps.Best()
		if record && b.Size > 1 {
			if near := ps.Close(b.Margin); len(near) > 0 {
				snapshot := d.Copy()
				gap := ps.Gap()
				for _, alt := range near {
					points = append(points, &branchPoint{snapshot, alt, steps, gap})
				}
			}
		}
		if AllOut {
			log.Println("\tStep", steps, "candidates", ps)
		}
		if err := b.Stepper.Apply(d, best); err != nil {
			return nil, steps, err
		}
		steps++
	}
	return points, steps, nil
}

func (b *Branching) branch(ctx context.Context, p *branchPoint) (Derivation, int, error) {
	d := p.snapshot.Copy()
	if err := b.Stepper.Apply(d, p.forced); err != nil {
		return nil, 0, err
	}
	_, steps, err := b.greedy(ctx, d, false)
	return d, steps + 1, err
}

func (b *Branching) Search(ctx context.Context, start Derivation) (Derivation, *Stats, error) {
	if b.Stepper == nil {
		panic("Set a Stepper to search with")
	}
	if start == nil {
		return nil, nil, ErrNoDerivation
	}
	stats := new(Stats)

	first := start.Copy()
	points, steps, err := b.greedy(ctx, first, true)
	stats.Steps += steps
	if err != nil {
		return nil, stats, err
	}
	stats.Considered = len(points)

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].priority() > points[j].priority()
	})
	if keep := b.Size - 1; len(points) > keep {
		if keep < 0 {
			keep = 0
		}
		points = points[:keep]
	}
	stats.Forked = len(points)
	if b.Log {
		for i, p := range points {
			log.Printf("Fork %d at step %d gap %.4f forcing %v", i+1, p.step, p.gap, p.forced.Label)
		}
	}

	derivations := make([]Derivation, len(points)+1)
	branchSteps := make([]int, len(points))
	derivations[0] = first
	if b.ConcurrentExec && len(points) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i, p := range points {
			i, p := i, p
			g.Go(func() error {
				d, s, err := b.branch(gctx, p)
				derivations[i+1], branchSteps[i] = d, s
				return err
			})
		}
		err = g.Wait()
	} else {
		for i, p := range points {
			derivations[i+1], branchSteps[i], err = b.branch(ctx, p)
			if err != nil {
				break
			}
		}
	}
	for _, s := range branchSteps {
		stats.Steps += s
	}
	if err != nil {
		return nil, stats, err
	}

	stats.Scores = make([]float64, len(derivations))
	for i, d := range derivations {
		stats.Scores[i] = d.Score()
		if d.Score() > derivations[stats.Winner].Score() {
			stats.Winner = i
		}
	}
	if b.Log {
		log.Printf("Winner derivation %d of %d score %.4f", stats.Winner, len(derivations), derivations[stats.Winner].Score())
	}
	return derivations[stats.Winner], stats, nil
}
