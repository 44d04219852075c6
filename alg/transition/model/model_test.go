package model

import (
	"sync"
	"testing"

	. "sbparse/alg/transition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConf struct {
	pos          []string
	heads        []int
	reduced      []bool
	lambda, beta int
}

func newFakeConf(pos ...string) *fakeConf {
	c := &fakeConf{pos: append([]string{"ROOT"}, pos...)}
	c.heads = make([]int, len(c.pos))
	for i := range c.heads {
		c.heads[i] = -1
	}
	c.reduced = make([]bool, len(c.pos))
	c.beta = 1
	return c
}

func (c *fakeConf) Len() int               { return len(c.pos) }
func (c *fakeConf) Lambda() int            { return c.lambda }
func (c *fakeConf) Beta() int              { return c.beta }
func (c *fakeConf) Reduced(i int) bool     { return c.reduced[i] }
func (c *fakeConf) Head(i int) (int, bool) { return c.heads[i], c.heads[i] >= 0 }
func (c *fakeConf) Attribute(i int, a byte) (string, bool) {
	if a == ATTR_POS && i >= 0 && i < len(c.pos) {
		return c.pos[i], true
	}
	return "", false
}

// apply advances the fake through the list-based transition system
func (c *fakeConf) apply(l Label) {
	switch l.Arc {
	case Left:
		c.heads[c.lambda] = c.beta
	case Right:
		c.heads[c.beta] = c.lambda
	}
	if l.List == Reduce {
		c.reduced[c.lambda] = true
	}
	if l.List == Shift {
		c.lambda, c.beta = c.beta, c.beta+1
		return
	}
	for c.lambda--; c.lambda >= 0 && c.reduced[c.lambda]; c.lambda-- {
	}
	if c.lambda < 0 {
		c.lambda, c.beta = c.beta, c.beta+1
	}
}

func runOracle(t *testing.T, o *Oracle, c *fakeConf) Sequence {
	var seq Sequence
	for c.beta < c.Len() && len(seq) < 100 {
		ps, err := o.Predict(c)
		require.NoError(t, err)
		require.NoError(t, ps.Validate())
		assert.Equal(t, 1.0, ps[0].Score)
		seq = append(seq, ps[0].Label)
		c.apply(ps[0].Label)
	}
	return seq
}

func TestOracleProjective(t *testing.T) {
	// John saw Mary
	o, err := NewOracle([]int{-1, 2, 0, 2}, []string{"", "nsubj", "root", "dobj"})
	require.NoError(t, err)
	c := newFakeConf("NNP", "VBD", "NNP")
	seq := runOracle(t, o, c)
	want := Sequence{NO_SHIFT, MustParseLabel("LR-nsubj"), MustParseLabel("RS-root"), MustParseLabel("RS-dobj")}
	assert.True(t, seq.Equal(want), "%v", seq)
	assert.Equal(t, []int{-1, 2, 0, 2}, c.heads)
}

func TestOracleNonProjective(t *testing.T) {
	// 1 <- 3, 2 <- 4, 3 <- 4, 4 <- root: arcs 3->1 and 4->2 cross
	heads := []int{-1, 3, 4, 4, 0}
	o, err := NewOracle(heads, []string{"", "a", "b", "c", "root"})
	require.NoError(t, err)
	c := newFakeConf("X", "X", "X", "X")
	runOracle(t, o, c)
	assert.Equal(t, heads, c.heads)
}

func TestOracleAlternatives(t *testing.T) {
	o, err := NewOracle([]int{-1, 0}, []string{"", "root"})
	require.NoError(t, err)
	c := newFakeConf("VB")
	ps, err := o.Predict(c)
	require.NoError(t, err)
	require.Len(t, ps, 4)
	assert.Equal(t, "RS-root", ps[0].Label.String())
	assert.Equal(t, []float64{1, 0.5, 0.25, 0.125}, []float64{ps[0].Score, ps[1].Score, ps[2].Score, ps[3].Score})

	c = newFakeConf("VB", "NN")
	o, _ = NewOracle([]int{-1, 2, 0}, []string{"", "nsubj", "root"})
	ps, err = o.Predict(c)
	require.NoError(t, err)
	assert.Equal(t, NO_SHIFT, ps[0].Label)
	assert.Len(t, ps, 3)
}

func TestOracleErrors(t *testing.T) {
	_, err := NewOracle([]int{-1, 0}, []string{""})
	assert.ErrorIs(t, err, ErrGoldLength)
	o, err := NewOracle([]int{-1, 0}, []string{"", "root"})
	require.NoError(t, err)
	_, err = o.Predict(newFakeConf("A", "B"))
	assert.ErrorIs(t, err, ErrGoldLength)
}

const tableYAML = `
rules:
  - lambda: PRP
    beta: VBD
    predictions:
      - {label: LR-nsubj, score: 0.9}
      - {label: NS, score: 0.3}
  - lambda: "*"
    beta: NN
    predictions:
      - {label: RS-dobj, score: 0.8}
defaults:
  - {label: NP, score: 0.4}
`

func TestTable(t *testing.T) {
	tbl, err := LoadTable([]byte(tableYAML))
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	c := newFakeConf("PRP", "VBD", "NN")
	c.lambda, c.beta = 1, 2
	ps, err := tbl.Predict(c)
	require.NoError(t, err)
	assert.Equal(t, "LR-nsubj", ps[0].Label.String())
	assert.Len(t, ps, 2)

	c.lambda, c.beta = 2, 3
	ps, err = tbl.Predict(c)
	require.NoError(t, err)
	assert.Equal(t, "RS-dobj", ps[0].Label.String())

	c.lambda, c.beta = 0, 1
	ps, err = tbl.Predict(c)
	require.NoError(t, err)
	assert.Equal(t, NO_PASS, ps[0].Label)

	assert.Equal(t, []string{"dobj", "nsubj"}, tbl.Deprels())

	// returned lists are private copies
	ps[0].Invalidate()
	ps, _ = tbl.Predict(c)
	assert.True(t, ps[0].IsValid())
}

func TestTableDefaultsAndErrors(t *testing.T) {
	tbl, err := LoadTable([]byte("rules: []\n"))
	require.NoError(t, err)
	ps, err := tbl.Predict(newFakeConf("NN"))
	require.NoError(t, err)
	assert.Equal(t, NO_SHIFT, ps[0].Label)

	_, err = LoadTable([]byte("rules:\n  - predictions:\n      - {label: LS-x, score: 1}\n"))
	assert.ErrorIs(t, err, ErrBadLabel)
	_, err = LoadTable([]byte("rules:\n  - predictions: []\n"))
	assert.ErrorIs(t, err, ErrEmptyPredictions)
	_, err = LoadTable([]byte("rules: [\n"))
	assert.Error(t, err)
}

func TestScripted(t *testing.T) {
	s := NewScripted(Predictions{{Label: NO_SHIFT, Score: 1}}).
		At(1, 2, Predictions{{Label: MustParseLabel("LR-nsubj"), Score: 2}})
	c := newFakeConf("A", "B")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ps, err := s.Predict(c)
			assert.NoError(t, err)
			assert.Equal(t, NO_SHIFT, ps[0].Label)
		}()
	}
	wg.Wait()
	c.lambda, c.beta = 1, 2
	ps, err := s.Predict(c)
	require.NoError(t, err)
	assert.Equal(t, "LR-nsubj", ps[0].Label.String())
	assert.Equal(t, 9, s.Calls())
}
