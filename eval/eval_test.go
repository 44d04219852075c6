package eval

import (
	"errors"
	"testing"

	dep "sbparse/nlp/parser/dependency/transition"
	nlp "sbparse/nlp/types"
	"sbparse/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var TEST_SENT = nlp.BasicTaggedSentence{
	{"John", "john", "NNP"},
	{"saw", "see", "VBD"},
	{"Mary", "mary", "NNP"},
	{".", ".", "."},
}

func tree(heads []int, labels []string) *dep.DepTree {
	t := dep.NewDepTree(TEST_SENT)
	for i := 1; i < t.Len(); i++ {
		t.Nodes[i].Head, t.Nodes[i].Label = heads[i], labels[i]
	}
	return t
}

func TestResultRatios(t *testing.T) {
	r := &Result{TP: 3, FP: 1}
	assert.Equal(t, 0.75, r.Precision())
	assert.Equal(t, 1.0, r.Recall())
	assert.InDelta(t, 6.0/7.0, r.F1(), 1e-9)
	assert.Equal(t, 3, r.ConditionPositives())

	empty := &Result{}
	assert.Equal(t, 0.0, empty.Precision())
	assert.Equal(t, 0.0, empty.F1())
}

func TestDepEval(t *testing.T) {
	gold := tree([]int{-1, 2, 0, 2, 2}, []string{"", "nsubj", "root", "dobj", "punct"})

	r, err := DepEval(gold.Copy(), gold, false)
	require.NoError(t, err)
	assert.Equal(t, 4, r.TP)
	assert.Equal(t, 0, r.Incorrect())
	assert.Equal(t, 4, r.Other.(*Result).TP)

	// wrong label on Mary, wrong head on the period
	test := tree([]int{-1, 2, 0, 2, 3}, []string{"", "nsubj", "root", "iobj", "punct"})
	r, err = DepEval(test, gold, false)
	require.NoError(t, err)
	assert.Equal(t, 2, r.TP)
	assert.Equal(t, 2, r.FP)
	uas := r.Other.(*Result)
	assert.Equal(t, 3, uas.TP)
	assert.Equal(t, 1, uas.FP)
	assert.Equal(t, map[string]int{HEAD_ERROR: 1, LABEL_ERROR: 1}, r.Errors.ByType())

	r, err = DepEval(test, gold, true)
	require.NoError(t, err)
	assert.Equal(t, 3, r.TestPositives())
	assert.Equal(t, 0, r.Other.(*Result).Incorrect())
}

func TestDepEvalLengthMismatch(t *testing.T) {
	gold := tree([]int{-1, 2, 0, 2, 2}, []string{"", "nsubj", "root", "dobj", "punct"})
	short := dep.NewDepTree(TEST_SENT[:2])
	_, err := DepEval(short, gold, false)
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestTotalDepEval(t *testing.T) {
	gold := tree([]int{-1, 2, 0, 2, 2}, []string{"", "nsubj", "root", "dobj", "punct"})
	test := tree([]int{-1, 2, 0, 2, 2}, []string{"", "nsubj", "root", "iobj", "punct"})
	total := NewTotalDepEval(false)
	require.NoError(t, total.Add(gold.Copy(), gold))
	require.NoError(t, total.Add(test, gold))
	assert.Equal(t, 2, total.UAS.Exact)
	assert.Equal(t, 1, total.LAS.Exact)
	assert.Equal(t, 2, total.LAS.Population)
	assert.Equal(t, 0.5, total.LAS.ExactMatch())
	assert.Equal(t, 1.0, total.UAS.Precision())
	assert.Equal(t, 7.0/8.0, total.LAS.Precision())
	assert.Len(t, total.LAS.Errors(), 1)
	assert.Equal(t, []util.TopNStrIntDatum{{S: "dobj", N: 1}}, total.TopErrors(5))
	assert.Equal(t, map[string]int{LABEL_ERROR: 1}, total.ErrorClasses())
	assert.NotEmpty(t, total.String())
}

func TestTotalDepEvalLabels(t *testing.T) {
	gold := tree([]int{-1, 2, 0, 2, 2}, []string{"", "nsubj", "root", "dobj", "punct"})
	// Mary relabeled, the period attached to Mary
	test := tree([]int{-1, 2, 0, 2, 3}, []string{"", "nsubj", "root", "nsubj", "punct"})
	total := NewTotalDepEval(false)
	require.NoError(t, total.Add(test, gold))

	assert.Equal(t, []string{"dobj", "nsubj", "punct", "root"}, total.LabelNames())
	nsubj := total.Labels["nsubj"]
	assert.Equal(t, 1, nsubj.TP)
	assert.Equal(t, 1, nsubj.FP)
	assert.Equal(t, 0.5, nsubj.Precision())
	assert.Equal(t, 1.0, nsubj.Recall())
	dobj := total.Labels["dobj"]
	assert.Equal(t, 1, dobj.ConditionPositives())
	assert.Equal(t, 0.0, dobj.Recall())
	assert.Equal(t, 0.0, dobj.F1())
	// a right label under the wrong head is still a miss
	punct := total.Labels["punct"]
	assert.Equal(t, 1, punct.FN)
	assert.Equal(t, 1, punct.FP)
	assert.Equal(t, 1.0, total.Labels["root"].F1())
	assert.Equal(t, map[string]int{HEAD_ERROR: 1, LABEL_ERROR: 1}, total.ErrorClasses())

	ignoring := NewTotalDepEval(true)
	require.NoError(t, ignoring.Add(test, gold))
	assert.NotContains(t, ignoring.Labels, "punct")
}
