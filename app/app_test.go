package app

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"

	"sbparse/alg/transition"
	"sbparse/alg/transition/model"
	"sbparse/eval"
	dep "sbparse/nlp/parser/dependency/transition"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const GOLD_CONLL = "1\tWas\tbe\tVBD\tVBD\t_\t3\tauxpass\t_\t_\n" +
	"2\tit\tit\tPRP\tPRP\t_\t3\tnsubjpass\t_\t_\n" +
	"3\tseen\tsee\tVBN\tVBN\tp2=VBD\t0\troot\t_\t_\n" +
	"4\tby\tby\tIN\tIN\t_\t3\tprep\t_\t_\n" +
	"5\tJohn\tjohn\tNNP\tNNP\t_\t4\tpobj\t_\t_\n" +
	"\n"

const UNPARSED_CONLL = "1\tGo\t_\tVB\tVB\t_\t_\t_\t_\t_\n" +
	"2\t!\t_\t.\t.\t_\t_\t_\t_\t_\n" +
	"\n"

// the copula attachment at (1, 2) is corrected once seen is reached
const PASSIVE_TABLE = `
rules:
  - {lambda: ROOT, beta: VBD, predictions: [{label: RS-root, score: 0.9}, {label: NS, score: 0.1}]}
  - {lambda: VBD, beta: PRP, predictions: [{label: RS-nsubj, score: 0.9}, {label: NS, score: 0.1}]}
  - {lambda: ROOT, beta: VBN, predictions: [{label: RS-root, score: 0.9}, {label: NS, score: 0.1}]}
  - {lambda: VBN, beta: IN, predictions: [{label: RS-prep, score: 0.9}, {label: NS, score: 0.1}]}
  - {lambda: IN, beta: NNP, predictions: [{label: RS-pobj, score: 0.9}, {label: NS, score: 0.1}]}
defaults:
  - {label: NS, score: 0.1}
`

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

type failModel struct{}

func (failModel) Predict(transition.Configuration) (transition.Predictions, error) {
	return nil, errors.New("no predictions")
}

func readTrees(t *testing.T, content string) []*dep.DepTree {
	trees, err := ReadTrees(writeFile(t, "in.conll", content))
	require.NoError(t, err)
	return trees
}

func TestParseAll(t *testing.T) {
	trees := readTrees(t, GOLD_CONLL+UNPARSED_CONLL+GOLD_CONLL)
	table, err := model.LoadTable([]byte(PASSIVE_TABLE))
	require.NoError(t, err)

	parsed, failures, err := ParseAll(context.Background(), DefaultConfig().Parser(table), trees, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, failures)
	require.Len(t, parsed, 3)
	for i, tree := range parsed {
		require.NoError(t, tree.Validate(), "sentence %d", i)
	}
	assert.Equal(t, 5, parsed[0].Len()-1)
	assert.Equal(t, "Go", parsed[1].Node(1).Token)
	for _, i := range []int{0, 2} {
		heads, labels := GoldArcs(parsed[i])
		goldHeads, goldLabels := GoldArcs(trees[i])
		assert.Equal(t, goldHeads, heads)
		assert.Equal(t, goldLabels, labels)
	}
	// input trees are left untouched
	assert.Equal(t, 3, trees[0].Node(1).Head)
}

func TestParseAllFallback(t *testing.T) {
	trees := readTrees(t, GOLD_CONLL+UNPARSED_CONLL)
	parsed, failures, err := ParseAll(context.Background(), DefaultConfig().Parser(failModel{}), trees, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, failures)
	for _, tree := range parsed {
		require.NoError(t, tree.Validate())
		for _, n := range tree.Nodes[1:] {
			assert.Equal(t, 0, n.Head)
			assert.Equal(t, FALLBACK_LABEL, n.Label)
		}
	}
	assert.Equal(t, "VBN", parsed[0].Node(3).POS)
}

func TestParseAllShowForks(t *testing.T) {
	trees := readTrees(t, GOLD_CONLL)
	table, err := model.LoadTable([]byte(PASSIVE_TABLE))
	require.NoError(t, err)
	c := DefaultConfig()
	c.Beam, c.Margin, c.ShowForks = 2, 1.0, true

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	parsed, _, err := ParseAll(context.Background(), c.Parser(table), trees, 1)
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Contains(t, buf.String(), "Winner derivation")
}

func TestParseAllCancelled(t *testing.T) {
	trees := readTrees(t, GOLD_CONLL)
	table, err := model.LoadTable([]byte(PASSIVE_TABLE))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = ParseAll(ctx, DefaultConfig().Parser(table), trees, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunParseAndEval(t *testing.T) {
	gold := writeFile(t, "gold.conll", GOLD_CONLL)
	table := writeFile(t, "table.yaml", PASSIVE_TABLE)
	out := filepath.Join(t.TempDir(), "out.conll")

	failures, err := RunParse(context.Background(), DefaultConfig(), table, gold, false, out, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, failures)

	total, err := RunDepEval(out, gold, false)
	require.NoError(t, err)
	assert.Equal(t, 1.0, total.UAS.Precision())
	assert.Equal(t, 1.0, total.LAS.Precision())
	assert.Equal(t, 1, total.LAS.Exact)

	// a parse that ignores the copula rule still gets the head of seen
	flat := writeFile(t, "flat.conll", "1\tWas\tbe\tVBD\tVBD\t_\t0\troot\t_\t_\n"+
		"2\tit\tit\tPRP\tPRP\t_\t0\troot\t_\t_\n"+
		"3\tseen\tsee\tVBN\tVBN\t_\t0\troot\t_\t_\n"+
		"4\tby\tby\tIN\tIN\t_\t0\troot\t_\t_\n"+
		"5\tJohn\tjohn\tNNP\tNNP\t_\t0\troot\t_\t_\n\n")
	total, err = RunDepEval(flat, gold, false)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, total.UAS.Precision(), 1e-9)
	assert.Equal(t, 0, total.UAS.Exact)
	assert.Equal(t, map[string]int{eval.HEAD_ERROR: 4}, total.ErrorClasses())
	root := total.Labels["root"]
	assert.InDelta(t, 0.2, root.Precision(), 1e-9)
	assert.Equal(t, 1.0, root.Recall())
	assert.Equal(t, 0.0, total.Labels["auxpass"].Recall())
}

func TestRunParseTagged(t *testing.T) {
	in := writeFile(t, "in.tagged", "Was/VBD it/PRP seen/VBN by/IN John/NNP\n")
	table := writeFile(t, "table.yaml", PASSIVE_TABLE)
	out := filepath.Join(t.TempDir(), "out.conll")

	failures, err := RunParse(context.Background(), DefaultConfig(), table, in, true, out, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, failures)

	// the lemma of Was comes from its form, so the copula rule cannot fire
	parsed := readTrees(t, mustRead(t, out))
	require.Len(t, parsed, 1)
	require.NoError(t, parsed[0].Validate())
	assert.Equal(t, "was", parsed[0].Node(1).Lemma)
	assert.Equal(t, 1, parsed[0].Node(2).Head)
	assert.Equal(t, "nsubj", parsed[0].Node(2).Label)
}

func mustRead(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunParseErrors(t *testing.T) {
	gold := writeFile(t, "gold.conll", GOLD_CONLL)
	table := writeFile(t, "table.yaml", PASSIVE_TABLE)
	out := filepath.Join(t.TempDir(), "out.conll")

	_, err := RunParse(context.Background(), DefaultConfig(), table+".missing", gold, false, out, 1)
	assert.Error(t, err)

	c := DefaultConfig()
	c.Labels = []string{"nsubj"}
	_, err = RunParse(context.Background(), c, table, gold, false, out, 1)
	assert.ErrorIs(t, err, ErrUnknownLabel)

	_, err = RunDepEval(gold, writeFile(t, "two.conll", GOLD_CONLL+GOLD_CONLL), false)
	assert.Error(t, err)
}

func TestRunOracle(t *testing.T) {
	in := writeFile(t, "gold.conll", GOLD_CONLL+UNPARSED_CONLL+GOLD_CONLL)
	result, err := RunOracle(context.Background(), in, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sentences)
	assert.Equal(t, 2, result.Reproduced)
	assert.Equal(t, 1, result.Skipped)
	assert.Greater(t, result.Transitions, 0)
	assert.NotEmpty(t, result.String())
}

func TestReproduceGoldNonProjective(t *testing.T) {
	// A(1) <- C(3), B(2) <- D(4), crossing arcs
	trees := readTrees(t, "1\tA\t_\tNN\tNN\t_\t3\tdep\t_\t_\n"+
		"2\tB\t_\tNN\tNN\t_\t4\tdep\t_\t_\n"+
		"3\tC\t_\tVB\tVB\t_\t0\troot\t_\t_\n"+
		"4\tD\t_\tNN\tNN\t_\t3\tdobj\t_\t_\n\n")
	ok, transitions, err := ReproduceGold(context.Background(), trees[0], false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Greater(t, transitions, 3)
}
