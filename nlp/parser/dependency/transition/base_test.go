package transition

import (
	nlp "sbparse/nlp/types"
)

var (
	// John saw Mary with a telescope
	TEST_SENT = nlp.BasicTaggedSentence{
		{"John", "john", "NNP"},
		{"saw", "see", "VBD"},
		{"Mary", "mary", "NNP"},
		{"with", "with", "IN"},
		{"a", "a", "DT"},
		{"telescope", "telescope", "NN"},
	}
	TEST_HEADS  = []int{NO_HEAD, 2, 0, 2, 2, 6, 4}
	TEST_LABELS = []string{"", "nsubj", "root", "dobj", "prep", "det", "pobj"}

	// A hearing is scheduled on the issue today (non-projective)
	TEST_NP_SENT = nlp.BasicTaggedSentence{
		{"A", "a", "DT"},
		{"hearing", "hearing", "NN"},
		{"is", "be", "VBZ"},
		{"scheduled", "schedule", "VBN"},
		{"on", "on", "IN"},
		{"the", "the", "DT"},
		{"issue", "issue", "NN"},
		{"today", "today", "NN"},
	}
	TEST_NP_HEADS  = []int{NO_HEAD, 2, 4, 4, 0, 2, 7, 5, 4}
	TEST_NP_LABELS = []string{"", "det", "nsubjpass", "auxpass", "root", "prep", "det", "pobj", "tmod"}
)

// goldTree builds a finished tree from parallel head and label slices
func goldTree(sent nlp.TaggedSentence, heads []int, labels []string) *DepTree {
	t := NewDepTree(sent)
	for i := 1; i < t.Len(); i++ {
		t.Nodes[i].Head = heads[i]
		t.Nodes[i].Label = labels[i]
	}
	return t
}

func treeHeads(t *DepTree) []int {
	heads := make([]int, t.Len())
	for i, n := range t.Nodes {
		heads[i] = n.Head
	}
	return heads
}

func treeLabels(t *DepTree) []string {
	labels := make([]string, t.Len())
	for i, n := range t.Nodes {
		labels[i] = n.Label
	}
	return labels
}
