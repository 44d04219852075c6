package eval

import (
	"errors"
	"fmt"
	"sort"

	dep "sbparse/nlp/parser/dependency/transition"
	"sbparse/util"
)

var ErrLengthMismatch = errors.New("eval: test and gold differ in length")

const (
	HEAD_ERROR  = "head"
	LABEL_ERROR = "label"
)

// AttachmentError is a token whose head or label differs from gold
type AttachmentError struct {
	Node                 int
	Token                string
	TestHead, GoldHead   int
	TestLabel, GoldLabel string
}

var _ Error = &AttachmentError{}

func (e *AttachmentError) Class() string {
	if e.TestHead != e.GoldHead {
		return HEAD_ERROR
	}
	return LABEL_ERROR
}

func (e *AttachmentError) String() string {
	return fmt.Sprintf("%d:%s %d/%s (gold %d/%s)", e.Node, e.Token, e.TestHead, e.TestLabel, e.GoldHead, e.GoldLabel)
}

// DepEval scores a parsed tree against gold. The returned result is labeled
// attachment; its Other holds the unlabeled result. Punctuation tokens of the
// gold tree are skipped when ignorePunct is set.
func DepEval(test, gold *dep.DepTree, ignorePunct bool) (*Result, error) {
	if test.Len() != gold.Len() {
		return nil, fmt.Errorf("%w: %d and %d", ErrLengthMismatch, test.Len(), gold.Len())
	}
	las, uas := &Result{}, &Result{}
	las.Other = uas
	for i := 1; i < gold.Len(); i++ {
		t, g := test.Nodes[i], gold.Nodes[i]
		if ignorePunct && util.IsPunct(g.Token) {
			continue
		}
		if t.Head != g.Head {
			uas.FP++
			las.FP++
		} else if t.Label != g.Label {
			uas.TP++
			las.FP++
		} else {
			uas.TP++
			las.TP++
			continue
		}
		las.Errors = append(las.Errors, &AttachmentError{
			Node:      i,
			Token:     g.Token,
			TestHead:  t.Head,
			GoldHead:  g.Head,
			TestLabel: t.Label,
			GoldLabel: g.Label,
		})
	}
	return las, nil
}

// TotalDepEval accumulates labeled and unlabeled totals over a corpus.
// Labels holds one result per dependency label: a correct attachment is a
// TP of its label, a wrong one a FN of the gold label and a FP of the
// parsed label.
type TotalDepEval struct {
	LAS, UAS    *Total
	Labels      map[string]*Result
	IgnorePunct bool
}

func NewTotalDepEval(ignorePunct bool) *TotalDepEval {
	return &TotalDepEval{
		LAS:         &Total{Results: []*Result{}},
		UAS:         &Total{},
		Labels:      make(map[string]*Result),
		IgnorePunct: ignorePunct,
	}
}

func (e *TotalDepEval) Add(test, gold *dep.DepTree) error {
	r, err := DepEval(test, gold, e.IgnorePunct)
	if err != nil {
		return err
	}
	e.LAS.Add(r)
	e.UAS.Add(r.Other.(*Result))
	for i := 1; i < gold.Len(); i++ {
		t, g := test.Nodes[i], gold.Nodes[i]
		if e.IgnorePunct && util.IsPunct(g.Token) {
			continue
		}
		if t.Head == g.Head && t.Label == g.Label {
			e.label(g.Label).TP++
			continue
		}
		e.label(g.Label).FN++
		if t.Label != "" {
			e.label(t.Label).FP++
		}
	}
	return nil
}

func (e *TotalDepEval) label(l string) *Result {
	r, exists := e.Labels[l]
	if !exists {
		r = &Result{}
		e.Labels[l] = r
	}
	return r
}

// LabelNames lists the labels seen in test or gold, sorted
func (e *TotalDepEval) LabelNames() []string {
	names := make([]string, 0, len(e.Labels))
	for l := range e.Labels {
		names = append(names, l)
	}
	sort.Strings(names)
	return names
}

// ErrorClasses counts labeled attachment errors by class
func (e *TotalDepEval) ErrorClasses() map[string]int {
	return e.LAS.Errors().ByType()
}

func (e *TotalDepEval) String() string {
	return fmt.Sprintf("UAS %.4f LAS %.4f UEM %d/%d (%.4f) LEM %d", e.UAS.Precision(), e.LAS.Precision(), e.UAS.Exact, e.UAS.Population, e.UAS.ExactMatch(), e.LAS.Exact)
}

// TopErrors lists the gold labels most often misattached, at most n of them
func (e *TotalDepEval) TopErrors(n int) []util.TopNStrIntDatum {
	counts := make(map[string]int)
	for _, er := range e.LAS.Errors() {
		if a, ok := er.(*AttachmentError); ok {
			counts[a.GoldLabel]++
		}
	}
	return util.GetTopNStrInt(counts, n)
}
