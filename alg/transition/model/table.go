package model

import (
	"fmt"
	"os"
	"sort"

	. "sbparse/alg/transition"

	"gopkg.in/yaml.v3"
)

const WILDCARD = "*"

type Entry struct {
	Label string
	Score float64
}

type Rule struct {
	Lambda      string
	Beta        string
	Predictions []Entry
}

// TableSetup is the YAML form of a Table:
//
//	rules:
//	  - lambda: PRP
//	    beta: VBD
//	    predictions:
//	      - {label: LR-nsubj, score: 0.9}
//	      - {label: NS, score: 0.2}
//	defaults:
//	  - {label: NS, score: 0.5}
type TableSetup struct {
	Rules    []Rule  `yaml:"rules"`
	Defaults []Entry `yaml:"defaults"`
}

type tableRule struct {
	lambda, beta string
	predictions  Predictions
}

// Table is a lookup model keyed by the tags at lambda and beta. The first
// matching rule wins; "*" matches any tag.
type Table struct {
	rules    []tableRule
	defaults Predictions
}

var _ Model = &Table{}

var TABLE_DEFAULTS = Predictions{
	{Label: NO_SHIFT, Score: 0.5},
	{Label: NO_PASS, Score: 0.25},
}

func compileEntries(entries []Entry) (Predictions, error) {
	retval := make(Predictions, len(entries))
	for i, e := range entries {
		l, err := ParseLabel(e.Label)
		if err != nil {
			return nil, err
		}
		retval[i] = Prediction{Label: l, Score: e.Score}
	}
	return retval, nil
}

func NewTable(setup *TableSetup) (*Table, error) {
	t := &Table{rules: make([]tableRule, len(setup.Rules))}
	for i, r := range setup.Rules {
		ps, err := compileEntries(r.Predictions)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s %s): %w", i, r.Lambda, r.Beta, err)
		}
		if err := ps.Validate(); err != nil {
			return nil, fmt.Errorf("rule %d (%s %s): %w", i, r.Lambda, r.Beta, err)
		}
		lambda, beta := r.Lambda, r.Beta
		if lambda == "" {
			lambda = WILDCARD
		}
		if beta == "" {
			beta = WILDCARD
		}
		t.rules[i] = tableRule{lambda, beta, ps}
	}
	if len(setup.Defaults) == 0 {
		t.defaults = TABLE_DEFAULTS.Copy()
		return t, nil
	}
	defaults, err := compileEntries(setup.Defaults)
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	t.defaults = defaults
	return t, nil
}

func LoadTable(data []byte) (*Table, error) {
	setup := new(TableSetup)
	if err := yaml.Unmarshal(data, setup); err != nil {
		return nil, err
	}
	return NewTable(setup)
}

func LoadTableFile(filename string) (*Table, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return LoadTable(data)
}

func match(pattern, value string) bool {
	return pattern == WILDCARD || pattern == value
}

func (t *Table) Predict(conf Configuration) (Predictions, error) {
	lambdaPOS, _ := conf.Attribute(conf.Lambda(), ATTR_POS)
	betaPOS, _ := conf.Attribute(conf.Beta(), ATTR_POS)
	for _, r := range t.rules {
		if match(r.lambda, lambdaPOS) && match(r.beta, betaPOS) {
			return r.predictions.Copy(), nil
		}
	}
	return t.defaults.Copy(), nil
}

func (t *Table) Len() int {
	return len(t.rules)
}

// Deprels lists the arc labels the table can predict
func (t *Table) Deprels() []string {
	seen := make(map[string]bool)
	retval := make([]string, 0, 16)
	add := func(ps Predictions) {
		for _, p := range ps {
			if p.Label.Deprel != "" && !seen[p.Label.Deprel] {
				seen[p.Label.Deprel] = true
				retval = append(retval, p.Label.Deprel)
			}
		}
	}
	for _, r := range t.rules {
		add(r.predictions)
	}
	add(t.defaults)
	sort.Strings(retval)
	return retval
}
