package app

import (
	"errors"
	"fmt"
	"log"
	"os"

	"sbparse/nlp/format/conll"
	"sbparse/nlp/format/taggedsentence"
	dep "sbparse/nlp/parser/dependency/transition"

	"github.com/gonuts/commander"
)

var (
	allOut   bool = true
	parseOut bool = false

	// processing options
	BeamSize       int
	Margin         float64
	ConcurrentBeam bool
	Workers        int

	// file names
	configFile  string
	tableFile   string
	labelsFile  string
	input       string
	inputTagged bool
	inputGold   string
	outConll    string
)

var ErrMissingFlag = errors.New("app: required flag not set")

func VerifyExists(filename string) bool {
	_, err := os.Stat(filename)
	if err != nil {
		log.Println("Error accessing file", filename)
		log.Println(err)
		return false
	}
	return true
}

func VerifyFlags(cmd *commander.Command, required []string) error {
	for _, flag := range required {
		f := cmd.Flag.Lookup(flag)
		if f == nil || f.Value.String() == "" {
			log.Printf("Required flag %s not set", flag)
			cmd.Usage()
			return fmt.Errorf("%w: -%s", ErrMissingFlag, flag)
		}
	}
	return nil
}

// ReadTrees reads a conll file into trees, keeping any arcs it carries
func ReadTrees(filename string) ([]*dep.DepTree, error) {
	sents, err := conll.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed reading conll file %s: %w", filename, err)
	}
	trees := make([]*dep.DepTree, len(sents))
	for i, sent := range sents {
		tree, err := conll.Conll2Tree(sent)
		if err != nil {
			return nil, fmt.Errorf("sentence %d of %s: %w", i, filename, err)
		}
		trees[i] = tree
	}
	return trees, nil
}

// ReadInput reads trees from a conll file, or from word/TAG lines when
// tagged is set
func ReadInput(filename string, tagged bool) ([]*dep.DepTree, error) {
	if !tagged {
		return ReadTrees(filename)
	}
	sents, err := taggedsentence.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed reading tagged file %s: %w", filename, err)
	}
	trees := make([]*dep.DepTree, len(sents))
	for i, sent := range sents {
		trees[i] = dep.NewDepTree(sent)
	}
	return trees, nil
}

func WriteTrees(filename string, trees []*dep.DepTree) error {
	sents := make(conll.Sentences, len(trees))
	for i, tree := range trees {
		sents[i] = conll.Tree2Conll(tree)
	}
	return conll.WriteFile(filename, sents)
}
