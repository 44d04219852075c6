package app

import (
	"context"
	"fmt"
	"log"

	"sbparse/alg/transition/model"
	"sbparse/nlp/parser/dependency/english"
	dep "sbparse/nlp/parser/dependency/transition"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

var oracleWithRules, oracleVerbose bool

type OracleResult struct {
	Sentences, Reproduced, Skipped int
	Transitions                    int
}

func (r *OracleResult) String() string {
	return fmt.Sprintf("Reproduced %d/%d gold trees (%d incomplete skipped), %d transitions",
		r.Reproduced, r.Sentences, r.Skipped, r.Transitions)
}

// GoldArcs returns the heads and labels of t indexed by node id
func GoldArcs(t *dep.DepTree) ([]int, []string) {
	heads, labels := make([]int, t.Len()), make([]string, t.Len())
	for i, n := range t.Nodes {
		heads[i], labels[i] = n.Head, n.Label
	}
	return heads, labels
}

// ReproduceGold derives gold with its own oracle and reports whether the
// parse recovered every arc. withRules adds the English corrections.
func ReproduceGold(ctx context.Context, gold *dep.DepTree, withRules bool) (bool, int, error) {
	heads, labels := GoldArcs(gold)
	oracle, err := model.NewOracle(heads, labels)
	if err != nil {
		return false, 0, err
	}
	parser := &dep.Parser{Model: oracle, BeamSize: 1}
	if withRules {
		parser.Policy = &english.Policy{}
	}
	parsed, params, err := parser.ParseFrom(ctx, dep.NewListConfigurationFromTree(gold), nil)
	if err != nil {
		return false, 0, err
	}
	for i, n := range parsed.Nodes[1:] {
		if n.Head != heads[i+1] || n.Label != labels[i+1] {
			if oracleVerbose {
				log.Printf("Oracle mismatch at node %d: got %d %s, gold %d %s", i+1, n.Head, n.Label, heads[i+1], labels[i+1])
			}
			return false, len(params.Sequence), nil
		}
	}
	return true, len(params.Sequence), nil
}

// RunOracle reproduces every complete gold tree in the conll file in
func RunOracle(ctx context.Context, in string, withRules bool) (*OracleResult, error) {
	trees, err := ReadTrees(in)
	if err != nil {
		return nil, err
	}
	result := new(OracleResult)
	for i, gold := range trees {
		if err := gold.Validate(); err != nil {
			log.Printf("Skipping sentence %d: %v", i, err)
			result.Skipped++
			continue
		}
		result.Sentences++
		ok, transitions, err := ReproduceGold(ctx, gold, withRules)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
		result.Transitions += transitions
		if ok {
			result.Reproduced++
		} else {
			log.Println("Failed reproducing sentence", i)
		}
	}
	return result, nil
}

func Oracle(cmd *commander.Command, args []string) error {
	REQUIRED_FLAGS := []string{"in"}
	if err := VerifyFlags(cmd, REQUIRED_FLAGS); err != nil {
		return err
	}
	log.Println("Data")
	log.Printf("Gold File:\t%s", input)
	if !VerifyExists(input) {
		return fmt.Errorf("missing gold file %s", input)
	}
	result, err := RunOracle(context.Background(), input, oracleWithRules)
	if err != nil {
		return err
	}
	log.Println(result)
	return nil
}

func OracleCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       Oracle,
		UsageLine: "oracle <file options> [arguments]",
		Short:     "derives gold trees with the static oracle",
		Long: `
derives every gold tree with the static oracle and counts the trees it reproduces

	$ ./sbparse oracle -in <gold conll> [-rules]

`,
		Flag: *flag.NewFlagSet("oracle", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&input, "in", "", "Gold Conll File")
	cmd.Flag.BoolVar(&oracleWithRules, "rules", false, "Apply the English correction rules while deriving")
	cmd.Flag.BoolVar(&oracleVerbose, "v", false, "Log each mismatching arc")
	return cmd
}
