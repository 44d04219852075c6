package app

import (
	"fmt"
	"log"

	"sbparse/eval"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
)

const TOP_ERRORS = 10

var (
	ignorePunct bool
	labelsOut   bool
)

func DepEvalConfigOut() error {
	log.Println("Configuration")
	log.Printf("Ignore Punctuation:\t%v", ignorePunct)
	log.Println()
	log.Println("Data")
	log.Printf("Parsed result file:\t%s", input)
	if !VerifyExists(input) {
		return fmt.Errorf("missing parsed file %s", input)
	}
	log.Printf("Gold file:\t\t%s", inputGold)
	if !VerifyExists(inputGold) {
		return fmt.Errorf("missing gold file %s", inputGold)
	}
	return nil
}

// RunDepEval scores the parsed conll file test against gold
func RunDepEval(test, gold string, ignorePunct bool) (*eval.TotalDepEval, error) {
	testTrees, err := ReadTrees(test)
	if err != nil {
		return nil, err
	}
	goldTrees, err := ReadTrees(gold)
	if err != nil {
		return nil, err
	}
	if len(testTrees) != len(goldTrees) {
		return nil, fmt.Errorf("%w: %d parsed sentences, %d gold", eval.ErrLengthMismatch, len(testTrees), len(goldTrees))
	}
	total := eval.NewTotalDepEval(ignorePunct)
	for i := range testTrees {
		if err := total.Add(testTrees[i], goldTrees[i]); err != nil {
			return nil, fmt.Errorf("sentence %d: %w", i, err)
		}
	}
	return total, nil
}

func DepEval(cmd *commander.Command, args []string) error {
	REQUIRED_FLAGS := []string{"p", "g"}
	if err := VerifyFlags(cmd, REQUIRED_FLAGS); err != nil {
		return err
	}
	if err := DepEvalConfigOut(); err != nil {
		return err
	}
	total, err := RunDepEval(input, inputGold, ignorePunct)
	if err != nil {
		return err
	}
	log.Println("Result (UAS, LAS, UEM #, UEM %)")
	log.Println(total)
	classes := total.ErrorClasses()
	log.Printf("Errors:\t%d head, %d label", classes[eval.HEAD_ERROR], classes[eval.LABEL_ERROR])
	if labelsOut {
		log.Println("Labels (gold #, precision, recall, F1)")
		for _, l := range total.LabelNames() {
			r := total.Labels[l]
			log.Printf("\t%s\t%d\t%.4f\t%.4f\t%.4f", l, r.ConditionPositives(), r.Precision(), r.Recall(), r.F1())
		}
	}
	if top := total.TopErrors(TOP_ERRORS); len(top) > 0 {
		log.Println("Most misattached gold labels")
		for _, e := range top {
			log.Printf("\t%s\t%d", e.S, e.N)
		}
	}
	return nil
}

func DepEvalCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       DepEval,
		UsageLine: "eval <file options> [arguments]",
		Short:     "evaluates parsed conll against gold",
		Long: `
computes unlabeled and labeled attachment scores of a parse against gold

	$ ./sbparse eval -p <parsed conll> -g <gold conll> [-punct] [-showlabels]

`,
		Flag: *flag.NewFlagSet("eval", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&input, "p", "", "Parsed Conll File")
	cmd.Flag.StringVar(&inputGold, "g", "", "Gold Conll File")
	cmd.Flag.BoolVar(&ignorePunct, "punct", false, "Ignore punctuation tokens")
	cmd.Flag.BoolVar(&labelsOut, "showlabels", false, "Show precision and recall per dependency label")
	return cmd
}
