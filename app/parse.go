package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"sbparse/alg/search"
	"sbparse/alg/transition/model"
	dep "sbparse/nlp/parser/dependency/transition"
	"sbparse/util"

	"github.com/gonuts/commander"
	"github.com/gonuts/flag"
	"golang.org/x/sync/errgroup"
)

const FALLBACK_LABEL = "dep"

var (
	showConsiderations bool
	showCorrections    bool
	showForks          bool
)

// FlatTree attaches every node of t to the root with the fallback label
func FlatTree(t *dep.DepTree) *dep.DepTree {
	flat := t.Copy()
	for _, n := range flat.Nodes[1:] {
		n.Head, n.Label = 0, FALLBACK_LABEL
	}
	return flat
}

// ParseAll parses trees with at most workers sentences in flight and
// returns the parses in input order. A sentence the parser fails on comes
// back as a FlatTree and is counted in the returned failures; only a done
// context stops the run.
func ParseAll(ctx context.Context, parser *dep.Parser, trees []*dep.DepTree, workers int) ([]*dep.DepTree, int, error) {
	if workers < 1 {
		workers = 1
	}
	parsed := make([]*dep.DepTree, len(trees))
	failed := make([]bool, len(trees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, tree := range trees {
		i, tree := i, tree
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, params, err := parser.ParseFrom(gctx, dep.NewListConfigurationFromTree(tree), nil)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				log.Printf("Failed parsing sentence %d (len %d): %v", i, tree.Len()-1, err)
				parsed[i], failed[i] = FlatTree(tree), true
				return nil
			}
			if parseOut {
				log.Printf("Parsed sentence %d score %v corrections %d\n%s", i, params.Score, params.PostCorrections, result.StringEdges())
			}
			parsed[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	var failures int
	for _, f := range failed {
		if f {
			failures++
		}
	}
	return parsed, failures, nil
}

// RunParse parses the sentences of in with the table model at tablePath and
// writes the trees to out as conll. It returns the number of fallback
// sentences.
func RunParse(ctx context.Context, c *Config, tablePath, in string, tagged bool, out string, workers int) (int, error) {
	table, err := model.LoadTableFile(tablePath)
	if err != nil {
		return 0, fmt.Errorf("failed loading model %s: %w", tablePath, err)
	}
	if err := c.CheckLabels(table.Deprels()); err != nil {
		return 0, err
	}
	log.Println("Loaded model with", table.Len(), "rules from", tablePath)

	trees, err := ReadInput(in, tagged)
	if err != nil {
		return 0, err
	}
	log.Println("Read", len(trees), "sentences from", in)

	startTime := time.Now()
	parsed, failures, err := ParseAll(ctx, c.Parser(table), trees, workers)
	if err != nil {
		return 0, err
	}
	if allOut {
		log.Println("PARSE Total Time:", time.Since(startTime))
	}
	if parseOut {
		util.LogMemory()
	}
	if failures > 0 {
		log.Println("Sentences parsed flat after failures:", failures)
	}
	if err := WriteTrees(out, parsed); err != nil {
		return failures, fmt.Errorf("failed writing %s: %w", out, err)
	}
	log.Println("Wrote", len(parsed), "parsed sentences to", out)
	return failures, nil
}

func Parse(cmd *commander.Command, args []string) error {
	REQUIRED_FLAGS := []string{"m", "in", "oc"}
	if err := VerifyFlags(cmd, REQUIRED_FLAGS); err != nil {
		return err
	}
	c, err := ReadConfigFile(configFile)
	if err != nil {
		return err
	}
	cmd.Flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "b":
			c.Beam = BeamSize
		case "margin":
			c.Margin = Margin
		case "bconc":
			c.Concurrent = ConcurrentBeam
		}
	})
	c.ShowConsiderations, c.ShowCorrections, c.ShowForks = showConsiderations, showCorrections, showForks
	if labelsFile != "" {
		if err := c.AddLabelsFile(labelsFile); err != nil {
			return err
		}
	}
	if err := c.Validate(); err != nil {
		return err
	}

	ParseConfigOut(c)
	log.Println()
	log.Println("Data")
	log.Printf("Model:\t\t%s", tableFile)
	log.Printf("Input:\t\t%s", input)
	log.Printf("Output:\t\t%s", outConll)
	if !VerifyExists(tableFile) || !VerifyExists(input) {
		return fmt.Errorf("missing input files")
	}
	log.Println()

	_, err = RunParse(context.Background(), c, tableFile, input, inputTagged, outConll, Workers)
	return err
}

func ParseCmd() *commander.Command {
	cmd := &commander.Command{
		Run:       Parse,
		UsageLine: "parse <file options> [arguments]",
		Short:     "parses tagged sentences",
		Long: `
parses tagged conll sentences with a tag table model and the English correction rules

	$ ./sbparse parse -m <model yaml> -in <input conll> -oc <out conll> [-c <config yaml>] [-tagged] [options]

`,
		Flag: *flag.NewFlagSet("parse", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&configFile, "c", "", "Optional - Parser Configuration File (yaml)")
	cmd.Flag.StringVar(&tableFile, "m", "", "Model Table File (yaml)")
	cmd.Flag.StringVar(&labelsFile, "l", "", "Optional - Dependency Labels Configuration File")
	cmd.Flag.StringVar(&input, "in", "", "Input Tagged Conll File")
	cmd.Flag.BoolVar(&inputTagged, "tagged", false, "Input holds word/TAG sentences, one per line")
	cmd.Flag.StringVar(&outConll, "oc", "", "Output Conll File")
	cmd.Flag.IntVar(&Workers, "j", 1, "Sentences parsed concurrently")
	cmd.Flag.IntVar(&BeamSize, "b", 1, "Beam Size (overrides config)")
	cmd.Flag.Float64Var(&Margin, "margin", 0.5, "Branching Score Margin (overrides config)")
	cmd.Flag.BoolVar(&ConcurrentBeam, "bconc", false, "Concurrent Beam (overrides config)")
	cmd.Flag.BoolVar(&parseOut, "showparse", false, "Log every parsed sentence")
	cmd.Flag.BoolVar(&showConsiderations, "showconsiderations", false, "Log every prediction considered")
	cmd.Flag.BoolVar(&showCorrections, "showcorrections", false, "Log corrections made by the English rules")
	cmd.Flag.BoolVar(&showForks, "showfork", false, "Log branch points taken and the winning derivation")
	cmd.Flag.BoolVar(&search.AllOut, "showbeam", false, "Show candidates in beam")
	return cmd
}
