package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stacktools/stableset/pkg/config"
	"github.com/stacktools/stableset/pkg/errors"
	"github.com/stacktools/stableset/pkg/pipeline"
	"github.com/stacktools/stableset/pkg/stability"
	"github.com/stacktools/stableset/pkg/stableio"
)

// analyzeOptions holds the flag values for the analyze command.
type analyzeOptions struct {
	predicates []string
	mode       string
	w          int
	m          int
	cap        int
	force      bool
	workers    int
	explain    bool
	hasHeader  bool
	jsonPath   string
	noCache    bool
	refresh    bool
}

// newAnalyzeCmd creates the analyze command.
//
// The command loads a CSV preference table, derives the majority dominance
// relation, and searches for stable sets under the requested predicates.
// Flag values win over stableset.toml config values.
func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <profile.csv>",
		Short: "Search a preference profile for stable sets",
		Long: `Analyze loads a CSV preference table (one column per voter, rows ordered
from most to least preferred), derives the pairwise majority dominance
relation, and searches the subset lattice for stable sets under one or more
stability predicates.

Finding no stable set is a legitimate outcome, not an error: the command
reports it and exits successfully.`,
		Example: `  # Search under every registered predicate
  stableset analyze ballots.csv

  # Only Van Deemen and Duggan, reporting every qualifying set
  stableset analyze ballots.csv --predicates vandeemen,duggan --mode all

  # w-Stable with a margin threshold of 3, explanations included
  stableset analyze ballots.csv --predicates wstable --w 3 --explain

  # Machine-readable report
  stableset analyze ballots.csv --json report.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringSliceVarP(&opts.predicates, "predicates", "p", nil, "predicates to search under (default: all registered)")
	cmd.Flags().StringVar(&opts.mode, "mode", string(stability.FirstMinimal), "search mode: first (smallest qualifying size) or all")
	cmd.Flags().IntVar(&opts.w, "w", 0, "w-Stable margin threshold (default from config, minimum 1)")
	cmd.Flags().IntVar(&opts.m, "m", 0, "m-Stable tolerance for undefeated outside alternatives")
	cmd.Flags().IntVar(&opts.cap, "cap", 0, "maximum universe size for an unforced search (default from config)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "run the exhaustive search even above the cap")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "search worker count (default: number of CPUs)")
	cmd.Flags().BoolVar(&opts.explain, "explain", false, "show defeat witnesses for each reported set")
	cmd.Flags().BoolVar(&opts.hasHeader, "header", false, "treat the first CSV row as voter names")
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "write the full JSON report to a file (use - for stdout)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the local result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached results exist")

	return cmd
}

func runAnalyze(cmd *cobra.Command, profilePath string, opts *analyzeOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := config.LoadOptional()
	if err != nil {
		logger.Warnf("Config ignored: %v", err)
		cfg = config.Default()
	}
	if !cmd.Flags().Changed("cap") {
		opts.cap = cfg.Cap
	}
	if !cmd.Flags().Changed("workers") {
		opts.workers = cfg.Workers
	}
	if !cmd.Flags().Changed("w") {
		opts.w = cfg.Predicates.W
	}
	if !cmd.Flags().Changed("m") {
		opts.m = cfg.Predicates.M
	}

	mode, err := stability.ValidateMode(opts.mode)
	if err != nil {
		return err
	}
	ids, err := parsePredicates(opts.predicates)
	if err != nil {
		return err
	}

	runner, err := newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		ProfilePath: profilePath,
		HasHeader:   opts.hasHeader,
		Predicates:  ids,
		Mode:        mode,
		Cap:         opts.cap,
		Force:       opts.force,
		Workers:     opts.workers,
		Params:      stability.Params{W: opts.w, M: opts.m},
		Explain:     opts.explain,
		Refresh:     opts.refresh,
		Logger:      logger,
	}

	spinner := newSpinnerWithContext(ctx, "Analyzing "+profilePath)
	spinner.Start()
	result, err := runner.Analyze(ctx, popts)
	if err != nil {
		if spinner.Cancelled() || errors.GetCode(err) == errors.ErrCodeCancelled {
			spinner.StopWithError("Analysis cancelled")
		} else {
			spinner.StopWithError(errors.UserMessage(err))
		}
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Analyzed %s voters x %s alternatives",
		StyleHighlight.Render(fmt.Sprintf("%d", result.Profile.Voters())),
		StyleHighlight.Render(fmt.Sprintf("%d", result.Profile.Alternatives()))))

	printGraphSummary(result)
	for _, res := range result.Report.Results {
		printSearchResult(res, opts.explain)
	}
	printBorda(result.Report)

	if opts.jsonPath != "" {
		if err := writeReport(result.Report, opts.jsonPath); err != nil {
			return err
		}
		if opts.jsonPath != "-" {
			printFile(opts.jsonPath)
		}
	}
	return nil
}

// parsePredicates normalizes user-supplied predicate names. Nil input means
// all registered predicates (the pipeline default).
func parsePredicates(names []string) ([]stability.ID, error) {
	var ids []stability.ID
	for _, name := range names {
		id, err := stability.ParseID(name)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printGraphSummary(result *pipeline.Result) {
	g := result.Report.Graph
	printDetail("%d majority edges, %d covering edges", len(g.Edges), len(g.CoveringEdges))
	if g.CondorcetWinner != "" {
		printSuccess("Condorcet winner: %s", StyleHighlight.Render(g.CondorcetWinner))
	} else {
		printWarning("No Condorcet winner (majority relation is cyclic or incomplete)")
	}
}

func printSearchResult(res *stability.Result, explain bool) {
	pred, err := stability.Lookup(res.Predicate)
	if err != nil {
		return
	}
	fmt.Println()
	fmt.Println(StyleTitle.Render(pred.Name()))
	printDetail("%s", pred.Description())

	if !res.Found {
		printWarning("No stable set found")
	} else {
		for _, labels := range res.Qualifying {
			printInfo("%s", StyleValue.Render(formatSet(labels)))
			if explain {
				printWitnesses(res, labels)
			}
		}
	}
	printDetail("examined %d subsets, pruned %d branches, %d size levels",
		res.Stats.Examined, res.Stats.Pruned, res.Stats.Levels)
}

// printWitnesses shows how each outside alternative is defeated by the set.
func printWitnesses(res *stability.Result, labels []string) {
	ev, ok := res.Explanations[strings.Join(labels, ",")]
	if !ok {
		return
	}
	for _, d := range ev.Defenses {
		line := fmt.Sprintf("%s defeats %s (%s", d.By, d.Outside, d.Via)
		if d.Margin > 0 {
			line += fmt.Sprintf(", margin %d", d.Margin)
		}
		line += ")"
		printDetail("%s", line)
	}
	for _, y := range ev.Undefeated {
		printDetail("%s stays undefeated (tolerated)", y)
	}
}

func printBorda(report *stableio.Report) {
	if len(report.Borda) == 0 {
		return
	}
	fmt.Println()
	fmt.Println(StyleTitle.Render("Borda Ranking"))
	for _, s := range report.Borda {
		printDetail("%-12s %d", s.Alternative, s.Score)
	}
}

func formatSet(labels []string) string {
	return "{" + strings.Join(labels, ", ") + "}"
}

func writeReport(report *stableio.Report, path string) error {
	if path == "-" {
		return stableio.WriteReport(report, os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create %s", path)
	}
	defer f.Close()
	return stableio.WriteReport(report, f)
}
