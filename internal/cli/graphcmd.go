package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stacktools/stableset/pkg/config"
	"github.com/stacktools/stableset/pkg/errors"
	"github.com/stacktools/stableset/pkg/pipeline"
	"github.com/stacktools/stableset/pkg/preference"
	"github.com/stacktools/stableset/pkg/render/nodelink"
	"github.com/stacktools/stableset/pkg/stableio"
)

// graphOptions holds the flag values for the graph command.
type graphOptions struct {
	edges     string
	format    string
	output    string
	hasHeader bool
	noCache   bool
	refresh   bool
}

// newGraphCmd creates the graph command, which exports the dominance
// relation of a profile without running any stability search.
func newGraphCmd() *cobra.Command {
	opts := &graphOptions{}

	cmd := &cobra.Command{
		Use:   "graph <profile.csv>",
		Short: "Export the dominance relation as DOT, SVG, or JSON",
		Long: `Graph derives the pairwise majority dominance relation from a CSV
preference table and exports it for display.

The covering edge set is the reduced relation meant for order-diagram
display: redundant edges whose endpoints stay connected through other
majority chains are dropped, and restoring the transitive closure recovers
the full reachability.`,
		Example: `  # Order diagram as SVG
  stableset graph ballots.csv --format svg -o ballots.svg

  # Full majority relation as DOT
  stableset graph ballots.csv --edges full --format dot

  # Machine-readable node/edge lists
  stableset graph ballots.csv --format json -o ballots.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.edges, "edges", string(nodelink.EdgesCovering), "edge set to export: full or covering")
	cmd.Flags().StringVarP(&opts.format, "format", "f", pipeline.FormatDOT, "output format: dot, svg, or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: profile name with the format extension, - for stdout)")
	cmd.Flags().BoolVar(&opts.hasHeader, "header", false, "treat the first CSV row as voter names")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the local result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached artifacts exist")

	return cmd
}

func runGraph(cmd *cobra.Command, profilePath string, opts *graphOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	if !nodelink.ValidEdgeSet(opts.edges) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown edge set %q (known: full, covering)", opts.edges)
	}
	if opts.format != "json" && !pipeline.ValidFormats[opts.format] {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (known: dot, svg, json)", opts.format)
	}

	cfg, err := config.LoadOptional()
	if err != nil {
		logger.Warnf("Config ignored: %v", err)
		cfg = config.Default()
	}
	runner, err := newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	p := newProgress(logger)
	profile, err := preference.ReadTableFile(profilePath, opts.hasHeader)
	if err != nil {
		return err
	}

	popts := pipeline.Options{
		ProfilePath: profilePath,
		HasHeader:   opts.hasHeader,
		Refresh:     opts.refresh,
		Edges:       nodelink.EdgeSet(opts.edges),
		Logger:      logger,
	}
	graph, relHash, cached, err := runner.BuildGraphWithCacheInfo(ctx, profile, popts)
	if err != nil {
		return err
	}
	logger.Debug("built dominance relation", "edges", len(graph.Edges()), "cached", cached)

	var data []byte
	if opts.format == "json" {
		var sb strings.Builder
		if err := stableio.WriteGraph(graph, &sb); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode graph")
		}
		data = []byte(sb.String())
	} else {
		data, _, err = runner.RenderWithCacheInfo(ctx, graph, relHash, opts.format, popts)
		if err != nil {
			return err
		}
	}
	p.done(fmt.Sprintf("Exported %s graph (%s edges)", opts.format, opts.edges))

	output := opts.output
	if output == "" {
		base := strings.TrimSuffix(filepath.Base(profilePath), filepath.Ext(profilePath))
		output = base + "." + opts.format
	}
	if output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", output)
	}
	printSuccess("Graph written")
	printFile(output)
	return nil
}
