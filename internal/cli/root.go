package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/stacktools/stableset/pkg/cache"
	"github.com/stacktools/stableset/pkg/config"
	"github.com/stacktools/stableset/pkg/pipeline"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with values
// injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the stableset CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (analyze, graph,
// cache, completion), configures logging based on the --verbose flag, and
// executes the command tree against ctx, which should carry signal-based
// cancellation so a long search aborts cleanly on interrupt.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:          "stableset",
		Short:        "Stableset finds stable sets in ranked preference profiles",
		Long:         `Stableset analyzes a group's ranked preferences, derives the pairwise majority dominance relation, and searches for stable alternative sets under several formal stability criteria from social-choice theory.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("stableset %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newGraphCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}

// cacheDir returns the directory used for the local result cache.
func cacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "stableset"), nil
}

// newRunner builds a pipeline runner honoring the cache configuration.
// The caller owns the runner and must Close it.
func newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	logger := loggerFromContext(ctx)
	if noCache || cfg.Cache.Disabled {
		return pipeline.NewRunner(cache.NewNullCache(), nil, logger), nil
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return nil, fmt.Errorf("get cache dir: %w", err)
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		logger.Warnf("Cache disabled: %v", err)
		return pipeline.NewRunner(cache.NewNullCache(), nil, logger), nil
	}
	return pipeline.NewRunner(fc, nil, logger), nil
}
