package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stacktools/stableset/pkg/cache"
	"github.com/stacktools/stableset/pkg/config"
)

// newCacheCmd creates the cache command with its subcommands.
//
// The cache stores derived relations, search results, and rendered diagram
// artifacts keyed by content hash, so repeated analyses of the same profile
// are served without recomputation.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local result cache",
	}
	cmd.AddCommand(newCachePathCmd())
	cmd.AddCommand(newCacheClearCmd())
	return cmd
}

// newCachePathCmd creates the cache path subcommand.
func newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveCacheDir()
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// newCacheClearCmd creates the cache clear subcommand.
func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveCacheDir()
			if err != nil {
				return err
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}
			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return err
			}
			defer fc.Close()
			removed, err := fc.Clear()
			if err != nil {
				return err
			}
			printSuccess("Removed %s cached entries", StyleHighlight.Render(fmt.Sprintf("%d", removed)))
			return nil
		},
	}
}

// resolveCacheDir returns the configured cache directory, falling back to
// the user cache dir.
func resolveCacheDir() (string, error) {
	cfg, err := config.LoadOptional()
	if err == nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}
