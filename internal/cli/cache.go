package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ppiankov/clarifai/internal/backend"
	"github.com/ppiankov/clarifai/internal/model"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached API responses",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cached API responses",
	Long: `Delete every cached API response, including the last-known-good copies
kept on disk for when the API is unreachable.

Example:
  clarifai cache clear`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return clearCache(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func clearCache(w io.Writer, cfg *model.Config) error {
	if !cfg.Cache.Enabled {
		fmt.Fprintln(w, "Caching is disabled, nothing to clear")
		return nil
	}
	if err := backend.NewClient(cfg, nil).ClearCache(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	if cfg.Cache.DiskDir != "" {
		fmt.Fprintf(w, "✓ Cleared cache at %s\n", cfg.Cache.DiskDir)
	} else {
		fmt.Fprintln(w, "✓ Cleared in-memory cache")
	}
	return nil
}
