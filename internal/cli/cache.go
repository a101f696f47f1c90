package cli

import (
	"path/filepath"

	"piletctl/internal/history"
	"piletctl/internal/ui"
	"piletctl/pkg/pilet"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage project build caches",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [target]",
	Short: "Remove the build caches of a pilet project",
	Long: `Remove node_modules/.cache and the piletctl cache directory of the
target project so the next build starts from a clean slate.

Examples:
  piletctl cache clear              # Clear caches of the current directory
  piletctl cache clear ./my-pilet   # Clear caches of a specific project`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	root, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	entry := history.NewEntry(history.OpCacheClear, root, "", "")

	err = ui.WithSpinner("Clearing build caches", func() error {
		if cfg.General.DryRun {
			return nil
		}
		return pilet.ClearCache(root)
	})

	if err != nil {
		entry.MarkFailed(err)
	} else {
		entry.MarkSuccess()
	}

	// Record in history (ignore errors)
	if store, storeErr := history.Open(); storeErr == nil {
		_ = store.Record(entry) //nolint:errcheck
		_ = store.Close()       //nolint:errcheck
	}

	return err
}
