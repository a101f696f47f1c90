package cli

import (
	"context"
	"path/filepath"

	"piletctl/internal/config"
	"piletctl/internal/history"
	"piletctl/internal/tui"
	"piletctl/internal/ui"
	"piletctl/pkg/pilet"
	"piletctl/pkg/scaffold"

	"github.com/spf13/cobra"
)

var (
	upgradeVersion        string
	upgradeForceOverwrite string
)

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [target]",
	Short: "Upgrade the base package of a pilet",
	Long: `Upgrade the Piral instance base package a pilet is built against.

The target directory defaults to the current directory. The version can be
a tag, a semver range, a git URL, or a local file path.

Examples:
  piletctl upgrade                            # Upgrade to latest
  piletctl upgrade ./my-pilet                 # Upgrade a specific project
  piletctl upgrade --version next             # Upgrade to the next tag
  piletctl upgrade --version ../shell.tgz     # Upgrade from a local tarball
  piletctl upgrade --force-overwrite yes      # Replace modified template files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpgrade,
}

func init() {
	upgradeCmd.Flags().StringVar(&upgradeVersion, "version", "latest", "target version, tag, or local path")
	upgradeCmd.Flags().StringVar(&upgradeForceOverwrite, "force-overwrite", "", "overwrite policy for modified template files (no, prompt, yes)")
}

func runUpgrade(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	root, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	policySpelling := upgradeForceOverwrite
	if policySpelling == "" {
		policySpelling = cfg.Upgrade.ForceOverwrite
	}
	policy, err := pilet.ParseForceOverwrite(policySpelling)
	if err != nil {
		return err
	}

	client, err := getClient(root)
	if err != nil {
		return err
	}

	// Best-effort read of the current state for display and history.
	baseName, currentVersion := currentBasePackage(root)
	if baseName != "" {
		ui.InfoMsg("Upgrading %s from %s to %s using %s",
			ui.Bold(baseName), currentVersion, upgradeVersion, client.DisplayName())
	} else {
		ui.InfoMsg("Upgrading base package to %s using %s", upgradeVersion, client.DisplayName())
	}

	if !cfg.General.AutoConfirm && !cfg.General.DryRun {
		confirmed, err := ui.Confirm("Proceed with upgrade?", true)
		if err != nil {
			return err
		}
		if !confirmed {
			return ErrAborted
		}
	}

	// History is best effort; a broken store never blocks the upgrade.
	histStore, histErr := history.Open()
	if histErr == nil {
		defer histStore.Close()
		if cfg.Output.Verbose {
			if last, lastErr := histStore.Last(); lastErr == nil && last != nil {
				ui.MutedMsg("Last operation: %s", last.Summary())
			}
		}
	}

	snapStore := openSnapshotStore()
	if snapStore != nil {
		defer snapStore.Close()
	}

	reporter := ui.Reporter{}
	reconciler := scaffold.NewReconciler(newConflictResolver(), snapStore, reporter)
	orchestrator := pilet.NewOrchestrator(client, reconciler, exec, reporter)

	entry := history.NewEntry(history.OpUpgrade, root, baseName, client.Name())
	entry.From = currentVersion
	entry.To = upgradeVersion

	err = orchestrator.Upgrade(ctx, pilet.Options{
		Root:           root,
		Version:        upgradeVersion,
		ForceOverwrite: policy,
	})

	if err != nil {
		entry.MarkFailed(err)
		ui.ErrorMsg("Upgrade failed: %v", err)
	} else {
		entry.MarkSuccess()
		ui.SuccessMsg("Upgrade completed successfully")
	}

	if histErr == nil {
		_ = histStore.Record(entry) //nolint:errcheck
	}

	return err
}

// currentBasePackage reads the base package declaration without failing;
// the orchestrator validates for real.
func currentBasePackage(root string) (name, version string) {
	manifest, err := pilet.LoadManifest(root)
	if err != nil || manifest.Piral == nil {
		return "", ""
	}
	name = manifest.Piral.Name
	version = manifest.DevDependencies[name]
	if version == "" {
		version = "(not installed)"
	}
	return name, version
}

// openSnapshotStore opens the file snapshot database when enabled.
// Failures degrade to no persistence rather than blocking the upgrade.
func openSnapshotStore() *scaffold.SnapshotStore {
	if !cfg.Upgrade.KeepSnapshots {
		return nil
	}
	if err := config.EnsureDataDir(); err != nil {
		ui.WarningMsg("Cannot create data directory, snapshots disabled: %v", err)
		return nil
	}
	store, err := scaffold.OpenSnapshotStore(config.SnapshotPath())
	if err != nil {
		ui.WarningMsg("Cannot open snapshot database, snapshots disabled: %v", err)
		return nil
	}
	return store
}

// conflictResolver drives the interactive overwrite decision: a single
// conflict gets a yes/no prompt, several get the picker.
type conflictResolver struct{}

func newConflictResolver() conflictResolver {
	return conflictResolver{}
}

// ResolveConflicts returns the subset of diverged files to overwrite.
func (conflictResolver) ResolveConflicts(files []string) ([]string, error) {
	if cfg.General.DryRun {
		return nil, nil
	}
	if cfg.General.AutoConfirm {
		return files, nil
	}

	if len(files) == 1 {
		confirmed, err := ui.Confirm("Overwrite modified file "+files[0]+"?", false)
		if err != nil {
			return nil, err
		}
		if confirmed {
			return files, nil
		}
		return nil, nil
	}

	return tui.PickConflicts(files)
}
