// Package cli implements the command-line interface for piletctl.
package cli

import (
	"piletctl/internal/config"
	"piletctl/internal/executor"
	"piletctl/internal/ui"
	"piletctl/pkg/npm"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	npmClient string
	dryRun    bool
	yes       bool
	verbose   bool
	noColor   bool

	// Global state
	cfg  *config.Config
	exec *executor.Executor
)

// Build metadata - set at build time via ldflags
var (
	Version   = "0.1.0-dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "piletctl",
	Short: "Manage pilets and their base package upgrades",
	Long: `piletctl manages pilet projects: micro-frontend packages built
against a Piral instance base package.

It wraps npm, yarn, or pnpm (detected from the project's lockfile) and
drives the full upgrade sequence of a pilet's base package: resolving the
target reference, running lifecycle hooks, installing, reconciling
template-managed files, and reinstalling dependencies.

Examples:
  piletctl upgrade                          # Upgrade to the latest base package
  piletctl upgrade --version 2.0.0          # Upgrade to a specific version
  piletctl upgrade --version ../app.tgz     # Upgrade from a local tarball
  piletctl validate                         # Check that the project is a pilet`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeApp()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&npmClient, "npm-client", "", "package manager client (npm, yarn, pnpm)")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "show what would happen without executing")
	rootCmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "assume yes to all prompts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(cacheCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initializeApp sets up the application state.
func initializeApp() error {
	// Load configuration
	var err error
	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	// Apply global flag overrides
	if yes {
		cfg.General.AutoConfirm = true
	}
	if dryRun {
		cfg.General.DryRun = true
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	if noColor {
		cfg.Output.Color = false
	}

	// Initialize UI
	ui.Init(cfg.ShouldUseColor(), cfg.Output.Unicode)

	// Shared executor for package managers and hooks
	exec = executor.New(cfg.General.DryRun, cfg.Output.Verbose)

	return nil
}

// getClient picks the package manager client for a project directory.
// The --npm-client flag overrides detection; the configured default only
// applies when no lockfile decides.
func getClient(dir string) (npm.Client, error) {
	clients := []npm.Client{
		npm.NewNpm(exec),
		npm.NewYarn(exec),
		npm.NewPnpm(exec),
	}

	client := npm.DetectClient(dir, npmClient, cfg.General.NpmClient, clients)
	if client == nil {
		return nil, ErrNoClient
	}
	return client, nil
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print piletctl version",
	Run: func(cmd *cobra.Command, args []string) {
		ui.InfoMsg("piletctl version %s", Version)
		if Commit != "unknown" {
			ui.MutedMsg("  Commit: %s", Commit)
		}
		if BuildTime != "unknown" {
			ui.MutedMsg("  Built:  %s", BuildTime)
		}
	},
}
