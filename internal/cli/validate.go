package cli

import (
	"path/filepath"

	"piletctl/internal/ui"
	"piletctl/pkg/pilet"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [target]",
	Short: "Check that a directory is an upgradable pilet",
	Long: `Validate that the target directory is a pilet project: it must contain
a package.json with a piral section declaring the base package.

Examples:
  piletctl validate              # Validate the current directory
  piletctl validate ./my-pilet   # Validate a specific project`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	root, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if !pilet.HasManifest(root) {
		ui.ErrorMsg("%s does not contain a package.json", root)
		return pilet.ErrNotAPilet
	}

	manifest, err := pilet.LoadManifest(root)
	if err != nil {
		ui.ErrorMsg("Cannot read package.json: %v", err)
		return err
	}
	if manifest.Piral == nil || manifest.Piral.Name == "" {
		ui.ErrorMsg("%s has no piral section declaring its base package", root)
		return pilet.ErrNoPiralSection
	}

	client, err := getClient(root)
	if err != nil {
		return err
	}

	baseVersion := manifest.DevDependencies[manifest.Piral.Name]
	if baseVersion == "" {
		baseVersion = "(not installed)"
	}

	table := ui.NewTable([]string{"field", "value"})
	table.AddRow([]string{"Pilet", manifest.Name})
	table.AddRow([]string{"Version", manifest.Version})
	table.AddRow([]string{"Base package", manifest.Piral.Name})
	table.AddRow([]string{"Base version", baseVersion})
	table.AddRow([]string{"Client", client.DisplayName()})
	table.Render()

	ui.SuccessMsg("%s is a valid pilet", manifest.Name)
	return nil
}
