package cli

import (
	"piletctl/internal/history"
	"piletctl/internal/ui"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past upgrade operations",
	Long: `List recorded upgrade operations, most recent first.

Examples:
  piletctl history              # Show the last 20 operations
  piletctl history --limit 5    # Show the last 5`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := history.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(historyLimit)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		ui.MutedMsg("No operations recorded yet")
		return nil
	}

	table := ui.NewTable([]string{"time", "operation", "package", "target", "client", "status"})
	for _, e := range entries {
		status := ui.Green("ok")
		if !e.Success {
			status = ui.Red("failed")
		}
		target := e.To
		if target == "" {
			target = "-"
		}
		table.AddRow([]string{e.FormatTime(), string(e.Operation), e.Package, target, e.Client, status})
	}
	table.Render()

	return nil
}
