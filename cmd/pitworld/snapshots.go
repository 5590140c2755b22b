package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"pitworld.ai/internal/persistence/indexdb"
)

var (
	flagSnapWorld string
	flagSnapLimit int
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List indexed snapshots, newest first",
	Long: `List snapshots recorded in <data>/index/world.sqlite.

Examples:
  pitworld snapshots
  pitworld snapshots --world world_1 --limit 5`,
	Args: cobra.NoArgs,
	RunE: runSnapshots,
}

func init() {
	snapshotsCmd.Flags().StringVar(&flagSnapWorld, "world", "", "Only list this world id")
	snapshotsCmd.Flags().IntVar(&flagSnapLimit, "limit", 20, "Maximum rows (0 = all)")
}

func runSnapshots(cmd *cobra.Command, _ []string) error {
	idx, err := indexdb.OpenSQLite(indexPath())
	if err != nil {
		return fmt.Errorf("open index: %w", err)
	}
	defer idx.Close()

	rows, err := idx.ListSnapshots(cmd.Context(), flagSnapWorld, flagSnapLimit)
	if err != nil {
		return fmt.Errorf("list snapshots: %w", err)
	}
	out := cmd.OutOrStdout()
	if len(rows) == 0 {
		fmt.Fprintln(out, "No snapshots recorded.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SAVED AT", "WORLD", "CELLS", "CARRIED", "PATH").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return titleStyle
			}
			return lipgloss.NewStyle()
		})
	for _, r := range rows {
		t.Row(r.SavedAt, r.WorldID, strconv.Itoa(r.Cells), strconv.Itoa(r.Carried), r.Path)
	}
	fmt.Fprintln(out, t.String())
	return nil
}
