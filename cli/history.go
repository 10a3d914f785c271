// ABOUTME: History CLI command
// ABOUTME: Prints recent sync runs and, for a single run, its membership changes
package cli

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harperreed/groupsync/db"
)

var (
	historyLimit int
	historyRun   string
)

var historyCmd = &cobra.Command{
	Use:   "history [list]",
	Short: "Show recent sync runs",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of runs to show")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Show the membership changes of one run")
	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	if historyRun != "" {
		return printRunChanges(a.db, historyRun, out)
	}

	list := ""
	if len(args) == 1 {
		list = args[0]
	}
	return printHistory(a.db, list, historyLimit, out)
}

func printHistory(database *sql.DB, list string, limit int, out io.Writer) error {
	runs, err := db.ListRuns(database, list, limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		_, _ = fmt.Fprintln(out, "No sync runs recorded yet.")
		return nil
	}
	_, _ = fmt.Fprintln(out, renderHistoryTable(runs))
	return nil
}

func printRunChanges(database *sql.DB, runID string, out io.Writer) error {
	changes, err := db.GetRunChanges(database, runID)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		_, _ = fmt.Fprintf(out, "No changes recorded for run %s.\n", runID)
		return nil
	}

	for _, change := range changes {
		line := "+ " + change.Email
		style := addStyle
		if change.Action == db.ActionRemove {
			line = "- " + change.Email
			style = removeStyle
		}
		if !change.Applied {
			line += " (not applied)"
		}
		_, _ = fmt.Fprintln(out, style.Render(line))
	}
	return nil
}
