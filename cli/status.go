// ABOUTME: Status CLI command
// ABOUTME: Opens the status TUI on a terminal and prints a plain table otherwise
package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/harperreed/groupsync/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-list sync status",
	RunE:  runStatus,
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		rows, err := tui.LoadStatusRows(a.db, a.cfg.Lists)
		if err != nil {
			return fmt.Errorf("failed to load sync state: %w", err)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), renderStatusTable(rows))
		return nil
	}

	var syncFunc tui.SyncFunc
	syncer, err := a.syncer(cmd.Context(), false)
	if err != nil {
		a.log.Debug("syncing from the status view is disabled", zap.Error(err))
	} else {
		syncFunc = func(ctx context.Context, list string) error {
			_, err := syncer.SyncList(ctx, list)
			a.writeMetrics(syncer.Metrics)
			return err
		}
	}

	program := tea.NewProgram(tui.NewModel(cmd.Context(), a.db, a.cfg.Lists, syncFunc), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("status view failed: %w", err)
	}
	return nil
}
