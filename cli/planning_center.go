// ABOUTME: Planning Center CLI commands
// ABOUTME: Re-runs Planning Center list rules so membership is current before a sync
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harperreed/groupsync/config"
)

var planningCenterCmd = &cobra.Command{
	Use:     "planning-center",
	Aliases: []string{"pc"},
	Short:   "Planning Center commands",
}

var refreshCmd = &cobra.Command{
	Use:   "refresh <list|all>",
	Short: "Refresh Planning Center lists",
	Long: `Ask Planning Center to re-run the rules of a list so its membership is
current. Pass "all" to refresh every configured list.`,
	Args: cobra.ExactArgs(1),
	RunE: runRefresh,
}

func init() {
	planningCenterCmd.AddCommand(refreshCmd)
	RootCmd.AddCommand(planningCenterCmd)
}

// ListRefresher re-runs a Planning Center list.
type ListRefresher interface {
	RefreshList(ctx context.Context, list string) error
}

func runRefresh(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	lists, err := refreshTargets(a.cfg, args[0])
	if err != nil {
		return err
	}

	return refreshLists(cmd.Context(), a.planningCenter(), lists, cmd.OutOrStdout())
}

func refreshTargets(cfg *config.Config, target string) ([]string, error) {
	if target == "all" {
		return cfg.Lists, nil
	}
	return cfg.ResolveLists([]string{target})
}

// refreshLists refreshes each list in turn, continuing past failures.
func refreshLists(ctx context.Context, refresher ListRefresher, lists []string, out io.Writer) error {
	var errs []error
	for _, list := range lists {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}

		_, _ = fmt.Fprintln(out, progressStyle.Render("Refreshing "+list+"..."))
		if err := refresher.RefreshList(ctx, list); err != nil {
			_, _ = fmt.Fprintln(out, failureStyle.Render(fmt.Sprintf("  ✗ %v", err)))
			errs = append(errs, fmt.Errorf("list %s: %w", list, err))
			continue
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("  ✓ Refreshed"))
	}
	return errors.Join(errs...)
}
