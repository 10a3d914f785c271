// ABOUTME: Styled terminal output for sync reports, status, and history
// ABOUTME: Renders with lipgloss so reports match the status TUI
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/harperreed/groupsync/db"
	"github.com/harperreed/groupsync/models"
	"github.com/harperreed/groupsync/sync"
	"github.com/harperreed/groupsync/tui"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	failureStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	addStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	removeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
)

func renderProgress(index, total int, list string) string {
	return progressStyle.Render(fmt.Sprintf("[%d/%d] Syncing %s...", index, total, list))
}

// renderReport describes one list's changes. Dry runs list every pending change.
func renderReport(report *sync.ListSyncReport) string {
	var s strings.Builder

	title := report.ListName
	if report.DryRun {
		title += " (dry run)"
	}
	s.WriteString(headerStyle.Render(title))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("  Planning Center: %d  Google: %d\n", report.SourceCount, report.DestCount))

	if report.Diff == nil || report.Diff.Empty() {
		s.WriteString(successStyle.Render("  ✓ Already in sync"))
		return s.String()
	}

	if report.DryRun {
		for _, contact := range report.Diff.ToRemove {
			s.WriteString(removeStyle.Render("  - " + contactLabel(contact)))
			s.WriteString("\n")
		}
		for _, contact := range report.Diff.ToAdd {
			s.WriteString(addStyle.Render("  + " + contactLabel(contact)))
			s.WriteString("\n")
		}
		s.WriteString(fmt.Sprintf("  Would add %d, remove %d", len(report.Diff.ToAdd), len(report.Diff.ToRemove)-len(report.Skipped)))
	} else {
		s.WriteString(successStyle.Render(fmt.Sprintf("  ✓ Added %d, removed %d", report.Added, report.Removed)))
	}

	if len(report.Skipped) > 0 {
		s.WriteString("\n")
		s.WriteString(warningStyle.Render(fmt.Sprintf("  ! Skipped %d member(s) without an email address", len(report.Skipped))))
	}

	return s.String()
}

func contactLabel(contact models.Contact) string {
	if !contact.HasEmail() {
		return contact.DisplayName() + " (no email)"
	}
	return contact.String()
}

func renderSummary(total int, reports []*sync.ListSyncReport, err error) string {
	failed := total - len(reports)
	if err == nil {
		return successStyle.Render(fmt.Sprintf("\n✓ %d of %d list(s) synced", len(reports), total))
	}
	return failureStyle.Render(fmt.Sprintf("\n✗ %d of %d list(s) failed", failed, total))
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...)
}

func renderStatusTable(rows []tui.StatusRow) string {
	t := newTable("LIST", "STATUS", "LAST SYNC", "ERROR")
	for _, row := range rows {
		t.Row(row.List, row.Status, row.LastSyncTime, row.ErrorMessage)
	}
	return t.Render()
}

func renderHistoryTable(runs []db.SyncRun) string {
	t := newTable("STARTED", "LIST", "STATUS", "MODE", "ADDED", "REMOVED", "ERROR")
	for _, run := range runs {
		mode := "apply"
		if run.DryRun {
			mode = "dry-run"
		}
		errMsg := ""
		if run.ErrorMessage != nil {
			errMsg = *run.ErrorMessage
		}
		t.Row(
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.ListName,
			run.Status,
			mode,
			strconv.Itoa(run.Added),
			strconv.Itoa(run.Removed),
			errMsg,
		)
	}
	return t.Render()
}
