// ABOUTME: TUI view for recent sync runs of one list
// ABOUTME: Shows run status and change counts from the sync history
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/groupsync/db"
)

const historyLimit = 50

var historyColumns = []table.Column{
	{Title: "Started", Width: 20},
	{Title: "Status", Width: 10},
	{Title: "Mode", Width: 8},
	{Title: "Source", Width: 8},
	{Title: "Dest", Width: 8},
	{Title: "Added", Width: 8},
	{Title: "Removed", Width: 8},
}

func (m *Model) loadHistory() {
	runs, err := db.ListRuns(m.db, m.historyList, historyLimit)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil

	rows := make([]table.Row, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, runRow(run))
	}
	m.historyTable.SetRows(rows)
	m.historyTable.SetCursor(0)
}

func runRow(run db.SyncRun) table.Row {
	mode := "apply"
	if run.DryRun {
		mode = "dry-run"
	}
	return table.Row{
		run.StartedAt.Local().Format("2006-01-02 15:04:05"),
		run.Status,
		mode,
		strconv.Itoa(run.SourceCount),
		strconv.Itoa(run.DestCount),
		strconv.Itoa(run.Added),
		strconv.Itoa(run.Removed),
	}
}

func (m Model) renderHistoryView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(fmt.Sprintf("Sync History: %s", m.historyList)))
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n")
	}

	if len(m.historyTable.Rows()) == 0 {
		s.WriteString(messageStyle.Render("No runs recorded for this list yet."))
		s.WriteString("\n")
	} else {
		s.WriteString(m.historyTable.View())
		s.WriteString("\n")
	}

	s.WriteString(helpStyle.Render("↑/↓: Scroll • Esc: Back • q: Quit"))
	return s.String()
}

func (m Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.viewMode = ViewStatus
		m.loadStatus()
		return m, nil
	}

	var cmd tea.Cmd
	m.historyTable, cmd = m.historyTable.Update(msg)
	return m, cmd
}
