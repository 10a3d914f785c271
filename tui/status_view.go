// ABOUTME: TUI view for per-list sync status
// ABOUTME: Lists configured groups with their last sync and lets the user trigger a sync
package tui

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/groupsync/db"
)

var statusColumns = []table.Column{
	{Title: "List", Width: 36},
	{Title: "Status", Width: 14},
	{Title: "Last Sync", Width: 16},
	{Title: "Error", Width: 30},
}

// StatusRow is the display state of one configured list.
type StatusRow struct {
	List         string
	Status       string
	LastSyncTime string
	ErrorMessage string
}

// SyncCompleteMsg is sent when a sync operation completes.
type SyncCompleteMsg struct {
	List  string
	Error error
}

// LoadStatusRows returns one row per configured list, in configured order.
// Lists with no stored state show as never synced.
func LoadStatusRows(database *sql.DB, lists []string) ([]StatusRow, error) {
	states, err := db.GetAllSyncStates(database)
	if err != nil {
		return nil, err
	}

	byList := make(map[string]db.SyncState, len(states))
	for _, state := range states {
		byList[strings.ToLower(state.ListName)] = state
	}

	rows := make([]StatusRow, 0, len(lists))
	for _, list := range lists {
		row := StatusRow{List: list, Status: "never synced", LastSyncTime: "-"}
		if state, ok := byList[strings.ToLower(list)]; ok {
			row.Status = state.Status
			if state.LastSyncTime != nil {
				row.LastSyncTime = formatTimeSince(*state.LastSyncTime)
			}
			if state.ErrorMessage != nil {
				row.ErrorMessage = *state.ErrorMessage
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func (m *Model) loadStatus() {
	rows, err := LoadStatusRows(m.db, m.lists)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil

	tableRows := make([]table.Row, 0, len(rows))
	for _, row := range rows {
		status := row.Status
		if m.syncInProgress[row.List] {
			status = db.StatusSyncing
		}
		tableRows = append(tableRows, table.Row{row.List, status, row.LastSyncTime, row.ErrorMessage})
	}
	m.statusTable.SetRows(tableRows)
}

func (m Model) renderStatusView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Group Sync Status"))
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n")
	}

	if len(m.lists) == 0 {
		s.WriteString(messageStyle.Render("No lists configured. Add lists to your config file."))
		s.WriteString("\n")
		return s.String()
	}

	s.WriteString(m.statusTable.View())
	s.WriteString("\n")

	if len(m.messages) > 0 {
		s.WriteString("\n")
		start := 0
		if len(m.messages) > 5 {
			start = len(m.messages) - 5
		}
		for _, message := range m.messages[start:] {
			s.WriteString(renderMessage(message))
			s.WriteString("\n")
		}
	}

	s.WriteString(m.renderStatusHelp())
	return s.String()
}

func renderMessage(message string) string {
	switch {
	case strings.HasPrefix(message, "✗"):
		return errorStyle.Render("  " + message)
	case strings.HasPrefix(message, "✓"):
		return idleStyle.Render("  " + message)
	case strings.HasPrefix(message, "⟳"):
		return syncingStyle.Render("  " + message)
	default:
		return messageStyle.Render("  " + message)
	}
}

func (m Model) renderStatusHelp() string {
	help := []string{"↑/↓: Select list", "Enter: History"}
	if m.syncFunc != nil {
		help = append(help, "s: Sync selected")
	}
	help = append(help, "r: Refresh", "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) selectedList() string {
	row := m.statusTable.SelectedRow()
	if row == nil {
		return ""
	}
	return row[0]
}

func (m Model) handleStatusKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if list := m.selectedList(); list != "" {
			m.historyList = list
			m.viewMode = ViewHistory
			m.loadHistory()
		}
		return m, nil
	case "r":
		m.loadStatus()
		return m, nil
	case "s":
		list := m.selectedList()
		if list == "" || m.syncFunc == nil {
			return m, nil
		}
		if len(m.syncInProgress) > 0 {
			m.messages = append(m.messages, "A sync is already running; wait for it to finish")
			return m, nil
		}
		m.syncInProgress[list] = true
		m.messages = append(m.messages, "⟳ Syncing "+list+"...")
		m.loadStatus()
		return m, m.startSync(list)
	}

	var cmd tea.Cmd
	m.statusTable, cmd = m.statusTable.Update(msg)
	return m, cmd
}

func (m Model) startSync(list string) tea.Cmd {
	ctx, syncFunc := m.ctx, m.syncFunc
	return func() tea.Msg {
		return SyncCompleteMsg{List: list, Error: syncFunc(ctx, list)}
	}
}

func (m Model) handleSyncComplete(msg SyncCompleteMsg) Model {
	delete(m.syncInProgress, msg.List)
	if msg.Error != nil {
		m.messages = append(m.messages, fmt.Sprintf("✗ %s: %v", msg.List, msg.Error))
	} else {
		m.messages = append(m.messages, "✓ Synced "+msg.List)
	}
	m.loadStatus()
	return m
}

// formatTimeSince formats a time duration in a human-readable way.
func formatTimeSince(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	} else if duration < time.Hour {
		minutes := int(duration.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	} else if duration < 24*time.Hour {
		hours := int(duration.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
