// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Shows per-list sync status and recent runs, and can trigger syncs
package tui

import (
	"context"
	"database/sql"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewStatus ViewMode = iota
	ViewHistory
)

// SyncFunc syncs one list. The TUI runs it off the update loop.
type SyncFunc func(ctx context.Context, list string) error

// Model is the main bubbletea model
type Model struct {
	db       *sql.DB
	lists    []string
	syncFunc SyncFunc
	viewMode ViewMode

	// ctx scopes syncs started from the UI; cancel runs on quit
	ctx    context.Context
	cancel context.CancelFunc

	statusTable  table.Model
	historyTable table.Model
	historyList  string

	syncInProgress map[string]bool
	messages       []string
	err            error

	width  int
	height int
}

// NewModel creates a new TUI model. syncFunc may be nil, which disables
// triggering syncs from the UI. Syncs run under ctx and are cancelled when
// the user quits.
func NewModel(ctx context.Context, db *sql.DB, lists []string, syncFunc SyncFunc) Model {
	ctx, cancel := context.WithCancel(ctx)
	m := Model{
		ctx:            ctx,
		cancel:         cancel,
		db:             db,
		lists:          lists,
		syncFunc:       syncFunc,
		viewMode:       ViewStatus,
		syncInProgress: make(map[string]bool),
		width:          100,
		height:         24,
	}
	m.statusTable = newTable(statusColumns, m.tableHeight())
	m.historyTable = newTable(historyColumns, m.tableHeight())
	m.loadStatus()
	return m
}

func newTable(columns []table.Column, height int) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("235")).
		Bold(true)
	t.SetStyles(styles)

	return t
}

func (m Model) tableHeight() int {
	if h := m.height - 10; h > 3 {
		return h
	}
	return 3
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusTable.SetHeight(m.tableHeight())
		m.historyTable.SetHeight(m.tableHeight())
		return m, nil
	case SyncCompleteMsg:
		return m.handleSyncComplete(msg), nil
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewHistory:
		return m.renderHistoryView()
	default:
		return m.renderStatusView()
	}
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.cancel()
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewHistory:
		return m.handleHistoryKeys(msg)
	default:
		return m.handleStatusKeys(msg)
	}
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	syncingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)
