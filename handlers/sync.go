// ABOUTME: List sync MCP tool handlers
// ABOUTME: Implements list_sync_lists, preview_list_sync, and sync_history tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/groupsync/db"
	"github.com/harperreed/groupsync/models"
	"github.com/harperreed/groupsync/sync"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Previewer computes a dry-run diff for one list.
type Previewer interface {
	PreviewList(ctx context.Context, list string) (*sync.ListSyncReport, error)
}

type SyncHandlers struct {
	db        *sql.DB
	lists     []string
	previewer Previewer
}

func NewSyncHandlers(database *sql.DB, lists []string, previewer Previewer) *SyncHandlers {
	return &SyncHandlers{db: database, lists: lists, previewer: previewer}
}

type ListSyncListsInput struct{}

type ListStateOutput struct {
	ListName     string  `json:"list_name"`
	Status       string  `json:"status"`
	LastSyncTime *string `json:"last_sync_time,omitempty"`
	LastRunID    *string `json:"last_run_id,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
}

type ListSyncListsOutput struct {
	Lists []ListStateOutput `json:"lists"`
}

func (h *SyncHandlers) ListSyncLists(_ context.Context, request *mcp.CallToolRequest, input ListSyncListsInput) (*mcp.CallToolResult, ListSyncListsOutput, error) {
	states, err := db.GetAllSyncStates(h.db)
	if err != nil {
		return nil, ListSyncListsOutput{}, fmt.Errorf("failed to load sync state: %w", err)
	}

	byList := make(map[string]db.SyncState, len(states))
	for _, state := range states {
		byList[strings.ToLower(state.ListName)] = state
	}

	output := ListSyncListsOutput{Lists: make([]ListStateOutput, 0, len(h.lists))}
	for _, list := range h.lists {
		state, ok := byList[strings.ToLower(list)]
		if !ok {
			output.Lists = append(output.Lists, ListStateOutput{ListName: list, Status: "never synced"})
			continue
		}
		output.Lists = append(output.Lists, stateToOutput(list, state))
	}

	return nil, output, nil
}

func stateToOutput(list string, state db.SyncState) ListStateOutput {
	out := ListStateOutput{
		ListName:     list,
		Status:       state.Status,
		LastRunID:    state.LastRunID,
		ErrorMessage: state.ErrorMessage,
	}
	if state.LastSyncTime != nil {
		ts := state.LastSyncTime.Format(time.RFC3339)
		out.LastSyncTime = &ts
	}
	return out
}

type PreviewListSyncInput struct {
	List string `json:"list" jsonschema:"Email address of a configured list (required)"`
}

type ContactOutput struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type PreviewListSyncOutput struct {
	List        string          `json:"list"`
	SourceCount int             `json:"source_count"`
	DestCount   int             `json:"dest_count"`
	ToAdd       []ContactOutput `json:"to_add"`
	ToRemove    []ContactOutput `json:"to_remove"`
}

func (h *SyncHandlers) PreviewListSync(ctx context.Context, request *mcp.CallToolRequest, input PreviewListSyncInput) (*mcp.CallToolResult, PreviewListSyncOutput, error) {
	if input.List == "" {
		return nil, PreviewListSyncOutput{}, fmt.Errorf("list is required")
	}
	if !h.isConfigured(input.List) {
		return nil, PreviewListSyncOutput{}, fmt.Errorf("unknown list specified: %s", input.List)
	}

	report, err := h.previewer.PreviewList(ctx, input.List)
	if err != nil {
		return nil, PreviewListSyncOutput{}, fmt.Errorf("failed to preview %s: %w", input.List, err)
	}

	return nil, PreviewListSyncOutput{
		List:        report.ListName,
		SourceCount: report.SourceCount,
		DestCount:   report.DestCount,
		ToAdd:       contactsToOutput(report.Diff.ToAdd),
		ToRemove:    contactsToOutput(report.Diff.ToRemove),
	}, nil
}

func (h *SyncHandlers) isConfigured(list string) bool {
	for _, configured := range h.lists {
		if strings.EqualFold(configured, list) {
			return true
		}
	}
	return false
}

func contactsToOutput(contacts []models.Contact) []ContactOutput {
	out := make([]ContactOutput, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, ContactOutput{Name: contact.DisplayName(), Email: contact.Email})
	}
	return out
}

type SyncHistoryInput struct {
	List  string `json:"list,omitempty" jsonschema:"Only show runs for this list"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum runs to return (default 20)"`
}

type SyncRunOutput struct {
	ID           string  `json:"id"`
	List         string  `json:"list"`
	DryRun       bool    `json:"dry_run"`
	Status       string  `json:"status"`
	SourceCount  int     `json:"source_count"`
	DestCount    int     `json:"dest_count"`
	Added        int     `json:"added"`
	Removed      int     `json:"removed"`
	ErrorMessage *string `json:"error_message,omitempty"`
	StartedAt    string  `json:"started_at"`
	FinishedAt   *string `json:"finished_at,omitempty"`
}

type SyncHistoryOutput struct {
	Runs []SyncRunOutput `json:"runs"`
}

func (h *SyncHandlers) SyncHistory(_ context.Context, request *mcp.CallToolRequest, input SyncHistoryInput) (*mcp.CallToolResult, SyncHistoryOutput, error) {
	if input.Limit < 0 {
		return nil, SyncHistoryOutput{}, fmt.Errorf("limit must not be negative")
	}

	runs, err := db.ListRuns(h.db, input.List, input.Limit)
	if err != nil {
		return nil, SyncHistoryOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}

	output := SyncHistoryOutput{Runs: make([]SyncRunOutput, 0, len(runs))}
	for _, run := range runs {
		out := SyncRunOutput{
			ID:           run.ID,
			List:         run.ListName,
			DryRun:       run.DryRun,
			Status:       run.Status,
			SourceCount:  run.SourceCount,
			DestCount:    run.DestCount,
			Added:        run.Added,
			Removed:      run.Removed,
			ErrorMessage: run.ErrorMessage,
			StartedAt:    run.StartedAt.Format(time.RFC3339),
		}
		if run.FinishedAt != nil {
			finished := run.FinishedAt.Format(time.RFC3339)
			out.FinishedAt = &finished
		}
		output.Runs = append(output.Runs, out)
	}

	return nil, output, nil
}
