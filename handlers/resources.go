// ABOUTME: MCP resource handlers for exposing sync state
// ABOUTME: Provides read-only access to list status, runs, and run changes via URI
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/harperreed/groupsync/db"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "groupsync://"

type ResourceHandlers struct {
	db *sql.DB
}

func NewResourceHandlers(database *sql.DB) *ResourceHandlers {
	return &ResourceHandlers{db: database}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")

	switch parts[0] {
	case "status":
		states, err := db.GetAllSyncStates(h.db)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch sync state: %w", err)
		}
		return jsonResource(uri, states)

	case "runs":
		if len(parts) == 1 || parts[1] == "" {
			runs, err := db.ListRuns(h.db, "", 0)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch runs: %w", err)
			}
			return jsonResource(uri, runs)
		}
		run, err := db.GetRun(h.db, parts[1])
		if err != nil {
			return nil, fmt.Errorf("failed to fetch run: %w", err)
		}
		if run == nil {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		changes, err := db.GetRunChanges(h.db, run.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch run changes: %w", err)
		}
		if changes == nil {
			changes = []db.SyncChange{}
		}
		return jsonResource(uri, changes)

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
