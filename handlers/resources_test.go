// ABOUTME: Tests for MCP resource handlers
// ABOUTME: Reads status, runs, and run changes through groupsync:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/harperreed/groupsync/db"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readResource(t *testing.T, h *ResourceHandlers, uri string) (*mcp.ReadResourceResult, error) {
	t.Helper()
	return h.ReadResource(context.Background(), &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	})
}

func TestReadStatusResource(t *testing.T) {
	database := setupTestDB(t)
	require.NoError(t, db.MarkListSynced(database, "list1@domain.com", "run-1"))

	result, err := readResource(t, NewResourceHandlers(database), "groupsync://status")
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var states []db.SyncState
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &states))
	require.Len(t, states, 1)
	assert.Equal(t, "list1@domain.com", states[0].ListName)
}

func TestReadRunResources(t *testing.T) {
	database := setupTestDB(t)
	run, err := db.StartRun(database, "list1@domain.com", false)
	require.NoError(t, err)
	require.NoError(t, db.LogChange(database, run.ID, run.ListName, db.ActionAdd, "a@test.com", true))

	h := NewResourceHandlers(database)

	result, err := readResource(t, h, "groupsync://runs")
	require.NoError(t, err)
	assert.Contains(t, result.Contents[0].Text, run.ID)

	result, err = readResource(t, h, "groupsync://runs/"+run.ID)
	require.NoError(t, err)
	assert.Contains(t, result.Contents[0].Text, "a@test.com")

	_, err = readResource(t, h, "groupsync://runs/missing")
	assert.Error(t, err)
}

func TestReadRunResourceWithoutChanges(t *testing.T) {
	database := setupTestDB(t)
	run, err := db.StartRun(database, "list1@domain.com", false)
	require.NoError(t, err)

	result, err := readResource(t, NewResourceHandlers(database), "groupsync://runs/"+run.ID)
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "[]", result.Contents[0].Text)
}

func TestReadResourceRejectsUnknownURIs(t *testing.T) {
	h := NewResourceHandlers(setupTestDB(t))

	_, err := readResource(t, h, "crm://contacts")
	assert.Error(t, err)

	_, err = readResource(t, h, "groupsync://contacts")
	assert.Error(t, err)
}
