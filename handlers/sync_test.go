// ABOUTME: Tests for list sync MCP tool handlers
// ABOUTME: Uses in-memory SQLite and a stub previewer
package handlers

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/harperreed/groupsync/db"
	"github.com/harperreed/groupsync/models"
	"github.com/harperreed/groupsync/sync"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	database.SetMaxOpenConns(1)
	require.NoError(t, db.InitSchema(database))
	t.Cleanup(func() { _ = database.Close() })
	return database
}

type stubPreviewer struct {
	report *sync.ListSyncReport
	err    error
	calls  []string
}

func (s *stubPreviewer) PreviewList(_ context.Context, list string) (*sync.ListSyncReport, error) {
	s.calls = append(s.calls, list)
	return s.report, s.err
}

var testLists = []string{"list1@domain.com", "list2@domain.com"}

func TestListSyncLists(t *testing.T) {
	database := setupTestDB(t)
	require.NoError(t, db.MarkListSynced(database, "list1@domain.com", "run-1"))

	handler := NewSyncHandlers(database, testLists, &stubPreviewer{})
	_, out, err := handler.ListSyncLists(context.Background(), nil, ListSyncListsInput{})
	require.NoError(t, err)

	require.Len(t, out.Lists, 2)
	assert.Equal(t, db.StatusIdle, out.Lists[0].Status)
	assert.NotNil(t, out.Lists[0].LastSyncTime)
	assert.Equal(t, "run-1", *out.Lists[0].LastRunID)
	assert.Equal(t, "never synced", out.Lists[1].Status)
}

func TestPreviewListSync(t *testing.T) {
	previewer := &stubPreviewer{report: &sync.ListSyncReport{
		ListName:    "list1@domain.com",
		SourceCount: 2,
		DestCount:   1,
		Diff: &sync.ListDiff{
			ToAdd:    []models.Contact{{FirstName: "John", LastName: "Doe", Email: "john@doe.com"}},
			ToRemove: []models.Contact{},
		},
	}}
	handler := NewSyncHandlers(setupTestDB(t), testLists, previewer)

	_, out, err := handler.PreviewListSync(context.Background(), nil, PreviewListSyncInput{List: "LIST1@domain.com"})
	require.NoError(t, err)

	assert.Equal(t, []string{"LIST1@domain.com"}, previewer.calls)
	assert.Equal(t, 2, out.SourceCount)
	require.Len(t, out.ToAdd, 1)
	assert.Equal(t, "John Doe", out.ToAdd[0].Name)
	assert.Equal(t, "john@doe.com", out.ToAdd[0].Email)
	assert.NotNil(t, out.ToRemove)
	assert.Empty(t, out.ToRemove)
}

func TestPreviewListSyncValidation(t *testing.T) {
	previewer := &stubPreviewer{}
	handler := NewSyncHandlers(setupTestDB(t), testLists, previewer)

	_, _, err := handler.PreviewListSync(context.Background(), nil, PreviewListSyncInput{})
	assert.EqualError(t, err, "list is required")

	_, _, err = handler.PreviewListSync(context.Background(), nil, PreviewListSyncInput{List: "other@domain.com"})
	assert.EqualError(t, err, "unknown list specified: other@domain.com")
	assert.Empty(t, previewer.calls)
}

func TestPreviewListSyncNotFound(t *testing.T) {
	previewer := &stubPreviewer{err: &sync.ListNotFoundError{ListName: "list1@domain.com"}}
	handler := NewSyncHandlers(setupTestDB(t), testLists, previewer)

	_, _, err := handler.PreviewListSync(context.Background(), nil, PreviewListSyncInput{List: "list1@domain.com"})
	require.Error(t, err)

	var notFound *sync.ListNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestSyncHistory(t *testing.T) {
	database := setupTestDB(t)

	run, err := db.StartRun(database, "list1@domain.com", false)
	require.NoError(t, err)
	run.Status = db.RunSuccess
	run.Added = 3
	require.NoError(t, db.FinishRun(database, run))

	_, err = db.StartRun(database, "list2@domain.com", true)
	require.NoError(t, err)

	handler := NewSyncHandlers(database, testLists, &stubPreviewer{})

	_, all, err := handler.SyncHistory(context.Background(), nil, SyncHistoryInput{})
	require.NoError(t, err)
	assert.Len(t, all.Runs, 2)

	_, one, err := handler.SyncHistory(context.Background(), nil, SyncHistoryInput{List: "list1@domain.com"})
	require.NoError(t, err)
	require.Len(t, one.Runs, 1)
	assert.Equal(t, db.RunSuccess, one.Runs[0].Status)
	assert.Equal(t, 3, one.Runs[0].Added)
	assert.NotNil(t, one.Runs[0].FinishedAt)

	_, _, err = handler.SyncHistory(context.Background(), nil, SyncHistoryInput{Limit: -1})
	assert.Error(t, err)
}
