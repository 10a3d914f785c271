// ABOUTME: Tests for the Planning Center People API client
// ABOUTME: Uses an httptest server to verify list lookup, pagination, and error handling
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAppID    = "id"
	testSecret   = "secret"
	testListName = "list@list.com"
)

type pcServer struct {
	*httptest.Server
	requests []*http.Request
	lists    []map[string]any
	pages    map[string]map[string]any // keyed by offset query param
}

func newPCServer(t *testing.T) *pcServer {
	t.Helper()
	s := &pcServer{
		lists: []map[string]any{
			{"id": 2, "attributes": map[string]any{"name": testListName}},
		},
		pages: map[string]map[string]any{},
	}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests = append(s.requests, r)

		user, pass, ok := r.BasicAuth()
		if !ok || user != testAppID || pass != testSecret {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/people/v2/lists":
			_ = json.NewEncoder(w).Encode(map[string]any{"data": s.lists})
		case r.Method == http.MethodGet && r.URL.Path == "/people/v2/lists/2/people":
			page, found := s.pages[r.URL.Query().Get("offset")]
			if !found {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(page)
		case r.Method == http.MethodPost && r.URL.Path == "/people/v2/lists/2/run":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.Close)

	return s
}

func (s *pcServer) client() *PlanningCenterClient {
	return NewPlanningCenterClient(testAppID, testSecret, WithBaseURL(s.URL))
}

func personRecord(id int, first, last string, emailIDs ...int) map[string]any {
	data := []map[string]any{}
	for _, emailID := range emailIDs {
		data = append(data, map[string]any{"id": emailID, "type": "Email"})
	}
	return map[string]any{
		"id":   id,
		"type": "Person",
		"attributes": map[string]any{
			"first_name": first,
			"last_name":  last,
		},
		"relationships": map[string]any{
			"emails": map[string]any{"data": data},
		},
	}
}

func emailRecord(id int, address string) map[string]any {
	return map[string]any{
		"id":         id,
		"type":       "Email",
		"attributes": map[string]any{"address": address},
	}
}

func TestGetContactsSinglePage(t *testing.T) {
	server := newPCServer(t)
	server.pages[""] = map[string]any{
		"included": []any{emailRecord(1, "foo@bar")},
		"data":     []any{personRecord(3, "Joe", "Smith", 1)},
	}

	contacts, err := server.client().GetContacts(context.Background(), testListName)
	require.NoError(t, err)

	require.Len(t, contacts, 1)
	assert.Equal(t, "Joe", contacts[0].FirstName)
	assert.Equal(t, "Smith", contacts[0].LastName)
	assert.Equal(t, "foo@bar", contacts[0].Email)

	require.Len(t, server.requests, 2)
	assert.Equal(t, testListName, server.requests[0].URL.Query().Get("where[name]"))
	assert.Equal(t, "emails", server.requests[1].URL.Query().Get("include"))
}

func TestGetContactsFollowsNextLinks(t *testing.T) {
	server := newPCServer(t)
	next := func(offset string) map[string]any {
		return map[string]any{"next": server.URL + "/people/v2/lists/2/people?include=emails&offset=" + offset}
	}
	server.pages[""] = map[string]any{
		"included": []any{emailRecord(1, "a@x")},
		"data":     []any{personRecord(10, "A", "One", 1)},
		"links":    next("25"),
	}
	server.pages["25"] = map[string]any{
		"included": []any{emailRecord(2, "b@x"), emailRecord(3, "c@x")},
		"data":     []any{personRecord(11, "B", "Two", 2), personRecord(12, "C", "Three", 3)},
		"links":    next("50"),
	}
	server.pages["50"] = map[string]any{
		"included": []any{emailRecord(4, "d@x")},
		"data":     []any{personRecord(13, "D", "Four", 4)},
		"links":    map[string]any{"self": "ignored"},
	}

	contacts, err := server.client().GetContacts(context.Background(), testListName)
	require.NoError(t, err)

	assert.Equal(t, []string{"a@x", "b@x", "c@x", "d@x"}, emails(contacts))
	assert.Len(t, server.requests, 4, "one list lookup plus three pages")
	assert.Equal(t, "50", server.requests[3].URL.Query().Get("offset"))
	assert.Equal(t, "emails", server.requests[3].URL.Query().Get("include"))
}

func TestGetContactsSkipsPeopleWithoutEmail(t *testing.T) {
	server := newPCServer(t)
	server.pages[""] = map[string]any{
		"included": []any{
			emailRecord(1, "foo@bar"),
			map[string]any{"id": 9, "type": "PhoneNumber", "attributes": map[string]any{"address": "ignored@x"}},
		},
		"data": []any{
			personRecord(3, "Joe", "Smith", 1),
			personRecord(4, "No", "Email"),
			personRecord(5, "Phone", "Only", 9),
		},
	}

	contacts, err := server.client().GetContacts(context.Background(), testListName)
	require.NoError(t, err)

	assert.Equal(t, []string{"foo@bar"}, emails(contacts))
}

func TestGetContactsUsesFirstEmail(t *testing.T) {
	server := newPCServer(t)
	server.pages[""] = map[string]any{
		"included": []any{emailRecord(1, "first@x"), emailRecord(2, "second@x")},
		"data":     []any{personRecord(3, "Joe", "Smith", 1, 2)},
	}

	contacts, err := server.client().GetContacts(context.Background(), testListName)
	require.NoError(t, err)

	assert.Equal(t, []string{"first@x"}, emails(contacts))
}

func TestFindListIDCaseInsensitive(t *testing.T) {
	server := newPCServer(t)
	server.lists = []map[string]any{
		{"id": "7", "attributes": map[string]any{"name": "Members Extended"}},
		{"id": "8", "attributes": map[string]any{"name": "MEMBERS"}},
	}

	id, err := server.client().FindListID(context.Background(), "members")
	require.NoError(t, err)
	assert.Equal(t, "8", id)
}

func TestGetContactsListNotFound(t *testing.T) {
	server := newPCServer(t)
	server.lists = []map[string]any{}

	_, err := server.client().GetContacts(context.Background(), "missing")
	require.Error(t, err)

	var notFound *ListNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "missing", notFound.ListName)
	assert.True(t, IsListNotFound(err))
	assert.Len(t, server.requests, 1)
}

func TestGetContactsTransportError(t *testing.T) {
	server := newPCServer(t)
	// no pages registered, so the people endpoint answers 404

	_, err := server.client().GetContacts(context.Background(), testListName)
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusNotFound, transportErr.StatusCode)
	assert.False(t, IsListNotFound(err))
}

func TestGetContactsBadCredentials(t *testing.T) {
	server := newPCServer(t)
	client := NewPlanningCenterClient("wrong", "creds", WithBaseURL(server.URL))

	_, err := client.GetContacts(context.Background(), testListName)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusUnauthorized, transportErr.StatusCode)
}

func TestRefreshList(t *testing.T) {
	server := newPCServer(t)

	err := server.client().RefreshList(context.Background(), testListName)
	require.NoError(t, err)

	require.Len(t, server.requests, 2)
	assert.Equal(t, http.MethodPost, server.requests[1].Method)
	assert.Equal(t, "/people/v2/lists/2/run", server.requests[1].URL.Path)
}

func TestRefreshListNotFound(t *testing.T) {
	server := newPCServer(t)
	server.lists = nil

	err := server.client().RefreshList(context.Background(), testListName)
	assert.True(t, IsListNotFound(err))
}
