package gh

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/robby/sprintreport/internal/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

const fieldsResponse = `{"data": {"node": {"fields": {"nodes": [
	{"id": "f_title", "name": "Title", "dataType": "TITLE"},
	{"id": "f_status", "name": "Status", "dataType": "SINGLE_SELECT", "options": [
		{"id": "opt_todo", "name": "Todo", "color": "GRAY"},
		{"id": "opt_doing", "name": "In Progress", "color": "YELLOW"},
		{"id": "opt_done", "name": "Done", "color": "GREEN"}
	]}
]}}}}`

const itemsPage1 = `{"data": {"node": {"items": {
	"pageInfo": {"hasNextPage": true, "endCursor": "cursor_1"},
	"nodes": [
		{"id": "item_1", "fieldValueByName": {"optionId": "opt_todo"}, "content": {
			"__typename": "Issue", "title": "Fix bug", "body": "Steps...", "url": "https://github.com/o/r/issues/1",
			"number": 1, "state": "OPEN", "createdAt": "2024-01-02T10:00:00Z",
			"author": {"login": "alice"}, "repository": {"nameWithOwner": "o/r"},
			"assignees": {"nodes": [{"login": "bob"}]},
			"labels": {"nodes": [{"id": "lbl_bug", "name": "bug", "color": "d73a4a"}]}
		}},
		{"id": "item_2", "fieldValueByName": null, "content": null}
	]
}}}}`

const itemsPage2 = `{"data": {"node": {"items": {
	"pageInfo": {"hasNextPage": false, "endCursor": "cursor_2"},
	"nodes": [
		{"id": "item_3", "fieldValueByName": {"optionId": "opt_done"}, "content": {
			"__typename": "DraftIssue", "title": "Write notes", "body": ""
		}}
	]
}}}}`

// newTestServer answers GraphQL queries by inspecting the query text.
func newTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	itemCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test_token", r.Header.Get("Authorization"))

		var req gqlRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.Contains(req.Query, "fields(first"):
			_, _ = w.Write([]byte(fieldsResponse))
		case strings.Contains(req.Query, "items(first"):
			itemCalls++
			if req.Variables["after"] == "cursor_1" {
				_, _ = w.Write([]byte(itemsPage2))
			} else {
				_, _ = w.Write([]byte(itemsPage1))
			}
		case strings.Contains(req.Query, "organization(login"):
			_, _ = w.Write([]byte(`{"data": {"organization": null, "user": {"id": "user_1"}},
				"errors": [{"message": "Could not resolve to an Organization with the login of 'alice'."}]}`))
		case strings.Contains(req.Query, "projectsV2"):
			_, _ = w.Write([]byte(`{"data": {"node": {"projectsV2": {"nodes": [
				{"id": "proj_1", "number": 1, "title": "Roadmap"},
				{"id": "proj_2", "number": 2, "title": "Sprint"}
			]}}}}`))
		default:
			t.Errorf("unexpected query: %s", req.Query)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &itemCalls
}

func newTestClient(t *testing.T) (*Client, *int) {
	srv, calls := newTestServer(t)
	return NewWithToken("test_token", srv.URL, srv.Client()), calls
}

func TestFindProject(t *testing.T) {
	c, _ := newTestClient(t)

	t.Run("user owner", func(t *testing.T) {
		p, err := c.FindProject(context.Background(), "alice", 2)
		require.NoError(t, err)
		assert.Equal(t, "proj_2", p.ID)
		assert.Equal(t, "Sprint", p.Title)
		assert.Equal(t, "alice", p.Owner)
	})

	t.Run("unknown number", func(t *testing.T) {
		_, err := c.FindProject(context.Background(), "alice", 9)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "project #9 not found")
	})
}

func TestGetProjectFields(t *testing.T) {
	c, _ := newTestClient(t)

	fields, err := c.GetProjectFields(context.Background(), "proj_1")
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, FieldTypeSingleSelect, fields[1].Type)
	require.Len(t, fields[1].Options, 3)
	assert.Equal(t, "In Progress", fields[1].Options[1].Name)
}

func TestGetItems(t *testing.T) {
	c, _ := newTestClient(t)

	items, cursor, hasMore, err := c.GetItems(context.Background(), "proj_1", "Status", "", 50)
	require.NoError(t, err)
	assert.True(t, hasMore)
	assert.Equal(t, "cursor_1", cursor)
	require.Len(t, items, 2)

	assert.Equal(t, "Issue", items[0].ContentType)
	assert.Equal(t, "opt_todo", items[0].GroupOptionID)
	assert.Equal(t, []string{"bob"}, items[0].Assignees)
	assert.Equal(t, []ItemLabel{{ID: "lbl_bug", Name: "bug", Color: "d73a4a"}}, items[0].Labels)

	assert.Equal(t, "Private", items[1].ContentType)
	assert.Empty(t, items[1].GroupOptionID)
}

func TestBoard(t *testing.T) {
	c, itemCalls := newTestClient(t)
	board := NewBoard(c, "proj_1", "")
	ctx := context.Background()

	ids, err := board.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"opt_todo", "opt_doing", "opt_done"}, ids)

	name, err := board.ListName(ctx, "opt_doing")
	require.NoError(t, err)
	assert.Equal(t, "In Progress", name)

	_, err = board.ListName(ctx, "opt_missing")
	assert.Error(t, err)

	todo, err := board.ListCards(ctx, "opt_todo")
	require.NoError(t, err)
	require.Len(t, todo, 1)
	assert.Equal(t, "item_1", todo[0]["id"])
	assert.Equal(t, "Fix bug", todo[0]["name"])
	assert.Equal(t, "OPEN", todo[0]["issueState"])
	assert.Equal(t, 1, todo[0]["number"])

	doing, err := board.ListCards(ctx, "opt_doing")
	require.NoError(t, err)
	assert.NotNil(t, doing)
	assert.Empty(t, doing)

	assert.Equal(t, 2, *itemCalls, "both pages loaded exactly once")
}

func TestBoard_Snapshot(t *testing.T) {
	c, _ := newTestClient(t)
	board := NewBoard(c, "proj_1", "status")

	var _ capture.ListLister = board
	doc, err := capture.NewTaker(board, nil).Take(context.Background())
	require.NoError(t, err)

	s, err := doc.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []string{"item_1", "item_3"}, s.AllCardIDs(), "items without a status are not on the board")
	assert.Equal(t, []string{"lbl_bug"}, s.AllLabelIDs())

	card, ok := s.Card("item_1")
	require.True(t, ok)
	assert.Equal(t, "https://github.com/o/r/issues/1", card.URL())
}

func TestBoard_MissingField(t *testing.T) {
	c, _ := newTestClient(t)
	board := NewBoard(c, "proj_1", "Priority")

	_, err := board.ListIDs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Priority"`)
}
