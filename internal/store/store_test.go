package store

import (
	"testing"
	"time"

	"github.com/robby/sprintreport/internal/domain"
	"github.com/robby/sprintreport/internal/report"
	"github.com/robby/sprintreport/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test fixtures
func createTestReport() *report.Report {
	start := snapshot.New(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), []domain.List{
		{ID: "list_todo", Name: "Todo", Cards: []domain.Card{
			{ID: "card_1", Name: "Fix login bug"},
			{ID: "card_2", Name: "Write docs"},
			{ID: "card_3", Name: "Drop legacy API"},
		}},
		{ID: "list_done", Name: "Done", Cards: []domain.Card{}},
	})
	end := snapshot.New(time.Date(2024, 1, 14, 17, 0, 0, 0, time.UTC), []domain.List{
		{ID: "list_todo", Name: "Todo", Cards: []domain.Card{
			{ID: "card_2", Name: "Write docs"},
			{ID: "card_4", Name: "Hotfix checkout"},
		}},
		{ID: "list_done", Name: "Done", Cards: []domain.Card{
			{ID: "card_1", Name: "Fix login bug"},
		}},
	})
	return report.New(start, end, nil)
}

func TestNew(t *testing.T) {
	r := createTestReport()
	s := New(r)

	assert.Same(t, r, s.Report())
	assert.Len(t, s.GetAllCards(), 4)
}

func TestColumns(t *testing.T) {
	s := New(createTestReport())

	assert.Equal(t, []Column{
		{Key: "list_todo", Name: "Todo"},
		{Key: "list_done", Name: "Done"},
		{Key: AbandonedKey, Name: AbandonedName},
	}, s.Columns())
}

func TestColumns_NoAbandoned(t *testing.T) {
	snap := snapshot.New(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), []domain.List{
		{ID: "list_todo", Name: "Todo", Cards: []domain.Card{{ID: "card_1", Name: "Only"}}},
	})
	s := New(report.New(snap, snap, nil))

	assert.Equal(t, []Column{{Key: "list_todo", Name: "Todo"}}, s.Columns())
	assert.Empty(t, s.GetColumnCardIDs(AbandonedKey))
}

func TestColumns_ReturnsCopy(t *testing.T) {
	s := New(createTestReport())

	cols := s.Columns()
	cols[0].Name = "Modified"

	assert.Equal(t, "Todo", s.Columns()[0].Name)
}

func TestGetColumnCardIDs(t *testing.T) {
	s := New(createTestReport())

	assert.Equal(t, []string{"card_2", "card_4"}, s.GetColumnCardIDs("list_todo"))
	assert.Equal(t, []string{"card_1"}, s.GetColumnCardIDs("list_done"))
	assert.Equal(t, []string{"card_3"}, s.GetColumnCardIDs(AbandonedKey))

	ids := s.GetColumnCardIDs("nonexistent")
	assert.NotNil(t, ids)
	assert.Empty(t, ids)

	// Returned slice is a copy
	ids = s.GetColumnCardIDs("list_todo")
	ids[0] = "changed"
	assert.Equal(t, "card_2", s.GetColumnCardIDs("list_todo")[0])
}

func TestGetCard(t *testing.T) {
	s := New(createTestReport())

	t.Run("existing card", func(t *testing.T) {
		card, err := s.GetCard("card_1")
		require.NoError(t, err)
		assert.Equal(t, "Fix login bug", card.Name)
		assert.Equal(t, domain.StateDone, card.State)
		assert.Equal(t, "Done", card.ListName)
		assert.False(t, card.Incoming)
	})

	t.Run("incoming card", func(t *testing.T) {
		card, err := s.GetCard("card_4")
		require.NoError(t, err)
		assert.True(t, card.Incoming)
		assert.Equal(t, domain.StateInProgress, card.State)
	})

	t.Run("abandoned card", func(t *testing.T) {
		card, err := s.GetCard("card_3")
		require.NoError(t, err)
		assert.Equal(t, domain.StateAbandoned, card.State)
		assert.Equal(t, "Todo", card.ListName)
	})

	t.Run("missing card", func(t *testing.T) {
		card, err := s.GetCard("nope")
		assert.ErrorIs(t, err, ErrCardNotFound)
		assert.Nil(t, card)
	})
}

func TestGetAllCards_ReportOrder(t *testing.T) {
	s := New(createTestReport())

	var ids []string
	for _, c := range s.GetAllCards() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"card_2", "card_4", "card_1", "card_3"}, ids)
}

func TestFilterCardIDs(t *testing.T) {
	s := New(createTestReport())

	tests := []struct {
		name         string
		key          string
		query        string
		incomingOnly bool
		want         []string
	}{
		{"no filter", "list_todo", "", false, []string{"card_2", "card_4"}},
		{"case insensitive", "list_todo", "HOTFIX", false, []string{"card_4"}},
		{"incoming only", "list_todo", "", true, []string{"card_4"}},
		{"query and incoming", "list_todo", "docs", true, []string{}},
		{"unknown column", "missing", "", false, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.FilterCardIDs(tt.key, tt.query, tt.incomingOnly))
		})
	}
}
