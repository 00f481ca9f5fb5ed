// Package store provides the in-memory state behind the report viewer.
// It lays a sprint report out as board columns: the end snapshot's lists in
// order, plus a column for the cards abandoned during the sprint.
package store

import (
	"errors"
	"strings"

	"github.com/robby/sprintreport/internal/report"
)

var (
	// ErrCardNotFound indicates the requested card does not exist.
	ErrCardNotFound = errors.New("card not found")
)

// AbandonedKey is the special key of the column holding abandoned cards.
const AbandonedKey = "_abandoned_"

// AbandonedName is the display name of the abandoned column.
const AbandonedName = "Abandoned"

// Column is one board column: a list of the end snapshot or the abandoned
// column.
type Column struct {
	Key  string
	Name string
}

// Store manages the viewer's view of a report.
type Store struct {
	report *report.Report

	// Card storage: ID -> card joined with its annotation
	cards map[string]*report.CardView

	// Column order and mapping: key -> []card ID
	order   []Column
	columns map[string][]string
}

// New creates a store for a report.
func New(r *report.Report) *Store {
	s := &Store{
		report:  r,
		cards:   make(map[string]*report.CardView),
		columns: make(map[string][]string),
	}
	s.rebuildColumns()
	return s
}

// Report returns the report the store was built from.
func (s *Store) Report() *report.Report {
	return s.report
}

// GetCard retrieves a card by ID, returning ErrCardNotFound if not found.
func (s *Store) GetCard(id string) (*report.CardView, error) {
	card, exists := s.cards[id]
	if !exists {
		return nil, ErrCardNotFound
	}
	return card, nil
}

// GetAllCards returns every card in report order.
func (s *Store) GetAllCards() []*report.CardView {
	cards := make([]*report.CardView, 0, len(s.cards))
	for _, id := range s.report.AllCardIDs() {
		if card, ok := s.cards[id]; ok {
			cards = append(cards, card)
		}
	}
	return cards
}

// Columns returns the columns in display order.
func (s *Store) Columns() []Column {
	result := make([]Column, len(s.order))
	copy(result, s.order)
	return result
}

// GetColumnCardIDs returns the card IDs for a specific column key.
func (s *Store) GetColumnCardIDs(key string) []string {
	ids, exists := s.columns[key]
	if !exists {
		return []string{}
	}
	// Return a copy
	result := make([]string, len(ids))
	copy(result, ids)
	return result
}

// FilterCardIDs returns the IDs of a column whose card names contain query,
// case-insensitively. With incomingOnly, only incoming cards are kept.
func (s *Store) FilterCardIDs(key, query string, incomingOnly bool) []string {
	query = strings.ToLower(query)
	filtered := make([]string, 0)
	for _, id := range s.columns[key] {
		card, exists := s.cards[id]
		if !exists {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(card.Name), query) {
			continue
		}
		if incomingOnly && !card.Incoming {
			continue
		}
		filtered = append(filtered, id)
	}
	return filtered
}

// rebuildColumns reconstructs cards and columns from the report. A card
// appears in the column of every end list that holds it; abandoned cards
// follow in report order.
func (s *Store) rebuildColumns() {
	s.cards = make(map[string]*report.CardView)
	s.columns = make(map[string][]string)
	s.order = nil

	for _, id := range s.report.AllCardIDs() {
		if card, ok := s.report.Card(id); ok {
			s.cards[id] = &card
		}
	}

	for _, list := range s.report.Lists() {
		if _, dup := s.columns[list.ID]; !dup {
			s.order = append(s.order, Column{Key: list.ID, Name: list.Name})
		}
		ids := s.columns[list.ID]
		if ids == nil {
			ids = []string{}
		}
		for _, card := range list.Cards {
			ids = append(ids, card.ID)
		}
		s.columns[list.ID] = ids
	}

	if abandoned := s.report.AbandonedCardIDs(); len(abandoned) > 0 {
		s.order = append(s.order, Column{Key: AbandonedKey, Name: AbandonedName})
		s.columns[AbandonedKey] = append([]string{}, abandoned...)
	}
}
