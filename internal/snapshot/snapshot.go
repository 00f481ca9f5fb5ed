// Package snapshot holds the in-memory representation of one captured board
// state: its lists, cards and label catalog, with lookup helpers.
//
// A Snapshot is read-only once constructed. Derived data (flattened cards,
// label catalog, card annotations) is computed once and cached.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/robby/sprintreport/internal/domain"
)

// ErrMalformedSnapshot indicates a snapshot document that cannot be loaded.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// timestampLayouts are tried in order when parsing a document timestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// Snapshot is one captured board state.
type Snapshot struct {
	capturedAt time.Time
	lists      []domain.List

	// Computed at construction
	annotations map[string]domain.Annotation // card ID -> list name + initial state
	index       map[string]*domain.Card      // card ID -> first card with that ID

	// Computed lazily
	cards       []*domain.Card
	cardIDs     []string
	labels      []domain.Label
	labelIDs    []string
	labelsReady bool
}

// New creates a snapshot from already decoded lists and runs the enrichment
// pass: every card is annotated with its list name and the in-progress state.
func New(capturedAt time.Time, lists []domain.List) *Snapshot {
	if lists == nil {
		lists = []domain.List{}
	}
	s := &Snapshot{
		capturedAt:  capturedAt,
		lists:       lists,
		annotations: make(map[string]domain.Annotation),
		index:       make(map[string]*domain.Card),
	}
	s.enrich()
	return s
}

// Parse decodes a snapshot document of the form
// {"timestamp": "...", "lists": [{"id", "name", "cards": [...]}]}.
func Parse(data []byte) (*Snapshot, error) {
	var doc struct {
		Timestamp *string        `json:"timestamp"`
		Lists     *[]domain.List `json:"lists"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	if doc.Timestamp == nil {
		return nil, fmt.Errorf("%w: missing timestamp", ErrMalformedSnapshot)
	}
	capturedAt, err := ParseTimestamp(*doc.Timestamp)
	if err != nil {
		return nil, err
	}

	if doc.Lists == nil || *doc.Lists == nil {
		return nil, fmt.Errorf("%w: missing lists", ErrMalformedSnapshot)
	}

	return New(capturedAt, *doc.Lists), nil
}

// Load reads and parses a snapshot document.
func Load(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Parse(data)
}

// LoadFile reads and parses the snapshot document stored at path.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	s, err := Parse(bytes.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseTimestamp parses an ISO-8601 capture timestamp.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable timestamp %q", ErrMalformedSnapshot, value)
}

// enrich annotates every card with its owning list's name and the initial
// in-progress state. It runs exactly once, from New.
func (s *Snapshot) enrich() {
	for li := range s.lists {
		lst := &s.lists[li]
		for ci := range lst.Cards {
			card := &lst.Cards[ci]
			if _, seen := s.index[card.ID]; seen {
				continue
			}
			s.index[card.ID] = card
			s.annotations[card.ID] = domain.Annotation{
				ListName: lst.Name,
				State:    domain.StateInProgress,
			}
		}
	}
}

// CapturedAt returns the full capture instant, as written in the document.
func (s *Snapshot) CapturedAt() time.Time {
	return s.capturedAt
}

// Date returns the capture calendar date (midnight UTC of the date as
// written, ignoring time of day and offset).
func (s *Snapshot) Date() time.Time {
	y, m, d := s.capturedAt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Lists returns the ordered list sequence.
func (s *Snapshot) Lists() []domain.List {
	return s.lists
}

// Cards returns every card, in list order then card order.
func (s *Snapshot) Cards() []*domain.Card {
	if s.cards == nil {
		s.cards = make([]*domain.Card, 0, len(s.index))
		for li := range s.lists {
			for ci := range s.lists[li].Cards {
				s.cards = append(s.cards, &s.lists[li].Cards[ci])
			}
		}
	}
	return s.cards
}

// AllCardIDs returns the IDs of Cards, in the same order.
func (s *Snapshot) AllCardIDs() []string {
	if s.cardIDs == nil {
		cards := s.Cards()
		s.cardIDs = make([]string, 0, len(cards))
		for _, card := range cards {
			s.cardIDs = append(s.cardIDs, card.ID)
		}
	}
	return s.cardIDs
}

// Card returns the first card with the given ID, in list then card order.
func (s *Snapshot) Card(id string) (*domain.Card, bool) {
	card, ok := s.index[id]
	return card, ok
}

// Annotation returns the enrichment record for a card ID.
func (s *Snapshot) Annotation(id string) (domain.Annotation, bool) {
	ann, ok := s.annotations[id]
	return ann, ok
}

// Labels returns the label catalog. When the same label ID appears more than
// once, the first occurrence (list, then card, then label order) is kept and
// later ones are discarded even if their name or color differ.
func (s *Snapshot) Labels() []domain.Label {
	if !s.labelsReady {
		seen := make(map[string]bool)
		s.labels = []domain.Label{}
		for _, card := range s.Cards() {
			for _, lbl := range card.Labels {
				if seen[lbl.ID] {
					continue
				}
				seen[lbl.ID] = true
				s.labels = append(s.labels, lbl)
			}
		}
		s.labelsReady = true
	}
	return s.labels
}

// AllLabelIDs returns the IDs of Labels, in the same order.
func (s *Snapshot) AllLabelIDs() []string {
	if s.labelIDs == nil {
		labels := s.Labels()
		s.labelIDs = make([]string, 0, len(labels))
		for _, lbl := range labels {
			s.labelIDs = append(s.labelIDs, lbl.ID)
		}
	}
	return s.labelIDs
}

// Label returns the catalog entry for a label ID.
func (s *Snapshot) Label(id string) (domain.Label, bool) {
	for _, lbl := range s.Labels() {
		if lbl.ID == id {
			return lbl, true
		}
	}
	return domain.Label{}, false
}

// CardsWithLabel returns the cards carrying the given label, in card order.
func (s *Snapshot) CardsWithLabel(labelID string) []*domain.Card {
	var cards []*domain.Card
	for _, card := range s.Cards() {
		if card.HasLabel(labelID) {
			cards = append(cards, card)
		}
	}
	return cards
}
