// Package domain defines the normalized board types shared by snapshots,
// reports and the viewer. These types represent the core concepts independent
// of the remote board service (Trello lists or GitHub Projects columns).
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
)

// State is the lifecycle tag a card carries in a sprint report.
type State string

// State constants for card lifecycle tags.
const (
	StateInProgress State = "in-progress"
	StateDone       State = "done"
	StateAbandoned  State = "abandoned"
)

// Derived keys written next to the raw card fields when a card is serialized
// for rendering. They are never read back from an input document.
const (
	KeyListName   = "list-name"
	KeyState      = "state"
	KeyIsIncoming = "is_incoming"
)

// Label represents a card label. Labels are embedded inside every card that
// carries them; snapshots deduplicate them by ID.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// List represents one board column and its cards, in board order.
type List struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cards []Card `json:"cards"`
}

// Annotation is the derived, per-card record computed from a snapshot and
// later refined by a sprint report. It is kept apart from the Card value and
// joined at render time.
type Annotation struct {
	ListName string // Name of the list the card sat in at capture time
	State    State  // Lifecycle tag
	Incoming bool   // Present at the end of the sprint but not at the start
}

// Card is an immutable board card. ID, Name and Labels are decoded eagerly;
// every other field the remote service returned (or the field filter kept) is
// retained verbatim and reachable through Field and Text.
type Card struct {
	ID     string
	Name   string
	Labels []Label

	fields map[string]any
}

// NewCard builds a card from a raw field map, as returned by a board source.
func NewCard(fields map[string]any) (Card, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return Card{}, fmt.Errorf("failed to encode card fields: %w", err)
	}
	var card Card
	if err := json.Unmarshal(data, &card); err != nil {
		return Card{}, err
	}
	return card, nil
}

// UnmarshalJSON decodes a raw card object, tolerating missing optional fields.
func (c *Card) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("invalid card: %w", err)
	}
	if fields == nil {
		return errors.New("invalid card: null")
	}

	var head struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Labels []Label `json:"labels"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("invalid card %v: %w", fields["id"], err)
	}

	delete(fields, KeyListName)
	delete(fields, KeyState)
	delete(fields, KeyIsIncoming)

	c.ID = head.ID
	c.Name = head.Name
	c.Labels = head.Labels
	c.fields = fields
	return nil
}

// MarshalJSON encodes the card's raw field set.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Fields())
}

// Fields returns a copy of the raw field set.
func (c Card) Fields() map[string]any {
	fields := maps.Clone(c.fields)
	if fields == nil {
		fields = make(map[string]any, 3)
	}
	if _, ok := fields["id"]; !ok {
		fields["id"] = c.ID
	}
	if _, ok := fields["name"]; !ok && c.Name != "" {
		fields["name"] = c.Name
	}
	if _, ok := fields["labels"]; !ok && c.Labels != nil {
		fields["labels"] = c.Labels
	}
	return fields
}

// Field returns a raw field value, or nil if the card does not carry it.
func (c Card) Field(name string) any {
	return c.fields[name]
}

// Text returns a raw field as a string. Non-string values and missing fields
// yield the empty string.
func (c Card) Text(name string) string {
	s, _ := c.fields[name].(string)
	return s
}

// URL returns the card's link, preferring the short URL Trello returns.
func (c Card) URL() string {
	if u := c.Text("shortUrl"); u != "" {
		return u
	}
	return c.Text("url")
}

// HasLabel reports whether the card carries a label with the given ID.
func (c Card) HasLabel(labelID string) bool {
	for _, lbl := range c.Labels {
		if lbl.ID == labelID {
			return true
		}
	}
	return false
}
