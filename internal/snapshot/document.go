package snapshot

import (
	"fmt"
	"time"

	"github.com/robby/sprintreport/internal/domain"
)

// TimestampLayout is the layout used when writing a document timestamp.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

// Document is the serialized form of a freshly captured board.
type Document struct {
	Timestamp string         `json:"timestamp"`
	Lists     []DocumentList `json:"lists"`
}

// DocumentList is one captured list with its raw (filtered) cards.
type DocumentList struct {
	ID    string           `json:"id"`
	Name  string           `json:"name"`
	Cards []map[string]any `json:"cards"`
}

// NewDocument creates an empty document stamped with the given instant in UTC.
func NewDocument(capturedAt time.Time) *Document {
	return &Document{
		Timestamp: capturedAt.UTC().Format(TimestampLayout),
		Lists:     []DocumentList{},
	}
}

// Snapshot converts the document into a Snapshot. Cards go through the same
// decoding as documents read from disk.
func (d *Document) Snapshot() (*Snapshot, error) {
	capturedAt, err := ParseTimestamp(d.Timestamp)
	if err != nil {
		return nil, err
	}

	lists := make([]domain.List, 0, len(d.Lists))
	for _, dl := range d.Lists {
		lst := domain.List{ID: dl.ID, Name: dl.Name, Cards: make([]domain.Card, 0, len(dl.Cards))}
		for _, fields := range dl.Cards {
			card, err := domain.NewCard(fields)
			if err != nil {
				return nil, fmt.Errorf("%w: list %s: %v", ErrMalformedSnapshot, dl.ID, err)
			}
			lst.Cards = append(lst.Cards, card)
		}
		lists = append(lists, lst)
	}
	return New(capturedAt, lists), nil
}
