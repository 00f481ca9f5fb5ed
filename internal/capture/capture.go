// Package capture takes snapshots of a remote board: it reads each configured
// list from a Source, filters card fields and stamps the result.
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robby/sprintreport/internal/snapshot"
)

// ErrNoLists indicates there is nothing to capture.
var ErrNoLists = errors.New("no list IDs configured")

// Source is a remote board that can be read one list at a time.
type Source interface {
	ListName(ctx context.Context, listID string) (string, error)
	ListCards(ctx context.Context, listID string) ([]map[string]any, error)
}

// ListLister is implemented by sources that can enumerate their own lists,
// used when no list IDs are configured.
type ListLister interface {
	ListIDs(ctx context.Context) ([]string, error)
}

// Taker captures one snapshot document from a Source.
type Taker struct {
	source  Source
	listIDs []string
	filter  FieldFilter
	now     func() time.Time

	doc *snapshot.Document
}

// Option configures a Taker.
type Option func(*Taker)

// WithFilter sets the card field filter.
func WithFilter(f FieldFilter) Option {
	return func(t *Taker) {
		t.filter = f
	}
}

// WithClock replaces the capture clock.
func WithClock(now func() time.Time) Option {
	return func(t *Taker) {
		t.now = now
	}
}

// NewTaker creates a Taker for the given lists, captured in that order.
func NewTaker(source Source, listIDs []string, opts ...Option) *Taker {
	t := &Taker{
		source:  source,
		listIDs: listIDs,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Take fetches every list and returns the snapshot document. The first
// successful capture is cached; later calls return it unchanged.
func (t *Taker) Take(ctx context.Context) (*snapshot.Document, error) {
	if t.doc != nil {
		return t.doc, nil
	}

	listIDs := t.listIDs
	if len(listIDs) == 0 {
		lister, ok := t.source.(ListLister)
		if !ok {
			return nil, ErrNoLists
		}
		ids, err := lister.ListIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate lists: %w", err)
		}
		if len(ids) == 0 {
			return nil, ErrNoLists
		}
		listIDs = ids
	}

	doc := snapshot.NewDocument(t.now())
	for _, listID := range listIDs {
		lst, err := t.takeList(ctx, listID)
		if err != nil {
			return nil, err
		}
		doc.Lists = append(doc.Lists, lst)
	}

	slog.Debug("Snapshot taken", "lists", len(doc.Lists), "timestamp", doc.Timestamp)
	t.doc = doc
	return doc, nil
}

func (t *Taker) takeList(ctx context.Context, listID string) (snapshot.DocumentList, error) {
	name, err := t.source.ListName(ctx, listID)
	if err != nil {
		return snapshot.DocumentList{}, fmt.Errorf("failed to get name of list %s: %w", listID, err)
	}

	cards, err := t.source.ListCards(ctx, listID)
	if err != nil {
		return snapshot.DocumentList{}, fmt.Errorf("failed to get cards of list %s: %w", listID, err)
	}

	filtered := make([]map[string]any, 0, len(cards))
	for _, card := range cards {
		filtered = append(filtered, t.filter.Apply(card))
	}

	slog.Debug("List captured", "id", listID, "name", name, "cards", len(filtered))
	return snapshot.DocumentList{ID: listID, Name: name, Cards: filtered}, nil
}
