// Package report compares the snapshots taken at the start and at the end of a
// sprint and derives the lifecycle state of every card.
//
// A Report borrows both snapshots for its lifetime. The snapshots themselves
// are never modified; the derived per-card state lives in the Report and is
// joined with the card values when they are read back.
package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/robby/sprintreport/internal/domain"
	"github.com/robby/sprintreport/internal/snapshot"
)

// ErrNoTemplate indicates Generate was called on a report built without a template.
var ErrNoTemplate = errors.New("no report template")

// Template renders a data context to text. Both *html/template.Template and
// *text/template.Template satisfy it.
type Template interface {
	Execute(w io.Writer, data any) error
}

// CardView is a card joined with its sprint annotation.
type CardView struct {
	domain.Card
	domain.Annotation
}

// Report is the comparison of a start and an end snapshot.
type Report struct {
	start *snapshot.Snapshot
	end   *snapshot.Snapshot
	tmpl  Template

	annotations map[string]domain.Annotation // card ID -> derived annotation

	allCardIDs       []string
	incomingCardIDs  []string
	abandonedCardIDs []string
	allLabelIDs      []string
}

// New compares start and end and assigns every card its final state:
//  1. cards in the last list of end are done;
//  2. cards missing from end are abandoned;
//  3. cards missing from start are flagged incoming, keeping their state.
//
// tmpl may be nil when the report is only inspected, not generated.
func New(start, end *snapshot.Snapshot, tmpl Template) *Report {
	r := &Report{
		start:            start,
		end:              end,
		tmpl:             tmpl,
		annotations:      make(map[string]domain.Annotation),
		allCardIDs:       union(end.AllCardIDs(), start.AllCardIDs()),
		incomingCardIDs:  difference(end.AllCardIDs(), start.AllCardIDs()),
		abandonedCardIDs: difference(start.AllCardIDs(), end.AllCardIDs()),
		allLabelIDs:      union(end.AllLabelIDs(), start.AllLabelIDs()),
	}
	r.annotate()
	return r
}

// annotate runs the state assignment. Each step overwrites what the previous
// one set, so the order is significant.
func (r *Report) annotate() {
	for _, id := range r.allCardIDs {
		if ann, ok := r.end.Annotation(id); ok {
			r.annotations[id] = ann
		} else if ann, ok := r.start.Annotation(id); ok {
			r.annotations[id] = ann
		}
	}

	if done, ok := r.DoneList(); ok {
		for _, card := range done.Cards {
			r.setState(card.ID, domain.StateDone)
		}
	}

	for _, id := range r.abandonedCardIDs {
		r.setState(id, domain.StateAbandoned)
	}

	for _, id := range r.incomingCardIDs {
		ann := r.annotations[id]
		ann.Incoming = true
		r.annotations[id] = ann
	}
}

func (r *Report) setState(id string, state domain.State) {
	ann := r.annotations[id]
	ann.State = state
	r.annotations[id] = ann
}

// StartDate returns the calendar date of the start snapshot.
func (r *Report) StartDate() time.Time {
	return r.start.Date()
}

// EndDate returns the calendar date of the end snapshot.
func (r *Report) EndDate() time.Time {
	return r.end.Date()
}

// SprintDays returns the inclusive number of days between the two snapshots.
// Snapshots supplied out of order yield zero or a negative count.
func (r *Report) SprintDays() int {
	days := r.EndDate().Sub(r.StartDate()).Hours() / 24
	return int(days) + 1
}

// Lists returns the end snapshot's lists; the final board shape is authoritative.
func (r *Report) Lists() []domain.List {
	return r.end.Lists()
}

// DoneList returns the last list of the end snapshot, whatever its name.
func (r *Report) DoneList() (domain.List, bool) {
	lists := r.end.Lists()
	if len(lists) == 0 {
		return domain.List{}, false
	}
	return lists[len(lists)-1], true
}

// AllCardIDs returns every card ID seen in either snapshot: end IDs first,
// then IDs only present at the start.
func (r *Report) AllCardIDs() []string {
	return r.allCardIDs
}

// IncomingCardIDs returns the IDs present at the end but not at the start.
func (r *Report) IncomingCardIDs() []string {
	return r.incomingCardIDs
}

// AbandonedCardIDs returns the IDs present at the start but not at the end.
func (r *Report) AbandonedCardIDs() []string {
	return r.abandonedCardIDs
}

// Card returns the end snapshot's version of a card if present, else the
// start snapshot's, joined with its sprint annotation.
func (r *Report) Card(id string) (CardView, bool) {
	card, ok := r.end.Card(id)
	if !ok {
		card, ok = r.start.Card(id)
	}
	if !ok {
		return CardView{}, false
	}
	return CardView{Card: *card, Annotation: r.annotations[id]}, true
}

// Annotation returns the derived annotation of a card ID.
func (r *Report) Annotation(id string) (domain.Annotation, bool) {
	ann, ok := r.annotations[id]
	return ann, ok
}

// AllLabelIDs returns every label ID seen in either snapshot, end first.
func (r *Report) AllLabelIDs() []string {
	return r.allLabelIDs
}

// Label returns the end snapshot's version of a label if present, else the
// start snapshot's.
func (r *Report) Label(id string) (domain.Label, bool) {
	if lbl, ok := r.end.Label(id); ok {
		return lbl, true
	}
	return r.start.Label(id)
}

// CardsWithLabel returns the end snapshot's cards carrying the label, then the
// start snapshot's, keeping the first occurrence of each card ID.
func (r *Report) CardsWithLabel(labelID string) []CardView {
	seen := make(map[string]bool)
	var views []CardView
	for _, s := range []*snapshot.Snapshot{r.end, r.start} {
		for _, card := range s.CardsWithLabel(labelID) {
			if seen[card.ID] {
				continue
			}
			seen[card.ID] = true
			views = append(views, CardView{Card: *card, Annotation: r.annotations[card.ID]})
		}
	}
	return views
}

// Generate renders the report with its template.
func (r *Report) Generate(w io.Writer) error {
	if r.tmpl == nil {
		return ErrNoTemplate
	}
	if err := r.tmpl.Execute(w, r.Context()); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// union concatenates a and b, keeping the first occurrence of each value.
func union(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, values := range [][]string{a, b} {
		for _, v := range values {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// difference returns the values of a absent from b, in a's order.
func difference(a, b []string) []string {
	exclude := make(map[string]bool, len(b))
	for _, v := range b {
		exclude[v] = true
	}
	out := []string{}
	for _, v := range a {
		if !exclude[v] {
			out = append(out, v)
		}
	}
	return out
}
