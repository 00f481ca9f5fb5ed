package report

import (
	"encoding/json"
	"time"

	"github.com/robby/sprintreport/internal/domain"
)

// Data is the serializable projection of a report.
type Data struct {
	Labels []domain.Label `json:"labels"`
	Cards  []CardView     `json:"cards"`
}

// Summary counts cards per lifecycle class.
type Summary struct {
	Total      int
	InProgress int
	Done       int
	Abandoned  int
	Incoming   int
}

// MarshalJSON encodes the card's raw fields plus its derived annotation.
func (v CardView) MarshalJSON() ([]byte, error) {
	fields := v.Card.Fields()
	fields[domain.KeyListName] = v.ListName
	fields[domain.KeyState] = v.State
	fields[domain.KeyIsIncoming] = v.Incoming
	return json.Marshal(fields)
}

// Data resolves every label and card the report knows about.
func (r *Report) Data() Data {
	data := Data{
		Labels: make([]domain.Label, 0, len(r.allLabelIDs)),
		Cards:  make([]CardView, 0, len(r.allCardIDs)),
	}
	for _, id := range r.allLabelIDs {
		if lbl, ok := r.Label(id); ok {
			data.Labels = append(data.Labels, lbl)
		}
	}
	for _, id := range r.allCardIDs {
		if card, ok := r.Card(id); ok {
			data.Cards = append(data.Cards, card)
		}
	}
	return data
}

// DataAsJSON encodes Data.
func (r *Report) DataAsJSON() ([]byte, error) {
	return json.Marshal(r.Data())
}

// Summary counts the report's cards per state. Incoming is orthogonal to the
// three states.
func (r *Report) Summary() Summary {
	var sum Summary
	for _, id := range r.allCardIDs {
		ann := r.annotations[id]
		sum.Total++
		switch ann.State {
		case domain.StateDone:
			sum.Done++
		case domain.StateAbandoned:
			sum.Abandoned++
		default:
			sum.InProgress++
		}
		if ann.Incoming {
			sum.Incoming++
		}
	}
	return sum
}

// Context is the data handed to report templates. Lookups return nil when the
// ID is unknown so templates can test them with {{if}}.
type Context struct {
	StartDate        time.Time
	EndDate          time.Time
	SprintDays       int
	Lists            []domain.List
	AllCardIDs       []string
	IncomingCardIDs  []string
	AbandonedCardIDs []string
	AllLabelIDs      []string
	Summary          Summary

	report *Report
}

// Context builds the template data context.
func (r *Report) Context() *Context {
	return &Context{
		StartDate:        r.StartDate(),
		EndDate:          r.EndDate(),
		SprintDays:       r.SprintDays(),
		Lists:            r.Lists(),
		AllCardIDs:       r.AllCardIDs(),
		IncomingCardIDs:  r.IncomingCardIDs(),
		AbandonedCardIDs: r.AbandonedCardIDs(),
		AllLabelIDs:      r.AllLabelIDs(),
		Summary:          r.Summary(),
		report:           r,
	}
}

// Card resolves a card ID.
func (c *Context) Card(id string) *CardView {
	card, ok := c.report.Card(id)
	if !ok {
		return nil
	}
	return &card
}

// Label resolves a label ID.
func (c *Context) Label(id string) *domain.Label {
	lbl, ok := c.report.Label(id)
	if !ok {
		return nil
	}
	return &lbl
}

// CardsWithLabel lists the cards carrying a label.
func (c *Context) CardsWithLabel(id string) []CardView {
	return c.report.CardsWithLabel(id)
}

// DataAsJSON returns the data projection as a JSON string.
func (c *Context) DataAsJSON() (string, error) {
	data, err := c.report.DataAsJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}
