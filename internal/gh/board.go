package gh

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultGroupField is the field used to group items when none is configured.
const DefaultGroupField = "Status"

const itemsPageSize = 50

// Board presents one project as a snapshot source. The options of the
// grouping field are the lists, in project order; items are loaded once.
type Board struct {
	client     *Client
	projectID  string
	fieldName  string
	groupField *FieldDef
	items      []Item
	loaded     bool
}

// NewBoard creates a board over a project, grouped by fieldName.
func NewBoard(client *Client, projectID, fieldName string) *Board {
	if fieldName == "" {
		fieldName = DefaultGroupField
	}
	return &Board{client: client, projectID: projectID, fieldName: fieldName}
}

// ListIDs returns the option IDs of the grouping field, in project order.
func (b *Board) ListIDs(ctx context.Context) ([]string, error) {
	if err := b.load(ctx); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(b.groupField.Options))
	for _, opt := range b.groupField.Options {
		ids = append(ids, opt.ID)
	}
	return ids, nil
}

// ListName returns the name of a grouping option.
func (b *Board) ListName(ctx context.Context, listID string) (string, error) {
	if err := b.load(ctx); err != nil {
		return "", err
	}
	for _, opt := range b.groupField.Options {
		if opt.ID == listID {
			return opt.Name, nil
		}
	}
	return "", fmt.Errorf("option %s not found in field %s", listID, b.fieldName)
}

// ListCards returns the items grouped under an option, as raw card objects.
func (b *Board) ListCards(ctx context.Context, listID string) ([]map[string]any, error) {
	if err := b.load(ctx); err != nil {
		return nil, err
	}
	cards := []map[string]any{}
	for _, item := range b.items {
		if item.GroupOptionID == listID {
			cards = append(cards, item.cardFields())
		}
	}
	return cards, nil
}

func (b *Board) load(ctx context.Context) error {
	if b.loaded {
		return nil
	}

	fields, err := b.client.GetProjectFields(ctx, b.projectID)
	if err != nil {
		return err
	}
	for i := range fields {
		if fields[i].Type == FieldTypeSingleSelect && strings.EqualFold(fields[i].Name, b.fieldName) {
			b.groupField = &fields[i]
			break
		}
	}
	if b.groupField == nil {
		return fmt.Errorf("no single select field named %q in project", b.fieldName)
	}

	var items []Item
	cursor := ""
	for {
		page, next, hasMore, err := b.client.GetItems(ctx, b.projectID, b.groupField.Name, cursor, itemsPageSize)
		if err != nil {
			return err
		}
		items = append(items, page...)
		slog.Debug("GitHub items page", "project", b.projectID, "itemsSoFar", len(items))
		if !hasMore || next == "" {
			break
		}
		cursor = next
	}

	b.items = items
	b.loaded = true
	return nil
}

// cardFields converts an item into the raw card shape snapshots store.
func (i Item) cardFields() map[string]any {
	labels := make([]any, 0, len(i.Labels))
	for _, l := range i.Labels {
		labels = append(labels, map[string]any{"id": l.ID, "name": l.Name, "color": l.Color})
	}
	assignees := make([]any, 0, len(i.Assignees))
	for _, a := range i.Assignees {
		assignees = append(assignees, a)
	}

	fields := map[string]any{
		"id":          i.ID,
		"name":        i.Title,
		"desc":        i.Body,
		"contentType": i.ContentType,
		"labels":      labels,
		"assignees":   assignees,
	}
	optional := map[string]string{
		"url":        i.URL,
		"repo":       i.Repo,
		"issueState": i.State,
		"author":     i.Author,
		"createdAt":  i.CreatedAt,
	}
	for k, v := range optional {
		if v != "" {
			fields[k] = v
		}
	}
	if i.Number > 0 {
		fields["number"] = i.Number
	}
	return fields
}
