package capture

import "slices"

// FieldFilter reduces a raw card to the fields worth keeping. Deny removes the
// named fields, then Allow keeps only the named fields. A nil slice disables
// that half of the filter; an empty non-nil Allow keeps nothing.
type FieldFilter struct {
	Deny  []string
	Allow []string
}

// Apply returns a filtered copy of card.
func (f FieldFilter) Apply(card map[string]any) map[string]any {
	out := make(map[string]any, len(card))
	for field, value := range card {
		if f.Deny != nil && slices.Contains(f.Deny, field) {
			continue
		}
		if f.Allow != nil && !slices.Contains(f.Allow, field) {
			continue
		}
		out[field] = value
	}
	return out
}
