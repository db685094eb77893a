package extract

import (
	"strings"

	"github.com/lexatlas/regscan/internal/model"
)

// MergeState folds a per-chunk field update into state. Each of the six
// categorical fields becomes the union of its existing values and the
// update's trimmed, non-empty values, sorted case-insensitively. The
// merge is idempotent and order-independent, so concurrent chunk
// completion order never affects the final state. The date field is
// never touched here; it is owned by the date resolver.
func MergeState(state model.DocumentState, update model.FieldUpdate) model.DocumentState {
	for _, key := range model.FieldKeys {
		field := state.Field(key)
		seen := make(map[string]struct{}, len(*field))
		merged := make([]string, 0, len(*field))
		for _, v := range *field {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				merged = append(merged, v)
			}
		}
		for _, v := range update[key] {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				merged = append(merged, v)
			}
		}
		model.SortCaseInsensitive(merged)
		*field = merged
	}
	return state
}
