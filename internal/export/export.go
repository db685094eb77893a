// Package export writes extraction results to CSV or XLSX files, one
// row per document.
package export

import (
	"strings"

	"github.com/lexatlas/regscan/internal/model"
)

// Header is the column layout shared by all export formats: the
// document id, the resolved date, then the six aggregated fields.
var Header = append([]string{"law_id", "date"}, model.FieldKeys...)

// Row flattens one record into export columns. List fields are joined
// with ";" since they are already deduplicated and sorted.
func Row(rec model.Record) []string {
	row := make([]string, 0, len(Header))
	row = append(row, rec.DocumentID, rec.State.Date)
	for _, key := range model.FieldKeys {
		field := rec.State.Field(key)
		if field == nil {
			row = append(row, "")
			continue
		}
		row = append(row, strings.Join(*field, ";"))
	}
	return row
}
