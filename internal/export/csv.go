package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/lexatlas/regscan/internal/model"
)

// WriteCSV writes records to path as CSV with the standard header.
func WriteCSV(path string, records []model.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("export: create csv %s", path))
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, rec := range records {
		if err := w.Write(Row(rec)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}

	zap.L().Info("csv written",
		zap.String("path", path),
		zap.Int("records", len(records)))
	return nil
}
