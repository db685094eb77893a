package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/lexatlas/regscan/internal/model"
)

// WriteXLSX writes records to path as a single-sheet workbook with the
// standard header row.
func WriteXLSX(path string, records []model.Record) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("extractions")
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range Header {
		header.AddCell().SetString(col)
	}
	for _, rec := range records {
		row := sheet.AddRow()
		for _, val := range Row(rec) {
			row.AddCell().SetString(val)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrap(err, "export: save xlsx")
	}

	zap.L().Info("xlsx written",
		zap.String("path", path),
		zap.Int("records", len(records)))
	return nil
}
