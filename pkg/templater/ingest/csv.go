package ingest

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/syre-data/excel-template-runner/internal/log"
	"github.com/syre-data/excel-template-runner/pkg/templater/models"
)

// CSVParams configures ingestion from a spreadsheet (CSV) asset.
type CSVParams struct {
	// Selection identifies the data columns to copy.
	Selection models.ColumnSelection
	// HeaderAction is how to label the copied data.
	HeaderAction models.HeaderAction
	// SkipRows is the number of leading records to skip before the header.
	SkipRows int
	// Comment marks records to ignore. Zero means no comment handling.
	Comment rune
	// AssetPath is the project-relative path of the asset, used as the
	// data label under the insert and replace actions.
	AssetPath string
}

// FromCSV copies the selected columns of a CSV file into the template sheet
// at the 0-based cursor column and returns the cursor past the inserted
// columns. The first record after SkipRows is treated as the header row.
func FromCSV(tpl *excelize.File, tplSheet string, cursor int, srcPath string, p CSVParams) (int, error) {
	if p.Selection.Kind() != models.SelectByIndex {
		return cursor, ErrHeaderSelection
	}

	f, err := os.Open(srcPath)
	if err != nil {
		return cursor, &SourceError{Path: srcPath, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if p.Comment != 0 {
		r.Comment = p.Comment
	}

	records, err := r.ReadAll()
	if err != nil {
		return cursor, &SourceError{Path: srcPath, Err: err}
	}
	if p.SkipRows >= len(records) {
		return cursor, &SourceError{
			Path: srcPath,
			Err:  fmt.Errorf("skip rows %d leaves no data (%d records)", p.SkipRows, len(records)),
		}
	}
	records = records[p.SkipRows:]
	header, data := records[0], records[1:]

	logger := log.WithComponent("ingest")
	logger.Debug().Str("source", srcPath).Int("records", len(data)).Msg("ingest csv asset")

	cols := make([]column, 0, p.Selection.Len())
	for _, idx := range p.Selection.Indices {
		if idx >= len(header) {
			return cursor, &SourceError{
				Path: srcPath,
				Err:  fmt.Errorf("column index %d out of range (%d header fields)", idx, len(header)),
			}
		}
		col := column{header: []interface{}{header[idx]}}
		for _, record := range data {
			if idx < len(record) {
				col.values = append(col.values, parseValue(record[idx]))
			} else {
				col.values = append(col.values, "")
			}
		}
		cols = append(cols, col)
	}

	return writeColumns(tpl, tplSheet, cursor, cols, p.HeaderAction, p.AssetPath)
}
