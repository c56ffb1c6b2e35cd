// Package ingest copies input asset data into a template worksheet.
package ingest

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/syre-data/excel-template-runner/pkg/templater/models"
)

// ErrHeaderSelection indicates a header-based column selection, which is
// not supported for data ingestion yet.
var ErrHeaderSelection = errors.New("header-based column selection is not supported")

// SourceError wraps an error reading or interpreting an input asset file.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("read input %q: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// column is one selected input column ready to be written into the template.
type column struct {
	// header is the column's own label row values, outermost first.
	// Empty under the replace header action.
	header []interface{}
	// values are the data cells, top to bottom.
	values []interface{}
}

// writeColumns inserts the selected columns into the template sheet at the
// 0-based cursor column and returns the cursor past the written columns.
//
// Under the insert and replace header actions the asset path is written in
// the first row above each column.
func writeColumns(tpl *excelize.File, sheet string, cursor int, cols []column, action models.HeaderAction, assetPath string) (int, error) {
	if len(cols) == 0 {
		return cursor, nil
	}
	startName, err := excelize.ColumnNumberToName(cursor + 1)
	if err != nil {
		return cursor, err
	}
	if err := tpl.InsertCols(sheet, startName, len(cols)); err != nil {
		return cursor, fmt.Errorf("insert columns at %s: %w", startName, err)
	}

	for k, col := range cols {
		target := cursor + k + 1 // 1-based
		row := 1
		if action == models.HeaderInsert || action == models.HeaderReplace {
			if err := setCell(tpl, sheet, target, row, assetPath); err != nil {
				return cursor, err
			}
			row++
		}
		if action != models.HeaderReplace {
			for _, label := range col.header {
				if err := setCell(tpl, sheet, target, row, label); err != nil {
					return cursor, err
				}
				row++
			}
		}
		for _, v := range col.values {
			if err := setCell(tpl, sheet, target, row, v); err != nil {
				return cursor, err
			}
			row++
		}
	}
	return cursor + len(cols), nil
}

func setCell(f *excelize.File, sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
	}
	return nil
}
