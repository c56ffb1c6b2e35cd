package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/syre-data/excel-template-runner/internal/log"
	"github.com/syre-data/excel-template-runner/pkg/templater/models"
)

// ExcelParams configures ingestion from an Excel workbook asset.
type ExcelParams struct {
	// Sheet identifies the worksheet holding the data.
	Sheet models.SheetID
	// Selection identifies the data columns to copy.
	Selection models.ColumnSelection
	// HeaderAction is how to label the copied data.
	HeaderAction models.HeaderAction
	// SkipRows is the number of input rows dropped under the replace action.
	SkipRows int
	// AssetPath is the project-relative path of the asset, used as the
	// data label under the insert and replace actions.
	AssetPath string
}

// FromExcel copies the selected columns of an Excel workbook into the
// template sheet at the 0-based cursor column and returns the cursor past
// the inserted columns.
//
// Cells holding formulas contribute their calculated value; literal cells
// their raw value.
func FromExcel(tpl *excelize.File, tplSheet string, cursor int, srcPath string, p ExcelParams) (int, error) {
	if p.Selection.Kind() != models.SelectByIndex {
		return cursor, ErrHeaderSelection
	}

	src, err := excelize.OpenFile(srcPath)
	if err != nil {
		return cursor, &SourceError{Path: srcPath, Err: err}
	}
	defer src.Close()

	dataSheet, err := ResolveSheet(src, p.Sheet)
	if err != nil {
		return cursor, &SourceError{Path: srcPath, Err: err}
	}

	srcCols, err := src.GetCols(dataSheet)
	if err != nil {
		return cursor, &SourceError{Path: srcPath, Err: err}
	}

	logger := log.WithComponent("ingest")
	logger.Debug().Str("source", srcPath).Str("sheet", dataSheet).Msg("ingest excel asset")

	cols := make([]column, 0, p.Selection.Len())
	for _, idx := range p.Selection.Indices {
		if idx >= len(srcCols) {
			return cursor, &SourceError{
				Path: srcPath,
				Err:  fmt.Errorf("column index %d out of range (sheet %q has %d columns)", idx, dataSheet, len(srcCols)),
			}
		}

		values := make([]interface{}, 0, len(srcCols[idx]))
		for rowIdx := range srcCols[idx] {
			v, err := readCell(src, dataSheet, idx+1, rowIdx+1)
			if err != nil {
				return cursor, &SourceError{Path: srcPath, Err: err}
			}
			values = append(values, v)
		}
		if p.HeaderAction == models.HeaderReplace {
			skip := p.SkipRows
			if skip > len(values) {
				skip = len(values)
			}
			values = values[skip:]
		}
		cols = append(cols, column{values: values})
	}

	return writeColumns(tpl, tplSheet, cursor, cols, p.HeaderAction, p.AssetPath)
}

// readCell reads one input cell, evaluating formula cells.
func readCell(src *excelize.File, sheet string, col, row int) (interface{}, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return nil, err
	}
	formulaStr, err := src.GetCellFormula(sheet, cell)
	if err == nil && formulaStr != "" {
		calc, err := src.CalcCellValue(sheet, cell)
		if err == nil {
			return parseValue(calc), nil
		}
		// Fall back to the cached value when the calc engine cannot
		// evaluate the formula.
		cached, err := src.GetCellValue(sheet, cell)
		if err != nil {
			return nil, err
		}
		return parseValue(cached), nil
	}
	raw, err := src.GetCellValue(sheet, cell)
	if err != nil {
		return nil, err
	}
	return parseValue(raw), nil
}

// ResolveSheet resolves a SheetID against a workbook.
func ResolveSheet(f *excelize.File, id models.SheetID) (string, error) {
	if id.IsIndex() {
		sheets := f.GetSheetList()
		if id.Index() < 0 || id.Index() >= len(sheets) {
			return "", fmt.Errorf("worksheet index %d out of range (workbook has %d sheets)", id.Index(), len(sheets))
		}
		return sheets[id.Index()], nil
	}
	if idx, err := f.GetSheetIndex(id.Title()); err != nil || idx < 0 {
		return "", fmt.Errorf("worksheet %q not found", id.Title())
	}
	return id.Title(), nil
}
