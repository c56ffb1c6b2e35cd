// Package formula rewrites workbook formulas after template columns are
// replaced by input data.
package formula

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/efp"
	"github.com/xuri/excelize/v2"

	"github.com/syre-data/excel-template-runner/internal/log"
	"github.com/syre-data/excel-template-runner/pkg/templater/cellref"
	"github.com/syre-data/excel-template-runner/pkg/templater/models"
)

// Context describes a completed data insertion. All columns are 0-based.
type Context struct {
	// ReplaceStart is the first column of the replaced range.
	ReplaceStart int
	// ReplaceEnd is the last column of the replaced range.
	ReplaceEnd int
	// BreakColumn is the column after the last inserted data column.
	BreakColumn int
	// HeaderAction is how data headers were inserted into the template.
	HeaderAction models.HeaderAction
}

// Shift returns the net column shift the insertion produced.
func (c Context) Shift() int {
	return cellref.ColumnShift(c.ReplaceEnd, c.BreakColumn)
}

// Translate rewrites a single formula for the insertion described by ctx.
// It returns the rewritten formula and whether anything changed.
//
// Range operands are adjusted in three ways: a range ending exactly at the
// replaced range's last column is extended by the column shift, a range
// starting after the replaced range moves by the shift, and under the
// insert header action references lying wholly inside the inserted region
// move down one row (moves off the sheet are left alone).
func Translate(formulaStr string, ctx Context) (string, bool, error) {
	shift := ctx.Shift()
	ps := efp.ExcelParser()
	// The returned slice shares the parser's backing array, so token edits
	// are visible to Render.
	items := ps.Parse(formulaStr)

	changed := false
	for i := range items {
		tok := &items[i]
		if tok.TType != efp.TokenTypeOperand || tok.TSubType != efp.TokenSubTypeRange {
			continue
		}
		colStart1, _, colEnd1, _, err := cellref.Boundaries(tok.TValue)
		if err != nil {
			// Named ranges and structured references also tokenize as
			// range operands. Leave them alone.
			continue
		}
		colStart := colStart1 - 1
		colEnd := colEnd1 - 1

		if colEnd == ctx.ReplaceEnd && shift != 0 {
			if err := extendRangeEnd(tok, shift); err != nil {
				return "", false, err
			}
			changed = true
		}

		if colStart > ctx.ReplaceEnd && shift != 0 {
			moved, err := cellref.Translate(tok.TValue, 0, shift)
			if err != nil {
				return "", false, fmt.Errorf("translate %q: %w", tok.TValue, err)
			}
			tok.TValue = moved
			changed = true
		}

		if ctx.HeaderAction == models.HeaderInsert {
			if shiftInsertedRegion(tok, colStart, colEnd, ctx) {
				changed = true
			}
		}
	}

	if !changed {
		return formulaStr, false, nil
	}
	return ps.Render(), true, nil
}

// extendRangeEnd moves only the end reference of a range operand so the
// range keeps covering the grown (or shrunk) data region.
func extendRangeEnd(tok *efp.Token, shift int) error {
	sheet, rest := cellref.SplitSheet(tok.TValue)
	parts := strings.Split(rest, ":")
	switch len(parts) {
	case 1:
		moved, err := cellref.Translate(parts[0], 0, shift)
		if err != nil {
			return fmt.Errorf("extend %q: %w", tok.TValue, err)
		}
		rest = moved
	case 2:
		moved, err := cellref.Translate(parts[1], 0, shift)
		if err != nil {
			return fmt.Errorf("extend %q: %w", tok.TValue, err)
		}
		rest = parts[0] + ":" + moved
	default:
		return fmt.Errorf("invalid range %q", tok.TValue)
	}
	tok.TValue = cellref.JoinSheet(sheet, rest)
	return nil
}

// shiftInsertedRegion moves references wholly inside the inserted data
// region down one row to make room for the inserted header row.
func shiftInsertedRegion(tok *efp.Token, colStart, colEnd int, ctx Context) bool {
	inRegion := func(col int) bool {
		return ctx.ReplaceStart <= col && col <= ctx.BreakColumn
	}
	_, rest := cellref.SplitSheet(tok.TValue)
	single := !strings.Contains(rest, ":")
	if single {
		if !inRegion(colStart) {
			return false
		}
	} else if !inRegion(colStart) || !inRegion(colEnd) {
		return false
	}

	moved, err := cellref.Translate(tok.TValue, 1, 0)
	if err != nil {
		if !errors.Is(err, cellref.ErrOutOfSheet) {
			logger := log.WithComponent("formula")
			logger.Debug().Err(err).Str("ref", tok.TValue).Msg("skip header row shift")
		}
		return false
	}
	tok.TValue = moved
	return true
}

// Snapshot holds the formulas of a workbook keyed by sheet name, recorded
// before any structural edit.
type Snapshot map[string][]CellFormula

// CellFormula is a formula at a 1-based cell position.
type CellFormula struct {
	Col     int
	Row     int
	Formula string
}

// TakeSnapshot records every formula in the workbook.
func TakeSnapshot(f *excelize.File) (Snapshot, error) {
	snap := make(Snapshot)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		var cells []CellFormula
		for rowIdx, row := range rows {
			for colIdx := range row {
				cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				if err != nil {
					return nil, err
				}
				fstr, err := f.GetCellFormula(sheet, cell)
				if err != nil || fstr == "" {
					continue
				}
				cells = append(cells, CellFormula{Col: colIdx + 1, Row: rowIdx + 1, Formula: fstr})
			}
		}
		if len(cells) > 0 {
			snap[sheet] = cells
		}
	}
	return snap, nil
}

// RestoreTranslated writes the snapshot's formulas back into the workbook
// after the structural edit, at their post-edit positions and with their
// references rewritten per ctx. Writing from the snapshot keeps this
// package the single authority over how references move; whatever
// adjustments the structural edit itself made to formulas are overwritten.
//
// targetSheet is the sheet whose columns were structurally edited; formulas
// on other sheets keep their positions. Formulas landing inside the
// inserted data region are restored verbatim.
func RestoreTranslated(f *excelize.File, snap Snapshot, targetSheet string, ctx Context) error {
	shift := ctx.Shift()
	for sheet, cells := range snap {
		for _, cf := range cells {
			col := cf.Col - 1
			row := cf.Row

			if sheet == targetSheet {
				if col >= ctx.ReplaceStart && col <= ctx.ReplaceEnd {
					// Cell was deleted with the replace range.
					continue
				}
				if col > ctx.ReplaceEnd {
					col += shift
				}
				if ctx.HeaderAction == models.HeaderInsert {
					row++
				}
			}

			out := cf.Formula
			if col < ctx.ReplaceStart || col >= ctx.BreakColumn {
				translated, changed, err := Translate(cf.Formula, ctx)
				if err != nil {
					return fmt.Errorf("sheet %q cell %s: %w", sheet, cf.Formula, err)
				}
				if changed {
					out = translated
				}
			}

			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellFormula(sheet, cell, out); err != nil {
				return fmt.Errorf("set formula on %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
