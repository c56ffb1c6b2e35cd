// Package cellref provides arithmetic on A1-style cell and range references.
package cellref

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrOutOfSheet indicates a translated reference would leave the sheet.
var ErrOutOfSheet = errors.New("reference out of sheet bounds")

var refPattern = regexp.MustCompile(`^(\$?)([A-Za-z]{1,3})(\$?)([0-9]*)$`)

// ToExcel converts a 0-based index to a 1-based Excel index.
func ToExcel(idx int) int { return idx + 1 }

// FromExcel converts a 1-based Excel index to a 0-based index.
func FromExcel(idx int) (int, error) {
	if idx < 1 {
		return 0, fmt.Errorf("excel index %d must be greater than 0", idx)
	}
	return idx - 1, nil
}

// ColumnShift returns the net column shift produced by a data insertion.
//
// If the replace range ended at column C (0-based 2) and the inserted data
// broke at column F (0-based 5), the data grew the region by 2 columns.
func ColumnShift(replaceEnd, breakColumn int) int {
	return breakColumn - replaceEnd - 1
}

// SplitSheet splits an optional sheet-name prefix off a reference.
// The returned prefix excludes the separating "!" and is empty when the
// reference carries no sheet name.
func SplitSheet(ref string) (sheet, rest string) {
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return "", ref
}

// JoinSheet re-attaches a sheet-name prefix produced by SplitSheet.
func JoinSheet(sheet, rest string) string {
	if sheet == "" {
		return rest
	}
	return sheet + "!" + rest
}

// Boundaries returns the 1-based column and row bounds of a cell or range
// reference. Rows are 0 for column-only references. A sheet-name prefix is
// ignored.
func Boundaries(ref string) (colStart, rowStart, colEnd, rowEnd int, err error) {
	_, rest := SplitSheet(ref)
	parts := strings.Split(rest, ":")
	if len(parts) > 2 {
		return 0, 0, 0, 0, fmt.Errorf("invalid range %q", ref)
	}
	colStart, rowStart, err = parseRef(parts[0])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	colEnd, rowEnd = colStart, rowStart
	if len(parts) == 2 {
		colEnd, rowEnd, err = parseRef(parts[1])
		if err != nil {
			return 0, 0, 0, 0, err
		}
	}
	return colStart, rowStart, colEnd, rowEnd, nil
}

// Translate shifts a cell or range reference by the given deltas. Anchored
// axes ($) do not move, and a sheet-name prefix is preserved. It returns
// ErrOutOfSheet when the shifted reference would fall before column A or
// row 1.
func Translate(ref string, rowDelta, colDelta int) (string, error) {
	sheet, rest := SplitSheet(ref)
	parts := strings.Split(rest, ":")
	if len(parts) > 2 {
		return "", fmt.Errorf("invalid range %q", ref)
	}
	for i, part := range parts {
		moved, err := translateRef(part, rowDelta, colDelta)
		if err != nil {
			return "", err
		}
		parts[i] = moved
	}
	return JoinSheet(sheet, strings.Join(parts, ":")), nil
}

// parseRef parses a single reference into 1-based column and row.
// Row is 0 for column-only references.
func parseRef(ref string) (col, row int, err error) {
	m := refPattern.FindStringSubmatch(ref)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid reference %q", ref)
	}
	col, err = excelize.ColumnNameToNumber(m[2])
	if err != nil {
		return 0, 0, err
	}
	if m[4] != "" {
		row, err = strconv.Atoi(m[4])
		if err != nil || row < 1 {
			return 0, 0, fmt.Errorf("invalid reference %q", ref)
		}
	}
	return col, row, nil
}

func translateRef(ref string, rowDelta, colDelta int) (string, error) {
	m := refPattern.FindStringSubmatch(ref)
	if m == nil {
		return "", fmt.Errorf("invalid reference %q", ref)
	}
	colAbs, colName, rowAbs, rowStr := m[1], m[2], m[3], m[4]

	col, err := excelize.ColumnNameToNumber(colName)
	if err != nil {
		return "", err
	}
	if colAbs == "" {
		col += colDelta
		if col < 1 {
			return "", ErrOutOfSheet
		}
		colName, err = excelize.ColumnNumberToName(col)
		if err != nil {
			return "", err
		}
	}

	if rowStr != "" && rowAbs == "" {
		row, err := strconv.Atoi(rowStr)
		if err != nil {
			return "", fmt.Errorf("invalid reference %q", ref)
		}
		row += rowDelta
		if row < 1 {
			return "", ErrOutOfSheet
		}
		rowStr = strconv.Itoa(row)
	}

	return colAbs + colName + rowAbs + rowStr, nil
}
