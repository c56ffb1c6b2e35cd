// Package models defines the domain types for template execution.
package models

import (
	"errors"
	"fmt"
	"strconv"
)

// DataFormat identifies the kind of input data an asset holds.
type DataFormat string

const (
	// FormatSpreadsheet is a plain delimiter-separated spreadsheet (e.g. CSV).
	FormatSpreadsheet DataFormat = "spreadsheet"
	// FormatExcel is an Excel workbook.
	FormatExcel DataFormat = "excel"
)

// ParseDataFormat parses a CLI string into a DataFormat.
func ParseDataFormat(s string) (DataFormat, error) {
	switch s {
	case "spreadsheet":
		return FormatSpreadsheet, nil
	case "excel":
		return FormatExcel, nil
	}
	return "", fmt.Errorf("invalid data format type %q (must be spreadsheet or excel)", s)
}

// HeaderAction controls how data headers are manipulated on insertion.
type HeaderAction string

const (
	// HeaderNone copies input data as-is.
	HeaderNone HeaderAction = "none"
	// HeaderInsert adds the asset path as an extra header row above all others.
	HeaderInsert HeaderAction = "insert"
	// HeaderReplace replaces the input headers with the asset path.
	HeaderReplace HeaderAction = "replace"
)

// ParseHeaderAction parses a CLI string into a HeaderAction.
func ParseHeaderAction(s string) (HeaderAction, error) {
	switch s {
	case "none":
		return HeaderNone, nil
	case "insert":
		return HeaderInsert, nil
	case "replace":
		return HeaderReplace, nil
	}
	return "", fmt.Errorf("invalid header action %q (must be none, insert, or replace)", s)
}

// SheetID identifies a worksheet by 0-based index or by title.
type SheetID struct {
	index   int
	title   string
	byIndex bool
}

// SheetByIndex returns a SheetID selecting the worksheet at the given
// 0-based index.
func SheetByIndex(i int) SheetID {
	return SheetID{index: i, byIndex: true}
}

// SheetByTitle returns a SheetID selecting the worksheet with the given title.
func SheetByTitle(t string) SheetID {
	return SheetID{title: t}
}

// ParseSheetID parses a CLI string into a SheetID. Numeric strings select
// by index, anything else by title.
func ParseSheetID(s string) SheetID {
	if i, err := strconv.Atoi(s); err == nil {
		return SheetByIndex(i)
	}
	return SheetByTitle(s)
}

// IsIndex reports whether the id selects by index.
func (id SheetID) IsIndex() bool { return id.byIndex }

// Index returns the 0-based worksheet index. Only meaningful when IsIndex.
func (id SheetID) Index() int { return id.index }

// Title returns the worksheet title. Only meaningful when !IsIndex.
func (id SheetID) Title() string { return id.title }

func (id SheetID) String() string {
	if id.byIndex {
		return strconv.Itoa(id.index)
	}
	return id.title
}

// IsZero reports whether the id was never set.
func (id SheetID) IsZero() bool { return !id.byIndex && id.title == "" }

// SelectionKind is the identifier kind of a column selection.
type SelectionKind int

const (
	// SelectByIndex selects columns by 0-based index.
	SelectByIndex SelectionKind = iota
	// SelectByHeader selects columns by header label path.
	SelectByHeader
)

// ColumnSelection identifies the data columns to copy into the template.
// Exactly one of Indices or Headers is populated.
type ColumnSelection struct {
	// Indices holds 0-based column indices.
	Indices []int
	// Headers holds header label paths, outermost label first.
	Headers [][]string
}

// Kind returns the identifier kind of the selection.
func (s ColumnSelection) Kind() SelectionKind {
	if len(s.Headers) > 0 {
		return SelectByHeader
	}
	return SelectByIndex
}

// Len returns the number of selected columns.
func (s ColumnSelection) Len() int {
	if len(s.Headers) > 0 {
		return len(s.Headers)
	}
	return len(s.Indices)
}

// Validate checks that the selection is non-empty and well formed.
func (s ColumnSelection) Validate() error {
	if len(s.Indices) == 0 && len(s.Headers) == 0 {
		return errors.New("empty column selection")
	}
	if len(s.Indices) > 0 && len(s.Headers) > 0 {
		return errors.New("column selection mixes indices and headers")
	}
	for _, idx := range s.Indices {
		if idx < 0 {
			return fmt.Errorf("negative column index %d", idx)
		}
	}
	for _, path := range s.Headers {
		if len(path) == 0 {
			return errors.New("empty header path in column selection")
		}
	}
	return nil
}

// ReplaceRange is the inclusive 0-based column range of the template that
// input data replaces.
type ReplaceRange struct {
	Start int
	End   int
}

// Validate checks the range bounds.
func (r ReplaceRange) Validate() error {
	if r.Start < 0 || r.End < 0 {
		return errors.New("replace range bounds must be non-negative")
	}
	if r.End < r.Start {
		return fmt.Errorf("replace range end %d before start %d", r.End, r.Start)
	}
	return nil
}

// Width returns the number of columns the range covers.
func (r ReplaceRange) Width() int { return r.End - r.Start + 1 }

// SpreadsheetArgs holds input arguments for spreadsheet format data.
type SpreadsheetArgs struct {
	// SkipRows is the number of leading rows to skip before the header or data.
	SkipRows int
	// Comment marks lines to ignore. Zero means no comment handling.
	Comment rune
}

// Validate checks the argument values.
func (a SpreadsheetArgs) Validate() error {
	if a.SkipRows < 0 {
		return errors.New("skip rows must be non-negative")
	}
	return nil
}

// ExcelArgs holds input arguments for Excel workbook format data.
type ExcelArgs struct {
	// Sheet identifies the worksheet holding the data.
	Sheet SheetID
	// SkipRows is the number of leading rows to skip before the header or data.
	SkipRows int
}

// Validate checks the argument values.
func (a ExcelArgs) Validate() error {
	if a.Sheet.IsZero() {
		return errors.New("data worksheet is required for excel format")
	}
	if a.SkipRows < 0 {
		return errors.New("skip rows must be non-negative")
	}
	return nil
}
