package templater

import (
	"errors"
	"fmt"

	"github.com/syre-data/excel-template-runner/pkg/syre"
	"github.com/syre-data/excel-template-runner/pkg/templater/models"
)

// Params configures a template run.
type Params struct {
	// TemplatePath is the path to the Excel template workbook.
	TemplatePath string
	// Worksheet identifies the template worksheet receiving the data.
	Worksheet models.SheetID
	// Replace is the 0-based inclusive column range the data replaces.
	Replace models.ReplaceRange
	// Format is the kind of input data to expect.
	Format models.DataFormat
	// Selection identifies the data columns copied from each asset.
	Selection models.ColumnSelection
	// HeaderAction is how to label the copied data.
	HeaderAction models.HeaderAction
	// OutputPath is the project-relative path of the output asset file.
	OutputPath string

	// Spreadsheet holds format arguments when Format is FormatSpreadsheet.
	Spreadsheet models.SpreadsheetArgs
	// Excel holds format arguments when Format is FormatExcel.
	Excel models.ExcelArgs

	// Filter selects the input assets.
	Filter syre.Filter
	// OutputProperties are assigned to the registered output asset.
	OutputProperties syre.Properties

	// ProjectRoot overrides project discovery when non-empty.
	ProjectRoot string
}

// Validate checks the parameters without touching the filesystem.
func (p Params) Validate() error {
	if p.TemplatePath == "" {
		return errors.New("template path is required")
	}
	if p.Worksheet.IsZero() {
		return errors.New("template worksheet is required")
	}
	if p.OutputPath == "" {
		return errors.New("output path is required")
	}
	if err := p.Replace.Validate(); err != nil {
		return err
	}
	if p.Selection.Len() == 0 {
		return ErrEmptySelection
	}
	if err := p.Selection.Validate(); err != nil {
		return err
	}
	switch p.Format {
	case models.FormatSpreadsheet:
		if err := p.Spreadsheet.Validate(); err != nil {
			return err
		}
	case models.FormatExcel:
		if err := p.Excel.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid data format %q", p.Format)
	}
	return nil
}
