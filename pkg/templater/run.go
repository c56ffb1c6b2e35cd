// Package templater executes Excel workbooks as analysis templates over a
// Syre project's data assets.
package templater

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/xuri/excelize/v2"

	"github.com/syre-data/excel-template-runner/internal/log"
	"github.com/syre-data/excel-template-runner/pkg/syre"
	"github.com/syre-data/excel-template-runner/pkg/templater/formula"
	"github.com/syre-data/excel-template-runner/pkg/templater/ingest"
	"github.com/syre-data/excel-template-runner/pkg/templater/models"
)

// Run executes the template described by params and returns the absolute
// path of the saved output asset file.
//
// The replace-range columns of the template worksheet are deleted, every
// asset matching the filter is ingested at the moving insertion cursor,
// formulas referencing the replaced region are rewritten for the resulting
// column shift, and the populated workbook is registered and saved as a new
// project asset.
func Run(params Params) (string, error) {
	if err := params.Validate(); err != nil {
		return "", err
	}
	logger := log.WithComponent("templater")

	db, err := syre.Open(params.ProjectRoot)
	if err != nil {
		return "", runError("load", "", err)
	}

	tpl, err := excelize.OpenFile(params.TemplatePath)
	if err != nil {
		return "", runError("load", "", fmt.Errorf("open template: %w", err))
	}
	defer tpl.Close()

	sheet, err := ingest.ResolveSheet(tpl, params.Worksheet)
	if err != nil {
		return "", runError("load", "", fmt.Errorf("%w: %v", ErrWorksheetNotFound, err))
	}

	assets, err := db.FindAssets(params.Filter)
	if err != nil {
		return "", runError("load", "", err)
	}
	if len(assets) == 0 {
		return "", ErrNoAssets
	}
	logger.Info().
		Int("assets", len(assets)).
		Str("sheet", sheet).
		Msg("executing template")

	// Formula positions and text are restored from this snapshot after the
	// structural edits, so reference maintenance stays in one place.
	snapshot, err := formula.TakeSnapshot(tpl)
	if err != nil {
		return "", runError("load", "", err)
	}

	if err := deleteReplaceRange(tpl, sheet, params.Replace); err != nil {
		return "", runError("load", "", err)
	}

	if params.HeaderAction == models.HeaderInsert {
		if err := tpl.InsertRows(sheet, 1, 1); err != nil {
			return "", runError("load", "", fmt.Errorf("insert header row: %w", err))
		}
	}

	rootPath, err := db.CanonicalRoot()
	if err != nil {
		return "", runError("load", "", err)
	}

	cursor := params.Replace.Start
	for _, asset := range assets {
		assetPath := relativeAssetPath(rootPath, asset.File())
		switch params.Format {
		case models.FormatExcel:
			cursor, err = ingest.FromExcel(tpl, sheet, cursor, asset.File(), ingest.ExcelParams{
				Sheet:        params.Excel.Sheet,
				Selection:    params.Selection,
				HeaderAction: params.HeaderAction,
				SkipRows:     params.Excel.SkipRows,
				AssetPath:    assetPath,
			})
		case models.FormatSpreadsheet:
			cursor, err = ingest.FromCSV(tpl, sheet, cursor, asset.File(), ingest.CSVParams{
				Selection:    params.Selection,
				HeaderAction: params.HeaderAction,
				SkipRows:     params.Spreadsheet.SkipRows,
				Comment:      params.Spreadsheet.Comment,
				AssetPath:    assetPath,
			})
		default:
			return "", runError("ingest", assetPath, fmt.Errorf("invalid data format %q", params.Format))
		}
		if err != nil {
			return "", runError("ingest", assetPath, err)
		}
	}

	ctx := formula.Context{
		ReplaceStart: params.Replace.Start,
		ReplaceEnd:   params.Replace.End,
		BreakColumn:  cursor,
		HeaderAction: params.HeaderAction,
	}
	if err := formula.RestoreTranslated(tpl, snapshot, sheet, ctx); err != nil {
		return "", runError("translate", "", err)
	}

	outPath, err := db.AddAsset(params.OutputPath, params.OutputProperties)
	if err != nil {
		return "", runError("save", "", err)
	}
	if err := saveWorkbook(tpl, outPath); err != nil {
		return "", runError("save", "", err)
	}
	logger.Info().Str("output", outPath).Int("shift", ctx.Shift()).Msg("template saved")
	return outPath, nil
}

// deleteReplaceRange removes the replace-range columns from the sheet.
func deleteReplaceRange(f *excelize.File, sheet string, r models.ReplaceRange) error {
	colName, err := excelize.ColumnNumberToName(r.Start + 1)
	if err != nil {
		return err
	}
	for i := 0; i < r.Width(); i++ {
		if err := f.RemoveCol(sheet, colName); err != nil {
			return fmt.Errorf("remove column %s: %w", colName, err)
		}
	}
	return nil
}

// relativeAssetPath returns the asset path relative to the project root,
// falling back to the file name when the paths do not share a base.
func relativeAssetPath(root, file string) string {
	if rel, err := filepath.Rel(root, file); err == nil && !filepath.IsAbs(rel) {
		return filepath.ToSlash(rel)
	}
	return filepath.Base(file)
}

// saveWorkbook writes the workbook atomically and marks it for a full
// recalculation on open so stale cached formula values are not shown.
func saveWorkbook(f *excelize.File, path string) error {
	fullCalc := true
	if err := f.SetCalcProps(&excelize.CalcPropsOptions{FullCalcOnLoad: &fullCalc}); err != nil {
		return fmt.Errorf("set calc properties: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("serialize workbook: %w", err)
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
