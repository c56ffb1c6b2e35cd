// Package main provides the CLI entry point for the Excel template runner.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syre-data/excel-template-runner/internal/log"
	"github.com/syre-data/excel-template-runner/pkg/syre"
	"github.com/syre-data/excel-template-runner/pkg/templater"
	"github.com/syre-data/excel-template-runner/pkg/templater/models"
)

var (
	replaceStart   int
	replaceEnd     int
	dataFormatType string
	dataColumns    []string
	headerAction   string
	outputPath     string
	skipRows       int
	commentChar    string
	excelSheet     string

	filterName     string
	filterType     string
	filterTags     []string
	filterMetadata []string

	outputName     string
	outputType     string
	outputTags     []string
	outputMetadata []string

	projectRoot string
	logLevel    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "templaterunner [template.xlsx] [worksheet]",
		Short: "Run Excel templates for a Syre project",
		Long: `templaterunner executes an Excel workbook as an analysis template:
input data assets are located through the project database, inserted into a
column range of the template, and the populated workbook is saved back into
the project as a new asset.`,
		Args: cobra.ExactArgs(2),
		RunE: run,
	}

	flags := rootCmd.Flags()
	flags.IntVar(&replaceStart, "replace-start", 0, "Start of the column range (0-based) input data replaces")
	flags.IntVar(&replaceEnd, "replace-end", 0, "End of the column range (0-based) input data replaces")
	flags.StringVar(&dataFormatType, "data-format-type", "", "Input data format: spreadsheet (e.g. CSV) or excel")
	flags.StringArrayVar(&dataColumns, "data-columns", nil, "Column of each input asset to copy, repeatable: a 0-based index (0), a column label (A), or a header path (h1l1,h1l2)")
	flags.StringVar(&headerAction, "header-action", "none", "How to label inserted data: none, insert, or replace")
	flags.StringVarP(&outputPath, "output", "o", "", "Project-relative path for the output asset file")
	flags.IntVar(&skipRows, "skip-rows", 0, "Rows to skip when reading input data")
	flags.StringVar(&commentChar, "comment-character", "", "Comment character skipping lines; spreadsheet format only")
	flags.StringVar(&excelSheet, "excel-sheet", "", "Data worksheet id (0-based index or title); required for excel format")

	flags.StringVar(&filterName, "filter-name", "", "Asset name filter for input data")
	flags.StringVar(&filterType, "filter-type", "", "Asset type filter for input data")
	flags.StringSliceVar(&filterTags, "filter-tags", nil, "Asset tags filter for input data")
	flags.StringArrayVar(&filterMetadata, "filter-metadata", nil, "Asset metadata filter (key=value, nested keys with dots)")

	flags.StringVar(&outputName, "output-name", "", "Asset name for the output data")
	flags.StringVar(&outputType, "output-type", "", "Asset type for the output data")
	flags.StringSliceVar(&outputTags, "output-tags", nil, "Asset tags for the output data")
	flags.StringArrayVar(&outputMetadata, "output-metadata", nil, "Asset metadata for the output data (key=value)")

	flags.StringVar(&projectRoot, "project-root", "", "Project root directory (default: $SYRE_PROJECT_ROOT or nearest .syre ancestor)")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	for _, name := range []string{"data-format-type", "data-columns", "output"} {
		if err := rootCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log.Configure(log.Config{Level: logLevel})

	if replaceStart < 0 || replaceEnd < 0 {
		return fmt.Errorf("--replace-start and --replace-end must be non-negative")
	}

	format, err := models.ParseDataFormat(dataFormatType)
	if err != nil {
		return err
	}
	action, err := models.ParseHeaderAction(headerAction)
	if err != nil {
		return err
	}
	selection, err := templater.ParseColumnSelectionArgs(dataColumns)
	if err != nil {
		return err
	}

	params := templater.Params{
		TemplatePath: args[0],
		Worksheet:    models.ParseSheetID(args[1]),
		Replace:      models.ReplaceRange{Start: replaceStart, End: replaceEnd},
		Format:       format,
		Selection:    selection,
		HeaderAction: action,
		OutputPath:   outputPath,
		ProjectRoot:  projectRoot,
	}

	switch format {
	case models.FormatSpreadsheet:
		comment, err := parseCommentChar(commentChar)
		if err != nil {
			return err
		}
		params.Spreadsheet = models.SpreadsheetArgs{SkipRows: skipRows, Comment: comment}
	case models.FormatExcel:
		if excelSheet == "" {
			return fmt.Errorf("--excel-sheet is required if --data-format-type=excel")
		}
		if commentChar != "" {
			return fmt.Errorf("--comment-character is only valid for --data-format-type=spreadsheet")
		}
		params.Excel = models.ExcelArgs{Sheet: models.ParseSheetID(excelSheet), SkipRows: skipRows}
	}

	params.Filter, err = buildFilter(cmd)
	if err != nil {
		return err
	}
	params.OutputProperties, err = buildOutputProperties()
	if err != nil {
		return err
	}

	outPath, err := templater.Run(params)
	if err != nil {
		return err
	}
	fmt.Println(outPath)
	return nil
}

func parseCommentChar(s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("--comment-character must be a single character")
	}
	return runes[0], nil
}

func buildFilter(cmd *cobra.Command) (syre.Filter, error) {
	filter := syre.Filter{Tags: filterTags}
	if cmd.Flags().Changed("filter-name") {
		filter.Name = &filterName
	}
	if cmd.Flags().Changed("filter-type") {
		filter.Kind = &filterType
	}
	metadata, err := templater.ParseMetadataArgs(filterMetadata)
	if err != nil {
		return syre.Filter{}, err
	}
	filter.Metadata = metadata
	return filter, nil
}

func buildOutputProperties() (syre.Properties, error) {
	props := syre.Properties{
		Name: outputName,
		Kind: outputType,
		Tags: outputTags,
	}
	metadata, err := templater.ParseMetadataArgs(outputMetadata)
	if err != nil {
		return syre.Properties{}, err
	}
	props.Metadata = metadata
	return props, nil
}
