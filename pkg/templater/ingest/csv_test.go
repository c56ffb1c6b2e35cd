package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/syre-data/excel-template-runner/pkg/templater/models"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func cellValue(t *testing.T, f *excelize.File, cell string) string {
	t.Helper()
	v, err := f.GetCellValue("Sheet1", cell)
	require.NoError(t, err)
	return v
}

func TestFromCSVHeaderNone(t *testing.T) {
	src := writeCSV(t, "name,x,y\nfirst,1,2\nsecond,3,4.5\n")
	tpl := excelize.NewFile()
	defer tpl.Close()
	require.NoError(t, tpl.SetCellValue("Sheet1", "A1", "id"))
	require.NoError(t, tpl.SetCellValue("Sheet1", "B1", "old"))

	cursor, err := FromCSV(tpl, "Sheet1", 1, src, CSVParams{
		Selection:    models.ColumnSelection{Indices: []int{1, 2}},
		HeaderAction: models.HeaderNone,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, cursor)

	assert.Equal(t, "x", cellValue(t, tpl, "B1"))
	assert.Equal(t, "1", cellValue(t, tpl, "B2"))
	assert.Equal(t, "3", cellValue(t, tpl, "B3"))
	assert.Equal(t, "y", cellValue(t, tpl, "C1"))
	assert.Equal(t, "2", cellValue(t, tpl, "C2"))
	assert.Equal(t, "4.5", cellValue(t, tpl, "C3"))
	// Existing template columns shifted right.
	assert.Equal(t, "id", cellValue(t, tpl, "A1"))
	assert.Equal(t, "old", cellValue(t, tpl, "D1"))
}

func TestFromCSVHeaderInsert(t *testing.T) {
	src := writeCSV(t, "x,y\n1,2\n")
	tpl := excelize.NewFile()
	defer tpl.Close()

	cursor, err := FromCSV(tpl, "Sheet1", 0, src, CSVParams{
		Selection:    models.ColumnSelection{Indices: []int{0}},
		HeaderAction: models.HeaderInsert,
		AssetPath:    "data/run.csv",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, cursor)

	assert.Equal(t, "data/run.csv", cellValue(t, tpl, "A1"))
	assert.Equal(t, "x", cellValue(t, tpl, "A2"))
	assert.Equal(t, "1", cellValue(t, tpl, "A3"))
}

func TestFromCSVHeaderReplace(t *testing.T) {
	src := writeCSV(t, "x,y\n1,2\n3,4\n")
	tpl := excelize.NewFile()
	defer tpl.Close()

	_, err := FromCSV(tpl, "Sheet1", 0, src, CSVParams{
		Selection:    models.ColumnSelection{Indices: []int{1}},
		HeaderAction: models.HeaderReplace,
		AssetPath:    "data/run.csv",
	})
	require.NoError(t, err)

	assert.Equal(t, "data/run.csv", cellValue(t, tpl, "A1"))
	assert.Equal(t, "2", cellValue(t, tpl, "A2"))
	assert.Equal(t, "4", cellValue(t, tpl, "A3"))
}

func TestFromCSVSkipRowsAndComments(t *testing.T) {
	src := writeCSV(t, "garbage line,,\n# a comment,,\nx,y\n1,2\n")
	tpl := excelize.NewFile()
	defer tpl.Close()

	_, err := FromCSV(tpl, "Sheet1", 0, src, CSVParams{
		Selection:    models.ColumnSelection{Indices: []int{0}},
		HeaderAction: models.HeaderNone,
		SkipRows:     1,
		Comment:      '#',
	})
	require.NoError(t, err)

	assert.Equal(t, "x", cellValue(t, tpl, "A1"))
	assert.Equal(t, "1", cellValue(t, tpl, "A2"))
}

func TestFromCSVRaggedRecords(t *testing.T) {
	src := writeCSV(t, "x,y\n1\n3,4\n")
	tpl := excelize.NewFile()
	defer tpl.Close()

	_, err := FromCSV(tpl, "Sheet1", 0, src, CSVParams{
		Selection:    models.ColumnSelection{Indices: []int{1}},
		HeaderAction: models.HeaderNone,
	})
	require.NoError(t, err)

	assert.Equal(t, "y", cellValue(t, tpl, "A1"))
	assert.Equal(t, "", cellValue(t, tpl, "A2"))
	assert.Equal(t, "4", cellValue(t, tpl, "A3"))
}

func TestFromCSVPreservesLeadingWhitespace(t *testing.T) {
	src := writeCSV(t, "x,y\n a,2\n")
	tpl := excelize.NewFile()
	defer tpl.Close()

	_, err := FromCSV(tpl, "Sheet1", 0, src, CSVParams{
		Selection:    models.ColumnSelection{Indices: []int{0}},
		HeaderAction: models.HeaderNone,
	})
	require.NoError(t, err)

	assert.Equal(t, " a", cellValue(t, tpl, "A2"))
}

func TestFromCSVErrors(t *testing.T) {
	tpl := excelize.NewFile()
	defer tpl.Close()

	_, err := FromCSV(tpl, "Sheet1", 0, filepath.Join(t.TempDir(), "missing.csv"), CSVParams{
		Selection: models.ColumnSelection{Indices: []int{0}},
	})
	var srcErr *SourceError
	assert.ErrorAs(t, err, &srcErr)

	src := writeCSV(t, "x,y\n1,2\n")
	_, err = FromCSV(tpl, "Sheet1", 0, src, CSVParams{
		Selection: models.ColumnSelection{Headers: [][]string{{"x"}}},
	})
	assert.ErrorIs(t, err, ErrHeaderSelection)

	_, err = FromCSV(tpl, "Sheet1", 0, src, CSVParams{
		Selection: models.ColumnSelection{Indices: []int{5}},
	})
	assert.ErrorAs(t, err, &srcErr)

	_, err = FromCSV(tpl, "Sheet1", 0, src, CSVParams{
		Selection: models.ColumnSelection{Indices: []int{0}},
		SkipRows:  10,
	})
	assert.ErrorAs(t, err, &srcErr)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, int64(123), parseValue("123"))
	assert.Equal(t, int64(-100), parseValue("-100"))
	assert.Equal(t, 123.45, parseValue("123.45"))
	assert.Equal(t, "hello", parseValue("hello"))
	assert.Equal(t, "", parseValue(""))
}
