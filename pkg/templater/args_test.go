package templater

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syre-data/excel-template-runner/pkg/templater/models"
)

func TestParseMetadataArgs(t *testing.T) {
	metadata, err := ParseMetadataArgs([]string{"count=3", "ratio=2.5", "label=run a", "sample.depth=10"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"count":        int64(3),
		"ratio":        2.5,
		"label":        "run a",
		"sample.depth": int64(10),
	}, metadata)

	metadata, err = ParseMetadataArgs(nil)
	require.NoError(t, err)
	assert.Nil(t, metadata)

	_, err = ParseMetadataArgs([]string{"missing-separator"})
	assert.Error(t, err)

	_, err = ParseMetadataArgs([]string{"=value"})
	assert.Error(t, err)
}

func TestParseColumnSelectionIndices(t *testing.T) {
	sel, err := ParseColumnSelectionArgs([]string{"0", "2", "5"})
	require.NoError(t, err)
	assert.Equal(t, models.SelectByIndex, sel.Kind())
	assert.Equal(t, []int{0, 2, 5}, sel.Indices)
}

func TestParseColumnSelectionLabels(t *testing.T) {
	sel, err := ParseColumnSelectionArgs([]string{"A", "C", "AA"})
	require.NoError(t, err)
	assert.Equal(t, models.SelectByIndex, sel.Kind())
	assert.Equal(t, []int{0, 2, 26}, sel.Indices)
}

func TestParseColumnSelectionHeaders(t *testing.T) {
	sel, err := ParseColumnSelectionArgs([]string{"grp1, col1", "grp2, col2"})
	require.NoError(t, err)
	assert.Equal(t, models.SelectByHeader, sel.Kind())
	assert.Equal(t, [][]string{{"grp1", "col1"}, {"grp2", "col2"}}, sel.Headers)
}

func TestParseColumnSelectionErrors(t *testing.T) {
	_, err := ParseColumnSelectionArgs(nil)
	assert.ErrorIs(t, err, ErrEmptySelection)

	_, err = ParseColumnSelectionArgs([]string{"a,b", "c"})
	assert.Error(t, err)
}
