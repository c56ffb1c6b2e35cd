package cellref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexConversion(t *testing.T) {
	assert.Equal(t, 1, ToExcel(0))
	assert.Equal(t, 27, ToExcel(26))

	idx, err := FromExcel(1)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = FromExcel(0)
	assert.Error(t, err)
}

func TestColumnShift(t *testing.T) {
	// Replace range ended at C (2), data broke at F (5): grew by 2.
	assert.Equal(t, 2, ColumnShift(2, 5))
	// Replace range ended at D (3), data broke at D (3): shrank by 1.
	assert.Equal(t, -1, ColumnShift(3, 3))
	assert.Equal(t, 0, ColumnShift(2, 3))
}

func TestBoundaries(t *testing.T) {
	tests := []struct {
		ref            string
		c1, r1, c2, r2 int
	}{
		{"C5", 3, 5, 3, 5},
		{"B2:D10", 2, 2, 4, 10},
		{"$B$2:$D$10", 2, 2, 4, 10},
		{"A:C", 1, 0, 3, 0},
		{"Sheet2!B2:C3", 2, 2, 3, 3},
	}
	for _, tt := range tests {
		c1, r1, c2, r2, err := Boundaries(tt.ref)
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.c1, c1, tt.ref)
		assert.Equal(t, tt.r1, r1, tt.ref)
		assert.Equal(t, tt.c2, c2, tt.ref)
		assert.Equal(t, tt.r2, r2, tt.ref)
	}

	_, _, _, _, err := Boundaries("Hello")
	assert.Error(t, err)

	_, _, _, _, err = Boundaries("A1:B2:C3")
	assert.Error(t, err)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		ref      string
		rowDelta int
		colDelta int
		want     string
	}{
		{"A1", 0, 2, "C1"},
		{"B2", 1, 0, "B3"},
		{"B2:C3", 1, 1, "C3:D4"},
		{"$A$1", 5, 5, "$A$1"},
		{"$A1", 1, 1, "$A2"},
		{"A$1", 1, 1, "B$1"},
		{"Sheet2!B2", 0, 1, "Sheet2!C2"},
		{"'My Sheet'!B2:C3", 0, 1, "'My Sheet'!C2:D3"},
		{"B:C", 0, 2, "D:E"},
	}
	for _, tt := range tests {
		got, err := Translate(tt.ref, tt.rowDelta, tt.colDelta)
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.want, got, tt.ref)
	}
}

func TestTranslateOutOfSheet(t *testing.T) {
	_, err := Translate("A1", 0, -1)
	assert.ErrorIs(t, err, ErrOutOfSheet)

	_, err = Translate("B1", -1, 0)
	assert.ErrorIs(t, err, ErrOutOfSheet)

	// Anchored axes do not move, so they cannot go out of bounds.
	got, err := Translate("$A$1", -5, -5)
	require.NoError(t, err)
	assert.Equal(t, "$A$1", got)
}

func TestSplitJoinSheet(t *testing.T) {
	sheet, rest := SplitSheet("Sheet1!A1:B2")
	assert.Equal(t, "Sheet1", sheet)
	assert.Equal(t, "A1:B2", rest)

	sheet, rest = SplitSheet("A1")
	assert.Equal(t, "", sheet)
	assert.Equal(t, "A1", rest)

	assert.Equal(t, "Sheet1!A1", JoinSheet("Sheet1", "A1"))
	assert.Equal(t, "A1", JoinSheet("", "A1"))
}
