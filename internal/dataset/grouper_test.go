package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statkit/adapters/memory"
	domain "statkit/domain/dataset"
	"statkit/internal/errors"
)

func mustRange(t *testing.T, ref string) domain.Range {
	t.Helper()
	r, err := domain.ParseRange(ref)
	require.NoError(t, err)
	return r
}

func TestRowLabels(t *testing.T) {
	src := memory.FromRows("Sheet1", [][]any{{"Sales", 1, 2, 3, 4}})
	r := mustRange(t, "A1:E1")

	withLabels, err := Extract(src, []domain.Range{r}, Options{GroupBy: domain.ByRow, ReadLabels: true, IgnoreNonNumeric: true})
	require.NoError(t, err)
	require.Len(t, withLabels, 1)
	assert.Equal(t, "Sales", withLabels[0].Label)
	assert.Equal(t, []float64{1, 2, 3, 4}, withLabels[0].Values)
	assert.Equal(t, 1, withLabels[0].Range.StartCol)

	numeric := memory.FromRows("Sheet1", [][]any{{5, 1, 2, 3, 4}})
	noLabels, err := Extract(numeric, []domain.Range{r}, Options{GroupBy: domain.ByRow, IgnoreNonNumeric: true})
	require.NoError(t, err)
	assert.Equal(t, "Row 1", noLabels[0].Label)
	assert.Len(t, noLabels[0].Values, 5)
}

func TestMissingValueBookkeeping(t *testing.T) {
	src := memory.FromColumns("Sheet1", []any{1, "x", 3, nil, 5})
	sets, err := Extract(src, []domain.Range{mustRange(t, "A1:A5")}, Options{GroupBy: domain.ByColumn, IgnoreNonNumeric: true})
	require.NoError(t, err)

	ds := sets[0]
	assert.Equal(t, []float64{1, 3, 5}, ds.Values)
	assert.Equal(t, []int{1, 3}, ds.Missing)
	assert.False(t, ds.Complete)
	assert.Equal(t, 5, ds.Visited())
}

func TestMissingOffsetsCountAfterLabel(t *testing.T) {
	src := memory.FromColumns("Sheet1", []any{"Weight", 1, nil, 3})
	sets, err := Extract(src, []domain.Range{mustRange(t, "A1:A4")}, Options{GroupBy: domain.ByColumn, IgnoreNonNumeric: true, ReadLabels: true})
	require.NoError(t, err)
	assert.Equal(t, "Weight", sets[0].Label)
	assert.Equal(t, []int{1}, sets[0].Missing)
	assert.Equal(t, "$A$2:$A$4", sets[0].Range.A1())
}

func TestCompleteModePadsBlanksAndRejectsText(t *testing.T) {
	src := memory.FromColumns("Sheet1", []any{1, nil, 3}, []any{1, "oops", 3})

	sets, err := NewDataSetList(src, []domain.Range{mustRange(t, "A1:A3")}, Options{GroupBy: domain.ByColumn})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 3}, sets[0].Values)
	assert.True(t, sets[0].Complete)
	assert.Equal(t, 3, sets[0].Visited())

	_, err = NewDataSetList(src, []domain.Range{mustRange(t, "B1:B3")}, Options{GroupBy: domain.ByColumn})
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingData, errors.GetCode(err))
}

func TestPrepareInputRange(t *testing.T) {
	r := mustRange(t, "B2:D4")

	rows := PrepareInputRange([]domain.Range{r}, domain.ByRow)
	require.Len(t, rows, 3)
	for i, s := range rows {
		assert.Equal(t, 1+i, s.StartRow)
		assert.Equal(t, s.StartRow, s.EndRow)
		assert.Equal(t, 3, s.Width())
		assert.False(t, s.ColRelative)
		assert.False(t, s.RowRelative)
	}

	cols := PrepareInputRange([]domain.Range{r}, domain.ByColumn)
	require.Len(t, cols, 3)
	assert.Equal(t, 3, cols[2].StartCol)
	assert.Equal(t, 3, cols[2].Height())

	area := PrepareInputRange([]domain.Range{r}, domain.ByArea)
	require.Len(t, area, 1)
	assert.Equal(t, 9, area[0].Cells())
	assert.False(t, area[0].ColRelative)

	bins := PrepareInputRange([]domain.Range{r}, domain.ByBin)
	assert.Len(t, bins, 9)

	dropped := PrepareInputRange([]domain.Range{mustRange(t, "Jan:Mar!A1:A3"), r}, domain.ByArea)
	assert.Len(t, dropped, 1)
}

func TestContextSheetAndDefaultLabels(t *testing.T) {
	wb := memory.FromRows("Data", [][]any{{1, 2}, {3, 4}})
	sets, err := Extract(wb, []domain.Range{mustRange(t, "A1:B2")}, Options{GroupBy: domain.ByArea, ContextSheet: "Data"})
	require.NoError(t, err)
	assert.Equal(t, "Area 1", sets[0].Label)
	assert.Equal(t, []float64{1, 2, 3, 4}, sets[0].Values)
	assert.Equal(t, "Data", sets[0].Range.Sheet)
}

func TestBinsMustHoldOneValue(t *testing.T) {
	src := memory.FromColumns("Sheet1", []any{10, nil, 30})
	_, err := Extract(src, []domain.Range{mustRange(t, "A1:A3")}, Options{GroupBy: domain.ByBin, IgnoreNonNumeric: true})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidField, errors.GetCode(err))

	src = memory.FromColumns("Sheet1", []any{10, 20, 30})
	sets, err := Extract(src, []domain.Range{mustRange(t, "A1:A3")}, Options{GroupBy: domain.ByBin, IgnoreNonNumeric: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bin 1", "Bin 2", "Bin 3"}, Labels(sets))
}

func TestHomogeneity(t *testing.T) {
	a := mustRange(t, "A1:A3")
	b := mustRange(t, "B1:B3")
	c := mustRange(t, "C1:C4")
	assert.True(t, CheckInputRangeListHomogeneity([]domain.Range{a, b}))
	assert.False(t, CheckInputRangeListHomogeneity([]domain.Range{a, c}))
	assert.True(t, CheckInputRangeListHomogeneity(nil))
}

func TestExtractWithNothingUsable(t *testing.T) {
	_, err := Extract(memory.NewWorkbook("Sheet1"), []domain.Range{mustRange(t, "A:B!A1:A2")}, Options{})
	assert.Error(t, err)
}

func TestStripMissingKeepsCompleteObservations(t *testing.T) {
	src := memory.FromColumns("Sheet1", []any{1, nil, 3, 4, 5}, []any{1, 2, 3, "n/a", 5})
	sets, err := Extract(src, []domain.Range{mustRange(t, "A1:B5")}, Options{GroupBy: domain.ByColumn, IgnoreNonNumeric: true})
	require.NoError(t, err)
	require.Len(t, sets[0].Values, 4)

	stripped, err := StripMissing(sets)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 5}, stripped[0].Values)
	assert.Equal(t, []float64{1, 3, 5}, stripped[1].Values)
	assert.Equal(t, []int{1, 3}, stripped[1].Missing)
	assert.Equal(t, 5, stripped[0].Visited())
	assert.Equal(t, []float64{1, 3, 4, 5}, sets[0].Values, "input sets are left untouched")
}

func TestStripMissingDropsPaddedBlanks(t *testing.T) {
	padded := domain.DataSet{Values: []float64{1, 0, 3}, Missing: []int{1}, Complete: true}
	skipped := domain.DataSet{Values: []float64{4, 5}, Missing: []int{2}}
	stripped, err := StripMissing([]domain.DataSet{padded, skipped})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, stripped[0].Values)
	assert.Equal(t, []float64{4}, stripped[1].Values)
	assert.False(t, stripped[0].Complete)
}

func TestStripMissingRejectsRaggedSets(t *testing.T) {
	a := domain.DataSet{Label: "X", Values: []float64{1, 2, 4}, Missing: []int{2}}
	b := domain.DataSet{Label: "Y", Values: []float64{1, 2}, Missing: []int{1}}
	_, err := StripMissing([]domain.DataSet{a, b})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidDimensions, errors.GetCode(err))
}

func TestAreaLabelIsTrimmedFromLineRanges(t *testing.T) {
	src := memory.FromColumns("Sheet1", []any{"Yield", 1, 2, 3})
	sets, err := Extract(src, []domain.Range{mustRange(t, "A1:A4")}, Options{GroupBy: domain.ByArea, ReadLabels: true, IgnoreNonNumeric: true})
	require.NoError(t, err)
	assert.Equal(t, "Yield", sets[0].Label)
	assert.Equal(t, "$A$2:$A$4", sets[0].Range.A1())

	row := memory.FromRows("Sheet1", [][]any{{"Yield", 1, 2}})
	sets, err = Extract(row, []domain.Range{mustRange(t, "A1:C1")}, Options{GroupBy: domain.ByArea, ReadLabels: true, IgnoreNonNumeric: true})
	require.NoError(t, err)
	assert.Equal(t, "$B$1:$C$1", sets[0].Range.A1())

	block := memory.FromRows("Sheet1", [][]any{{"Yield", 1}, {2, 3}})
	sets, err = Extract(block, []domain.Range{mustRange(t, "A1:B2")}, Options{GroupBy: domain.ByArea, ReadLabels: true, IgnoreNonNumeric: true})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, sets[0].Values)
	assert.Equal(t, "$A$1:$B$2", sets[0].Range.A1())
}
