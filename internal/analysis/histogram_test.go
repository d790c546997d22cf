package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"statkit/adapters/memory"
	"statkit/internal/stats"
)

func TestHistogramWithBinRange(t *testing.T) {
	src := memory.FromColumns("Sheet1", []any{0, 1, 1.5, 2, 3, 5}, []any{1, 2, 3})
	bins := ranges(t, "B1:B3")[0]
	tool := NewHistogram(Input{Source: src, Ranges: ranges(t, "A1:A6")})
	tool.Bins = &bins
	tool.Percentage = true
	tool.Cumulative = true
	grid, rep := run(t, tool)

	assert.Equal(t, Size{Cols: 4, Rows: 5}, rep.Size)
	assert.Equal(t, [][]string{
		{"Bin", "Column 1", "%", "Cumulative %"},
		{"<1", "1"},
		{"[1,2)", "2"},
		{"[2,3)", "1"},
		{">=3", "2"},
	}, firstCols(grid.Rows(), 2, 1))
	assert.InDelta(t, 1.0/6, number(t, grid, 2, 1), 1e-12)
	assert.InDelta(t, 1, number(t, grid, 3, 4), 1e-12)
	assert.True(t, grid.Cell(2, 1).Percent)
	assert.True(t, grid.Cell(3, 4).Percent)
	assert.False(t, grid.Cell(1, 1).Percent)
}

// firstCols keeps every column of the first row and the first n columns of
// the rest
func firstCols(rows [][]string, n, header int) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		if i < header {
			out[i] = r
			continue
		}
		out[i] = r[:n]
	}
	return out
}

func TestHistogramAutoBins(t *testing.T) {
	src := memory.FromColumns("Sheet1", []any{0, 10, 4, 6})
	tool := NewHistogram(Input{Source: src, Ranges: ranges(t, "A1:A4")})
	tool.BinCount = 2
	grid, _ := run(t, tool)
	assert.Equal(t, [][]string{{"Bin", "Column 1"}, {"<5", "2"}, {">=5", "2"}}, grid.Rows())

	tool = NewHistogram(Input{Source: src, Ranges: ranges(t, "A1:A4")})
	tool.BinCount = 2
	tool.UpperInclusive = true
	grid, _ = run(t, tool)
	assert.Equal(t, "<=5", grid.Text(0, 1))
	assert.Equal(t, ">5", grid.Text(0, 2))
}

func TestHistogramPareto(t *testing.T) {
	src := memory.FromColumns("Sheet1", []any{0, 3, 3, 3, 6, 6})
	lo, hi := 0.0, 9.0
	tool := NewHistogram(Input{Source: src, Ranges: ranges(t, "A1:A6")})
	tool.BinCount = 3
	tool.Min, tool.Max = &lo, &hi
	tool.Pareto = true
	grid, _ := run(t, tool)
	assert.Equal(t, []string{"[3,6)", "3"}, grid.Rows()[1])
	assert.Equal(t, []string{">=6", "2"}, grid.Rows()[2])
	assert.Equal(t, []string{"<3", "1"}, grid.Rows()[3])
}

func TestBinLabel(t *testing.T) {
	assert.Equal(t, "All", binLabel(stats.Bin{OpenLower: true, OpenUpper: true}, false))
	assert.Equal(t, "(1,2]", binLabel(stats.Bin{Lower: 1, Upper: 2}, true))
}
