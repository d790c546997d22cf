package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramBoundaries(t *testing.T) {
	x := []float64{0, 1, 1.5, 2, 3, 5}
	h, err := NewHistogram([][]float64{x}, []float64{1, 2, 3}, false)
	require.NoError(t, err)
	require.Len(t, h.Bins, 4)
	// <1, [1,2), [2,3), >=3
	assert.Equal(t, []int{1, 2, 1, 2}, h.Counts[0])
	assert.True(t, h.Bins[0].OpenLower)
	assert.True(t, h.Bins[3].OpenUpper)

	up, err := NewHistogram([][]float64{x}, []float64{1, 2, 3}, true)
	require.NoError(t, err)
	// <=1, (1,2], (2,3], >3
	assert.Equal(t, []int{2, 2, 1, 1}, up.Counts[0])
}

func TestHistogramPareto(t *testing.T) {
	a := []float64{0, 1.5, 1.5, 2.5, 2.5, 9}
	b := []float64{2.5, 0, 0}
	h, err := NewHistogram([][]float64{a, b}, []float64{1, 2, 3}, false)
	require.NoError(t, err)
	h.Pareto()
	// bins 1 and 2 tie on a; b breaks the tie in favour of bin 2, then
	// bins 0 and 3 tie on a and b is decisive again
	assert.Equal(t, []int{2, 1, 0, 3}, h.Order)

	pct, cum := h.Percentages(0)
	assert.InDelta(t, 2.0/6, pct[0], 1e-12)
	assert.InDelta(t, 1, cum[3], 1e-12)
}

func TestEdges(t *testing.T) {
	e, err := Edges(0, 10, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 5, 7.5}, e)

	_, err = Edges(0, 10, 0)
	assert.Error(t, err)

	_, err = NewHistogram(nil, []float64{2, 1}, false)
	assert.Error(t, err)
}
