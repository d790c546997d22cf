package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statkit/internal/errors"
)

func TestDescribe(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	s, err := Describe(x)
	require.NoError(t, err)

	assert.Equal(t, 5.5, s.Mean)
	assert.Equal(t, 5.5, s.Median)
	assert.InDelta(t, 9.1666667, s.Variance, 1e-6)
	assert.InDelta(t, 3.0276504, s.StdDev, 1e-6)
	assert.InDelta(t, 0.9574271, s.StdErr, 1e-6)
	assert.InDelta(t, -1.2, s.Kurtosis, 1e-9)
	assert.InDelta(t, 0, s.Skewness, 1e-12)
	assert.Equal(t, 9.0, s.Range)
	assert.Equal(t, 55.0, s.Sum)
	assert.Equal(t, 10, s.Count)
	assert.False(t, s.HasMode)
}

func TestDescribeSmallSamples(t *testing.T) {
	s, err := Describe([]float64{4})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(s.Variance))
	assert.True(t, math.IsNaN(s.Kurtosis))

	_, err = Describe(nil)
	assert.Equal(t, errors.CodeNotEnoughData, errors.GetCode(err))
}

func TestMode(t *testing.T) {
	m, ok := Mode([]float64{3, 1, 1, 3, 2})
	assert.True(t, ok)
	assert.Equal(t, 3.0, m, "first value to reach the top count wins")

	_, ok = Mode([]float64{1, 2, 3})
	assert.False(t, ok)
}

func TestSkewness(t *testing.T) {
	s, err := Describe([]float64{1, 2, 3, 10})
	require.NoError(t, err)
	assert.InDelta(t, 1.7636, s.Skewness, 1e-4)
}

func TestConfidenceAndOrderStatistics(t *testing.T) {
	x := []float64{2, 4, 6, 8}
	hw, err := ConfidenceHalfWidth(x, 0.95)
	require.NoError(t, err)
	// t(0.025, 3) = 3.182446, sd = 2.581989, n = 4
	assert.InDelta(t, 3.182446*2.581989/2, hw, 1e-5)

	v, err := KthLargest(x, 1)
	require.NoError(t, err)
	assert.Equal(t, 8.0, v)
	v, err = KthSmallest(x, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)

	_, err = KthLargest(x, 5)
	assert.Equal(t, errors.CodeInvalidField, errors.GetCode(err))
}

func TestCorrelationAndCovariance(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	r, err := Correlation(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1, r, 1e-12)

	c, err := Covariance(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, c, 1e-12)

	_, err = Covariance(x, y[:3])
	assert.Equal(t, errors.CodeInvalidDimensions, errors.GetCode(err))

	m, err := Matrix([][]float64{x, y, {4, 3, 2, 1}}, Correlation)
	require.NoError(t, err)
	assert.InDelta(t, -1, m[2][0], 1e-12)
	assert.Zero(t, m[0][2])
	assert.InDelta(t, 1, m[1][1], 1e-12)
}
