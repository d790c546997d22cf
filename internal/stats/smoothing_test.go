package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertSeries(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "index %d: want NaN, got %g", i, got[i])
			continue
		}
		assert.InDelta(t, want[i], got[i], 1e-9, "index %d", i)
	}
}

func TestMovingAverages(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5, 6}
	nan := math.NaN()

	tests := []struct {
		name     string
		kind     AverageKind
		interval int
		want     []float64
	}{
		{"prior", AveragePrior, 3, []float64{nan, nan, 2, 3, 4, 5}},
		{"central", AverageCentral, 3, []float64{nan, 2, 3, 4, 5, nan}},
		{"cumulative", AverageCumulative, 0, []float64{1, 1.5, 2, 2.5, 3, 3.5}},
		{"weighted", AverageWeighted, 3, []float64{nan, nan, 14.0 / 6, 20.0 / 6, 26.0 / 6, 32.0 / 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MovingAverage(x, tt.kind, tt.interval)
			require.NoError(t, err)
			assertSeries(t, tt.want, got)
		})
	}
}

func TestSpencerPreservesCubics(t *testing.T) {
	x := make([]float64, 20)
	for i := range x {
		f := float64(i)
		x[i] = f*f*f - 2*f
	}
	got, err := MovingAverage(x, AverageSpencer, 0)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got[6]))
	assert.True(t, math.IsNaN(got[13]))
	for i := 7; i <= 12; i++ {
		assert.InDelta(t, x[i], got[i], 1e-9)
	}

	_, err = MovingAverage(x[:10], AverageSpencer, 0)
	assert.Error(t, err)
}

func TestMovingAverageInterval(t *testing.T) {
	_, err := MovingAverage([]float64{1, 2}, AveragePrior, 3)
	assert.Error(t, err)
}

func TestStandardErrors(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	f := []float64{math.NaN(), 1, 3, 3}
	got := StandardErrors(x, f, 2)
	assertSeries(t, []float64{math.NaN(), math.NaN(), math.Sqrt(0.5), math.Sqrt(0.5)}, got)
}

func TestExponentialSmoothing(t *testing.T) {
	x := []float64{10, 20, 30}

	hunter, err := ExponentialSmoothing(x, SmoothingHunter, SmoothingParams{Alpha: 0.5})
	require.NoError(t, err)
	assertSeries(t, []float64{10, 10, 15}, hunter)

	roberts, err := ExponentialSmoothing(x, SmoothingRoberts, SmoothingParams{Alpha: 0.5})
	require.NoError(t, err)
	assertSeries(t, []float64{10, 15, 22.5}, roberts)

	holt, err := ExponentialSmoothing(x, SmoothingHolt, SmoothingParams{Alpha: 0.5, Gamma: 0.5})
	require.NoError(t, err)
	assertSeries(t, []float64{10, 20, 30}, holt)

	_, err = ExponentialSmoothing(x, SmoothingRoberts, SmoothingParams{Alpha: 2})
	assert.Error(t, err)
}

func TestHoltWintersTracksPureSeason(t *testing.T) {
	x := []float64{1, 3, 1, 3, 1, 3, 1, 3}
	p := SmoothingParams{Alpha: 0.3, Gamma: 0.1, Delta: 0.2, Period: 2}

	add, err := ExponentialSmoothing(x, SmoothingAdditive, p)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(add[0]))
	for i := 2; i < len(x); i++ {
		assert.InDelta(t, x[i], add[i], 1e-9)
	}

	mul, err := ExponentialSmoothing(x, SmoothingMultiplicative, p)
	require.NoError(t, err)
	for i := 2; i < len(x); i++ {
		assert.InDelta(t, x[i], mul[i], 1e-9)
	}

	_, err = ExponentialSmoothing(x[:3], SmoothingAdditive, p)
	assert.Error(t, err)
}
