package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sampleX = []float64{1, 2, 3, 4, 5}
	sampleY = []float64{2, 4, 6, 8, 10}
)

func TestTTests(t *testing.T) {
	tests := []struct {
		name string
		run  func() (*MeanTest, error)
		stat float64
		df   float64
	}{
		{"paired", func() (*MeanTest, error) { return TTestPaired(sampleX, sampleY, 0, 0.05) }, -4.2426407, 4},
		{"equal", func() (*MeanTest, error) { return TTestEqualVariances(sampleX, sampleY, 0, 0.05) }, -1.8973666, 8},
		{"unequal", func() (*MeanTest, error) { return TTestUnequalVariances(sampleX, sampleY, 0, 0.05) }, -1.8973666, 5.8823529},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.run()
			require.NoError(t, err)
			assert.InDelta(t, tt.stat, res.Stat, 1e-6)
			assert.InDelta(t, tt.df, res.DF, 1e-6)
			assert.InDelta(t, 2*res.POneTail, res.PTwoTail, 1e-12)
			assert.Greater(t, res.CritTwoTail, res.CritOneTail)
		})
	}
}

func TestPairedPearson(t *testing.T) {
	res, err := TTestPaired(sampleX, sampleY, 0, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 1, res.Pearson, 1e-12)
}

func TestZTest(t *testing.T) {
	res, err := ZTest(sampleX, sampleY, 2.5, 10, 0, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, -1.8973666, res.Stat, 1e-6)
	assert.InDelta(t, 0.0577796, res.PTwoTail, 1e-6)
	assert.InDelta(t, 1.959964, res.CritTwoTail, 1e-6)
	assert.InDelta(t, 1.644854, res.CritOneTail, 1e-6)

	_, err = ZTest(sampleX, sampleY, 0, 10, 0, 0.05)
	assert.Error(t, err)
}

func TestFTest(t *testing.T) {
	res, err := FTest(sampleX, sampleY, 0.05)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, res.F, 1e-12)
	assert.InDelta(t, 1, res.PLeft+res.PRight, 1e-12)
	assert.InDelta(t, 2*res.PLeft, res.PTwoTail, 1e-12)
	// equal degrees of freedom make the two-tail critical values reciprocal
	assert.InDelta(t, 1, res.CritTwoLow*res.CritTwoHigh, 1e-6)
}
