package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statkit/internal/errors"
)

func TestRegressWithIntercept(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2.1, 3.9, 6.2, 7.8, 10.1}
	reg, err := Regress([][]float64{x}, y, true, 0.95)
	require.NoError(t, err)

	assert.InDelta(t, 0.05, reg.Coef[0], 1e-9)
	assert.InDelta(t, 1.99, reg.Coef[1], 1e-9)
	assert.InDelta(t, 0.107, reg.SSResid, 1e-9)
	assert.InDelta(t, 39.708, reg.SSTotal, 1e-9)
	assert.InDelta(t, 0.9973053, reg.SqrR, 1e-6)
	assert.InDelta(t, 0.9964071, reg.AdjSqrR, 1e-6)
	assert.InDelta(t, 0.1980741, reg.SE[0], 1e-6)
	assert.InDelta(t, 0.0597216, reg.SE[1], 1e-6)
	assert.InDelta(t, 1110.3084, reg.F, 1e-3)
	assert.Equal(t, 1.0, reg.DFReg)
	assert.Equal(t, 3.0, reg.DFResid)
	assert.Equal(t, 4.0, reg.DFTotal)
	assert.Less(t, reg.Lower[1], reg.Coef[1])
	assert.Greater(t, reg.Upper[1], reg.Coef[1])
	assert.False(t, reg.NearSingular)
}

func TestRegressWithoutIntercept(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2.1, 3.9, 6.2, 7.8, 10.1}
	reg, err := Regress([][]float64{x}, y, false, 0.95)
	require.NoError(t, err)

	require.Len(t, reg.Coef, 1)
	assert.InDelta(t, 2.0036364, reg.Coef[0], 1e-6)
	assert.Equal(t, 5.0, reg.DFTotal)
	assert.Equal(t, 4.0, reg.DFResid)
	assert.InDelta(t, 0.9995054, reg.SqrR, 1e-6)
	assert.InDelta(t, 0.9993817, reg.AdjSqrR, 1e-6)
}

func TestRegressCollinearIsSingular(t *testing.T) {
	x1 := []float64{1, 2, 3, 4, 5, 6}
	x2 := []float64{2, 4, 6, 8, 10, 12}
	y := []float64{1, 3, 2, 5, 4, 6}
	_, err := Regress([][]float64{x1, x2}, y, true, 0.95)
	require.Error(t, err)
	assert.Equal(t, errors.CodeSingular, errors.GetCode(err))
}

func TestRegressDimensions(t *testing.T) {
	_, err := Regress([][]float64{{1, 2, 3}}, []float64{1, 2}, true, 0.95)
	assert.Equal(t, errors.CodeInvalidDimensions, errors.GetCode(err))

	_, err = Regress([][]float64{{1, 2}}, []float64{1, 2}, true, 0.95)
	assert.Equal(t, errors.CodeNotEnoughData, errors.GetCode(err))
}
