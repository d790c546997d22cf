package stats

import (
	"gonum.org/v1/gonum/stat"

	"statkit/internal/errors"
)

// Correlation is Pearson's r
func Correlation(x, y []float64) (float64, error) {
	if err := paired(x, y, 2); err != nil {
		return 0, err
	}
	return stat.Correlation(x, y, nil), nil
}

// Covariance is the population covariance, sum((x-mx)(y-my))/n
func Covariance(x, y []float64) (float64, error) {
	if err := paired(x, y, 1); err != nil {
		return 0, err
	}
	n := float64(len(x))
	if n == 1 {
		return 0, nil
	}
	return stat.Covariance(x, y, nil) * (n - 1) / n, nil
}

// Matrix applies fn to every pair (i, j) with j <= i. The result is lower
// triangular; cells above the diagonal are left zero.
func Matrix(series [][]float64, fn func(x, y []float64) (float64, error)) ([][]float64, error) {
	out := make([][]float64, len(series))
	for i := range series {
		out[i] = make([]float64, len(series))
		for j := 0; j <= i; j++ {
			v, err := fn(series[i], series[j])
			if err != nil {
				return nil, err
			}
			out[i][j] = v
		}
	}
	return out, nil
}

func paired(x, y []float64, min int) error {
	if len(x) != len(y) {
		return errors.Newf(errors.CodeInvalidDimensions, "series lengths differ: %d and %d", len(x), len(y))
	}
	if len(x) < min {
		return errors.Newf(errors.CodeNotEnoughData, "need at least %d paired values", min)
	}
	return nil
}
