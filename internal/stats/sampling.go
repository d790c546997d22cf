package stats

import (
	"math/rand/v2"

	"statkit/internal/errors"
)

// SamplePeriodic takes every period-th value starting at the 1-based offset
func SamplePeriodic(x []float64, period, offset int) ([]float64, error) {
	if period < 1 {
		return nil, errors.InvalidField("sampling period must be positive")
	}
	if offset < 1 {
		offset = period
	}
	if offset > len(x) {
		return nil, errors.Newf(errors.CodeNotEnoughData, "offset %d beyond %d values", offset, len(x))
	}
	var out []float64
	for i := offset - 1; i < len(x); i += period {
		out = append(out, x[i])
	}
	return out, nil
}

// SampleRandom draws count values with replacement
func SampleRandom(x []float64, count int, src rand.Source) ([]float64, error) {
	if len(x) == 0 {
		return nil, errors.NotEnoughData("cannot sample an empty series")
	}
	if count < 1 {
		return nil, errors.InvalidField("sample size must be positive")
	}
	r := rand.New(src)
	out := make([]float64, count)
	for i := range out {
		out[i] = x[r.IntN(len(x))]
	}
	return out, nil
}
