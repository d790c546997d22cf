package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"statkit/internal/errors"
)

// AverageKind selects a moving average
type AverageKind int

const (
	AveragePrior AverageKind = iota
	AverageCentral
	AverageCumulative
	AverageWeighted
	AverageSpencer
)

var spencerWeights = [15]float64{-3, -6, -5, 3, 21, 46, 67, 74, 67, 46, 21, 3, -5, -6, -3}

const spencerSum = 320

// MovingAverage smooths x. Positions where the window is incomplete are NaN.
// Central windows are centred on the current point; even intervals lean to
// the past.
func MovingAverage(x []float64, kind AverageKind, interval int) ([]float64, error) {
	if kind == AverageSpencer {
		interval = len(spencerWeights)
	}
	if kind != AverageCumulative && (interval < 1 || interval > len(x)) {
		return nil, errors.Newf(errors.CodeInvalidField, "interval %d outside 1..%d", interval, len(x))
	}

	out := make([]float64, len(x))
	for i := range out {
		out[i] = math.NaN()
	}

	switch kind {
	case AverageCumulative:
		floats.CumSum(out, x)
		for i := range out {
			out[i] /= float64(i + 1)
		}
	case AveragePrior, AverageCentral:
		offset := interval - 1
		if kind == AverageCentral {
			offset = interval / 2
		}
		for i := range x {
			start := i - offset
			end := start + interval
			if start < 0 || end > len(x) {
				continue
			}
			out[i] = stat.Mean(x[start:end], nil)
		}
	case AverageWeighted:
		weights := make([]float64, interval)
		for k := range weights {
			weights[k] = float64(k + 1)
		}
		denom := floats.Sum(weights)
		for i := interval - 1; i < len(x); i++ {
			out[i] = floats.Dot(weights, x[i-interval+1:i+1]) / denom
		}
	case AverageSpencer:
		for i := 7; i+7 < len(x); i++ {
			out[i] = floats.Dot(spencerWeights[:], x[i-7:i+8]) / spencerSum
		}
	default:
		return nil, errors.Newf(errors.CodeInvalidField, "unknown moving average kind %d", kind)
	}
	return out, nil
}

// StandardErrors is sqrt(sum((x-f)^2)/interval) over the last interval
// points where f is defined; NaN elsewhere.
func StandardErrors(x, f []float64, interval int) []float64 {
	out := make([]float64, len(x))
	for i := range out {
		out[i] = math.NaN()
		if interval < 1 || i+1 < interval {
			continue
		}
		lo := i - interval + 1
		if floats.HasNaN(f[lo : i+1]) {
			continue
		}
		out[i] = floats.Distance(x[lo:i+1], f[lo:i+1], 2) / math.Sqrt(float64(interval))
	}
	return out
}

// SmoothingKind selects an exponential smoothing model
type SmoothingKind int

const (
	// SmoothingHunter forecasts x[t] from observations before t
	SmoothingHunter SmoothingKind = iota
	// SmoothingRoberts blends x[t] into the value reported at t
	SmoothingRoberts
	SmoothingHolt
	SmoothingAdditive
	SmoothingMultiplicative
)

// SmoothingParams are the damping factors. Gamma is the trend weight and
// Delta the seasonal weight; Period is the season length.
type SmoothingParams struct {
	Alpha  float64
	Gamma  float64
	Delta  float64
	Period int
}

// ExponentialSmoothing returns one smoothed value per observation. Values
// that depend on an incomplete initial season are NaN.
func ExponentialSmoothing(x []float64, kind SmoothingKind, p SmoothingParams) ([]float64, error) {
	if len(x) == 0 {
		return nil, errors.NotEnoughData("exponential smoothing needs data")
	}
	for _, w := range []float64{p.Alpha, p.Gamma, p.Delta} {
		if w < 0 || w > 1 {
			return nil, errors.InvalidField("damping factors must be in [0,1]")
		}
	}
	out := make([]float64, len(x))

	switch kind {
	case SmoothingHunter:
		out[0] = x[0]
		for t := 1; t < len(x); t++ {
			out[t] = out[t-1] + p.Alpha*(x[t-1]-out[t-1])
		}
	case SmoothingRoberts:
		out[0] = x[0]
		for t := 1; t < len(x); t++ {
			out[t] = p.Alpha*x[t] + (1-p.Alpha)*out[t-1]
		}
	case SmoothingHolt:
		level, trend := x[0], 0.0
		if len(x) > 1 {
			trend = x[1] - x[0]
		}
		out[0] = x[0]
		for t := 1; t < len(x); t++ {
			out[t] = level + trend
			prev := level
			level = p.Alpha*x[t] + (1-p.Alpha)*(level+trend)
			trend = p.Gamma*(level-prev) + (1-p.Gamma)*trend
		}
	case SmoothingAdditive, SmoothingMultiplicative:
		return holtWinters(x, kind == SmoothingMultiplicative, p)
	default:
		return nil, errors.Newf(errors.CodeInvalidField, "unknown smoothing kind %d", kind)
	}
	return out, nil
}

func holtWinters(x []float64, multiplicative bool, p SmoothingParams) ([]float64, error) {
	s := p.Period
	if s < 1 || len(x) < 2*s {
		return nil, errors.Newf(errors.CodeNotEnoughData,
			"seasonal smoothing with period %d needs at least %d values", s, 2*s)
	}

	first, second := 0.0, 0.0
	for i := 0; i < s; i++ {
		first += x[i]
		second += x[s+i]
	}
	first /= float64(s)
	second /= float64(s)

	level := first
	trend := (second - first) / float64(s)
	season := make([]float64, len(x))
	for i := 0; i < s; i++ {
		if multiplicative {
			if first == 0 {
				return nil, errors.InvalidField("multiplicative seasons need a non-zero first season mean")
			}
			season[i] = x[i] / first
		} else {
			season[i] = x[i] - first
		}
	}

	out := make([]float64, len(x))
	for t := 0; t < s; t++ {
		out[t] = math.NaN()
	}
	for t := s; t < len(x); t++ {
		prevSeason := season[t-s]
		prev := level
		if multiplicative {
			out[t] = (level + trend) * prevSeason
			level = p.Alpha*x[t]/prevSeason + (1-p.Alpha)*(level+trend)
			season[t] = p.Delta*x[t]/level + (1-p.Delta)*prevSeason
		} else {
			out[t] = level + trend + prevSeason
			level = p.Alpha*(x[t]-prevSeason) + (1-p.Alpha)*(level+trend)
			season[t] = p.Delta*(x[t]-level) + (1-p.Delta)*prevSeason
		}
		trend = p.Gamma*(level-prev) + (1-p.Gamma)*trend
	}
	return out, nil
}
