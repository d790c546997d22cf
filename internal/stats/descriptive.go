package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"statkit/internal/errors"
)

// Summary is the descriptive statistics block of one series
type Summary struct {
	Mean     float64
	StdErr   float64
	Median   float64
	Mode     float64
	HasMode  bool
	StdDev   float64
	Variance float64
	Kurtosis float64
	Skewness float64
	Range    float64
	Min      float64
	Max      float64
	Sum      float64
	Count    int
}

// Describe computes the summary of x. Statistics undefined for the sample
// size (variance below two points, kurtosis below four) are NaN.
func Describe(x []float64) (Summary, error) {
	if len(x) == 0 {
		return Summary{}, errors.NotEnoughData("descriptive statistics need at least one value")
	}
	data := mstats.Float64Data(x)

	var s Summary
	s.Count = len(x)
	s.Mean, _ = data.Mean()
	s.Median, _ = data.Median()
	s.Sum, _ = data.Sum()
	s.Min, _ = data.Min()
	s.Max, _ = data.Max()
	s.Range = s.Max - s.Min
	s.Mode, s.HasMode = Mode(x)

	s.Variance, s.StdDev, s.StdErr = math.NaN(), math.NaN(), math.NaN()
	if len(x) > 1 {
		s.Variance, _ = data.SampleVariance()
		s.StdDev = math.Sqrt(s.Variance)
		s.StdErr = s.StdDev / math.Sqrt(float64(len(x)))
	}
	s.Skewness = skewness(x, s.StdDev)
	s.Kurtosis = kurtosis(x, s.StdDev)
	return s, nil
}

// Mode returns the most frequent value, preferring the one that occurs first.
// A series without repeated values has no mode.
func Mode(x []float64) (float64, bool) {
	counts := make(map[float64]int, len(x))
	best, bestCount := math.NaN(), 1
	for _, v := range x {
		counts[v]++
	}
	for _, v := range x {
		if c := counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best, bestCount > 1
}

// skewness is the sample skewness n/((n-1)(n-2)) * sum(((x-m)/s)^3)
func skewness(x []float64, sd float64) float64 {
	if len(x) < 3 || sd == 0 || math.IsNaN(sd) {
		return math.NaN()
	}
	return stat.Skew(x, nil)
}

// kurtosis is the sample excess kurtosis
func kurtosis(x []float64, sd float64) float64 {
	if len(x) < 4 || sd == 0 || math.IsNaN(sd) {
		return math.NaN()
	}
	return stat.ExKurtosis(x, nil)
}

// ConfidenceHalfWidth is t(1-(1-level)/2, n-1) * SE, the half width of the
// confidence interval for the mean
func ConfidenceHalfWidth(x []float64, level float64) (float64, error) {
	if len(x) < 2 {
		return 0, errors.NotEnoughData("confidence level needs at least two values")
	}
	if level <= 0 || level >= 1 {
		return 0, errors.InvalidField("confidence level must be in (0,1)")
	}
	sd, _ := mstats.StandardDeviationSample(x)
	n := float64(len(x))
	return TCritical((1-level)/2, n-1) * sd / math.Sqrt(n), nil
}

// KthLargest returns the k-th largest value, 1-based
func KthLargest(x []float64, k int) (float64, error) {
	if k < 1 || k > len(x) {
		return 0, errors.Newf(errors.CodeInvalidField, "k=%d outside 1..%d", k, len(x))
	}
	sorted := sortedCopy(x)
	return sorted[len(sorted)-k], nil
}

// KthSmallest returns the k-th smallest value, 1-based
func KthSmallest(x []float64, k int) (float64, error) {
	if k < 1 || k > len(x) {
		return 0, errors.Newf(errors.CodeInvalidField, "k=%d outside 1..%d", k, len(x))
	}
	return sortedCopy(x)[k-1], nil
}

func sortedCopy(x []float64) []float64 {
	c := append([]float64(nil), x...)
	sort.Float64s(c)
	return c
}
