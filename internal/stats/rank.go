package stats

import (
	"sort"
)

// RankEntry is one row of a rank and percentile table
type RankEntry struct {
	// Point is the 1-based position of the value in the input
	Point   int
	Value   float64
	Rank    float64
	Percent float64
}

// Rank orders x from largest to smallest. Ties share the best rank unless
// average is set, in which case they share the mean of the ranks they span.
// Percent is the fraction of other values strictly below the value.
func Rank(x []float64, average bool) []RankEntry {
	n := len(x)
	out := make([]RankEntry, n)
	for i, v := range x {
		out[i] = RankEntry{Point: i + 1, Value: v}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })

	for i := 0; i < n; {
		j := i
		for j < n && out[j].Value == out[i].Value {
			j++
		}
		rank := float64(i + 1)
		if average {
			rank = float64(i+1+j) / 2
		}
		below := n - j
		pct := 1.0
		if n > 1 {
			pct = float64(below) / float64(n-1)
		}
		for k := i; k < j; k++ {
			out[k].Rank = rank
			out[k].Percent = pct
		}
		i = j
	}
	return out
}
