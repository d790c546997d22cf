package stats

import (
	"sort"

	"statkit/internal/errors"
)

// Bin is one histogram class. The first bin has no lower edge and the last
// no upper edge.
type Bin struct {
	Lower, Upper float64
	OpenLower    bool
	OpenUpper    bool
}

// Histogram counts values per bin for several series
type Histogram struct {
	Bins []Bin
	// Counts[s][b] is the count of series s in bin b
	Counts [][]int
	// Order is the display order of bins, Pareto-sorted when requested
	Order []int
	// UpperInclusive bins are (lo, hi] rather than [lo, hi)
	UpperInclusive bool
}

// Edges builds count-1 evenly spaced interior edges so that count bins
// cover [min, max]
func Edges(min, max float64, count int) ([]float64, error) {
	if count < 1 {
		return nil, errors.InvalidField("bin count must be positive")
	}
	if max < min {
		return nil, errors.InvalidField("bin maximum is below the minimum")
	}
	edges := make([]float64, 0, count-1)
	width := (max - min) / float64(count)
	for i := 1; i < count; i++ {
		edges = append(edges, min+width*float64(i))
	}
	return edges, nil
}

// NewHistogram counts series into the classes defined by ascending edges.
// With k edges there are k+1 bins: below the first edge, each interval
// between edges, and at or beyond the last edge.
func NewHistogram(series [][]float64, edges []float64, upperInclusive bool) (*Histogram, error) {
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, errors.InvalidField("bin edges must be strictly ascending")
		}
	}
	h := &Histogram{UpperInclusive: upperInclusive}
	h.Bins = make([]Bin, len(edges)+1)
	for b := range h.Bins {
		if b == 0 {
			h.Bins[b].OpenLower = true
		} else {
			h.Bins[b].Lower = edges[b-1]
		}
		if b == len(edges) {
			h.Bins[b].OpenUpper = true
		} else {
			h.Bins[b].Upper = edges[b]
		}
	}

	h.Counts = make([][]int, len(series))
	for s, xs := range series {
		h.Counts[s] = make([]int, len(h.Bins))
		for _, v := range xs {
			h.Counts[s][h.locate(edges, v)]++
		}
	}
	h.Order = make([]int, len(h.Bins))
	for i := range h.Order {
		h.Order[i] = i
	}
	return h, nil
}

func (h *Histogram) locate(edges []float64, v float64) int {
	if h.UpperInclusive {
		// first edge >= v
		return sort.SearchFloat64s(edges, v)
	}
	// first edge > v
	return sort.Search(len(edges), func(i int) bool { return edges[i] > v })
}

// Pareto orders bins by descending count of the first series, breaking
// ties with the following series and finally by bin order
func (h *Histogram) Pareto() {
	sort.SliceStable(h.Order, func(i, j int) bool {
		a, b := h.Order[i], h.Order[j]
		for s := range h.Counts {
			if h.Counts[s][a] != h.Counts[s][b] {
				return h.Counts[s][a] > h.Counts[s][b]
			}
		}
		return a < b
	})
}

// Total is the number of values of series s
func (h *Histogram) Total(s int) int {
	t := 0
	for _, c := range h.Counts[s] {
		t += c
	}
	return t
}

// Percentages returns count/total per bin in display order, plus the
// running cumulative percentage
func (h *Histogram) Percentages(s int) (pct, cum []float64) {
	total := float64(h.Total(s))
	pct = make([]float64, len(h.Order))
	cum = make([]float64, len(h.Order))
	run := 0.0
	for i, b := range h.Order {
		if total > 0 {
			pct[i] = float64(h.Counts[s][b]) / total
		}
		run += pct[i]
		cum[i] = run
	}
	return pct, cum
}
