package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	domain "statkit/domain/dataset"
	"statkit/internal/dataset"
	"statkit/internal/errors"
	"statkit/internal/stats"
	"statkit/ports"
)

// Histogram counts each series into bins taken from a range of edges or
// spread evenly between a minimum and a maximum
type Histogram struct {
	base
	// Bins, when set, holds one ascending edge per cell
	Bins *domain.Range
	// BinCount bins are used when Bins is nil. Min and Max default to the
	// data extent.
	BinCount       int
	Min, Max       *float64
	UpperInclusive bool
	Pareto         bool
	Percentage     bool
	Cumulative     bool

	hist *stats.Histogram
}

// NewHistogram returns a ten bin histogram
func NewHistogram(in Input) *Histogram { return &Histogram{base: base{Input: in}, BinCount: 10} }

func (t *Histogram) Descriptor() string { return "Histogram" }

func (t *Histogram) width() int {
	w := 1
	if t.Percentage {
		w++
	}
	if t.Cumulative {
		w++
	}
	return w
}

func (t *Histogram) edges() ([]float64, error) {
	if t.Bins != nil {
		sets, err := dataset.Extract(t.Source, []domain.Range{*t.Bins}, dataset.Options{
			GroupBy:          domain.ByBin,
			IgnoreNonNumeric: true,
			ContextSheet:     t.ContextSheet,
		})
		if err != nil {
			return nil, errors.Wrap(err, "bin range")
		}
		edges := make([]float64, len(sets))
		for i := range sets {
			edges[i] = sets[i].Values[0]
		}
		return edges, nil
	}

	var all []float64
	for i := range t.sets {
		all = append(all, t.sets[i].Values...)
	}
	if len(all) == 0 && (t.Min == nil || t.Max == nil) {
		return nil, errors.NotEnoughData("histogram input has no numbers")
	}
	lo, hi := math.NaN(), math.NaN()
	if len(all) > 0 {
		lo, hi = floats.Min(all), floats.Max(all)
	}
	if t.Min != nil {
		lo = *t.Min
	}
	if t.Max != nil {
		hi = *t.Max
	}
	return stats.Edges(lo, hi, t.BinCount)
}

func (t *Histogram) UpdateDAO(ctx context.Context) (Size, error) {
	if err := t.read(true); err != nil {
		return Size{}, err
	}
	edges, err := t.edges()
	if err != nil {
		return Size{}, err
	}
	hist, err := stats.NewHistogram(t.values(), edges, t.UpperInclusive)
	if err != nil {
		return Size{}, err
	}
	if t.Pareto {
		hist.Pareto()
	}
	t.hist = hist
	return Size{Cols: 1 + t.width()*len(t.sets), Rows: 1 + len(hist.Bins)}, nil
}

// binLabel renders a class as "<1", "[1,2)" or ">=2", or their
// upper-inclusive forms "<=1", "(1,2]" and ">2"
func binLabel(b stats.Bin, upperInclusive bool) string {
	switch {
	case b.OpenLower && b.OpenUpper:
		return "All"
	case b.OpenLower && upperInclusive:
		return fmt.Sprintf("<=%g", b.Upper)
	case b.OpenLower:
		return fmt.Sprintf("<%g", b.Upper)
	case b.OpenUpper && upperInclusive:
		return fmt.Sprintf(">%g", b.Lower)
	case b.OpenUpper:
		return fmt.Sprintf(">=%g", b.Lower)
	case upperInclusive:
		return fmt.Sprintf("(%g,%g]", b.Lower, b.Upper)
	default:
		return fmt.Sprintf("[%g,%g)", b.Lower, b.Upper)
	}
}

func (t *Histogram) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	h := t.hist
	sink.SetCellText(0, 0, "Bin")
	for i, b := range h.Order {
		sink.SetCellText(0, i+1, binLabel(h.Bins[b], h.UpperInclusive))
	}
	for s := range t.sets {
		col := 1 + s*t.width()
		sink.SetCellText(col, 0, t.sets[s].Label)
		pct, cum := h.Percentages(s)
		for i, b := range h.Order {
			c := col
			sink.SetCellFloat(c, i+1, float64(h.Counts[s][b]))
			if t.Percentage {
				c++
				sink.SetCellFloat(c, i+1, pct[i])
			}
			if t.Cumulative {
				c++
				sink.SetCellFloat(c, i+1, cum[i])
			}
		}
		c := col
		if t.Percentage {
			c++
			sink.SetCellText(c, 0, "%")
		}
		if t.Cumulative {
			c++
			sink.SetCellText(c, 0, "Cumulative %")
		}
	}
	return nil
}

func (t *Histogram) FormatOutputRange(sink ports.OutputSink) error {
	sink.SetItalic(ports.Rect(0, 0, t.width()*len(t.sets), 0))
	if t.width() > 1 {
		rows := len(t.hist.Bins)
		for s := range t.sets {
			col := 1 + s*t.width()
			sink.SetPercentFormat(ports.Rect(col+1, 1, col+t.width()-1, rows))
		}
	}
	return nil
}
