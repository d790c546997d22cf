package analysis

import (
	"context"
	"math"

	"statkit/domain/formula"
	"statkit/internal/errors"
	"statkit/internal/stats"
	"statkit/ports"
)

var summaryLabels = []string{
	"Mean", "Standard Error", "Median", "Mode", "Standard Deviation",
	"Sample Variance", "Kurtosis", "Skewness", "Range", "Minimum",
	"Maximum", "Sum", "Count",
}

// Descriptive writes summary statistics, one column per data set
type Descriptive struct {
	base
	Summary bool
	// Confidence adds the half width of the mean's confidence interval
	// when in (0,1)
	Confidence  float64
	KthLargest  int
	KthSmallest int

	summaries []stats.Summary
}

// NewDescriptive returns the tool with the summary block enabled
func NewDescriptive(in Input) *Descriptive {
	return &Descriptive{base: base{Input: in}, Summary: true}
}

func (t *Descriptive) Descriptor() string { return "Descriptive Statistics" }

func (t *Descriptive) rows() int {
	n := 1
	if t.Summary {
		n += len(summaryLabels)
	}
	if t.Confidence > 0 {
		n++
	}
	if t.KthLargest > 0 {
		n++
	}
	if t.KthSmallest > 0 {
		n++
	}
	return n
}

func (t *Descriptive) UpdateDAO(ctx context.Context) (Size, error) {
	if !t.Summary && t.Confidence <= 0 && t.KthLargest <= 0 && t.KthSmallest <= 0 {
		return Size{}, errors.InvalidField("no statistics selected")
	}
	if t.Confidence >= 1 {
		return Size{}, errors.InvalidField("confidence level must be below 100%")
	}
	if err := t.read(true); err != nil {
		return Size{}, err
	}
	return Size{Cols: 1 + len(t.sets), Rows: t.rows()}, nil
}

func (t *Descriptive) LastValidityCheck() error {
	t.summaries = make([]stats.Summary, len(t.sets))
	for i := range t.sets {
		s, err := stats.Describe(t.sets[i].Values)
		if err != nil {
			return errors.Wrapf(err, "%s", t.sets[i].Label)
		}
		t.summaries[i] = s
	}
	return nil
}

func (t *Descriptive) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	fn := t.resolver()
	average, stdev, count := fn.Get("AVERAGE"), fn.Get("STDEV"), fn.Get("COUNT")
	sqrt, maxF, minF := fn.Get("SQRT"), fn.Get("MAX"), fn.Get("MIN")

	row := 1
	if t.Summary {
		labelColumn(sink, 0, row, summaryLabels...)
	}
	for i := range t.sets {
		ds := &t.sets[i]
		s := t.summaries[i]
		col := i + 1
		ref := formula.RefOf(ds.Range)
		sink.SetCellText(col, 0, ds.Label)

		r := row
		if t.Summary {
			se := formula.Div(formula.Apply(stdev, ref), formula.Apply(sqrt, formula.Apply(count, ref)))
			cells := []struct {
				e formula.Expr
				v float64
			}{
				{formula.Apply(average, ref), s.Mean},
				{se, s.StdErr},
				{formula.Apply(fn.Get("MEDIAN"), ref), s.Median},
				{formula.Apply(fn.Get("MODE"), ref), s.Mode},
				{formula.Apply(stdev, ref), s.StdDev},
				{formula.Apply(fn.Get("VAR"), ref), s.Variance},
				{formula.Apply(fn.Get("KURT"), ref), s.Kurtosis},
				{formula.Apply(fn.Get("SKEW"), ref), s.Skewness},
				{formula.Sub(formula.Apply(maxF, ref), formula.Apply(minF, ref)), s.Range},
				{formula.Apply(minF, ref), s.Min},
				{formula.Apply(maxF, ref), s.Max},
				{formula.Apply(fn.Get("SUM"), ref), s.Sum},
				{formula.Apply(count, ref), float64(s.Count)},
			}
			for k, c := range cells {
				if k == 3 && !s.HasMode {
					sink.SetCellNA(col, r+k)
					continue
				}
				if math.IsNaN(c.v) {
					sink.SetCellNA(col, r+k)
					continue
				}
				setExpr(sink, col, r+k, t.Formulas, c.e, c.v)
			}
			r += len(cells)
		}

		if t.Confidence > 0 {
			sink.SetCellText(0, r, "Confidence Level("+percent(t.Confidence)+")")
			hw, err := stats.ConfidenceHalfWidth(ds.Values, t.Confidence)
			if err != nil {
				t.warn("%s: %v", ds.Label, err)
				sink.SetCellNA(col, r)
			} else {
				tinv := formula.Apply(fn.Get("TINV"), formula.Number(1-t.Confidence),
					formula.Sub(formula.Apply(count, ref), formula.Number(1)))
				e := formula.Mul(tinv, formula.Div(formula.Apply(stdev, ref), formula.Apply(sqrt, formula.Apply(count, ref))))
				setExpr(sink, col, r, t.Formulas, e, hw)
			}
			r++
		}
		for _, k := range []struct {
			label string
			k     int
			fn    string
			calc  func([]float64, int) (float64, error)
		}{
			{"Largest", t.KthLargest, "LARGE", stats.KthLargest},
			{"Smallest", t.KthSmallest, "SMALL", stats.KthSmallest},
		} {
			if k.k <= 0 {
				continue
			}
			sink.SetCellText(0, r, k.label+"("+formula.Number(k.k).String()+")")
			v, err := k.calc(ds.Values, k.k)
			if err != nil {
				t.warn("%s: %v", ds.Label, err)
				sink.SetCellNA(col, r)
			} else {
				setExpr(sink, col, r, t.Formulas, formula.Apply(fn.Get(k.fn), ref, formula.Number(k.k)), v)
			}
			r++
		}
	}
	return fn.Err()
}

func (t *Descriptive) FormatOutputRange(sink ports.OutputSink) error {
	sink.SetItalic(ports.Rect(1, 0, len(t.sets), 0))
	sink.SetItalic(ports.Rect(0, 1, 0, t.rows()-1))
	return nil
}
