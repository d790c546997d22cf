package analysis

import (
	"context"

	domain "statkit/domain/dataset"
	"statkit/internal/dataset"
	"statkit/internal/errors"
	"statkit/internal/stats"
	"statkit/ports"
)

// Regression fits Y on the input variables by least squares
type Regression struct {
	base
	// Y is the response range, read with the same label setting as the
	// explanatory variables
	Y          domain.Range
	Intercept  bool
	Confidence float64
	Residuals  bool

	y      domain.DataSet
	result *stats.Regression
}

// NewRegression returns the tool fitting an intercept at 95% confidence
func NewRegression(in Input, y domain.Range) *Regression {
	return &Regression{base: base{Input: in}, Y: y, Intercept: true, Confidence: 0.95}
}

func (t *Regression) Descriptor() string { return "Regression" }

func (t *Regression) UpdateDAO(ctx context.Context) (Size, error) {
	if t.Confidence <= 0 || t.Confidence >= 1 {
		return Size{}, errors.InvalidField("confidence level must be in (0,1)")
	}
	if err := t.read(true); err != nil {
		return Size{}, err
	}
	ys, err := dataset.Extract(t.Source, []domain.Range{t.Y}, dataset.Options{
		GroupBy:          domain.ByArea,
		IgnoreNonNumeric: true,
		ReadLabels:       t.Labels && t.Y.Height() > 1,
		ContextSheet:     t.ContextSheet,
	})
	if err != nil {
		return Size{}, err
	}
	if !t.Labels || t.Y.Height() < 2 {
		ys[0].Label = "Y"
	}
	// Observations missing from the response or any variable are dropped
	// from all of them.
	all, err := dataset.StripMissing(append(ys, t.sets...))
	if err != nil {
		return Size{}, err
	}
	t.y, t.sets = all[0], all[1:]
	if len(t.y.Missing) > 0 {
		t.warn("%d observations with blank or text cells were excluded", len(t.y.Missing))
	}

	if t.result, err = stats.Regress(t.values(), t.y.Values, t.Intercept, t.Confidence); err != nil {
		return Size{}, err
	}
	if t.result.NearSingular {
		t.warn("%s: the explanatory variables are nearly collinear", errors.CodeNearSingular)
	}
	return sizeOf(t.write), nil
}

func (t *Regression) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	t.write(sink)
	return nil
}

func (t *Regression) write(sink ports.OutputSink) {
	r := t.result
	sink.SetCellText(0, 0, "SUMMARY OUTPUT")
	sink.SetCellText(0, 2, "Regression Statistics")
	w := &rowWriter{sink: sink, row: 3}
	w.single("Multiple R", r.MultipleR())
	w.single("R Square", r.SqrR)
	w.single("Adjusted R Square", r.AdjSqrR)
	w.single("Standard Error", r.StdErr())
	w.single("Observations", float64(r.N))

	row := w.row + 1
	sink.SetCellText(0, row, "ANOVA")
	headerRow(sink, 1, row+1, "df", "SS", "MS", "F", "Significance F")
	labelColumn(sink, 0, row+2, "Regression", "Residual", "Total")
	setValue(sink, 1, row+2, r.DFReg)
	setValue(sink, 2, row+2, r.SSReg)
	setValue(sink, 3, row+2, r.MSReg)
	setValue(sink, 4, row+2, r.F)
	setValue(sink, 5, row+2, r.SigF)
	setValue(sink, 1, row+3, r.DFResid)
	setValue(sink, 2, row+3, r.SSResid)
	setValue(sink, 3, row+3, r.MSResid)
	setValue(sink, 1, row+4, r.DFTotal)
	setValue(sink, 2, row+4, r.SSTotal)

	row += 6
	level := percent(t.Confidence)
	headerRow(sink, 1, row, "Coefficients", "Standard Error", "t Stat", "P-value", "Lower "+level, "Upper "+level)
	row++
	names := make([]string, 0, len(r.Coef))
	if r.Intercept {
		names = append(names, "Intercept")
	}
	for i := range t.sets {
		names = append(names, t.sets[i].Label)
	}
	for i, name := range names {
		sink.SetCellText(0, row, name)
		setValue(sink, 1, row, r.Coef[i])
		setValue(sink, 2, row, r.SE[i])
		setValue(sink, 3, row, r.T[i])
		setValue(sink, 4, row, r.P[i])
		setValue(sink, 5, row, r.Lower[i])
		setValue(sink, 6, row, r.Upper[i])
		row++
	}

	if !t.Residuals {
		return
	}
	row++
	sink.SetCellText(0, row, "RESIDUAL OUTPUT")
	headerRow(sink, 0, row+1, "Observation", "Predicted "+t.y.Label, "Residuals")
	row += 2
	for i, e := range r.Residuals {
		sink.SetCellFloat(0, row+i, float64(i+1))
		sink.SetCellFloat(1, row+i, t.y.Values[i]-e)
		sink.SetCellFloat(2, row+i, e)
	}
}

func (t *Regression) FormatOutputRange(sink ports.OutputSink) error {
	sink.SetItalic(ports.Rect(0, 2, 0, 2))
	return nil
}
