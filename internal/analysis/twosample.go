package analysis

import (
	"context"

	domain "statkit/domain/dataset"
	"statkit/internal/dataset"
	"statkit/internal/errors"
	"statkit/internal/stats"
	"statkit/ports"
)

// readPair reads exactly two variables. Paired observations missing from
// either variable are dropped from both.
func (b *base) readPair(paired bool) (x, y *domain.DataSet, err error) {
	if err := b.read(true); err != nil {
		return nil, nil, err
	}
	if len(b.sets) != 2 {
		return nil, nil, errors.Newf(errors.CodeInvalidField, "expected two variables, got %d", len(b.sets))
	}
	if paired {
		if b.sets, err = dataset.StripMissing(b.sets); err != nil {
			return nil, nil, err
		}
	}
	return &b.sets[0], &b.sets[1], nil
}

type rowWriter struct {
	sink ports.OutputSink
	row  int
}

func (w *rowWriter) pair(label string, a, b float64) {
	w.sink.SetCellText(0, w.row, label)
	setValue(w.sink, 1, w.row, a)
	setValue(w.sink, 2, w.row, b)
	w.row++
}

func (w *rowWriter) single(label string, v float64) {
	w.sink.SetCellText(0, w.row, label)
	setValue(w.sink, 1, w.row, v)
	w.row++
}

// MeanTest covers the paired, equal variance, unequal variance and z tests
type MeanTest struct {
	base
	Kind     stats.TestKind
	Alpha    float64
	MeanDiff float64
	// Var1 and Var2 are the known variances of a z-test
	Var1, Var2 float64

	result *stats.MeanTest
}

// NewMeanTest returns a tool of the given kind with alpha 0.05
func NewMeanTest(kind stats.TestKind, in Input) *MeanTest {
	return &MeanTest{base: base{Input: in}, Kind: kind, Alpha: 0.05}
}

func (t *MeanTest) Descriptor() string {
	switch t.Kind {
	case stats.TestPaired:
		return "t-Test: Paired Two Sample for Means"
	case stats.TestEqualVariances:
		return "t-Test: Two-Sample Assuming Equal Variances"
	case stats.TestUnequalVariances:
		return "t-Test: Two-Sample Assuming Unequal Variances"
	default:
		return "z-Test: Two Sample for Means"
	}
}

func (t *MeanTest) UpdateDAO(ctx context.Context) (Size, error) {
	if err := checkAlpha(t.Alpha); err != nil {
		return Size{}, err
	}
	x, y, err := t.readPair(t.Kind == stats.TestPaired)
	if err != nil {
		return Size{}, err
	}
	switch t.Kind {
	case stats.TestPaired:
		t.result, err = stats.TTestPaired(x.Values, y.Values, t.MeanDiff, t.Alpha)
	case stats.TestEqualVariances:
		t.result, err = stats.TTestEqualVariances(x.Values, y.Values, t.MeanDiff, t.Alpha)
	case stats.TestUnequalVariances:
		t.result, err = stats.TTestUnequalVariances(x.Values, y.Values, t.MeanDiff, t.Alpha)
	case stats.TestZ:
		t.result, err = stats.ZTest(x.Values, y.Values, t.Var1, t.Var2, t.MeanDiff, t.Alpha)
	default:
		err = errors.Newf(errors.CodeInvalidField, "unknown test kind %d", t.Kind)
	}
	if err != nil {
		return Size{}, err
	}
	return sizeOf(t.write), nil
}

func (t *MeanTest) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	t.write(sink)
	return nil
}

func (t *MeanTest) write(sink ports.OutputSink) {
	r := t.result
	sink.SetCellText(0, 0, t.Descriptor())
	headerRow(sink, 1, 1, t.sets[0].Label, t.sets[1].Label)
	w := &rowWriter{sink: sink, row: 2}
	w.pair("Mean", r.Mean1, r.Mean2)
	if t.Kind == stats.TestZ {
		w.pair("Known Variance", r.Var1, r.Var2)
	} else {
		w.pair("Variance", r.Var1, r.Var2)
	}
	w.pair("Observations", float64(r.N1), float64(r.N2))
	switch t.Kind {
	case stats.TestPaired:
		w.single("Pearson Correlation", r.Pearson)
	case stats.TestEqualVariances:
		w.single("Pooled Variance", r.PooledVar)
	}
	w.single("Hypothesized Mean Difference", r.HypDiff)
	if t.Kind == stats.TestZ {
		w.single("z", r.Stat)
		w.single("P(Z<=z) one-tail", r.POneTail)
		w.single("z Critical one-tail", r.CritOneTail)
		w.single("P(Z<=z) two-tail", r.PTwoTail)
		w.single("z Critical two-tail", r.CritTwoTail)
		return
	}
	w.single("df", r.DF)
	w.single("t Stat", r.Stat)
	w.single("P(T<=t) one-tail", r.POneTail)
	w.single("t Critical one-tail", r.CritOneTail)
	w.single("P(T<=t) two-tail", r.PTwoTail)
	w.single("t Critical two-tail", r.CritTwoTail)
}

func (t *MeanTest) FormatOutputRange(sink ports.OutputSink) error {
	sink.SetItalic(ports.Rect(1, 1, 2, 1))
	return nil
}

// FTest compares two variances
type FTest struct {
	base
	Alpha float64

	result *stats.VarianceTest
}

// NewFTest returns the tool with alpha 0.05
func NewFTest(in Input) *FTest {
	return &FTest{base: base{Input: in}, Alpha: 0.05}
}

func (t *FTest) Descriptor() string { return "F-Test Two-Sample for Variances" }

func (t *FTest) UpdateDAO(ctx context.Context) (Size, error) {
	if err := checkAlpha(t.Alpha); err != nil {
		return Size{}, err
	}
	x, y, err := t.readPair(false)
	if err != nil {
		return Size{}, err
	}
	if t.result, err = stats.FTest(x.Values, y.Values, t.Alpha); err != nil {
		return Size{}, err
	}
	return sizeOf(t.write), nil
}

func (t *FTest) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	t.write(sink)
	return nil
}

func (t *FTest) write(sink ports.OutputSink) {
	r := t.result
	sink.SetCellText(0, 0, t.Descriptor())
	headerRow(sink, 1, 1, t.sets[0].Label, t.sets[1].Label)
	w := &rowWriter{sink: sink, row: 2}
	w.pair("Mean", r.Mean1, r.Mean2)
	w.pair("Variance", r.Var1, r.Var2)
	w.pair("Observations", float64(r.N1), float64(r.N2))
	w.pair("df", r.DF1, r.DF2)
	w.single("F", r.F)
	w.single("P (F<=f) right-tail", r.PRight)
	w.single("F Critical right-tail", r.CritRight)
	w.single("P (F<=f) left-tail", r.PLeft)
	w.single("F Critical left-tail", r.CritLeft)
	w.single("P two-tail", r.PTwoTail)
	w.pair("F Critical two-tail", r.CritTwoLow, r.CritTwoHigh)
}

func (t *FTest) FormatOutputRange(sink ports.OutputSink) error {
	sink.SetItalic(ports.Rect(1, 1, 2, 1))
	return nil
}

// MannWhitney is the Wilcoxon-Mann-Whitney rank-sum test
type MannWhitney struct {
	base
	Alpha float64

	result *stats.MannWhitney
}

// NewMannWhitney returns the tool with alpha 0.05
func NewMannWhitney(in Input) *MannWhitney {
	return &MannWhitney{base: base{Input: in}, Alpha: 0.05}
}

func (t *MannWhitney) Descriptor() string { return "Wilcoxon-Mann-Whitney Test" }

func (t *MannWhitney) UpdateDAO(ctx context.Context) (Size, error) {
	if err := checkAlpha(t.Alpha); err != nil {
		return Size{}, err
	}
	x, y, err := t.readPair(false)
	if err != nil {
		return Size{}, err
	}
	if t.result, err = stats.WilcoxonMannWhitney(x.Values, y.Values); err != nil {
		return Size{}, err
	}
	return sizeOf(t.write), nil
}

func (t *MannWhitney) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	t.write(sink)
	return nil
}

func (t *MannWhitney) write(sink ports.OutputSink) {
	r := t.result
	sink.SetCellText(0, 0, t.Descriptor())
	headerRow(sink, 1, 1, t.sets[0].Label, t.sets[1].Label)
	w := &rowWriter{sink: sink, row: 2}
	w.pair("Rank-Sum", r.RankSum1, r.RankSum2)
	w.pair("N", float64(r.N1), float64(r.N2))
	w.pair("Median Rank", r.MedianRank1, r.MedianRank2)
	w.pair("U-Statistic", r.U1, r.U2)
	w.single("Ties", float64(r.Ties))
	w.single("z-Score", r.Z)
	w.single("p-Value", r.PTwoTail)
	w.single("Alpha", t.Alpha)
}

func (t *MannWhitney) FormatOutputRange(sink ports.OutputSink) error {
	sink.SetItalic(ports.Rect(1, 1, 2, 1))
	return nil
}
