package analysis

import (
	"context"

	"statkit/domain/formula"
	"statkit/internal/dataset"
	"statkit/internal/errors"
	"statkit/internal/stats"
	"statkit/ports"
)

// MatrixKind selects the pairwise statistic of a Matrix tool
type MatrixKind int

const (
	MatrixCorrelation MatrixKind = iota
	MatrixCovariance
)

// Matrix writes the lower triangle of a pairwise correlation or
// covariance matrix
type Matrix struct {
	base
	Kind MatrixKind

	matrix [][]float64
}

// NewCorrelation returns the correlation tool
func NewCorrelation(in Input) *Matrix { return &Matrix{base: base{Input: in}, Kind: MatrixCorrelation} }

// NewCovariance returns the covariance tool
func NewCovariance(in Input) *Matrix { return &Matrix{base: base{Input: in}, Kind: MatrixCovariance} }

func (t *Matrix) Descriptor() string {
	if t.Kind == MatrixCovariance {
		return "Covariance"
	}
	return "Correlation"
}

func (t *Matrix) UpdateDAO(ctx context.Context) (Size, error) {
	if !dataset.CheckInputRangeListHomogeneity(dataset.PrepareInputRange(t.Ranges, t.GroupBy)) {
		return Size{}, errors.InvalidDimensions("all variables must span the same number of cells")
	}
	if err := t.read(true); err != nil {
		return Size{}, err
	}
	sets, err := dataset.StripMissing(t.sets)
	if err != nil {
		return Size{}, err
	}
	t.sets = sets
	if !dataset.CheckDataSetHomogeneity(t.sets) {
		return Size{}, errors.InvalidDimensions("all variables must hold the same number of values")
	}
	n := len(t.sets)
	return Size{Cols: n + 1, Rows: n + 1}, nil
}

func (t *Matrix) LastValidityCheck() error {
	fn := stats.Correlation
	if t.Kind == MatrixCovariance {
		fn = stats.Covariance
	}
	m, err := stats.Matrix(t.values(), fn)
	if err != nil {
		return err
	}
	t.matrix = m
	return nil
}

func (t *Matrix) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	r := t.resolver()
	name := "CORREL"
	if t.Kind == MatrixCovariance {
		name = "COVAR"
	}
	fn := r.Get(name)

	sink.SetCellText(0, 0, t.Descriptor())
	for i := range t.sets {
		sink.SetCellText(i+1, 0, t.sets[i].Label)
		sink.SetCellText(0, i+1, t.sets[i].Label)
		for j := 0; j <= i; j++ {
			e := formula.Apply(fn, formula.RefOf(t.sets[i].Range), formula.RefOf(t.sets[j].Range))
			setExpr(sink, j+1, i+1, t.Formulas && !t.sets[i].HasMissing() && !t.sets[j].HasMissing(), e, t.matrix[i][j])
		}
	}
	return r.Err()
}

func (t *Matrix) FormatOutputRange(sink ports.OutputSink) error {
	n := len(t.sets)
	sink.SetItalic(ports.Rect(1, 0, n, 0))
	sink.SetItalic(ports.Rect(0, 1, 0, n))
	return nil
}
