package analysis

import (
	"fmt"
	"math"

	domain "statkit/domain/dataset"
	"statkit/domain/formula"
	"statkit/internal/dataset"
	"statkit/ports"
)

// Input is the data description every tool starts from
type Input struct {
	Source       ports.CellSource
	Ranges       []domain.Range
	GroupBy      domain.GroupBy
	Labels       bool
	ContextSheet string
	// Formulas asks tools that support it to emit live expressions
	Formulas bool
	// Registry resolves function names for formula output; nil uses the
	// built-in registry
	Registry ports.FunctionRegistry
}

// base carries the state shared by all tools
type base struct {
	Input
	sets     []domain.DataSet
	warnings []string
}

func (b *base) warn(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

// Warnings implements Warner
func (b *base) Warnings() []string { return b.warnings }

// CleanUp implements Cleaner
func (b *base) CleanUp() { b.sets = nil }

// read extracts the input data sets. ignoreNonNumeric skips blanks and text
// instead of failing on them.
func (b *base) read(ignoreNonNumeric bool) error {
	sets, err := dataset.Extract(b.Source, b.Ranges, dataset.Options{
		GroupBy:          b.GroupBy,
		IgnoreNonNumeric: ignoreNonNumeric,
		ReadLabels:       b.Labels,
		ContextSheet:     b.ContextSheet,
	})
	if err != nil {
		return err
	}
	b.sets = sets
	return nil
}

func (b *base) resolver() *formula.Resolver {
	if b.Registry == nil {
		return formula.NewResolver(formula.DefaultRegistry())
	}
	return formula.NewResolver(b.Registry)
}

// values returns the numeric content of every set
func (b *base) values() [][]float64 {
	out := make([][]float64, len(b.sets))
	for i := range b.sets {
		out[i] = b.sets[i].Values
	}
	return out
}

// setValue writes v, or #N/A when v is not a finite number
func setValue(sink ports.OutputSink, col, row int, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		sink.SetCellNA(col, row)
		return
	}
	sink.SetCellFloat(col, row, v)
}

// setExpr writes e when formulas are on, otherwise its value
func setExpr(sink ports.OutputSink, col, row int, formulas bool, e formula.Expr, v float64) {
	if !formulas {
		setValue(sink, col, row, v)
		return
	}
	sink.SetCellExpr(col, row, e, v)
}

// labelColumn writes labels down column col starting at row
func labelColumn(sink ports.OutputSink, col, row int, labels ...string) {
	for i, l := range labels {
		sink.SetCellText(col, row+i, l)
	}
}

// headerRow writes labels across row starting at col
func headerRow(sink ports.OutputSink, col, row int, labels ...string) {
	for i, l := range labels {
		sink.SetCellText(col+i, row, l)
	}
}

// percent formats a confidence level as in "95%"
func percent(level float64) string {
	return fmt.Sprintf("%g%%", level*100)
}

// measure is an OutputSink that only records the extent of what is written.
// Tools with data-dependent layouts run their writer against it to size
// the output range.
type measure struct {
	cols, rows int
}

func (m *measure) touch(col, row int) {
	m.cols = max(m.cols, col+1)
	m.rows = max(m.rows, row+1)
}

func (m *measure) Prepare(cols, rows int) error         { return nil }
func (m *measure) SetCellFloat(col, row int, v float64) { m.touch(col, row) }
func (m *measure) SetCellText(col, row int, s string)   { m.touch(col, row) }
func (m *measure) SetCellNA(col, row int)               { m.touch(col, row) }
func (m *measure) SetComment(col, row int, text string) { m.touch(col, row) }
func (m *measure) SetItalic(r ports.Region)             { m.touch(r.Col1, r.Row1) }
func (m *measure) SetPercentFormat(r ports.Region)      { m.touch(r.Col1, r.Row1) }
func (m *measure) Err() error                           { return nil }
func (m *measure) SetCellExpr(col, row int, e formula.Expr, v float64) {
	m.touch(col, row)
}
func (m *measure) SetCellArrayExpr(col, row, cols, rows int, e formula.Expr) {
	m.touch(col+cols-1, row+rows-1)
}

// sizeOf runs write against a measuring sink
func sizeOf(write func(ports.OutputSink)) Size {
	m := &measure{}
	write(m)
	return Size{Cols: m.cols, Rows: m.rows}
}
