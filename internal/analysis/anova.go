package analysis

import (
	"context"
	"fmt"
	"math"

	domain "statkit/domain/dataset"
	"statkit/internal/errors"
	"statkit/internal/stats"
	"statkit/ports"
)

var (
	summaryHeader = []string{"Count", "Sum", "Average", "Variance"}
	anovaHeader   = []string{"Source of Variation", "SS", "df", "MS", "F", "P-value", "F critical"}
)

func writeSummary(sink ports.OutputSink, col, row int, label string, g stats.GroupSummary) {
	sink.SetCellText(col, row, label)
	sink.SetCellFloat(col+1, row, float64(g.Count))
	sink.SetCellFloat(col+2, row, g.Sum)
	setValue(sink, col+3, row, g.Mean)
	setValue(sink, col+4, row, g.Variance)
}

// writeSources writes the ANOVA block starting at row and returns the next
// free row. The total line is separated by a blank row.
func writeSources(sink ports.OutputSink, row int, sources []stats.SourceRow) int {
	sink.SetCellText(0, row, "ANOVA")
	row++
	headerRow(sink, 0, row, anovaHeader...)
	row++
	for i, s := range sources {
		if i == len(sources)-1 {
			row++
		}
		sink.SetCellText(0, row, s.Source)
		setValue(sink, 1, row, s.SS)
		setValue(sink, 2, row, s.DF)
		if i < len(sources)-1 {
			setValue(sink, 3, row, s.MS)
		}
		if !math.IsNaN(s.F) {
			setValue(sink, 4, row, s.F)
			setValue(sink, 5, row, s.P)
			setValue(sink, 6, row, s.FCrit)
		}
		row++
	}
	return row
}

// AnovaSingle is the single factor analysis of variance
type AnovaSingle struct {
	base
	Alpha float64

	table *stats.AnovaTable
}

// NewAnovaSingle returns the tool with alpha 0.05
func NewAnovaSingle(in Input) *AnovaSingle {
	return &AnovaSingle{base: base{Input: in}, Alpha: 0.05}
}

func (t *AnovaSingle) Descriptor() string { return "Anova: Single Factor" }

func (t *AnovaSingle) UpdateDAO(ctx context.Context) (Size, error) {
	if err := checkAlpha(t.Alpha); err != nil {
		return Size{}, err
	}
	if err := t.read(true); err != nil {
		return Size{}, err
	}
	table, err := stats.AnovaSingleFactor(t.values(), t.Alpha)
	if err != nil {
		return Size{}, err
	}
	t.table = table
	return sizeOf(t.write), nil
}

func (t *AnovaSingle) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	t.write(sink)
	return nil
}

func (t *AnovaSingle) write(sink ports.OutputSink) {
	sink.SetCellText(0, 0, t.Descriptor())
	sink.SetCellText(0, 2, "SUMMARY")
	headerRow(sink, 0, 3, append([]string{"Groups"}, summaryHeader...)...)
	row := 4
	for i, g := range t.table.Rows {
		writeSummary(sink, 0, row, t.sets[i].Label, g)
		row++
	}
	writeSources(sink, row+1, t.table.Sources)
}

func (t *AnovaSingle) FormatOutputRange(sink ports.OutputSink) error {
	sink.SetItalic(ports.Rect(0, 3, 4, 3))
	return nil
}

// AnovaTwo is the two factor analysis of variance. The single input area
// holds column labels in its first row and row labels in its first column.
// Replication rows form one level of the row factor.
type AnovaTwo struct {
	base
	Alpha       float64
	Replication int

	data      [][]float64
	rowLabels []string
	colLabels []string
	table     *stats.AnovaTable
}

// NewAnovaTwo returns the tool without replication
func NewAnovaTwo(in Input) *AnovaTwo {
	return &AnovaTwo{base: base{Input: in}, Alpha: 0.05, Replication: 1}
}

func (t *AnovaTwo) Descriptor() string {
	if t.Replication > 1 {
		return "Anova: Two-Factor With Replication"
	}
	return "Anova: Two-Factor Without Replication"
}

func (t *AnovaTwo) UpdateDAO(ctx context.Context) (Size, error) {
	if err := checkAlpha(t.Alpha); err != nil {
		return Size{}, err
	}
	if len(t.Ranges) != 1 {
		return Size{}, errors.InvalidField("two factor ANOVA takes exactly one input area")
	}
	if err := t.readArea(t.Ranges[0].Normalize()); err != nil {
		return Size{}, err
	}
	if t.Replication < 1 || len(t.data)%t.Replication != 0 {
		return Size{}, errors.Newf(errors.CodeReplicationInvalid,
			"%d data rows cannot be split into groups of %d", len(t.data), t.Replication)
	}

	var err error
	if t.Replication == 1 {
		t.table, err = stats.AnovaTwoFactor(t.data, t.Alpha)
	} else {
		t.table, err = stats.AnovaTwoFactorReplicated(t.data, t.Replication, t.Alpha)
	}
	if err != nil {
		return Size{}, err
	}
	if t.table.Imputed > 0 {
		t.warn("%d missing observations replaced by their cell mean", t.table.Imputed)
	}
	return sizeOf(t.write), nil
}

func (t *AnovaTwo) readArea(r domain.Range) error {
	sheet := r.Sheet
	if sheet == "" {
		sheet = t.ContextSheet
	}
	t.data, t.rowLabels, t.colLabels = nil, nil, nil
	r0, c0 := r.StartRow, r.StartCol
	if t.Labels {
		r0++
		c0++
		for c := c0; c <= r.EndCol; c++ {
			t.colLabels = append(t.colLabels, t.Source.Cell(sheet, c, r.StartRow).String())
		}
	}
	if r0 > r.EndRow || c0 > r.EndCol {
		return errors.TooFewRows("input area holds no data")
	}
	for row := r0; row <= r.EndRow; row++ {
		if t.Labels {
			t.rowLabels = append(t.rowLabels, t.Source.Cell(sheet, r.StartCol, row).String())
		}
		vals := make([]float64, 0, r.EndCol-c0+1)
		for col := c0; col <= r.EndCol; col++ {
			cell := t.Source.Cell(sheet, col, row)
			switch {
			case cell.IsNumeric():
				vals = append(vals, cell.Number)
			case cell.Kind == domain.CellEmpty:
				vals = append(vals, math.NaN())
			default:
				return errors.Newf(errors.CodeMissingData, "non-numeric data at %s", domain.CellName(col, row, false))
			}
		}
		t.data = append(t.data, vals)
	}
	if !t.Labels {
		for i := range t.data[0] {
			t.colLabels = append(t.colLabels, domain.ByColumn.DefaultLabel(i+1))
		}
		for i := range t.data {
			t.rowLabels = append(t.rowLabels, domain.ByRow.DefaultLabel(i+1))
		}
	}
	return nil
}

func (t *AnovaTwo) levelLabel(i int) string {
	if t.Replication == 1 {
		return t.rowLabels[i]
	}
	label := t.rowLabels[i*t.Replication]
	if label == "" {
		label = fmt.Sprintf("Sample %d", i+1)
	}
	return label
}

func (t *AnovaTwo) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	t.write(sink)
	return nil
}

func (t *AnovaTwo) write(sink ports.OutputSink) {
	sink.SetCellText(0, 0, t.Descriptor())
	row := 2
	if t.Replication == 1 {
		headerRow(sink, 0, row, append([]string{"SUMMARY"}, summaryHeader...)...)
		row++
		for i, g := range t.table.Rows {
			writeSummary(sink, 0, row, t.levelLabel(i), g)
			row++
		}
		row++
		for j, g := range t.table.Columns {
			writeSummary(sink, 0, row, t.colLabels[j], g)
			row++
		}
	} else {
		headerRow(sink, 0, row, append(append([]string{"SUMMARY"}, t.colLabels...), "Total")...)
		row++
		for i, cells := range t.table.Cells {
			sink.SetCellText(0, row, t.levelLabel(i))
			row++
			row = t.writeBlock(sink, row, cells, t.table.Rows[i])
		}
		sink.SetCellText(0, row, "Total")
		row++
		for k, label := range summaryHeader {
			sink.SetCellText(0, row+k, label)
		}
		for j, g := range t.table.Columns {
			writeColumnSummary(sink, j+1, row, g)
		}
		row += len(summaryHeader)
	}
	writeSources(sink, row+1, t.table.Sources)
}

func (t *AnovaTwo) writeBlock(sink ports.OutputSink, row int, cells []stats.GroupSummary, total stats.GroupSummary) int {
	for k, label := range summaryHeader {
		sink.SetCellText(0, row+k, label)
	}
	for j, g := range cells {
		writeColumnSummary(sink, j+1, row, g)
	}
	writeColumnSummary(sink, len(cells)+1, row, total)
	return row + len(summaryHeader) + 1
}

func writeColumnSummary(sink ports.OutputSink, col, row int, g stats.GroupSummary) {
	sink.SetCellFloat(col, row, float64(g.Count))
	sink.SetCellFloat(col, row+1, g.Sum)
	setValue(sink, col, row+2, g.Mean)
	setValue(sink, col, row+3, g.Variance)
}

func (t *AnovaTwo) FormatOutputRange(sink ports.OutputSink) error {
	last := len(summaryHeader)
	if t.Replication > 1 {
		last = len(t.colLabels) + 1
	}
	sink.SetItalic(ports.Rect(0, 2, last, 2))
	return nil
}

func checkAlpha(alpha float64) error {
	if alpha <= 0 || alpha >= 1 {
		return errors.InvalidField("alpha must be in (0,1)")
	}
	return nil
}
