package excel

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"statkit/internal/errors"
	"statkit/ports"
)

// Oracle evaluates cells of one sheet through the excelize calculation
// engine. Formulas are evaluated on read, so Recalc has nothing to do.
type Oracle struct {
	file  *excelize.File
	sheet string
}

var _ ports.LiveCellOracle = (*Oracle)(nil)

// NewOracle returns an oracle over sheet
func NewOracle(f *excelize.File, sheet string) *Oracle {
	return &Oracle{file: f, sheet: sheet}
}

func (o *Oracle) cell(name string) string { return strings.ReplaceAll(name, "$", "") }

func (o *Oracle) SetValue(cell string, v float64) error {
	name := o.cell(cell)
	f, err := o.file.GetCellFormula(o.sheet, name)
	if err != nil {
		return errors.Wrapf(err, "cell %s", cell)
	}
	if f != "" {
		return errors.Newf(errors.CodeInvalidField, "cell %s holds a formula", cell)
	}
	return o.file.SetCellFloat(o.sheet, name, v, -1, 64)
}

func (o *Oracle) Recalc() error { return nil }

func (o *Oracle) Value(cell string) (float64, error) {
	s, err := o.file.CalcCellValue(o.sheet, o.cell(cell), excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, errors.Wrapf(err, "failed to evaluate %s", cell)
	}
	if s == "" {
		return 0, errors.Newf(errors.CodeMissingData, "cell %s is empty", cell)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Newf(errors.CodeMissingData, "cell %s is not numeric: %q", cell, s)
	}
	return v, nil
}
