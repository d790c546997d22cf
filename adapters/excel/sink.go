package excel

import (
	"math"

	"github.com/xuri/excelize/v2"

	"statkit/domain/formula"
	"statkit/internal/errors"
	"statkit/ports"
)

// Sink writes tool output into a sheet of an excelize file, with its top
// left corner at an origin cell
type Sink struct {
	file   *excelize.File
	sheet  string
	author string
	col0   int
	row0   int
	cols   int
	rows   int
	styles map[string]int
	err    error
}

var _ ports.OutputSink = (*Sink)(nil)

// NewSink creates a sink writing to sheet at origin, e.g. "A1". The sheet
// is created by Prepare when missing.
func NewSink(f *excelize.File, sheet, origin string, cfg Config) (*Sink, error) {
	if origin == "" {
		origin = "A1"
	}
	col, row, err := excelize.CellNameToCoordinates(origin)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidField, err)
	}
	return &Sink{
		file:   f,
		sheet:  sheet,
		author: cfg.Author,
		col0:   col - 1,
		row0:   row - 1,
		styles: make(map[string]int),
	}, nil
}

func (s *Sink) Prepare(cols, rows int) error {
	idx, err := s.file.GetSheetIndex(s.sheet)
	if err != nil {
		return errors.Wrapf(err, "sheet %s", s.sheet)
	}
	if idx < 0 {
		if _, err := s.file.NewSheet(s.sheet); err != nil {
			return errors.Wrapf(err, "failed to create sheet %s", s.sheet)
		}
	}
	if _, err := excelize.CoordinatesToCellName(s.col0+cols, s.row0+rows); err != nil {
		return errors.Wrapf(err, "output of %dx%d does not fit the sheet", cols, rows)
	}
	s.cols, s.rows = cols, rows
	return nil
}

func (s *Sink) fail(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

// name converts sink coordinates to a sheet cell name, or "" after
// recording an error
func (s *Sink) name(col, row int) string {
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		s.fail(errors.Newf(errors.CodeInternalError, "cell (%d,%d) outside the %dx%d output", col, row, s.cols, s.rows))
		return ""
	}
	n, err := excelize.CoordinatesToCellName(s.col0+col+1, s.row0+row+1)
	s.fail(err)
	return n
}

func (s *Sink) SetCellFloat(col, row int, v float64) {
	if n := s.name(col, row); n != "" {
		s.fail(s.file.SetCellFloat(s.sheet, n, v, -1, 64))
	}
}

func (s *Sink) SetCellText(col, row int, text string) {
	if n := s.name(col, row); n != "" {
		s.fail(s.file.SetCellStr(s.sheet, n, text))
	}
}

func (s *Sink) SetCellExpr(col, row int, e formula.Expr, value float64) {
	n := s.name(col, row)
	if n == "" {
		return
	}
	if !math.IsNaN(value) && !math.IsInf(value, 0) {
		s.fail(s.file.SetCellFloat(s.sheet, n, value, -1, 64))
	}
	s.fail(s.file.SetCellFormula(s.sheet, n, e.String()))
}

func (s *Sink) SetCellArrayExpr(col, row, cols, rows int, e formula.Expr) {
	first, last := s.name(col, row), s.name(col+cols-1, row+rows-1)
	if first == "" || last == "" {
		return
	}
	kind, ref := excelize.STCellFormulaTypeArray, first+":"+last
	s.fail(s.file.SetCellFormula(s.sheet, first, e.String(), excelize.FormulaOpts{Type: &kind, Ref: &ref}))
}

func (s *Sink) SetCellNA(col, row int) {
	if n := s.name(col, row); n != "" {
		s.fail(s.file.SetCellFormula(s.sheet, n, "NA()"))
	}
}

func (s *Sink) style(key string, st *excelize.Style) (int, bool) {
	if id, ok := s.styles[key]; ok {
		return id, true
	}
	id, err := s.file.NewStyle(st)
	if err != nil {
		s.fail(err)
		return 0, false
	}
	s.styles[key] = id
	return id, true
}

func (s *Sink) apply(r ports.Region, id int) {
	first, last := s.name(r.Col0, r.Row0), s.name(r.Col1, r.Row1)
	if first == "" || last == "" {
		return
	}
	s.fail(s.file.SetCellStyle(s.sheet, first, last, id))
}

func (s *Sink) SetItalic(r ports.Region) {
	if id, ok := s.style("italic", &excelize.Style{Font: &excelize.Font{Italic: true}}); ok {
		s.apply(r, id)
	}
}

// SetPercentFormat uses the built-in 0.00% number format
func (s *Sink) SetPercentFormat(r ports.Region) {
	if id, ok := s.style("percent", &excelize.Style{NumFmt: 10}); ok {
		s.apply(r, id)
	}
}

func (s *Sink) SetComment(col, row int, text string) {
	if n := s.name(col, row); n != "" {
		s.fail(s.file.AddComment(s.sheet, excelize.Comment{Cell: n, Author: s.author, Text: text}))
	}
}

func (s *Sink) Err() error { return s.err }
