// Package memory provides in-process collaborators: a cell source backed by
// Go values, an output grid, and a function-driven live cell oracle.
package memory

import (
	"strconv"
	"strings"

	"statkit/domain/dataset"
)

// Workbook is a set of named sheets implementing ports.CellSource
type Workbook struct {
	sheets       map[string]*Sheet
	defaultSheet string
}

// Sheet is a rectangular grid of cells, rows first
type Sheet struct {
	Name  string
	cells [][]dataset.Cell
}

// NewWorkbook creates an empty workbook whose default sheet is name
func NewWorkbook(name string) *Workbook {
	wb := &Workbook{sheets: make(map[string]*Sheet), defaultSheet: name}
	wb.AddSheet(name, nil)
	return wb
}

// FromRows builds a single-sheet workbook. Values may be float64, int,
// string, bool or nil; strings that parse as numbers become numbers.
func FromRows(sheet string, rows [][]any) *Workbook {
	wb := &Workbook{sheets: make(map[string]*Sheet), defaultSheet: sheet}
	wb.AddSheet(sheet, rows)
	return wb
}

// FromColumns is FromRows with the data given column by column
func FromColumns(sheet string, cols ...[]any) *Workbook {
	height := 0
	for _, c := range cols {
		if len(c) > height {
			height = len(c)
		}
	}
	rows := make([][]any, height)
	for r := range rows {
		rows[r] = make([]any, len(cols))
		for c := range cols {
			if r < len(cols[c]) {
				rows[r][c] = cols[c][r]
			}
		}
	}
	return FromRows(sheet, rows)
}

// FromStrings builds a sheet from text records such as CSV rows
func FromStrings(sheet string, records [][]string) *Workbook {
	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = make([]any, len(rec))
		for j, s := range rec {
			rows[i][j] = s
		}
	}
	return FromRows(sheet, rows)
}

// AddSheet adds or replaces a sheet
func (wb *Workbook) AddSheet(name string, rows [][]any) *Sheet {
	s := &Sheet{Name: name}
	for _, row := range rows {
		cells := make([]dataset.Cell, len(row))
		for j, v := range row {
			cells[j] = ToCell(v)
		}
		s.cells = append(s.cells, cells)
	}
	wb.sheets[name] = s
	return s
}

// Sheet returns a sheet by name, or the default sheet for ""
func (wb *Workbook) Sheet(name string) (*Sheet, bool) {
	if name == "" {
		name = wb.defaultSheet
	}
	s, ok := wb.sheets[name]
	return s, ok
}

// DefaultSheet returns the name used for unqualified references
func (wb *Workbook) DefaultSheet() string { return wb.defaultSheet }

// Cell implements ports.CellSource. Unknown sheets and positions are empty.
func (wb *Workbook) Cell(sheet string, col, row int) dataset.Cell {
	s, ok := wb.Sheet(sheet)
	if !ok {
		return dataset.Cell{Kind: dataset.CellError, Text: "#REF!"}
	}
	return s.Cell(col, row)
}

// Cell returns the cell at a 0-based position
func (s *Sheet) Cell(col, row int) dataset.Cell {
	if row < 0 || row >= len(s.cells) || col < 0 || col >= len(s.cells[row]) {
		return dataset.Cell{}
	}
	return s.cells[row][col]
}

// Set stores a value at a 0-based position, growing the grid
func (s *Sheet) Set(col, row int, v any) {
	for len(s.cells) <= row {
		s.cells = append(s.cells, nil)
	}
	for len(s.cells[row]) <= col {
		s.cells[row] = append(s.cells[row], dataset.Cell{})
	}
	s.cells[row][col] = ToCell(v)
}

// Bounds returns the used width and height
func (s *Sheet) Bounds() (cols, rows int) {
	for _, r := range s.cells {
		if len(r) > cols {
			cols = len(r)
		}
	}
	return cols, len(s.cells)
}

// ToCell converts a Go value to a cell
func ToCell(v any) dataset.Cell {
	switch x := v.(type) {
	case nil:
		return dataset.Cell{}
	case dataset.Cell:
		return x
	case float64:
		return dataset.NumberCell(x)
	case float32:
		return dataset.NumberCell(float64(x))
	case int:
		return dataset.NumberCell(float64(x))
	case int64:
		return dataset.NumberCell(float64(x))
	case bool:
		return dataset.Cell{Kind: dataset.CellBool, Text: strconv.FormatBool(x)}
	case string:
		return ParseCell(x)
	default:
		return dataset.Cell{Kind: dataset.CellError, Text: "#VALUE!"}
	}
}

// ParseCell classifies spreadsheet text: "" is empty, numbers are numeric,
// "#..." error literals are errors, everything else is text
func ParseCell(s string) dataset.Cell {
	t := strings.TrimSpace(s)
	if t == "" {
		return dataset.Cell{}
	}
	if f, err := strconv.ParseFloat(t, 64); err == nil {
		return dataset.NumberCell(f)
	}
	if strings.HasPrefix(t, "#") && (strings.HasSuffix(t, "!") || strings.HasSuffix(t, "?") || t == "#N/A") {
		return dataset.Cell{Kind: dataset.CellError, Text: t}
	}
	return dataset.TextCell(s)
}
