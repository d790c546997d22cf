package ports

import (
	"statkit/domain/dataset"
)

// CellSource provides read-only access to the cells of the host workbook.
// An empty sheet name addresses the source's default sheet.
type CellSource interface {
	Cell(sheet string, col, row int) dataset.Cell
}

// CellSourceFunc adapts a function to CellSource
type CellSourceFunc func(sheet string, col, row int) dataset.Cell

// Cell calls f
func (f CellSourceFunc) Cell(sheet string, col, row int) dataset.Cell {
	return f(sheet, col, row)
}
