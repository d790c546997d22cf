package ports

import (
	"statkit/domain/formula"
)

// Region is an inclusive rectangle of output cells relative to the sink origin
type Region struct {
	Col0, Row0, Col1, Row1 int
}

// Rect builds a region from its corners
func Rect(col0, row0, col1, row1 int) Region {
	return Region{Col0: col0, Row0: row0, Col1: col1, Row1: row1}
}

// OutputSink is the grid tools write their results to. Coordinates are
// 0-based and relative to the area reserved by Prepare. Write methods do not
// return errors; implementations keep the first failure and report it from Err.
type OutputSink interface {
	// Prepare reserves cols x rows cells before any write
	Prepare(cols, rows int) error

	SetCellFloat(col, row int, v float64)
	SetCellText(col, row int, s string)
	// SetCellExpr stores a live formula. value is the number the kernel
	// computed for the same cell, for sinks that cannot recalculate.
	SetCellExpr(col, row int, e formula.Expr, value float64)
	SetCellArrayExpr(col, row, cols, rows int, e formula.Expr)
	SetCellNA(col, row int)

	SetItalic(r Region)
	SetPercentFormat(r Region)
	SetComment(col, row int, text string)

	Err() error
}
