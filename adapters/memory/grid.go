package memory

import (
	"fmt"
	"math"
	"strconv"
	"sync"

	"statkit/domain/formula"
	"statkit/internal/errors"
	"statkit/ports"
)

// GridCell is one written output cell
type GridCell struct {
	Value   float64 `json:"value,omitempty"`
	Text    string  `json:"text,omitempty"`
	Formula string  `json:"formula,omitempty"`
	NA      bool    `json:"na,omitempty"`
	Italic  bool    `json:"italic,omitempty"`
	Percent bool    `json:"percent,omitempty"`
	Comment string  `json:"comment,omitempty"`
	// Numeric is true when Value holds the cell content
	Numeric bool `json:"numeric,omitempty"`
	// ArrayCols and ArrayRows are set on the anchor of an array formula
	ArrayCols int `json:"array_cols,omitempty"`
	ArrayRows int `json:"array_rows,omitempty"`
}

// String renders the cell the way a CSV export would
func (c GridCell) String() string {
	switch {
	case c.NA:
		return "#N/A"
	case c.Numeric:
		return strconv.FormatFloat(c.Value, 'g', -1, 64)
	default:
		return c.Text
	}
}

// Grid is an OutputSink backed by memory. Writes outside the prepared area
// are recorded as the sink error.
type Grid struct {
	mu     sync.Mutex
	cols   int
	rows   int
	cells  map[[2]int]*GridCell
	err    error
	frozen bool
}

// NewGrid returns an unprepared grid
func NewGrid() *Grid { return &Grid{cells: make(map[[2]int]*GridCell)} }

var _ ports.OutputSink = (*Grid)(nil)

func (g *Grid) Prepare(cols, rows int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cols < 1 || rows < 1 {
		return errors.Newf(errors.CodeInternalError, "cannot prepare a %dx%d grid", cols, rows)
	}
	g.cols, g.rows = cols, rows
	g.frozen = true
	return nil
}

// Prepared reports whether Prepare has been called
func (g *Grid) Prepared() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.frozen
}

// Size is the prepared extent
func (g *Grid) Size() (cols, rows int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cols, g.rows
}

func (g *Grid) fail(err error) {
	if g.err == nil {
		g.err = err
	}
}

// at returns the cell for writing, or nil after recording an error
func (g *Grid) at(col, row int) *GridCell {
	if !g.frozen {
		g.fail(errors.InternalError("write before Prepare"))
		return nil
	}
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		g.fail(errors.Newf(errors.CodeInternalError, "cell (%d,%d) outside the %dx%d output", col, row, g.cols, g.rows))
		return nil
	}
	key := [2]int{col, row}
	c, ok := g.cells[key]
	if !ok {
		c = &GridCell{}
		g.cells[key] = c
	}
	return c
}

func (g *Grid) SetCellFloat(col, row int, v float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c := g.at(col, row); c != nil {
		*c = GridCell{Value: v, Numeric: true, Italic: c.Italic, Percent: c.Percent, Comment: c.Comment}
	}
}

func (g *Grid) SetCellText(col, row int, s string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c := g.at(col, row); c != nil {
		*c = GridCell{Text: s, Italic: c.Italic, Percent: c.Percent, Comment: c.Comment}
	}
}

func (g *Grid) SetCellExpr(col, row int, e formula.Expr, value float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c := g.at(col, row); c != nil {
		*c = GridCell{Formula: "=" + e.String(), Value: value, Numeric: !math.IsNaN(value),
			Italic: c.Italic, Percent: c.Percent, Comment: c.Comment}
	}
}

func (g *Grid) SetCellArrayExpr(col, row, cols, rows int, e formula.Expr) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.at(col+cols-1, row+rows-1) == nil {
		return
	}
	if c := g.at(col, row); c != nil {
		c.Formula = "{=" + e.String() + "}"
		c.ArrayCols, c.ArrayRows = cols, rows
	}
}

func (g *Grid) SetCellNA(col, row int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c := g.at(col, row); c != nil {
		*c = GridCell{NA: true, Italic: c.Italic, Percent: c.Percent, Comment: c.Comment}
	}
}

func (g *Grid) region(r ports.Region, apply func(*GridCell)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for row := r.Row0; row <= r.Row1; row++ {
		for col := r.Col0; col <= r.Col1; col++ {
			if c := g.at(col, row); c != nil {
				apply(c)
			}
		}
	}
}

func (g *Grid) SetItalic(r ports.Region) { g.region(r, func(c *GridCell) { c.Italic = true }) }

func (g *Grid) SetPercentFormat(r ports.Region) { g.region(r, func(c *GridCell) { c.Percent = true }) }

func (g *Grid) SetComment(col, row int, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c := g.at(col, row); c != nil {
		c.Comment = text
	}
}

func (g *Grid) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Cell returns a copy of the cell at (col, row); unwritten cells are zero
func (g *Grid) Cell(col, row int) GridCell {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.cells[[2]int{col, row}]; ok {
		return *c
	}
	return GridCell{}
}

// Float returns the number at (col, row) and whether the cell holds one
func (g *Grid) Float(col, row int) (float64, bool) {
	c := g.Cell(col, row)
	return c.Value, c.Numeric
}

// Text returns the text at (col, row)
func (g *Grid) Text(col, row int) string { return g.Cell(col, row).Text }

// Written is the number of cells that received content or formatting
func (g *Grid) Written() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.cells)
}

// Rows renders the grid as strings, row by row
func (g *Grid) Rows() [][]string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([][]string, g.rows)
	for row := range out {
		out[row] = make([]string, g.cols)
		for col := range out[row] {
			if c, ok := g.cells[[2]int{col, row}]; ok {
				out[row][col] = c.String()
			}
		}
	}
	return out
}

// Cells renders the grid as cell records, row by row. Non-finite values
// are moved to Text so every record encodes as JSON.
func (g *Grid) Cells() [][]GridCell {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([][]GridCell, g.rows)
	for row := range out {
		out[row] = make([]GridCell, g.cols)
		for col := range out[row] {
			c, ok := g.cells[[2]int{col, row}]
			if !ok {
				continue
			}
			cell := *c
			if math.IsNaN(cell.Value) || math.IsInf(cell.Value, 0) {
				if cell.Numeric {
					cell.Text = cell.String()
				}
				cell.Value, cell.Numeric = 0, false
			}
			out[row][col] = cell
		}
	}
	return out
}

func (g *Grid) String() string {
	cols, rows := g.Size()
	return fmt.Sprintf("grid %dx%d", cols, rows)
}
