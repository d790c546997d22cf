package dataset

import (
	"fmt"
	"strconv"
)

// CellKind classifies the content of a source cell
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
	CellBool
	CellError
)

// Cell is the value a CellSource reports for one grid position
type Cell struct {
	Kind   CellKind
	Number float64
	Text   string
}

// NumberCell builds a numeric cell
func NumberCell(v float64) Cell { return Cell{Kind: CellNumber, Number: v} }

// TextCell builds a text cell
func TextCell(s string) Cell { return Cell{Kind: CellText, Text: s} }

// IsNumeric reports whether the cell holds a number
func (c Cell) IsNumeric() bool { return c.Kind == CellNumber }

// String renders the cell the way it would be shown as a label
func (c Cell) String() string {
	switch c.Kind {
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'g', -1, 64)
	case CellEmpty:
		return ""
	default:
		return c.Text
	}
}

// GroupBy selects how input ranges are sliced into data sets
type GroupBy int

const (
	ByColumn GroupBy = iota
	ByRow
	ByArea
	ByBin
)

// ParseGroupBy maps "rows", "columns", "area" or "bins" to a GroupBy
func ParseGroupBy(s string) (GroupBy, error) {
	switch s {
	case "", "col", "cols", "column", "columns":
		return ByColumn, nil
	case "row", "rows":
		return ByRow, nil
	case "area", "areas":
		return ByArea, nil
	case "bin", "bins":
		return ByBin, nil
	}
	return ByColumn, fmt.Errorf("unknown grouping %q", s)
}

func (g GroupBy) String() string {
	switch g {
	case ByRow:
		return "rows"
	case ByArea:
		return "area"
	case ByBin:
		return "bins"
	default:
		return "columns"
	}
}

// labelFormat is the default label used when a set carries none
func (g GroupBy) labelFormat() string {
	switch g {
	case ByRow:
		return "Row %d"
	case ByArea:
		return "Area %d"
	case ByBin:
		return "Bin %d"
	default:
		return "Column %d"
	}
}

// DefaultLabel synthesizes the label of the index-th (1-based) data set
func (g GroupBy) DefaultLabel(index int) string {
	return fmt.Sprintf(g.labelFormat(), index)
}

// Range is a rectangular block of cells, 0-based and inclusive at both ends
type Range struct {
	Sheet       string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	EndSheet    string `json:"end_sheet,omitempty" yaml:"end_sheet,omitempty"`
	StartCol    int    `json:"start_col" yaml:"start_col"`
	StartRow    int    `json:"start_row" yaml:"start_row"`
	EndCol      int    `json:"end_col" yaml:"end_col"`
	EndRow      int    `json:"end_row" yaml:"end_row"`
	ColRelative bool   `json:"col_relative,omitempty" yaml:"col_relative,omitempty"`
	RowRelative bool   `json:"row_relative,omitempty" yaml:"row_relative,omitempty"`
}

// Width returns the number of columns
func (r Range) Width() int { return r.EndCol - r.StartCol + 1 }

// Height returns the number of rows
func (r Range) Height() int { return r.EndRow - r.StartRow + 1 }

// Cells returns the total cell count
func (r Range) Cells() int { return r.Width() * r.Height() }

// Absolute returns a copy with both relative flags cleared
func (r Range) Absolute() Range {
	r.ColRelative = false
	r.RowRelative = false
	return r
}

// SpansSheets reports a 3-D reference whose end sheet differs from its start
func (r Range) SpansSheets() bool {
	return r.EndSheet != "" && r.EndSheet != r.Sheet
}

// Normalize orders the corners so Start <= End
func (r Range) Normalize() Range {
	if r.StartCol > r.EndCol {
		r.StartCol, r.EndCol = r.EndCol, r.StartCol
	}
	if r.StartRow > r.EndRow {
		r.StartRow, r.EndRow = r.EndRow, r.StartRow
	}
	return r
}

// Cell returns the single-cell range at the given offset inside r
func (r Range) Cell(dCol, dRow int) Range {
	c := r
	c.StartCol += dCol
	c.StartRow += dRow
	c.EndCol = c.StartCol
	c.EndRow = c.StartRow
	return c
}

// DataSet is a numeric series extracted from one slice of the input
type DataSet struct {
	Values []float64
	Label  string
	// Missing holds offsets (after label removal) of visited cells that
	// were blank or non-numeric.
	Missing []int
	// Complete is false when missing cells were skipped rather than padded.
	Complete bool
	// Range covers the values, excluding a leading label cell where the
	// grouping allows it.
	Range Range
}

// Len returns the number of values in the set
func (d *DataSet) Len() int { return len(d.Values) }

// HasMissing reports whether any visited cell was blank or non-numeric
func (d *DataSet) HasMissing() bool { return len(d.Missing) > 0 }

// Visited returns the number of cells the set was built from
func (d *DataSet) Visited() int {
	if d.Complete {
		return len(d.Values)
	}
	return len(d.Values) + len(d.Missing)
}

// Copy returns a deep copy so callers may pad or reorder values
func (d *DataSet) Copy() DataSet {
	c := *d
	c.Values = append([]float64(nil), d.Values...)
	c.Missing = append([]int(nil), d.Missing...)
	return c
}
