package dataset

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseRange parses an A1-style reference such as "B2:D10", "$A$1",
// "Sheet1!A1:A20" or "'Q1 data'!C3:F9". A reference without '$' markers is
// relative on that axis.
func ParseRange(ref string) (Range, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Range{}, fmt.Errorf("empty range reference")
	}

	var r Range
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		sheets := strings.Trim(ref[:i], "'")
		ref = ref[i+1:]
		if j := strings.Index(sheets, ":"); j >= 0 {
			r.Sheet, r.EndSheet = sheets[:j], sheets[j+1:]
		} else {
			r.Sheet = sheets
		}
	}

	start, end := ref, ref
	if i := strings.Index(ref, ":"); i >= 0 {
		start, end = ref[:i], ref[i+1:]
	}

	c0, r0, colAbs, rowAbs, err := parseCell(start)
	if err != nil {
		return Range{}, err
	}
	c1, r1, _, _, err := parseCell(end)
	if err != nil {
		return Range{}, err
	}

	r.StartCol, r.StartRow = c0-1, r0-1
	r.EndCol, r.EndRow = c1-1, r1-1
	r.ColRelative = !colAbs
	r.RowRelative = !rowAbs
	return r.Normalize(), nil
}

func parseCell(s string) (col, row int, colAbs, rowAbs bool, err error) {
	s = strings.TrimSpace(s)
	colAbs = strings.HasPrefix(s, "$")
	if i := strings.LastIndex(s, "$"); i > 0 {
		rowAbs = true
	}
	col, row, err = excelize.CellNameToCoordinates(strings.ReplaceAll(s, "$", ""))
	if err != nil {
		return 0, 0, false, false, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	return col, row, colAbs, rowAbs, nil
}

// CellName returns the A1 name of a 0-based coordinate
func CellName(col, row int, abs bool) string {
	name, err := excelize.CoordinatesToCellName(col+1, row+1, abs)
	if err != nil {
		return "#REF!"
	}
	return name
}

// A1 renders the range as an A1 reference, prefixed with its sheet when set
func (r Range) A1() string {
	start, err := excelize.CoordinatesToCellName(r.StartCol+1, r.StartRow+1)
	if err != nil {
		return "#REF!"
	}
	end, _ := excelize.CoordinatesToCellName(r.EndCol+1, r.EndRow+1)
	start = markAbsolute(start, !r.ColRelative, !r.RowRelative)
	end = markAbsolute(end, !r.ColRelative, !r.RowRelative)

	ref := start
	if r.Cells() > 1 {
		ref = start + ":" + end
	}
	if r.Sheet == "" {
		return ref
	}
	return quoteSheet(r.Sheet) + "!" + ref
}

func (r Range) String() string { return r.A1() }

func markAbsolute(name string, col, row bool) string {
	i := strings.IndexAny(name, "0123456789")
	letters, digits := name[:i], name[i:]
	if col {
		letters = "$" + letters
	}
	if row {
		digits = "$" + digits
	}
	return letters + digits
}

func quoteSheet(name string) string {
	for _, r := range name {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return "'" + strings.ReplaceAll(name, "'", "''") + "'"
		}
	}
	return name
}
