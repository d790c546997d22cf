// Package dataset slices caller-supplied ranges into labelled numeric series.
package dataset

import (
	"fmt"

	domain "statkit/domain/dataset"
	"statkit/internal/errors"
	"statkit/ports"
)

// Options controls how NewDataSetList reads each slice
type Options struct {
	GroupBy domain.GroupBy
	// IgnoreNonNumeric skips blank and non-numeric cells, recording their
	// offsets. When false, blanks are padded with zero and text is an error.
	IgnoreNonNumeric bool
	// ReadLabels consumes the first cell of every slice as its label
	ReadLabels bool
	// ContextSheet resolves ranges that carry no sheet name
	ContextSheet string
}

// PrepareInputRange slices ranges according to groupBy. Every returned range
// is absolute so formulas built from it stay stable. Ranges spanning several
// sheets inconsistently are dropped.
func PrepareInputRange(ranges []domain.Range, groupBy domain.GroupBy) []domain.Range {
	out := make([]domain.Range, 0, len(ranges))
	for _, r := range ranges {
		if r.SpansSheets() {
			continue
		}
		r = r.Normalize().Absolute()
		r.EndSheet = ""

		switch groupBy {
		case domain.ByRow:
			for row := r.StartRow; row <= r.EndRow; row++ {
				s := r
				s.StartRow, s.EndRow = row, row
				out = append(out, s)
			}
		case domain.ByColumn:
			for col := r.StartCol; col <= r.EndCol; col++ {
				s := r
				s.StartCol, s.EndCol = col, col
				out = append(out, s)
			}
		case domain.ByBin:
			for row := r.StartRow; row <= r.EndRow; row++ {
				for col := r.StartCol; col <= r.EndCol; col++ {
					out = append(out, r.Cell(col-r.StartCol, row-r.StartRow))
				}
			}
		default:
			out = append(out, r)
		}
	}
	return out
}

// NewDataSetList builds one DataSet per range, in order. Labels default
// to "Row n", "Column n", "Area n" or "Bin n".
func NewDataSetList(src ports.CellSource, ranges []domain.Range, opts Options) ([]domain.DataSet, error) {
	sets := make([]domain.DataSet, 0, len(ranges))
	for i, r := range ranges {
		ds, err := NewDataSet(src, r, opts, opts.GroupBy.DefaultLabel(i+1))
		if err != nil {
			return nil, err
		}
		if opts.GroupBy == domain.ByBin && len(ds.Values) != 1 {
			return nil, errors.Newf(errors.CodeInvalidField,
				"bin %s must contain exactly one number", r.A1())
		}
		sets = append(sets, ds)
	}
	return sets, nil
}

// NewDataSet walks r row by row and extracts its numeric series
func NewDataSet(src ports.CellSource, r domain.Range, opts Options, defaultLabel string) (domain.DataSet, error) {
	if r.Sheet == "" {
		r.Sheet = opts.ContextSheet
	}
	ds := domain.DataSet{
		Complete: !opts.IgnoreNonNumeric,
		Range:    valueRange(r, opts),
	}

	readLabel := opts.ReadLabels
	offset := 0
	for row := r.StartRow; row <= r.EndRow; row++ {
		for col := r.StartCol; col <= r.EndCol; col++ {
			cell := src.Cell(r.Sheet, col, row)
			if readLabel {
				ds.Label = cell.String()
				readLabel = false
				continue
			}

			switch {
			case cell.IsNumeric():
				ds.Values = append(ds.Values, cell.Number)
			case cell.Kind == domain.CellEmpty:
				ds.Missing = append(ds.Missing, offset)
				if ds.Complete {
					ds.Values = append(ds.Values, 0)
				}
			default:
				ds.Missing = append(ds.Missing, offset)
				if ds.Complete {
					return domain.DataSet{}, errors.Newf(errors.CodeMissingData,
						"%s contains non-numeric data at %s", labelOr(ds.Label, defaultLabel),
						domain.CellName(col, row, false))
				}
			}
			offset++
		}
	}

	if ds.Label == "" {
		ds.Label = defaultLabel
	}
	return ds, nil
}

// Extract slices ranges with PrepareInputRange and reads the resulting sets
func Extract(src ports.CellSource, ranges []domain.Range, opts Options) ([]domain.DataSet, error) {
	prepared := PrepareInputRange(ranges, opts.GroupBy)
	if len(prepared) == 0 {
		return nil, errors.InvalidField("no usable input ranges")
	}
	return NewDataSetList(src, prepared, opts)
}

// CheckInputRangeListHomogeneity reports whether every range spans the same
// number of cells
func CheckInputRangeListHomogeneity(ranges []domain.Range) bool {
	if len(ranges) == 0 {
		return true
	}
	n := ranges[0].Cells()
	for _, r := range ranges[1:] {
		if r.Cells() != n {
			return false
		}
	}
	return true
}

// CheckDataSetHomogeneity is the value-level analogue: every set has the same length
func CheckDataSetHomogeneity(sets []domain.DataSet) bool {
	for i := 1; i < len(sets); i++ {
		if len(sets[i].Values) != len(sets[0].Values) {
			return false
		}
	}
	return true
}

// StripMissing drops every observation missing from any of sets so that
// paired series stay aligned by position. All sets must have been built
// from the same number of cells. The result records the union of the
// missing offsets and is never complete.
func StripMissing(sets []domain.DataSet) ([]domain.DataSet, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	n := sets[0].Visited()
	absent := make([]bool, n)
	for i := range sets {
		if sets[i].Visited() != n {
			return nil, errors.Newf(errors.CodeInvalidDimensions,
				"observations do not line up: %s vs %s", Describe(sets[0]), Describe(sets[i]))
		}
		for _, off := range sets[i].Missing {
			absent[off] = true
		}
	}
	var union []int
	for off, gone := range absent {
		if gone {
			union = append(union, off)
		}
	}

	out := make([]domain.DataSet, len(sets))
	for i := range sets {
		own := make([]bool, n)
		for _, off := range sets[i].Missing {
			own[off] = true
		}
		s := sets[i].Copy()
		s.Values = make([]float64, 0, n-len(union))
		next := 0
		for off := 0; off < n; off++ {
			if own[off] && !sets[i].Complete {
				continue
			}
			v := sets[i].Values[next]
			next++
			if !absent[off] {
				s.Values = append(s.Values, v)
			}
		}
		s.Missing = append([]int(nil), union...)
		s.Complete = false
		out[i] = s
	}
	return out, nil
}

// valueRange trims a leading label cell along the slicing axis. An area
// only loses its label when it is a single row or column; a block keeps
// its full extent.
func valueRange(r domain.Range, opts Options) domain.Range {
	if !opts.ReadLabels {
		return r
	}
	switch opts.GroupBy {
	case domain.ByColumn:
		if r.Height() > 1 {
			r.StartRow++
		}
	case domain.ByRow:
		if r.Width() > 1 {
			r.StartCol++
		}
	case domain.ByArea:
		switch {
		case r.Width() == 1 && r.Height() > 1:
			r.StartRow++
		case r.Height() == 1 && r.Width() > 1:
			r.StartCol++
		}
	}
	return r
}

func labelOr(label, fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}

// Labels returns the label of every set, for table headers
func Labels(sets []domain.DataSet) []string {
	out := make([]string, len(sets))
	for i := range sets {
		out[i] = sets[i].Label
	}
	return out
}

// Describe is a short debugging summary of a set
func Describe(ds domain.DataSet) string {
	return fmt.Sprintf("%s: %d values, %d missing (%s)", ds.Label, len(ds.Values), len(ds.Missing), ds.Range.A1())
}
