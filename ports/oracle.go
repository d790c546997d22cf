package ports

// LiveCellOracle drives a recalculating workbook. Every SetValue/Recalc pair
// mutates shared state, so callers must use it from one goroutine at a time.
type LiveCellOracle interface {
	SetValue(cell string, v float64) error
	Recalc() error
	// Value returns the numeric content of cell or an error if it holds an
	// error value or text
	Value(cell string) (float64, error)
}
