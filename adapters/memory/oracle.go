package memory

import (
	"fmt"
	"strings"
	"sync"
)

// Formula computes a dependent cell from the current values of others
type Formula func(get func(cell string) float64) (float64, error)

// FuncOracle is a ports.LiveCellOracle whose dependent cells are Go
// functions. Recalc evaluates formulas in definition order.
type FuncOracle struct {
	mu       sync.Mutex
	values   map[string]float64
	errs     map[string]error
	order    []string
	formulas map[string]Formula
	recalcs  int
}

// NewFuncOracle returns an empty oracle
func NewFuncOracle() *FuncOracle {
	return &FuncOracle{
		values:   make(map[string]float64),
		errs:     make(map[string]error),
		formulas: make(map[string]Formula),
	}
}

// Define installs fn as the formula of cell and evaluates it once
func (o *FuncOracle) Define(cell string, fn Formula) *FuncOracle {
	o.mu.Lock()
	cell = canonical(cell)
	if _, ok := o.formulas[cell]; !ok {
		o.order = append(o.order, cell)
	}
	o.formulas[cell] = fn
	o.mu.Unlock()
	_ = o.Recalc()
	return o
}

// SetValue stores a constant. Formula cells cannot be overwritten.
func (o *FuncOracle) SetValue(cell string, v float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	cell = canonical(cell)
	if _, ok := o.formulas[cell]; ok {
		return fmt.Errorf("cell %s holds a formula", cell)
	}
	o.values[cell] = v
	return nil
}

// Recalc re-evaluates every formula. A formula error is stored and
// reported by Value rather than returned.
func (o *FuncOracle) Recalc() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recalcs++
	get := func(c string) float64 { return o.values[canonical(c)] }
	for _, cell := range o.order {
		v, err := o.formulas[cell](get)
		if err != nil {
			o.errs[cell] = err
			continue
		}
		delete(o.errs, cell)
		o.values[cell] = v
	}
	return nil
}

// Value returns the current content of cell
func (o *FuncOracle) Value(cell string) (float64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	cell = canonical(cell)
	if err, ok := o.errs[cell]; ok {
		return 0, err
	}
	v, ok := o.values[cell]
	if !ok {
		return 0, fmt.Errorf("cell %s is empty", cell)
	}
	return v, nil
}

// Recalcs counts Recalc calls
func (o *FuncOracle) Recalcs() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.recalcs
}

func canonical(cell string) string {
	return strings.ToUpper(strings.ReplaceAll(cell, "$", ""))
}
