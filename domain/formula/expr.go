// Package formula builds spreadsheet expression trees for tools that write
// live formulas instead of computed values. Only the output boundary uses it;
// the numeric kernels never see function names.
package formula

import (
	"strconv"
	"strings"

	"statkit/domain/dataset"
)

// Expr is a node of an expression tree. String renders it in A1 formula
// syntax without the leading '='.
type Expr interface {
	String() string
	expr()
}

// Number is a numeric constant
type Number float64

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }
func (Number) expr()            {}

// Str is a string constant
type Str string

func (s Str) String() string { return `"` + strings.ReplaceAll(string(s), `"`, `""`) + `"` }
func (Str) expr()            {}

// Ref references a block of cells
type Ref struct {
	Range dataset.Range
}

func (r Ref) String() string { return r.Range.A1() }
func (Ref) expr()            {}

// RefOf wraps a range as an expression
func RefOf(r dataset.Range) Ref { return Ref{Range: r} }

// Call applies a registered function to arguments
type Call struct {
	Fn   *Func
	Args []Expr
}

func (c Call) String() string {
	var b strings.Builder
	b.WriteString(c.Fn.Name)
	b.WriteByte('(')
	for i, a := range c.Args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.String())
	}
	b.WriteByte(')')
	return b.String()
}
func (Call) expr() {}

// Binary is an infix arithmetic or comparison operation
type Binary struct {
	Op   string
	L, R Expr
}

func (b Binary) String() string {
	return wrap(b.L) + b.Op + wrap(b.R)
}
func (Binary) expr() {}

func wrap(e Expr) string {
	if _, ok := e.(Binary); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

// Apply builds a call node
func Apply(fn *Func, args ...Expr) Call {
	return Call{Fn: fn, Args: args}
}

// Sub builds l-r
func Sub(l, r Expr) Binary { return Binary{Op: "-", L: l, R: r} }

// Div builds l/r
func Div(l, r Expr) Binary { return Binary{Op: "/", L: l, R: r} }

// Mul builds l*r
func Mul(l, r Expr) Binary { return Binary{Op: "*", L: l, R: r} }
