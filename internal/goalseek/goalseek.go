// Package goalseek finds x in [XMin, XMax] with f(x) = 0 for an opaque,
// expensive f. Strategies share one Data value that accumulates the best
// bracket seen so far.
package goalseek

import (
	"math"
)

// Status is the outcome of one evaluation or strategy
type Status int

const (
	StatusOK Status = iota
	StatusError
)

func (s Status) String() string {
	if s == StatusOK {
		return "ok"
	}
	return "error"
}

// Function evaluates the target at x. It must be idempotent for equal x and
// is never called concurrently.
type Function func(x float64) (float64, Status)

// Default search parameters
const (
	DefaultPrecision = 1e-10
	DefaultRange     = 1e10
)

// Data is the state of one root-seeking session
type Data struct {
	XMin, XMax float64
	Precision  float64

	HaveXPos   bool
	XPos, YPos float64
	HaveXNeg   bool
	XNeg, YNeg float64

	HaveRoot bool
	Root     float64
}

// NewData returns a session over [xmin, xmax] with the default precision
func NewData(xmin, xmax float64) *Data {
	return &Data{
		XMin:      xmin,
		XMax:      xmax,
		Precision: DefaultPrecision,
		XPos:      math.NaN(),
		YPos:      math.NaN(),
		XNeg:      math.NaN(),
		YNeg:      math.NaN(),
		Root:      math.NaN(),
	}
}

// HaveBracket reports whether points of both signs have been seen
func (d *Data) HaveBracket() bool {
	return d.HaveXPos && d.HaveXNeg
}

// Update records an evaluation and returns true if y is an exact root.
// Once a bracket exists a new point only replaces its side when it makes the
// bracket narrower; before that it replaces it when it is closer to zero.
func (d *Data) Update(x, y float64) bool {
	switch {
	case y > 0:
		if d.HaveXPos {
			if d.HaveXNeg {
				if math.Abs(x-d.XNeg) < math.Abs(d.XPos-d.XNeg) {
					d.XPos, d.YPos = x, y
				}
			} else if y < d.YPos {
				d.XPos, d.YPos = x, y
			}
		} else {
			d.HaveXPos = true
			d.XPos, d.YPos = x, y
		}
		return false
	case y < 0:
		if d.HaveXNeg {
			if d.HaveXPos {
				if math.Abs(x-d.XPos) < math.Abs(d.XNeg-d.XPos) {
					d.XNeg, d.YNeg = x, y
				}
			} else if y > d.YNeg {
				d.XNeg, d.YNeg = x, y
			}
		} else {
			d.HaveXNeg = true
			d.XNeg, d.YNeg = x, y
		}
		return false
	default:
		d.HaveRoot = true
		d.Root = x
		return true
	}
}

// bracketWidth is the relative width of the current bracket
func (d *Data) bracketWidth() float64 {
	return math.Abs(d.XPos-d.XNeg) / (math.Abs(d.XPos) + math.Abs(d.XNeg))
}

func (d *Data) inDomain(x float64) bool {
	return x >= d.XMin && x <= d.XMax
}
