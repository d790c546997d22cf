package goalseek

import (
	"math"
)

const newtonIterations = 100

// fakeDF estimates f' at x by a central difference, shrinking to a one-sided
// difference at the domain edges. found is true when a sample point hit a root.
func fakeDF(f Function, x, step float64, d *Data) (df float64, found bool, st Status) {
	xl := x - step
	if xl < d.XMin {
		xl = x
	}
	xr := x + step
	if xr > d.XMax {
		xr = x
	}
	if xl == xr {
		return 0, false, StatusError
	}

	yl, st := f(xl)
	if st != StatusOK {
		return 0, false, st
	}
	if d.Update(xl, yl) {
		return 0, true, StatusOK
	}
	yr, st := f(xr)
	if st != StatusOK {
		return 0, false, st
	}
	if d.Update(xr, yr) {
		return 0, true, StatusOK
	}

	df = (yr - yl) / (xr - xl)
	if math.IsNaN(df) || math.IsInf(df, 0) {
		return 0, false, StatusError
	}
	return df, false, StatusOK
}

// Newton iterates from x0. df may be nil, in which case the derivative is
// estimated numerically. Iterates are clamped to the domain; getting stuck
// on a boundary, a flat spot or a failed evaluation ends the attempt. A
// converged iterate only counts as a root when |f| is within Precision.
func Newton(f, df Function, d *Data, x0 float64) Status {
	if d.HaveRoot {
		return StatusOK
	}
	precision := d.Precision / 2

	for i := 0; i < newtonIterations; i++ {
		if !d.inDomain(x0) {
			return StatusError
		}

		y0, st := f(x0)
		if st != StatusOK {
			return st
		}
		if d.Update(x0, y0) {
			return StatusOK
		}

		var slope float64
		if df != nil {
			slope, st = df(x0)
		} else {
			var found bool
			slope, found, st = fakeDF(f, x0, newtonStep(x0, d), d)
			if found {
				return StatusOK
			}
		}
		if st != StatusOK {
			return st
		}
		if slope == 0 {
			return StatusError
		}

		// Overshoot slightly so a flat spot is approached from outside.
		x1 := x0 - 1.000001*y0/slope
		if x1 < d.XMin {
			x1 = d.XMin
		} else if x1 > d.XMax {
			x1 = d.XMax
		}
		if x1 == x0 {
			if x0 == d.XMin || x0 == d.XMax || math.Abs(y0) > d.Precision {
				return StatusError
			}
			d.Root, d.HaveRoot = x0, true
			return StatusOK
		}

		step := math.Abs(x1-x0) / (math.Abs(x0) + math.Abs(x1))
		x0 = x1
		if step < precision {
			return acceptRoot(f, d, x0)
		}
	}
	return StatusError
}

// acceptRoot evaluates the converged iterate x and records it as the root
// when the residual is small enough. A flat minimum that never crosses zero
// converges in x too, so the step size alone is not evidence of a root.
func acceptRoot(f Function, d *Data, x float64) Status {
	y, st := f(x)
	if st != StatusOK {
		return st
	}
	if d.Update(x, y) {
		return StatusOK
	}
	if math.Abs(y) > d.Precision {
		return StatusError
	}
	d.Root, d.HaveRoot = x, true
	return StatusOK
}

func newtonStep(x0 float64, d *Data) float64 {
	if math.Abs(x0) >= 1e-10 {
		return math.Abs(x0) / 1e6
	}
	if d.HaveBracket() {
		return math.Abs(d.XPos-d.XNeg) / 1e6
	}
	return (d.XMax - d.XMin) / 1e6
}
