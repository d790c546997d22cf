package goalseek

import (
	"math"
)

// bisectionIterations allows about four steps per decimal digit of a double
const bisectionIterations = 100 + 15*4

type bisectMethod int

const (
	methodRidder bisectMethod = iota
	methodMidpoint
	methodNewton
)

// Bisection narrows an existing bracket until its relative width drops
// below the precision. It cycles Ridder's method, midpoint halving and a
// close-in Newton step; a failed evaluation only skips the iteration.
func Bisection(f Function, d *Data) Status {
	if d.HaveRoot {
		return StatusOK
	}
	if !d.HaveBracket() {
		return StatusError
	}

	width := d.bracketWidth()
	newtonTurn := 0

	for i := 0; i < bisectionIterations; i++ {
		var method bisectMethod
		switch i % 4 {
		case 0:
			method = methodRidder
		case 2:
			method = methodNewton
		default:
			method = methodMidpoint
		}
		if method == methodNewton && width > 0.1 {
			method = methodMidpoint
		}

		var xmid float64
		switch method {
		case methodRidder:
			xpos, ypos, yneg := d.XPos, d.YPos, d.YNeg
			mid := (xpos + d.XNeg) / 2
			ymid, st := f(mid)
			if st != StatusOK {
				continue
			}
			if d.Update(mid, ymid) {
				return StatusOK
			}
			det := math.Sqrt(ymid*ymid - ypos*yneg)
			if det == 0 || math.IsNaN(det) {
				continue
			}
			xmid = mid + (mid-xpos)*ymid/det
		case methodNewton:
			var x0, y0 float64
			switch newtonTurn % 3 {
			case 0:
				x0, y0 = d.XPos, d.YPos
			case 1:
				x0, y0 = d.XNeg, d.YNeg
			default:
				x0 = (d.XPos + d.XNeg) / 2
				var st Status
				if y0, st = f(x0); st != StatusOK {
					newtonTurn++
					continue
				}
			}
			newtonTurn++
			slope, found, st := fakeDF(f, x0, math.Abs(d.XPos-d.XNeg)/1e6, d)
			if found {
				return StatusOK
			}
			if st != StatusOK || slope == 0 {
				continue
			}
			xmid = x0 - 1.01*y0/slope
			lo, hi := math.Min(d.XPos, d.XNeg), math.Max(d.XPos, d.XNeg)
			if xmid < lo || xmid > hi {
				continue
			}
		default:
			xmid = (d.XPos + d.XNeg) / 2
		}

		ymid, st := f(xmid)
		if st != StatusOK {
			continue
		}
		if d.Update(xmid, ymid) {
			return StatusOK
		}

		width = d.bracketWidth()
		if width < d.Precision {
			if d.YPos < -d.YNeg {
				d.Root = d.XPos
			} else {
				d.Root = d.XNeg
			}
			d.HaveRoot = true
			return StatusOK
		}
	}
	return StatusError
}
