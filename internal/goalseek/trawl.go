package goalseek

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// TrawlUniformly evaluates points evenly spaced samples of [xmin, xmax],
// stopping once a bracket exists. It reports StatusOK only when a sample
// lands exactly on a root; finding a bracket is left to bisection.
func TrawlUniformly(f Function, d *Data, xmin, xmax float64, points int) Status {
	if d.HaveRoot {
		return StatusOK
	}
	if xmin > xmax || xmin < d.XMin || xmax > d.XMax || points < 1 {
		return StatusError
	}

	for i := 0; i < points; i++ {
		if d.HaveBracket() {
			break
		}
		x := xmin
		if points > 1 {
			x = xmin + (xmax-xmin)*float64(i)/float64(points-1)
		}
		y, st := f(x)
		if st != StatusOK {
			continue
		}
		if d.Update(x, y) {
			return StatusOK
		}
	}
	return StatusError
}

// TrawlNormally samples points draws of N(mu, sigma) inside the domain
// hunting for a sign change that a uniform scan might miss.
func TrawlNormally(f Function, d *Data, mu, sigma float64, points int, src rand.Source) Status {
	if d.HaveRoot {
		return StatusOK
	}
	if sigma <= 0 || !d.inDomain(mu) {
		return StatusError
	}

	dist := distuv.Normal{Mu: mu, Sigma: sigma, Src: src}
	for i := 0; i < points; i++ {
		if d.HaveBracket() {
			break
		}
		x := dist.Rand()
		if !d.inDomain(x) {
			continue
		}
		y, st := f(x)
		if st != StatusOK {
			continue
		}
		if d.Update(x, y) {
			return StatusOK
		}
	}
	return StatusError
}
