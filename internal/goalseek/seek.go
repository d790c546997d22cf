package goalseek

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"statkit/domain/core"
	"statkit/internal"
)

// Result describes a successful seek
type Result struct {
	Root        float64 `json:"root"`
	Evaluations int     `json:"evaluations"`
	// Strategy names the cascade step that produced the root
	Strategy string `json:"strategy"`
}

var logger = internal.DefaultLogger.With("goalseek")

type strategy struct {
	name string
	run  func(f Function) Status
}

// Seek finds a root of f in [data.XMin, data.XMax]. If x0 lies inside the
// domain it seeds the first Newton attempt, otherwise the midpoint is used.
// Strategies run cheapest first; bisection closes any bracket found along
// the way. src drives the normal trawls and may be nil.
func Seek(ctx context.Context, f Function, data *Data, x0 float64, src rand.Source) (Result, error) {
	if data.XMin > data.XMax {
		return Result{}, fmt.Errorf("%w: empty domain [%g, %g]", core.ErrOutOfDomain, data.XMin, data.XMax)
	}
	if src == nil {
		src = rand.NewPCG(1, 2)
	}

	evals := 0
	counted := func(x float64) (float64, Status) {
		evals++
		y, st := f(x)
		if st == StatusOK && (math.IsNaN(y) || math.IsInf(y, 0)) {
			return y, StatusError
		}
		return y, st
	}

	xmin, xmax := data.XMin, data.XMax
	width := xmax - xmin
	sigma0 := math.Min(width, 1e6)
	start := x0
	if !data.inDomain(start) {
		start = (xmin + xmax) / 2
	}

	normal := func(mu float64, points int) func(f Function) Status {
		return func(f Function) Status {
			sigma := sigma0
			for round := 0; round < 5; round++ {
				if TrawlNormally(f, data, mu, sigma, points, src) == StatusOK {
					return StatusOK
				}
				if data.HaveBracket() {
					break
				}
				sigma /= 10
			}
			return StatusError
		}
	}

	cascade := []strategy{
		{"newton", func(f Function) Status { return Newton(f, nil, data, start) }},
		{"uniform-trawl", func(f Function) Status { return TrawlUniformly(f, data, xmin, xmax, 100) }},
		{"normal-trawl-centre", normal((xmin+xmax)/2, 30)},
		{"normal-trawl-min", normal(xmin, 20)},
		{"normal-trawl-max", normal(xmax, 20)},
		{"newton-restarts", func(f Function) Status {
			for i := 1; i <= 10; i++ {
				if data.HaveBracket() {
					break
				}
				if Newton(f, nil, data, xmin+width/11*float64(i)) == StatusOK {
					return StatusOK
				}
			}
			return StatusError
		}},
	}

	for _, s := range cascade {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		// Further trawling is pointless once a bracket is known.
		if data.HaveBracket() && !data.HaveRoot {
			break
		}
		if s.run(counted) == StatusOK && data.HaveRoot {
			logger.Debug("%s found root %g after %d evaluations", s.name, data.Root, evals)
			return Result{Root: data.Root, Evaluations: evals, Strategy: s.name}, nil
		}
		logger.Trace("%s failed after %d evaluations", s.name, evals)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !data.HaveBracket() {
		return Result{Evaluations: evals}, core.ErrNoBracket
	}
	if Bisection(counted, data) == StatusOK && data.HaveRoot {
		logger.Debug("bisection found root %g after %d evaluations", data.Root, evals)
		return Result{Root: data.Root, Evaluations: evals, Strategy: "bisection"}, nil
	}
	return Result{Evaluations: evals}, core.ErrNoRoot
}
