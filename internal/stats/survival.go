package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"statkit/internal/errors"
)

// Observation is one subject of a survival study
type Observation struct {
	Time     float64
	Censored bool
	Group    int
}

// SurvivalStep is the Kaplan-Meier estimate at one distinct time
type SurvivalStep struct {
	Time        float64
	AtRisk      int
	Deaths      int
	Censored    int
	Probability float64
	StdErr      float64
}

// KaplanMeier estimates the survival curve of obs, ignoring Group.
// Censored subjects leave the risk set without counting as deaths. StdErr
// uses Greenwood's formula.
func KaplanMeier(obs []Observation) ([]SurvivalStep, error) {
	if len(obs) == 0 {
		return nil, errors.NotEnoughData("survival analysis needs observations")
	}
	sorted := append([]Observation(nil), obs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	var steps []SurvivalStep
	atRisk := len(sorted)
	surv, greenwood := 1.0, 0.0
	for i := 0; i < len(sorted); {
		step := SurvivalStep{Time: sorted[i].Time, AtRisk: atRisk}
		j := i
		for j < len(sorted) && sorted[j].Time == step.Time {
			if sorted[j].Censored {
				step.Censored++
			} else {
				step.Deaths++
			}
			j++
		}
		if step.Deaths > 0 {
			n, d := float64(atRisk), float64(step.Deaths)
			surv *= (n - d) / n
			if n > d {
				greenwood += d / (n * (n - d))
			}
		}
		step.Probability = surv
		step.StdErr = surv * math.Sqrt(greenwood)
		steps = append(steps, step)
		atRisk -= step.Deaths + step.Censored
		i = j
	}
	return steps, nil
}

// LogRank is the log-rank test across groups
type LogRank struct {
	ChiSquare float64
	DF        int
	P         float64
	Observed  []float64
	Expected  []float64
}

// LogRankTest compares the survival of groups 0..groups-1
func LogRankTest(obs []Observation, groups int) (*LogRank, error) {
	if groups < 2 {
		return nil, errors.TooFewCols("log-rank test needs at least two groups")
	}
	for _, o := range obs {
		if o.Group < 0 || o.Group >= groups {
			return nil, errors.Newf(errors.CodeInvalidField, "group %d outside 0..%d", o.Group, groups-1)
		}
	}

	times := make([]float64, 0, len(obs))
	for _, o := range obs {
		if !o.Censored {
			times = append(times, o.Time)
		}
	}
	sort.Float64s(times)

	res := &LogRank{DF: groups - 1, Observed: make([]float64, groups), Expected: make([]float64, groups)}
	v := mat.NewSymDense(groups-1, nil)
	atRisk := make([]float64, groups)
	deaths := make([]float64, groups)

	for i := 0; i < len(times); {
		t := times[i]
		for i < len(times) && times[i] == t {
			i++
		}
		for g := range atRisk {
			atRisk[g], deaths[g] = 0, 0
		}
		for _, o := range obs {
			if o.Time >= t {
				atRisk[o.Group]++
			}
			if o.Time == t && !o.Censored {
				deaths[o.Group]++
			}
		}
		n, d := 0.0, 0.0
		for g := range atRisk {
			n += atRisk[g]
			d += deaths[g]
		}
		for g := 0; g < groups; g++ {
			res.Observed[g] += deaths[g]
			res.Expected[g] += d * atRisk[g] / n
		}
		if n <= 1 {
			continue
		}
		scale := d * (n - d) / (n - 1)
		for a := 0; a < groups-1; a++ {
			for b := a; b < groups-1; b++ {
				cov := -atRisk[a] * atRisk[b] / (n * n)
				if a == b {
					cov += atRisk[a] / n
				}
				v.SetSym(a, b, v.At(a, b)+scale*cov)
			}
		}
	}

	diff := mat.NewVecDense(groups-1, nil)
	for g := 0; g < groups-1; g++ {
		diff.SetVec(g, res.Observed[g]-res.Expected[g])
	}
	var inv mat.Dense
	if err := inv.Inverse(v); err != nil && !isCondition(err) {
		return nil, errors.Wrap(err, "log-rank covariance is singular")
	}
	var tmp mat.VecDense
	tmp.MulVec(&inv, diff)
	res.ChiSquare = mat.Dot(diff, &tmp)
	res.P = ChiSquareRight(res.ChiSquare, float64(res.DF))
	return res, nil
}
