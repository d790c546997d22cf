package stats

import (
	"math"
	"sort"
)

// MannWhitney is the Wilcoxon-Mann-Whitney rank-sum test
type MannWhitney struct {
	N1, N2      int
	RankSum1    float64
	RankSum2    float64
	U1, U2      float64
	Ties        int
	Z           float64
	PTwoTail    float64
	MedianRank1 float64
	MedianRank2 float64
}

// WilcoxonMannWhitney ranks x and y together, averaging tied ranks, and
// returns the normal approximation with tie correction.
func WilcoxonMannWhitney(x, y []float64) (*MannWhitney, error) {
	if err := requireN(x, y, 1); err != nil {
		return nil, err
	}
	type item struct {
		v     float64
		first bool
	}
	all := make([]item, 0, len(x)+len(y))
	for _, v := range x {
		all = append(all, item{v, true})
	}
	for _, v := range y {
		all = append(all, item{v, false})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].v < all[j].v })

	res := &MannWhitney{N1: len(x), N2: len(y)}
	var ranks1, ranks2 []float64
	tieTerm := 0.0
	for i := 0; i < len(all); {
		j := i
		for j < len(all) && all[j].v == all[i].v {
			j++
		}
		r := float64(i+1+j) / 2
		if t := float64(j - i); t > 1 {
			res.Ties += j - i
			tieTerm += t*t*t - t
		}
		for k := i; k < j; k++ {
			if all[k].first {
				res.RankSum1 += r
				ranks1 = append(ranks1, r)
			} else {
				res.RankSum2 += r
				ranks2 = append(ranks2, r)
			}
		}
		i = j
	}

	n1, n2 := float64(res.N1), float64(res.N2)
	n := n1 + n2
	res.U1 = res.RankSum1 - n1*(n1+1)/2
	res.U2 = n1*n2 - res.U1
	res.MedianRank1 = median(ranks1)
	res.MedianRank2 = median(ranks2)

	sigma := math.Sqrt(n1 * n2 / 12 * ((n + 1) - tieTerm/(n*(n-1))))
	if n < 2 || sigma == 0 {
		res.Z, res.PTwoTail = math.NaN(), math.NaN()
		return res, nil
	}
	res.Z = (res.U1 - n1*n2/2) / sigma
	res.PTwoTail = 2 * NormalOneTail(res.Z)
	return res, nil
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
