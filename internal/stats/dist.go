// Package stats holds the numeric kernels behind the analysis tools. The
// kernels work on plain slices and know nothing about sinks or formulas.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var unitNormal = distuv.Normal{Mu: 0, Sigma: 1}

func studentsT(df float64) distuv.StudentsT {
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
}

// TTwoTail is the two-sided p-value of t with df degrees of freedom
func TTwoTail(t, df float64) float64 {
	return 2 * studentsT(df).Survival(math.Abs(t))
}

// TOneTail is P(T > |t|)
func TOneTail(t, df float64) float64 {
	return studentsT(df).Survival(math.Abs(t))
}

// TCritical returns the value exceeded with probability p
func TCritical(p, df float64) float64 {
	return studentsT(df).Quantile(1 - p)
}

// FRight is P(F > f)
func FRight(f, df1, df2 float64) float64 {
	if math.IsNaN(f) {
		return math.NaN()
	}
	return distuv.F{D1: df1, D2: df2}.Survival(f)
}

// FQuantile is the inverse F distribution
func FQuantile(p, df1, df2 float64) float64 {
	return distuv.F{D1: df1, D2: df2}.Quantile(p)
}

// ChiSquareRight is P(X > x) for k degrees of freedom
func ChiSquareRight(x, k float64) float64 {
	return distuv.ChiSquared{K: k}.Survival(x)
}

// NormalOneTail is P(Z > |z|)
func NormalOneTail(z float64) float64 {
	return unitNormal.Survival(math.Abs(z))
}

// NormalQuantile is the standard normal inverse cdf
func NormalQuantile(p float64) float64 {
	return unitNormal.Quantile(p)
}
