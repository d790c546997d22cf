package stats

import (
	stderrors "errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"statkit/domain/core"
	"statkit/internal/errors"
)

// Singularity thresholds on min|R_ii| / max|R_ii| of the QR factor
const (
	singularRatio     = 1e-12
	nearSingularRatio = 1e-7
)

// RegressionStat is the goodness-of-fit block of a least squares fit
type RegressionStat struct {
	SqrR    float64
	AdjSqrR float64
	// Var is the residual variance SSResid/DFResid
	Var     float64
	SE      []float64
	T       []float64
	DFReg   float64
	DFResid float64
	DFTotal float64
	SSReg   float64
	SSResid float64
	SSTotal float64
	MSReg   float64
	MSResid float64
	F       float64
}

// Regression is the outcome of Regress
type Regression struct {
	RegressionStat
	// Coef has the intercept first when one was fitted
	Coef      []float64
	P         []float64
	Lower     []float64
	Upper     []float64
	Intercept bool
	N         int
	// SigF is the p-value of the overall F statistic
	SigF      float64
	Residuals []float64
	// NearSingular is set when the design is close to rank deficient
	NearSingular bool
}

// Regress fits y = b0 + b1*x1 + ... by least squares. xs holds one slice per
// explanatory variable. confidence sets the coefficient intervals.
func Regress(xs [][]float64, y []float64, intercept bool, confidence float64) (*Regression, error) {
	n := len(y)
	k := len(xs)
	if k == 0 {
		return nil, errors.TooFewCols("regression needs at least one explanatory variable")
	}
	for _, x := range xs {
		if len(x) != n {
			return nil, errors.Newf(errors.CodeInvalidDimensions,
				"explanatory variable has %d values, response has %d", len(x), n)
		}
	}
	p := k
	if intercept {
		p++
	}
	if n <= p {
		return nil, errors.Newf(errors.CodeNotEnoughData, "%d observations cannot fit %d parameters", n, p)
	}

	design := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		c := 0
		if intercept {
			design.Set(i, 0, 1)
			c = 1
		}
		for j, x := range xs {
			design.Set(i, c+j, x[i])
		}
	}

	var qr mat.QR
	qr.Factorize(design)
	var r mat.Dense
	qr.RTo(&r)
	lo, hi := math.Inf(1), 0.0
	for i := 0; i < p; i++ {
		d := math.Abs(r.At(i, i))
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	if hi == 0 || lo/hi < singularRatio {
		return nil, errors.WithCode(errors.CodeSingular, core.ErrSingular)
	}

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(n, y)); err != nil && !isCondition(err) {
		return nil, errors.WithCode(errors.CodeSingular, err)
	}

	var xtx, inv mat.Dense
	xtx.Mul(design.T(), design)
	if err := inv.Inverse(&xtx); err != nil && !isCondition(err) {
		return nil, errors.WithCode(errors.CodeSingular, err)
	}

	reg := &Regression{Intercept: intercept, N: n, NearSingular: lo/hi < nearSingularRatio}
	reg.Coef = make([]float64, p)
	for i := range reg.Coef {
		reg.Coef[i] = beta.AtVec(i)
	}

	mean := stat.Mean(y, nil)

	var fitted mat.VecDense
	fitted.MulVec(design, &beta)
	reg.Residuals = make([]float64, n)
	for i, v := range y {
		e := v - fitted.AtVec(i)
		reg.Residuals[i] = e
		reg.SSResid += e * e
		if intercept {
			reg.SSTotal += (v - mean) * (v - mean)
		} else {
			reg.SSTotal += v * v
		}
	}
	reg.SSReg = reg.SSTotal - reg.SSResid

	reg.DFReg = float64(k)
	if intercept {
		reg.DFTotal = float64(n - 1)
	} else {
		reg.DFTotal = float64(n)
	}
	reg.DFResid = reg.DFTotal - reg.DFReg

	reg.MSReg = reg.SSReg / reg.DFReg
	reg.MSResid = reg.SSResid / reg.DFResid
	reg.Var = reg.MSResid
	reg.F = reg.MSReg / reg.MSResid
	reg.SigF = FRight(reg.F, reg.DFReg, reg.DFResid)
	if reg.SSTotal > 0 {
		reg.SqrR = reg.SSReg / reg.SSTotal
	} else {
		reg.SqrR = math.NaN()
	}
	reg.AdjSqrR = 1 - (1-reg.SqrR)*reg.DFTotal/reg.DFResid

	tc := TCritical((1-confidence)/2, reg.DFResid)
	reg.SE = make([]float64, p)
	reg.T = make([]float64, p)
	reg.P = make([]float64, p)
	reg.Lower = make([]float64, p)
	reg.Upper = make([]float64, p)
	for i := 0; i < p; i++ {
		se := math.Sqrt(reg.Var * inv.At(i, i))
		reg.SE[i] = se
		reg.T[i] = reg.Coef[i] / se
		reg.P[i] = TTwoTail(reg.T[i], reg.DFResid)
		reg.Lower[i] = reg.Coef[i] - tc*se
		reg.Upper[i] = reg.Coef[i] + tc*se
	}
	return reg, nil
}

// MultipleR is sqrt(R^2)
func (r *Regression) MultipleR() float64 {
	return math.Sqrt(r.SqrR)
}

// StdErr is the standard error of the estimate
func (r *Regression) StdErr() float64 {
	return math.Sqrt(r.Var)
}

func isCondition(err error) bool {
	var c mat.Condition
	return stderrors.As(err, &c)
}
