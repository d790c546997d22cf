package stats

import (
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"statkit/internal/errors"
)

// TestKind selects the two-sample mean test
type TestKind int

const (
	TestPaired TestKind = iota
	TestEqualVariances
	TestUnequalVariances
	TestZ
)

// MeanTest holds the two-sample test table. Fields that do not apply to the
// test kind are NaN.
type MeanTest struct {
	Kind         TestKind
	Mean1, Mean2 float64
	Var1, Var2   float64
	N1, N2       int
	Pearson      float64
	PooledVar    float64
	HypDiff      float64
	DF           float64
	Stat         float64
	POneTail     float64
	CritOneTail  float64
	PTwoTail     float64
	CritTwoTail  float64
}

func newMeanTest(kind TestKind, x, y []float64, diff float64) MeanTest {
	nan := math.NaN()
	t := MeanTest{
		Kind: kind, N1: len(x), N2: len(y), HypDiff: diff,
		Pearson: nan, PooledVar: nan, DF: nan,
	}
	t.Mean1, t.Var1 = stat.MeanVariance(x, nil)
	t.Mean2, t.Var2 = stat.MeanVariance(y, nil)
	return t
}

func (t *MeanTest) tails(alpha float64) {
	t.POneTail = TOneTail(t.Stat, t.DF)
	t.PTwoTail = TTwoTail(t.Stat, t.DF)
	t.CritOneTail = TCritical(alpha, t.DF)
	t.CritTwoTail = TCritical(alpha/2, t.DF)
}

func requireN(x, y []float64, min int) error {
	if len(x) < min || len(y) < min {
		return errors.Newf(errors.CodeNotEnoughData, "each variable needs at least %d values", min)
	}
	return nil
}

// TTestPaired tests the mean of x-y against diff
func TTestPaired(x, y []float64, diff, alpha float64) (*MeanTest, error) {
	if err := paired(x, y, 2); err != nil {
		return nil, err
	}
	t := newMeanTest(TestPaired, x, y, diff)
	d := make([]float64, len(x))
	for i := range x {
		d[i] = x[i] - y[i]
	}
	md, vd := stat.MeanVariance(d, nil)
	n := float64(len(d))
	t.Pearson, _ = mstats.Pearson(x, y)
	t.DF = n - 1
	t.Stat = (md - diff) / math.Sqrt(vd/n)
	t.tails(alpha)
	return &t, nil
}

// TTestEqualVariances is the pooled two-sample t-test
func TTestEqualVariances(x, y []float64, diff, alpha float64) (*MeanTest, error) {
	if err := requireN(x, y, 2); err != nil {
		return nil, err
	}
	t := newMeanTest(TestEqualVariances, x, y, diff)
	n1, n2 := float64(t.N1), float64(t.N2)
	t.DF = n1 + n2 - 2
	t.PooledVar = ((n1-1)*t.Var1 + (n2-1)*t.Var2) / t.DF
	t.Stat = (t.Mean1 - t.Mean2 - diff) / math.Sqrt(t.PooledVar*(1/n1+1/n2))
	t.tails(alpha)
	return &t, nil
}

// TTestUnequalVariances is Welch's test with Satterthwaite degrees of freedom
func TTestUnequalVariances(x, y []float64, diff, alpha float64) (*MeanTest, error) {
	if err := requireN(x, y, 2); err != nil {
		return nil, err
	}
	t := newMeanTest(TestUnequalVariances, x, y, diff)
	a := t.Var1 / float64(t.N1)
	b := t.Var2 / float64(t.N2)
	t.DF = (a + b) * (a + b) / (a*a/float64(t.N1-1) + b*b/float64(t.N2-1))
	t.Stat = (t.Mean1 - t.Mean2 - diff) / math.Sqrt(a+b)
	t.tails(alpha)
	return &t, nil
}

// ZTest compares means with known variances var1 and var2
func ZTest(x, y []float64, var1, var2, diff, alpha float64) (*MeanTest, error) {
	if err := requireN(x, y, 1); err != nil {
		return nil, err
	}
	if var1 <= 0 || var2 <= 0 {
		return nil, errors.InvalidField("known variances must be positive")
	}
	t := newMeanTest(TestZ, x, y, diff)
	t.Var1, t.Var2 = var1, var2
	t.Stat = (t.Mean1 - t.Mean2 - diff) / math.Sqrt(var1/float64(t.N1)+var2/float64(t.N2))
	t.POneTail = NormalOneTail(t.Stat)
	t.PTwoTail = 2 * t.POneTail
	t.CritOneTail = NormalQuantile(1 - alpha)
	t.CritTwoTail = NormalQuantile(1 - alpha/2)
	return &t, nil
}

// VarianceTest is the two-sample F-test table
type VarianceTest struct {
	Mean1, Mean2 float64
	Var1, Var2   float64
	N1, N2       int
	DF1, DF2     float64
	F            float64

	PRight, CritRight float64
	PLeft, CritLeft   float64
	PTwoTail          float64
	CritTwoLow        float64
	CritTwoHigh       float64
}

// FTest compares var(x) and var(y)
func FTest(x, y []float64, alpha float64) (*VarianceTest, error) {
	if err := requireN(x, y, 2); err != nil {
		return nil, err
	}
	t := &VarianceTest{N1: len(x), N2: len(y)}
	t.Mean1, t.Var1 = stat.MeanVariance(x, nil)
	t.Mean2, t.Var2 = stat.MeanVariance(y, nil)
	if t.Var2 == 0 {
		return nil, errors.InvalidField("second variable has zero variance")
	}
	t.DF1, t.DF2 = float64(t.N1-1), float64(t.N2-1)
	t.F = t.Var1 / t.Var2

	t.PRight = FRight(t.F, t.DF1, t.DF2)
	t.PLeft = 1 - t.PRight
	t.PTwoTail = 2 * math.Min(t.PRight, t.PLeft)
	t.CritRight = FQuantile(1-alpha, t.DF1, t.DF2)
	t.CritLeft = FQuantile(alpha, t.DF1, t.DF2)
	t.CritTwoLow = FQuantile(alpha/2, t.DF1, t.DF2)
	t.CritTwoHigh = FQuantile(1-alpha/2, t.DF1, t.DF2)
	return t, nil
}
