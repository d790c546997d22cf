package analysis

import (
	"context"
	"math"
	"math/rand/v2"

	domain "statkit/domain/dataset"
	"statkit/domain/formula"
	"statkit/internal/errors"
	"statkit/internal/fourier"
	"statkit/internal/stats"
	"statkit/ports"
)

// window narrows a one-dimensional range to n cells starting at offset
func window(r domain.Range, offset, n int) domain.Range {
	if r.Width() == 1 {
		r.StartRow += offset
		r.EndRow = r.StartRow + n - 1
	} else {
		r.StartCol += offset
		r.EndCol = r.StartCol + n - 1
	}
	return r
}

func linear(ds *domain.DataSet) bool {
	return !ds.HasMissing() && (ds.Range.Width() == 1 || ds.Range.Height() == 1)
}

func longest(sets []domain.DataSet) int {
	n := 0
	for i := range sets {
		n = max(n, len(sets[i].Values))
	}
	return n
}

// MovingAverage smooths each series
type MovingAverage struct {
	base
	Kind     stats.AverageKind
	Interval int
	StdErr   bool

	smoothed [][]float64
}

// NewMovingAverage returns a three point prior average
func NewMovingAverage(in Input) *MovingAverage {
	return &MovingAverage{base: base{Input: in}, Kind: stats.AveragePrior, Interval: 3}
}

func (t *MovingAverage) Descriptor() string { return "Moving Average" }

func (t *MovingAverage) width() int {
	if t.StdErr {
		return 2
	}
	return 1
}

func (t *MovingAverage) UpdateDAO(ctx context.Context) (Size, error) {
	if err := t.read(true); err != nil {
		return Size{}, err
	}
	t.smoothed = make([][]float64, len(t.sets))
	for i := range t.sets {
		out, err := stats.MovingAverage(t.sets[i].Values, t.Kind, t.Interval)
		if err != nil {
			return Size{}, errors.Wrapf(err, "%s", t.sets[i].Label)
		}
		t.smoothed[i] = out
	}
	return Size{Cols: t.width() * len(t.sets), Rows: 1 + longest(t.sets)}, nil
}

func (t *MovingAverage) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	fn := t.resolver()
	average := fn.Get("AVERAGE")
	interval := t.Interval
	if t.Kind == stats.AverageSpencer {
		interval = 15
	}
	for i := range t.sets {
		ds := &t.sets[i]
		col := i * t.width()
		sink.SetCellText(col, 0, ds.Label)
		live := t.Formulas && linear(ds)

		for k, v := range t.smoothed[i] {
			var e formula.Expr
			switch t.Kind {
			case stats.AveragePrior:
				e = formula.Apply(average, formula.RefOf(window(ds.Range, k-interval+1, interval)))
			case stats.AverageCentral:
				e = formula.Apply(average, formula.RefOf(window(ds.Range, k-interval/2, interval)))
			case stats.AverageCumulative:
				e = formula.Apply(average, formula.RefOf(window(ds.Range, 0, k+1)))
			}
			setExpr(sink, col, k+1, live && e != nil && !math.IsNaN(v), e, v)
		}
		if t.StdErr {
			sink.SetCellText(col+1, 0, "Standard Error")
			for k, v := range stats.StandardErrors(ds.Values, t.smoothed[i], interval) {
				setValue(sink, col+1, k+1, v)
			}
		}
	}
	return fn.Err()
}

func (t *MovingAverage) FormatOutputRange(sink ports.OutputSink) error {
	sink.SetItalic(ports.Rect(0, 0, t.width()*len(t.sets)-1, 0))
	return nil
}

// ExpSmoothing applies an exponential smoothing model to each series
type ExpSmoothing struct {
	base
	Kind   stats.SmoothingKind
	Params stats.SmoothingParams
	// StdErr adds a column of standard errors over StdErrWindow points
	StdErr       bool
	StdErrWindow int

	smoothed [][]float64
}

// NewExpSmoothing returns simple smoothing with damping 0.2
func NewExpSmoothing(in Input) *ExpSmoothing {
	return &ExpSmoothing{
		base:         base{Input: in},
		Kind:         stats.SmoothingHunter,
		Params:       stats.SmoothingParams{Alpha: 0.2, Gamma: 0.2, Delta: 0.2, Period: 12},
		StdErrWindow: 3,
	}
}

func (t *ExpSmoothing) Descriptor() string { return "Exponential Smoothing" }

func (t *ExpSmoothing) width() int {
	if t.StdErr {
		return 2
	}
	return 1
}

func (t *ExpSmoothing) UpdateDAO(ctx context.Context) (Size, error) {
	if t.StdErr && t.StdErrWindow < 1 {
		return Size{}, errors.InvalidField("standard error window must be positive")
	}
	if err := t.read(true); err != nil {
		return Size{}, err
	}
	t.smoothed = make([][]float64, len(t.sets))
	for i := range t.sets {
		out, err := stats.ExponentialSmoothing(t.sets[i].Values, t.Kind, t.Params)
		if err != nil {
			return Size{}, errors.Wrapf(err, "%s", t.sets[i].Label)
		}
		t.smoothed[i] = out
	}
	return Size{Cols: t.width() * len(t.sets), Rows: 1 + longest(t.sets)}, nil
}

func (t *ExpSmoothing) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	for i := range t.sets {
		col := i * t.width()
		sink.SetCellText(col, 0, t.sets[i].Label)
		for k, v := range t.smoothed[i] {
			setValue(sink, col, k+1, v)
		}
		if t.StdErr {
			sink.SetCellText(col+1, 0, "Standard Error")
			for k, v := range stats.StandardErrors(t.sets[i].Values, t.smoothed[i], t.StdErrWindow) {
				setValue(sink, col+1, k+1, v)
			}
		}
	}
	return nil
}

func (t *ExpSmoothing) FormatOutputRange(sink ports.OutputSink) error {
	sink.SetItalic(ports.Rect(0, 0, t.width()*len(t.sets)-1, 0))
	return nil
}

// Fourier transforms each series, zero padded to a power of two and
// truncated back to its length
type Fourier struct {
	base
	Inverse bool

	spectra [][]complex128
}

// NewFourier returns the forward transform tool
func NewFourier(in Input) *Fourier { return &Fourier{base: base{Input: in}} }

func (t *Fourier) Descriptor() string { return "Fourier Analysis" }

func (t *Fourier) UpdateDAO(ctx context.Context) (Size, error) {
	if err := t.read(true); err != nil {
		return Size{}, err
	}
	t.spectra = make([][]complex128, len(t.sets))
	for i := range t.sets {
		out, err := fourier.Transform(t.sets[i].Values, t.Inverse)
		if err != nil {
			return Size{}, errors.Wrapf(errors.WithCode(errors.CodeNotEnoughData, err), "%s", t.sets[i].Label)
		}
		t.spectra[i] = out
	}
	return Size{Cols: 2 * len(t.sets), Rows: 2 + longest(t.sets)}, nil
}

func (t *Fourier) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	for i := range t.sets {
		col := 2 * i
		sink.SetCellText(col, 0, t.sets[i].Label)
		headerRow(sink, col, 1, "Real", "Imaginary")
		for k, c := range t.spectra[i] {
			sink.SetCellFloat(col, k+2, real(c))
			sink.SetCellFloat(col+1, k+2, imag(c))
		}
	}
	return nil
}

func (t *Fourier) FormatOutputRange(sink ports.OutputSink) error {
	sink.SetItalic(ports.Rect(0, 0, 2*len(t.sets)-1, 1))
	return nil
}

// Rank writes a rank and percentile table per series
type Rank struct {
	base
	// AverageTies gives tied values the mean of their ranks
	AverageTies bool

	ranks [][]stats.RankEntry
}

// NewRank returns the tool with ties sharing the best rank
func NewRank(in Input) *Rank { return &Rank{base: base{Input: in}} }

func (t *Rank) Descriptor() string { return "Rank and Percentile" }

func (t *Rank) UpdateDAO(ctx context.Context) (Size, error) {
	if err := t.read(true); err != nil {
		return Size{}, err
	}
	t.ranks = make([][]stats.RankEntry, len(t.sets))
	for i := range t.sets {
		t.ranks[i] = stats.Rank(t.sets[i].Values, t.AverageTies)
	}
	return Size{Cols: 4 * len(t.sets), Rows: 1 + longest(t.sets)}, nil
}

func (t *Rank) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	for i := range t.sets {
		col := 4 * i
		headerRow(sink, col, 0, "Point", t.sets[i].Label, "Rank", "Percent")
		for k, e := range t.ranks[i] {
			sink.SetCellFloat(col, k+1, float64(e.Point))
			sink.SetCellFloat(col+1, k+1, e.Value)
			sink.SetCellFloat(col+2, k+1, e.Rank)
			sink.SetCellFloat(col+3, k+1, e.Percent)
		}
	}
	return nil
}

func (t *Rank) FormatOutputRange(sink ports.OutputSink) error {
	sink.SetItalic(ports.Rect(0, 0, 4*len(t.sets)-1, 0))
	for i := range t.sets {
		if n := len(t.ranks[i]); n > 0 {
			sink.SetPercentFormat(ports.Rect(4*i+3, 1, 4*i+3, n))
		}
	}
	return nil
}

// Sampling draws a periodic or random sample from each series
type Sampling struct {
	base
	// Periodic selects every Period-th value from Offset; otherwise Count
	// values are drawn with replacement
	Periodic bool
	Period   int
	Offset   int
	Count    int
	Seed     uint64

	samples [][]float64
}

// NewSampling returns a random sampler
func NewSampling(in Input) *Sampling { return &Sampling{base: base{Input: in}, Count: 1, Seed: 1} }

func (t *Sampling) Descriptor() string { return "Sampling" }

func (t *Sampling) UpdateDAO(ctx context.Context) (Size, error) {
	if err := t.read(true); err != nil {
		return Size{}, err
	}
	src := rand.NewPCG(t.Seed, t.Seed+1)
	t.samples = make([][]float64, len(t.sets))
	rows := 0
	for i := range t.sets {
		var out []float64
		var err error
		if t.Periodic {
			out, err = stats.SamplePeriodic(t.sets[i].Values, t.Period, t.Offset)
		} else {
			out, err = stats.SampleRandom(t.sets[i].Values, t.Count, src)
		}
		if err != nil {
			return Size{}, errors.Wrapf(err, "%s", t.sets[i].Label)
		}
		t.samples[i] = out
		rows = max(rows, len(out))
	}
	return Size{Cols: len(t.sets), Rows: 1 + rows}, nil
}

func (t *Sampling) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	for i := range t.sets {
		sink.SetCellText(i, 0, t.sets[i].Label)
		for k, v := range t.samples[i] {
			sink.SetCellFloat(i, k+1, v)
		}
	}
	return nil
}

func (t *Sampling) FormatOutputRange(sink ports.OutputSink) error {
	sink.SetItalic(ports.Rect(0, 0, len(t.sets)-1, 0))
	return nil
}
