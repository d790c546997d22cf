package analysis

import (
	"sort"
	"strings"

	domain "statkit/domain/dataset"
	"statkit/internal/errors"
	"statkit/internal/stats"
	"statkit/ports"
)

// Request describes a tool run in serializable form. It is shared by the
// command line, the HTTP API and batch job files.
type Request struct {
	Tool     string   `json:"tool" yaml:"tool"`
	Ranges   []string `json:"ranges" yaml:"ranges"`
	GroupBy  string   `json:"group_by,omitempty" yaml:"group_by,omitempty"`
	Labels   bool     `json:"labels,omitempty" yaml:"labels,omitempty"`
	Sheet    string   `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Formulas bool     `json:"formulas,omitempty" yaml:"formulas,omitempty"`
	Options  Options  `json:"options,omitempty" yaml:"options,omitempty"`
}

// Options holds every tool parameter. Zero values select the tool default.
type Options struct {
	Alpha      float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	NoSummary   bool `json:"no_summary,omitempty" yaml:"no_summary,omitempty"`
	KthLargest  int  `json:"kth_largest,omitempty" yaml:"kth_largest,omitempty"`
	KthSmallest int  `json:"kth_smallest,omitempty" yaml:"kth_smallest,omitempty"`

	Replication int `json:"replication,omitempty" yaml:"replication,omitempty"`

	MeanDiff float64 `json:"mean_diff,omitempty" yaml:"mean_diff,omitempty"`
	Var1     float64 `json:"var1,omitempty" yaml:"var1,omitempty"`
	Var2     float64 `json:"var2,omitempty" yaml:"var2,omitempty"`

	Y           string `json:"y,omitempty" yaml:"y,omitempty"`
	NoIntercept bool   `json:"no_intercept,omitempty" yaml:"no_intercept,omitempty"`
	Residuals   bool   `json:"residuals,omitempty" yaml:"residuals,omitempty"`

	Average      string  `json:"average,omitempty" yaml:"average,omitempty"`
	Interval     int     `json:"interval,omitempty" yaml:"interval,omitempty"`
	StdErr       bool    `json:"std_err,omitempty" yaml:"std_err,omitempty"`
	Smoothing    string  `json:"smoothing,omitempty" yaml:"smoothing,omitempty"`
	Damping      float64 `json:"damping,omitempty" yaml:"damping,omitempty"`
	Trend        float64 `json:"trend,omitempty" yaml:"trend,omitempty"`
	Seasonal     float64 `json:"seasonal,omitempty" yaml:"seasonal,omitempty"`
	Season       int     `json:"season,omitempty" yaml:"season,omitempty"`
	StdErrWindow int     `json:"std_err_window,omitempty" yaml:"std_err_window,omitempty"`

	Inverse     bool `json:"inverse,omitempty" yaml:"inverse,omitempty"`
	AverageTies bool `json:"average_ties,omitempty" yaml:"average_ties,omitempty"`

	Periodic bool   `json:"periodic,omitempty" yaml:"periodic,omitempty"`
	Period   int    `json:"period,omitempty" yaml:"period,omitempty"`
	Offset   int    `json:"offset,omitempty" yaml:"offset,omitempty"`
	Count    int    `json:"count,omitempty" yaml:"count,omitempty"`
	Seed     uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	Censor     string     `json:"censor,omitempty" yaml:"censor,omitempty"`
	CensorLow  *float64   `json:"censor_low,omitempty" yaml:"censor_low,omitempty"`
	CensorHigh *float64   `json:"censor_high,omitempty" yaml:"censor_high,omitempty"`
	Group      string     `json:"group,omitempty" yaml:"group,omitempty"`
	Groups     []GroupDef `json:"groups,omitempty" yaml:"groups,omitempty"`
	LogRank    bool       `json:"log_rank,omitempty" yaml:"log_rank,omitempty"`

	Bins           string   `json:"bins,omitempty" yaml:"bins,omitempty"`
	BinCount       int      `json:"bin_count,omitempty" yaml:"bin_count,omitempty"`
	Min            *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max            *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	UpperInclusive bool     `json:"upper_inclusive,omitempty" yaml:"upper_inclusive,omitempty"`
	Pareto         bool     `json:"pareto,omitempty" yaml:"pareto,omitempty"`
	Percentage     bool     `json:"percentage,omitempty" yaml:"percentage,omitempty"`
	Cumulative     bool     `json:"cumulative,omitempty" yaml:"cumulative,omitempty"`
}

// Defaults fills request fields left at zero. It mirrors the analysis
// and sampling sections of the configuration.
type Defaults struct {
	Alpha      float64
	Confidence float64
	Formulas   bool
	Seed       uint64
}

// WithDefaults returns a copy of r with zero options taken from d
func (r Request) WithDefaults(d Defaults) Request {
	if r.Options.Alpha == 0 {
		r.Options.Alpha = d.Alpha
	}
	if r.Options.Confidence == 0 {
		r.Options.Confidence = d.Confidence
	}
	if r.Options.Seed == 0 {
		r.Options.Seed = d.Seed
	}
	r.Formulas = r.Formulas || d.Formulas
	return r
}

type builder func(in Input, o Options) (Tool, error)

var catalog = map[string]builder{
	"descriptive": func(in Input, o Options) (Tool, error) {
		t := NewDescriptive(in)
		t.Summary = !o.NoSummary
		t.Confidence = o.Confidence
		t.KthLargest, t.KthSmallest = o.KthLargest, o.KthSmallest
		return t, nil
	},
	"correlation": func(in Input, o Options) (Tool, error) { return NewCorrelation(in), nil },
	"covariance":  func(in Input, o Options) (Tool, error) { return NewCovariance(in), nil },
	"anova1": func(in Input, o Options) (Tool, error) {
		t := NewAnovaSingle(in)
		setIf(&t.Alpha, o.Alpha)
		return t, nil
	},
	"anova2": func(in Input, o Options) (Tool, error) {
		t := NewAnovaTwo(in)
		setIf(&t.Alpha, o.Alpha)
		if o.Replication != 0 {
			t.Replication = o.Replication
		}
		return t, nil
	},
	"ttest-paired":  meanTest(stats.TestPaired),
	"ttest-equal":   meanTest(stats.TestEqualVariances),
	"ttest-unequal": meanTest(stats.TestUnequalVariances),
	"ztest":         meanTest(stats.TestZ),
	"ftest": func(in Input, o Options) (Tool, error) {
		t := NewFTest(in)
		setIf(&t.Alpha, o.Alpha)
		return t, nil
	},
	"wilcoxon-mann-whitney": func(in Input, o Options) (Tool, error) {
		t := NewMannWhitney(in)
		setIf(&t.Alpha, o.Alpha)
		return t, nil
	},
	"regression": func(in Input, o Options) (Tool, error) {
		if o.Y == "" {
			return nil, errors.InvalidField("regression needs a y range")
		}
		y, err := domain.ParseRange(o.Y)
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidField, err)
		}
		t := NewRegression(in, y)
		t.Intercept = !o.NoIntercept
		t.Residuals = o.Residuals
		setIf(&t.Confidence, o.Confidence)
		return t, nil
	},
	"moving-average": func(in Input, o Options) (Tool, error) {
		t := NewMovingAverage(in)
		kind, err := parseAverage(o.Average)
		if err != nil {
			return nil, err
		}
		t.Kind = kind
		if o.Interval != 0 {
			t.Interval = o.Interval
		}
		t.StdErr = o.StdErr
		return t, nil
	},
	"exp-smoothing": func(in Input, o Options) (Tool, error) {
		t := NewExpSmoothing(in)
		kind, err := parseSmoothing(o.Smoothing)
		if err != nil {
			return nil, err
		}
		t.Kind = kind
		setIf(&t.Params.Alpha, o.Damping)
		setIf(&t.Params.Gamma, o.Trend)
		setIf(&t.Params.Delta, o.Seasonal)
		if o.Season != 0 {
			t.Params.Period = o.Season
		}
		if o.StdErrWindow != 0 {
			t.StdErrWindow = o.StdErrWindow
		}
		t.StdErr = o.StdErr
		return t, nil
	},
	"fourier": func(in Input, o Options) (Tool, error) {
		t := NewFourier(in)
		t.Inverse = o.Inverse
		return t, nil
	},
	"rank": func(in Input, o Options) (Tool, error) {
		t := NewRank(in)
		t.AverageTies = o.AverageTies
		return t, nil
	},
	"sampling": func(in Input, o Options) (Tool, error) {
		t := NewSampling(in)
		t.Periodic = o.Periodic
		t.Period, t.Offset = o.Period, o.Offset
		if o.Count != 0 {
			t.Count = o.Count
		}
		if o.Seed != 0 {
			t.Seed = o.Seed
		}
		return t, nil
	},
	"kaplan-meier": func(in Input, o Options) (Tool, error) {
		t := NewKaplanMeier(in)
		var err error
		if t.Censor, err = optionalRange(o.Censor); err != nil {
			return nil, err
		}
		if t.Group, err = optionalRange(o.Group); err != nil {
			return nil, err
		}
		if o.CensorLow != nil {
			t.CensorLow = *o.CensorLow
		}
		if o.CensorHigh != nil {
			t.CensorHigh = *o.CensorHigh
		}
		t.Groups = o.Groups
		t.StdErr = o.StdErr
		t.LogRank = o.LogRank
		return t, nil
	},
	"histogram": func(in Input, o Options) (Tool, error) {
		t := NewHistogram(in)
		var err error
		if t.Bins, err = optionalRange(o.Bins); err != nil {
			return nil, err
		}
		if o.BinCount != 0 {
			t.BinCount = o.BinCount
		}
		t.Min, t.Max = o.Min, o.Max
		t.UpperInclusive = o.UpperInclusive
		t.Pareto = o.Pareto
		t.Percentage = o.Percentage
		t.Cumulative = o.Cumulative
		return t, nil
	},
}

func meanTest(kind stats.TestKind) builder {
	return func(in Input, o Options) (Tool, error) {
		t := NewMeanTest(kind, in)
		setIf(&t.Alpha, o.Alpha)
		t.MeanDiff = o.MeanDiff
		t.Var1, t.Var2 = o.Var1, o.Var2
		return t, nil
	}
}

func setIf(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func optionalRange(ref string) (*domain.Range, error) {
	if ref == "" {
		return nil, nil
	}
	r, err := domain.ParseRange(ref)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidField, err)
	}
	return &r, nil
}

func parseAverage(s string) (stats.AverageKind, error) {
	switch strings.ToLower(s) {
	case "", "prior":
		return stats.AveragePrior, nil
	case "central":
		return stats.AverageCentral, nil
	case "cumulative":
		return stats.AverageCumulative, nil
	case "weighted":
		return stats.AverageWeighted, nil
	case "spencer":
		return stats.AverageSpencer, nil
	}
	return 0, errors.Newf(errors.CodeInvalidField, "unknown moving average %q", s)
}

func parseSmoothing(s string) (stats.SmoothingKind, error) {
	switch strings.ToLower(s) {
	case "", "simple", "hunter":
		return stats.SmoothingHunter, nil
	case "roberts":
		return stats.SmoothingRoberts, nil
	case "holt":
		return stats.SmoothingHolt, nil
	case "additive", "holt-winters":
		return stats.SmoothingAdditive, nil
	case "multiplicative":
		return stats.SmoothingMultiplicative, nil
	}
	return 0, errors.Newf(errors.CodeInvalidField, "unknown smoothing model %q", s)
}

// Tools lists the names Build accepts
func Tools() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build parses req and constructs the named tool reading from src
func Build(req Request, src ports.CellSource) (Tool, error) {
	b, ok := catalog[strings.ToLower(req.Tool)]
	if !ok {
		return nil, errors.NotFound("tool " + req.Tool)
	}
	if len(req.Ranges) == 0 {
		return nil, errors.InvalidField("at least one input range is required")
	}
	groupBy, err := domain.ParseGroupBy(strings.ToLower(req.GroupBy))
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidField, err)
	}
	in := Input{
		Source:       src,
		GroupBy:      groupBy,
		Labels:       req.Labels,
		ContextSheet: req.Sheet,
		Formulas:     req.Formulas,
	}
	for _, ref := range req.Ranges {
		r, err := domain.ParseRange(ref)
		if err != nil {
			return nil, errors.WithCode(errors.CodeInvalidField, err)
		}
		in.Ranges = append(in.Ranges, r)
	}
	return b(in, req.Options)
}
