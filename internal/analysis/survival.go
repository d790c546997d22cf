package analysis

import (
	"context"
	"math"

	domain "statkit/domain/dataset"
	"statkit/internal/dataset"
	"statkit/internal/errors"
	"statkit/internal/stats"
	"statkit/ports"
)

// GroupDef selects the observations whose group value lies in [Low, High]
type GroupDef struct {
	Name string  `json:"name" yaml:"name"`
	Low  float64 `json:"low" yaml:"low"`
	High float64 `json:"high" yaml:"high"`
}

// KaplanMeier estimates survival curves from a column of times, with
// optional censor and group columns of the same length
type KaplanMeier struct {
	base
	Censor *domain.Range
	// Rows whose censor value lies in [CensorLow, CensorHigh] are censored
	CensorLow, CensorHigh float64
	Group                 *domain.Range
	Groups                []GroupDef
	StdErr                bool
	LogRank               bool

	names  []string
	curves [][]stats.SurvivalStep
	test   *stats.LogRank
}

// NewKaplanMeier returns the tool with censor code 1
func NewKaplanMeier(in Input) *KaplanMeier {
	return &KaplanMeier{base: base{Input: in}, CensorLow: 1, CensorHigh: 1}
}

func (t *KaplanMeier) Descriptor() string { return "Kaplan-Meier" }

func (t *KaplanMeier) width() int {
	if t.StdErr {
		return 6
	}
	return 5
}

// column reads an auxiliary range aligned with the times
func (t *KaplanMeier) column(r domain.Range, n int, what string) ([]float64, error) {
	ds, err := dataset.NewDataSet(t.Source, r.Normalize().Absolute(), dataset.Options{
		GroupBy:      domain.ByColumn,
		ReadLabels:   t.Labels,
		ContextSheet: t.ContextSheet,
	}, what)
	if err != nil {
		return nil, err
	}
	if len(ds.Values) != n {
		return nil, errors.Newf(errors.CodeInvalidDimensions,
			"%s range has %d values, times have %d", what, len(ds.Values), n)
	}
	return ds.Values, nil
}

func (t *KaplanMeier) UpdateDAO(ctx context.Context) (Size, error) {
	if len(t.Ranges) != 1 {
		return Size{}, errors.InvalidField("kaplan-meier takes exactly one time range")
	}
	t.GroupBy = domain.ByColumn
	if err := t.read(true); err != nil {
		return Size{}, err
	}
	if len(t.sets) != 1 {
		return Size{}, errors.InvalidField("the time range must be a single column")
	}
	times := &t.sets[0]
	if times.HasMissing() {
		return Size{}, errors.Newf(errors.CodeMissingData, "%s has blank or non-numeric times", times.Label)
	}
	n := len(times.Values)

	obs := make([]stats.Observation, n)
	for i, v := range times.Values {
		obs[i].Time = v
	}
	if t.Censor != nil {
		codes, err := t.column(*t.Censor, n, "censor")
		if err != nil {
			return Size{}, err
		}
		for i, c := range codes {
			obs[i].Censored = c >= t.CensorLow && c <= t.CensorHigh
		}
	}

	groups := t.Groups
	if t.Group != nil {
		if len(groups) == 0 {
			return Size{}, errors.InvalidField("a group range needs group definitions")
		}
		values, err := t.column(*t.Group, n, "group")
		if err != nil {
			return Size{}, err
		}
		kept := make([]stats.Observation, 0, n)
		for i, v := range values {
			g := groupOf(groups, v)
			if g < 0 {
				continue
			}
			o := obs[i]
			o.Group = g
			kept = append(kept, o)
		}
		if dropped := n - len(kept); dropped > 0 {
			t.warn("%d observations match no group and were ignored", dropped)
		}
		obs = kept
	} else {
		groups = []GroupDef{{Name: times.Label}}
	}

	t.names = make([]string, len(groups))
	t.curves = make([][]stats.SurvivalStep, len(groups))
	for g, def := range groups {
		t.names[g] = def.Name
		var members []stats.Observation
		for _, o := range obs {
			if o.Group == g {
				members = append(members, o)
			}
		}
		if len(members) == 0 {
			t.warn("group %s is empty", def.Name)
			continue
		}
		curve, err := stats.KaplanMeier(members)
		if err != nil {
			return Size{}, errors.Wrapf(err, "group %s", def.Name)
		}
		t.curves[g] = curve
	}

	t.test = nil
	if t.LogRank && len(groups) > 1 {
		test, err := stats.LogRankTest(obs, len(groups))
		if err != nil {
			return Size{}, err
		}
		t.test = test
	}
	return sizeOf(t.write), nil
}

func groupOf(groups []GroupDef, v float64) int {
	for g, def := range groups {
		if v >= def.Low && v <= def.High {
			return g
		}
	}
	return -1
}

func (t *KaplanMeier) steps() int {
	n := 0
	for _, c := range t.curves {
		n = max(n, len(c))
	}
	return n
}

func (t *KaplanMeier) write(sink ports.OutputSink) {
	w := t.width()
	for g, curve := range t.curves {
		col := g * w
		sink.SetCellText(col, 0, t.names[g])
		headerRow(sink, col, 1, "Time", "At Risk", "Deaths", "Censored", "Probability")
		if t.StdErr {
			sink.SetCellText(col+5, 1, "Std Err")
		}
		for k, s := range curve {
			row := k + 2
			sink.SetCellFloat(col, row, s.Time)
			sink.SetCellFloat(col+1, row, float64(s.AtRisk))
			sink.SetCellFloat(col+2, row, float64(s.Deaths))
			sink.SetCellFloat(col+3, row, float64(s.Censored))
			sink.SetCellFloat(col+4, row, s.Probability)
			if t.StdErr {
				setValue(sink, col+5, row, s.StdErr)
			}
		}
	}

	if t.test == nil {
		return
	}
	row := t.steps() + 3
	sink.SetCellText(0, row, "Log-Rank Test")
	labelColumn(sink, 0, row+1, "Statistic", "Degrees of Freedom", "p-Value")
	setValue(sink, 1, row+1, t.test.ChiSquare)
	sink.SetCellFloat(1, row+2, float64(t.test.DF))
	setValue(sink, 1, row+3, t.test.P)
	headerRow(sink, 0, row+5, "Group", "Observed", "Expected")
	for g := range t.test.Observed {
		sink.SetCellText(0, row+6+g, t.names[g])
		sink.SetCellFloat(1, row+6+g, t.test.Observed[g])
		sink.SetCellFloat(2, row+6+g, t.test.Expected[g])
	}
}

func (t *KaplanMeier) PerformCalc(ctx context.Context, sink ports.OutputSink) error {
	t.write(sink)
	return nil
}

func (t *KaplanMeier) FormatOutputRange(sink ports.OutputSink) error {
	sink.SetItalic(ports.Rect(0, 0, t.width()*len(t.curves)-1, 1))
	if t.test != nil && math.IsNaN(t.test.P) {
		sink.SetComment(1, t.steps()+6, "log-rank p-value is undefined")
	}
	return nil
}
