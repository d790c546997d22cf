package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"statkit/internal/errors"
)

// GroupSummary is one row of an ANOVA summary block
type GroupSummary struct {
	Count    int
	Sum      float64
	Mean     float64
	Variance float64
}

// SourceRow is one line of an ANOVA table. F, P and FCrit are NaN for rows
// that carry no test (error, within, total).
type SourceRow struct {
	Source string
	SS     float64
	DF     float64
	MS     float64
	F      float64
	P      float64
	FCrit  float64
}

// AnovaTable is the result of an analysis of variance
type AnovaTable struct {
	Rows    []GroupSummary
	Columns []GroupSummary
	Cells   [][]GroupSummary
	Sources []SourceRow
	Imputed int
}

func summarize(x []float64) GroupSummary {
	g := GroupSummary{Count: len(x), Sum: floats.Sum(x), Mean: math.NaN(), Variance: math.NaN()}
	switch {
	case g.Count > 1:
		g.Mean, g.Variance = stat.MeanVariance(x, nil)
	case g.Count == 1:
		g.Mean = x[0]
	}
	return g
}

func tested(source string, ss, df, msErr, dfErr, alpha float64) SourceRow {
	ms := ss / df
	f := ms / msErr
	return SourceRow{
		Source: source, SS: ss, DF: df, MS: ms, F: f,
		P:     FRight(f, df, dfErr),
		FCrit: FQuantile(1-alpha, df, dfErr),
	}
}

func untested(source string, ss, df float64) SourceRow {
	nan := math.NaN()
	ms := nan
	if df > 0 {
		ms = ss / df
	}
	return SourceRow{Source: source, SS: ss, DF: df, MS: ms, F: nan, P: nan, FCrit: nan}
}

// AnovaSingleFactor compares the means of groups
func AnovaSingleFactor(groups [][]float64, alpha float64) (*AnovaTable, error) {
	if len(groups) < 2 {
		return nil, errors.TooFewCols("single factor ANOVA needs at least two groups")
	}
	t := &AnovaTable{}
	total, count := 0.0, 0
	for _, g := range groups {
		if len(g) == 0 {
			return nil, errors.NotEnoughData("every group needs at least one value")
		}
		s := summarize(g)
		t.Rows = append(t.Rows, s)
		total += s.Sum
		count += s.Count
	}
	if count <= len(groups) {
		return nil, errors.NotEnoughData("not enough values for a within-groups estimate")
	}
	grand := total / float64(count)

	ssb, ssw := 0.0, 0.0
	for i, g := range groups {
		m := t.Rows[i].Mean
		ssb += float64(len(g)) * (m - grand) * (m - grand)
		for _, v := range g {
			ssw += (v - m) * (v - m)
		}
	}
	dfb := float64(len(groups) - 1)
	dfw := float64(count - len(groups))
	within := untested("Within Groups", ssw, dfw)
	t.Sources = []SourceRow{
		tested("Between Groups", ssb, dfb, within.MS, dfw, alpha),
		within,
		untested("Total", ssb+ssw, float64(count-1)),
	}
	return t, nil
}

// AnovaTwoFactor analyses a rows x columns table with one observation per cell
func AnovaTwoFactor(data [][]float64, alpha float64) (*AnovaTable, error) {
	r := len(data)
	if r < 2 {
		return nil, errors.TooFewRows("two factor ANOVA needs at least two rows")
	}
	c := len(data[0])
	if c < 2 {
		return nil, errors.TooFewCols("two factor ANOVA needs at least two columns")
	}
	for _, row := range data {
		if len(row) != c {
			return nil, errors.InvalidDimensions("rows differ in length")
		}
		for _, v := range row {
			if math.IsNaN(v) {
				return nil, errors.MissingData("two factor ANOVA without replication needs every cell")
			}
		}
	}

	t := &AnovaTable{}
	grand := 0.0
	for _, row := range data {
		s := summarize(row)
		t.Rows = append(t.Rows, s)
		grand += s.Sum
	}
	grand /= float64(r * c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		for i := range data {
			col[i] = data[i][j]
		}
		t.Columns = append(t.Columns, summarize(col))
	}

	ssRows, ssCols, ssTotal := 0.0, 0.0, 0.0
	for _, s := range t.Rows {
		ssRows += float64(c) * (s.Mean - grand) * (s.Mean - grand)
	}
	for _, s := range t.Columns {
		ssCols += float64(r) * (s.Mean - grand) * (s.Mean - grand)
	}
	for _, row := range data {
		for _, v := range row {
			ssTotal += (v - grand) * (v - grand)
		}
	}
	dfErr := float64((r - 1) * (c - 1))
	errRow := untested("Error", ssTotal-ssRows-ssCols, dfErr)
	t.Sources = []SourceRow{
		tested("Rows", ssRows, float64(r-1), errRow.MS, dfErr, alpha),
		tested("Columns", ssCols, float64(c-1), errRow.MS, dfErr, alpha),
		errRow,
		untested("Total", ssTotal, float64(r*c-1)),
	}
	return t, nil
}

// AnovaTwoFactorReplicated analyses a table whose rows come in blocks of
// replication observations per level of the row factor. NaN cells are
// imputed with the mean of their block and column; every imputed value
// costs one degree of freedom.
func AnovaTwoFactorReplicated(data [][]float64, replication int, alpha float64) (*AnovaTable, error) {
	if replication < 1 {
		return nil, errors.Newf(errors.CodeReplicationInvalid, "replication %d must be positive", replication)
	}
	if replication == 1 {
		return AnovaTwoFactor(data, alpha)
	}
	n := len(data)
	if n == 0 || n%replication != 0 {
		return nil, errors.Newf(errors.CodeReplicationInvalid,
			"%d data rows cannot be split into blocks of %d", n, replication)
	}
	a := n / replication
	if a < 2 {
		return nil, errors.TooFewRows("two factor ANOVA needs at least two row levels")
	}
	b := len(data[0])
	if b < 2 {
		return nil, errors.TooFewCols("two factor ANOVA needs at least two columns")
	}

	filled := make([][]float64, n)
	t := &AnovaTable{Cells: make([][]GroupSummary, a)}
	for i := 0; i < a; i++ {
		t.Cells[i] = make([]GroupSummary, b)
		for j := 0; j < b; j++ {
			var obs []float64
			for k := 0; k < replication; k++ {
				row := data[i*replication+k]
				if len(row) != b {
					return nil, errors.InvalidDimensions("rows differ in length")
				}
				if !math.IsNaN(row[j]) {
					obs = append(obs, row[j])
				}
			}
			if len(obs) == 0 {
				return nil, errors.Newf(errors.CodeMissingData, "block %d column %d has no observations", i+1, j+1)
			}
			s := summarize(obs)
			t.Cells[i][j] = s
			for k := 0; k < replication; k++ {
				r := i*replication + k
				if filled[r] == nil {
					filled[r] = make([]float64, b)
				}
				v := data[r][j]
				if math.IsNaN(v) {
					v = s.Mean
					t.Imputed++
				}
				filled[r][j] = v
			}
		}
	}

	grand := 0.0
	rowLevel := make([][]float64, a)
	colLevel := make([][]float64, b)
	for r, row := range filled {
		for j, v := range row {
			grand += v
			rowLevel[r/replication] = append(rowLevel[r/replication], v)
			colLevel[j] = append(colLevel[j], v)
		}
	}
	grand /= float64(n * b)
	for _, lv := range rowLevel {
		t.Rows = append(t.Rows, summarize(lv))
	}
	for _, lv := range colLevel {
		t.Columns = append(t.Columns, summarize(lv))
	}

	ssA, ssB, ssCells, ssW, ssT := 0.0, 0.0, 0.0, 0.0, 0.0
	for _, s := range t.Rows {
		ssA += float64(b*replication) * (s.Mean - grand) * (s.Mean - grand)
	}
	for _, s := range t.Columns {
		ssB += float64(a*replication) * (s.Mean - grand) * (s.Mean - grand)
	}
	for i := 0; i < a; i++ {
		for j := 0; j < b; j++ {
			m := t.Cells[i][j].Mean
			ssCells += float64(replication) * (m - grand) * (m - grand)
			for k := 0; k < replication; k++ {
				v := filled[i*replication+k][j]
				ssW += (v - m) * (v - m)
			}
		}
	}
	for _, row := range filled {
		for _, v := range row {
			ssT += (v - grand) * (v - grand)
		}
	}

	dfW := float64(a*b*(replication-1) - t.Imputed)
	if dfW <= 0 {
		return nil, errors.NotEnoughData("too many missing observations for a within estimate")
	}
	within := untested("Within", ssW, dfW)
	t.Sources = []SourceRow{
		tested("Sample", ssA, float64(a-1), within.MS, dfW, alpha),
		tested("Columns", ssB, float64(b-1), within.MS, dfW, alpha),
		tested("Interaction", ssCells-ssA-ssB, float64((a-1)*(b-1)), within.MS, dfW, alpha),
		within,
		untested("Total", ssT, float64(n*b-1-t.Imputed)),
	}
	return t, nil
}
