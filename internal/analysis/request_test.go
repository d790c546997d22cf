package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"statkit/adapters/memory"
	"statkit/internal/errors"
	"statkit/internal/stats"
)

func TestToolsCatalog(t *testing.T) {
	names := Tools()
	assert.Len(t, names, 19)
	assert.Contains(t, names, "kaplan-meier")
	assert.IsIncreasing(t, names)
}

func TestBuildErrors(t *testing.T) {
	src := memory.NewWorkbook("Sheet1")
	tests := map[string]struct {
		req  Request
		code string
	}{
		"unknown tool":   {Request{Tool: "nope", Ranges: []string{"A1"}}, errors.CodeNotFound},
		"no ranges":      {Request{Tool: "rank"}, errors.CodeInvalidField},
		"bad range":      {Request{Tool: "rank", Ranges: []string{"not a range"}}, errors.CodeInvalidField},
		"bad grouping":   {Request{Tool: "rank", Ranges: []string{"A1:A3"}, GroupBy: "diagonal"}, errors.CodeInvalidField},
		"regression y":   {Request{Tool: "regression", Ranges: []string{"A1:A3"}}, errors.CodeInvalidField},
		"average kind":   {Request{Tool: "moving-average", Ranges: []string{"A1:A3"}, Options: Options{Average: "median"}}, errors.CodeInvalidField},
		"smoothing kind": {Request{Tool: "exp-smoothing", Ranges: []string{"A1:A3"}, Options: Options{Smoothing: "brown"}}, errors.CodeInvalidField},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Build(tt.req, src)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestBuildAppliesOptions(t *testing.T) {
	src := memory.NewWorkbook("Sheet1")
	lo := 0.0

	tool, err := Build(Request{Tool: "Histogram", Ranges: []string{"A1:A9"}, Options: Options{
		BinCount: 4, Min: &lo, Pareto: true, Cumulative: true,
	}}, src)
	require.NoError(t, err)
	h := tool.(*Histogram)
	assert.Equal(t, 4, h.BinCount)
	assert.Equal(t, &lo, h.Min)
	assert.Nil(t, h.Max)
	assert.True(t, h.Pareto && h.Cumulative)

	tool, err = Build(Request{Tool: "ztest", Ranges: []string{"A1:B5"}, Options: Options{Var1: 2, Var2: 3}}, src)
	require.NoError(t, err)
	z := tool.(*MeanTest)
	assert.Equal(t, stats.TestZ, z.Kind)
	assert.Equal(t, 0.05, z.Alpha)
	assert.Equal(t, 3.0, z.Var2)

	tool, err = Build(Request{Tool: "anova2", Ranges: []string{"A1:C9"}, Labels: true, Options: Options{Replication: 2, Alpha: 0.01}}, src)
	require.NoError(t, err)
	a := tool.(*AnovaTwo)
	assert.Equal(t, 2, a.Replication)
	assert.Equal(t, 0.01, a.Alpha)
	assert.True(t, a.Labels)
}

func TestBuildFromYAML(t *testing.T) {
	body := `
tool: moving-average
ranges: ["A1:A6"]
formulas: true
options:
  average: central
  interval: 3
`
	var req Request
	require.NoError(t, yaml.Unmarshal([]byte(body), &req))

	tool, err := Build(req, memory.FromColumns("Sheet1", []any{1, 2, 3, 4, 5, 6}))
	require.NoError(t, err)
	grid := memory.NewGrid()
	_, err = NewEngine(nil).Run(context.Background(), tool, grid)
	require.NoError(t, err)
	assert.Equal(t, "=AVERAGE($A$1:$A$3)", grid.Cell(0, 2).Formula)
}
