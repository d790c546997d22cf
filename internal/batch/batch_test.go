package batch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statkit/adapters/memory"
	"statkit/internal/analysis"
	"statkit/internal/errors"
	"statkit/ports"
)

const jobFile = `
input: data.xlsx
output: results.xlsx
jobs:
  - name: summary
    tool: descriptive
    ranges: ["A1:B6"]
    labels: true
    output_sheet: Summary
  - tool: correlation
    ranges: ["A2:B6"]
    origin: D1
  - name: broken
    tool: anova2
    ranges: ["A2:B6"]
    options:
      replication: 4
`

func TestParseJobFile(t *testing.T) {
	f, err := Parse([]byte(jobFile))
	require.NoError(t, err)

	assert.Equal(t, "data.xlsx", f.Input)
	require.Len(t, f.Jobs, 3)
	assert.Equal(t, "summary", f.Jobs[0].Name)
	assert.Equal(t, "Summary", f.Jobs[0].OutputSheet)
	assert.Equal(t, []string{"A1:B6"}, f.Jobs[0].Ranges)
	assert.True(t, f.Jobs[0].Labels)
	assert.Equal(t, "A1", f.Jobs[0].Origin)

	assert.Equal(t, "correlation", f.Jobs[1].Name)
	assert.Equal(t, "D1", f.Jobs[1].Origin)
	assert.Equal(t, 4, f.Jobs[2].Options.Replication)
}

func TestParseRejectsBadFiles(t *testing.T) {
	_, err := Parse([]byte("jobs: []\n"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = Parse([]byte("jobs:\n  - ranges: [\"A1:A2\"]\n"))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = Parse([]byte("jobs:\n  - tool: rank\n    colour: red\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(jobFile), 0o644))
	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Jobs, 3)

	_, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

type gridSet struct {
	mu    sync.Mutex
	grids map[string]*memory.Grid
}

func (g *gridSet) factory(job Job) (ports.OutputSink, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	grid := memory.NewGrid()
	g.grids[job.Name] = grid
	return grid, nil
}

func TestRunnerIsolatesFailures(t *testing.T) {
	f, err := Parse([]byte(jobFile))
	require.NoError(t, err)
	src := memory.FromColumns("Sheet1",
		[]any{"x", 1, 2, 3, 4, 5},
		[]any{"y", 2, 4, 5, 4, 5},
	)

	for _, concurrency := range []int{1, 4} {
		set := &gridSet{grids: map[string]*memory.Grid{}}
		results := NewRunner(concurrency, analysis.Defaults{Alpha: 0.05, Confidence: 0.95}, nil).
			Run(context.Background(), src, f.Jobs, set.factory)

		require.Len(t, results, 3)
		assert.NoError(t, results[0].Err)
		assert.NoError(t, results[1].Err)
		assert.Equal(t, errors.CodeReplicationInvalid, errors.GetCode(results[2].Err))

		failed := Failed(results)
		require.Len(t, failed, 1)
		assert.Equal(t, "broken", failed[0].Job)

		assert.Equal(t, "x", set.grids["summary"].Text(1, 0))
		assert.Equal(t, "Mean", set.grids["summary"].Text(0, 1))
		assert.Equal(t, 0, set.grids["broken"].Written(), "failed job leaves its sink untouched")

		v, ok := set.grids["correlation"].Float(1, 1)
		require.True(t, ok)
		assert.InDelta(t, 1, v, 1e-12)
	}
}

func TestRunnerHonoursCancellation(t *testing.T) {
	f, err := Parse([]byte(jobFile))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	set := &gridSet{grids: map[string]*memory.Grid{}}
	results := NewRunner(2, analysis.Defaults{}, nil).Run(ctx, memory.NewWorkbook("Sheet1"), f.Jobs, set.factory)
	for _, res := range results {
		assert.Error(t, res.Err)
	}
}
