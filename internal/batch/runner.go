package batch

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"statkit/domain/dataset"
	"statkit/domain/formula"
	"statkit/internal"
	"statkit/internal/analysis"
	"statkit/internal/errors"
	"statkit/ports"
)

// SinkFactory returns the output sink of a job
type SinkFactory func(job Job) (ports.OutputSink, error)

// Result is the outcome of one job
type Result struct {
	Job    string
	Report *analysis.Report
	Err    error
}

// Runner runs jobs with bounded concurrency. Tools compute their results
// in parallel; source reads and sink writes are serialized because
// workbook backends are not safe for concurrent use.
type Runner struct {
	engine   *analysis.Engine
	sem      *semaphore.Weighted
	defaults analysis.Defaults
	logger   *internal.Logger
}

// NewRunner allows at most concurrency jobs at once
func NewRunner(concurrency int, defaults analysis.Defaults, logger *internal.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Runner{
		engine:   analysis.NewEngine(logger),
		sem:      semaphore.NewWeighted(int64(concurrency)),
		defaults: defaults,
		logger:   logger.With("batch"),
	}
}

// Run executes every job and returns their results in job order. A failing
// job does not stop the others; a cancelled context fails those not yet started.
func (r *Runner) Run(ctx context.Context, src ports.CellSource, jobs []Job, sinks SinkFactory) []Result {
	start := time.Now()
	var mu sync.Mutex
	shared := &lockedSource{mu: &mu, src: src}

	results := make([]Result, len(jobs))
	var wg sync.WaitGroup
	for i := range jobs {
		job := jobs[i]
		results[i].Job = job.Name
		if err := r.sem.Acquire(ctx, 1); err != nil {
			results[i].Err = err
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer r.sem.Release(1)
			results[i].Report, results[i].Err = r.runOne(ctx, &mu, shared, job, sinks)
		}(i)
	}
	wg.Wait()

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	r.logger.Info("ran %d jobs in %v, %d failed", len(jobs), time.Since(start), failed)
	return results
}

func (r *Runner) runOne(ctx context.Context, mu *sync.Mutex, src ports.CellSource, job Job, sinks SinkFactory) (*analysis.Report, error) {
	tool, err := analysis.Build(job.Request.WithDefaults(r.defaults), src)
	if err != nil {
		return nil, errors.Wrapf(err, "job %s", job.Name)
	}
	mu.Lock()
	sink, err := sinks(job)
	mu.Unlock()
	if err != nil {
		return nil, errors.Wrapf(err, "job %s", job.Name)
	}
	rep, err := r.engine.Run(ctx, tool, &lockedSink{mu: mu, sink: sink})
	if err != nil {
		return rep, errors.Wrapf(err, "job %s", job.Name)
	}
	return rep, nil
}

// Failed returns the results that carry an error
func Failed(results []Result) []Result {
	var out []Result
	for _, res := range results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

type lockedSource struct {
	mu  *sync.Mutex
	src ports.CellSource
}

func (s *lockedSource) Cell(sheet string, col, row int) dataset.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Cell(sheet, col, row)
}

var _ ports.OutputSink = (*lockedSink)(nil)

type lockedSink struct {
	mu   *sync.Mutex
	sink ports.OutputSink
}

func (s *lockedSink) lock() func() {
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *lockedSink) Prepare(cols, rows int) error {
	defer s.lock()()
	return s.sink.Prepare(cols, rows)
}

func (s *lockedSink) SetCellFloat(col, row int, v float64) {
	defer s.lock()()
	s.sink.SetCellFloat(col, row, v)
}

func (s *lockedSink) SetCellText(col, row int, text string) {
	defer s.lock()()
	s.sink.SetCellText(col, row, text)
}

func (s *lockedSink) SetCellExpr(col, row int, e formula.Expr, value float64) {
	defer s.lock()()
	s.sink.SetCellExpr(col, row, e, value)
}

func (s *lockedSink) SetCellArrayExpr(col, row, cols, rows int, e formula.Expr) {
	defer s.lock()()
	s.sink.SetCellArrayExpr(col, row, cols, rows, e)
}

func (s *lockedSink) SetCellNA(col, row int) {
	defer s.lock()()
	s.sink.SetCellNA(col, row)
}

func (s *lockedSink) SetItalic(r ports.Region) {
	defer s.lock()()
	s.sink.SetItalic(r)
}

func (s *lockedSink) SetPercentFormat(r ports.Region) {
	defer s.lock()()
	s.sink.SetPercentFormat(r)
}

func (s *lockedSink) SetComment(col, row int, text string) {
	defer s.lock()()
	s.sink.SetComment(col, row, text)
}

func (s *lockedSink) Err() error {
	defer s.lock()()
	return s.sink.Err()
}
