// Package analysis drives the statistical tools through their phases and
// lays their results out on an output sink.
package analysis

import (
	"context"
	"fmt"
	"time"

	"statkit/domain/core"
	"statkit/internal"
	"statkit/internal/errors"
	"statkit/ports"
)

// Phase is one step of the tool protocol
type Phase int

const (
	PhaseUpdateDescriptor Phase = iota
	PhaseUpdateDAO
	PhaseLastValidityCheck
	PhasePrepareOutputRange
	PhasePerformCalc
	PhaseFormatOutputRange
	PhaseCleanUp
)

var phaseNames = [...]string{
	"update-descriptor",
	"update-dao",
	"last-validity-check",
	"prepare-output-range",
	"perform-calc",
	"format-output-range",
	"clean-up",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

// Size is the extent of the output block in cells
type Size struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

// Tool is one analysis. UpdateDAO reads and validates input and reports
// the output size; PerformCalc writes the result.
type Tool interface {
	Descriptor() string
	UpdateDAO(ctx context.Context) (Size, error)
	PerformCalc(ctx context.Context, sink ports.OutputSink) error
}

// ValidityChecker runs after the input is read, before the sink is touched
type ValidityChecker interface {
	LastValidityCheck() error
}

// Formatter applies styles once values are written
type Formatter interface {
	FormatOutputRange(sink ports.OutputSink) error
}

// Cleaner releases tool state. It runs on every exit path.
type Cleaner interface {
	CleanUp()
}

// Warner exposes non-fatal conditions noticed during the run
type Warner interface {
	Warnings() []string
}

// Report summarises one engine run
type Report struct {
	RunID      core.RunID    `json:"run_id"`
	Descriptor string        `json:"descriptor"`
	Size       Size          `json:"size"`
	Phases     []Phase       `json:"-"`
	Warnings   []string      `json:"warnings,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

// PhaseNames returns the visited phases by name
func (r *Report) PhaseNames() []string {
	out := make([]string, len(r.Phases))
	for i, p := range r.Phases {
		out[i] = p.String()
	}
	return out
}

// Engine runs tools
type Engine struct {
	logger *internal.Logger
}

// NewEngine creates an engine. A nil logger uses the default logger.
func NewEngine(logger *internal.Logger) *Engine {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Engine{logger: logger.With("engine")}
}

// Run walks tool through every phase. The sink is only prepared once the
// input has been validated, so a failing tool leaves it untouched.
func (e *Engine) Run(ctx context.Context, tool Tool, sink ports.OutputSink) (rep *Report, err error) {
	start := time.Now()
	rep = &Report{RunID: core.NewRunID()}

	enter := func(p Phase) {
		rep.Phases = append(rep.Phases, p)
		e.logger.Debug("run %s: %s", rep.RunID, p)
	}
	defer func() {
		if c, ok := tool.(Cleaner); ok {
			enter(PhaseCleanUp)
			c.CleanUp()
		}
		if w, ok := tool.(Warner); ok {
			rep.Warnings = append(rep.Warnings, w.Warnings()...)
			for _, msg := range rep.Warnings {
				e.logger.Warn("run %s: %s", rep.RunID, msg)
			}
		}
		rep.Duration = time.Since(start)
		if err != nil {
			e.logger.Error("run %s (%s) failed: %v", rep.RunID, rep.Descriptor, err)
		}
	}()

	enter(PhaseUpdateDescriptor)
	rep.Descriptor = tool.Descriptor()

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	enter(PhaseUpdateDAO)
	size, err := tool.UpdateDAO(ctx)
	if err != nil {
		return rep, err
	}
	if size.Cols < 1 || size.Rows < 1 {
		return rep, errors.Newf(errors.CodeInternalError, "%s reported an empty output of %dx%d", rep.Descriptor, size.Cols, size.Rows)
	}
	rep.Size = size

	if v, ok := tool.(ValidityChecker); ok {
		enter(PhaseLastValidityCheck)
		if err := v.LastValidityCheck(); err != nil {
			return rep, err
		}
	}

	enter(PhasePrepareOutputRange)
	if err := sink.Prepare(size.Cols, size.Rows); err != nil {
		return rep, errors.Wrap(err, "failed to prepare output range")
	}

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	enter(PhasePerformCalc)
	if err := tool.PerformCalc(ctx, sink); err != nil {
		return rep, err
	}

	if f, ok := tool.(Formatter); ok {
		enter(PhaseFormatOutputRange)
		if err := f.FormatOutputRange(sink); err != nil {
			return rep, err
		}
	}

	if err := sink.Err(); err != nil {
		return rep, errors.Wrap(err, "output sink failed")
	}
	return rep, nil
}
