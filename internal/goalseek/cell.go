package goalseek

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"

	"statkit/domain/core"
	"statkit/internal/errors"
	"statkit/ports"
)

// CellRequest asks for the changing cell value that makes target equal goal
type CellRequest struct {
	Target   string  `json:"target" yaml:"target"`
	Goal     float64 `json:"goal" yaml:"goal"`
	Changing string  `json:"changing" yaml:"changing"`
	XMin     float64 `json:"x_min" yaml:"x_min"`
	XMax     float64 `json:"x_max" yaml:"x_max"`
	// Precision defaults to DefaultPrecision when zero
	Precision float64 `json:"precision,omitempty" yaml:"precision,omitempty"`
	Seed      uint64  `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// CellResult reports the outcome of SeekCell
type CellResult struct {
	Result
	// Value is the target cell after the root was written back
	Value float64 `json:"value"`
}

// SeekCell drives oracle until target equals goal. On success the root is
// left in the changing cell; on failure its original value is restored.
func SeekCell(ctx context.Context, oracle ports.LiveCellOracle, req CellRequest) (*CellResult, error) {
	if req.Target == "" || req.Changing == "" {
		return nil, errors.InvalidInput("target and changing cells are required")
	}
	if sameCell(req.Target, req.Changing) {
		return nil, errors.InvalidInput("target cell cannot also be the changing cell")
	}

	data := NewData(req.XMin, req.XMax)
	if req.Precision > 0 {
		data.Precision = req.Precision
	}

	original, origErr := oracle.Value(req.Changing)
	x0 := original
	if origErr != nil {
		x0 = math.NaN()
	}

	f := func(x float64) (float64, Status) {
		if err := oracle.SetValue(req.Changing, x); err != nil {
			return 0, StatusError
		}
		if err := oracle.Recalc(); err != nil {
			return 0, StatusError
		}
		v, err := oracle.Value(req.Target)
		if err != nil {
			return 0, StatusError
		}
		y := v - req.Goal
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return 0, StatusError
		}
		return y, StatusOK
	}

	res, err := Seek(ctx, f, data, x0, rand.NewPCG(req.Seed, req.Seed^0x9e3779b97f4a7c15))
	if err != nil {
		if origErr == nil {
			if rerr := restore(oracle, req.Changing, original); rerr != nil {
				logger.Error("failed to restore %s: %v", req.Changing, rerr)
			}
		}
		return nil, errors.Wrapf(err, "goal seek on %s", req.Target)
	}

	if err := restore(oracle, req.Changing, res.Root); err != nil {
		return nil, errors.Wrapf(err, "writing root to %s", req.Changing)
	}
	v, err := oracle.Value(req.Target)
	if err != nil {
		return nil, errors.Wrapf(core.NewEvaluationError(res.Root, err), "reading %s", req.Target)
	}
	return &CellResult{Result: res, Value: v}, nil
}

func restore(oracle ports.LiveCellOracle, cell string, v float64) error {
	if err := oracle.SetValue(cell, v); err != nil {
		return err
	}
	return oracle.Recalc()
}

func sameCell(a, b string) bool {
	strip := func(s string) string { return strings.ReplaceAll(s, "$", "") }
	return strings.EqualFold(strip(a), strip(b))
}
