package core

import (
	"errors"
	"fmt"
)

// Numeric domain errors shared by the kernels
var (
	// Fourier transform
	ErrNotPowerOfTwo = errors.New("sequence length is not a power of two")
	ErrEmptySequence = errors.New("empty sequence")

	// Root finding
	ErrNoRoot      = errors.New("no root found")
	ErrNoBracket   = fmt.Errorf("%w: no sign-changing bracket", ErrNoRoot)
	ErrOutOfDomain = errors.New("point outside search domain")

	// Linear algebra
	ErrSingular = errors.New("matrix is singular")
)

// NewEvaluationError records a failed function evaluation at x
func NewEvaluationError(x float64, err error) error {
	return fmt.Errorf("evaluation at %g failed: %w", x, err)
}

// IsRootFindingError reports whether err comes from the goal-seek solver
func IsRootFindingError(err error) bool {
	return errors.Is(err, ErrNoRoot) || errors.Is(err, ErrOutOfDomain)
}
