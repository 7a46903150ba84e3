package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds shared by the analyzers and their callers.
var (
	// ErrEmptyInput means there is no usable text to analyze.
	ErrEmptyInput = errors.New("empty input")
	// ErrInvalidThresholds means a ThresholdRange violates its bounds.
	ErrInvalidThresholds = errors.New("invalid thresholds")
	// ErrAnalysis matches every *AnalysisError via errors.Is.
	ErrAnalysis = errors.New("analysis failed")
)

// AnalysisError wraps a failure of the underlying sentiment model.
type AnalysisError struct {
	Op  string // e.g. "scoring.score", "tokens.classify"
	Err error
}

// NewAnalysisError builds an AnalysisError for op.
func NewAnalysisError(op string, err error) *AnalysisError {
	return &AnalysisError{Op: op, Err: err}
}

func (e *AnalysisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrAnalysis)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrAnalysis, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrAnalysis) true for any AnalysisError.
func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysis }
