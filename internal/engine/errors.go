package engine

import (
	"context"
	"errors"
	"fmt"
)

// RunError represents a failure that aborts an analysis run.
//
// Unclassifiable elements, malformed constraint lines and cyclic models are
// not run errors; they are handled inside the run. A RunError means an input
// collaborator failed or the run was abandoned.
type RunError struct {
	// Code identifies the error category.
	Code RunErrorCode

	// Stage names the run stage that failed (e.g. "find", "propagate").
	Stage string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause.
	Err error
}

// RunErrorCode categorizes run errors.
type RunErrorCode string

const (
	// ErrCodeUpstreamModel indicates the architecture model could not be provided.
	ErrCodeUpstreamModel RunErrorCode = "UPSTREAM_MODEL"

	// ErrCodeUpstreamFinder indicates sequence enumeration failed.
	ErrCodeUpstreamFinder RunErrorCode = "UPSTREAM_FINDER"

	// ErrCodeCancelled indicates the run was abandoned between stages.
	ErrCodeCancelled RunErrorCode = "CANCELLED"
)

// Error implements the error interface.
func (e *RunError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Stage != "" {
		msg = fmt.Sprintf("%s (stage=%s)", msg, e.Stage)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RunError) Unwrap() error {
	return e.Err
}

// IsUpstreamError returns true if the run failed because the model store or
// the sequence finder failed. Uses errors.As to handle wrapped errors.
func IsUpstreamError(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUpstreamModel || re.Code == ErrCodeUpstreamFinder
	}
	return false
}

// IsCancelled returns true if the run was abandoned.
func IsCancelled(err error) bool {
	var re *RunError
	if errors.As(err, &re) {
		return re.Code == ErrCodeCancelled
	}
	return false
}

// NewModelError creates a RunError for a model that could not be loaded or
// compiled. Service boundaries use it so callers see one error taxonomy.
func NewModelError(model string, err error) *RunError {
	return &RunError{
		Code:    ErrCodeUpstreamModel,
		Stage:   "load",
		Message: fmt.Sprintf("model %q unavailable", model),
		Err:     err,
	}
}

func newFinderError(err error) *RunError {
	return &RunError{
		Code:    ErrCodeUpstreamFinder,
		Stage:   "find",
		Message: "sequence enumeration failed",
		Err:     err,
	}
}

// checkStage converts a done context into a cancellation error.
func checkStage(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		return &RunError{
			Code:    ErrCodeCancelled,
			Stage:   stage,
			Message: "run abandoned",
			Err:     err,
		}
	}
	return nil
}
