package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunError_Format(t *testing.T) {
	err := &RunError{Code: ErrCodeUpstreamFinder, Stage: "find", Message: "sequence enumeration failed", Err: errors.New("boom")}
	assert.Equal(t, "UPSTREAM_FINDER: sequence enumeration failed (stage=find): boom", err.Error())

	bare := &RunError{Code: ErrCodeCancelled, Message: "run abandoned"}
	assert.Equal(t, "CANCELLED: run abandoned", bare.Error())
}

func TestNewModelError(t *testing.T) {
	cause := errors.New("no such file")
	err := NewModelError("WarnApp", cause)

	assert.True(t, IsUpstreamError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `model "WarnApp" unavailable`)
}

func TestIsHelpers_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("serving request: %w", newFinderError(errors.New("x")))
	assert.True(t, IsUpstreamError(wrapped))
	assert.False(t, IsCancelled(wrapped))

	assert.False(t, IsUpstreamError(errors.New("plain")))
	assert.False(t, IsCancelled(nil))
}

func TestCheckStage(t *testing.T) {
	assert.NoError(t, checkStage(context.Background(), "register"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := checkStage(ctx, "collect")
	assert.True(t, IsCancelled(err))

	var re *RunError
	assert.ErrorAs(t, err, &re)
	assert.Equal(t, "collect", re.Stage)
}
