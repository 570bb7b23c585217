// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and utility functions

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/archup/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "tool_missing",
			code:    errors.ErrToolMissing,
			message: "required tool curl not found",
			wantStr: "[TOOL_MISSING] required tool curl not found",
		},
		{
			name:    "invalid_input",
			code:    errors.ErrInvalidInput,
			message: "invalid configuration",
			wantStr: "[INVALID_INPUT] invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	base := stderrors.New("exit status 1")

	err := errors.Wrapf(base, errors.ErrStepFailed, "step %q failed", "system-update")
	require.NotNil(t, err)

	assert.Equal(t, `[STEP_FAILED] step "system-update" failed: exit status 1`, err.Error())
	assert.ErrorIs(t, err, base)
	assert.Nil(t, errors.Wrap(nil, errors.ErrStepFailed, "nothing"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrStepFailed, "nothing %d", 1))
}

func TestIs_MatchesByCode(t *testing.T) {
	err := errors.New(errors.ErrFetchFailed, "download failed")
	wrapped := fmt.Errorf("bootstrap: %w", err)

	assert.True(t, stderrors.Is(wrapped, errors.New(errors.ErrFetchFailed, "")))
	assert.False(t, stderrors.Is(wrapped, errors.New(errors.ErrStepFailed, "")))
}

func TestErrorCodeHelpers(t *testing.T) {
	err := errors.New(errors.ErrToolMissing, "missing").
		WithDetail("tool", "curl")

	assert.True(t, errors.IsErrorCode(err, errors.ErrToolMissing))
	assert.False(t, errors.IsErrorCode(err, errors.ErrNetworkUnreachable))
	assert.Equal(t, errors.ErrToolMissing, errors.GetErrorCode(err))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("plain")))
	assert.Equal(t, "curl", errors.GetErrorDetails(err)["tool"])
	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))
}

func TestDetail_SearchesWrapChain(t *testing.T) {
	inner := errors.New(errors.ErrCommandFailed, "pacman failed").WithDetail("exit_status", 1)
	outer := errors.Wrap(inner, errors.ErrStepFailed, "step failed").WithDetail("step", "install-packages")

	v, ok := errors.Detail(outer, "exit_status")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = errors.Detail(outer, "step")
	require.True(t, ok)
	assert.Equal(t, "install-packages", v)

	_, ok = errors.Detail(outer, "missing")
	assert.False(t, ok)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, errors.ExitCode(nil))
	assert.Equal(t, 1, errors.ExitCode(errors.New(errors.ErrNetworkUnreachable, "offline")))
	assert.Equal(t, 1, errors.ExitCode(stderrors.New("anything")))
}
