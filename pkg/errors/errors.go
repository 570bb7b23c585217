package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrCanceled     ErrorCode = "CANCELED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Environment detection
	ErrToolMissing         ErrorCode = "TOOL_MISSING"
	ErrNetworkUnreachable  ErrorCode = "NETWORK_UNREACHABLE"
	ErrWrongDistribution   ErrorCode = "WRONG_DISTRIBUTION"
	ErrUnexpectedPrivilege ErrorCode = "UNEXPECTED_PRIVILEGE"

	// Operator interaction
	ErrConfirmationDeclined ErrorCode = "CONFIRMATION_DECLINED"

	// Staging and handoff
	ErrFetchFailed   ErrorCode = "FETCH_FAILED"
	ErrHandoffFailed ErrorCode = "HANDOFF_FAILED"

	// Pipeline errors
	ErrDuplicateStep  ErrorCode = "DUPLICATE_STEP"
	ErrInvalidStep    ErrorCode = "INVALID_STEP"
	ErrStepFailed     ErrorCode = "STEP_FAILED"
	ErrCommandFailed  ErrorCode = "COMMAND_FAILED"
	ErrDotfilesConfig ErrorCode = "DOTFILES_CONFLICT"

	// FileSystem errors
	ErrFileAccess    ErrorCode = "FILE_ACCESS"
	ErrFileWrite     ErrorCode = "FILE_WRITE"
	ErrSymlinkCreate ErrorCode = "SYMLINK_CREATE"
	ErrDirCreate     ErrorCode = "DIR_CREATE"
)

// ArchupError represents a structured error with code and details
type ArchupError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *ArchupError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *ArchupError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *ArchupError) Is(target error) bool {
	var targetErr *ArchupError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new ArchupError with the given code and message
func New(code ErrorCode, message string) *ArchupError {
	return &ArchupError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new ArchupError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *ArchupError {
	return &ArchupError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an ArchupError
func Wrap(err error, code ErrorCode, message string) *ArchupError {
	if err == nil {
		return nil
	}
	return &ArchupError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *ArchupError {
	if err == nil {
		return nil
	}
	return &ArchupError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *ArchupError) WithDetail(key string, value interface{}) *ArchupError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var archupErr *ArchupError
	if errors.As(err, &archupErr) {
		return archupErr.Code == code
	}
	return false
}

// GetErrorCode returns the outermost error code, or ErrUnknown if err carries none
func GetErrorCode(err error) ErrorCode {
	var archupErr *ArchupError
	if errors.As(err, &archupErr) {
		return archupErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not an ArchupError
func GetErrorDetails(err error) map[string]interface{} {
	var archupErr *ArchupError
	if errors.As(err, &archupErr) {
		return archupErr.Details
	}
	return nil
}

// Detail looks up a single detail anywhere in the wrap chain.
func Detail(err error, key string) (interface{}, bool) {
	for err != nil {
		if archupErr, ok := err.(*ArchupError); ok {
			if v, found := archupErr.Details[key]; found {
				return v, true
			}
		}
		err = errors.Unwrap(err)
	}
	return nil, false
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
