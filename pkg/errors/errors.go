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

	// Configuration errors. ErrConfiguration covers malformed or missing
	// entry point declarations and is always raised before the output
	// directory is touched.
	ErrConfiguration ErrorCode = "CONFIGURATION"
	ErrConfigLoad    ErrorCode = "CONFIG_LOAD"
	ErrConfigParse   ErrorCode = "CONFIG_PARSE"

	// Build errors
	ErrFilesystem ErrorCode = "FILESYSTEM"
	ErrTranspile  ErrorCode = "TRANSPILE"
	ErrManifest   ErrorCode = "MANIFEST"
)

// WeaveError represents a structured error with code and details
type WeaveError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *WeaveError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *WeaveError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *WeaveError) Is(target error) bool {
	var targetErr *WeaveError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new WeaveError with the given code and message
func New(code ErrorCode, message string) *WeaveError {
	return &WeaveError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new WeaveError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *WeaveError {
	return &WeaveError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a WeaveError
func Wrap(err error, code ErrorCode, message string) *WeaveError {
	if err == nil {
		return nil
	}
	return &WeaveError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *WeaveError {
	if err == nil {
		return nil
	}
	return &WeaveError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *WeaveError) WithDetail(key string, value interface{}) *WeaveError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var weaveErr *WeaveError
	if errors.As(err, &weaveErr) {
		return weaveErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a WeaveError
func GetErrorCode(err error) ErrorCode {
	var weaveErr *WeaveError
	if errors.As(err, &weaveErr) {
		return weaveErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a WeaveError
func GetErrorDetails(err error) map[string]interface{} {
	var weaveErr *WeaveError
	if errors.As(err, &weaveErr) {
		return weaveErr.Details
	}
	return nil
}
