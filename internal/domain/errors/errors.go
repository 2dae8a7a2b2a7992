// Package errors provides domain-specific errors for the omniscience engine.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common domain error conditions.
var (
	ErrFileNotFound     = errors.New("file not found")
	ErrNoActiveChat     = errors.New("no active chat file")
	ErrNotChatFile      = errors.New("active file is not a chat")
	ErrNotCodeFile      = errors.New("target file is not a code file")
	ErrBlankInput       = errors.New("input is blank")
	ErrRequestInFlight  = errors.New("a backend request is already in flight")
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidFileType  = errors.New("invalid file type")
	ErrProviderDisabled = errors.New("provider is not configured")
)

// ErrorCode categorizes errors for handling and reporting.
type ErrorCode string

const (
	CodeValidation    ErrorCode = "VALIDATION"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeProvider      ErrorCode = "PROVIDER"
	CodeBusy          ErrorCode = "BUSY"
	CodeConfiguration ErrorCode = "CONFIG"
)

// EngineError wraps errors with a code and optional cause for boundary handling.
type EngineError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns a formatted error string including the code, message, and cause if present.
func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for use with errors.Is and errors.As.
func (e *EngineError) Unwrap() error {
	return e.Cause
}

// NewError creates a new EngineError with the given code, message, and optional cause.
func NewError(code ErrorCode, message string, cause error) *EngineError {
	return &EngineError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf extracts the error code from err, or empty when err carries none.
func CodeOf(err error) ErrorCode {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// Is reports whether err matches target using errors.Is semantics.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
