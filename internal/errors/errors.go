package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a registry or installed-state file is missing.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeParse indicates file content does not match the expected schema.
	ErrCodeParse ErrorCode = "PARSE_ERROR"
	// ErrCodeLibraryNotFound indicates a query has no registry match.
	ErrCodeLibraryNotFound ErrorCode = "LIBRARY_NOT_FOUND"
	// ErrCodeAlreadyInstalled indicates the library is already in the installed record.
	ErrCodeAlreadyInstalled ErrorCode = "ALREADY_INSTALLED"
	// ErrCodeNotInstalled indicates the library is absent from the installed record.
	ErrCodeNotInstalled ErrorCode = "NOT_INSTALLED"
	// ErrCodeFetch indicates the version-control clone or pull failed.
	ErrCodeFetch ErrorCode = "FETCH_ERROR"
	// ErrCodeIO indicates a copy, remove, create, lock, or persist failure.
	ErrCodeIO ErrorCode = "IO_ERROR"
	// ErrCodeInvalidRequest indicates malformed input or configuration.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// Sentinels for errors.Is comparisons. Matching is by code only, so a
// wrapped StructuredError with a different message still matches.
var (
	ErrNotFound         = New(ErrCodeNotFound, "file not found")
	ErrParse            = New(ErrCodeParse, "malformed file")
	ErrLibraryNotFound  = New(ErrCodeLibraryNotFound, "library not found")
	ErrAlreadyInstalled = New(ErrCodeAlreadyInstalled, "library already installed")
	ErrNotInstalled     = New(ErrCodeNotInstalled, "library is not installed")
	ErrFetch            = New(ErrCodeFetch, "fetch failed")
	ErrIO               = New(ErrCodeIO, "i/o failure")
	ErrInvalidRequest   = New(ErrCodeInvalidRequest, "invalid request")
)

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a StructuredError with the same code.
func (e *StructuredError) Is(target error) bool {
	t, ok := target.(*StructuredError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf returns the code of the outermost StructuredError in err's chain,
// or the empty code when there is none.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}
