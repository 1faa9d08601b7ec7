// Package errors provides structured error types for diagramtool.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the pipeline and the HTTP server
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into the four failure classes of the extraction pipeline:
//
//   - Input errors (FILE_NOT_FOUND, LINE_OUT_OF_RANGE, INVALID_SOURCE): the
//     source tree on disk cannot be extracted. Fatal for the whole run.
//   - Invariant violations (DUPLICATE_PARSE, INVARIANT, INHERITANCE_CYCLE):
//     the caller misused a pipeline handle or the model is inconsistent.
//   - Lookup misses (LOOKUP_MISS): a relation endpoint was not placed. This
//     is unreachable once dangling parents are materialized as stubs.
//   - Request errors (INVALID_*, UNSUPPORTED): bad options or paths.
//
// Unresolvable types are never errors; they resolve to "unknown".
//
// # Usage
//
//	err := errors.New(errors.ErrCodeFileNotFound, "import target %s not found", path)
//	if errors.Is(err, errors.ErrCodeFileNotFound) {
//	    // Handle missing file
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidSource, origErr, "parse %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Request validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidStrategy Code = "INVALID_STRATEGY"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Source input errors
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeLineOutOfRange  Code = "LINE_OUT_OF_RANGE"
	ErrCodeInvalidSource   Code = "INVALID_SOURCE"
	ErrCodeUnsupportedFile Code = "UNSUPPORTED_FILE"

	// Invariant violations
	ErrCodeDuplicateParse   Code = "DUPLICATE_PARSE"
	ErrCodeInvariant        Code = "INVARIANT"
	ErrCodeInheritanceCycle Code = "INHERITANCE_CYCLE"

	// Assertion failures
	ErrCodeLookupMiss Code = "LOOKUP_MISS"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInputError reports whether err stems from unreadable or inconsistent
// source input rather than from a programming error.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeFileNotFound, ErrCodeLineOutOfRange, ErrCodeInvalidSource, ErrCodeUnsupportedFile:
		return true
	}
	return false
}

// IsInvariantViolation reports whether err signals a misuse of the pipeline
// (stale phase handle, re-parse, cyclic hierarchy, unresolved relation).
func IsInvariantViolation(err error) bool {
	switch GetCode(err) {
	case ErrCodeDuplicateParse, ErrCodeInvariant, ErrCodeInheritanceCycle, ErrCodeLookupMiss:
		return true
	}
	return false
}
