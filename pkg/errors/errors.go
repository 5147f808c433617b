// Package errors provides structured error types for the flowchart layout core.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP server and library callers
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (spacing, direction, node ids)
//   - CYCLIC_GRAPH, DANGLING_DEPENDENCY: Graph-shape problems found during a pass
//   - UNKNOWN_ANCHOR_INDEX: Programmer errors in geometry requests
//   - INTERNAL_*: Unexpected internal errors
//
// Layout errors are deterministic: the same input always reproduces the same
// error, so none of them are retryable.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeCyclicGraph, "cycle through %s", id)
//	if errors.Is(err, errors.ErrCodeCyclicGraph) {
//	    // Refuse to re-render
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidNodeID    Code = "INVALID_NODE_ID"
	ErrCodeDuplicateNode    Code = "DUPLICATE_NODE"
	ErrCodeInvalidSpacing   Code = "INVALID_SPACING"
	ErrCodeInvalidDirection Code = "INVALID_DIRECTION"
	ErrCodeInvalidStrategy  Code = "INVALID_STRATEGY"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	// Graph shape errors
	ErrCodeCyclicGraph        Code = "CYCLIC_GRAPH"
	ErrCodeDanglingDependency Code = "DANGLING_DEPENDENCY"
	ErrCodeNotFound           Code = "NOT_FOUND"

	// Geometry errors
	ErrCodeUnknownAnchor Code = "UNKNOWN_ANCHOR_INDEX"

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

// Fatal reports whether err aborts a layout pass. Dangling dependencies are
// the only non-fatal class; everything else, including unknown codes, is fatal.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return GetCode(err) != ErrCodeDanglingDependency
}
