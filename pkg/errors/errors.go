// Package errors provides structured error types for cellgen.
//
// Every failure surfaced by the technology model, the layout database and the
// router carries a machine-readable [Code] so that callers (the CLI, the HTTP
// API, plan execution) can decide how to report it without string matching.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input or configuration validation failures
//   - *NOT_FOUND: Resource not found
//   - INTERNAL_*: Unexpected internal errors
//
// Configuration errors (INVALID_TECHNOLOGY) mean the technology table itself
// is unusable; they abort the whole generation run. Argument errors
// (INVALID_ARGUMENT) abort only the offending call.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidTechnology, "no via above height %d", h)
//	if errors.Is(err, errors.ErrCodeInvalidTechnology) {
//	    // abort the cell
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidTechnology, origErr, "load %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error class.
type Code string

const (
	ErrCodeInvalidInput      Code = "INVALID_INPUT"      // malformed request or option
	ErrCodeInvalidArgument   Code = "INVALID_ARGUMENT"   // bad argument to one call
	ErrCodeInvalidTechnology Code = "INVALID_TECHNOLOGY" // unusable technology table
	ErrCodeInvalidPlan       Code = "INVALID_PLAN"
	ErrCodeInvalidFormat     Code = "INVALID_FORMAT"
	ErrCodeInvalidName       Code = "INVALID_NAME"

	ErrCodeNotFound           Code = "NOT_FOUND"
	ErrCodeTechnologyNotFound Code = "TECHNOLOGY_NOT_FOUND"
	ErrCodeLayoutNotFound     Code = "LAYOUT_NOT_FOUND"
	ErrCodeFileNotFound       Code = "FILE_NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error pairs a [Code] with a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error formats as "CODE: message" or "CODE: message: cause".
func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is [New] with an underlying cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// find returns the outermost *Error in err's chain.
func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := find(err)
	return ok && e.Code == code
}

// GetCode returns the code of the outermost *Error, or "" if there is none.
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without code prefix or cause, falling
// back to err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

// IsConfiguration reports whether err invalidates the technology itself,
// and with it every cell generated against it.
func IsConfiguration(err error) bool {
	return Is(err, ErrCodeInvalidTechnology)
}

// IsNotFound reports whether err carries any not-found code.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeTechnologyNotFound, ErrCodeLayoutNotFound, ErrCodeFileNotFound:
		return true
	}
	return false
}
