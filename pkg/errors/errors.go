// Package errors attaches machine-readable codes to canvasgraph errors.
//
// Core packages such as diagram and interact return plain sentinel errors.
// The pipeline, the CLI and the HTTP server wrap them here so that callers
// can branch on a [Code] and show a message without the code prefix:
//
//	err := errors.Wrap(errors.ErrCodeUnknownNode, cause, "populate canvas %s", id)
//	if errors.Is(err, errors.ErrCodeUnknownNode) {
//	    fmt.Println(errors.Detail(err))
//	}
//
// Codes are grouped by prefix: INVALID_* for rejected input, NOT_FOUND and
// UNKNOWN_* for missing references, BROKEN_INVARIANT when the graph model
// is inconsistent, INTERNAL_ERROR for everything else.
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidSpec   Code = "INVALID_SPEC"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"
	ErrCodeUnknownNode  Code = "UNKNOWN_NODE"

	ErrCodeBrokenInvariant Code = "BROKEN_INVARIANT"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with code and a formatted message that wraps cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// outermost returns the first *Error in err's chain.
func outermost(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	e, ok := outermost(err)
	return ok && e.Code == code
}

// GetCode returns the code of the outermost coded error in err's chain, or
// "" when there is none.
func GetCode(err error) Code {
	if e, ok := outermost(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost coded error, without the
// code and cause, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e, ok := outermost(err); ok {
		return e.Message
	}
	return err.Error()
}

// Detail is UserMessage followed by the cause, without the code prefix.
// It is what the CLI and the HTTP API show for input errors.
func Detail(err error) string {
	e, ok := outermost(err)
	if !ok {
		return err.Error()
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

// IsInputError reports whether err was caused by bad caller input rather
// than by an internal fault.
func IsInputError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath,
		ErrCodeInvalidSpec, ErrCodeUnknownNode, ErrCodeFileNotFound, ErrCodeNotFound:
		return true
	}
	return false
}
