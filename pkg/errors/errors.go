// Package errors carries machine-readable codes through mondrian's error
// chains.
//
// Every failure a caller can act on is an [*Error] with a [Code]. The CLI
// prints [UserMessage]; the HTTP server maps the outermost code to a status
// with [HTTPStatus]. Codes survive fmt.Errorf("%w") and [Wrap]:
//
//	err := errors.New(errors.ErrCodeOversizedInput, "image %q is %dx%d", id, w, h)
//	if errors.Is(err, errors.ErrCodeOversizedInput) {
//	    // re-pack with a larger page
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error category.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidVizType Code = "INVALID_VIZ_TYPE"

	// ErrCodeOversizedInput marks an atlas image larger than a page.
	ErrCodeOversizedInput Code = "OVERSIZED_INPUT"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// ErrCodeInvariantViolation means a layout failed its own
	// consistency check. It always indicates a bug.
	ErrCodeInvariantViolation Code = "INVARIANT_VIOLATION"
	ErrCodeInternal           Code = "INTERNAL_ERROR"
	ErrCodeUnsupported        Code = "UNSUPPORTED"
)

var statusByCode = map[Code]int{
	ErrCodeInvalidInput:   http.StatusBadRequest,
	ErrCodeInvalidConfig:  http.StatusBadRequest,
	ErrCodeInvalidFormat:  http.StatusBadRequest,
	ErrCodeInvalidVizType: http.StatusBadRequest,
	ErrCodeOversizedInput: http.StatusUnprocessableEntity,
	ErrCodeNotFound:       http.StatusNotFound,
	ErrCodeFileNotFound:   http.StatusNotFound,
	ErrCodeUnsupported:    http.StatusNotImplemented,
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// Is reports whether any *Error in err's chain carries code.
func Is(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// find returns the outermost *Error in err's chain.
func find(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// GetCode returns the outermost code in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := find(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the outermost message without its code prefix, or
// err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e, ok := find(err); ok {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps a code to a response status. Unmapped codes are 500.
func HTTPStatus(code Code) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}
