// Package errors provides the coded errors shared by the poster library, the
// CLI and the HTTP server.
//
// Every failure the library reports on purpose carries a [Code]. Callers
// branch on the code rather than on message text:
//
//   - INVALID_*: the input was rejected before any drawing happened
//   - RENDERING_FAILURE: canvas or export failed; fatal and never retried
//   - NOT_FOUND, NETWORK_ERROR, UNSUPPORTED, INTERNAL_ERROR: environment
//
// Usage:
//
//	err := errors.New(errors.ErrCodeInvalidArgument, "radius must be positive, got %g", r)
//	if errors.IsInvalid(err) {
//	    // reject the request
//	}
//
//	err = errors.Wrap(errors.ErrCodeRenderingFailure, cause, "encode %s", format)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig   Code = "INVALID_CONFIG"

	ErrCodeRenderingFailure Code = "RENDERING_FAILURE"

	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
)

// codeStatus maps codes to HTTP statuses; unlisted codes are 500.
var codeStatus = map[Code]int{
	ErrCodeInvalidArgument: http.StatusBadRequest,
	ErrCodeInvalidFormat:   http.StatusBadRequest,
	ErrCodeInvalidConfig:   http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeNetwork:         http.StatusServiceUnavailable,
	ErrCodeUnsupported:     http.StatusNotImplemented,
}

// Invalid reports whether the code is one of the INVALID_* input codes.
func (c Code) Invalid() bool {
	return codeStatus[c] == http.StatusBadRequest
}

// HTTPStatus returns the response status for the code.
func (c Code) HTTPStatus() int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
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

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error that keeps cause reachable through errors.Is/As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// Is reports whether the first *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// IsInvalid reports whether err carries one of the INVALID_* codes.
func IsInvalid(err error) bool {
	return GetCode(err).Invalid()
}

// UserMessage returns the message of the first *Error in err's chain without
// its code prefix, or err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
