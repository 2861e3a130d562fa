package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the different classes of failure a run can hit
type ErrorType string

const (
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeStatus     ErrorType = "status"
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypePayload    ErrorType = "payload"
	ErrorTypeDecode     ErrorType = "decode"
	ErrorTypeFilesystem ErrorType = "filesystem"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error is a typed failure with an optional HTTP status code and cause
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error without a cause
func New(t ErrorType, code int, msg string) *Error {
	return &Error{Type: t, Message: msg, Code: code}
}

// Wrap creates a typed error around a cause
func Wrap(t ErrorType, err error, msg string) *Error {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &Error{Type: t, Message: msg, Err: err}
}

// FromStatus maps a non-success HTTP status code to a typed error
func FromStatus(code int) *Error {
	switch code {
	case http.StatusUnauthorized:
		return New(ErrorTypeAuth, code, "invalid or missing access key")
	case http.StatusForbidden:
		return New(ErrorTypeAuth, code, "access forbidden")
	case http.StatusNotFound:
		return New(ErrorTypeNotFound, code, "no matching resource")
	case http.StatusTooManyRequests:
		return New(ErrorTypeRateLimit, code, "rate limit exceeded")
	default:
		return New(ErrorTypeStatus, code, fmt.Sprintf("unexpected status code: %d", code))
	}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsFatal reports whether an error should abort the whole run.
// Only filesystem failures are fatal, and only where the caller says so
// (directory setup); everything else is per-item.
func IsFatal(err error) bool {
	return TypeOf(err) == ErrorTypeFilesystem
}
