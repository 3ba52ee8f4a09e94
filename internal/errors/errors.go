// Package errors provides a structured application error type shared by
// EXEC, SCORE, HARNESS, and SHIM. It maps a small set of error kinds to
// HTTP status codes so the boundary layer never has to special-case
// individual failure messages.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorType is one of the kinds of failure this API surfaces to callers.
// Student-code failures (syntax errors, wrong answers) are NOT errors of
// this kind — they are normal ExecutionResult values with a failure status.
type ErrorType string

const (
	ErrorTypeAuthFailed         ErrorType = "AUTH_FAILED"
	ErrorTypeInvalidInput       ErrorType = "INVALID_INPUT"
	ErrorTypeExecutionTimeout   ErrorType = "EXECUTION_TIMEOUT"
	ErrorTypeExecutionFailed    ErrorType = "EXECUTION_FAILED"
	ErrorTypeServiceUnavailable ErrorType = "SERVICE_UNAVAILABLE"
	ErrorTypeRateLimitExceeded  ErrorType = "RATE_LIMIT_EXCEEDED"
	ErrorTypeInternal           ErrorType = "INTERNAL_ERROR"
)

// statusCodes maps each ErrorType to the HTTP status SHIM should answer with.
var statusCodes = map[ErrorType]int{
	ErrorTypeAuthFailed:         http.StatusUnauthorized,
	ErrorTypeInvalidInput:       http.StatusBadRequest,
	ErrorTypeExecutionTimeout:   http.StatusRequestTimeout,
	ErrorTypeExecutionFailed:    http.StatusInternalServerError,
	ErrorTypeServiceUnavailable: http.StatusServiceUnavailable,
	ErrorTypeRateLimitExceeded:  http.StatusTooManyRequests,
	ErrorTypeInternal:           http.StatusInternalServerError,
}

// AppError is a structured error carrying a classification, a caller-facing
// message, optional extra detail, the underlying cause (if any), and the
// HTTP status SHIM should respond with.
type AppError struct {
	Type       ErrorType
	Message    string
	Details    string
	Cause      error
	StatusCode int
}

// New creates an AppError of the given type with no cause.
func New(t ErrorType, message string) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: statusCodes[t],
	}
}

// Newf creates an AppError with a formatted message.
func Newf(t ErrorType, format string, args ...interface{}) *AppError {
	return New(t, fmt.Sprintf(format, args...))
}

// Wrap creates an AppError of the given type that wraps an underlying cause.
func Wrap(cause error, t ErrorType, message string) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		Cause:      cause,
		StatusCode: statusCodes[t],
	}
}

// Wrapf wraps cause with a formatted message.
func Wrapf(cause error, t ErrorType, format string, args ...interface{}) *AppError {
	return Wrap(cause, t, fmt.Sprintf(format, args...))
}

// WithDetails attaches extra detail to an existing error and returns it,
// modified in place, for chaining at the call site.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithDetailsf attaches formatted detail.
func (e *AppError) WithDetailsf(format string, args ...interface{}) *AppError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", typeTag(e.Type), e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", typeTag(e.Type), e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

func typeTag(t ErrorType) string {
	switch t {
	case ErrorTypeAuthFailed:
		return "auth"
	case ErrorTypeInvalidInput:
		return "invalid_input"
	case ErrorTypeExecutionTimeout:
		return "execution_timeout"
	case ErrorTypeExecutionFailed:
		return "execution_failed"
	case ErrorTypeServiceUnavailable:
		return "service_unavailable"
	case ErrorTypeRateLimitExceeded:
		return "rate_limit_exceeded"
	default:
		return "internal"
	}
}

// IsType reports whether err is an *AppError of the given type.
func IsType(err error, t ErrorType) bool {
	ae, ok := err.(*AppError)
	if !ok {
		return false
	}
	return ae.Type == t
}

// Predefined constructors for the kinds the gateway uses most often.

func NewAuthError(message string) *AppError {
	return New(ErrorTypeAuthFailed, message)
}

func NewInvalidInputError(message string) *AppError {
	return New(ErrorTypeInvalidInput, message)
}

func NewTimeoutError(operation string) *AppError {
	return Newf(ErrorTypeExecutionTimeout, "operation timed out: %s", operation)
}

func NewServiceUnavailableError(service string) *AppError {
	return Newf(ErrorTypeServiceUnavailable, "%s is temporarily unavailable", service)
}

func NewRateLimitError(message string) *AppError {
	return New(ErrorTypeRateLimitExceeded, message)
}

func NewInternalError(cause error) *AppError {
	return Wrap(cause, ErrorTypeInternal, "an internal error occurred")
}
