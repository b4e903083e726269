package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType classifies provider failures into the categories the
// retry controller keys its decisions on.
type ErrorType string

const (
	ErrorTypeTransient ErrorType = "transient"  // network, timeout, 5xx
	ErrorTypeRateLimit ErrorType = "rate_limit" // throttled by the provider
	ErrorTypeFatal     ErrorType = "fatal"      // auth, not found, permission
	ErrorTypeCancelled ErrorType = "cancelled"  // session cancel observed
	ErrorTypeUnknown   ErrorType = "unknown"
)

// Error is a classified provider error.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	// RetryAfter carries the provider's throttle hint, if it sent one.
	// Zero means no hint.
	RetryAfter time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// Transient wraps a retryable failure (connection reset, timeout, 5xx).
func Transient(code int, format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeTransient, Code: code, Message: fmt.Sprintf(format, args...)}
}

// RateLimited wraps a throttle response. retryAfter may be zero.
func RateLimited(code int, retryAfter time.Duration, format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeRateLimit, Code: code, RetryAfter: retryAfter, Message: fmt.Sprintf(format, args...)}
}

// Fatal wraps a non-retryable failure (bad credentials, missing profile,
// permission denied).
func Fatal(code int, format string, args ...interface{}) *Error {
	return &Error{Type: ErrorTypeFatal, Code: code, Message: fmt.Sprintf(format, args...)}
}

// TypeOf returns the classification of err, or ErrorTypeUnknown when err
// was never classified.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// RetryAfterHint extracts the provider throttle hint from err, zero if absent.
func RetryAfterHint(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}

// IsRetryable reports whether an error of the given type is worth another
// attempt at all. Rate limits are retryable but follow the critical-wait
// path, not ordinary backoff.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeTransient, ErrorTypeRateLimit:
		return true
	default:
		return false
	}
}

// ClassifyStatusCode maps an HTTP status code onto an error type.
// Code 0 is treated as a network-level failure.
func ClassifyStatusCode(statusCode int) ErrorType {
	switch {
	case statusCode == 0:
		return ErrorTypeTransient
	case statusCode == 429:
		return ErrorTypeRateLimit
	case statusCode == 401, statusCode == 403, statusCode == 404:
		return ErrorTypeFatal
	case statusCode >= 500:
		return ErrorTypeTransient
	default:
		return ErrorTypeUnknown
	}
}
