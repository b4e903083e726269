package errors

import (
	"fmt"
	"testing"
	"time"
)

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		code     int
		expected ErrorType
	}{
		{0, ErrorTypeTransient},
		{429, ErrorTypeRateLimit},
		{401, ErrorTypeFatal},
		{403, ErrorTypeFatal},
		{404, ErrorTypeFatal},
		{500, ErrorTypeTransient},
		{502, ErrorTypeTransient},
		{503, ErrorTypeTransient},
		{200, ErrorTypeUnknown},
	}

	for _, test := range tests {
		if got := ClassifyStatusCode(test.code); got != test.expected {
			t.Errorf("ClassifyStatusCode(%d) = %s, expected %s", test.code, got, test.expected)
		}
	}
}

func TestTypeOfWrappedError(t *testing.T) {
	inner := Transient(502, "bad gateway")
	wrapped := fmt.Errorf("fetching page: %w", inner)

	if got := TypeOf(wrapped); got != ErrorTypeTransient {
		t.Errorf("TypeOf(wrapped) = %s, expected %s", got, ErrorTypeTransient)
	}
	if got := TypeOf(fmt.Errorf("plain")); got != ErrorTypeUnknown {
		t.Errorf("TypeOf(plain) = %s, expected %s", got, ErrorTypeUnknown)
	}
}

func TestRetryAfterHint(t *testing.T) {
	err := RateLimited(429, 90*time.Second, "too many requests")
	if got := RetryAfterHint(err); got != 90*time.Second {
		t.Errorf("RetryAfterHint = %v, expected 90s", got)
	}
	if got := RetryAfterHint(Transient(0, "conn reset")); got != 0 {
		t.Errorf("RetryAfterHint on transient = %v, expected 0", got)
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(ErrorTypeTransient) {
		t.Error("transient errors should be retryable")
	}
	if !IsRetryable(ErrorTypeRateLimit) {
		t.Error("rate limit errors should be retryable")
	}
	if IsRetryable(ErrorTypeFatal) {
		t.Error("fatal errors should not be retryable")
	}
	if IsRetryable(ErrorTypeCancelled) {
		t.Error("cancelled should not be retryable")
	}
}
