package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNewSetsStatusCode(t *testing.T) {
	tests := []struct {
		errorType  ErrorType
		statusCode int
	}{
		{ErrorTypeAuthFailed, http.StatusUnauthorized},
		{ErrorTypeInvalidInput, http.StatusBadRequest},
		{ErrorTypeExecutionTimeout, http.StatusRequestTimeout},
		{ErrorTypeExecutionFailed, http.StatusInternalServerError},
		{ErrorTypeServiceUnavailable, http.StatusServiceUnavailable},
		{ErrorTypeRateLimitExceeded, http.StatusTooManyRequests},
		{ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		err := New(tc.errorType, "test message")
		if err.StatusCode != tc.statusCode {
			t.Errorf("%s: got status %d, want %d", tc.errorType, err.StatusCode, tc.statusCode)
		}
	}
}

func TestErrorString(t *testing.T) {
	err := New(ErrorTypeInvalidInput, "bad language")
	if got, want := err.Error(), "invalid_input: bad language"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err.WithDetails("supported: python, java")
	if got, want := err.Error(), "invalid_input: bad language (supported: python, java)"; got != want {
		t.Errorf("Error() with details = %q, want %q", got, want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	original := errors.New("sandbox runtime unreachable")
	wrapped := Wrap(original, ErrorTypeServiceUnavailable, "execute failed")

	if wrapped.Cause != original {
		t.Error("expected wrapped.Cause to equal original error")
	}
	if !errors.Is(wrapped, original) {
		t.Error("errors.Is should unwrap to original")
	}
}

func TestWrapfFormatsMessage(t *testing.T) {
	original := errors.New("connection refused")
	wrapped := Wrapf(original, ErrorTypeServiceUnavailable, "failed to reach %s:%d", "sandbox-runtime", 2375)

	if got, want := wrapped.Message, "failed to reach sandbox-runtime:2375"; got != want {
		t.Errorf("Message = %q, want %q", got, want)
	}
}

func TestIsType(t *testing.T) {
	authErr := NewAuthError("bad secret")
	if !IsType(authErr, ErrorTypeAuthFailed) {
		t.Error("expected authErr to be ErrorTypeAuthFailed")
	}
	if IsType(authErr, ErrorTypeInvalidInput) {
		t.Error("authErr should not be ErrorTypeInvalidInput")
	}
	if IsType(errors.New("plain error"), ErrorTypeAuthFailed) {
		t.Error("a plain error should never match IsType")
	}
}

func TestPredefinedConstructors(t *testing.T) {
	if err := NewTimeoutError("docker run"); err.Message != "operation timed out: docker run" {
		t.Errorf("NewTimeoutError message = %q", err.Message)
	}
	if err := NewServiceUnavailableError("sandbox runtime"); err.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("NewServiceUnavailableError status = %d", err.StatusCode)
	}
	if err := NewRateLimitError("too many requests"); err.Type != ErrorTypeRateLimitExceeded {
		t.Errorf("NewRateLimitError type = %s", err.Type)
	}
}
