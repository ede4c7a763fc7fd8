package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRestoreErrorMessage(t *testing.T) {
	err := NewRemoteError(ErrCodeRemoteRejected, "Group rejected by remote",
		"code: 409, reason: Conflict, message: duplicate targetName")

	msg := err.Error()
	if !strings.Contains(msg, "XMRESTORE-X001") {
		t.Errorf("message missing error code: %s", msg)
	}
	if !strings.Contains(msg, "duplicate targetName") {
		t.Errorf("remote detail not preserved verbatim: %s", msg)
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset by peer")
	err := NewTransportError("upsert failed", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestIsComparesByCode(t *testing.T) {
	a := NewInputError(ErrCodeFileMissing, "sites file not found")
	b := NewInputError(ErrCodeFileMissing, "groups file not found")
	c := NewInputError(ErrCodeParseError, "bad json")

	if !errors.Is(a, b) {
		t.Error("errors with same code should match")
	}
	if errors.Is(a, c) {
		t.Error("errors with different codes should not match")
	}
}

func TestErrorsAsThroughWrap(t *testing.T) {
	inner := NewReferenceError("user not found: bsmith")
	wrapped := fmt.Errorf("applying device: %w", inner)

	var restoreErr *RestoreError
	if !errors.As(wrapped, &restoreErr) {
		t.Fatal("errors.As should unwrap to *RestoreError")
	}
	if restoreErr.Code != ErrCodeUnresolvedRef {
		t.Errorf("code = %s, want %s", restoreErr.Code, ErrCodeUnresolvedRef)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"transport", NewTransportError("timeout", nil), true},
		{"remote reject", NewRemoteError(ErrCodeRemoteRejected, "bad role", ""), false},
		{"validation", NewValidationError("missing name"), false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCodeAndCategory(t *testing.T) {
	err := NewValidationError("site record has no name")
	if GetCode(err) != ErrCodeMissingField {
		t.Errorf("GetCode = %s, want %s", GetCode(err), ErrCodeMissingField)
	}
	if GetCategory(err) != CategoryValidation {
		t.Errorf("GetCategory = %s, want %s", GetCategory(err), CategoryValidation)
	}

	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode on plain error should be empty")
	}
}
