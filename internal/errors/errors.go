// Package errors provides structured error types for xmrestore
// with error codes, categories, and remediation guidance
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error codes for xmrestore
// Format: XMRESTORE-<CATEGORY><NUMBER>
// Categories: C=Config, A=Auth, I=Input, V=Validation, R=Reference, X=Remote, N=Network
const (
	// Configuration errors (user fix)
	ErrCodeInvalidConfig ErrorCode = "XMRESTORE-C001"
	ErrCodeMissingConfig ErrorCode = "XMRESTORE-C002"
	ErrCodeInvalidMode   ErrorCode = "XMRESTORE-C003"
	ErrCodeBadDefaults   ErrorCode = "XMRESTORE-C004"

	// Authentication errors (credential fix)
	ErrCodeAuthFailed   ErrorCode = "XMRESTORE-A001"
	ErrCodeMissingCreds ErrorCode = "XMRESTORE-A002"

	// Input errors (capture file side, abort the kind)
	ErrCodeFileMissing    ErrorCode = "XMRESTORE-I001"
	ErrCodeParseError     ErrorCode = "XMRESTORE-I002"
	ErrCodeSchemaMismatch ErrorCode = "XMRESTORE-I003"

	// Validation errors (record side, skip the record)
	ErrCodeMissingField ErrorCode = "XMRESTORE-V001"
	ErrCodeBadRecord    ErrorCode = "XMRESTORE-V002"

	// Reference errors (dependency side)
	ErrCodeUnresolvedRef ErrorCode = "XMRESTORE-R001"

	// Remote errors (target-side business rule rejections)
	ErrCodeRemoteRejected ErrorCode = "XMRESTORE-X001"
	ErrCodeNotImplemented ErrorCode = "XMRESTORE-X002"

	// Network errors (transport failures)
	ErrCodeTransport   ErrorCode = "XMRESTORE-N001"
	ErrCodeUnreachable ErrorCode = "XMRESTORE-N002"
	ErrCodeTimeout     ErrorCode = "XMRESTORE-N003"
)

// Category represents error categories
type Category string

const (
	CategoryConfig     Category = "configuration"
	CategoryAuth       Category = "authentication"
	CategoryInput      Category = "input"
	CategoryValidation Category = "validation"
	CategoryReference  Category = "reference"
	CategoryRemote     Category = "remote"
	CategoryNetwork    Category = "network"
)

// RestoreError is a structured error with code, category, and remediation
type RestoreError struct {
	Code        ErrorCode
	Category    Category
	Message     string
	Details     string
	Remediation string
	Cause       error
}

// Error implements error interface
func (e *RestoreError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += fmt.Sprintf(": %s", e.Details)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause
func (e *RestoreError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for error comparison
func (e *RestoreError) Is(target error) bool {
	if t, ok := target.(*RestoreError); ok {
		return e.Code == t.Code
	}
	return false
}

// NewConfigError creates a configuration error
func NewConfigError(code ErrorCode, message string, remediation string) *RestoreError {
	return &RestoreError{
		Code:        code,
		Category:    CategoryConfig,
		Message:     message,
		Remediation: remediation,
	}
}

// NewAuthError creates an authentication error
func NewAuthError(code ErrorCode, message string, remediation string) *RestoreError {
	return &RestoreError{
		Code:        code,
		Category:    CategoryAuth,
		Message:     message,
		Remediation: remediation,
	}
}

// NewInputError creates a capture-file input error
func NewInputError(code ErrorCode, message string) *RestoreError {
	return &RestoreError{
		Code:     code,
		Category: CategoryInput,
		Message:  message,
	}
}

// NewValidationError creates a per-record validation error
func NewValidationError(message string) *RestoreError {
	return &RestoreError{
		Code:     ErrCodeMissingField,
		Category: CategoryValidation,
		Message:  message,
	}
}

// NewReferenceError creates an unresolved-reference error
func NewReferenceError(message string) *RestoreError {
	return &RestoreError{
		Code:     ErrCodeUnresolvedRef,
		Category: CategoryReference,
		Message:  message,
	}
}

// NewRemoteError creates a remote rejection error. The detail string is the
// remote's own code/reason/message envelope, preserved verbatim.
func NewRemoteError(code ErrorCode, message string, detail string) *RestoreError {
	return &RestoreError{
		Code:     code,
		Category: CategoryRemote,
		Message:  message,
		Details:  detail,
	}
}

// NewTransportError creates a network transport error
func NewTransportError(message string, cause error) *RestoreError {
	return &RestoreError{
		Code:     ErrCodeTransport,
		Category: CategoryNetwork,
		Message:  message,
		Cause:    cause,
	}
}

// WithDetails adds details to an error
func (e *RestoreError) WithDetails(details string) *RestoreError {
	e.Details = details
	return e
}

// WithCause adds an underlying cause
func (e *RestoreError) WithCause(cause error) *RestoreError {
	e.Cause = cause
	return e
}

// IsRetryable returns true if the error is transient and can be retried.
// Retry policy belongs to the directory client, never to the restore engine.
func IsRetryable(err error) bool {
	var restoreErr *RestoreError
	if errors.As(err, &restoreErr) {
		switch restoreErr.Code {
		case ErrCodeTransport, ErrCodeTimeout, ErrCodeUnreachable:
			return true
		}
	}
	return false
}

// GetCategory returns the error category if available
func GetCategory(err error) Category {
	var restoreErr *RestoreError
	if errors.As(err, &restoreErr) {
		return restoreErr.Category
	}
	return ""
}

// GetCode returns the error code if available
func GetCode(err error) ErrorCode {
	var restoreErr *RestoreError
	if errors.As(err, &restoreErr) {
		return restoreErr.Code
	}
	return ""
}
