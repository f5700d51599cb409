// Package errors provides standardized error values for collaborator and store failures.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeCollaboratorFailed      ErrorCode = "COLLABORATOR_FAILED"
	ErrCodeCollaboratorUnavailable ErrorCode = "COLLABORATOR_UNAVAILABLE"
	ErrCodeHandlerPanic            ErrorCode = "HANDLER_PANIC"

	ErrCodeSafetyRefused ErrorCode = "SAFETY_REFUSED"

	ErrCodeStoreFailed     ErrorCode = "STORE_FAILED"
	ErrCodeStoreConnection ErrorCode = "STORE_CONNECTION_FAILED"

	ErrCodeTimeParseFailed ErrorCode = "TIME_PARSE_FAILED"
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	ErrCodeSettingsInvalid ErrorCode = "SETTINGS_INVALID"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithMetadata returns the error with an extra metadata entry.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. Error Constructors
// ==========================

// NewCollaboratorFailedError reports an OS or library call that failed inside a handler.
func NewCollaboratorFailedError(collaborator string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeCollaboratorFailed,
		Message:   fmt.Sprintf("%s failed", collaborator),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCollaboratorUnavailableError reports a missing executable, device or service.
func NewCollaboratorUnavailableError(collaborator, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCollaboratorUnavailable,
		Message:   fmt.Sprintf("%s unavailable", collaborator),
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHandlerPanicError wraps a value recovered from a panicking handler.
func NewHandlerPanicError(handler string, recovered interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeHandlerPanic,
		Message:   fmt.Sprintf("%v", recovered),
		Details:   fmt.Sprintf("handler: %s", handler),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSafetyRefusedError marks a deliberate no-op from the safety gate.
func NewSafetyRefusedError(action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSafetyRefused,
		Message:   "Action blocked by safety gate",
		Details:   fmt.Sprintf("action: %s", action),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreFailedError reports a JSON document or relational log failure.
func NewStoreFailedError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreFailed,
		Message:   "Memory store operation failed",
		Details:   fmt.Sprintf("op: %s, error: %v", op, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreConnectionError reports a relational store that could not be opened.
func NewStoreConnectionError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreConnection,
		Message:   "Relational store connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTimeParseFailedError reports text with no resolvable time.
func NewTimeParseFailedError(text string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeParseFailed,
		Message:   "Could not parse time from text",
		Details:   fmt.Sprintf("text: %q", text),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidArgumentError reports a missing or malformed argument.
func NewInvalidArgumentError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidArgument,
		Message:   fmt.Sprintf("invalid %s", field),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSettingsInvalidError reports a settings document that failed schema validation.
func NewSettingsInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSettingsInvalid,
		Message:   "Settings document failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// CodeOf returns the code carried by err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	return Normalize(err).Code
}

// IsSafetyRefusal reports whether err is a safety gate refusal.
func IsSafetyRefusal(err error) bool {
	return CodeOf(err) == ErrCodeSafetyRefused
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	switch code {
	case ErrCodeCollaboratorUnavailable, ErrCodeStoreFailed, ErrCodeStoreConnection:
		return true
	default:
		return false
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "COLLABORATOR") || code == ErrCodeHandlerPanic:
		return "COLLABORATOR"
	case strings.HasPrefix(codeStr, "SAFETY"):
		return "SAFETY"
	case strings.HasPrefix(codeStr, "STORE"):
		return "STORAGE"
	case strings.Contains(codeStr, "PARSE") || strings.Contains(codeStr, "INVALID"):
		return "INPUT"
	default:
		return "OTHER"
	}
}
