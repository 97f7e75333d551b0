// Package errors provides standardized error handling for the packet workflow.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// CRM boundary errors
const (
	ErrCodeCRMAuthFailed    ErrorCode = "CRM_AUTH_FAILED"
	ErrCodeCRMAPIError      ErrorCode = "CRM_API_ERROR"
	ErrCodeCompanyNotFound  ErrorCode = "COMPANY_NOT_FOUND"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
)

// Packet generation errors
const (
	ErrCodeTemplateInvalid ErrorCode = "TEMPLATE_INVALID"
	ErrCodeInputInvalid    ErrorCode = "INPUT_INVALID"
)

// Service shell errors
const (
	ErrCodeLoginFailed      ErrorCode = "LOGIN_FAILED"
	ErrCodeSessionExpired   ErrorCode = "SESSION_EXPIRED"
	ErrCodeAuditWriteFailed ErrorCode = "AUDIT_WRITE_FAILED"
	ErrCodeEmailSendFailed  ErrorCode = "EMAIL_SEND_FAILED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
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
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewCRMAuthError creates a non-retryable error for a rejected CRM credential (HTTP 401).
func NewCRMAuthError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCRMAuthFailed,
		Message:   "CRM API key is invalid or has expired",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCRMAPIError creates an error for any other non-2xx CRM response,
// preserving the raw status and body for diagnosis.
func NewCRMAPIError(operation string, status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCRMAPIError,
		Message:   fmt.Sprintf("CRM request '%s' failed with status %d", operation, status),
		Details:   body,
		Retryable: false,
		Metadata:  map[string]interface{}{"status": status, "operation": operation},
		Timestamp: time.Now().UTC(),
	}
}

// NewCompanyNotFoundError creates an error for a name search with zero matches.
func NewCompanyNotFoundError(query string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCompanyNotFound,
		Message:   fmt.Sprintf("no company found matching %q; try the numeric company ID instead", query),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewResourceNotFoundError creates an error for a direct-ID lookup that returned 404.
func NewResourceNotFoundError(resource, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   fmt.Sprintf("%s not found in CRM", resource),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateError creates an error for an unreadable template or one
// missing the expected form fields.
func NewTemplateError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateInvalid,
		Message:   "PDF template could not be used",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInputError creates an error for invalid user-supplied input.
func NewInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputInvalid,
		Message:   "invalid input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLoginFailedError creates an error for a rejected login attempt.
func NewLoginFailedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLoginFailed,
		Message:   "username or password is incorrect",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionExpiredError creates an error for a missing or expired session.
func NewSessionExpiredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionExpired,
		Message:   "session is missing or has expired; please log in",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteError creates a retryable error for a failed audit insert.
func NewAuditWriteError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "failed to record packet generation",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailSendError creates a retryable error for a failed packet delivery.
func NewEmailSendError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailSendFailed,
		Message:   "failed to send welcome packet email",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Normalize ensures we always have a StandardError at the workflow boundary.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

// IsNotFound reports whether err is either flavor of not-found.
func IsNotFound(err error) bool {
	return IsCode(err, ErrCodeCompanyNotFound) || IsCode(err, ErrCodeResourceNotFound)
}
