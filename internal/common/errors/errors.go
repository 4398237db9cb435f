// Package errors provides the standardized error envelope shared by the copilot services.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"support-copilot/internal/models"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized error codes surfaced to callers.
type ErrorCode string

const (
	// Client errors: the request never reaches generation.
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"

	// Generation failures: carried in a fallback draft's _meta. As an envelope it means 502.
	ErrCodeUpstreamError ErrorCode = "UPSTREAM_ERROR"

	// Transport-level rejections.
	ErrCodeRateLimited      ErrorCode = "RATE_LIMITED"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"

	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode   `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Retryable bool        `json:"-"`
	Timestamp time.Time   `json:"-"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ToErrorInfo converts the error into the wire representation used in responses.
func (e *StandardError) ToErrorInfo() models.ErrorInfo {
	return models.ErrorInfo{
		Code:    string(e.Code),
		Message: e.Message,
		Details: e.Details,
	}
}

// ToResponse wraps the error in the {"error": {...}} envelope.
func (e *StandardError) ToResponse() models.ErrorResponse {
	return models.ErrorResponse{Error: e.ToErrorInfo()}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewBadRequestError creates a non-retryable client error.
func NewBadRequestError(message string, details interface{}) *StandardError {
	return &StandardError{
		Code:      ErrCodeBadRequest,
		Message:   message,
		Details:   details,
		Retryable: IsRetryable(ErrCodeBadRequest),
		Timestamp: time.Now().UTC(),
	}
}

// NewUpstreamError creates a retryable generation failure.
func NewUpstreamError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamError,
		Message:   message,
		Retryable: IsRetryable(ErrCodeUpstreamError),
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError creates a retryable throttling error.
func NewRateLimitedError(retryAfter time.Duration) *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Too many requests, please retry later",
		Details:   map[string]interface{}{"retryAfterSeconds": int(retryAfter.Round(time.Second).Seconds())},
		Retryable: IsRetryable(ErrCodeRateLimited),
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable routing error.
func NewNotFoundError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   "Route not found",
		Details:   map[string]interface{}{"path": path},
		Retryable: IsRetryable(ErrCodeNotFound),
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeInternalError,
		Message:   "Unexpected error",
		Details:   details,
		Retryable: IsRetryable(ErrCodeInternalError),
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// AsStandardError unwraps err into a *StandardError when it is one.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HTTPStatus maps an error code to the status of an {"error": {...}}
// envelope. Degraded drafts carry UPSTREAM_ERROR inside a 200 body and never
// reach this mapping.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeUpstreamError:
		return http.StatusBadGateway
	case ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// IsRetryable reports whether a caller may reasonably retry.
func IsRetryable(code ErrorCode) bool {
	switch code {
	case ErrCodeUpstreamError, ErrCodeRateLimited:
		return true
	default:
		return false
	}
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "BAD_REQUEST") || strings.Contains(codeStr, "NOT_"):
		return "CLIENT"
	case strings.Contains(codeStr, "UPSTREAM"):
		return "AI"
	case strings.Contains(codeStr, "RATE"):
		return "THROTTLING"
	default:
		return "OTHER"
	}
}
