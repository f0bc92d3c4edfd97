// Package errors provides standardized error handling for the itinerary pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input validation
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeUnknownLocation  ErrorCode = "UNKNOWN_LOCATION"

	// Enrichment providers
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeProviderTimeout     ErrorCode = "PROVIDER_TIMEOUT"

	// AI synthesis
	ErrCodeAIRateLimited     ErrorCode = "AI_RATE_LIMITED"
	ErrCodeAITimeout         ErrorCode = "AI_TIMEOUT"
	ErrCodeAIUnavailable     ErrorCode = "AI_UNAVAILABLE"
	ErrCodeAIInvalidResponse ErrorCode = "AI_INVALID_RESPONSE"

	// Shared infrastructure
	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
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

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a non-retryable input validation error.
// field identifies the offending request field.
func NewValidationError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Trip request validation failed",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownLocationError creates a non-retryable error for a destination
// the weather backend cannot resolve.
func NewUnknownLocationError(location string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownLocation,
		Message:   "Location not found",
		Details:   fmt.Sprintf("location: %s", location),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderUnavailableError creates a retryable provider error.
func NewProviderUnavailableError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderUnavailable,
		Message:   "Enrichment provider unavailable",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: true,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderTimeoutError creates a retryable provider timeout error.
func NewProviderTimeoutError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTimeout,
		Message:   "Enrichment provider timed out",
		Details:   fmt.Sprintf("provider: %s", provider),
		Retryable: true,
		Metadata:  map[string]interface{}{"provider": provider},
		Timestamp: time.Now().UTC(),
	}
}

// NewAIRateLimitedError creates a retryable AI service rate limit error.
func NewAIRateLimitedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIRateLimited,
		Message:   "AI service rate limited",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAITimeoutError creates a retryable AI service timeout error.
func NewAITimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeAITimeout,
		Message:   "AI service timed out",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIUnavailableError creates a retryable error for an AI service that
// could not be reached or kept answering with server errors.
func NewAIUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIUnavailable,
		Message:   "AI service unavailable",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAIInvalidResponseError creates a non-retryable AI response error.
func NewAIInvalidResponseError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAIInvalidResponse,
		Message:   "AI service returned an unusable response",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Response cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected internal error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Classification Helpers
// ==========================

// IsValidation reports whether err rejects the caller's input.
func IsValidation(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code == ErrCodeValidationFailed || stdErr.Code == ErrCodeUnknownLocation
	}
	return false
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}

// CodeOf extracts the error code, or INTERNAL_ERROR for foreign errors.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ErrCodeInternal
}

// GetErrorCategory groups codes for logging and metrics.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeValidationFailed, ErrCodeUnknownLocation:
		return "validation"
	case ErrCodeProviderUnavailable, ErrCodeProviderTimeout:
		return "provider"
	case ErrCodeAIRateLimited, ErrCodeAITimeout, ErrCodeAIUnavailable, ErrCodeAIInvalidResponse:
		return "ai"
	case ErrCodeCacheUnavailable:
		return "infrastructure"
	default:
		return "internal"
	}
}
