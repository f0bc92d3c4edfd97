// internal/common/errors/errors_test.go
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	validation := NewValidationError("duration", "too long")
	assert.True(t, IsValidation(validation))
	assert.False(t, IsRetryable(validation))
	assert.Equal(t, ErrCodeValidationFailed, CodeOf(validation))
	assert.Equal(t, "duration", validation.Metadata["field"])

	unknown := NewUnknownLocationError("Atlantis")
	assert.True(t, IsValidation(unknown))
	assert.False(t, IsRetryable(unknown))

	timeout := NewProviderTimeoutError("weather")
	assert.False(t, IsValidation(timeout))
	assert.True(t, IsRetryable(timeout))
	assert.Equal(t, ErrCodeProviderTimeout, CodeOf(timeout))
}

func TestClassification_WrappedAndForeign(t *testing.T) {
	wrapped := fmt.Errorf("enrich: %w", NewProviderUnavailableError("weather", errors.New("refused")))
	assert.True(t, IsRetryable(wrapped))
	assert.Equal(t, ErrCodeProviderUnavailable, CodeOf(wrapped))

	foreign := errors.New("plain failure")
	assert.False(t, IsValidation(foreign))
	assert.False(t, IsRetryable(foreign))
	assert.Equal(t, ErrCodeInternal, CodeOf(foreign))
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeValidationFailed, "validation"},
		{ErrCodeUnknownLocation, "validation"},
		{ErrCodeProviderUnavailable, "provider"},
		{ErrCodeProviderTimeout, "provider"},
		{ErrCodeAIRateLimited, "ai"},
		{ErrCodeAITimeout, "ai"},
		{ErrCodeAIUnavailable, "ai"},
		{ErrCodeAIInvalidResponse, "ai"},
		{ErrCodeCacheUnavailable, "infrastructure"},
		{ErrCodeInternal, "internal"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GetErrorCategory(tt.code), "code %s", tt.code)
	}
}

func TestStandardError_Error(t *testing.T) {
	err := NewAIRateLimitedError("status 429")
	assert.Equal(t, "StandardError[AI_RATE_LIMITED]: AI service rate limited", err.Error())
}
