package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalidIsValidationError(t *testing.T) {
	err := Invalid("an image is required")

	assert.True(t, errors.Is(err, ErrServerValidation))
	assert.Equal(t, "an image is required", UserMessage(err, "fallback"))
	assert.Equal(t, "server validation failed: an image is required", err.Error())
}

func TestUserMessageFallsBack(t *testing.T) {
	wrapped := fmt.Errorf("GET /reports: %w", ErrNetwork)
	assert.Equal(t, "fallback", UserMessage(wrapped, "fallback"))

	be := &BackendError{Status: 400, Err: ErrServerValidation}
	assert.Equal(t, "fallback", UserMessage(be, "fallback"))
	assert.Contains(t, be.Error(), "status 400")
}
