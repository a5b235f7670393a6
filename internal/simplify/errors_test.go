package simplify

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Class(t *testing.T) {
	tests := []struct {
		name     string
		err      *APIError
		expected ErrorClass
	}{
		{
			name:     "validation",
			err:      &APIError{Code: "validation", Message: "bad token"},
			expected: ClassValidation,
		},
		{
			name:     "authentication",
			err:      &APIError{Code: "authentication", Message: "bad keys"},
			expected: ClassAuthentication,
		},
		{
			name:     "system",
			err:      &APIError{Code: "system", Message: "internal"},
			expected: ClassSystem,
		},
		{
			name:     "unknown code",
			err:      &APIError{Code: "object.not.found"},
			expected: ClassUnknown,
		},
		{
			name: "already captured field error",
			err: &APIError{
				Code: "validation",
				FieldErrors: []FieldError{
					{Field: "payment", Code: FieldErrorCodeAlreadyCaptured, Message: "already captured"},
				},
			},
			expected: ClassAlreadyCaptured,
		},
		{
			name: "system code outranks already captured field error",
			err: &APIError{
				Code: "system",
				FieldErrors: []FieldError{
					{Field: "payment", Code: FieldErrorCodeAlreadyCaptured},
				},
			},
			expected: ClassSystem,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Class())
		})
	}
}

func TestAPIError_FirstFieldError(t *testing.T) {
	err := &APIError{
		Code: "validation",
		FieldErrors: []FieldError{
			{Field: "amount", Code: "invalid", Message: "too small"},
			{Field: "currency", Code: "invalid", Message: "unsupported"},
		},
	}

	first := err.FirstFieldError()
	require.NotNil(t, first)
	assert.Equal(t, "amount", first.Field)

	empty := &APIError{Code: "system"}
	assert.Nil(t, empty.FirstFieldError())
}

func TestAPIError_ErrorIncludesFieldErrors(t *testing.T) {
	err := &APIError{
		Code: "validation",
		FieldErrors: []FieldError{
			{Field: "card.number", Code: "invalid", Message: "Invalid card number"},
		},
	}

	assert.Contains(t, err.Error(), "card.number")
	assert.Contains(t, err.Error(), "invalid")
}

func TestAsAPIError(t *testing.T) {
	apiErr := &APIError{Code: "validation"}
	wrapped := fmt.Errorf("gateway call: %w", apiErr)

	got, ok := AsAPIError(wrapped)
	require.True(t, ok)
	assert.Equal(t, apiErr, got)

	_, ok = AsAPIError(errors.New("plain"))
	assert.False(t, ok)
}
