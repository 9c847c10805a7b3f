package middleware

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatedRequest struct {
	Email string `json:"email" binding:"required,email"`
	Kind  string `json:"kind" binding:"omitempty,oneof=order quote"`
}

func TestFormatValidationErrors(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	err := v.Struct(validatedRequest{Email: "not-an-email", Kind: "draft"})
	require.Error(t, err)

	resp := FormatValidationErrors(err)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	require.Len(t, resp.Error.Details, 2)

	// Field names come from the json tags after SetupValidator.
	assert.Equal(t, "email", resp.Error.Details[0].Field)
	assert.Equal(t, "Invalid email format", resp.Error.Details[0].Message)
	assert.Equal(t, "kind", resp.Error.Details[1].Field)
	assert.Equal(t, "Must be one of: order quote", resp.Error.Details[1].Message)
}

func TestFormatValidationErrorsNonValidationError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Error.Details)
}
