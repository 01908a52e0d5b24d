// internal/workers/application/validate-application-data/handler_test.go
package validateapplicationdata

import (
	"context"
	"testing"

	apperrors "application-workers/internal/common/errors"
	"application-workers/internal/common/logger"
	"application-workers/internal/common/validation"
	"application-workers/internal/lifecycle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ValidUpdate(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Schema: validation.SchemaUpdate,
		Payload: map[string]interface{}{
			"city":       "Paris",
			"socialLink": map[string]interface{}{"phoneNumber": " +33612345678 "},
		},
	})

	require.NoError(t, err)
	assert.True(t, output.IsValid)
	assert.Empty(t, output.ValidationErrors)
	assert.Empty(t, output.Message)

	social := output.ValidatedData["socialLink"].(map[string]interface{})
	assert.Equal(t, "+33612345678", social["phoneNumber"])
}

func TestHandler_Execute_EmptyUpdate(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Schema:  validation.SchemaUpdate,
		Payload: map[string]interface{}{},
	})

	require.NoError(t, err)
	assert.False(t, output.IsValid)
	assert.Equal(t, lifecycle.MsgEmptyUpdatePayload, output.Message)
	require.Len(t, output.ValidationErrors, 1)
	assert.Equal(t, validation.CodeEmptyPayload, output.ValidationErrors[0].Code)
	assert.Nil(t, output.ValidatedData)
}

func TestHandler_Execute_InvalidFeedback(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Schema:  validation.SchemaFeedback,
		Payload: map[string]interface{}{"status": "changes_requested"},
	})

	require.NoError(t, err)
	assert.False(t, output.IsValid)
	assert.Equal(t, msgValidationFailed, output.Message)
	assert.NotEmpty(t, output.ValidationErrors)
}

func TestHandler_Execute_QueryRejectsUnknownParameter(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Schema:  validation.SchemaQuery,
		Payload: map[string]interface{}{"userId": "user-1", "page": "2"},
	})

	require.NoError(t, err)
	assert.False(t, output.IsValid)
	require.Len(t, output.ValidationErrors, 1)
	assert.Equal(t, validation.CodeExtraField, output.ValidationErrors[0].Code)
}

func TestHandler_Execute_UnknownSchema(t *testing.T) {
	handler := createTestHandler(t)

	output, err := handler.Execute(context.Background(), &Input{
		Schema:  "franchise",
		Payload: map[string]interface{}{"a": "b"},
	})

	assert.Nil(t, output)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeApplicationValidationFailed, apperrors.Normalize(err).Code)
}
