package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError_Rejection(t *testing.T) {
	stdErr := NewRejectionError(ErrCodeNudgeTooSoon, "Nudge unavailable. You'll be able to nudge again after 24 hours.", http.StatusTooManyRequests)

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "NUDGE_TOO_SOON", bpmnErr.Code)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.False(t, bpmnErr.Retryable)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "NUDGE_TOO_SOON", vars["errorCode"])
	assert.Equal(t, http.StatusTooManyRequests, vars["httpStatus"])
	assert.Equal(t, "NUDGE_TOO_SOON", vars["originalErrorCode"])
}

func TestConvertToBPMNError_StoreFailureIsNotRetried(t *testing.T) {
	stdErr := NewStoreFailureError("nudge", fmt.Errorf("connection refused"))

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "STORE_FAILURE", bpmnErr.Code)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.Equal(t, http.StatusInternalServerError, stdErr.HTTPStatus())
	assert.Contains(t, bpmnErr.Details, "connection refused")
}

func TestConvertToBPMNError_RetryableTechnicalError(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewNotificationSendFailedError("email", fmt.Errorf("throttled")))
	assert.Equal(t, 3, bpmnErr.Retries)
	assert.True(t, bpmnErr.Retryable)
}

func TestEmptyPayloadMapsToValidationBoundary(t *testing.T) {
	stdErr := NewEmptyUpdatePayloadError("Update payload must include at least one editable field.")
	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "APPLICATION_VALIDATION_FAILED", bpmnErr.Code)
	assert.Equal(t, "EMPTY_UPDATE_PAYLOAD", bpmnErr.ErrorVariables["originalErrorCode"])
	assert.Equal(t, http.StatusBadRequest, stdErr.HTTPStatus())
}

func TestNormalize(t *testing.T) {
	original := NewDuplicateApplicationError("user-1", "app-1")
	wrapped := fmt.Errorf("create: %w", original)

	got := Normalize(wrapped)
	require.Same(t, original, got)

	unknown := Normalize(fmt.Errorf("boom"))
	assert.Equal(t, ErrCodeInternal, unknown.Code)
	assert.Equal(t, http.StatusInternalServerError, unknown.HTTPStatus())
}

func TestGetErrorCategory(t *testing.T) {
	tests := map[ErrorCode]string{
		ErrCodeApplicationNotFound:        "LIFECYCLE",
		ErrCodeApplicationUnauthorized:    "LIFECYCLE",
		ErrCodeEditTooSoon:                "LIFECYCLE",
		ErrCodeNudgeNotPending:            "LIFECYCLE",
		ErrCodeApplicationAlreadyReviewed: "LIFECYCLE",
		ErrCodeStoreFailure:               "DATABASE",
		ErrCodeLockTimeout:                "DATABASE",
		ErrCodeSearchTimeout:              "SEARCH",
		ErrCodeNotificationSendFailed:     "NOTIFICATION",
		ErrCodeEmptyUpdatePayload:         "VALIDATION",
		ErrCodeDuplicateApplication:       "VALIDATION",
		ErrCodeExternalService:            "OTHER",
	}
	for code, want := range tests {
		assert.Equal(t, want, GetErrorCategory(code), string(code))
	}
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeSearchQueryFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeTimeout))
	assert.False(t, IsRetryableErrorCode(ErrCodeStoreFailure))
	assert.False(t, IsRetryableErrorCode(ErrCodeNudgeTooSoon))
}
