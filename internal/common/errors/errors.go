// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Application lifecycle rejections. These are ordinary outcomes of a
// lifecycle operation and are never retried.
const (
	ErrCodeApplicationNotFound        ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeApplicationUnauthorized    ErrorCode = "APPLICATION_UNAUTHORIZED"
	ErrCodeEditTooSoon                ErrorCode = "EDIT_TOO_SOON"
	ErrCodeNudgeTooSoon               ErrorCode = "NUDGE_TOO_SOON"
	ErrCodeNudgeNotPending            ErrorCode = "NUDGE_NOT_PENDING"
	ErrCodeApplicationAlreadyReviewed ErrorCode = "APPLICATION_ALREADY_REVIEWED"
)

// Validation and business rule errors.
const (
	ErrCodeEmptyUpdatePayload          ErrorCode = "EMPTY_UPDATE_PAYLOAD"
	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"
	ErrCodeDuplicateApplication        ErrorCode = "DUPLICATE_APPLICATION"
	ErrCodeParseError                  ErrorCode = "PARSE_ERROR"
	ErrCodeInvalidFilterFormat         ErrorCode = "INVALID_FILTER_FORMAT"
)

// Infrastructure errors.
const (
	ErrCodeStoreFailure           ErrorCode = "STORE_FAILURE"
	ErrCodeLockTimeout            ErrorCode = "LOCK_TIMEOUT"
	ErrCodeDatabaseInsertFailed   ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeQueryExecutionFailed   ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed      ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout          ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound          ErrorCode = "INDEX_NOT_FOUND"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// Generic codes used by the zeebe client wrapper.
const (
	ErrCodeInternal             ErrorCode = "INTERNAL_ERROR"
	ErrCodeBusinessRule         ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeExternalService      ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout              ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound     ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_ERROR"
)

// MetadataHTTPStatus is the metadata key carrying the transport status class.
const MetadataHTTPStatus = "httpStatus"

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

// WithMetadata sets a metadata entry and returns the receiver.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// HTTPStatus returns the status class recorded on the error, falling back
// to 500 for infrastructure failures and 400 for everything else.
func (e *StandardError) HTTPStatus() int {
	if v, ok := e.Metadata[MetadataHTTPStatus].(int); ok {
		return v
	}
	if e.Retryable || e.Code == ErrCodeStoreFailure || e.Code == ErrCodeInternal {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns the variables attached to a thrown error or failed job.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewRejectionError builds the error for a lifecycle outcome other than success.
func NewRejectionError(code ErrorCode, message string, httpStatus int) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Metadata:  map[string]interface{}{MetadataHTTPStatus: httpStatus},
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyUpdatePayloadError is raised by the validation layer before the engine runs.
func NewEmptyUpdatePayloadError(message string) *StandardError {
	return NewRejectionError(ErrCodeEmptyUpdatePayload, message, http.StatusBadRequest)
}

// NewApplicationValidationFailedError creates a non-retryable validation error.
func NewApplicationValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeApplicationValidationFailed,
		Message:   "Application data validation failed",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{MetadataHTTPStatus: http.StatusBadRequest},
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateApplicationError rejects a second active application for one user.
func NewDuplicateApplicationError(userID, existingID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateApplication,
		Message:   "User already has an application",
		Details:   fmt.Sprintf("userId: %s, applicationId: %s", userID, existingID),
		Retryable: false,
		Metadata:  map[string]interface{}{MetadataHTTPStatus: http.StatusConflict},
		Timestamp: time.Now().UTC(),
	}
}

// NewParseError reports job variables that could not be decoded.
func NewParseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeParseError,
		Message:   "Invalid job variables",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{MetadataHTTPStatus: http.StatusBadRequest},
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreFailureError wraps a persistence failure. Lifecycle operations are
// idempotency sensitive, so it is never retried by the workflow engine.
func NewStoreFailureError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreFailure,
		Message:   "An internal server error occurred",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: false,
		Metadata:  map[string]interface{}{MetadataHTTPStatus: http.StatusInternalServerError},
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable read error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFilterFormatError creates a non-retryable filter error.
func NewInvalidFilterFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterFormat,
		Message:   "Invalid filter format",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{MetadataHTTPStatus: http.StatusBadRequest},
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search error.
func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Elasticsearch query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeBusinessRule,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthenticationFailed,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the error codes modelled on the
// process boundary events. Codes absent from the map are passed through.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeApplicationNotFound:         "APPLICATION_NOT_FOUND",
	ErrCodeApplicationUnauthorized:     "APPLICATION_UNAUTHORIZED",
	ErrCodeEditTooSoon:                 "EDIT_TOO_SOON",
	ErrCodeNudgeTooSoon:                "NUDGE_TOO_SOON",
	ErrCodeNudgeNotPending:             "NUDGE_NOT_PENDING",
	ErrCodeApplicationAlreadyReviewed:  "APPLICATION_ALREADY_REVIEWED",
	ErrCodeEmptyUpdatePayload:          "APPLICATION_VALIDATION_FAILED",
	ErrCodeApplicationValidationFailed: "APPLICATION_VALIDATION_FAILED",
	ErrCodeDuplicateApplication:        "DUPLICATE_APPLICATION",
	ErrCodeStoreFailure:                "STORE_FAILURE",
	ErrCodeLockTimeout:                 "STORE_FAILURE",
	ErrCodeInternal:                    "STORE_FAILURE",
}

// GetRetryCount returns how many times the workflow engine may retry a job
// that failed with code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseInsertFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeSearchTimeout,
		ErrCodeTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		MetadataHTTPStatus:  stdErr.HTTPStatus(),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TOO_SOON") ||
		strings.Contains(codeStr, "NOT_PENDING") ||
		strings.Contains(codeStr, "ALREADY_REVIEWED") ||
		strings.Contains(codeStr, "UNAUTHORIZED") ||
		code == ErrCodeApplicationNotFound:
		return "LIFECYCLE"
	case strings.Contains(codeStr, "STORE") ||
		strings.Contains(codeStr, "DATABASE") ||
		strings.Contains(codeStr, "QUERY") ||
		strings.Contains(codeStr, "LOCK"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "INVALID") ||
		strings.Contains(codeStr, "VALIDATION") ||
		strings.Contains(codeStr, "PAYLOAD") ||
		strings.Contains(codeStr, "PARSE") ||
		strings.Contains(codeStr, "DUPLICATE"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
