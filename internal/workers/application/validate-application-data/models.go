// internal/workers/application/validate-application-data/models.go
package validateapplicationdata

import "application-workers/internal/common/validation"

type Input struct {
	// Schema is one of create, update, feedback or query.
	Schema  string                 `json:"schema"`
	Payload map[string]interface{} `json:"payload"`
}

type Output struct {
	IsValid          bool                         `json:"isValid"`
	Message          string                       `json:"message,omitempty"`
	ValidatedData    map[string]interface{}       `json:"validatedData,omitempty"`
	ValidationErrors []validation.ValidationError `json:"validationErrors"`
}
