package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Error codes reported in ValidationError.Code.
const (
	CodeRequired      = "REQUIRED_FIELD_MISSING"
	CodeExtraField    = "EXTRA_FIELD"
	CodeInvalidType   = "INVALID_TYPE"
	CodeMinLength     = "MIN_LENGTH_VIOLATION"
	CodeInvalidEnum   = "INVALID_ENUM_VALUE"
	CodeMinimum       = "MINIMUM_VIOLATION"
	CodeMaximum       = "MAXIMUM_VIOLATION"
	CodePattern       = "PATTERN_MISMATCH"
	CodeInvalidFormat = "INVALID_FORMAT"
	CodeEmptyPayload  = "EMPTY_PAYLOAD"
)

var resultCodes = map[string]string{
	"required":                        CodeRequired,
	"additional_property_not_allowed": CodeExtraField,
	"invalid_type":                    CodeInvalidType,
	"string_gte":                      CodeMinLength,
	"enum":                            CodeInvalidEnum,
	"number_gte":                      CodeMinimum,
	"number_lte":                      CodeMaximum,
	"pattern":                         CodePattern,
	"format":                          CodeInvalidFormat,
	"array_min_properties":            CodeEmptyPayload,
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type minWordsChecker struct{}

// IsFormat reports whether a string has at least MinWords words. Non-strings
// pass so the type keyword reports them.
func (minWordsChecker) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	if !ok {
		return true
	}
	return CountWords(s) >= MinWords
}

func init() {
	gojsonschema.FormatCheckers.Add(FormatMinWords, minWordsChecker{})
}

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[string]*gojsonschema.Schema, len(schemas))
		for name, build := range schemas {
			s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(build()))
			if err != nil {
				compileErr = fmt.Errorf("compile %s schema: %w", name, err)
				return
			}
			compiled[name] = s
		}
	})
	return compiled, compileErr
}

// Validate checks input against the named schema. Phone numbers are trimmed
// before validation; callers should decode the returned map, not input.
func Validate(name string, input map[string]interface{}) (*ValidationResult, map[string]interface{}, error) {
	all, err := loadSchemas()
	if err != nil {
		return nil, nil, err
	}
	schema, ok := all[name]
	if !ok {
		return nil, nil, fmt.Errorf("unknown schema %q", name)
	}

	prepared := TrimPhoneNumber(input)

	if name == SchemaUpdate && isEmptyPayload(prepared) {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: "payload must include at least one editable field",
				Code:    CodeEmptyPayload,
			}},
		}, prepared, nil
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(prepared))
	if err != nil {
		return nil, nil, fmt.Errorf("validate %s: %w", name, err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   errorField(re),
			Message: re.Description(),
			Code:    errorCode(re.Type()),
		})
	}
	return out, prepared, nil
}

func errorField(re gojsonschema.ResultError) string {
	field := re.Field()
	prop, ok := re.Details()["property"].(string)
	if !ok || prop == "" {
		return field
	}
	if field == "(root)" || field == "" {
		return prop
	}
	return field + "." + prop
}

func errorCode(resultType string) string {
	if code, ok := resultCodes[resultType]; ok {
		return code
	}
	return strings.ToUpper(resultType)
}

// TrimPhoneNumber returns a copy of input with socialLink.phoneNumber trimmed.
func TrimPhoneNumber(input map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(input))
	for k, v := range input {
		out[k] = v
	}
	social, ok := out["socialLink"].(map[string]interface{})
	if !ok {
		return out
	}
	phone, ok := social["phoneNumber"].(string)
	if !ok {
		return out
	}
	copied := make(map[string]interface{}, len(social))
	for k, v := range social {
		copied[k] = v
	}
	copied["phoneNumber"] = strings.TrimSpace(phone)
	out["socialLink"] = copied
	return out
}

// isEmptyPayload reports whether input carries no value outside empty
// nested objects.
func isEmptyPayload(input map[string]interface{}) bool {
	for _, v := range input {
		nested, ok := v.(map[string]interface{})
		if !ok || !isEmptyPayload(nested) {
			return false
		}
	}
	return true
}

// CountWords counts whitespace-separated words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// Summary joins every error message into one line.
func (vr *ValidationResult) Summary() string {
	return strings.Join(vr.GetErrorMessages(), "; ")
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

func (vr *ValidationResult) HasCode(code string) bool {
	for _, err := range vr.Errors {
		if err.Code == code {
			return true
		}
	}
	return false
}

// GetErrorsForField returns errors for a specific field
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
