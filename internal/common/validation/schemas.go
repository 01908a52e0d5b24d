// internal/common/validation/schemas.go
package validation

import "application-workers/internal/models"

// Schema names accepted by Validate.
const (
	SchemaCreate   = "create"
	SchemaUpdate   = "update"
	SchemaFeedback = "feedback"
	SchemaQuery    = "query"
)

// FormatMinWords is the custom format for free-text answers that need at
// least MinWords words.
const (
	FormatMinWords = "min-100-words"
	MinWords       = 100
)

// PhoneNumberPattern accepts international numbers with a leading plus.
const PhoneNumberPattern = `^[+]{1}(?:[0-9\-\\()/.]\s?){6,15}[0-9]{1}$`

func str(minLength int) map[string]interface{} {
	return map[string]interface{}{"type": "string", "minLength": minLength}
}

func words() map[string]interface{} {
	return map[string]interface{}{"type": "string", "format": FormatMinWords}
}

func enum(values []string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "enum": toInterfaces(values)}
}

func hours(max int) map[string]interface{} {
	return map[string]interface{}{"type": "number", "minimum": 1, "maximum": max}
}

func socialLinkSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"phoneNumber": map[string]interface{}{"type": "string", "pattern": PhoneNumberPattern},
			"github":      str(1),
			"instagram":   str(1),
			"linkedin":    str(1),
			"twitter":     str(1),
			"peerlist":    str(1),
			"behance":     str(1),
			"dribbble":    str(1),
		},
		"additionalProperties": false,
	}
}

func createSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"userId":        map[string]interface{}{"type": "string"},
			"firstName":     str(1),
			"lastName":      str(1),
			"institution":   str(1),
			"skills":        str(5),
			"city":          str(1),
			"state":         str(1),
			"country":       str(1),
			"foundFrom":     str(1),
			"introduction":  str(1),
			"forFun":        words(),
			"funFact":       words(),
			"whyRds":        words(),
			"flowState":     map[string]interface{}{"type": "string"},
			"numberOfHours": hours(100),
			"role":          enum(models.Roles),
			"imageUrl":      map[string]interface{}{"type": "string", "format": "uri"},
			"socialLink":    socialLinkSchema(),
		},
		"required": toInterfaces([]string{
			"firstName", "lastName", "institution", "skills", "city", "state", "country",
			"foundFrom", "introduction", "forFun", "funFact", "whyRds", "numberOfHours",
			"role", "imageUrl",
		}),
		"additionalProperties": false,
	}
}

func updateSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":          "object",
		"minProperties": 1,
		"properties": map[string]interface{}{
			"institution":   str(1),
			"skills":        str(5),
			"city":          str(1),
			"state":         str(1),
			"country":       str(1),
			"role":          enum(models.Roles),
			"imageUrl":      map[string]interface{}{"type": "string", "format": "uri"},
			"foundFrom":     str(1),
			"introduction":  str(1),
			"forFun":        words(),
			"funFact":       words(),
			"whyRds":        words(),
			"numberOfHours": hours(168),
			"professional": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"institution": str(1),
					"skills":      str(5),
				},
				"additionalProperties": false,
			},
			"socialLink": socialLinkSchema(),
		},
		"additionalProperties": false,
	}
}

// feedbackSchema requires non-empty feedback only for changes_requested.
func feedbackSchema() map[string]interface{} {
	return map[string]interface{}{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"properties": map[string]interface{}{
			"status":   enum(models.ReviewStatuses),
			"feedback": map[string]interface{}{"type": "string"},
		},
		"required": toInterfaces([]string{"status"}),
		"if": map[string]interface{}{
			"properties": map[string]interface{}{
				"status": map[string]interface{}{"const": models.StatusChangesRequested},
			},
		},
		"then": map[string]interface{}{
			"properties": map[string]interface{}{
				"feedback": str(1),
			},
			"required": toInterfaces([]string{"feedback"}),
		},
		"additionalProperties": false,
	}
}

func querySchema() map[string]interface{} {
	s := map[string]interface{}{"type": "string"}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"userId": s,
			"status": s,
			"size":   s,
			"next":   s,
			"dev":    s,
		},
		"additionalProperties": false,
	}
}

var schemas = map[string]func() map[string]interface{}{
	SchemaCreate:   createSchema,
	SchemaUpdate:   updateSchema,
	SchemaFeedback: feedbackSchema,
	SchemaQuery:    querySchema,
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
