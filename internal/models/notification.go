// internal/models/notification.go
package models

// Notification types.
const (
	NotificationApplicationReviewed = "application_reviewed"
	NotificationApplicationNudged   = "application_nudged"
)

// Notification delivery statuses.
const (
	NotificationSent     = "sent"
	NotificationFailed   = "failed"
	NotificationDisabled = "disabled"
)

type Notification struct {
	ID            string                 `json:"id"`
	ApplicationID string                 `json:"applicationId"`
	RecipientID   string                 `json:"recipientId"`
	RecipientType string                 `json:"recipientType"` // "applicant" or "reviewer"
	Type          string                 `json:"type"`
	Channel       string                 `json:"channel"` // "email", "sms"
	Status        string                 `json:"status"`
	Payload       map[string]interface{} `json:"payload"`
	SentAt        string                 `json:"sentAt,omitempty"`
	CreatedAt     string                 `json:"createdAt"`
}
