// internal/workers/application/send-notification/models.go
package sendnotification

import "application-workers/internal/models"

type Input struct {
	NotificationType string  `json:"notificationType"`
	ApplicationID    string  `json:"applicationId"`
	UserID           string  `json:"userId"`
	Status           string  `json:"status,omitempty"`
	Feedback         string  `json:"feedback,omitempty"`
	ReviewerName     string  `json:"reviewerName,omitempty"`
	NudgeCount       int     `json:"nudgeCount,omitempty"`
	Score            *int    `json:"score,omitempty"`
	LastNudgeAt      string  `json:"lastNudgeAt,omitempty"`
	Subject          *string `json:"subject,omitempty"` // overrides the template subject
}

// Output is the notification record plus the provider message id.
type Output struct {
	models.Notification
	MessageID string `json:"messageId,omitempty"`
}

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Recipient types
const (
	RecipientTypeApplicant = "applicant"
	RecipientTypeReviewer  = "reviewer"
)

type template struct {
	Subject string
	Body    string
}

var templates = map[string]template{
	models.NotificationApplicationReviewed: {
		Subject: "Your application has been reviewed",
		Body: "Hello {{firstName}},\n\n" +
			"Your application {{applicationId}} was reviewed by {{reviewerName}}. " +
			"New status: {{status}}.\n\n{{feedback}}",
	},
	models.NotificationApplicationNudged: {
		Subject: "Application nudged",
		Body:    "Application {{applicationId}} was nudged ({{nudgeCount}} so far, score {{score}}). Last nudge at {{lastNudgeAt}}.",
	},
}
