// internal/workers/application/submit-application-feedback/models.go
package submitapplicationfeedback

type Input struct {
	ApplicationID string  `json:"applicationId"`
	Status        string  `json:"status"`
	Feedback      *string `json:"feedback,omitempty"`
	ReviewerName  string  `json:"reviewerName"`
}

// Output feeds the send-notification step that follows a review.
type Output struct {
	ApplicationID    string `json:"applicationId"`
	UserID           string `json:"userId"`
	Status           string `json:"status"`
	Feedback         string `json:"feedback,omitempty"`
	ReviewerName     string `json:"reviewerName"`
	Message          string `json:"message"`
	HTTPStatus       int    `json:"httpStatus"`
	NotificationType string `json:"notificationType"`
}
