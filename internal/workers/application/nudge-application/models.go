// internal/workers/application/nudge-application/models.go
package nudgeapplication

type Input struct {
	ApplicationID string `json:"applicationId"`
	UserID        string `json:"userId"`
}

type Output struct {
	ApplicationID string `json:"applicationId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	HTTPStatus    int    `json:"httpStatus"`
	NudgeCount    int    `json:"nudgeCount"`
	LastNudgeAt   string `json:"lastNudgeAt"` // ISO 8601
	Score         int    `json:"score"`
}
