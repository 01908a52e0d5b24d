// internal/workers/application/update-application/models.go
package updateapplication

type Input struct {
	ApplicationID string                 `json:"applicationId"`
	UserID        string                 `json:"userId"`
	Payload       map[string]interface{} `json:"payload"`
}

type Output struct {
	ApplicationID string   `json:"applicationId"`
	Status        string   `json:"status"`
	Message       string   `json:"message"`
	HTTPStatus    int      `json:"httpStatus"`
	ChangedFields []string `json:"changedFields"`
	LastUpdatedAt string   `json:"lastUpdatedAt"` // ISO 8601
}
