// internal/workers/application/list-applications/models.go
package listapplications

import "application-workers/internal/models"

// Input mirrors the list query string, so every field is a string.
type Input struct {
	UserID string `json:"userId,omitempty"`
	Status string `json:"status,omitempty"`
	Size   string `json:"size,omitempty"`
	Next   string `json:"next,omitempty"`
}

func (in *Input) asQuery() map[string]interface{} {
	q := make(map[string]interface{}, 4)
	for k, v := range map[string]string{
		"userId": in.UserID,
		"status": in.Status,
		"size":   in.Size,
		"next":   in.Next,
	} {
		if v != "" {
			q[k] = v
		}
	}
	return q
}

type Output struct {
	Applications       []*models.Application `json:"applications"`
	Next               string                `json:"next,omitempty"`
	Message            string                `json:"message"`
	HTTPStatus         int                   `json:"httpStatus"`
	RowCount           int                   `json:"rowCount"`
	QueryExecutionTime int64                 `json:"queryExecutionTime"` // milliseconds
}
