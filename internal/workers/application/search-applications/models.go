// internal/workers/application/search-applications/models.go
package searchapplications

import "application-workers/internal/search"

type Input struct {
	Keywords string `json:"keywords,omitempty"`
	Status   string `json:"status,omitempty"`
	Role     string `json:"role,omitempty"`
	UserID   string `json:"userId,omitempty"`
	From     int    `json:"from,omitempty"`
	Size     int    `json:"size,omitempty"`
}

type Output struct {
	Applications []search.Document `json:"applications"`
	TotalHits    int64             `json:"totalHits"`
	MaxScore     float64           `json:"maxScore"`
	From         int               `json:"from"`
	Size         int               `json:"size"`
	Message      string            `json:"message"`
	HTTPStatus   int               `json:"httpStatus"`
	Took         int64             `json:"took"` // milliseconds
}
