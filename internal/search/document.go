// internal/search/document.go
package search

import (
	"time"

	"application-workers/internal/models"
)

// Document is the indexed, flattened view of an application.
type Document struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Institution   string     `json:"institution"`
	Skills        string     `json:"skills"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	Country       string     `json:"country"`
	Introduction  string     `json:"introduction"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	Score         int        `json:"score"`
	NudgeCount    int        `json:"nudgeCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty"`
}

func FromApplication(app *models.Application) Document {
	return Document{
		ID:            app.ID,
		UserID:        app.UserID,
		FirstName:     app.Biodata.FirstName,
		LastName:      app.Biodata.LastName,
		Institution:   app.Professional.Institution,
		Skills:        app.Professional.Skills,
		City:          app.Location.City,
		State:         app.Location.State,
		Country:       app.Location.Country,
		Introduction:  app.Intro.Introduction,
		Role:          app.Role,
		Status:        app.Status,
		Score:         app.Score,
		NudgeCount:    app.NudgeCount,
		CreatedAt:     app.CreatedAt,
		LastUpdatedAt: app.LastUpdatedAt,
	}
}

// indexMapping keeps the filter fields as keywords.
const indexMapping = `{
	"mappings": {
		"properties": {
			"id": {"type": "keyword"},
			"userId": {"type": "keyword"},
			"firstName": {"type": "text"},
			"lastName": {"type": "text"},
			"institution": {"type": "text"},
			"skills": {"type": "text"},
			"city": {"type": "keyword"},
			"state": {"type": "keyword"},
			"country": {"type": "keyword"},
			"introduction": {"type": "text"},
			"role": {"type": "keyword"},
			"status": {"type": "keyword"},
			"score": {"type": "integer"},
			"nudgeCount": {"type": "integer"},
			"createdAt": {"type": "date"},
			"lastUpdatedAt": {"type": "date"}
		}
	}
}`
