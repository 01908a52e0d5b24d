// internal/workers/application/create-application-record/models.go
package createapplicationrecord

import "application-workers/internal/models"

type Input struct {
	UserID      string                 `json:"userId"`
	Application map[string]interface{} `json:"application"`
}

// payload is the validated flat form submitted by the applicant.
type payload struct {
	FirstName     string             `json:"firstName"`
	LastName      string             `json:"lastName"`
	Institution   string             `json:"institution"`
	Skills        string             `json:"skills"`
	City          string             `json:"city"`
	State         string             `json:"state"`
	Country       string             `json:"country"`
	FoundFrom     string             `json:"foundFrom"`
	Introduction  string             `json:"introduction"`
	ForFun        string             `json:"forFun"`
	FunFact       string             `json:"funFact"`
	WhyRds        string             `json:"whyRds"`
	NumberOfHours int                `json:"numberOfHours"`
	Role          string             `json:"role"`
	ImageURL      string             `json:"imageUrl"`
	SocialLink    *models.SocialLink `json:"socialLink,omitempty"`
}

func (p payload) toApplication(userID string) *models.Application {
	return &models.Application{
		UserID:       userID,
		Biodata:      models.Biodata{FirstName: p.FirstName, LastName: p.LastName},
		Location:     models.Location{City: p.City, State: p.State, Country: p.Country},
		Professional: models.Professional{Institution: p.Institution, Skills: p.Skills},
		Intro: models.Intro{
			Introduction:  p.Introduction,
			FunFact:       p.FunFact,
			ForFun:        p.ForFun,
			WhyRds:        p.WhyRds,
			NumberOfHours: p.NumberOfHours,
		},
		FoundFrom:  p.FoundFrom,
		Role:       p.Role,
		SocialLink: p.SocialLink,
		ImageURL:   p.ImageURL,
	}
}

type Output struct {
	ApplicationID     string `json:"applicationId"`
	ApplicationStatus string `json:"applicationStatus"`
	Score             int    `json:"score"`
	Message           string `json:"message"`
	HTTPStatus        int    `json:"httpStatus"`
	CreatedAt         string `json:"createdAt"` // ISO 8601
}
