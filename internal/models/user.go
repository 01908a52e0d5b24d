package models

// User is the subset of the users table needed to reach an applicant.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
}
