// internal/models/application.go
package models

import (
	"fmt"
	"sort"
	"time"
)

// Application statuses.
const (
	StatusPending          = "pending"
	StatusAccepted         = "accepted"
	StatusRejected         = "rejected"
	StatusChangesRequested = "changes_requested"
)

// Roles an applicant can apply for.
const (
	RoleDeveloper      = "developer"
	RoleDesigner       = "designer"
	RoleProductManager = "product_manager"
	RoleProjectManager = "project_manager"
	RoleQA             = "qa"
	RoleSocialMedia    = "social_media"
)

var Roles = []string{
	RoleDeveloper,
	RoleDesigner,
	RoleProductManager,
	RoleProjectManager,
	RoleQA,
	RoleSocialMedia,
}

// ReviewStatuses are the statuses a reviewer may assign.
var ReviewStatuses = []string{StatusAccepted, StatusRejected, StatusChangesRequested}

// IsReviewed reports whether status is anything other than pending.
func IsReviewed(status string) bool {
	return status != StatusPending
}

// Application is the stored application record.
type Application struct {
	ID           string       `json:"id"`
	UserID       string       `json:"userId"`
	Biodata      Biodata      `json:"biodata"`
	Location     Location     `json:"location"`
	Professional Professional `json:"professional"`
	Intro        Intro        `json:"intro"`
	FoundFrom    string       `json:"foundFrom"`
	Role         string       `json:"role,omitempty"`
	SocialLink   *SocialLink  `json:"socialLink,omitempty"`
	ImageURL     string       `json:"imageUrl"`

	Status        string     `json:"status"`
	Score         int        `json:"score"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty"`
	Feedback      *string    `json:"feedback,omitempty"`
	ReviewerName  *string    `json:"reviewerName,omitempty"`
	NudgeCount    int        `json:"nudgeCount"`
	LastNudgeAt   *time.Time `json:"lastNudgeAt,omitempty"`
}

type Biodata struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type Location struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type Professional struct {
	Institution string `json:"institution"`
	Skills      string `json:"skills"`
}

type Intro struct {
	Introduction  string `json:"introduction"`
	FunFact       string `json:"funFact"`
	ForFun        string `json:"forFun"`
	WhyRds        string `json:"whyRds"`
	NumberOfHours int    `json:"numberOfHours"`
}

type SocialLink struct {
	PhoneNumber string `json:"phoneNumber"`
	Github      string `json:"github,omitempty"`
	Instagram   string `json:"instagram,omitempty"`
	Linkedin    string `json:"linkedin,omitempty"`
	Twitter     string `json:"twitter,omitempty"`
	Peerlist    string `json:"peerlist,omitempty"`
	Behance     string `json:"behance,omitempty"`
	Dribbble    string `json:"dribbble,omitempty"`
}

// Clone returns a deep copy of a.
func (a *Application) Clone() *Application {
	if a == nil {
		return nil
	}
	c := *a
	if a.SocialLink != nil {
		sl := *a.SocialLink
		c.SocialLink = &sl
	}
	c.LastUpdatedAt = cloneTime(a.LastUpdatedAt)
	c.LastNudgeAt = cloneTime(a.LastNudgeAt)
	c.Feedback = cloneString(a.Feedback)
	c.ReviewerName = cloneString(a.ReviewerName)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Persisted field paths. Nested namespaces use dot-delimited addressing.
const (
	FieldStatus        = "status"
	FieldScore         = "score"
	FieldLastUpdatedAt = "lastUpdatedAt"
	FieldFeedback      = "feedback"
	FieldReviewerName  = "reviewerName"
	FieldNudgeCount    = "nudgeCount"
	FieldLastNudgeAt   = "lastNudgeAt"
	FieldImageURL      = "imageUrl"
	FieldFoundFrom     = "foundFrom"
	FieldRole          = "role"

	FieldFirstName = "biodata.firstName"
	FieldLastName  = "biodata.lastName"

	FieldCity    = "location.city"
	FieldState   = "location.state"
	FieldCountry = "location.country"

	FieldInstitution = "professional.institution"
	FieldSkills      = "professional.skills"

	FieldIntroduction  = "intro.introduction"
	FieldFunFact       = "intro.funFact"
	FieldForFun        = "intro.forFun"
	FieldWhyRds        = "intro.whyRds"
	FieldNumberOfHours = "intro.numberOfHours"

	FieldPhoneNumber = "socialLink.phoneNumber"
	FieldGithub      = "socialLink.github"
	FieldInstagram   = "socialLink.instagram"
	FieldLinkedin    = "socialLink.linkedin"
	FieldTwitter     = "socialLink.twitter"
	FieldPeerlist    = "socialLink.peerlist"
	FieldBehance     = "socialLink.behance"
	FieldDribbble    = "socialLink.dribbble"
)

// Changes maps persisted field paths to their new values. Values are
// string, int, *string or time.Time depending on the field.
type Changes map[string]interface{}

// Paths returns the changed paths in sorted order.
func (c Changes) Paths() []string {
	paths := make([]string, 0, len(c))
	for p := range c {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Apply writes every change onto a. Unknown paths and mistyped values
// are reported and leave a partially modified.
func (a *Application) Apply(changes Changes) error {
	for _, path := range changes.Paths() {
		if err := a.set(path, changes[path]); err != nil {
			return err
		}
	}
	return nil
}

func (a *Application) set(path string, value interface{}) error {
	switch path {
	case FieldStatus:
		return assignString(&a.Status, path, value)
	case FieldScore:
		return assignInt(&a.Score, path, value)
	case FieldNudgeCount:
		return assignInt(&a.NudgeCount, path, value)
	case FieldLastUpdatedAt:
		return assignTime(&a.LastUpdatedAt, path, value)
	case FieldLastNudgeAt:
		return assignTime(&a.LastNudgeAt, path, value)
	case FieldFeedback:
		return assignOptionalString(&a.Feedback, path, value)
	case FieldReviewerName:
		return assignOptionalString(&a.ReviewerName, path, value)
	case FieldImageURL:
		return assignString(&a.ImageURL, path, value)
	case FieldFoundFrom:
		return assignString(&a.FoundFrom, path, value)
	case FieldRole:
		return assignString(&a.Role, path, value)
	case FieldFirstName:
		return assignString(&a.Biodata.FirstName, path, value)
	case FieldLastName:
		return assignString(&a.Biodata.LastName, path, value)
	case FieldCity:
		return assignString(&a.Location.City, path, value)
	case FieldState:
		return assignString(&a.Location.State, path, value)
	case FieldCountry:
		return assignString(&a.Location.Country, path, value)
	case FieldInstitution:
		return assignString(&a.Professional.Institution, path, value)
	case FieldSkills:
		return assignString(&a.Professional.Skills, path, value)
	case FieldIntroduction:
		return assignString(&a.Intro.Introduction, path, value)
	case FieldFunFact:
		return assignString(&a.Intro.FunFact, path, value)
	case FieldForFun:
		return assignString(&a.Intro.ForFun, path, value)
	case FieldWhyRds:
		return assignString(&a.Intro.WhyRds, path, value)
	case FieldNumberOfHours:
		return assignInt(&a.Intro.NumberOfHours, path, value)
	}

	if sl, ok := a.socialLinkField(path); ok {
		return assignString(sl, path, value)
	}
	return fmt.Errorf("unknown field path %q", path)
}

func (a *Application) socialLinkField(path string) (*string, bool) {
	switch path {
	case FieldPhoneNumber, FieldGithub, FieldInstagram, FieldLinkedin,
		FieldTwitter, FieldPeerlist, FieldBehance, FieldDribbble:
	default:
		return nil, false
	}
	if a.SocialLink == nil {
		a.SocialLink = &SocialLink{}
	}
	sl := a.SocialLink
	switch path {
	case FieldPhoneNumber:
		return &sl.PhoneNumber, true
	case FieldGithub:
		return &sl.Github, true
	case FieldInstagram:
		return &sl.Instagram, true
	case FieldLinkedin:
		return &sl.Linkedin, true
	case FieldTwitter:
		return &sl.Twitter, true
	case FieldPeerlist:
		return &sl.Peerlist, true
	case FieldBehance:
		return &sl.Behance, true
	default:
		return &sl.Dribbble, true
	}
}

func assignString(dst *string, path string, value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("field %s: expected string, got %T", path, value)
	}
	*dst = s
	return nil
}

func assignOptionalString(dst **string, path string, value interface{}) error {
	switch v := value.(type) {
	case string:
		*dst = &v
	case *string:
		*dst = cloneString(v)
	default:
		return fmt.Errorf("field %s: expected string, got %T", path, value)
	}
	return nil
}

func assignInt(dst *int, path string, value interface{}) error {
	switch v := value.(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	case float64:
		*dst = int(v)
	default:
		return fmt.Errorf("field %s: expected integer, got %T", path, value)
	}
	return nil
}

func assignTime(dst **time.Time, path string, value interface{}) error {
	t, ok := value.(time.Time)
	if !ok {
		return fmt.Errorf("field %s: expected time, got %T", path, value)
	}
	*dst = &t
	return nil
}
