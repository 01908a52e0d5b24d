// internal/lifecycle/patch.go
package lifecycle

import "application-workers/internal/models"

// Patch is a sparse self-service edit. Nil fields are left untouched.
type Patch struct {
	ImageURL  *string `json:"imageUrl,omitempty"`
	FoundFrom *string `json:"foundFrom,omitempty"`
	Role      *string `json:"role,omitempty"`

	Introduction  *string `json:"introduction,omitempty"`
	ForFun        *string `json:"forFun,omitempty"`
	FunFact       *string `json:"funFact,omitempty"`
	WhyRds        *string `json:"whyRds,omitempty"`
	NumberOfHours *int    `json:"numberOfHours,omitempty"`

	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
	Country     *string `json:"country,omitempty"`
	Institution *string `json:"institution,omitempty"`
	Skills      *string `json:"skills,omitempty"`

	Professional *ProfessionalPatch `json:"professional,omitempty"`
	SocialLink   *SocialLinkPatch   `json:"socialLink,omitempty"`
}

type ProfessionalPatch struct {
	Institution *string `json:"institution,omitempty"`
	Skills      *string `json:"skills,omitempty"`
}

type SocialLinkPatch struct {
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	Github      *string `json:"github,omitempty"`
	Instagram   *string `json:"instagram,omitempty"`
	Linkedin    *string `json:"linkedin,omitempty"`
	Twitter     *string `json:"twitter,omitempty"`
	Peerlist    *string `json:"peerlist,omitempty"`
	Behance     *string `json:"behance,omitempty"`
	Dribbble    *string `json:"dribbble,omitempty"`
}

// Flatten maps the patch onto persisted field paths, dropping nil fields.
// A nested professional value wins over the top-level shorthand.
func (p Patch) Flatten() models.Changes {
	c := models.Changes{}

	putString(c, models.FieldImageURL, p.ImageURL)
	putString(c, models.FieldFoundFrom, p.FoundFrom)
	putString(c, models.FieldRole, p.Role)

	putString(c, models.FieldIntroduction, p.Introduction)
	putString(c, models.FieldForFun, p.ForFun)
	putString(c, models.FieldFunFact, p.FunFact)
	putString(c, models.FieldWhyRds, p.WhyRds)
	if p.NumberOfHours != nil {
		c[models.FieldNumberOfHours] = *p.NumberOfHours
	}

	putString(c, models.FieldCity, p.City)
	putString(c, models.FieldState, p.State)
	putString(c, models.FieldCountry, p.Country)
	putString(c, models.FieldInstitution, p.Institution)
	putString(c, models.FieldSkills, p.Skills)

	if pro := p.Professional; pro != nil {
		putString(c, models.FieldInstitution, pro.Institution)
		putString(c, models.FieldSkills, pro.Skills)
	}

	if sl := p.SocialLink; sl != nil {
		putString(c, models.FieldPhoneNumber, sl.PhoneNumber)
		putString(c, models.FieldGithub, sl.Github)
		putString(c, models.FieldInstagram, sl.Instagram)
		putString(c, models.FieldLinkedin, sl.Linkedin)
		putString(c, models.FieldTwitter, sl.Twitter)
		putString(c, models.FieldPeerlist, sl.Peerlist)
		putString(c, models.FieldBehance, sl.Behance)
		putString(c, models.FieldDribbble, sl.Dribbble)
	}

	return c
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return len(p.Flatten()) == 0
}

func putString(c models.Changes, path string, v *string) {
	if v != nil {
		c[path] = *v
	}
}
