// ABOUTME: Staff profile form
// ABOUTME: Edits the signed-in staff member's first and last name

package forms

import (
	"net/url"

	"github.com/2389/bloodlink-console/internal/api"
)

// ProfileForm backs the profile page.
type ProfileForm struct {
	base

	FirstName string `form:"firstName" validate:"required,max=50"`
	LastName  string `form:"lastName" validate:"required,max=50"`
}

var profileMessages = messages{
	"firstName.required": "First name is required",
	"lastName.required":  "Last name is required",
	"firstName.max":      "First name must be at most 50 characters",
	"lastName.max":       "Last name must be at most 50 characters",
}

func ProfileFormFrom(p api.StaffProfile) *ProfileForm {
	return BindProfile(url.Values{"firstName": {p.FirstName}, "lastName": {p.LastName}})
}

func BindProfile(v url.Values) *ProfileForm {
	f := &ProfileForm{}
	f.remember(v)
	f.FirstName = f.text(v, "firstName")
	f.LastName = f.text(v, "lastName")
	return f
}

func (f *ProfileForm) Validate() FieldErrors {
	return check(f, &f.base, profileMessages)
}

func (f *ProfileForm) Payload() api.ProfilePatch {
	return api.ProfilePatch{FirstName: f.FirstName, LastName: f.LastName}
}
