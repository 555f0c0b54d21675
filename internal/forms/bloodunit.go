// ABOUTME: Blood unit create and update forms
// ABOUTME: Create registers a unit for a donor; update adjusts volume, expiry and status

package forms

import (
	"net/url"
	"strconv"

	"github.com/2389/bloodlink-console/internal/api"
)

var bloodUnitMessages = messages{
	"memberId":         "Member is required",
	"bloodGroup":       "Blood group is required",
	"bloodGroup.max":   "Blood group must be at most 3 characters",
	"bloodRh":          "Blood Rh is required",
	"bloodRh.max":      "Blood Rh must be a single character",
	"bloodVolume":      "Blood volume must be greater than 0",
	"remainingVolume":  "Remaining volume must be at least 0",
	"expiredDate":      "Expired date is required",
	"expiredDate.date": "Expired date must use the YYYY-MM-DD format",
	"status":           "Status is required",
}

// BloodUnitCreateForm backs the create-blood-unit dialog opened from a
// donation request. MemberName is shown read-only next to the member id.
type BloodUnitCreateForm struct {
	base

	MemberID        string              `form:"memberId" validate:"required"`
	MemberName      string              `form:"memberName"`
	BloodGroup      string              `form:"bloodGroup" validate:"required,max=3"`
	BloodRh         string              `form:"bloodRh" validate:"required,max=1"`
	BloodVolume     int                 `form:"bloodVolume" validate:"min=1"`
	RemainingVolume int                 `form:"remainingVolume" validate:"min=0"`
	ExpiredDate     string              `form:"expiredDate" validate:"required,date"`
	Status          api.BloodUnitStatus `form:"status" validate:"oneof=available used expired damaged"`
}

// NewBloodUnitCreateForm returns the empty create form for one donor.
func NewBloodUnitCreateForm(memberID, memberName string) *BloodUnitCreateForm {
	return BindBloodUnitCreate(url.Values{
		"memberId":        {memberID},
		"memberName":      {memberName},
		"bloodVolume":     {"0"},
		"remainingVolume": {"0"},
		"status":          {string(api.BloodUnitAvailable)},
	})
}

// WithBloodType pre-fills group and Rh, e.g. from the donor's recorded type.
func (f *BloodUnitCreateForm) WithBloodType(group, rh string) *BloodUnitCreateForm {
	f.BloodGroup, f.BloodRh = group, rh
	f.raw.Set("bloodGroup", group)
	f.raw.Set("bloodRh", rh)
	return f
}

// BindBloodUnitCreate reads a submitted create form.
func BindBloodUnitCreate(v url.Values) *BloodUnitCreateForm {
	f := &BloodUnitCreateForm{}
	f.remember(v)
	f.MemberID = f.text(v, "memberId")
	f.MemberName = f.text(v, "memberName")
	f.BloodGroup = f.text(v, "bloodGroup")
	f.BloodRh = f.text(v, "bloodRh")
	f.BloodVolume = f.number(v, "bloodVolume")
	f.RemainingVolume = f.number(v, "remainingVolume")
	f.ExpiredDate = f.text(v, "expiredDate")
	f.Status = api.BloodUnitStatus(f.text(v, "status"))
	return f
}

// Validate returns per-field errors, or nil when the form is valid.
func (f *BloodUnitCreateForm) Validate() FieldErrors {
	return check(f, &f.base, bloodUnitMessages)
}

// Payload is the POST /inventory/blood-units body.
func (f *BloodUnitCreateForm) Payload() api.BloodUnitInput {
	return api.BloodUnitInput{
		MemberID:        f.MemberID,
		BloodGroup:      f.BloodGroup,
		BloodRh:         f.BloodRh,
		BloodVolume:     f.BloodVolume,
		RemainingVolume: f.RemainingVolume,
		ExpiredDate:     f.ExpiredDate,
		Status:          f.Status,
	}
}

// BloodUnitUpdateForm backs the update-blood-unit dialog. StaffID is the
// signed-in staff member recorded against the change.
type BloodUnitUpdateForm struct {
	base

	BloodVolume     int                 `form:"bloodVolume" validate:"min=1"`
	RemainingVolume int                 `form:"remainingVolume" validate:"min=0"`
	ExpiredDate     string              `form:"expiredDate" validate:"required,date"`
	Status          api.BloodUnitStatus `form:"status" validate:"oneof=available used expired damaged"`
	StaffID         string              `form:"staffId"`
	StaffName       string              `form:"staffName"`
}

// BloodUnitUpdateFormFrom pre-populates the dialog from the fetched unit and
// the caller's profile.
func BloodUnitUpdateFormFrom(u api.BloodUnit, staff api.StaffProfile) *BloodUnitUpdateForm {
	return BindBloodUnitUpdate(url.Values{
		"bloodVolume":     {strconv.Itoa(u.BloodVolume)},
		"remainingVolume": {strconv.Itoa(u.RemainingVolume)},
		"expiredDate":     {api.DateOnly(u.ExpiredDate)},
		"status":          {string(u.Status)},
		"staffId":         {staff.ID},
		"staffName":       {staff.FullName()},
	})
}

// BindBloodUnitUpdate reads a submitted update form.
func BindBloodUnitUpdate(v url.Values) *BloodUnitUpdateForm {
	f := &BloodUnitUpdateForm{}
	f.remember(v)
	f.BloodVolume = f.number(v, "bloodVolume")
	f.RemainingVolume = f.number(v, "remainingVolume")
	f.ExpiredDate = f.text(v, "expiredDate")
	f.Status = api.BloodUnitStatus(f.text(v, "status"))
	f.StaffID = f.text(v, "staffId")
	f.StaffName = f.text(v, "staffName")
	return f
}

// Validate returns per-field errors, or nil when the form is valid.
func (f *BloodUnitUpdateForm) Validate() FieldErrors {
	return check(f, &f.base, bloodUnitMessages)
}

// Payload is the PATCH /inventory/blood-units/:id body.
func (f *BloodUnitUpdateForm) Payload() api.BloodUnitUpdate {
	return api.BloodUnitUpdate{
		BloodVolume:     f.BloodVolume,
		RemainingVolume: f.RemainingVolume,
		ExpiredDate:     f.ExpiredDate,
		Status:          f.Status,
		StaffID:         f.StaffID,
	}
}
