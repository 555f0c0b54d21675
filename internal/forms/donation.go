// ABOUTME: Donation request status form
// ABOUTME: Completes or rejects a request, optionally moving the appointment and adding a note

package forms

import (
	"net/url"

	"github.com/2389/bloodlink-console/internal/api"
)

// DonationStatusForm backs the update-status dialog. Only terminal
// transitions are offered.
type DonationStatusForm struct {
	base

	Status          api.DonationStatus `form:"status" validate:"oneof=completed rejected"`
	AppointmentDate string             `form:"appointmentDate" validate:"omitempty,date"`
	Note            string             `form:"note" validate:"max=500"`
}

var donationMessages = messages{
	"status":          "Status is required",
	"appointmentDate": "Appointment date must use the YYYY-MM-DD format",
	"note":            "Note must be at most 500 characters",
}

// DonationStatusFormFrom pre-populates the dialog from a fetched request.
func DonationStatusFormFrom(d api.DonationRequest) *DonationStatusForm {
	return BindDonationStatus(url.Values{
		"status":          {string(api.DonationCompleted)},
		"appointmentDate": {api.DateOnly(d.AppointmentDate)},
	})
}

// BindDonationStatus reads a submitted status form.
func BindDonationStatus(v url.Values) *DonationStatusForm {
	f := &DonationStatusForm{}
	f.remember(v)
	f.Status = api.DonationStatus(f.text(v, "status"))
	f.AppointmentDate = f.text(v, "appointmentDate")
	f.Note = f.text(v, "note")
	return f
}

// Validate returns per-field errors, or nil when the form is valid.
func (f *DonationStatusForm) Validate() FieldErrors {
	return check(f, &f.base, donationMessages)
}

// Payload leaves empty optional fields out of the request.
func (f *DonationStatusForm) Payload() api.StatusUpdate {
	u := api.StatusUpdate{Status: f.Status}
	if f.AppointmentDate != "" {
		date := f.AppointmentDate
		u.AppointmentDate = &date
	}
	if f.Note != "" {
		note := f.Note
		u.Note = &note
	}
	return u
}
