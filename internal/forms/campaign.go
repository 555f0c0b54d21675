// ABOUTME: Campaign create/edit form
// ABOUTME: Binds dialog input and produces the typed campaign payload

package forms

import (
	"net/url"
	"strconv"

	"github.com/2389/bloodlink-console/internal/api"
)

// CampaignForm backs both the create and the edit campaign dialogs.
type CampaignForm struct {
	base

	Name          string             `form:"name" validate:"required"`
	Description   string             `form:"description" validate:"max=2000"`
	StartDate     string             `form:"startDate" validate:"required,date"`
	EndDate       string             `form:"endDate" validate:"omitempty,date"`
	Banner        string             `form:"banner" validate:"required,url"`
	Location      string             `form:"location" validate:"required"`
	LimitDonation int                `form:"limitDonation" validate:"min=1"`
	Status        api.CampaignStatus `form:"status" validate:"oneof=active not_started ended"`
}

var campaignMessages = messages{
	"name":           "Name is required",
	"startDate":      "Start date is required",
	"startDate.date": "Start date must use the YYYY-MM-DD format",
	"banner":         "Invalid URL format",
	"location":       "Location is required",
	"limitDonation":  "Limit donation must be at least 1",
	"status":         "Status must be Active, Not Started, or Ended",
}

// NewCampaignForm returns the empty create form.
func NewCampaignForm() *CampaignForm {
	return BindCampaign(url.Values{"status": {string(api.CampaignActive)}})
}

// CampaignFormFrom pre-populates the edit form from a fetched campaign.
func CampaignFormFrom(c api.Campaign) *CampaignForm {
	return BindCampaign(url.Values{
		"name":          {c.Name},
		"description":   {c.Description},
		"startDate":     {api.DateOnly(c.StartDate)},
		"endDate":       {api.DateOnly(c.EndDate)},
		"banner":        {c.Banner},
		"location":      {c.Location},
		"limitDonation": {strconv.Itoa(c.LimitDonation)},
		"status":        {string(c.Status)},
	})
}

// BindCampaign reads a submitted campaign form.
func BindCampaign(v url.Values) *CampaignForm {
	f := &CampaignForm{}
	f.remember(v)
	f.Name = f.text(v, "name")
	f.Description = f.text(v, "description")
	f.StartDate = f.text(v, "startDate")
	f.EndDate = f.text(v, "endDate")
	f.Banner = f.text(v, "banner")
	f.Location = f.text(v, "location")
	f.LimitDonation = f.number(v, "limitDonation")
	f.Status = api.CampaignStatus(f.text(v, "status"))
	return f
}

// Validate returns per-field errors, or nil when the form is valid.
func (f *CampaignForm) Validate() FieldErrors {
	return check(f, &f.base, campaignMessages)
}

// Payload is the request body for create and update.
func (f *CampaignForm) Payload() api.CampaignInput {
	return api.CampaignInput{
		Name:          f.Name,
		Description:   f.Description,
		StartDate:     f.StartDate,
		EndDate:       f.EndDate,
		Status:        f.Status,
		Banner:        f.Banner,
		Location:      f.Location,
		LimitDonation: f.LimitDonation,
	}
}
