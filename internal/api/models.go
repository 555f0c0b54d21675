// ABOUTME: Entity types mirrored from the BloodLink REST API
// ABOUTME: Campaigns, donation requests, blood units, blood unit actions and staff profiles

package api

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignActive     CampaignStatus = "active"
	CampaignNotStarted CampaignStatus = "not_started"
	CampaignEnded      CampaignStatus = "ended"
)

// CampaignStatuses lists every valid campaign status in display order.
var CampaignStatuses = []CampaignStatus{CampaignActive, CampaignNotStarted, CampaignEnded}

// DonationStatus is the state of a donation request. Only pending, completed and
// rejected are produced by this console; other values from the backend are kept
// verbatim for display.
type DonationStatus string

const (
	DonationPending   DonationStatus = "pending"
	DonationCompleted DonationStatus = "completed"
	DonationRejected  DonationStatus = "rejected"
)

// DonationStatuses lists the canonical donation statuses.
var DonationStatuses = []DonationStatus{DonationPending, DonationCompleted, DonationRejected}

// Known reports whether s is one of the canonical donation statuses.
func (s DonationStatus) Known() bool {
	for _, k := range DonationStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// BloodUnitStatus is the inventory state of a blood unit.
type BloodUnitStatus string

const (
	BloodUnitAvailable BloodUnitStatus = "available"
	BloodUnitUsed      BloodUnitStatus = "used"
	BloodUnitExpired   BloodUnitStatus = "expired"
	BloodUnitDamaged   BloodUnitStatus = "damaged"
)

// BloodUnitStatuses lists every blood unit status in display order.
var BloodUnitStatuses = []BloodUnitStatus{BloodUnitAvailable, BloodUnitUsed, BloodUnitExpired, BloodUnitDamaged}

// ActionKind classifies a blood unit action.
type ActionKind string

const (
	ActionStatusUpdate ActionKind = "status_update"
	ActionVolumeChange ActionKind = "volume_change"
)

// Display returns the label shown for an action. Anything that is not a status
// update is a volume change.
func (k ActionKind) Display() string {
	if k == ActionStatusUpdate {
		return "Status Update"
	}
	return "Volume Change"
}

var titleCaser = cases.Title(language.English)

// Label turns an enum value like "not_started" into "Not Started".
func Label(value string) string {
	if value == "" {
		return ""
	}
	return titleCaser.String(strings.ReplaceAll(value, "_", " "))
}

// DateOnly trims an ISO timestamp to its YYYY-MM-DD part.
func DateOnly(ts string) string {
	if i := strings.IndexByte(ts, 'T'); i >= 0 {
		return ts[:i]
	}
	return ts
}

// Campaign is a blood-donation drive.
type Campaign struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	StartDate     string         `json:"startDate"`
	EndDate       string         `json:"endDate,omitempty"`
	Status        CampaignStatus `json:"status"`
	Banner        string         `json:"banner"`
	Location      string         `json:"location"`
	LimitDonation int            `json:"limitDonation"`
	CreatedAt     string         `json:"createdAt,omitempty"`
	UpdatedAt     string         `json:"updatedAt,omitempty"`
}

// CampaignInput is the body for creating or updating a campaign.
type CampaignInput struct {
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	StartDate     string         `json:"startDate"`
	EndDate       string         `json:"endDate,omitempty"`
	Status        CampaignStatus `json:"status"`
	Banner        string         `json:"banner"`
	Location      string         `json:"location"`
	LimitDonation int            `json:"limitDonation"`
}

// Donor is the member who made a donation request.
type Donor struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	BloodType string `json:"bloodType,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
}

// FullName joins first and last name.
func (d Donor) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// CampaignRef is the short campaign reference embedded in other records.
type CampaignRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DonationRequest is a donor's appointment against a campaign.
type DonationRequest struct {
	ID              string         `json:"id"`
	Donor           Donor          `json:"donor"`
	Campaign        CampaignRef    `json:"campaign"`
	Amount          int            `json:"amount"`
	Note            string         `json:"note"`
	AppointmentDate string         `json:"appointmentDate"`
	CurrentStatus   DonationStatus `json:"currentStatus"`
	CreatedAt       string         `json:"createdAt,omitempty"`
	UpdatedAt       string         `json:"updatedAt,omitempty"`
}

// StatusUpdate is the body for PATCH /donations/requests/:id/status.
// Nil optional fields are omitted so the backend leaves them untouched.
type StatusUpdate struct {
	Status          DonationStatus `json:"status"`
	AppointmentDate *string        `json:"appointmentDate,omitempty"`
	Note            *string        `json:"note,omitempty"`
}

// BloodUnit is an inventory record for a collected quantity of blood.
// RemainingVolume is expected to stay at or below BloodVolume but the
// backend owns that rule.
type BloodUnit struct {
	ID              string          `json:"id"`
	MemberID        string          `json:"memberId"`
	BloodGroup      string          `json:"bloodGroup"`
	BloodRh         string          `json:"bloodRh"`
	BloodVolume     int             `json:"bloodVolume"`
	RemainingVolume int             `json:"remainingVolume"`
	ExpiredDate     string          `json:"expiredDate"`
	Status          BloodUnitStatus `json:"status"`
	CreatedAt       string          `json:"createdAt,omitempty"`
	UpdatedAt       string          `json:"updatedAt,omitempty"`
}

// BloodType renders group and Rh together, e.g. "AB+".
func (u BloodUnit) BloodType() string {
	return u.BloodGroup + u.BloodRh
}

// BloodUnitInput is the body for POST /inventory/blood-units.
type BloodUnitInput struct {
	MemberID        string          `json:"memberId"`
	BloodGroup      string          `json:"bloodGroup"`
	BloodRh         string          `json:"bloodRh"`
	BloodVolume     int             `json:"bloodVolume"`
	RemainingVolume int             `json:"remainingVolume"`
	ExpiredDate     string          `json:"expiredDate"`
	Status          BloodUnitStatus `json:"status"`
}

// BloodUnitUpdate is the body for PATCH /inventory/blood-units/:id.
type BloodUnitUpdate struct {
	BloodVolume     int             `json:"bloodVolume"`
	RemainingVolume int             `json:"remainingVolume"`
	ExpiredDate     string          `json:"expiredDate"`
	Status          BloodUnitStatus `json:"status"`
	StaffID         string          `json:"staffId,omitempty"`
}

// StaffRef is the short staff reference embedded in actions.
type StaffRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FullName joins first and last name.
func (s StaffRef) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// BloodUnitAction is a read-only audit record of a change to a blood unit.
type BloodUnitAction struct {
	ID            string     `json:"id"`
	BloodUnitID   string     `json:"bloodUnitId"`
	Staff         StaffRef   `json:"staff"`
	Action        ActionKind `json:"action"`
	Description   string     `json:"description"`
	PreviousValue string     `json:"previousValue"`
	NewValue      string     `json:"newValue"`
	CreatedAt     string     `json:"createdAt,omitempty"`
	UpdatedAt     string     `json:"updatedAt,omitempty"`
}

// StaffProfile is the signed-in staff member's profile.
type StaffProfile struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// FullName joins first and last name.
func (p StaffProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ProfilePatch is the body for PATCH /staffs/me.
type ProfilePatch struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Meta is the pagination block of a list response.
type Meta struct {
	Page            int  `json:"page"`
	Limit           int  `json:"limit"`
	Total           int  `json:"total"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Page is one page of a paginated list.
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// Default page parameters, matching the backend defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListParams are the common pagination query parameters. Page is one-based.
type ListParams struct {
	Page  int
	Limit int
}

// Normalize fills in defaults and clamps the limit.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	switch {
	case p.Limit < 1:
		p.Limit = DefaultLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	return p
}

func (p ListParams) values() url.Values {
	p = p.Normalize()
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.Limit))
	return v
}

// DonationListParams filters donation request lists.
type DonationListParams struct {
	ListParams
	Status DonationStatus
}

func (p DonationListParams) values() url.Values {
	v := p.ListParams.values()
	if p.Status != "" {
		v.Set("status", string(p.Status))
	}
	return v
}

// BloodUnitListParams filters blood unit lists.
type BloodUnitListParams struct {
	ListParams
	Status     BloodUnitStatus
	BloodGroup string
}

func (p BloodUnitListParams) values() url.Values {
	v := p.ListParams.values()
	if p.Status != "" {
		v.Set("status", string(p.Status))
	}
	if p.BloodGroup != "" {
		v.Set("bloodGroup", p.BloodGroup)
	}
	return v
}

// ActionListParams filters the blood unit action history.
type ActionListParams struct {
	ListParams
	BloodUnitID string
}

func (p ActionListParams) values() url.Values {
	v := p.ListParams.values()
	if p.BloodUnitID != "" {
		v.Set("bloodUnitId", p.BloodUnitID)
	}
	return v
}
