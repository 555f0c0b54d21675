// ABOUTME: In-memory fake of the BloodLink REST API for tests
// ABOUTME: Serves campaigns, donations, inventory and staff endpoints over httptest

package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/2389/bloodlink-console/internal/api"
)

// Call records one request the fake received.
type Call struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

type failure struct {
	status  int
	message string
}

// Backend is an in-memory BloodLink API. All fields are guarded by mu;
// use the helper methods from tests.
type Backend struct {
	Server *httptest.Server

	mu        sync.Mutex
	campaigns []api.Campaign
	donations []api.DonationRequest
	units     []api.BloodUnit
	actions   []api.BloodUnitAction
	profile   api.StaffProfile
	calls     []Call
	failures  map[string]failure // keyed by "METHOD /path"
}

// NewBackend starts a fake backend that is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		profile:  api.StaffProfile{ID: "staff-1", FirstName: "Linh", LastName: "Tran", Role: "staff"},
		failures: make(map[string]failure),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /campaigns", b.listCampaigns)
	mux.HandleFunc("POST /campaigns", b.createCampaign)
	mux.HandleFunc("GET /campaigns/{id}", b.getCampaign)
	mux.HandleFunc("PATCH /campaigns/{id}", b.updateCampaign)
	mux.HandleFunc("DELETE /campaigns/{id}", b.deleteCampaign)
	mux.HandleFunc("GET /campaigns/{id}/donation-requests", b.listCampaignDonations)
	mux.HandleFunc("GET /donations/requests", b.listDonations)
	mux.HandleFunc("GET /donations/requests/{id}", b.getDonation)
	mux.HandleFunc("PATCH /donations/requests/{id}/status", b.updateDonationStatus)
	mux.HandleFunc("GET /staffs/me", b.getProfile)
	mux.HandleFunc("PATCH /staffs/me", b.updateProfile)
	mux.HandleFunc("GET /inventory/blood-units", b.listUnits)
	mux.HandleFunc("POST /inventory/blood-units", b.createUnit)
	mux.HandleFunc("GET /inventory/blood-units/{id}", b.getUnit)
	mux.HandleFunc("PATCH /inventory/blood-units/{id}", b.updateUnit)
	mux.HandleFunc("GET /inventory/blood-unit-actions", b.listActions)
	mux.HandleFunc("GET /inventory/blood-unit-actions/{id}", b.getAction)

	b.Server = httptest.NewServer(b.record(mux))
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the base URL to hand to api.New.
func (b *Backend) URL() string { return b.Server.URL }

// Fail makes every request matching method and path answer with status and message
// until Recover is called.
func (b *Backend) Fail(method, path string, status int, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[method+" "+path] = failure{status: status, message: message}
}

// Recover clears all injected failures.
func (b *Backend) Recover() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = make(map[string]failure)
}

// Calls returns a copy of every recorded request.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// CallsTo returns recorded requests for one method and path.
func (b *Backend) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// AddCampaign seeds a campaign, generating an ID when empty.
func (b *Backend) AddCampaign(c api.Campaign) api.Campaign {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	b.campaigns = append(b.campaigns, c)
	return c
}

// AddDonation seeds a donation request.
func (b *Backend) AddDonation(d api.DonationRequest) api.DonationRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	b.donations = append(b.donations, d)
	return d
}

// AddUnit seeds a blood unit.
func (b *Backend) AddUnit(u api.BloodUnit) api.BloodUnit {
	b.mu.Lock()
	defer b.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	b.units = append(b.units, u)
	return u
}

// AddAction seeds a blood unit action.
func (b *Backend) AddAction(a api.BloodUnitAction) api.BloodUnitAction {
	b.mu.Lock()
	defer b.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	b.actions = append(b.actions, a)
	return a
}

// SetProfile replaces the staff profile served by /staffs/me.
func (b *Backend) SetProfile(p api.StaffProfile) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.profile = p
}

// Campaign returns the stored campaign with id.
func (b *Backend) Campaign(id string) (api.Campaign, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.campaigns {
		if c.ID == id {
			return c, true
		}
	}
	return api.Campaign{}, false
}

// Donation returns the stored donation request with id.
func (b *Backend) Donation(id string) (api.DonationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.donations {
		if d.ID == id {
			return d, true
		}
	}
	return api.DonationRequest{}, false
}

// Unit returns the stored blood unit with id.
func (b *Backend) Unit(id string) (api.BloodUnit, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.units {
		if u.ID == id {
			return u, true
		}
	}
	return api.BloodUnit{}, false
}

// record logs each call and applies injected failures before routing.
func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			r.Body.Close()
			if len(raw) > 0 {
				_ = json.Unmarshal(raw, &body)
			}
			r.Body = io.NopCloser(strings.NewReader(string(raw)))
		}

		b.mu.Lock()
		b.calls = append(b.calls, Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Auth:   r.Header.Get("Authorization"),
			Body:   body,
		})
		f, failing := b.failures[r.Method+" "+r.URL.Path]
		b.mu.Unlock()

		if failing {
			writeJSON(w, f.status, map[string]any{"success": false, "message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "OK", "data": data})
}

func notFound(w http.ResponseWriter, what string) {
	writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": what + " not found"})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func paginate[T any](r *http.Request, items []T) api.Page[T] {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	p := api.ListParams{Page: page, Limit: limit}.Normalize()

	total := len(items)
	totalPages := (total + p.Limit - 1) / p.Limit
	start := (p.Page - 1) * p.Limit
	end := start + p.Limit
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	data := make([]T, end-start)
	copy(data, items[start:end])
	return api.Page[T]{
		Data: data,
		Meta: api.Meta{
			Page:            p.Page,
			Limit:           p.Limit,
			Total:           total,
			TotalPages:      totalPages,
			HasNextPage:     p.Page < totalPages,
			HasPreviousPage: p.Page > 1,
		},
	}
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func (b *Backend) listCampaigns(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	page := paginate(r, b.campaigns)
	b.mu.Unlock()
	ok(w, page)
}

func (b *Backend) getCampaign(w http.ResponseWriter, r *http.Request) {
	c, found := b.Campaign(r.PathValue("id"))
	if !found {
		notFound(w, "Campaign")
		return
	}
	ok(w, c)
}

func (b *Backend) createCampaign(w http.ResponseWriter, r *http.Request) {
	var in api.CampaignInput
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
		return
	}
	c := b.AddCampaign(api.Campaign{
		Name: in.Name, Description: in.Description, StartDate: in.StartDate, EndDate: in.EndDate,
		Status: in.Status, Banner: in.Banner, Location: in.Location, LimitDonation: in.LimitDonation,
		CreatedAt: now(), UpdatedAt: now(),
	})
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Created", "data": c})
}

func (b *Backend) updateCampaign(w http.ResponseWriter, r *http.Request) {
	var in api.CampaignInput
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
		return
	}
	id := r.PathValue("id")

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.campaigns {
		if b.campaigns[i].ID != id {
			continue
		}
		c := &b.campaigns[i]
		c.Name, c.Description, c.StartDate, c.EndDate = in.Name, in.Description, in.StartDate, in.EndDate
		c.Status, c.Banner, c.Location, c.LimitDonation = in.Status, in.Banner, in.Location, in.LimitDonation
		c.UpdatedAt = now()
		ok(w, *c)
		return
	}
	notFound(w, "Campaign")
}

func (b *Backend) deleteCampaign(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.campaigns {
		if b.campaigns[i].ID == id {
			b.campaigns = append(b.campaigns[:i], b.campaigns[i+1:]...)
			ok(w, nil)
			return
		}
	}
	notFound(w, "Campaign")
}

func (b *Backend) filterDonations(r *http.Request, campaignID string) []api.DonationRequest {
	status := r.URL.Query().Get("status")
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []api.DonationRequest
	for _, d := range b.donations {
		if campaignID != "" && d.Campaign.ID != campaignID {
			continue
		}
		if status != "" && string(d.CurrentStatus) != status {
			continue
		}
		out = append(out, d)
	}
	return out
}

func (b *Backend) listCampaignDonations(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, found := b.Campaign(id); !found {
		notFound(w, "Campaign")
		return
	}
	ok(w, paginate(r, b.filterDonations(r, id)))
}

func (b *Backend) listDonations(w http.ResponseWriter, r *http.Request) {
	ok(w, paginate(r, b.filterDonations(r, "")))
}

func (b *Backend) getDonation(w http.ResponseWriter, r *http.Request) {
	d, found := b.Donation(r.PathValue("id"))
	if !found {
		notFound(w, "Donation request")
		return
	}
	ok(w, d)
}

func (b *Backend) updateDonationStatus(w http.ResponseWriter, r *http.Request) {
	var in api.StatusUpdate
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
		return
	}
	id := r.PathValue("id")

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.donations {
		if b.donations[i].ID != id {
			continue
		}
		d := &b.donations[i]
		d.CurrentStatus = in.Status
		if in.AppointmentDate != nil {
			d.AppointmentDate = *in.AppointmentDate
		}
		if in.Note != nil {
			d.Note = *in.Note
		}
		d.UpdatedAt = now()
		ok(w, *d)
		return
	}
	notFound(w, "Donation request")
}

func (b *Backend) getProfile(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	p := b.profile
	b.mu.Unlock()
	ok(w, p)
}

func (b *Backend) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in api.ProfilePatch
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
		return
	}
	b.mu.Lock()
	if in.FirstName != "" {
		b.profile.FirstName = in.FirstName
	}
	if in.LastName != "" {
		b.profile.LastName = in.LastName
	}
	p := b.profile
	b.mu.Unlock()
	ok(w, p)
}

func (b *Backend) listUnits(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	group := r.URL.Query().Get("bloodGroup")

	b.mu.Lock()
	var out []api.BloodUnit
	for _, u := range b.units {
		if status != "" && string(u.Status) != status {
			continue
		}
		if group != "" && u.BloodGroup != group {
			continue
		}
		out = append(out, u)
	}
	b.mu.Unlock()
	ok(w, paginate(r, out))
}

func (b *Backend) getUnit(w http.ResponseWriter, r *http.Request) {
	u, found := b.Unit(r.PathValue("id"))
	if !found {
		notFound(w, "Blood unit")
		return
	}
	ok(w, u)
}

func (b *Backend) createUnit(w http.ResponseWriter, r *http.Request) {
	var in api.BloodUnitInput
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
		return
	}
	u := b.AddUnit(api.BloodUnit{
		MemberID: in.MemberID, BloodGroup: in.BloodGroup, BloodRh: in.BloodRh,
		BloodVolume: in.BloodVolume, RemainingVolume: in.RemainingVolume,
		ExpiredDate: in.ExpiredDate, Status: in.Status, CreatedAt: now(), UpdatedAt: now(),
	})
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "Created", "data": u})
}

func (b *Backend) updateUnit(w http.ResponseWriter, r *http.Request) {
	var in api.BloodUnitUpdate
	if err := decode(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error()})
		return
	}
	id := r.PathValue("id")

	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.units {
		if b.units[i].ID != id {
			continue
		}
		u := &b.units[i]
		prev := *u
		u.BloodVolume, u.RemainingVolume, u.ExpiredDate, u.Status = in.BloodVolume, in.RemainingVolume, in.ExpiredDate, in.Status
		u.UpdatedAt = now()

		staff := api.StaffRef{ID: b.profile.ID, FirstName: b.profile.FirstName, LastName: b.profile.LastName}
		if prev.Status != u.Status {
			b.actions = append(b.actions, api.BloodUnitAction{
				ID: uuid.NewString(), BloodUnitID: u.ID, Staff: staff, Action: api.ActionStatusUpdate,
				Description:   "Status changed",
				PreviousValue: string(prev.Status), NewValue: string(u.Status), CreatedAt: now(), UpdatedAt: now(),
			})
		}
		if prev.RemainingVolume != u.RemainingVolume {
			b.actions = append(b.actions, api.BloodUnitAction{
				ID: uuid.NewString(), BloodUnitID: u.ID, Staff: staff, Action: api.ActionVolumeChange,
				Description:   "Remaining volume changed",
				PreviousValue: fmt.Sprint(prev.RemainingVolume), NewValue: fmt.Sprint(u.RemainingVolume),
				CreatedAt: now(), UpdatedAt: now(),
			})
		}
		ok(w, *u)
		return
	}
	notFound(w, "Blood unit")
}

func (b *Backend) listActions(w http.ResponseWriter, r *http.Request) {
	unitID := r.URL.Query().Get("bloodUnitId")
	b.mu.Lock()
	var out []api.BloodUnitAction
	for _, a := range b.actions {
		if unitID != "" && a.BloodUnitID != unitID {
			continue
		}
		out = append(out, a)
	}
	b.mu.Unlock()
	ok(w, paginate(r, out))
}

func (b *Backend) getAction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, a := range b.actions {
		if a.ID == id {
			ok(w, a)
			return
		}
	}
	notFound(w, "Action")
}
