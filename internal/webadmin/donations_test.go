package webadmin

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/bloodlink-console/internal/api"
	"github.com/2389/bloodlink-console/internal/auth"
	"github.com/2389/bloodlink-console/internal/store"
)

func seedDonations(h *harness) (api.Campaign, api.DonationRequest, api.DonationRequest) {
	c := h.backend.AddCampaign(api.Campaign{Name: "Saigon Drive", Status: api.CampaignActive, LimitDonation: 50})
	pending := h.backend.AddDonation(api.DonationRequest{
		Donor:         api.Donor{ID: "member-1", FirstName: "An", LastName: "Nguyen", BloodType: "AB-"},
		Campaign:      api.CampaignRef{ID: c.ID, Name: c.Name},
		Amount:        350,
		CurrentStatus: api.DonationPending,
	})
	done := h.backend.AddDonation(api.DonationRequest{
		Donor:         api.Donor{ID: "member-2", FirstName: "Binh", LastName: "Le"},
		Campaign:      api.CampaignRef{ID: "other", Name: "Other Drive"},
		Amount:        250,
		CurrentStatus: api.DonationCompleted,
	})
	return c, pending, done
}

func TestDonationsTableFilters(t *testing.T) {
	h := newHarness(t)
	seedDonations(h)
	cookies := h.signIn(auth.RoleStaff)

	rec := h.get("/donation-requests/table?status=pending", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "An Nguyen")
	assert.NotContains(t, body, "Binh Le")

	calls := h.backend.CallsTo(http.MethodGet, "/donations/requests")
	require.NotEmpty(t, calls)
	q, _ := url.ParseQuery(calls[len(calls)-1].Query)
	assert.Equal(t, "pending", q.Get("status"))

	// unknown statuses are ignored rather than sent
	rec = h.get("/donation-requests/table?status=bogus", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	calls = h.backend.CallsTo(http.MethodGet, "/donations/requests")
	q, _ = url.ParseQuery(calls[len(calls)-1].Query)
	assert.False(t, q.Has("status"))
}

func TestDonationsTableShowsUnknownStatusRaw(t *testing.T) {
	h := newHarness(t)
	h.backend.AddDonation(api.DonationRequest{
		Donor:         api.Donor{FirstName: "Chi", LastName: "Pham"},
		CurrentStatus: api.DonationStatus("on_hold"),
	})

	rec := h.get("/donation-requests/table", h.signIn(auth.RoleDoctor))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ">on_hold<")
}

func TestCampaignDonationsDrillDown(t *testing.T) {
	h := newHarness(t)
	c, _, _ := seedDonations(h)
	cookies := h.signIn(auth.RoleStaff)

	rec := h.do(request{method: http.MethodGet, path: "/staff/campaigns/" + c.ID + "/donation-requests", cookies: cookies})
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Saigon Drive · Donation Requests")
	assert.Contains(t, body, "/campaigns/"+c.ID+"/donation-requests/table")

	rec = h.get("/campaigns/"+c.ID+"/donation-requests/table", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "An Nguyen")
	assert.NotContains(t, body, "Binh Le")

	rec = h.get("/campaigns/missing/donation-requests/table", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error: Campaign not found")
}

func TestDonationStatusUpdate(t *testing.T) {
	h := newHarness(t)
	_, pending, _ := seedDonations(h)
	cookies := h.signIn(auth.RoleStaff)

	form := url.Values{"status": {"completed"}, "appointmentDate": {"2026-11-03"}, "note": {"Arrived early"}}
	rec := h.do(request{method: http.MethodPatch, path: "/donation-requests/" + pending.ID + "/status", cookies: cookies, form: form, htmx: true})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, toast{Level: "success", Message: "Status updated successfully"}, triggeredToast(t, rec))
	assert.Equal(t, []string{"donations"}, triggeredInvalidation(t, rec).Resources)

	calls := h.backend.CallsTo(http.MethodPatch, "/donations/requests/"+pending.ID+"/status")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{
		"status":          "completed",
		"appointmentDate": "2026-11-03",
		"note":            "Arrived early",
	}, calls[0].Body)

	got, _ := h.backend.Donation(pending.ID)
	assert.Equal(t, api.DonationCompleted, got.CurrentStatus)
	assert.Len(t, activity(t, h.store, store.ActivityDonationStatus), 1)
}

func TestDonationStatusUpdateOmitsEmptyOptionals(t *testing.T) {
	h := newHarness(t)
	_, pending, _ := seedDonations(h)

	rec := h.do(request{method: http.MethodPatch, path: "/donation-requests/" + pending.ID + "/status",
		cookies: h.signIn(auth.RoleStaff), form: url.Values{"status": {"rejected"}}, htmx: true})
	require.Equal(t, http.StatusNoContent, rec.Code)

	calls := h.backend.CallsTo(http.MethodPatch, "/donations/requests/"+pending.ID+"/status")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]any{"status": "rejected"}, calls[0].Body)
}

func TestDonationStatusUpdateRejectsPending(t *testing.T) {
	h := newHarness(t)
	_, pending, _ := seedDonations(h)

	rec := h.do(request{method: http.MethodPatch, path: "/donation-requests/" + pending.ID + "/status",
		cookies: h.signIn(auth.RoleStaff), form: url.Values{"status": {"pending"}}, htmx: true})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Status is required")
	assert.Empty(t, h.backend.CallsTo(http.MethodPatch, "/donations/requests/"+pending.ID+"/status"))
}
