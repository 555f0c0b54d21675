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

func seedUnit(h *harness) api.BloodUnit {
	return h.backend.AddUnit(api.BloodUnit{
		MemberID:        "member-1",
		BloodGroup:      "O",
		BloodRh:         "-",
		BloodVolume:     450,
		RemainingVolume: 450,
		ExpiredDate:     "2026-12-01T00:00:00Z",
		Status:          api.BloodUnitAvailable,
	})
}

func TestBloodUnitsTableByRole(t *testing.T) {
	h := newHarness(t)
	u := seedUnit(h)

	rec := h.get("/blood-units/table", h.signIn(auth.RoleStaff))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "O-")
	assert.Contains(t, body, "/dialogs/update-blood-unit/"+u.ID)
	assert.Contains(t, body, "bloodUnitId="+u.ID)

	rec = h.get("/blood-units/table", h.signIn(auth.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
	body = rec.Body.String()
	assert.Contains(t, body, "/dialogs/view-blood-unit/"+u.ID)
	assert.NotContains(t, body, "/dialogs/update-blood-unit/", "blood stock is read-only")
}

func TestBloodUnitsTableFilters(t *testing.T) {
	h := newHarness(t)
	seedUnit(h)
	h.backend.AddUnit(api.BloodUnit{BloodGroup: "A", BloodRh: "+", Status: api.BloodUnitExpired})
	cookies := h.signIn(auth.RoleStaff)

	rec := h.get("/blood-units/table?status=expired&bloodGroup=a", cookies)
	require.Equal(t, http.StatusOK, rec.Code)

	calls := h.backend.CallsTo(http.MethodGet, "/inventory/blood-units")
	require.NotEmpty(t, calls)
	q, _ := url.ParseQuery(calls[len(calls)-1].Query)
	assert.Equal(t, "expired", q.Get("status"))
	assert.Equal(t, "A", q.Get("bloodGroup"))
	assert.NotContains(t, rec.Body.String(), "O-")

	rec = h.get("/blood-units/table?status=melted", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	calls = h.backend.CallsTo(http.MethodGet, "/inventory/blood-units")
	q, _ = url.ParseQuery(calls[len(calls)-1].Query)
	assert.False(t, q.Has("status"))
}

func TestBloodUnitCreate(t *testing.T) {
	h := newHarness(t)
	cookies := h.signIn(auth.RoleStaff)

	form := url.Values{
		"memberId":        {"member-1"},
		"memberName":      {"An Nguyen"},
		"bloodGroup":      {"AB"},
		"bloodRh":         {"-"},
		"bloodVolume":     {"450"},
		"remainingVolume": {"450"},
		"expiredDate":     {"2026-12-15"},
		"status":          {"available"},
	}
	rec := h.do(request{method: http.MethodPost, path: "/blood-units", cookies: cookies, form: form, htmx: true})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, toast{Level: "success", Message: "Blood unit created successfully"}, triggeredToast(t, rec))
	assert.Equal(t, []string{"blood-units"}, triggeredInvalidation(t, rec).Resources)

	calls := h.backend.CallsTo(http.MethodPost, "/inventory/blood-units")
	require.Len(t, calls, 1)
	assert.Equal(t, "member-1", calls[0].Body["memberId"])
	assert.Equal(t, "AB", calls[0].Body["bloodGroup"])
	assert.NotContains(t, calls[0].Body, "memberName")

	entries := activity(t, h.store, store.ActivityBloodUnitCreate)
	require.Len(t, entries, 1)
	assert.Equal(t, "Created AB- blood unit for An Nguyen", entries[0].Summary)
}

func TestBloodUnitCreateValidation(t *testing.T) {
	h := newHarness(t)

	rec := h.do(request{method: http.MethodPost, path: "/blood-units", cookies: h.signIn(auth.RoleStaff),
		form: url.Values{"memberId": {"member-1"}, "bloodVolume": {"abc"}}, htmx: true})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "field-error")
	assert.Empty(t, h.backend.CallsTo(http.MethodPost, "/inventory/blood-units"))
}

func TestBloodUnitUpdate(t *testing.T) {
	h := newHarness(t)
	u := seedUnit(h)
	cookies := h.signIn(auth.RoleStaff)

	// history is cached before the update
	rec := h.get("/blood-unit-actions/table?bloodUnitId="+u.ID, cookies)
	require.Contains(t, rec.Body.String(), emptyActions)

	form := url.Values{
		"bloodVolume":     {"450"},
		"remainingVolume": {"200"},
		"expiredDate":     {"2026-12-01"},
		"status":          {"used"},
		"staffId":         {"staff-1"},
		"staffName":       {"Linh Tran"},
	}
	rec = h.do(request{method: http.MethodPatch, path: "/blood-units/" + u.ID, cookies: cookies, form: form, htmx: true})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"blood-unit-actions", "blood-units"}, triggeredInvalidation(t, rec).Resources)

	calls := h.backend.CallsTo(http.MethodPatch, "/inventory/blood-units/"+u.ID)
	require.Len(t, calls, 1)
	assert.Equal(t, "staff-1", calls[0].Body["staffId"])
	assert.EqualValues(t, 200, calls[0].Body["remainingVolume"])

	rec = h.get("/blood-unit-actions/table?bloodUnitId="+u.ID, cookies)
	body := rec.Body.String()
	assert.Contains(t, body, "Status Update")
	assert.Contains(t, body, "Volume Change")
	assert.Contains(t, body, "Linh Tran")
}

func TestBloodUnitUpdateBackendFailure(t *testing.T) {
	h := newHarness(t)
	u := seedUnit(h)
	h.backend.Fail(http.MethodPatch, "/inventory/blood-units/"+u.ID, http.StatusConflict, "unit locked")

	form := url.Values{"bloodVolume": {"450"}, "remainingVolume": {"10"}, "expiredDate": {"2026-12-01"}, "status": {"available"}}
	rec := h.do(request{method: http.MethodPatch, path: "/blood-units/" + u.ID, cookies: h.signIn(auth.RoleStaff), form: form, htmx: true})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, toast{Level: "error", Message: "Failed to update blood unit"}, triggeredToast(t, rec))
}
