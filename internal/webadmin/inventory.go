// ABOUTME: Blood unit pages, tables and mutations plus the blood unit action history
// ABOUTME: Staff create and update units; admins see the read-only blood stock

package webadmin

import (
	"cmp"
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/2389/bloodlink-console/internal/api"
	"github.com/2389/bloodlink-console/internal/auth"
	"github.com/2389/bloodlink-console/internal/forms"
	"github.com/2389/bloodlink-console/internal/query"
	"github.com/2389/bloodlink-console/internal/store"
)

// bloodGroups are the ABO groups offered as filters.
var bloodGroups = []string{"A", "B", "AB", "O"}

var unitColumns = []column{
	{Key: "bloodType", Label: "Blood Type", Sortable: true},
	{Key: "memberId", Label: "Member", Sortable: true},
	{Key: "bloodVolume", Label: "Volume (ml)", Sortable: true},
	{Key: "remainingVolume", Label: "Remaining (ml)", Sortable: true},
	{Key: "expiredDate", Label: "Expired Date", Sortable: true},
	{Key: "status", Label: "Status", Sortable: true},
	{Label: "Actions"},
}

var unitSorter = sorter[api.BloodUnit]{
	"bloodType":       func(a, b api.BloodUnit) int { return strings.Compare(a.BloodType(), b.BloodType()) },
	"memberId":        func(a, b api.BloodUnit) int { return strings.Compare(a.MemberID, b.MemberID) },
	"bloodVolume":     func(a, b api.BloodUnit) int { return cmp.Compare(a.BloodVolume, b.BloodVolume) },
	"remainingVolume": func(a, b api.BloodUnit) int { return cmp.Compare(a.RemainingVolume, b.RemainingVolume) },
	"expiredDate":     func(a, b api.BloodUnit) int { return strings.Compare(a.ExpiredDate, b.ExpiredDate) },
	"status":          func(a, b api.BloodUnit) int { return strings.Compare(string(a.Status), string(b.Status)) },
}

var actionColumns = []column{
	{Key: "action", Label: "Action", Sortable: true},
	{Key: "bloodUnitId", Label: "Blood Unit", Sortable: true},
	{Key: "staff", Label: "Staff", Sortable: true},
	{Label: "Change"},
	{Key: "createdAt", Label: "Created At", Sortable: true},
	{Label: "Actions"},
}

var actionSorter = sorter[api.BloodUnitAction]{
	"action": func(a, b api.BloodUnitAction) int {
		return strings.Compare(a.Action.Display(), b.Action.Display())
	},
	"bloodUnitId": func(a, b api.BloodUnitAction) int { return strings.Compare(a.BloodUnitID, b.BloodUnitID) },
	"staff": func(a, b api.BloodUnitAction) int {
		return strings.Compare(a.Staff.FullName(), b.Staff.FullName())
	},
	"createdAt": func(a, b api.BloodUnitAction) int { return strings.Compare(a.CreatedAt, b.CreatedAt) },
}

type unitsTableData struct {
	Table     tableView
	Rows      []api.BloodUnit
	CanManage bool
}

type actionsTableData struct {
	Table tableView
	Rows  []api.BloodUnitAction
}

// unitFilters reads the status and blood group filters, dropping unknown values.
func unitFilters(r *http.Request) (api.BloodUnitStatus, string) {
	q := r.URL.Query()
	status := api.BloodUnitStatus(q.Get("status"))
	if !slices.Contains(api.BloodUnitStatuses, status) {
		status = ""
	}
	group := strings.ToUpper(q.Get("bloodGroup"))
	if !slices.Contains(bloodGroups, group) {
		group = ""
	}
	return status, group
}

func unitFilterGroups(base string, status api.BloodUnitStatus, group string) []filterGroup {
	link := func(s api.BloodUnitStatus, g string) string {
		v := url.Values{}
		if s != "" {
			v.Set("status", string(s))
		}
		if g != "" {
			v.Set("bloodGroup", g)
		}
		return tableURL(base, v)
	}

	statusOpts := []filterOption{{Label: "All", URL: link("", group), Active: status == ""}}
	for _, s := range api.BloodUnitStatuses {
		statusOpts = append(statusOpts, filterOption{Label: api.Label(string(s)), URL: link(s, group), Active: status == s})
	}
	groupOpts := []filterOption{{Label: "All", URL: link(status, ""), Active: group == ""}}
	for _, g := range bloodGroups {
		groupOpts = append(groupOpts, filterOption{Label: g, URL: link(status, g), Active: group == g})
	}
	return []filterGroup{
		{Label: "Status", Options: statusOpts},
		{Label: "Blood Group", Options: groupOpts},
	}
}

func (c *Console) unitsPage(w http.ResponseWriter, r *http.Request, title, active string) {
	status, group := unitFilters(r)
	filters := url.Values{}
	if status != "" {
		filters.Set("status", string(status))
	}
	if group != "" {
		filters.Set("bloodGroup", group)
	}
	data := tablePageData{
		pageData: c.newPageData(w, r, title, active),
		TableID:  "units-table",
		TableURL: tableURL("/blood-units/table", filters),
		Filters:  unitFilterGroups(active, status, group),
	}
	c.renderPage(w, http.StatusOK, "blood_units.html", data)
}

// handleBloodUnitsPage renders blood unit management for staff
func (c *Console) handleBloodUnitsPage(w http.ResponseWriter, r *http.Request) {
	c.unitsPage(w, r, "Blood Unit Management", "/staff/blood-units")
}

// handleBloodStockPage renders the admin's read-only blood stock
func (c *Console) handleBloodStockPage(w http.ResponseWriter, r *http.Request) {
	c.unitsPage(w, r, "Blood Stock", "/admin/blood-stock")
}

// handleBloodUnitsTable returns one page of blood units (htmx partial)
func (c *Console) handleBloodUnitsTable(w http.ResponseWriter, r *http.Request) {
	st := parseTableState(r)
	status, group := unitFilters(r)
	view := newTableView("units-table", "/blood-units/table", unitsKey.Resource(), emptyUnits, unitColumns, st,
		url.Values{"status": {string(status)}, "bloodGroup": {group}})

	data := unitsTableData{CanManage: identity(r).Role != auth.RoleAdmin}
	page, err := c.listUnits(r.Context(), scope(r), api.BloodUnitListParams{
		ListParams: st.params(),
		Status:     status,
		BloodGroup: group,
	})
	if err != nil {
		c.logger.Error("failed to list blood units", "error", err)
		data.Table = view.withError(err)
	} else {
		data.Table = view.withMeta(page.Meta)
		data.Rows = slices.Clone(page.Data)
		sortRows(data.Rows, unitSorter, st)
	}
	c.renderPartial(w, http.StatusOK, "units_table", data)
}

// handleActionsPage renders the blood unit history
func (c *Console) handleActionsPage(w http.ResponseWriter, r *http.Request) {
	unitID := r.URL.Query().Get("bloodUnitId")
	filters := url.Values{}
	if unitID != "" {
		filters.Set("bloodUnitId", unitID)
	}
	data := tablePageData{
		pageData: c.newPageData(w, r, "Blood Unit History", "/staff/blood-unit-history"),
		TableID:  "actions-table",
		TableURL: tableURL("/blood-unit-actions/table", filters),
	}
	if unitID != "" {
		data.Back = "/staff/blood-unit-history"
	}
	c.renderPage(w, http.StatusOK, "actions.html", data)
}

// handleActionsTable returns one page of blood unit actions (htmx partial)
func (c *Console) handleActionsTable(w http.ResponseWriter, r *http.Request) {
	st := parseTableState(r)
	unitID := r.URL.Query().Get("bloodUnitId")
	view := newTableView("actions-table", "/blood-unit-actions/table", actionsKey.Resource(), emptyActions,
		actionColumns, st, url.Values{"bloodUnitId": {unitID}})

	var data actionsTableData
	page, err := c.listActions(r.Context(), scope(r), api.ActionListParams{ListParams: st.params(), BloodUnitID: unitID})
	if err != nil {
		c.logger.Error("failed to list blood unit actions", "error", err)
		data.Table = view.withError(err)
	} else {
		data.Table = view.withMeta(page.Meta)
		data.Rows = slices.Clone(page.Data)
		sortRows(data.Rows, actionSorter, st)
	}
	c.renderPartial(w, http.StatusOK, "actions_table", data)
}

// handleBloodUnitCreate saves the create-blood-unit dialog
func (c *Console) handleBloodUnitCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	form := forms.BindBloodUnitCreate(r.PostForm)
	if errs := form.Validate(); errs != nil {
		c.renderDialog(w, http.StatusUnprocessableEntity, c.withCSRF(r, bloodUnitCreateDialog(form, errs)))
		return
	}

	var created *api.BloodUnit
	c.apply(w, r, change{
		mutation: query.Mutation{
			Name:        "blood_unit.create",
			Invalidates: []query.Key{unitsKey},
			Run: func(ctx context.Context) (err error) {
				created, err = c.backend.Inventory.Create(ctx, form.Payload())
				return err
			},
		},
		success: "Blood unit created successfully",
		failure: "Failed to create blood unit",
		activity: func() store.ActivityEntry {
			return store.ActivityEntry{
				Action:     store.ActivityBloodUnitCreate,
				TargetType: "blood_unit",
				TargetID:   created.ID,
				Summary:    "Created " + created.BloodType() + " blood unit for " + form.MemberName,
				Detail:     map[string]any{"memberId": created.MemberID, "bloodVolume": created.BloodVolume},
			}
		},
	})
}

// handleBloodUnitUpdate saves the update-blood-unit dialog
func (c *Console) handleBloodUnitUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}
	id := r.PathValue("id")

	form := forms.BindBloodUnitUpdate(r.PostForm)
	if errs := form.Validate(); errs != nil {
		c.renderDialog(w, http.StatusUnprocessableEntity, c.withCSRF(r, bloodUnitUpdateDialog(id, form, errs)))
		return
	}

	update := form.Payload()
	c.apply(w, r, change{
		mutation: query.Mutation{
			Name: "blood_unit.update",
			// the backend records an action for each change
			Invalidates: []query.Key{unitsKey, actionsKey},
			Run: func(ctx context.Context) error {
				_, err := c.backend.Inventory.Update(ctx, id, update)
				return err
			},
		},
		success: "Blood unit updated successfully",
		failure: "Failed to update blood unit",
		activity: func() store.ActivityEntry {
			return store.ActivityEntry{
				Action:     store.ActivityBloodUnitUpdate,
				TargetType: "blood_unit",
				TargetID:   id,
				Summary:    "Updated blood unit to " + api.Label(string(update.Status)),
				Detail: map[string]any{
					"status":          string(update.Status),
					"remainingVolume": update.RemainingVolume,
				},
			}
		},
	})
}
