// ABOUTME: Campaign pages, table partial and create/edit mutations
// ABOUTME: Admins manage campaigns; staff browse them and drill into their donation requests

package webadmin

import (
	"cmp"
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/2389/bloodlink-console/internal/api"
	"github.com/2389/bloodlink-console/internal/forms"
	"github.com/2389/bloodlink-console/internal/query"
	"github.com/2389/bloodlink-console/internal/store"
)

var campaignColumns = []column{
	{Key: "name", Label: "Name", Sortable: true},
	{Key: "startDate", Label: "Start Date", Sortable: true},
	{Key: "endDate", Label: "End Date", Sortable: true},
	{Key: "status", Label: "Status", Sortable: true},
	{Key: "location", Label: "Location", Sortable: true},
	{Key: "limitDonation", Label: "Limit Donation", Sortable: true},
	{Label: "Actions"},
}

var campaignSorter = sorter[api.Campaign]{
	"name":          func(a, b api.Campaign) int { return strings.Compare(a.Name, b.Name) },
	"startDate":     func(a, b api.Campaign) int { return strings.Compare(a.StartDate, b.StartDate) },
	"endDate":       func(a, b api.Campaign) int { return strings.Compare(a.EndDate, b.EndDate) },
	"status":        func(a, b api.Campaign) int { return strings.Compare(string(a.Status), string(b.Status)) },
	"location":      func(a, b api.Campaign) int { return strings.Compare(a.Location, b.Location) },
	"limitDonation": func(a, b api.Campaign) int { return cmp.Compare(a.LimitDonation, b.LimitDonation) },
}

type campaignsTableData struct {
	Table   tableView
	Rows    []api.Campaign
	IsAdmin bool
}

// handleCampaignsPage renders the campaigns page for either shell
func (c *Console) handleCampaignsPage(w http.ResponseWriter, r *http.Request) {
	active := "/staff/"
	if identity(r).IsAdmin() {
		active = "/admin/campaigns"
	}
	data := tablePageData{
		pageData: c.newPageData(w, r, "Campaigns", active),
		TableID:  "campaigns-table",
		TableURL: "/campaigns/table",
	}
	c.renderPage(w, http.StatusOK, "campaigns.html", data)
}

// handleCampaignsTable returns one page of campaigns (htmx partial)
func (c *Console) handleCampaignsTable(w http.ResponseWriter, r *http.Request) {
	st := parseTableState(r)
	view := newTableView("campaigns-table", "/campaigns/table", campaignsKey.Resource(),
		emptyCampaigns, campaignColumns, st, nil)

	data := campaignsTableData{IsAdmin: identity(r).IsAdmin()}
	page, err := c.listCampaigns(r.Context(), scope(r), st.params())
	if err != nil {
		c.logger.Error("failed to list campaigns", "error", err)
		data.Table = view.withError(err)
	} else {
		data.Table = view.withMeta(page.Meta)
		data.Rows = slices.Clone(page.Data)
		sortRows(data.Rows, campaignSorter, st)
	}
	c.renderPartial(w, http.StatusOK, "campaigns_table", data)
}

// handleCampaignCreate creates a campaign from the create dialog
func (c *Console) handleCampaignCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}

	form := forms.BindCampaign(r.PostForm)
	if errs := form.Validate(); errs != nil {
		c.renderDialog(w, http.StatusUnprocessableEntity, c.withCSRF(r, campaignFormDialog("", form, errs)))
		return
	}

	var created *api.Campaign
	c.apply(w, r, change{
		mutation: query.Mutation{
			Name:        "campaign.create",
			Invalidates: []query.Key{campaignsKey},
			Run: func(ctx context.Context) (err error) {
				created, err = c.backend.Campaigns.Create(ctx, form.Payload())
				return err
			},
		},
		success: "Campaign created successfully",
		failure: "Failed to create campaign",
		activity: func() store.ActivityEntry {
			return store.ActivityEntry{
				Action:     store.ActivityCampaignCreate,
				TargetType: "campaign",
				TargetID:   created.ID,
				Summary:    "Created campaign " + created.Name,
				Detail:     map[string]any{"status": string(created.Status), "limitDonation": created.LimitDonation},
			}
		},
	})
}

// handleCampaignUpdate saves the edit dialog
func (c *Console) handleCampaignUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}
	id := r.PathValue("id")

	form := forms.BindCampaign(r.PostForm)
	if errs := form.Validate(); errs != nil {
		c.renderDialog(w, http.StatusUnprocessableEntity, c.withCSRF(r, campaignFormDialog(id, form, errs)))
		return
	}

	payload := form.Payload()
	c.apply(w, r, change{
		mutation: query.Mutation{
			Name: "campaign.update",
			// donation requests embed the campaign name
			Invalidates: []query.Key{campaignsKey, donationsKey},
			Run: func(ctx context.Context) error {
				_, err := c.backend.Campaigns.Update(ctx, id, payload)
				return err
			},
		},
		success: "Campaign updated successfully",
		failure: "Failed to update campaign",
		activity: func() store.ActivityEntry {
			return store.ActivityEntry{
				Action:     store.ActivityCampaignUpdate,
				TargetType: "campaign",
				TargetID:   id,
				Summary:    "Updated campaign " + payload.Name,
				Detail:     map[string]any{"status": string(payload.Status), "limitDonation": payload.LimitDonation},
			}
		},
	})
}

// withCSRF stamps the request's CSRF token onto a re-rendered dialog.
func (c *Console) withCSRF(r *http.Request, d dialogData) dialogData {
	if cookie, err := r.Cookie(CSRFCookieName); err == nil {
		d.CSRFToken = cookie.Value
	}
	return d
}
