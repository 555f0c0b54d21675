// ABOUTME: Donation request pages, tables and the update-status mutation
// ABOUTME: Covers the all-requests view and the per-campaign drill-down

package webadmin

import (
	"cmp"
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/2389/bloodlink-console/internal/api"
	"github.com/2389/bloodlink-console/internal/forms"
	"github.com/2389/bloodlink-console/internal/query"
	"github.com/2389/bloodlink-console/internal/store"
)

var donationColumns = []column{
	{Key: "donor", Label: "Donor", Sortable: true},
	{Key: "campaign", Label: "Campaign", Sortable: true},
	{Key: "amount", Label: "Amount", Sortable: true},
	{Label: "Note"},
	{Key: "appointmentDate", Label: "Appointment Date", Sortable: true},
	{Key: "status", Label: "Status", Sortable: true},
	{Key: "createdAt", Label: "Created At", Sortable: true},
	{Label: "Actions"},
}

var donationSorter = sorter[api.DonationRequest]{
	"donor": func(a, b api.DonationRequest) int {
		return strings.Compare(a.Donor.FullName(), b.Donor.FullName())
	},
	"campaign": func(a, b api.DonationRequest) int { return strings.Compare(a.Campaign.Name, b.Campaign.Name) },
	"amount":   func(a, b api.DonationRequest) int { return cmp.Compare(a.Amount, b.Amount) },
	"appointmentDate": func(a, b api.DonationRequest) int {
		return strings.Compare(a.AppointmentDate, b.AppointmentDate)
	},
	"status": func(a, b api.DonationRequest) int {
		return strings.Compare(string(a.CurrentStatus), string(b.CurrentStatus))
	},
	"createdAt": func(a, b api.DonationRequest) int { return strings.Compare(a.CreatedAt, b.CreatedAt) },
}

type donationsTableData struct {
	Table tableView
	Rows  []api.DonationRequest
}

// donationStatusFilter keeps only statuses the backend knows how to filter.
func donationStatusFilter(r *http.Request) api.DonationStatus {
	s := api.DonationStatus(r.URL.Query().Get("status"))
	if !s.Known() {
		return ""
	}
	return s
}

// statusFilters builds the All/Pending/Completed/Rejected links.
func statusFilters(base string, current api.DonationStatus) []filterGroup {
	opts := []filterOption{{Label: "All", URL: base, Active: current == ""}}
	for _, s := range api.DonationStatuses {
		opts = append(opts, filterOption{
			Label:  api.Label(string(s)),
			URL:    base + "?" + url.Values{"status": {string(s)}}.Encode(),
			Active: current == s,
		})
	}
	return []filterGroup{{Label: "Status", Options: opts}}
}

func tableURL(endpoint string, filters url.Values) string {
	if enc := filters.Encode(); enc != "" {
		return endpoint + "?" + enc
	}
	return endpoint
}

// handleDonationsPage renders all donation requests
func (c *Console) handleDonationsPage(w http.ResponseWriter, r *http.Request) {
	status := donationStatusFilter(r)
	filters := url.Values{}
	if status != "" {
		filters.Set("status", string(status))
	}
	data := tablePageData{
		pageData: c.newPageData(w, r, "Donation Requests", "/staff/donations"),
		TableID:  "donations-table",
		TableURL: tableURL("/donation-requests/table", filters),
		Filters:  statusFilters("/staff/donations", status),
	}
	c.renderPage(w, http.StatusOK, "donations.html", data)
}

// handleDonationsTable returns one page of donation requests (htmx partial)
func (c *Console) handleDonationsTable(w http.ResponseWriter, r *http.Request) {
	st := parseTableState(r)
	status := donationStatusFilter(r)
	view := newTableView("donations-table", "/donation-requests/table", donationsKey.Resource(),
		emptyDonations, donationColumns, st, url.Values{"status": {string(status)}})

	page, err := c.listDonations(r.Context(), scope(r), api.DonationListParams{ListParams: st.params(), Status: status})
	c.renderDonationsTable(w, view, st, page, err)
}

// handleCampaignDonationsPage renders the donation requests of one campaign
func (c *Console) handleCampaignDonationsPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	status := donationStatusFilter(r)
	filters := url.Values{}
	if status != "" {
		filters.Set("status", string(status))
	}
	data := tablePageData{
		pageData: c.newPageData(w, r, "Donation Requests", "/staff/"),
		TableID:  "donations-table",
		TableURL: tableURL("/campaigns/"+url.PathEscape(id)+"/donation-requests/table", filters),
		Filters:  statusFilters("/staff/campaigns/"+url.PathEscape(id)+"/donation-requests", status),
		Back:     "/staff/",
	}
	campaign, err := c.getCampaign(r.Context(), scope(r), id)
	if err != nil {
		c.logger.Warn("failed to load campaign for drill-down", "id", id, "error", err)
	} else {
		data.Campaign = campaign
		data.Title = campaign.Name + " · Donation Requests"
	}
	c.renderPage(w, http.StatusOK, "donations.html", data)
}

// handleCampaignDonationsTable returns one page of a campaign's requests (htmx partial)
func (c *Console) handleCampaignDonationsTable(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st := parseTableState(r)
	status := donationStatusFilter(r)
	endpoint := "/campaigns/" + url.PathEscape(id) + "/donation-requests/table"
	view := newTableView("donations-table", endpoint, donationsKey.Resource(),
		emptyDonations, donationColumns, st, url.Values{"status": {string(status)}})

	page, err := c.listCampaignDonations(r.Context(), scope(r), id, api.DonationListParams{ListParams: st.params(), Status: status})
	c.renderDonationsTable(w, view, st, page, err)
}

func (c *Console) renderDonationsTable(w http.ResponseWriter, view tableView, st tableState, page *api.Page[api.DonationRequest], err error) {
	var data donationsTableData
	if err != nil {
		c.logger.Error("failed to list donation requests", "error", err)
		data.Table = view.withError(err)
	} else {
		data.Table = view.withMeta(page.Meta)
		data.Rows = slices.Clone(page.Data)
		sortRows(data.Rows, donationSorter, st)
	}
	c.renderPartial(w, http.StatusOK, "donations_table", data)
}

// handleDonationStatusUpdate saves the update-status dialog
func (c *Console) handleDonationStatusUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || !c.validateCSRF(r) {
		http.Error(w, "Invalid request", http.StatusForbidden)
		return
	}
	id := r.PathValue("id")

	form := forms.BindDonationStatus(r.PostForm)
	if errs := form.Validate(); errs != nil {
		c.renderDialog(w, http.StatusUnprocessableEntity, c.withCSRF(r, statusFormDialog(id, form, errs)))
		return
	}

	update := form.Payload()
	c.apply(w, r, change{
		mutation: query.Mutation{
			Name:        "donation.update_status",
			Invalidates: []query.Key{donationsKey},
			Run: func(ctx context.Context) error {
				return c.backend.Donations.UpdateStatus(ctx, id, update)
			},
		},
		success: "Status updated successfully",
		failure: "Failed to update status",
		activity: func() store.ActivityEntry {
			detail := map[string]any{"status": string(update.Status)}
			if update.AppointmentDate != nil {
				detail["appointmentDate"] = *update.AppointmentDate
			}
			return store.ActivityEntry{
				Action:     store.ActivityDonationStatus,
				TargetType: "donation_request",
				TargetID:   id,
				Summary:    "Marked donation request " + string(update.Status),
				Detail:     detail,
			}
		},
	})
}
