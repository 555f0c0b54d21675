// ABOUTME: Admin dashboard with backend totals and the console activity log
// ABOUTME: Totals are fetched concurrently; the log comes from the local store

package webadmin

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/2389/bloodlink-console/internal/api"
	"github.com/2389/bloodlink-console/internal/store"
)

// activityLimit is how many entries the dashboard shows.
const activityLimit = 50

type activityListData struct {
	Entries []store.ActivityEntry
	Error   string
}

// handleDashboard renders the admin dashboard shell
func (c *Console) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := dashboardData{pageData: c.newPageData(w, r, "Dashboard", "/admin/")}
	c.renderPage(w, http.StatusOK, "dashboard.html", data)
}

// handleDashboardStats returns the totals cards (htmx partial). A failing
// total is reported without hiding the others.
func (c *Console) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	subject := scope(r)
	one := api.ListParams{Page: 1, Limit: 1}

	var (
		stats dashboardStats
		mu    sync.Mutex
	)
	fail := func(what string, err error) {
		c.logger.Warn("dashboard total failed", "total", what, "error", err)
		mu.Lock()
		stats.Errors = append(stats.Errors, what+": "+api.Message(err))
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		page, err := c.listCampaigns(r.Context(), subject, one)
		if err != nil {
			fail("Campaigns", err)
			return nil
		}
		stats.Campaigns = page.Meta.Total
		return nil
	})
	g.Go(func() error {
		page, err := c.listUnits(r.Context(), subject, api.BloodUnitListParams{ListParams: one, Status: api.BloodUnitAvailable})
		if err != nil {
			fail("Available blood units", err)
			return nil
		}
		stats.AvailableUnits = page.Meta.Total
		return nil
	})
	g.Go(func() error {
		page, err := c.listDonations(r.Context(), subject, api.DonationListParams{ListParams: one, Status: api.DonationPending})
		if err != nil {
			fail("Pending donation requests", err)
			return nil
		}
		stats.PendingRequests = page.Meta.Total
		return nil
	})
	_ = g.Wait()

	c.renderPartial(w, http.StatusOK, "dashboard_stats", stats)
}

// handleActivityList returns the latest console activity (htmx partial)
func (c *Console) handleActivityList(w http.ResponseWriter, r *http.Request) {
	var data activityListData
	entries, err := c.recentActivity(r.Context(), r.URL.Query().Get("actor"))
	if err != nil {
		c.logger.Error("failed to list activity", "error", err)
		data.Error = "Failed to load activity"
	}
	data.Entries = entries
	c.renderPartial(w, http.StatusOK, "activity_list", data)
}

func (c *Console) recentActivity(ctx context.Context, actor string) ([]store.ActivityEntry, error) {
	f := store.ActivityFilter{Limit: activityLimit}
	if actor != "" {
		f.Actor = &actor
	}
	return c.store.ListActivity(ctx, f)
}
