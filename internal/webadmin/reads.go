// ABOUTME: Cached backend reads used by console pages, tables and dialogs
// ABOUTME: Every read goes through the query cache under the signed-in user's scope

package webadmin

import (
	"context"
	"slices"

	"github.com/2389/bloodlink-console/internal/api"
	"github.com/2389/bloodlink-console/internal/query"
)

// Resource roots. Mutations invalidate these prefixes; the first part is
// also the name of the browser event tables listen for.
var (
	campaignsKey = query.K("campaigns")
	donationsKey = query.K("donations")
	unitsKey     = query.K("blood-units")
	actionsKey   = query.K("blood-unit-actions")
	profileKey   = query.K("profile")
)

// keyOf extends a resource root without sharing its backing array.
func keyOf(root query.Key, parts ...any) query.Key {
	return append(slices.Clip(root), query.K(parts...)...)
}

func (c *Console) listCampaigns(ctx context.Context, subject string, p api.ListParams) (*api.Page[api.Campaign], error) {
	p = p.Normalize()
	k := keyOf(campaignsKey, "list", p.Page, p.Limit)
	return query.Fetch(ctx, c.queries.Cache(), subject, k,
		func(ctx context.Context) (*api.Page[api.Campaign], error) {
			return c.backend.Campaigns.List(ctx, p)
		})
}

func (c *Console) getCampaign(ctx context.Context, subject, id string) (*api.Campaign, error) {
	k := keyOf(campaignsKey, "detail", id)
	return query.Fetch(ctx, c.queries.Cache(), subject, k,
		func(ctx context.Context) (*api.Campaign, error) {
			return c.backend.Campaigns.Get(ctx, id)
		})
}

func (c *Console) listCampaignDonations(ctx context.Context, subject, campaignID string, p api.DonationListParams) (*api.Page[api.DonationRequest], error) {
	p.ListParams = p.ListParams.Normalize()
	k := keyOf(donationsKey, "campaign", campaignID, p.Status, p.Page, p.Limit)
	return query.Fetch(ctx, c.queries.Cache(), subject, k,
		func(ctx context.Context) (*api.Page[api.DonationRequest], error) {
			return c.backend.Campaigns.ListDonationRequests(ctx, campaignID, p)
		})
}

func (c *Console) listDonations(ctx context.Context, subject string, p api.DonationListParams) (*api.Page[api.DonationRequest], error) {
	p.ListParams = p.ListParams.Normalize()
	k := keyOf(donationsKey, "list", p.Status, p.Page, p.Limit)
	return query.Fetch(ctx, c.queries.Cache(), subject, k,
		func(ctx context.Context) (*api.Page[api.DonationRequest], error) {
			return c.backend.Donations.List(ctx, p)
		})
}

func (c *Console) getDonation(ctx context.Context, subject, id string) (*api.DonationRequest, error) {
	k := keyOf(donationsKey, "detail", id)
	return query.Fetch(ctx, c.queries.Cache(), subject, k,
		func(ctx context.Context) (*api.DonationRequest, error) {
			return c.backend.Donations.Get(ctx, id)
		})
}

func (c *Console) listUnits(ctx context.Context, subject string, p api.BloodUnitListParams) (*api.Page[api.BloodUnit], error) {
	p.ListParams = p.ListParams.Normalize()
	k := keyOf(unitsKey, "list", p.Status, p.BloodGroup, p.Page, p.Limit)
	return query.Fetch(ctx, c.queries.Cache(), subject, k,
		func(ctx context.Context) (*api.Page[api.BloodUnit], error) {
			return c.backend.Inventory.List(ctx, p)
		})
}

func (c *Console) getUnit(ctx context.Context, subject, id string) (*api.BloodUnit, error) {
	k := keyOf(unitsKey, "detail", id)
	return query.Fetch(ctx, c.queries.Cache(), subject, k,
		func(ctx context.Context) (*api.BloodUnit, error) {
			return c.backend.Inventory.Get(ctx, id)
		})
}

func (c *Console) listActions(ctx context.Context, subject string, p api.ActionListParams) (*api.Page[api.BloodUnitAction], error) {
	p.ListParams = p.ListParams.Normalize()
	k := keyOf(actionsKey, "list", p.BloodUnitID, p.Page, p.Limit)
	return query.Fetch(ctx, c.queries.Cache(), subject, k,
		func(ctx context.Context) (*api.Page[api.BloodUnitAction], error) {
			return c.backend.Inventory.ListActions(ctx, p)
		})
}

func (c *Console) getAction(ctx context.Context, subject, id string) (*api.BloodUnitAction, error) {
	k := keyOf(actionsKey, "detail", id)
	return query.Fetch(ctx, c.queries.Cache(), subject, k,
		func(ctx context.Context) (*api.BloodUnitAction, error) {
			return c.backend.Inventory.GetAction(ctx, id)
		})
}

func (c *Console) me(ctx context.Context, subject string) (*api.StaffProfile, error) {
	k := keyOf(profileKey, "me")
	return query.Fetch(ctx, c.queries.Cache(), subject, k,
		func(ctx context.Context) (*api.StaffProfile, error) {
			return c.backend.Staff.Me(ctx)
		})
}
