// ABOUTME: Campaign endpoints of the BloodLink API
// ABOUTME: List, get, create, update, delete and per-campaign donation requests

package api

import "context"

// CampaignService maps /campaigns.
type CampaignService struct {
	c *Client
}

// List returns one page of campaigns.
func (s *CampaignService) List(ctx context.Context, p ListParams) (*Page[Campaign], error) {
	var page Page[Campaign]
	if err := s.c.get(ctx, "/campaigns", p.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns a single campaign.
func (s *CampaignService) Get(ctx context.Context, id string) (*Campaign, error) {
	var campaign Campaign
	if err := s.c.get(ctx, "/campaigns/"+escape(id), nil, &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Create creates a campaign and returns the stored record.
func (s *CampaignService) Create(ctx context.Context, in CampaignInput) (*Campaign, error) {
	var campaign Campaign
	if err := s.c.post(ctx, "/campaigns", in, &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Update patches a campaign.
func (s *CampaignService) Update(ctx context.Context, id string, in CampaignInput) (*Campaign, error) {
	var campaign Campaign
	if err := s.c.patch(ctx, "/campaigns/"+escape(id), in, &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Delete removes a campaign. Nothing in the console UI calls this.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	return s.c.delete(ctx, "/campaigns/"+escape(id))
}

// ListDonationRequests returns the donation requests made against one campaign.
func (s *CampaignService) ListDonationRequests(ctx context.Context, campaignID string, p DonationListParams) (*Page[DonationRequest], error) {
	var page Page[DonationRequest]
	if err := s.c.get(ctx, "/campaigns/"+escape(campaignID)+"/donation-requests", p.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}
