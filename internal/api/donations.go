// ABOUTME: Donation request endpoints of the BloodLink API
// ABOUTME: List with status filter, get by id and status transitions

package api

import "context"

// DonationService maps /donations/requests.
type DonationService struct {
	c *Client
}

// List returns one page of donation requests, optionally filtered by status.
func (s *DonationService) List(ctx context.Context, p DonationListParams) (*Page[DonationRequest], error) {
	var page Page[DonationRequest]
	if err := s.c.get(ctx, "/donations/requests", p.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns a single donation request.
func (s *DonationService) Get(ctx context.Context, id string) (*DonationRequest, error) {
	var req DonationRequest
	if err := s.c.get(ctx, "/donations/requests/"+escape(id), nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// UpdateStatus moves a donation request to a new status.
func (s *DonationService) UpdateStatus(ctx context.Context, id string, u StatusUpdate) error {
	return s.c.patch(ctx, "/donations/requests/"+escape(id)+"/status", u, nil)
}
