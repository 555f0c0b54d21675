// ABOUTME: Staff profile endpoints of the BloodLink API
// ABOUTME: Reads and patches the signed-in staff member via /staffs/me

package api

import "context"

// StaffService maps /staffs.
type StaffService struct {
	c *Client
}

// Me returns the profile of the caller.
func (s *StaffService) Me(ctx context.Context) (*StaffProfile, error) {
	var profile StaffProfile
	if err := s.c.get(ctx, "/staffs/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateMe patches the caller's profile and returns the stored result.
func (s *StaffService) UpdateMe(ctx context.Context, p ProfilePatch) (*StaffProfile, error) {
	var profile StaffProfile
	if err := s.c.patch(ctx, "/staffs/me", p, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
