// ABOUTME: Blood inventory endpoints of the BloodLink API
// ABOUTME: Blood units (list, get, create, update) and their read-only action history

package api

import "context"

// InventoryService maps /inventory.
type InventoryService struct {
	c *Client
}

// List returns one page of blood units.
func (s *InventoryService) List(ctx context.Context, p BloodUnitListParams) (*Page[BloodUnit], error) {
	var page Page[BloodUnit]
	if err := s.c.get(ctx, "/inventory/blood-units", p.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns a single blood unit.
func (s *InventoryService) Get(ctx context.Context, id string) (*BloodUnit, error) {
	var unit BloodUnit
	if err := s.c.get(ctx, "/inventory/blood-units/"+escape(id), nil, &unit); err != nil {
		return nil, err
	}
	return &unit, nil
}

// Create registers a new blood unit for a member.
func (s *InventoryService) Create(ctx context.Context, in BloodUnitInput) (*BloodUnit, error) {
	var unit BloodUnit
	if err := s.c.post(ctx, "/inventory/blood-units", in, &unit); err != nil {
		return nil, err
	}
	return &unit, nil
}

// Update patches volume, expiry or status of a blood unit.
func (s *InventoryService) Update(ctx context.Context, id string, u BloodUnitUpdate) (*BloodUnit, error) {
	var unit BloodUnit
	if err := s.c.patch(ctx, "/inventory/blood-units/"+escape(id), u, &unit); err != nil {
		return nil, err
	}
	return &unit, nil
}

// ListActions returns one page of the blood unit action history.
func (s *InventoryService) ListActions(ctx context.Context, p ActionListParams) (*Page[BloodUnitAction], error) {
	var page Page[BloodUnitAction]
	if err := s.c.get(ctx, "/inventory/blood-unit-actions", p.values(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetAction returns a single blood unit action.
func (s *InventoryService) GetAction(ctx context.Context, id string) (*BloodUnitAction, error) {
	var action BloodUnitAction
	if err := s.c.get(ctx, "/inventory/blood-unit-actions/"+escape(id), nil, &action); err != nil {
		return nil, err
	}
	return &action, nil
}
