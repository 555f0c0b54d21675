// ABOUTME: Store interface and data types for console persistence
// ABOUTME: Defines browser sessions and the console activity log

package store

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session doesn't exist or is expired.
var ErrSessionNotFound = errors.New("session not found")

// Session is a signed-in browser session. Token is the identity-provider
// JWT the session was created from; it is forwarded to the backend.
type Session struct {
	ID        string
	Subject   string
	Role      string
	Name      string
	Email     string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ActivityAction names a console mutation recorded in the activity log.
type ActivityAction string

const (
	ActivityCampaignCreate  ActivityAction = "campaign.create"
	ActivityCampaignUpdate  ActivityAction = "campaign.update"
	ActivityDonationStatus  ActivityAction = "donation.update_status"
	ActivityBloodUnitCreate ActivityAction = "blood_unit.create"
	ActivityBloodUnitUpdate ActivityAction = "blood_unit.update"
	ActivityProfileUpdate   ActivityAction = "profile.update"
	ActivitySignIn          ActivityAction = "session.sign_in"
	ActivitySignOut         ActivityAction = "session.sign_out"
)

// ActivityEntry is one recorded console action.
type ActivityEntry struct {
	ID         string         // UUID v4
	Actor      string         // subject of the signed-in user
	ActorName  string         // display name at the time of the action
	Action     ActivityAction // what was done
	TargetType string         // "campaign", "donation_request", "blood_unit", "profile", "session"
	TargetID   string
	Summary    string // one line shown on the dashboard
	Timestamp  time.Time
	Detail     map[string]any // request payload or other context
}

// ActivityFilter specifies filtering options for listing activity.
type ActivityFilter struct {
	Since      *time.Time
	Actor      *string
	Action     *ActivityAction
	TargetType *string
	TargetID   *string
	Limit      int // default 100, max 1000
}

// Store is the persistence used by the web console.
type Store interface {
	CreateSession(ctx context.Context, s *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)

	AppendActivity(ctx context.Context, e *ActivityEntry) error
	ListActivity(ctx context.Context, f ActivityFilter) ([]ActivityEntry, error)

	Ping(ctx context.Context) error
	Close() error
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)
