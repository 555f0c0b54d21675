// ABOUTME: Tests for the SQLite store
// ABOUTME: Covers schema setup, sessions, expiry and the activity log

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestNewSQLiteStore_CreatesParentDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "console.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Ping(context.Background()))
}

func TestNewSQLiteStore_ReopenIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "console.db")

	first, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.AppendActivity(context.Background(), &ActivityEntry{
		Actor: "staff-1", Action: ActivitySignIn, TargetType: "session", Summary: "signed in",
	}))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer second.Close()

	entries, err := second.ListActivity(context.Background(), ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "signed in", entries[0].Summary)
}

func TestNewSQLiteStore_InMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.CreateSession(ctx, &Session{
		ID: "s1", Subject: "staff-1", Role: "staff", Token: "tok",
		CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour),
	}))
	_, err = store.GetSession(ctx, "s1")
	assert.NoError(t, err)
}

func TestSessions_CreateGetDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	sess := &Session{
		ID:        "session-abc",
		Subject:   "staff-1",
		Role:      "staff",
		Name:      "Linh Tran",
		Email:     "linh@example.org",
		Token:     "jwt-token",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, store.CreateSession(ctx, sess))

	got, err := store.GetSession(ctx, "session-abc")
	require.NoError(t, err)
	assert.Equal(t, "staff-1", got.Subject)
	assert.Equal(t, "staff", got.Role)
	assert.Equal(t, "Linh Tran", got.Name)
	assert.Equal(t, "jwt-token", got.Token)
	assert.WithinDuration(t, sess.ExpiresAt, got.ExpiresAt, time.Second)

	require.NoError(t, store.DeleteSession(ctx, "session-abc"))
	_, err = store.GetSession(ctx, "session-abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// deleting twice is fine
	assert.NoError(t, store.DeleteSession(ctx, "session-abc"))
}

func TestSessions_ExpiredNotReturned(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateSession(ctx, &Session{
		ID: "old", Subject: "staff-1", Role: "staff", Token: "t",
		CreatedAt: time.Now().Add(-2 * time.Hour), ExpiresAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, store.CreateSession(ctx, &Session{
		ID: "live", Subject: "staff-2", Role: "staff", Token: "t",
		CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour),
	}))

	_, err := store.GetSession(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	n, err := store.DeleteExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.GetSession(ctx, "live")
	assert.NoError(t, err)
}

func TestSessions_DuplicateID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	sess := &Session{ID: "dup", Subject: "s", Role: "staff", Token: "t", CreatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.CreateSession(ctx, sess))
	assert.Error(t, store.CreateSession(ctx, sess))
}

func TestActivity_Append(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	entry := &ActivityEntry{
		Actor:      "staff-1",
		ActorName:  "Linh Tran",
		Action:     ActivityCampaignUpdate,
		TargetType: "campaign",
		TargetID:   "c1",
		Summary:    "Updated campaign Blood Drive",
		Detail:     map[string]any{"limitDonation": 50},
	}
	require.NoError(t, store.AppendActivity(ctx, entry))

	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())

	entries, err := store.ListActivity(ctx, ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ActivityCampaignUpdate, entries[0].Action)
	assert.Equal(t, "Linh Tran", entries[0].ActorName)
	assert.Equal(t, float64(50), entries[0].Detail["limitDonation"])
}

func TestActivity_ListNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	actions := []ActivityAction{ActivityCampaignCreate, ActivityDonationStatus, ActivityBloodUnitUpdate}
	for i, action := range actions {
		require.NoError(t, store.AppendActivity(ctx, &ActivityEntry{
			Actor:      "staff-1",
			Action:     action,
			TargetType: "x",
			Timestamp:  base.Add(time.Duration(i) * 100 * time.Millisecond),
		}))
	}

	entries, err := store.ListActivity(ctx, ActivityFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, ActivityBloodUnitUpdate, entries[0].Action)
	assert.Equal(t, ActivityCampaignCreate, entries[2].Action)
}

func TestActivity_ListFilters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	seed := []ActivityEntry{
		{Actor: "staff-1", Action: ActivityCampaignUpdate, TargetType: "campaign", TargetID: "c1", Timestamp: base},
		{Actor: "staff-2", Action: ActivityCampaignUpdate, TargetType: "campaign", TargetID: "c2", Timestamp: base.Add(time.Minute)},
		{Actor: "staff-1", Action: ActivityBloodUnitCreate, TargetType: "blood_unit", TargetID: "u1", Timestamp: base.Add(2 * time.Minute)},
	}
	for i := range seed {
		require.NoError(t, store.AppendActivity(ctx, &seed[i]))
	}

	actor := "staff-1"
	entries, err := store.ListActivity(ctx, ActivityFilter{Actor: &actor})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	action := ActivityCampaignUpdate
	entries, err = store.ListActivity(ctx, ActivityFilter{Action: &action})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	targetType, targetID := "campaign", "c2"
	entries, err = store.ListActivity(ctx, ActivityFilter{TargetType: &targetType, TargetID: &targetID})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "staff-2", entries[0].Actor)

	since := base.Add(90 * time.Second)
	entries, err = store.ListActivity(ctx, ActivityFilter{Since: &since})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "u1", entries[0].TargetID)

	entries, err = store.ListActivity(ctx, ActivityFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestActivity_ListEmpty(t *testing.T) {
	store := setupTestStore(t)

	entries, err := store.ListActivity(context.Background(), ActivityFilter{})
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestNormalizeActivityLimit(t *testing.T) {
	assert.Equal(t, 100, normalizeActivityLimit(0))
	assert.Equal(t, 100, normalizeActivityLimit(-1))
	assert.Equal(t, 50, normalizeActivityLimit(50))
	assert.Equal(t, 1000, normalizeActivityLimit(5000))
}

func TestRunMigrations_AddsSummaryToOldSchema(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, `ALTER TABLE activity_log DROP COLUMN summary`)
	require.NoError(t, err)

	require.NoError(t, store.runMigrations())

	var exists int
	err = store.db.QueryRowContext(ctx, `SELECT 1 FROM pragma_table_info('activity_log') WHERE name = 'summary'`).Scan(&exists)
	require.NoError(t, err)
	assert.Equal(t, 1, exists)
}
