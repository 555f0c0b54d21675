// Package store provides local persistence for the console using SQLite.
//
// The BloodLink backend owns every campaign, donation request and blood unit.
// This store only keeps what the console itself needs:
//
//   - Session: a signed-in browser session with the identity token it was
//     created from
//   - ActivityEntry: a record of each mutation made through the console,
//     shown on the admin dashboard
//
// # SQLite Configuration
//
// The store uses modernc.org/sqlite (no cgo) with WAL mode:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// Timestamps are stored as UTC TEXT. Session lookups compare expires_at
// against the current time, so expired sessions are never returned even
// before DeleteExpiredSessions has removed them.
//
// # Errors
//
//   - ErrSessionNotFound: unknown or expired session
package store
