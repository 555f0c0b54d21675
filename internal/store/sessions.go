// ABOUTME: Browser session persistence for the console
// ABOUTME: Sessions carry the signed-in identity and expire server-side

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateSession stores a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *Session) error {
	query := `
		INSERT INTO sessions (id, subject, role, name, email, token, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		sess.ID,
		sess.Subject,
		sess.Role,
		sess.Name,
		sess.Email,
		sess.Token,
		sess.CreatedAt.UTC().Format(time.RFC3339),
		sess.ExpiresAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	s.logger.Debug("created session", "id", sess.ID, "subject", sess.Subject)
	return nil
}

// GetSession retrieves a valid (non-expired) session.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	query := `
		SELECT id, subject, role, name, email, token, created_at, expires_at
		FROM sessions
		WHERE id = ? AND expires_at > ?
	`

	var sess Session
	var createdAt, expiresAt string
	err := s.db.QueryRowContext(ctx, query, id, time.Now().UTC().Format(time.RFC3339)).Scan(
		&sess.ID,
		&sess.Subject,
		&sess.Role,
		&sess.Name,
		&sess.Email,
		&sess.Token,
		&createdAt,
		&expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}

	if sess.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if sess.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt); err != nil {
		return nil, fmt.Errorf("parsing expires_at: %w", err)
	}
	return &sess, nil
}

// DeleteSession removes a session. Deleting an unknown session is not an error.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes all expired sessions and reports how many.
func (s *SQLiteStore) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Debug("deleted expired sessions", "count", n)
	}
	return n, nil
}
