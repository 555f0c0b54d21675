// ABOUTME: Activity log entity store methods for console mutations
// ABOUTME: Records who changed which campaign, request, blood unit or profile

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendActivity appends a new entry to the activity log.
// Generates ID and Timestamp if not set.
func (s *SQLiteStore) AppendActivity(ctx context.Context, e *ActivityEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	var detailJSON *string
	if e.Detail != nil {
		data, err := json.Marshal(e.Detail)
		if err != nil {
			return fmt.Errorf("marshaling activity detail: %w", err)
		}
		str := string(data)
		detailJSON = &str
	}

	query := `
		INSERT INTO activity_log (activity_id, actor, actor_name, action, target_type, target_id, summary, ts, detail_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		e.ID,
		e.Actor,
		e.ActorName,
		string(e.Action),
		e.TargetType,
		e.TargetID,
		e.Summary,
		e.Timestamp.UTC().Format(activityTimeLayout),
		detailJSON,
	)
	if err != nil {
		return fmt.Errorf("inserting activity entry: %w", err)
	}

	s.logger.Debug("appended activity",
		"id", e.ID,
		"actor", e.Actor,
		"action", e.Action,
		"target", e.TargetType+"/"+e.TargetID,
	)
	return nil
}

// activityTimeLayout is fixed-width so ts sorts correctly as TEXT.
const activityTimeLayout = "2006-01-02T15:04:05.000000000Z"

// normalizeActivityLimit applies default (100) and cap (1000).
func normalizeActivityLimit(limit int) int {
	switch {
	case limit <= 0:
		return 100
	case limit > 1000:
		return 1000
	default:
		return limit
	}
}

func scanActivityEntry(scanner interface{ Scan(dest ...any) error }) (ActivityEntry, error) {
	var e ActivityEntry
	var action, ts string
	var detailJSON *string

	if err := scanner.Scan(
		&e.ID,
		&e.Actor,
		&e.ActorName,
		&action,
		&e.TargetType,
		&e.TargetID,
		&e.Summary,
		&ts,
		&detailJSON,
	); err != nil {
		return e, fmt.Errorf("scanning activity entry: %w", err)
	}

	e.Action = ActivityAction(action)
	var err error
	e.Timestamp, err = time.Parse(activityTimeLayout, ts)
	if err != nil {
		return e, fmt.Errorf("parsing timestamp: %w", err)
	}

	if detailJSON != nil {
		if err := json.Unmarshal([]byte(*detailJSON), &e.Detail); err != nil {
			return e, fmt.Errorf("unmarshaling detail: %w", err)
		}
	}
	return e, nil
}

const activityQuery = `
	SELECT activity_id, actor, actor_name, action, target_type, target_id, summary, ts, detail_json
	FROM activity_log
	WHERE (? IS NULL OR ts >= ?)
	  AND (? IS NULL OR actor = ?)
	  AND (? IS NULL OR action = ?)
	  AND (? IS NULL OR target_type = ?)
	  AND (? IS NULL OR target_id = ?)
	ORDER BY ts DESC
	LIMIT ?
`

// ListActivity returns entries matching the filter, newest first.
func (s *SQLiteStore) ListActivity(ctx context.Context, f ActivityFilter) ([]ActivityEntry, error) {
	limit := normalizeActivityLimit(f.Limit)

	var since, action *string
	if f.Since != nil {
		str := f.Since.UTC().Format(activityTimeLayout)
		since = &str
	}
	if f.Action != nil {
		str := string(*f.Action)
		action = &str
	}

	rows, err := s.db.QueryContext(ctx, activityQuery,
		since, since,
		f.Actor, f.Actor,
		action, action,
		f.TargetType, f.TargetType,
		f.TargetID, f.TargetID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying activity log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []ActivityEntry
	for rows.Next() {
		e, err := scanActivityEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating activity entries: %w", err)
	}

	if entries == nil {
		entries = []ActivityEntry{}
	}
	return entries, nil
}
