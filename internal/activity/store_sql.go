// Package activity is the append-only audit feed: who did what, when.
package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

type Entry struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id,omitempty"`
	UserName   string          `json:"user_name,omitempty"`
	Action     string          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   int64           `json:"entity_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

type SQLStore struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db, Now: time.Now}
}

func (s *SQLStore) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Log appends one entry. Details may be nil.
func (s *SQLStore) Log(ctx context.Context, e *Entry) error {
	var userID any
	if e.UserID != 0 {
		userID = e.UserID
	}
	var entityID any
	if e.EntityID != 0 {
		entityID = e.EntityID
	}
	var details any
	if len(e.Details) > 0 {
		details = string(e.Details)
	}
	e.CreatedAt = s.now()
	return s.DB.QueryRowContext(ctx, `
		INSERT INTO activity_log (user_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`,
		userID, e.Action, e.EntityType, entityID, details, e.CreatedAt).Scan(&e.ID)
}

// Recent returns the latest n entries with user names joined in.
func (s *SQLStore) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 || n > 200 {
		n = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT a.id, COALESCE(a.user_id, 0), COALESCE(u.name, ''),
		       a.action, a.entity_type, COALESCE(a.entity_id, 0),
		       COALESCE(a.details, ''), a.created_at
		FROM activity_log a
		LEFT JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		var details string
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.Action,
			&e.EntityType, &e.EntityID, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if details != "" {
			e.Details = json.RawMessage(details)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
