package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	audit "anchorage/pkg/platform/audit"

	"github.com/google/uuid"
)

// Store implements audit.Store on PostgreSQL. Events are append-only;
// the table carries one row per event with the category denormalized for
// retention jobs.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Append writes an audit event to the audit_events table.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	// Derive the category from the action when the emitter left it unset.
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	query := `
		INSERT INTO audit_events (
			id, category, timestamp, action, scope, domain, outcome,
			fingerprint, subject, match_count, reason,
			request_id, actor_id, client_ip, device
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		string(category),
		timestamp,
		event.Action,
		event.Scope,
		event.Domain,
		event.Outcome,
		event.Fingerprint,
		event.Subject,
		event.Count,
		event.Reason,
		event.RequestID,
		event.ActorID,
		event.ClientIP,
		event.Device,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns the N most recent events, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, action, scope, domain, outcome,
			   fingerprint, subject, match_count, reason,
			   request_id, actor_id, client_ip, device
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// ListByAction returns events for one action, newest first.
func (s *Store) ListByAction(ctx context.Context, action string, limit int) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, action, scope, domain, outcome,
			   fingerprint, subject, match_count, reason,
			   request_id, actor_id, client_ip, device
		FROM audit_events
		WHERE action = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, action, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// scanEvents scans multiple rows into an audit.Event slice.
func (s *Store) scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			category string
			event    audit.Event
		)

		err := rows.Scan(
			&category,
			&event.Timestamp,
			&event.Action,
			&event.Scope,
			&event.Domain,
			&event.Outcome,
			&event.Fingerprint,
			&event.Subject,
			&event.Count,
			&event.Reason,
			&event.RequestID,
			&event.ActorID,
			&event.ClientIP,
			&event.Device,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.Category = audit.EventCategory(category)
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}

	return events, nil
}
