package agenda

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clubdesk/pkg/platform/sentinel"
)

// PostgresStore persists events in the agenda table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, event *Event) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO agenda (title, event_date, location)
		VALUES ($1, $2, $3)
		RETURNING event_id
	`, event.Title, event.Date, event.Location).Scan(&event.ID)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, event *Event) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE agenda SET title = $2, event_date = $3, location = $4
		WHERE event_id = $1
	`, event.ID, event.Title, event.Date, event.Location)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM agenda WHERE event_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListUpcoming(ctx context.Context, from time.Time) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, title, event_date, location
		FROM agenda
		WHERE event_date >= $1
		ORDER BY event_date ASC, event_id ASC
	`, from)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.Location); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
