package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"clubdesk/internal/access/models"
	"clubdesk/pkg/platform/sentinel"
)

// Postgres persists entries in the entries table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Insert records an entry unless a recent one exists for the member. The
// advisory lock serializes concurrent check-ins per member; under READ
// COMMITTED two plain guarded inserts could each miss the other's
// uncommitted row.
func (s *Postgres) Insert(ctx context.Context, memberID int64, at time.Time, window time.Duration) (*models.Entry, error) {
	cutoff := at.Add(-window)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, memberID); err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	entry := &models.Entry{MemberID: memberID, EntryTime: at}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO entries (user_id, entry_time)
		SELECT $1, $2
		WHERE NOT EXISTS (
			SELECT 1 FROM entries WHERE user_id = $1 AND entry_time >= $3
		)
		RETURNING entry_id
	`, memberID, at, cutoff).Scan(&entry.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	return entry, nil
}

// PendingIDs returns the subset of ids that exist and are not validated.
func (s *Postgres) PendingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry_id FROM entries
		WHERE entry_id = ANY($1) AND validated_by IS NULL
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("pending entries: %w", err)
	}
	defer rows.Close()

	var pending []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan entry id: %w", err)
		}
		pending = append(pending, id)
	}
	return pending, rows.Err()
}

// ValidatePending stamps validator and time on every still-pending entry
// among ids. One conditional statement, so a row can only be won once.
func (s *Postgres) ValidatePending(ctx context.Context, ids []int64, adminID int64, at time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE entries
		SET validated_by = $2, validated_at = $3
		WHERE entry_id = ANY($1) AND validated_by IS NULL
	`, pq.Array(ids), adminID, at)
	if err != nil {
		return 0, fmt.Errorf("validate entries: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("validate entries: %w", err)
	}
	return int(affected), nil
}

func (s *Postgres) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM entries WHERE entry_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("entry exists: %w", err)
	}
	return exists, nil
}

func (s *Postgres) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE entry_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// DeleteByMember exists for parity with the memory store. The users FK
// cascades entry deletion, so this usually affects zero rows.
func (s *Postgres) DeleteByMember(ctx context.Context, memberID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entries WHERE user_id = $1`, memberID); err != nil {
		return fmt.Errorf("delete member entries: %w", err)
	}
	return nil
}

// Count returns the number of entries, optionally filtered by validation
// state.
func (s *Postgres) Count(ctx context.Context, validated *bool) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM entries
		WHERE $1::boolean IS NULL OR (validated_by IS NOT NULL) = $1
	`, validated).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

const entryListFilter = `
	($1 = '' OR u.email ILIKE '%' || $1 || '%' OR u.phone ILIKE '%' || $1 || '%'
		OR u.username ILIKE '%' || $1 || '%' OR u.fullname ILIKE '%' || $1 || '%')
	AND ($2::boolean IS NULL OR (e.validated_by IS NOT NULL) = $2)`

var entryOrderColumns = map[string]string{
	"entry_id":   "e.entry_id",
	"entry_time": "e.entry_time",
	"fullname":   "u.fullname",
}

func (s *Postgres) List(ctx context.Context, params models.EntryListParams) ([]*models.EntryDetails, int, error) {
	params.Normalize()

	// OrderBy/Order come from a whitelist in Normalize, never raw input.
	query := `
		SELECT e.entry_id, e.user_id, e.entry_time, e.validated_by, e.validated_at,
			u.fullname, COALESCE(u.email, ''), COALESCE(u.phone, ''), COALESCE(u.username, ''),
			COALESCE(v.fullname, '')
		FROM entries e
		JOIN users u ON u.user_id = e.user_id
		LEFT JOIN users v ON v.user_id = e.validated_by
		WHERE ` + entryListFilter + `
		ORDER BY ` + entryOrderColumns[params.OrderBy] + ` ` + params.Order + ` LIMIT $3 OFFSET $4`

	rows, err := s.db.QueryContext(ctx, query, params.Search, params.Validated, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.EntryDetails
	for rows.Next() {
		var d models.EntryDetails
		var validatedBy sql.NullInt64
		var validatedAt sql.NullTime
		err := rows.Scan(&d.ID, &d.MemberID, &d.EntryTime, &validatedBy, &validatedAt,
			&d.MemberName, &d.MemberEmail, &d.MemberPhone, &d.MemberUsername, &d.ValidatorName)
		if err != nil {
			return nil, 0, fmt.Errorf("scan entry: %w", err)
		}
		if validatedBy.Valid {
			v := validatedBy.Int64
			d.ValidatedBy = &v
		}
		if validatedAt.Valid {
			t := validatedAt.Time
			d.ValidatedAt = &t
		}
		entries = append(entries, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM entries e
		JOIN users u ON u.user_id = e.user_id
		WHERE `+entryListFilter,
		params.Search, params.Validated).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}
	return entries, total, nil
}
