package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"clubdesk/internal/member/models"
	"clubdesk/pkg/platform/sentinel"
	"clubdesk/pkg/requestcontext"
)

// Postgres persists members in the users table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const memberColumns = `user_id, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(username, ''),
	fullname, password_hash, user_type, is_subscribed_to_newsletter, has_fees_paid,
	fee_expiration_date, birthdate, COALESCE(avatar, ''), COALESCE(reset_password_token, ''),
	reset_password_expires, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, m *models.Member) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (email, phone, username, fullname, password_hash, user_type,
			is_subscribed_to_newsletter, has_fees_paid, fee_expiration_date, birthdate, avatar)
		VALUES (NULLIF($1, ''), NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''))
		RETURNING user_id, created_at, updated_at
	`, m.Email, m.Phone, m.Username, m.FullName, m.PasswordHash, m.Role,
		m.NewsletterSubscribed, m.FeesPaid, m.FeeExpiration, m.Birthdate, m.Avatar).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id int64) (*models.Member, error) {
	return s.findBy(ctx, "user_id = $1", id)
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Member, error) {
	return s.findBy(ctx, "lower(email) = lower($1)", email)
}

func (s *Postgres) FindByPhone(ctx context.Context, phone string) (*models.Member, error) {
	return s.findBy(ctx, "phone = $1", phone)
}

func (s *Postgres) FindByResetToken(ctx context.Context, token string) (*models.Member, error) {
	return s.findBy(ctx, "reset_password_token = $1", token)
}

func (s *Postgres) findBy(ctx context.Context, where string, arg any) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM users WHERE `+where, arg)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return m, nil
}

func (s *Postgres) List(ctx context.Context, params models.ListParams) ([]*models.Member, int, error) {
	params.Normalize()

	// OrderBy/Order come from a whitelist in Normalize, never raw input.
	query := fmt.Sprintf(`SELECT `+memberColumns+` FROM users ORDER BY %s %s LIMIT $1 OFFSET $2`,
		params.OrderBy, params.Order)

	rows, err := s.db.QueryContext(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	total, err := s.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (s *Postgres) Update(ctx context.Context, m *models.Member) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET email = NULLIF($2, ''), phone = NULLIF($3, ''), username = NULLIF($4, ''),
			fullname = $5, password_hash = $6, user_type = $7,
			is_subscribed_to_newsletter = $8, has_fees_paid = $9, fee_expiration_date = $10,
			birthdate = $11, avatar = NULLIF($12, ''),
			reset_password_token = NULLIF($13, ''), reset_password_expires = $14,
			updated_at = now()
		WHERE user_id = $1
	`, m.ID, m.Email, m.Phone, m.Username, m.FullName, m.PasswordHash, m.Role,
		m.NewsletterSubscribed, m.FeesPaid, m.FeeExpiration, m.Birthdate, m.Avatar,
		m.ResetToken, m.ResetTokenExpires)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("update member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Delete removes the member row; owned entries go with it via the
// ON DELETE CASCADE foreign key.
func (s *Postgres) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*models.Member, error) {
	var m models.Member
	var role string
	var feeExp, birth, resetExp sql.NullTime
	err := row.Scan(&m.ID, &m.Email, &m.Phone, &m.Username, &m.FullName, &m.PasswordHash,
		&role, &m.NewsletterSubscribed, &m.FeesPaid, &feeExp, &birth, &m.Avatar,
		&m.ResetToken, &resetExp, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Role = requestcontext.Role(role)
	if feeExp.Valid {
		t := feeExp.Time
		m.FeeExpiration = &t
	}
	if birth.Valid {
		t := birth.Time
		m.Birthdate = &t
	}
	if resetExp.Valid {
		t := resetExp.Time
		m.ResetTokenExpires = &t
	}
	return &m, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
