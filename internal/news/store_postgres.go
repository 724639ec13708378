package news

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clubdesk/pkg/platform/sentinel"
)

// PostgresStore persists news posts in the news table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const newsColumns = `n.id, n.title, COALESCE(n.content, ''), COALESCE(n.image_path, ''),
	COALESCE(n.download_path, ''), n.user_id, COALESCE(u.fullname, ''), n.is_active,
	n.date, n.created_at`

func (s *PostgresStore) Insert(ctx context.Context, item *Item) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO news (title, content, image_path, download_path, user_id, is_active, date)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)
		RETURNING id, created_at
	`, item.Title, item.Content, item.ImagePath, item.DownloadPath,
		item.AuthorID, item.Active, item.Date).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert news: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+newsColumns+`
		FROM news n
		LEFT JOIN users u ON u.user_id = n.user_id
		WHERE n.id = $1
	`, id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find news: %w", err)
	}
	return item, nil
}

const newsListFilter = `
	($1 = '' OR n.title ILIKE '%' || $1 || '%')
	AND (NOT $2::boolean OR n.is_active)`

func (s *PostgresStore) List(ctx context.Context, params ListParams) ([]*Item, int, error) {
	params.Normalize()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+newsColumns+`
		FROM news n
		LEFT JOIN users u ON u.user_id = n.user_id
		WHERE `+newsListFilter+`
		ORDER BY n.date DESC, n.id DESC
		LIMIT $3 OFFSET $4
	`, params.Search, params.OnlyActive, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan news: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM news n WHERE `+newsListFilter,
		params.Search, params.OnlyActive).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count news: %w", err)
	}
	return items, total, nil
}

func (s *PostgresStore) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE news SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("toggle news: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("toggle news: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	var authorID sql.NullInt64
	err := row.Scan(&item.ID, &item.Title, &item.Content, &item.ImagePath,
		&item.DownloadPath, &authorID, &item.AuthorName, &item.Active,
		&item.Date, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	if authorID.Valid {
		id := authorID.Int64
		item.AuthorID = &id
	}
	return &item, nil
}
