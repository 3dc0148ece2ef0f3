package notice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"panchayat/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const noticeColumns = `id, title, content, notice_type, priority, is_published, is_global,
	expiry_date, COALESCE(created_by_id, ''), created_at`

func (s *PostgresStore) Create(ctx context.Context, n Notice) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notices
			(id, title, content, notice_type, priority, is_published, is_global, expiry_date, created_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
	`, n.ID, n.Title, n.Content, n.NoticeType, n.Priority, n.IsPublished, n.IsGlobal,
		n.ExpiryDate, n.CreatedByID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notice: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Notice, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+noticeColumns+` FROM notices WHERE id = $1`, id)
	return scanNotice(row)
}

func (s *PostgresStore) Update(ctx context.Context, n Notice) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE notices
		SET title = $2, content = $3, notice_type = $4, priority = $5,
			is_published = $6, is_global = $7, expiry_date = $8
		WHERE id = $1
	`, n.ID, n.Title, n.Content, n.NoticeType, n.Priority, n.IsPublished, n.IsGlobal, n.ExpiryDate)
	if err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) List(ctx context.Context, publishedOnly bool) ([]Notice, error) {
	query := `SELECT ` + noticeColumns + ` FROM notices`
	if publishedOnly {
		query += ` WHERE is_published = TRUE`
	}
	query += ` ORDER BY created_at DESC, id`
	return s.queryNotices(ctx, query)
}

func (s *PostgresStore) Search(ctx context.Context, term string, limit int) ([]Notice, error) {
	pattern := "%" + term + "%"
	return s.queryNotices(ctx, `
		SELECT `+noticeColumns+` FROM notices
		WHERE title ILIKE $1 OR content ILIKE $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, pattern, limit)
}

func (s *PostgresStore) queryNotices(ctx context.Context, query string, args ...any) ([]Notice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notices: %w", err)
	}
	defer rows.Close()

	var notices []Notice
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, err
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotice(row rowScanner) (Notice, error) {
	var n Notice
	var expiry sql.NullTime
	err := row.Scan(&n.ID, &n.Title, &n.Content, &n.NoticeType, &n.Priority,
		&n.IsPublished, &n.IsGlobal, &expiry, &n.CreatedByID, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Notice{}, sentinel.ErrNotFound
		}
		return Notice{}, fmt.Errorf("scan notice: %w", err)
	}
	if expiry.Valid {
		n.ExpiryDate = &expiry.Time
	}
	return n, nil
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
