package revenue

import (
	"context"
	"database/sql"
	"fmt"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revenues (id, amount, category, description, month, year, collected_at, collected_by_id)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''))
	`, r.ID, r.Amount, r.Category, r.Description, r.Month, r.Year, r.CollectedAt, r.CollectedByID)
	if err != nil {
		return fmt.Errorf("insert revenue: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, amount, category, COALESCE(description, ''), month, year, collected_at, COALESCE(collected_by_id, '')
		FROM revenues
		ORDER BY collected_at DESC, id`
	args := []any{}
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $1`
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query revenues: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Amount, &r.Category, &r.Description, &r.Month, &r.Year,
			&r.CollectedAt, &r.CollectedByID); err != nil {
			return nil, fmt.Errorf("scan revenue: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *PostgresStore) SumAll(ctx context.Context) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM revenues`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum revenues: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) SumForMonth(ctx context.Context, month, year int) (float64, error) {
	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM revenues WHERE month = $1 AND year = $2
	`, month, year).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum revenues for month: %w", err)
	}
	return total, nil
}
