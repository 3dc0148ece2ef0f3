package scheme

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"panchayat/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const schemeColumns = `id, scheme_name, description, is_active, allocated_funds, utilized_funds,
	total_applications, approved_applications, COALESCE(created_by_id, ''), created_at`

func (s *PostgresStore) Create(ctx context.Context, scheme Scheme) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schemes
			(id, scheme_name, description, is_active, allocated_funds, utilized_funds,
			 total_applications, approved_applications, created_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
	`, scheme.ID, scheme.SchemeName, scheme.Description, scheme.IsActive, scheme.AllocatedFunds,
		scheme.UtilizedFunds, scheme.TotalApplications, scheme.ApprovedApplications,
		scheme.CreatedByID, scheme.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert scheme: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Scheme, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+schemeColumns+` FROM schemes WHERE id = $1`, id)
	return scanScheme(row)
}

func (s *PostgresStore) Update(ctx context.Context, scheme Scheme) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE schemes
		SET scheme_name = $2, description = $3, is_active = $4, allocated_funds = $5,
			utilized_funds = $6, total_applications = $7, approved_applications = $8
		WHERE id = $1
	`, scheme.ID, scheme.SchemeName, scheme.Description, scheme.IsActive, scheme.AllocatedFunds,
		scheme.UtilizedFunds, scheme.TotalApplications, scheme.ApprovedApplications)
	if err != nil {
		return fmt.Errorf("update scheme: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM schemes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scheme: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) List(ctx context.Context) ([]Scheme, error) {
	return s.querySchemes(ctx, `SELECT `+schemeColumns+` FROM schemes ORDER BY created_at DESC, id`)
}

func (s *PostgresStore) CreateApplication(ctx context.Context, a Application) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheme_applications (id, scheme_id, citizen_id, status, notes, applied_at, reviewed_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
	`, a.ID, a.SchemeID, a.CitizenID, a.Status, a.Notes, a.AppliedAt, a.ReviewedAt)
	if err != nil {
		return fmt.Errorf("insert scheme application: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListApplications(ctx context.Context, schemeID string) ([]Application, error) {
	query := `
		SELECT id, scheme_id, citizen_id, status, COALESCE(notes, ''), applied_at, reviewed_at
		FROM scheme_applications`
	args := []any{}
	if schemeID != "" {
		args = append(args, schemeID)
		query += ` WHERE scheme_id = $1`
	}
	query += ` ORDER BY applied_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scheme applications: %w", err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var a Application
		var reviewedAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.SchemeID, &a.CitizenID, &a.Status, &a.Notes, &a.AppliedAt, &reviewedAt); err != nil {
			return nil, fmt.Errorf("scan scheme application: %w", err)
		}
		if reviewedAt.Valid {
			a.ReviewedAt = &reviewedAt.Time
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (s *PostgresStore) FundTotals(ctx context.Context) (FundTotals, error) {
	var totals FundTotals
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(allocated_funds), 0), COALESCE(SUM(utilized_funds), 0) FROM schemes
	`).Scan(&totals.Allocated, &totals.Utilized)
	if err != nil {
		return FundTotals{}, fmt.Errorf("sum scheme funds: %w", err)
	}
	return totals, nil
}

func (s *PostgresStore) CountApplicationsByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM scheme_applications GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count applications by status: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (s *PostgresStore) CountApprovedReviewedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM scheme_applications
		WHERE status = 'approved' AND reviewed_at >= $1 AND reviewed_at < $2
	`, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count approved applications in window: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CountApplicationsAppliedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM scheme_applications
		WHERE applied_at >= $1 AND applied_at < $2
	`, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count applications in window: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CountApprovedAppliedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM scheme_applications
		WHERE status = 'approved' AND applied_at >= $1 AND applied_at < $2
	`, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count approved applications in window: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Search(ctx context.Context, term string, limit int) ([]Scheme, error) {
	pattern := "%" + term + "%"
	return s.querySchemes(ctx, `
		SELECT `+schemeColumns+` FROM schemes
		WHERE scheme_name ILIKE $1 OR description ILIKE $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, pattern, limit)
}

func (s *PostgresStore) querySchemes(ctx context.Context, query string, args ...any) ([]Scheme, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query schemes: %w", err)
	}
	defer rows.Close()

	var schemes []Scheme
	for rows.Next() {
		scheme, err := scanScheme(rows)
		if err != nil {
			return nil, err
		}
		schemes = append(schemes, scheme)
	}
	return schemes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheme(row rowScanner) (Scheme, error) {
	var scheme Scheme
	err := row.Scan(&scheme.ID, &scheme.SchemeName, &scheme.Description, &scheme.IsActive,
		&scheme.AllocatedFunds, &scheme.UtilizedFunds, &scheme.TotalApplications,
		&scheme.ApprovedApplications, &scheme.CreatedByID, &scheme.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Scheme{}, sentinel.ErrNotFound
		}
		return Scheme{}, fmt.Errorf("scan scheme: %w", err)
	}
	return scheme, nil
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
