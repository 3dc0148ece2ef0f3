package registration

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

const requestColumns = `id, full_name, date_of_birth, COALESCE(gender, ''), aadhaar_number, email,
	COALESCE(mobile, ''), COALESCE(address, ''), COALESCE(village, ''), COALESCE(pincode, ''),
	password_hash, status, COALESCE(rejection_reason, ''), submitted_at, reviewed_at, COALESCE(reviewed_by_id, '')`

func (s *PostgresStore) Create(ctx context.Context, req Request) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registration_requests
			(id, full_name, date_of_birth, gender, aadhaar_number, email, mobile, address, village, pincode, password_hash, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, req.ID, req.FullName, req.DateOfBirth, req.Gender, req.AadhaarNumber, req.Email,
		req.Mobile, req.Address, req.Village, req.Pincode, req.PasswordHash, req.Status, req.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert registration request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Request, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM registration_requests WHERE id = $1`, id)
	return scanRequest(row)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (Request, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM registration_requests
		WHERE LOWER(email) = LOWER($1)
		ORDER BY submitted_at DESC
		LIMIT 1
	`, email)
	return scanRequest(row)
}

func (s *PostgresStore) ExistsByEmailOrAadhaar(ctx context.Context, email, aadhaar string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM registration_requests
			WHERE LOWER(email) = LOWER($1) OR aadhaar_number = $2
		)
	`, email, aadhaar).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check registration duplicates: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Update(ctx context.Context, req Request) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE registration_requests
		SET status = $2, rejection_reason = NULLIF($3, ''), reviewed_at = $4, reviewed_by_id = NULLIF($5, '')
		WHERE id = $1
	`, req.ID, req.Status, req.RejectionReason, req.ReviewedAt, req.ReviewedByID)
	if err != nil {
		return fmt.Errorf("update registration request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, status string) ([]Request, error) {
	query := `SELECT ` + requestColumns + ` FROM registration_requests`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY submitted_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registration requests: %w", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func (s *PostgresStore) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registration_requests WHERE status = $1`, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registration requests: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (Request, error) {
	var req Request
	var reviewedAt sql.NullTime
	err := row.Scan(&req.ID, &req.FullName, &req.DateOfBirth, &req.Gender, &req.AadhaarNumber,
		&req.Email, &req.Mobile, &req.Address, &req.Village, &req.Pincode,
		&req.PasswordHash, &req.Status, &req.RejectionReason, &req.SubmittedAt, &reviewedAt, &req.ReviewedByID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Request{}, sentinel.ErrNotFound
		}
		return Request{}, fmt.Errorf("scan registration request: %w", err)
	}
	if reviewedAt.Valid {
		req.ReviewedAt = &reviewedAt.Time
	}
	return req, nil
}
