package certificate

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"panchayat/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const certColumns = `id, application_number, citizen_id, certificate_type, purpose, data, status,
	COALESCE(remarks, ''), COALESCE(certificate_url, ''), submitted_at, processed_at, COALESCE(processed_by_id, '')`

func (s *PostgresStore) Create(ctx context.Context, cert Certificate) error {
	data, err := json.Marshal(cert.Data)
	if err != nil {
		return fmt.Errorf("marshal certificate data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO certificates
			(id, application_number, citizen_id, certificate_type, purpose, data, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, cert.ID, cert.ApplicationNumber, cert.CitizenID, cert.CertificateType, cert.Purpose, data, cert.Status, cert.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Certificate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+certColumns+` FROM certificates WHERE id = $1`, id)
	return scanCertificate(row)
}

func (s *PostgresStore) Update(ctx context.Context, cert Certificate) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE certificates
		SET status = $2, remarks = NULLIF($3, ''), certificate_url = NULLIF($4, ''),
			processed_at = $5, processed_by_id = NULLIF($6, '')
		WHERE id = $1
	`, cert.ID, cert.Status, cert.Remarks, cert.CertificateURL, cert.ProcessedAt, cert.ProcessedByID)
	if err != nil {
		return fmt.Errorf("update certificate: %w", err)
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

func (s *PostgresStore) List(ctx context.Context, citizenID string, limit int) ([]Certificate, error) {
	query := `SELECT ` + certColumns + ` FROM certificates`
	args := []any{}
	if citizenID != "" {
		args = append(args, citizenID)
		query += ` WHERE citizen_id = $1`
	}
	query += ` ORDER BY submitted_at DESC, id`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	return s.queryCertificates(ctx, query, args...)
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM certificates GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count certificates by status: %w", err)
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

func (s *PostgresStore) CountApprovedProcessedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM certificates
		WHERE status = 'approved' AND processed_at >= $1 AND processed_at < $2
	`, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count approved certificates in window: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) DistinctCitizens(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT citizen_id) FROM certificates`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count distinct certificate citizens: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Search(ctx context.Context, term string, citizenIDs []string, limit int) ([]Certificate, error) {
	pattern := "%" + term + "%"
	return s.queryCertificates(ctx, `
		SELECT `+certColumns+` FROM certificates
		WHERE application_number ILIKE $1 OR certificate_type ILIKE $1 OR citizen_id = ANY($2)
		ORDER BY submitted_at DESC, id
		LIMIT $3
	`, pattern, pq.Array(citizenIDs), limit)
}

func (s *PostgresStore) queryCertificates(ctx context.Context, query string, args ...any) ([]Certificate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query certificates: %w", err)
	}
	defer rows.Close()

	var certs []Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
	return certs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row rowScanner) (Certificate, error) {
	var cert Certificate
	var data []byte
	var processedAt sql.NullTime
	err := row.Scan(&cert.ID, &cert.ApplicationNumber, &cert.CitizenID, &cert.CertificateType,
		&cert.Purpose, &data, &cert.Status, &cert.Remarks, &cert.CertificateURL,
		&cert.SubmittedAt, &processedAt, &cert.ProcessedByID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Certificate{}, sentinel.ErrNotFound
		}
		return Certificate{}, fmt.Errorf("scan certificate: %w", err)
	}
	if processedAt.Valid {
		cert.ProcessedAt = &processedAt.Time
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &cert.Data); err != nil {
			return Certificate{}, fmt.Errorf("unmarshal certificate data: %w", err)
		}
	}
	return cert, nil
}
