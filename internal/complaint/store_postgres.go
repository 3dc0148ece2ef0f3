package complaint

import (
	"context"
	"database/sql"
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

const complaintColumns = `id, complaint_number, citizen_id, complaint_type, subject, description,
	COALESCE(location, ''), priority, status, COALESCE(assigned_to_id, ''), COALESCE(resolution, ''),
	submitted_at, resolved_at`

func (s *PostgresStore) Create(ctx context.Context, c Complaint) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO complaints
			(id, complaint_number, citizen_id, complaint_type, subject, description, location, priority, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9, $10)
	`, c.ID, c.ComplaintNumber, c.CitizenID, c.ComplaintType, c.Subject, c.Description,
		c.Location, c.Priority, c.Status, c.SubmittedAt)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Complaint, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = $1`, id)
	return scanComplaint(row)
}

func (s *PostgresStore) Update(ctx context.Context, c Complaint) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE complaints
		SET status = $2, priority = $3, assigned_to_id = NULLIF($4, ''),
			resolution = NULLIF($5, ''), resolved_at = $6
		WHERE id = $1
	`, c.ID, c.Status, c.Priority, c.AssignedToID, c.Resolution, c.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
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

func (s *PostgresStore) List(ctx context.Context, citizenID string, limit int) ([]Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints`
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
	return s.queryComplaints(ctx, query, args...)
}

func (s *PostgresStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM complaints GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count complaints by status: %w", err)
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

func (s *PostgresStore) CountSubmittedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return s.countWindow(ctx, `
		SELECT COUNT(*) FROM complaints
		WHERE submitted_at >= $1 AND submitted_at < $2
	`, from, to)
}

func (s *PostgresStore) CountResolvedSubmittedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return s.countWindow(ctx, `
		SELECT COUNT(*) FROM complaints
		WHERE submitted_at >= $1 AND submitted_at < $2 AND status IN ('resolved', 'closed')
	`, from, to)
}

func (s *PostgresStore) CountOpenSubmittedBetween(ctx context.Context, from, to time.Time) (int, error) {
	return s.countWindow(ctx, `
		SELECT COUNT(*) FROM complaints
		WHERE submitted_at >= $1 AND submitted_at < $2 AND status = 'open'
	`, from, to)
}

func (s *PostgresStore) countWindow(ctx context.Context, query string, from, to time.Time) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, query, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("count complaints in window: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Search(ctx context.Context, term string, citizenIDs []string, limit int) ([]Complaint, error) {
	pattern := "%" + term + "%"
	return s.queryComplaints(ctx, `
		SELECT `+complaintColumns+` FROM complaints
		WHERE complaint_number ILIKE $1 OR subject ILIKE $1 OR complaint_type ILIKE $1
			OR description ILIKE $1 OR citizen_id = ANY($2)
		ORDER BY submitted_at DESC, id
		LIMIT $3
	`, pattern, pq.Array(citizenIDs), limit)
}

func (s *PostgresStore) queryComplaints(ctx context.Context, query string, args ...any) ([]Complaint, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query complaints: %w", err)
	}
	defer rows.Close()

	var complaints []Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComplaint(row rowScanner) (Complaint, error) {
	var c Complaint
	var resolvedAt sql.NullTime
	err := row.Scan(&c.ID, &c.ComplaintNumber, &c.CitizenID, &c.ComplaintType, &c.Subject,
		&c.Description, &c.Location, &c.Priority, &c.Status, &c.AssignedToID, &c.Resolution,
		&c.SubmittedAt, &resolvedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Complaint{}, sentinel.ErrNotFound
		}
		return Complaint{}, fmt.Errorf("scan complaint: %w", err)
	}
	if resolvedAt.Valid {
		c.ResolvedAt = &resolvedAt.Time
	}
	return c, nil
}
