package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"panchayat/pkg/platform/sentinel"
)

// PostgresStore persists users in PostgreSQL. Pure I/O; business rules live
// in the services.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const userColumns = `u.id, u.email, u.password_hash, u.role, u.full_name, COALESCE(u.mobile, ''), u.is_active, u.created_at`

func (s *PostgresStore) Create(ctx context.Context, user User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, role, full_name, mobile, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID, user.Email, user.PasswordHash, user.Role, user.FullName, user.Mobile, user.IsActive, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if user.Profile != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO citizen_profiles (user_id, aadhaar_number, date_of_birth, gender, address, village, pincode)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, user.ID, user.Profile.AadhaarNumber, user.Profile.DateOfBirth, user.Profile.Gender,
			user.Profile.Address, user.Profile.Village, user.Profile.Pincode)
		if err != nil {
			return fmt.Errorf("insert citizen profile: %w", err)
		}
	}
	if user.ClerkProfile != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO clerk_profiles (user_id, employee_id, department, designation)
			VALUES ($1, $2, $3, $4)
		`, user.ID, user.ClerkProfile.EmployeeID, user.ClerkProfile.Department, user.ClerkProfile.Designation)
		if err != nil {
			return fmt.Errorf("insert clerk profile: %w", err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (User, error) {
	return s.findOne(ctx, "u.id = $1", id)
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.findOne(ctx, "LOWER(u.email) = LOWER($1)", email)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE `+where, arg)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, sentinel.ErrNotFound
		}
		return User{}, fmt.Errorf("find user: %w", err)
	}
	if err := s.attachProfiles(ctx, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *PostgresStore) attachProfiles(ctx context.Context, user *User) error {
	switch user.Role {
	case RoleCitizen:
		profile := CitizenProfile{UserID: user.ID}
		err := s.db.QueryRowContext(ctx, `
			SELECT aadhaar_number, date_of_birth, COALESCE(gender, ''), COALESCE(address, ''), COALESCE(village, ''), COALESCE(pincode, '')
			FROM citizen_profiles WHERE user_id = $1
		`, user.ID).Scan(&profile.AadhaarNumber, &profile.DateOfBirth, &profile.Gender,
			&profile.Address, &profile.Village, &profile.Pincode)
		if err == nil {
			user.Profile = &profile
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("load citizen profile: %w", err)
		}
	case RoleClerk:
		profile := ClerkProfile{UserID: user.ID}
		err := s.db.QueryRowContext(ctx, `
			SELECT employee_id, department, designation
			FROM clerk_profiles WHERE user_id = $1
		`, user.ID).Scan(&profile.EmployeeID, &profile.Department, &profile.Designation)
		if err == nil {
			user.ClerkProfile = &profile
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("load clerk profile: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, user User) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET full_name = $2, mobile = $3, is_active = $4, role = $5
		WHERE id = $1
	`, user.ID, user.FullName, user.Mobile, user.IsActive, user.Role)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) SetActive(ctx context.Context, id string, active bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE users SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set user active: %w", err)
	}
	return requireRow(result)
}

func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]User, int, error) {
	where := "TRUE"
	args := []any{}
	if filter.Role != "" {
		args = append(args, filter.Role)
		where += fmt.Sprintf(" AND u.role = $%d", len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (u.full_name ILIKE $%d OR u.email ILIKE $%d OR u.mobile ILIKE $%d)", n, n, n)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users u WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users u WHERE ` + where + ` ORDER BY u.created_at DESC, u.id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	users, err := s.queryUsers(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		if err := s.attachProfiles(ctx, &users[i]); err != nil {
			return nil, 0, err
		}
	}
	return users, total, nil
}

func (s *PostgresStore) ListByRole(ctx context.Context, role Role) ([]User, error) {
	users, _, err := s.List(ctx, ListFilter{Role: role})
	return users, err
}

func (s *PostgresStore) Refs(ctx context.Context, ids []string) (map[string]Ref, error) {
	refs := make(map[string]Ref, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, full_name, email FROM users WHERE id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("load user refs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var ref Ref
		if err := rows.Scan(&id, &ref.FullName, &ref.Email); err != nil {
			return nil, fmt.Errorf("scan user ref: %w", err)
		}
		refs[id] = ref
	}
	return refs, rows.Err()
}

func (s *PostgresStore) CountCitizens(ctx context.Context, activeOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = 'citizen'`
	if activeOnly {
		query += ` AND is_active`
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count citizens: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CountCitizensCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM users
		WHERE role = 'citizen' AND created_at >= $1 AND created_at < $2
	`, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count citizens in window: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) CountByRole(ctx context.Context) (map[Role]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT role, COUNT(*) FROM users GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}
	defer rows.Close()
	counts := make(map[Role]int)
	for rows.Next() {
		var role Role
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("scan role count: %w", err)
		}
		counts[role] = count
	}
	return counts, rows.Err()
}

func (s *PostgresStore) SearchCitizens(ctx context.Context, term string, limit int) ([]User, error) {
	pattern := "%" + term + "%"
	return s.queryUsers(ctx, `
		SELECT `+userColumns+` FROM users u
		WHERE u.role = 'citizen'
		  AND (u.full_name ILIKE $1 OR u.email ILIKE $1 OR u.mobile ILIKE $1)
		ORDER BY u.created_at DESC, u.id
		LIMIT $2
	`, pattern, limit)
}

func (s *PostgresStore) queryUsers(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role,
		&user.FullName, &user.Mobile, &user.IsActive, &user.CreatedAt)
	return user, err
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

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
