package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/platform/sentinel"
	"panchayat/pkg/requestcontext"
)

// Deactivator marks a user's outstanding tokens invalid. Backed by Redis in
// production, memory otherwise; failures here must not orphan the soft delete.
// Reactivate clears the entry so a restored account is usable immediately.
type Deactivator interface {
	Deactivate(ctx context.Context, userID string, ttl time.Duration) error
	Reactivate(ctx context.Context, userID string) error
}

// Service owns user management: listing, clerk creation, patching and the
// soft-delete lifecycle.
type Service struct {
	store       Store
	deactivator Deactivator
	tokenTTL    time.Duration
	logger      *slog.Logger
}

func NewService(store Store, deactivator Deactivator, tokenTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{store: store, deactivator: deactivator, tokenTTL: tokenTTL, logger: logger}
}

// UserPage is the paginated listing response for GET /api/users.
type UserPage struct {
	Users      []User `json:"users"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
}

func (s *Service) ListUsers(ctx context.Context, role Role, query string, page, limit int) (UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	users, total, err := s.store.List(ctx, ListFilter{
		Role:   role,
		Query:  strings.TrimSpace(query),
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		return UserPage{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	totalPages := (total + limit - 1) / limit
	if users == nil {
		users = []User{}
	}
	return UserPage{Users: users, Total: total, Page: page, Limit: limit, TotalPages: totalPages}, nil
}

func (s *Service) ListClerks(ctx context.Context) ([]User, error) {
	clerks, err := s.store.ListByRole(ctx, RoleClerk)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list clerks")
	}
	return clerks, nil
}

func (s *Service) ListCitizens(ctx context.Context) ([]User, error) {
	citizens, err := s.store.ListByRole(ctx, RoleCitizen)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list citizens")
	}
	return citizens, nil
}

// CreateClerkInput carries the admin-supplied clerk fields. Employee ID,
// department and designation have documented defaults.
type CreateClerkInput struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Mobile      string `json:"mobile"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	EmployeeID  string `json:"employee_id"`
}

func (s *Service) CreateClerk(ctx context.Context, input CreateClerkInput) (User, error) {
	if input.FullName == "" || input.Email == "" || input.Password == "" {
		return User{}, dErrors.New(dErrors.CodeBadRequest, "full_name, email, and password are required")
	}
	if _, err := s.store.FindByEmail(ctx, input.Email); err == nil {
		return User{}, dErrors.New(dErrors.CodeConflict, "Email already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	employeeID := input.EmployeeID
	if employeeID == "" {
		employeeID = fmt.Sprintf("EMP-%d", now.UnixMilli())
	}
	department := input.Department
	if department == "" {
		department = "General"
	}
	designation := input.Designation
	if designation == "" {
		designation = "Clerk"
	}

	clerk := User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         RoleClerk,
		FullName:     input.FullName,
		Mobile:       input.Mobile,
		IsActive:     true,
		CreatedAt:    now,
		ClerkProfile: &ClerkProfile{
			EmployeeID:  employeeID,
			Department:  department,
			Designation: designation,
		},
	}
	clerk.ClerkProfile.UserID = clerk.ID

	if err := s.store.Create(ctx, clerk); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return User{}, dErrors.New(dErrors.CodeConflict, "Email already registered")
		}
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create clerk")
	}
	return clerk, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return User{}, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

func (s *Service) GetCitizen(ctx context.Context, id string) (User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if user.Role != RoleCitizen {
		return User{}, dErrors.New(dErrors.CodeNotFound, "Citizen not found")
	}
	return user, nil
}

// UpdateUserInput patches user fields. Role changes are admin-only and the
// handler enforces that before calling.
type UpdateUserInput struct {
	FullName *string `json:"full_name"`
	Mobile   *string `json:"mobile"`
	IsActive *bool   `json:"is_active"`
	Role     *Role   `json:"role"`
}

func (s *Service) UpdateUser(ctx context.Context, id string, input UpdateUserInput, allowRoleChange bool) (User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return User{}, err
	}
	if input.FullName != nil && *input.FullName != "" {
		user.FullName = *input.FullName
	}
	if input.Mobile != nil && *input.Mobile != "" {
		user.Mobile = *input.Mobile
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Role != nil && allowRoleChange {
		if !input.Role.Valid() {
			return User{}, dErrors.New(dErrors.CodeBadRequest, "invalid role")
		}
		user.Role = *input.Role
	}
	if err := s.store.Update(ctx, user); err != nil {
		return User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	if input.IsActive != nil && *input.IsActive && s.deactivator != nil {
		// Restoring the account must also clear the deactivation entry, or
		// the middleware keeps rejecting even freshly issued tokens.
		if err := s.deactivator.Reactivate(ctx, user.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to clear deactivation", "user_id", user.ID, "error", err)
		}
	}
	return user, nil
}

// UpdateOwnProfile patches the caller's own name/mobile.
func (s *Service) UpdateOwnProfile(ctx context.Context, fullName, mobile string) (User, error) {
	return s.UpdateUser(ctx, requestcontext.UserID(ctx), UpdateUserInput{
		FullName: &fullName,
		Mobile:   &mobile,
	}, false)
}

// DeactivateUser soft-deletes: clears the active flag and pushes the user
// onto the deactivation list so outstanding tokens stop working. Users are
// never hard-deleted.
func (s *Service) DeactivateUser(ctx context.Context, id string) error {
	if err := s.store.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate user")
	}
	if s.deactivator != nil {
		if err := s.deactivator.Deactivate(ctx, id, s.tokenTTL); err != nil {
			// The soft delete itself stands; token rejection degrades to the
			// next login check.
			s.logger.WarnContext(ctx, "failed to record deactivation", "user_id", id, "error", err)
		}
	}
	return nil
}
