package identity

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/requestcontext"
)

type recordedDeactivation struct {
	userID string
	ttl    time.Duration
}

type recordingDeactivator struct {
	calls       []recordedDeactivation
	reactivated []string
}

func (d *recordingDeactivator) Deactivate(_ context.Context, userID string, ttl time.Duration) error {
	d.calls = append(d.calls, recordedDeactivation{userID: userID, ttl: ttl})
	return nil
}

func (d *recordingDeactivator) Reactivate(_ context.Context, userID string) error {
	d.reactivated = append(d.reactivated, userID)
	return nil
}

type IdentityServiceSuite struct {
	suite.Suite
	store       *MemoryStore
	deactivator *recordingDeactivator
	service     *Service
	ctx         context.Context
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.deactivator = &recordingDeactivator{}
	s.service = NewService(s.store, s.deactivator, 24*time.Hour, slog.New(slog.DiscardHandler))
	s.ctx = context.Background()
}

func (s *IdentityServiceSuite) addUser(role Role, name, email string) User {
	user := User{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      role,
		FullName:  name,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	s.Require().NoError(s.store.Create(s.ctx, user))
	return user
}

func (s *IdentityServiceSuite) TestListUsers() {
	for i := 0; i < 25; i++ {
		s.addUser(RoleCitizen, fmt.Sprintf("Citizen %02d", i), fmt.Sprintf("citizen%02d@gram.in", i))
	}
	s.addUser(RoleClerk, "Asha Verma", "clerk@gram.in")

	s.Run("defaults page and limit", func() {
		page, err := s.service.ListUsers(s.ctx, "", "", 0, 0)
		s.Require().NoError(err)
		s.Equal(1, page.Page)
		s.Equal(20, page.Limit)
		s.Equal(26, page.Total)
		s.Equal(2, page.TotalPages)
		s.Len(page.Users, 20)
	})

	s.Run("second page holds the remainder", func() {
		page, err := s.service.ListUsers(s.ctx, "", "", 2, 20)
		s.Require().NoError(err)
		s.Len(page.Users, 6)
	})

	s.Run("role filter", func() {
		page, err := s.service.ListUsers(s.ctx, RoleClerk, "", 1, 20)
		s.Require().NoError(err)
		s.Equal(1, page.Total)
		s.Require().Len(page.Users, 1)
		s.Equal("Asha Verma", page.Users[0].FullName)
	})

	s.Run("query matches name", func() {
		page, err := s.service.ListUsers(s.ctx, "", "Citizen 07", 1, 20)
		s.Require().NoError(err)
		s.Equal(1, page.Total)
	})
}

func (s *IdentityServiceSuite) TestCreateClerk() {
	s.Run("requires name, email, and password", func() {
		_, err := s.service.CreateClerk(s.ctx, CreateClerkInput{Email: "x@gram.in"})
		s.Require().Error(err)
		s.Equal("full_name, email, and password are required", dErrors.Detail(err))
	})

	s.Run("fills employment defaults", func() {
		now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithTime(s.ctx, now)
		clerk, err := s.service.CreateClerk(ctx, CreateClerkInput{
			FullName: "Asha Verma",
			Email:    "asha@gram.in",
			Password: "secret123",
		})
		s.Require().NoError(err)
		s.Equal(RoleClerk, clerk.Role)
		s.True(clerk.IsActive)
		s.Require().NotNil(clerk.ClerkProfile)
		s.Equal(fmt.Sprintf("EMP-%d", now.UnixMilli()), clerk.ClerkProfile.EmployeeID)
		s.Equal("General", clerk.ClerkProfile.Department)
		s.Equal("Clerk", clerk.ClerkProfile.Designation)
	})

	s.Run("keeps supplied employment fields", func() {
		clerk, err := s.service.CreateClerk(s.ctx, CreateClerkInput{
			FullName:    "Vikram Singh",
			Email:       "vikram@gram.in",
			Password:    "secret123",
			EmployeeID:  "EMP-042",
			Department:  "Revenue",
			Designation: "Senior Clerk",
		})
		s.Require().NoError(err)
		s.Equal("EMP-042", clerk.ClerkProfile.EmployeeID)
		s.Equal("Revenue", clerk.ClerkProfile.Department)
		s.Equal("Senior Clerk", clerk.ClerkProfile.Designation)
	})

	s.Run("rejects duplicate email", func() {
		_, err := s.service.CreateClerk(s.ctx, CreateClerkInput{
			FullName: "Again",
			Email:    "asha@gram.in",
			Password: "secret123",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("Email already registered", dErrors.Detail(err))
	})
}

func (s *IdentityServiceSuite) TestUpdateUser() {
	user := s.addUser(RoleCitizen, "Ram Kumar", "ram@gram.in")

	s.Run("patches only supplied fields", func() {
		name := "Ram K. Sharma"
		updated, err := s.service.UpdateUser(s.ctx, user.ID, UpdateUserInput{FullName: &name}, false)
		s.Require().NoError(err)
		s.Equal("Ram K. Sharma", updated.FullName)
		s.Equal(user.Email, updated.Email)
		s.True(updated.IsActive)
	})

	s.Run("empty strings are ignored", func() {
		empty := ""
		updated, err := s.service.UpdateUser(s.ctx, user.ID, UpdateUserInput{FullName: &empty}, false)
		s.Require().NoError(err)
		s.Equal("Ram K. Sharma", updated.FullName)
	})

	s.Run("is_active false is applied", func() {
		inactive := false
		updated, err := s.service.UpdateUser(s.ctx, user.ID, UpdateUserInput{IsActive: &inactive}, false)
		s.Require().NoError(err)
		s.False(updated.IsActive)
	})

	s.Run("role change requires permission", func() {
		role := RoleClerk
		updated, err := s.service.UpdateUser(s.ctx, user.ID, UpdateUserInput{Role: &role}, false)
		s.Require().NoError(err)
		s.Equal(RoleCitizen, updated.Role)

		updated, err = s.service.UpdateUser(s.ctx, user.ID, UpdateUserInput{Role: &role}, true)
		s.Require().NoError(err)
		s.Equal(RoleClerk, updated.Role)
	})

	s.Run("invalid role is rejected", func() {
		bad := Role("superuser")
		_, err := s.service.UpdateUser(s.ctx, user.ID, UpdateUserInput{Role: &bad}, true)
		s.Require().Error(err)
		s.Equal("invalid role", dErrors.Detail(err))
	})

	s.Run("unknown user is a 404", func() {
		_, err := s.service.UpdateUser(s.ctx, "missing", UpdateUserInput{}, false)
		s.Require().Error(err)
		s.Equal("User not found", dErrors.Detail(err))
	})
}

func (s *IdentityServiceSuite) TestUpdateOwnProfile() {
	user := s.addUser(RoleCitizen, "Ram Kumar", "ram@gram.in")
	ctx := requestcontext.WithUserID(s.ctx, user.ID)

	updated, err := s.service.UpdateOwnProfile(ctx, "Ram Sharma", "9876543210")
	s.Require().NoError(err)
	s.Equal("Ram Sharma", updated.FullName)
	s.Equal("9876543210", updated.Mobile)
}

func (s *IdentityServiceSuite) TestDeactivateUser() {
	user := s.addUser(RoleCitizen, "Ram Kumar", "ram@gram.in")

	s.Run("clears the active flag and records the deactivation", func() {
		s.Require().NoError(s.service.DeactivateUser(s.ctx, user.ID))

		stored, err := s.store.FindByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.False(stored.IsActive)

		s.Require().Len(s.deactivator.calls, 1)
		s.Equal(user.ID, s.deactivator.calls[0].userID)
		s.Equal(24*time.Hour, s.deactivator.calls[0].ttl)
	})

	s.Run("unknown user is a 404", func() {
		err := s.service.DeactivateUser(s.ctx, "missing")
		s.Require().Error(err)
		s.Equal("User not found", dErrors.Detail(err))
	})
}

// Flipping is_active back on must clear the deactivation entry too, so the
// restored account's tokens pass the middleware check right away.
func (s *IdentityServiceSuite) TestReactivationClearsDeactivationEntry() {
	user := s.addUser(RoleCitizen, "Ram Kumar", "ram@gram.in")
	s.Require().NoError(s.service.DeactivateUser(s.ctx, user.ID))
	s.Require().Len(s.deactivator.calls, 1)

	active := true
	updated, err := s.service.UpdateUser(s.ctx, user.ID, UpdateUserInput{IsActive: &active}, false)
	s.Require().NoError(err)
	s.True(updated.IsActive)
	s.Equal([]string{user.ID}, s.deactivator.reactivated)
}

func (s *IdentityServiceSuite) TestDeactivatingViaUpdateDoesNotReactivate() {
	user := s.addUser(RoleCitizen, "Ram Kumar", "ram@gram.in")

	inactive := false
	_, err := s.service.UpdateUser(s.ctx, user.ID, UpdateUserInput{IsActive: &inactive}, false)
	s.Require().NoError(err)
	s.Empty(s.deactivator.reactivated)
}

func (s *IdentityServiceSuite) TestGetCitizen() {
	citizen := s.addUser(RoleCitizen, "Ram Kumar", "ram@gram.in")
	clerk := s.addUser(RoleClerk, "Asha Verma", "asha@gram.in")

	got, err := s.service.GetCitizen(s.ctx, citizen.ID)
	s.Require().NoError(err)
	s.Equal(citizen.ID, got.ID)

	_, err = s.service.GetCitizen(s.ctx, clerk.ID)
	s.Require().Error(err)
	s.Equal("Citizen not found", dErrors.Detail(err))
}
