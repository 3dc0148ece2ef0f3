//go:build integration

package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"panchayat/internal/identity"
	"panchayat/pkg/platform/sentinel"
	"panchayat/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *identity.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = identity.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"citizen_profiles", "clerk_profiles", "users")
	s.Require().NoError(err)
}

func newTestUser(role identity.Role, name, email string) identity.User {
	return identity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		FullName:     name,
		IsActive:     true,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	user := newTestUser(identity.RoleCitizen, "Ram Kumar", "ram@gram.in")
	user.Profile = &identity.CitizenProfile{
		UserID:        user.ID,
		AadhaarNumber: "123412341234",
		DateOfBirth:   time.Date(1990, time.May, 1, 0, 0, 0, 0, time.UTC),
		Gender:        "male",
		Village:       "Sarahi",
		Pincode:       "483880",
	}
	s.Require().NoError(s.store.Create(ctx, user))

	found, err := s.store.FindByEmail(ctx, "ram@gram.in")
	s.Require().NoError(err)
	s.Equal(user.ID, found.ID)
	s.Equal(identity.RoleCitizen, found.Role)
	s.Require().NotNil(found.Profile)
	s.Equal("123412341234", found.Profile.AadhaarNumber)
	s.Equal("Sarahi", found.Profile.Village)

	_, err = s.store.FindByID(ctx, uuid.NewString())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDuplicateEmailConflicts() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newTestUser(identity.RoleCitizen, "Ram", "dup@gram.in")))

	err := s.store.Create(ctx, newTestUser(identity.RoleCitizen, "Shyam", "dup@gram.in"))
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrConflict))
}

func (s *PostgresStoreSuite) TestClerkProfileRoundTrip() {
	ctx := context.Background()
	clerk := newTestUser(identity.RoleClerk, "Asha Verma", "asha@gram.in")
	clerk.ClerkProfile = &identity.ClerkProfile{
		UserID:      clerk.ID,
		EmployeeID:  "EMP-001",
		Department:  "Revenue",
		Designation: "Senior Clerk",
	}
	s.Require().NoError(s.store.Create(ctx, clerk))

	found, err := s.store.FindByID(ctx, clerk.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.ClerkProfile)
	s.Equal("EMP-001", found.ClerkProfile.EmployeeID)
	s.Equal("Revenue", found.ClerkProfile.Department)
}

func (s *PostgresStoreSuite) TestSetActive() {
	ctx := context.Background()
	user := newTestUser(identity.RoleCitizen, "Ram", "ram@gram.in")
	s.Require().NoError(s.store.Create(ctx, user))

	s.Require().NoError(s.store.SetActive(ctx, user.ID, false))
	found, err := s.store.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.False(found.IsActive)

	s.Require().ErrorIs(s.store.SetActive(ctx, uuid.NewString(), false), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListFilters() {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		u := newTestUser(identity.RoleCitizen, "Citizen", uuid.NewString()+"@gram.in")
		u.CreatedAt = u.CreatedAt.Add(time.Duration(i) * time.Second)
		s.Require().NoError(s.store.Create(ctx, u))
	}
	s.Require().NoError(s.store.Create(ctx, newTestUser(identity.RoleClerk, "Asha Verma", "asha@gram.in")))

	users, total, err := s.store.List(ctx, identity.ListFilter{Role: identity.RoleCitizen, Limit: 2})
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Len(users, 2)

	users, total, err = s.store.List(ctx, identity.ListFilter{Query: "asha", Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(users, 1)
	s.Equal("Asha Verma", users[0].FullName)
}
