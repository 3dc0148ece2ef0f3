package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"panchayat/internal/identity"
	"panchayat/internal/registration"
	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/requestcontext"
)

type AuthServiceSuite struct {
	suite.Suite
	users         *identity.MemoryStore
	registrations *registration.MemoryStore
	service       *Service
	ctx           context.Context
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) SetupTest() {
	s.users = identity.NewMemoryStore()
	s.registrations = registration.NewMemoryStore()
	tokens := NewJWTService("test-signing-key", "panchayat", "panchayat-portal", time.Hour)
	s.service = NewService(s.users, s.registrations, tokens, nil)
	s.ctx = context.Background()
}

func (s *AuthServiceSuite) addUser(email, password string, role identity.Role, active bool) identity.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	s.Require().NoError(err)
	user := identity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		FullName:     "Test User",
		IsActive:     active,
		CreatedAt:    time.Now(),
	}
	s.Require().NoError(s.users.Create(s.ctx, user))
	return user
}

func (s *AuthServiceSuite) TestLogin() {
	user := s.addUser("citizen@gram.in", "secret123", identity.RoleCitizen, true)

	s.Run("missing fields rejected", func() {
		_, err := s.service.Login(s.ctx, LoginInput{Email: "citizen@gram.in"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("successful login returns bearer token and user", func() {
		result, err := s.service.Login(s.ctx, LoginInput{Email: "citizen@gram.in", Password: "secret123", Role: "citizen"})
		s.Require().NoError(err)
		s.NotEmpty(result.AccessToken)
		s.Equal("bearer", result.TokenType)
		s.Equal("citizen", result.Role)
		s.Equal(user.ID, result.User.ID)
	})

	s.Run("wrong password is a 401", func() {
		_, err := s.service.Login(s.ctx, LoginInput{Email: "citizen@gram.in", Password: "wrong", Role: "citizen"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal("Invalid credentials", dErrors.Detail(err))
	})

	s.Run("wrong role selection is a 401", func() {
		_, err := s.service.Login(s.ctx, LoginInput{Email: "citizen@gram.in", Password: "secret123", Role: "admin"})
		s.Require().Error(err)
		s.Equal("Invalid credentials or incorrect role selected", dErrors.Detail(err))
	})

	s.Run("inactive account is a 401", func() {
		s.addUser("gone@gram.in", "secret123", identity.RoleCitizen, false)
		_, err := s.service.Login(s.ctx, LoginInput{Email: "gone@gram.in", Password: "secret123", Role: "citizen"})
		s.Require().Error(err)
		s.Equal("Account is inactive", dErrors.Detail(err))
	})

	s.Run("unknown email is a plain 401", func() {
		_, err := s.service.Login(s.ctx, LoginInput{Email: "nobody@gram.in", Password: "x", Role: "admin"})
		s.Require().Error(err)
		s.Equal("Invalid credentials", dErrors.Detail(err))
	})
}

// TestLoginPendingHints verifies citizens with an unreviewed or rejected
// signup get a status hint instead of "Invalid credentials".
func (s *AuthServiceSuite) TestLoginPendingHints() {
	seed := func(email, status string) {
		s.Require().NoError(s.registrations.Create(s.ctx, registration.Request{
			ID:            uuid.NewString(),
			FullName:      "Applicant",
			Email:         email,
			AadhaarNumber: "111122223333",
			Status:        status,
			SubmittedAt:   time.Now(),
		}))
	}
	seed("pending@gram.in", registration.StatusPending)
	seed("rejected@gram.in", registration.StatusRejected)

	s.Run("pending registration", func() {
		_, err := s.service.Login(s.ctx, LoginInput{Email: "pending@gram.in", Password: "x", Role: "citizen"})
		s.Require().Error(err)
		s.Equal("Account pending approval", dErrors.Detail(err))
	})

	s.Run("rejected registration", func() {
		_, err := s.service.Login(s.ctx, LoginInput{Email: "rejected@gram.in", Password: "x", Role: "citizen"})
		s.Require().Error(err)
		s.Equal("Registration rejected", dErrors.Detail(err))
	})

	s.Run("hint only applies to the citizen role", func() {
		_, err := s.service.Login(s.ctx, LoginInput{Email: "pending@gram.in", Password: "x", Role: "admin"})
		s.Require().Error(err)
		s.Equal("Invalid credentials", dErrors.Detail(err))
	})
}

func (s *AuthServiceSuite) TestRegister() {
	input := RegisterInput{
		FullName:      "Suresh Yadav",
		DateOfBirth:   "1988-04-10",
		AadhaarNumber: "101010101010",
		Email:         "suresh@example.com",
		Password:      "pass123",
	}

	s.Run("creates a pending request, never a user", func() {
		result, err := s.service.Register(s.ctx, input)
		s.Require().NoError(err)
		s.NotEmpty(result.RequestID)

		req, err := s.registrations.FindByID(s.ctx, result.RequestID)
		s.Require().NoError(err)
		s.Equal(registration.StatusPending, req.Status)
		s.Equal(DefaultVillage, req.Village)

		_, err = s.users.FindByEmail(s.ctx, input.Email)
		s.Error(err)
	})

	s.Run("duplicate registration rejected", func() {
		_, err := s.service.Register(s.ctx, input)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal("Registration request already exists", dErrors.Detail(err))
	})

	s.Run("existing account email rejected", func() {
		s.addUser("taken@gram.in", "x", identity.RoleCitizen, true)
		dup := input
		dup.Email = "taken@gram.in"
		dup.AadhaarNumber = "999988887777"
		_, err := s.service.Register(s.ctx, dup)
		s.Require().Error(err)
		s.Equal("Email already registered", dErrors.Detail(err))
	})

	s.Run("missing required fields rejected", func() {
		_, err := s.service.Register(s.ctx, RegisterInput{Email: "a@b.c"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("malformed date of birth stored as zero time", func() {
		odd := input
		odd.Email = "odd@example.com"
		odd.AadhaarNumber = "121212121212"
		odd.DateOfBirth = "not-a-date"
		result, err := s.service.Register(s.ctx, odd)
		s.Require().NoError(err)
		req, err := s.registrations.FindByID(s.ctx, result.RequestID)
		s.Require().NoError(err)
		s.True(req.DateOfBirth.IsZero())
	})
}

func (s *AuthServiceSuite) TestMe() {
	user := s.addUser("me@gram.in", "secret123", identity.RoleClerk, true)

	s.Run("returns the caller's account", func() {
		ctx := requestcontext.WithUserID(s.ctx, user.ID)
		got, err := s.service.Me(ctx)
		s.Require().NoError(err)
		s.Equal(user.Email, got.Email)
	})

	s.Run("unknown caller is a 404", func() {
		ctx := requestcontext.WithUserID(s.ctx, uuid.NewString())
		_, err := s.service.Me(ctx)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
