package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"panchayat/internal/identity"
	"panchayat/internal/platform/metrics"
	"panchayat/internal/registration"
	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/platform/sentinel"
	"panchayat/pkg/requestcontext"
)

// DefaultVillage is filled in when a signup omits the village field.
const DefaultVillage = "Sarahi"

// Service handles login, public self-registration, and the /auth/me lookup.
type Service struct {
	users         identity.Store
	registrations registration.Store
	tokens        *JWTService
	metrics       *metrics.Metrics
}

func NewService(users identity.Store, registrations registration.Store, tokens *JWTService, m *metrics.Metrics) *Service {
	return &Service{users: users, registrations: registrations, tokens: tokens, metrics: m}
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResult is the token envelope the UI stores for the session.
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Role        string    `json:"role"`
	User        LoginUser `json:"user"`
}

type LoginUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Login authenticates email+password against the claimed role. Every failure
// is a 401; the message varies only to guide citizens whose registration is
// still in review.
func (s *Service) Login(ctx context.Context, input LoginInput) (LoginResult, error) {
	if input.Email == "" || input.Password == "" || input.Role == "" {
		return LoginResult{}, dErrors.New(dErrors.CodeBadRequest, "email, password, and role are required")
	}

	user, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return LoginResult{}, s.fail(s.pendingHint(ctx, input))
		}
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	if string(user.Role) != input.Role {
		return LoginResult{}, s.fail(dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials or incorrect role selected"))
	}
	if !user.IsActive {
		return LoginResult{}, s.fail(dErrors.New(dErrors.CodeUnauthorized, "Account is inactive"))
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return LoginResult{}, s.fail(dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials"))
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role), requestcontext.Now(ctx))
	if err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues("success").Inc()
	}
	return LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		Role:        string(user.Role),
		User:        LoginUser{ID: user.ID, Name: user.FullName, Email: user.Email},
	}, nil
}

// pendingHint gives citizens with an unreviewed or rejected signup a more
// useful 401 than "Invalid credentials".
func (s *Service) pendingHint(ctx context.Context, input LoginInput) *dErrors.Error {
	if input.Role == string(identity.RoleCitizen) {
		if req, err := s.registrations.FindByEmail(ctx, input.Email); err == nil {
			switch req.Status {
			case registration.StatusPending:
				return dErrors.New(dErrors.CodeUnauthorized, "Account pending approval")
			case registration.StatusRejected:
				return dErrors.New(dErrors.CodeUnauthorized, "Registration rejected")
			}
		}
	}
	return dErrors.New(dErrors.CodeUnauthorized, "Invalid credentials")
}

func (s *Service) fail(err *dErrors.Error) error {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues("failure").Inc()
	}
	return err
}

type RegisterInput struct {
	FullName      string `json:"full_name"`
	DateOfBirth   string `json:"date_of_birth"`
	Gender        string `json:"gender"`
	AadhaarNumber string `json:"aadhaar_number"`
	Email         string `json:"email"`
	Mobile        string `json:"mobile"`
	Address       string `json:"address"`
	Village       string `json:"village"`
	Pincode       string `json:"pincode"`
	Password      string `json:"password"`
}

type RegisterResult struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// Register creates a pending registration request. It never creates a User;
// only an admin approval does that.
func (s *Service) Register(ctx context.Context, input RegisterInput) (RegisterResult, error) {
	if input.Email == "" || input.Password == "" || input.FullName == "" || input.AadhaarNumber == "" {
		return RegisterResult{}, dErrors.New(dErrors.CodeBadRequest, "Required fields missing")
	}

	if _, err := s.users.FindByEmail(ctx, input.Email); err == nil {
		return RegisterResult{}, dErrors.New(dErrors.CodeConflict, "Email already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return RegisterResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email")
	}

	exists, err := s.registrations.ExistsByEmailOrAadhaar(ctx, input.Email, input.AadhaarNumber)
	if err != nil {
		return RegisterResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check registrations")
	}
	if exists {
		return RegisterResult{}, dErrors.New(dErrors.CodeConflict, "Registration request already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return RegisterResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	village := strings.TrimSpace(input.Village)
	if village == "" {
		village = DefaultVillage
	}

	req := registration.Request{
		ID:            uuid.NewString(),
		FullName:      input.FullName,
		DateOfBirth:   parseDate(input.DateOfBirth),
		Gender:        input.Gender,
		AadhaarNumber: input.AadhaarNumber,
		Email:         input.Email,
		Mobile:        input.Mobile,
		Address:       input.Address,
		Village:       village,
		Pincode:       input.Pincode,
		PasswordHash:  string(hash),
		Status:        registration.StatusPending,
		SubmittedAt:   requestcontext.Now(ctx),
	}
	if err := s.registrations.Create(ctx, req); err != nil {
		return RegisterResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create registration request")
	}

	if s.metrics != nil {
		s.metrics.RegistrationsSubmitted.Inc()
	}
	return RegisterResult{
		Message:   "Registration request submitted successfully. Please wait for admin approval.",
		RequestID: req.ID,
	}, nil
}

// parseDate reads the wire date format; a malformed or missing date of birth
// is stored as the zero time rather than rejecting the signup.
func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Me returns the caller's account including its profile.
func (s *Service) Me(ctx context.Context) (identity.User, error) {
	user, err := s.users.FindByID(ctx, requestcontext.UserID(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return identity.User{}, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return identity.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}
