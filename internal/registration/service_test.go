package registration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"panchayat/internal/identity"
	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/requestcontext"
)

type recordedNotification struct {
	UserID, Title, Message, Kind string
}

type recordingNotifier struct {
	sent []recordedNotification
}

func (n *recordingNotifier) Notify(_ context.Context, userID, title, message, kind string) {
	n.sent = append(n.sent, recordedNotification{userID, title, message, kind})
}

type RegistrationServiceSuite struct {
	suite.Suite
	requests *MemoryStore
	users    *identity.MemoryStore
	notifier *recordingNotifier
	service  *Service
	ctx      context.Context
}

func TestRegistrationServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistrationServiceSuite))
}

func (s *RegistrationServiceSuite) SetupTest() {
	s.requests = NewMemoryStore()
	s.users = identity.NewMemoryStore()
	s.notifier = &recordingNotifier{}
	s.service = NewService(s.requests, s.users, s.notifier, nil)
	s.ctx = requestcontext.WithUserID(context.Background(), "admin-1")
}

func (s *RegistrationServiceSuite) addRequest(email string) Request {
	req := Request{
		ID:            uuid.NewString(),
		FullName:      "Suresh Yadav",
		DateOfBirth:   time.Date(1988, 4, 10, 0, 0, 0, 0, time.UTC),
		Gender:        "male",
		AadhaarNumber: "101010101010",
		Email:         email,
		Mobile:        "9600000001",
		Address:       "Village Road",
		Village:       "Sarahi",
		Pincode:       "483880",
		PasswordHash:  "$2a$10$hash",
		Status:        StatusPending,
		SubmittedAt:   time.Now(),
	}
	s.Require().NoError(s.requests.Create(s.ctx, req))
	return req
}

func (s *RegistrationServiceSuite) TestList() {
	s.addRequest("a@example.com")
	approved := s.addRequest("b@example.com")
	approved.Status = StatusApproved
	s.Require().NoError(s.requests.Update(s.ctx, approved))

	s.Run("all statuses by default", func() {
		requests, err := s.service.List(s.ctx, "")
		s.Require().NoError(err)
		s.Len(requests, 2)
	})

	s.Run("filtered by status", func() {
		requests, err := s.service.List(s.ctx, StatusPending)
		s.Require().NoError(err)
		s.Len(requests, 1)
		s.Equal("a@example.com", requests[0].Email)
	})
}

func (s *RegistrationServiceSuite) TestDecideValidation() {
	req := s.addRequest("applicant@example.com")

	s.Run("missing status rejected", func() {
		_, err := s.service.Decide(s.ctx, req.ID, Decision{})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown status rejected", func() {
		_, err := s.service.Decide(s.ctx, req.ID, Decision{Status: "maybe"})
		s.Require().Error(err)
		s.Equal("status must be approved or rejected", dErrors.Detail(err))
	})

	s.Run("unknown request is a 404", func() {
		_, err := s.service.Decide(s.ctx, uuid.NewString(), Decision{Status: StatusApproved})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestApprove verifies approval materializes exactly one citizen account with
// the profile copied from the request.
func (s *RegistrationServiceSuite) TestApprove() {
	req := s.addRequest("applicant@example.com")

	decided, err := s.service.Decide(s.ctx, req.ID, Decision{Status: StatusApproved})
	s.Require().NoError(err)
	s.Equal(StatusApproved, decided.Status)
	s.NotNil(decided.ReviewedAt)
	s.Equal("admin-1", decided.ReviewedByID)

	user, err := s.users.FindByEmail(s.ctx, req.Email)
	s.Require().NoError(err)
	s.Equal(identity.RoleCitizen, user.Role)
	s.True(user.IsActive)
	s.Equal(req.PasswordHash, user.PasswordHash)
	s.Require().NotNil(user.Profile)
	s.Equal(req.AadhaarNumber, user.Profile.AadhaarNumber)
	s.Equal(req.Village, user.Profile.Village)

	s.Run("welcome notification sent", func() {
		s.Require().Len(s.notifier.sent, 1)
		s.Equal(user.ID, s.notifier.sent[0].UserID)
		s.Equal("success", s.notifier.sent[0].Kind)
	})

	s.Run("re-approval does not duplicate the account", func() {
		_, err := s.service.Decide(s.ctx, req.ID, Decision{Status: StatusApproved})
		s.Require().NoError(err)

		_, total, err := s.users.List(s.ctx, identity.ListFilter{Limit: 100})
		s.Require().NoError(err)
		s.Equal(1, total)
		s.Len(s.notifier.sent, 1)
	})
}

func (s *RegistrationServiceSuite) TestReject() {
	req := s.addRequest("applicant@example.com")

	decided, err := s.service.Decide(s.ctx, req.ID, Decision{
		Status:          StatusRejected,
		RejectionReason: "Aadhaar number could not be verified",
	})
	s.Require().NoError(err)
	s.Equal(StatusRejected, decided.Status)
	s.Equal("Aadhaar number could not be verified", decided.RejectionReason)

	// No account, no notification.
	_, err = s.users.FindByEmail(s.ctx, req.Email)
	s.Error(err)
	s.Empty(s.notifier.sent)
}
