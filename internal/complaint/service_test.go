package complaint

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"panchayat/internal/identity"
	"panchayat/internal/platform/sequence"
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

type ComplaintServiceSuite struct {
	suite.Suite
	complaints *MemoryStore
	users      *identity.MemoryStore
	notifier   *recordingNotifier
	service    *Service
	ctx        context.Context

	citizen identity.User
	clerk   identity.User
}

func TestComplaintServiceSuite(t *testing.T) {
	suite.Run(t, new(ComplaintServiceSuite))
}

func (s *ComplaintServiceSuite) SetupTest() {
	s.complaints = NewMemoryStore()
	s.users = identity.NewMemoryStore()
	s.notifier = &recordingNotifier{}
	s.service = NewService(s.complaints, s.users, sequence.NewMemoryAllocator(), s.notifier, nil)
	s.ctx = context.Background()

	s.citizen = identity.User{
		ID: uuid.NewString(), Email: "citizen2@gram.in", Role: identity.RoleCitizen,
		FullName: "Savita Devi", IsActive: true, CreatedAt: time.Now(),
	}
	s.clerk = identity.User{
		ID: uuid.NewString(), Email: "clerk1@gram.in", Role: identity.RoleClerk,
		FullName: "Vijay Sharma", IsActive: true, CreatedAt: time.Now(),
	}
	s.Require().NoError(s.users.Create(s.ctx, s.citizen))
	s.Require().NoError(s.users.Create(s.ctx, s.clerk))
}

func (s *ComplaintServiceSuite) asCitizen(id string) context.Context {
	ctx := requestcontext.WithUserID(s.ctx, id)
	return requestcontext.WithUserRole(ctx, string(identity.RoleCitizen))
}

func (s *ComplaintServiceSuite) asClerk() context.Context {
	ctx := requestcontext.WithUserID(s.ctx, s.clerk.ID)
	return requestcontext.WithUserRole(ctx, string(identity.RoleClerk))
}

func (s *ComplaintServiceSuite) submit() Complaint {
	c, err := s.service.Create(s.asCitizen(s.citizen.ID), CreateInput{
		ComplaintType: "Water Supply",
		Subject:       "No water supply for 3 days",
		Description:   "Supply has been disrupted in Ward 2.",
		Location:      "Ward 2",
	})
	s.Require().NoError(err)
	return c
}

func (s *ComplaintServiceSuite) TestCreate() {
	s.Run("requires type, subject, description", func() {
		_, err := s.service.Create(s.asCitizen(s.citizen.ID), CreateInput{Subject: "x"})
		s.Require().Error(err)
		s.Equal("complaint_type, subject, description are required", dErrors.Detail(err))
	})

	s.Run("priority defaults to medium", func() {
		c := s.submit()
		s.Equal(PriorityMedium, c.Priority)
		s.Equal(StatusOpen, c.Status)
	})

	s.Run("invalid priority rejected", func() {
		_, err := s.service.Create(s.asCitizen(s.citizen.ID), CreateInput{
			ComplaintType: "Road", Subject: "x", Description: "y", Priority: "urgent",
		})
		s.Require().Error(err)
		s.Equal("invalid priority", dErrors.Detail(err))
	})

	s.Run("complaint numbers are sequential within the year", func() {
		ctx := requestcontext.WithTime(s.asCitizen(s.citizen.ID), time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC))
		c, err := s.service.Create(ctx, CreateInput{ComplaintType: "Road", Subject: "x", Description: "y"})
		s.Require().NoError(err)
		s.Contains(c.ComplaintNumber, "COMP-2026-")
	})
}

func (s *ComplaintServiceSuite) TestOwnership() {
	c := s.submit()

	_, err := s.service.Get(s.asCitizen(uuid.NewString()), c.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	got, err := s.service.Get(s.asClerk(), c.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.Citizen)
	s.Equal(s.citizen.FullName, got.Citizen.FullName)
}

// TestResolution verifies ResolvedAt is stamped on every resolve and
// survives later status transitions.
func (s *ComplaintServiceSuite) TestResolution() {
	c := s.submit()

	firstResolve := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(s.asClerk(), firstResolve)
	updated, err := s.service.Update(ctx, c.ID, UpdateInput{
		Status:     StatusResolved,
		Resolution: "Pipeline repaired",
	})
	s.Require().NoError(err)
	s.Equal(StatusResolved, updated.Status)
	s.Require().NotNil(updated.ResolvedAt)
	s.Equal(firstResolve, *updated.ResolvedAt)
	s.Equal("Pipeline repaired", updated.Resolution)

	s.Run("reopening keeps the resolution time", func() {
		reopened, err := s.service.Update(s.asClerk(), c.ID, UpdateInput{Status: StatusOpen})
		s.Require().NoError(err)
		s.Require().NotNil(reopened.ResolvedAt)
		s.Equal(firstResolve, *reopened.ResolvedAt)
	})

	s.Run("resolving again re-stamps", func() {
		secondResolve := firstResolve.Add(48 * time.Hour)
		later := requestcontext.WithTime(s.asClerk(), secondResolve)
		again, err := s.service.Update(later, c.ID, UpdateInput{Status: StatusResolved})
		s.Require().NoError(err)
		s.Require().NotNil(again.ResolvedAt)
		s.Equal(secondResolve, *again.ResolvedAt)
	})
}

func (s *ComplaintServiceSuite) TestUpdate() {
	c := s.submit()

	s.Run("combined patch", func() {
		updated, err := s.service.Update(s.asClerk(), c.ID, UpdateInput{
			Status:       StatusInProgress,
			Priority:     PriorityHigh,
			AssignedToID: s.clerk.ID,
		})
		s.Require().NoError(err)
		s.Equal(StatusInProgress, updated.Status)
		s.Equal(PriorityHigh, updated.Priority)
		s.Equal(s.clerk.ID, updated.AssignedToID)
	})

	s.Run("invalid status rejected", func() {
		_, err := s.service.Update(s.asClerk(), c.ID, UpdateInput{Status: "finished"})
		s.Require().Error(err)
		s.Equal("invalid status", dErrors.Detail(err))
	})

	s.Run("status changes notify with the right kind", func() {
		s.Require().NotEmpty(s.notifier.sent)
		s.Equal("info", s.notifier.sent[0].Kind)
		s.Equal(fmt.Sprintf("Complaint %s", StatusInProgress), s.notifier.sent[0].Title)

		_, err := s.service.Update(s.asClerk(), c.ID, UpdateInput{Status: StatusClosed})
		s.Require().NoError(err)
		last := s.notifier.sent[len(s.notifier.sent)-1]
		s.Equal("warning", last.Kind)
		s.Equal(s.citizen.ID, last.UserID)
	})
}
