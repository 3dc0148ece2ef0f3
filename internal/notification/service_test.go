package notification

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/requestcontext"
)

type NotificationServiceSuite struct {
	suite.Suite
	store   *MemoryStore
	service *Service
	ctx     context.Context
}

func TestNotificationServiceSuite(t *testing.T) {
	suite.Run(t, new(NotificationServiceSuite))
}

func (s *NotificationServiceSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.service = NewService(s.store, slog.New(slog.DiscardHandler), nil)
	s.ctx = context.Background()
}

func (s *NotificationServiceSuite) asUser(id string) context.Context {
	return requestcontext.WithUserID(s.ctx, id)
}

func (s *NotificationServiceSuite) TestNotify() {
	s.Run("creates an inbox row", func() {
		s.service.Notify(s.ctx, "user-1", "Registration approved", "Welcome.", "success")

		rows, err := s.service.Inbox(s.asUser("user-1"))
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal("Registration approved", rows[0].Title)
		s.Equal("success", rows[0].Type)
		s.False(rows[0].IsRead)
	})

	s.Run("empty user id is a no-op", func() {
		s.service.Notify(s.ctx, "", "Lost", "Nobody home.", "info")
		rows, err := s.service.Inbox(s.asUser(""))
		s.Require().NoError(err)
		s.Empty(rows)
	})

	s.Run("empty kind defaults to info", func() {
		s.service.Notify(s.ctx, "user-2", "Hello", "World.", "")
		rows, err := s.service.Inbox(s.asUser("user-2"))
		s.Require().NoError(err)
		s.Require().Len(rows, 1)
		s.Equal("info", rows[0].Type)
	})
}

func (s *NotificationServiceSuite) TestInboxIsScopedToCaller() {
	s.service.Notify(s.ctx, "user-1", "A", "a.", "info")
	s.service.Notify(s.ctx, "user-2", "B", "b.", "info")

	rows, err := s.service.Inbox(s.asUser("user-1"))
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal("A", rows[0].Title)
}

func (s *NotificationServiceSuite) TestMarkRead() {
	s.service.Notify(s.ctx, "user-1", "A", "a.", "info")
	rows, err := s.service.Inbox(s.asUser("user-1"))
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	id := rows[0].ID

	s.Run("owner can mark read", func() {
		updated, err := s.service.MarkRead(s.asUser("user-1"), id)
		s.Require().NoError(err)
		s.True(updated.IsRead)
	})

	s.Run("other user is denied", func() {
		_, err := s.service.MarkRead(s.asUser("user-2"), id)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
		s.Equal("Unauthorized", dErrors.Detail(err))
	})

	s.Run("unknown id is a 404", func() {
		_, err := s.service.MarkRead(s.asUser("user-1"), "missing")
		s.Require().Error(err)
		s.Equal("Notification not found", dErrors.Detail(err))
	})
}

func (s *NotificationServiceSuite) TestMarkAllRead() {
	s.service.Notify(s.ctx, "user-1", "A", "a.", "info")
	s.service.Notify(s.ctx, "user-1", "B", "b.", "info")
	s.service.Notify(s.ctx, "user-2", "C", "c.", "info")

	s.Require().NoError(s.service.MarkAllRead(s.asUser("user-1")))

	rows, err := s.service.Inbox(s.asUser("user-1"))
	s.Require().NoError(err)
	for _, n := range rows {
		s.True(n.IsRead)
	}

	// Other inboxes untouched.
	rows, err = s.service.Inbox(s.asUser("user-2"))
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.False(rows[0].IsRead)
}
