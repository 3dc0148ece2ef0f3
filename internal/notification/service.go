package notification

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"panchayat/internal/platform/metrics"
	dErrors "panchayat/pkg/domain-errors"
	"panchayat/pkg/platform/sentinel"
	"panchayat/pkg/requestcontext"
)

// Service owns the per-user inbox plus the fire-and-forget fan-out hook the
// workflow services call on transitions.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(store Store, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{store: store, logger: logger, metrics: m}
}

// Notify creates an inbox row for userID. Failures are logged and swallowed:
// a lost notification must never fail the workflow transition that caused it.
func (s *Service) Notify(ctx context.Context, userID, title, message, kind string) {
	if userID == "" {
		return
	}
	if kind == "" {
		kind = "info"
	}
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      kind,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, n); err != nil {
		if s.metrics != nil {
			s.metrics.NotificationFanoutErrors.Inc()
		}
		s.logger.WarnContext(ctx, "failed to create notification",
			"user_id", userID,
			"title", title,
			"error", err,
		)
		return
	}
	if s.metrics != nil {
		s.metrics.NotificationsCreated.Inc()
	}
}

// Inbox returns the caller's newest notifications.
func (s *Service) Inbox(ctx context.Context) ([]Notification, error) {
	rows, err := s.store.ListByUser(ctx, requestcontext.UserID(ctx), InboxLimit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list notifications")
	}
	if rows == nil {
		rows = []Notification{}
	}
	return rows, nil
}

// MarkRead sets the read flag on one of the caller's own rows.
func (s *Service) MarkRead(ctx context.Context, id string) (Notification, error) {
	n, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Notification{}, dErrors.New(dErrors.CodeNotFound, "Notification not found")
		}
		return Notification{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notification")
	}
	if n.UserID != requestcontext.UserID(ctx) {
		return Notification{}, dErrors.New(dErrors.CodeForbidden, "Unauthorized")
	}
	updated, err := s.store.MarkRead(ctx, id)
	if err != nil {
		return Notification{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notification read")
	}
	return updated, nil
}

func (s *Service) MarkAllRead(ctx context.Context) error {
	if err := s.store.MarkAllRead(ctx, requestcontext.UserID(ctx)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark notifications read")
	}
	return nil
}
