package notification

import "context"

type Store interface {
	Create(ctx context.Context, n Notification) error
	FindByID(ctx context.Context, id string) (Notification, error)
	// ListByUser returns the user's newest rows, capped at limit.
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id string) (Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
}
