package complaint

import (
	"context"
	"time"
)

type Store interface {
	Create(ctx context.Context, c Complaint) error
	FindByID(ctx context.Context, id string) (Complaint, error)
	Update(ctx context.Context, c Complaint) error
	// List returns complaints newest-first. Empty citizenID means all;
	// limit <= 0 means no cap.
	List(ctx context.Context, citizenID string, limit int) ([]Complaint, error)

	// Aggregates for the dashboard.
	CountByStatus(ctx context.Context) (map[string]int, error)
	CountSubmittedBetween(ctx context.Context, from, to time.Time) (int, error)
	// CountResolvedSubmittedBetween counts resolved or closed complaints
	// submitted in [from, to).
	CountResolvedSubmittedBetween(ctx context.Context, from, to time.Time) (int, error)
	// CountOpenSubmittedBetween counts complaints submitted in [from, to)
	// still in open status.
	CountOpenSubmittedBetween(ctx context.Context, from, to time.Time) (int, error)

	// Search matches number, subject, type and description substrings, or
	// any complaint owned by one of the given citizens.
	Search(ctx context.Context, term string, citizenIDs []string, limit int) ([]Complaint, error)
}
