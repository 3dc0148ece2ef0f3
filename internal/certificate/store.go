package certificate

import (
	"context"
	"time"
)

type Store interface {
	Create(ctx context.Context, cert Certificate) error
	FindByID(ctx context.Context, id string) (Certificate, error)
	Update(ctx context.Context, cert Certificate) error
	// List returns certificates newest-first. Empty citizenID means all;
	// limit <= 0 means no cap.
	List(ctx context.Context, citizenID string, limit int) ([]Certificate, error)

	// Aggregates for the dashboard.
	CountByStatus(ctx context.Context) (map[string]int, error)
	// CountApprovedProcessedBetween counts approved certificates whose
	// processing timestamp falls in [from, to).
	CountApprovedProcessedBetween(ctx context.Context, from, to time.Time) (int, error)
	// DistinctCitizens counts citizens with at least one application.
	DistinctCitizens(ctx context.Context) (int, error)

	// Search matches application number and type substrings, or any
	// certificate owned by one of the given citizens.
	Search(ctx context.Context, term string, citizenIDs []string, limit int) ([]Certificate, error)
}
