package scheme

import (
	"context"
	"time"
)

type Store interface {
	Create(ctx context.Context, s Scheme) error
	FindByID(ctx context.Context, id string) (Scheme, error)
	Update(ctx context.Context, s Scheme) error
	Delete(ctx context.Context, id string) error
	// List returns schemes newest-first.
	List(ctx context.Context) ([]Scheme, error)

	CreateApplication(ctx context.Context, a Application) error
	ListApplications(ctx context.Context, schemeID string) ([]Application, error)

	// Aggregates for the dashboard.
	FundTotals(ctx context.Context) (FundTotals, error)
	CountApplicationsByStatus(ctx context.Context) (map[string]int, error)
	// CountApprovedReviewedBetween counts approved applications reviewed
	// in [from, to).
	CountApprovedReviewedBetween(ctx context.Context, from, to time.Time) (int, error)
	CountApplicationsAppliedBetween(ctx context.Context, from, to time.Time) (int, error)
	// CountApprovedAppliedBetween counts approved applications submitted
	// in [from, to), regardless of when they were reviewed.
	CountApprovedAppliedBetween(ctx context.Context, from, to time.Time) (int, error)

	// Search matches scheme name and description substrings.
	Search(ctx context.Context, term string, limit int) ([]Scheme, error)
}
