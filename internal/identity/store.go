package identity

import (
	"context"
	"time"
)

// ListFilter narrows a paginated user listing.
type ListFilter struct {
	Role   Role
	Query  string
	Offset int
	Limit  int
}

// Store is the persistence contract for users and their profiles. Both the
// in-memory and postgres implementations satisfy it; services depend only on
// this interface.
type Store interface {
	// Create inserts a user together with its optional profile atomically.
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	Update(ctx context.Context, user User) error
	SetActive(ctx context.Context, id string, active bool) error

	// List returns a page of users plus the unpaginated total.
	List(ctx context.Context, filter ListFilter) ([]User, int, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
	// Refs resolves display names for a set of user IDs.
	Refs(ctx context.Context, ids []string) (map[string]Ref, error)

	// Aggregates for the dashboard and reports.
	CountCitizens(ctx context.Context, activeOnly bool) (int, error)
	CountCitizensCreatedBetween(ctx context.Context, from, to time.Time) (int, error)
	CountByRole(ctx context.Context) (map[Role]int, error)

	// SearchCitizens matches name/email/mobile substrings, citizen role only.
	SearchCitizens(ctx context.Context, term string, limit int) ([]User, error)
}
