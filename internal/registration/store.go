package registration

import "context"

// Store is the persistence contract for registration requests.
type Store interface {
	Create(ctx context.Context, req Request) error
	FindByID(ctx context.Context, id string) (Request, error)
	// FindByEmail returns the newest request for an email, for the login
	// pending/rejected hints.
	FindByEmail(ctx context.Context, email string) (Request, error)
	// ExistsByEmailOrAadhaar backs the duplicate-identity check on signup.
	ExistsByEmailOrAadhaar(ctx context.Context, email, aadhaar string) (bool, error)
	Update(ctx context.Context, req Request) error
	// List returns requests newest-first, optionally filtered by status.
	List(ctx context.Context, status string) ([]Request, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}
