package notice

import "context"

type Store interface {
	Create(ctx context.Context, n Notice) error
	FindByID(ctx context.Context, id string) (Notice, error)
	Update(ctx context.Context, n Notice) error
	Delete(ctx context.Context, id string) error
	// List returns notices newest-first, restricted to published rows when
	// publishedOnly is set.
	List(ctx context.Context, publishedOnly bool) ([]Notice, error)

	// Search matches title and content substrings.
	Search(ctx context.Context, term string, limit int) ([]Notice, error)
}
