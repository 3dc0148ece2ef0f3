package revenue

import (
	"context"
	"time"
)

// Record is a single revenue collection entry. Month and Year index the
// accounting period; CollectedAt is the actual collection timestamp.
type Record struct {
	ID            string    `json:"id"`
	Amount        float64   `json:"amount"`
	Category      string    `json:"category"`
	Description   string    `json:"description,omitempty"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	CollectedAt   time.Time `json:"collected_at"`
	CollectedByID string    `json:"collected_by_id,omitempty"`
}

type Store interface {
	Create(ctx context.Context, r Record) error
	// List returns records newest-first by collection time; limit <= 0
	// means no cap.
	List(ctx context.Context, limit int) ([]Record, error)
	SumAll(ctx context.Context) (float64, error)
	SumForMonth(ctx context.Context, month, year int) (float64, error)
}
