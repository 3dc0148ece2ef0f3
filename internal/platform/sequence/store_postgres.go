package sequence

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresAllocator persists counters in the sequence_counters table. The
// single upsert-RETURNING statement makes allocation atomic under concurrent
// submissions.
type PostgresAllocator struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresAllocator {
	return &PostgresAllocator{db: db}
}

func (a *PostgresAllocator) Next(ctx context.Context, prefix string, year int) (int, error) {
	query := `
		INSERT INTO sequence_counters (prefix, year, next_value)
		VALUES ($1, $2, $3 + 1)
		ON CONFLICT (prefix, year) DO UPDATE SET
			next_value = sequence_counters.next_value + 1
		RETURNING next_value - 1
	`
	var n int
	if err := a.db.QueryRowContext(ctx, query, prefix, year, Start).Scan(&n); err != nil {
		return 0, fmt.Errorf("allocate sequence number: %w", err)
	}
	return n, nil
}
