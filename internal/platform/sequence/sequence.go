// Package sequence allocates the human-readable application and complaint
// numbers (CERT-<year>-<n>, COMP-<year>-<n>). Numbers come from a per
// (prefix, year) counter so concurrent submissions can never collide.
package sequence

import (
	"context"
	"fmt"
)

// Start keeps allocated numbers four digits wide for realistic volumes,
// matching the historical number shape.
const Start = 1000

// Allocator hands out the next number for a prefix within a year.
type Allocator interface {
	Next(ctx context.Context, prefix string, year int) (int, error)
}

// Format renders an allocated number in its wire shape.
func Format(prefix string, year, n int) string {
	return fmt.Sprintf("%s-%d-%d", prefix, year, n)
}
