package ledger

import (
	"context"
	"time"
)

// Filter narrows movement log queries. Zero value means "everything".
type Filter struct {
	// TrxType filters by direction when non-empty.
	TrxType MovementType

	// BundleCode selects all movements of one submitted transaction.
	BundleCode string

	// FromDate/ToDate bound created_at (inclusive, UTC calendar-date
	// granularity).
	FromDate *time.Time
	ToDate   *time.Time

	// Limit caps the result set; 0 means no limit.
	Limit int

	// NewestFirst orders by created_at descending (dashboard view).
	NewestFirst bool
}

// Repository defines persistence operations for the movement log.
// Append is the only write; prior records are never mutated.
type Repository interface {
	// Append writes one immutable movement record.
	Append(ctx context.Context, m *Movement) error

	// List returns movements matching the filter, ordered by created_at.
	List(ctx context.Context, filter Filter) ([]Movement, error)

	// ExistsTrxCode reports whether any movement carries the given trx code.
	ExistsTrxCode(ctx context.Context, code string) (bool, error)

	// Count returns the number of movement records.
	Count(ctx context.Context) (int, error)
}
