package port

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SequenceStore hands out monotonically increasing sequence numbers per
// (company, prefix, day) key. Next must be a single atomic increment-and-return
// so concurrent allocations never observe the same value.
type SequenceStore interface {
	Next(ctx context.Context, companyID uuid.UUID, prefix string, day time.Time) (int64, error)
}
