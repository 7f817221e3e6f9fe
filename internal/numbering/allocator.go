// Package numbering allocates human-readable document numbers of the form
// {PREFIX}-{YYYYMMDD}-{SEQ4}, unique per (company, prefix, day).
package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"shopbooks/internal/domain"
	"shopbooks/internal/port"
)

// maxSequence is the highest number a 4-digit sequence can carry. Beyond it
// the allocator fails loudly rather than widening or wrapping.
const maxSequence = 9999

// dayFormat is the date segment of a document number.
const dayFormat = "20060102"

// Allocator produces sequential document numbers backed by an atomic
// SequenceStore. It never reads the current maximum and increments it;
// the store's single-statement increment is the only source of sequence
// values, which keeps concurrent allocations collision-free.
type Allocator struct {
	store port.SequenceStore
}

// NewAllocator creates an Allocator over the given store.
func NewAllocator(store port.SequenceStore) *Allocator {
	return &Allocator{store: store}
}

// Allocate returns the next document number for the company, document type,
// and date. Returns domain.ErrSequenceExhausted once the day's 4-digit
// sequence is used up.
func (a *Allocator) Allocate(ctx context.Context, companyID uuid.UUID, docType domain.DocumentType, gstEnabled bool, date time.Time) (string, error) {
	prefix := domain.NumberPrefix(docType, gstEnabled)
	seq, err := a.store.Next(ctx, companyID, prefix, date)
	if err != nil {
		return "", fmt.Errorf("allocating sequence for %s/%s: %w", companyID, prefix, err)
	}
	if seq > maxSequence {
		return "", domain.ErrSequenceExhausted
	}
	return Format(prefix, date, seq), nil
}

// Format renders a number in the canonical {PREFIX}-{YYYYMMDD}-{SEQ4} shape.
func Format(prefix string, date time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, date.Format(dayFormat), seq)
}

// FallbackNumber builds a timestamp-suffixed number for use when the store is
// unavailable. Callers must flag the document (NumberFallback) so the number
// can be reconciled later; the FB marker keeps it visually distinct.
func FallbackNumber(docType domain.DocumentType, gstEnabled bool, date, now time.Time) string {
	prefix := domain.NumberPrefix(docType, gstEnabled)
	return fmt.Sprintf("%s-%s-FB%d", prefix, date.Format(dayFormat), now.UnixMilli())
}
