package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopbooks/internal/domain"
)

// StockAdjustment describes one inventory movement requested by the engine.
type StockAdjustment struct {
	CompanyID   uuid.UUID
	ItemID      uuid.UUID
	Delta       decimal.Decimal
	Reason      domain.StockReason
	ReferenceID uuid.UUID
}

// StockResult reports the outcome of an adjustment.
type StockResult struct {
	NewStock decimal.Decimal
	// AlreadyApplied is set when the (reference, item, reason) key was seen
	// before and the stock was left untouched.
	AlreadyApplied bool
}

// StockAdjuster is the inventory collaborator. Adjust must be idempotent per
// (ReferenceID, ItemID, Reason) so retried requests never double-apply.
type StockAdjuster interface {
	Adjust(ctx context.Context, adj StockAdjustment) (*StockResult, error)
}
