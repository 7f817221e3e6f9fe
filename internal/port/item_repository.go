package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopbooks/internal/domain"
)

// ItemRepository manages the item catalog. AdjustStock is the last-resort
// direct stock write used when the StockAdjuster collaborator fails; it
// carries no idempotency ledger of its own.
type ItemRepository interface {
	GetByID(ctx context.Context, companyID, itemID uuid.UUID) (*domain.Item, error)
	AdjustStock(ctx context.Context, companyID, itemID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}
