package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"shopbooks/internal/domain"
	"shopbooks/internal/port"
)

type itemRepo struct {
	db *sqlx.DB
}

// NewItemRepo creates a PostgreSQL-backed ItemRepository.
func NewItemRepo(db *sqlx.DB) port.ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) GetByID(ctx context.Context, companyID, itemID uuid.UUID) (*domain.Item, error) {
	var it domain.Item
	err := r.db.GetContext(ctx, &it,
		"SELECT * FROM items WHERE id = $1 AND company_id = $2", itemID, companyID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrItemNotFound, "itemRepo.GetByID")
	}
	return &it, nil
}

// AdjustStock applies delta directly to the item's stock. This is the fallback
// path only; the idempotent StockAdjuster is the primary way stock moves.
func (r *itemRepo) AdjustStock(ctx context.Context, companyID, itemID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	var newStock decimal.Decimal
	err := r.db.GetContext(ctx, &newStock,
		`UPDATE items SET stock = stock + $1, updated_at = NOW()
		 WHERE id = $2 AND company_id = $3
		 RETURNING stock`,
		delta, itemID, companyID)
	if err != nil {
		return decimal.Zero, translateNotFound(err, domain.ErrItemNotFound, "itemRepo.AdjustStock")
	}
	return newStock, nil
}
