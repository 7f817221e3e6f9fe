package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"shopbooks/internal/domain"
	"shopbooks/internal/port"
)

type stockRepo struct {
	db *sqlx.DB
}

// NewStockRepo creates the PostgreSQL-backed StockAdjuster. Each adjustment
// is recorded in a ledger keyed by (reference, item, reason); the stock column
// only moves when the ledger row is new, making retries at-most-once.
func NewStockRepo(db *sqlx.DB) port.StockAdjuster {
	return &stockRepo{db: db}
}

func (r *stockRepo) Adjust(ctx context.Context, adj port.StockAdjustment) (*port.StockResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("stockRepo.Adjust begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO stock_adjustments (id, company_id, item_id, reference_id, reason, delta, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (reference_id, item_id, reason) DO NOTHING`,
		uuid.New(), adj.CompanyID, adj.ItemID, adj.ReferenceID, adj.Reason, adj.Delta, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("stockRepo.Adjust ledger: %w", err)
	}

	inserted, _ := res.RowsAffected()
	if inserted == 0 {
		// Retried request: report current stock without moving it again.
		var stock decimal.Decimal
		if err := tx.GetContext(ctx, &stock,
			"SELECT stock FROM items WHERE id = $1 AND company_id = $2",
			adj.ItemID, adj.CompanyID); err != nil {
			return nil, fmt.Errorf("stockRepo.Adjust read stock: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("stockRepo.Adjust commit: %w", err)
		}
		return &port.StockResult{NewStock: stock, AlreadyApplied: true}, nil
	}

	var newStock decimal.Decimal
	err = tx.GetContext(ctx, &newStock,
		`UPDATE items SET stock = stock + $1, updated_at = NOW()
		 WHERE id = $2 AND company_id = $3
		 RETURNING stock`,
		adj.Delta, adj.ItemID, adj.CompanyID)
	if err != nil {
		return nil, translateNotFound(err, domain.ErrItemNotFound, "stockRepo.Adjust apply")
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("stockRepo.Adjust commit: %w", err)
	}
	return &port.StockResult{NewStock: newStock}, nil
}
