package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shopbooks/internal/port"
)

type sequenceRepo struct {
	db *sqlx.DB
}

// NewSequenceRepo creates a PostgreSQL-backed SequenceStore.
func NewSequenceRepo(db *sqlx.DB) port.SequenceStore {
	return &sequenceRepo{db: db}
}

// Next increments and returns the counter for (company, prefix, day) in a
// single statement. The upsert's RETURNING makes the read-modify-write atomic
// on the database side, so two concurrent callers always see distinct values.
func (r *sequenceRepo) Next(ctx context.Context, companyID uuid.UUID, prefix string, day time.Time) (int64, error) {
	var seq int64
	err := r.db.GetContext(ctx, &seq,
		`INSERT INTO document_sequences (company_id, prefix, seq_day, last_value)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (company_id, prefix, seq_day)
		 DO UPDATE SET last_value = document_sequences.last_value + 1
		 RETURNING last_value`,
		companyID, prefix, day.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("sequenceRepo.Next: %w", err)
	}
	return seq, nil
}
