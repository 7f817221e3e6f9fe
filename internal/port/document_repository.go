package port

import (
	"context"

	"github.com/google/uuid"

	"shopbooks/internal/domain"
)

// DocumentRepository persists documents with their owned line items and
// payment history. Payment and conversion writes use optimistic concurrency
// on Document.Version; implementations return domain.ErrVersionConflict when
// the version moved underneath the caller.
type DocumentRepository interface {
	// Create inserts a document and its line items atomically. A unique
	// violation on (company, number) yields domain.ErrNumberConflict.
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, companyID, docID uuid.UUID) (*domain.Document, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, docType domain.DocumentType, offset, limit int) ([]domain.Document, int, error)

	// UpdatePayment writes the document's payment fields and appends a history
	// entry in one transaction, guarded by the document version.
	UpdatePayment(ctx context.Context, doc *domain.Document, entry *domain.PaymentEntry) error

	// Cancel writes the cancelled status plus zeroed payment fields and appends
	// the reversal history entry in one transaction, guarded by the version.
	Cancel(ctx context.Context, doc *domain.Document, entry *domain.PaymentEntry) error

	// ClaimConversion flips the source's converted flag from false to true.
	// Returns domain.ErrAlreadyConverted when another caller holds the claim.
	ClaimConversion(ctx context.Context, companyID, docID uuid.UUID, actor string) error
	// ReleaseConversion undoes a claim after a failed conversion.
	ReleaseConversion(ctx context.Context, docID uuid.UUID) error
	// CreateConverted inserts the target document and writes the source's
	// conversion link in a single transaction, so a target is never observable
	// without its source being marked converted.
	CreateConverted(ctx context.Context, target, source *domain.Document) error
}
