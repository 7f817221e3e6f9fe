package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"shopbooks/internal/domain"
	"shopbooks/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

// documentRow is the flat persistence shape of a document. The domain model
// nests totals, payment, and conversion; sqlx scans flat rows, so the nested
// structs are embedded here and flattened by their db tags.
type documentRow struct {
	ID              uuid.UUID             `db:"id"`
	CompanyID       uuid.UUID             `db:"company_id"`
	PartyID         uuid.UUID             `db:"party_id"`
	Type            domain.DocumentType   `db:"doc_type"`
	Number          string                `db:"number"`
	NumberFallback  bool                  `db:"number_fallback"`
	Date            time.Time             `db:"doc_date"`
	Status          domain.DocumentStatus `db:"status"`
	GSTEnabled      bool                  `db:"gst_enabled"`
	RoundOffEnabled bool                  `db:"round_off_enabled"`
	Notes           string                `db:"notes"`
	CancelReason    string                `db:"cancel_reason"`

	domain.Totals
	domain.PaymentInfo
	domain.ConversionLink

	CreatedBy string    `db:"created_by"`
	Version   int       `db:"version"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func rowFromDocument(doc *domain.Document) *documentRow {
	return &documentRow{
		ID:              doc.ID,
		CompanyID:       doc.CompanyID,
		PartyID:         doc.PartyID,
		Type:            doc.Type,
		Number:          doc.Number,
		NumberFallback:  doc.NumberFallback,
		Date:            doc.Date,
		Status:          doc.Status,
		GSTEnabled:      doc.GSTEnabled,
		RoundOffEnabled: doc.RoundOffEnabled,
		Notes:           doc.Notes,
		CancelReason:    doc.CancelReason,
		Totals:          doc.Totals,
		PaymentInfo:     doc.Payment,
		ConversionLink:  doc.Conversion,
		CreatedBy:       doc.CreatedBy,
		Version:         doc.Version,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

func (row *documentRow) toDocument() *domain.Document {
	return &domain.Document{
		ID:              row.ID,
		CompanyID:       row.CompanyID,
		PartyID:         row.PartyID,
		Type:            row.Type,
		Number:          row.Number,
		NumberFallback:  row.NumberFallback,
		Date:            row.Date,
		Status:          row.Status,
		GSTEnabled:      row.GSTEnabled,
		RoundOffEnabled: row.RoundOffEnabled,
		Notes:           row.Notes,
		CancelReason:    row.CancelReason,
		Totals:          row.Totals,
		Payment:         row.PaymentInfo,
		Conversion:      row.ConversionLink,
		CreatedBy:       row.CreatedBy,
		Version:         row.Version,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

const insertDocumentQuery = `
	INSERT INTO documents (
		id, company_id, party_id, doc_type, number, number_fallback, doc_date,
		status, gst_enabled, round_off_enabled, notes, cancel_reason,
		subtotal, total_discount, total_tax, total_taxable_amount, round_off, final_total,
		payment_method, payment_status, paid_amount, pending_amount, payment_date, due_date, credit_days,
		source_id, source_type, target_id, target_type, converted, converted_at, converted_by,
		created_by, version, created_at, updated_at
	) VALUES (
		:id, :company_id, :party_id, :doc_type, :number, :number_fallback, :doc_date,
		:status, :gst_enabled, :round_off_enabled, :notes, :cancel_reason,
		:subtotal, :total_discount, :total_tax, :total_taxable_amount, :round_off, :final_total,
		:payment_method, :payment_status, :paid_amount, :pending_amount, :payment_date, :due_date, :credit_days,
		:source_id, :source_type, :target_id, :target_type, :converted, :converted_at, :converted_by,
		:created_by, :version, :created_at, :updated_at
	)`

const insertLineItemQuery = `
	INSERT INTO document_items (
		id, document_id, position, item_id, name, quantity, unit, price_per_unit,
		tax_rate, tax_mode, discount_percent, discount_amount,
		taxable_amount, cgst, sgst, igst, line_total
	) VALUES (
		:id, :document_id, :position, :item_id, :name, :quantity, :unit, :price_per_unit,
		:tax_rate, :tax_mode, :discount_percent, :discount_amount,
		:taxable_amount, :cgst, :sgst, :igst, :line_total
	)`

const insertPaymentEntryQuery = `
	INSERT INTO payment_entries (
		id, document_id, amount, method, reference, payment_date, due_date, created_at, created_by
	) VALUES (
		:id, :document_id, :amount, :method, :reference, :payment_date, :due_date, :created_at, :created_by
	)`

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("documentRepo.Create begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertDocumentTx(ctx, tx, doc); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("documentRepo.Create commit: %w", err)
	}
	return nil
}

func insertDocumentTx(ctx context.Context, tx *sqlx.Tx, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Version == 0 {
		doc.Version = 1
	}

	if _, err := tx.NamedExecContext(ctx, insertDocumentQuery, rowFromDocument(doc)); err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "number") {
			return domain.ErrNumberConflict
		}
		return fmt.Errorf("documentRepo insert document: %w", err)
	}

	for i := range doc.Items {
		doc.Items[i].DocumentID = doc.ID
		doc.Items[i].Position = i
		if doc.Items[i].ID == uuid.Nil {
			doc.Items[i].ID = uuid.New()
		}
		if _, err := tx.NamedExecContext(ctx, insertLineItemQuery, doc.Items[i]); err != nil {
			return fmt.Errorf("documentRepo insert line %d: %w", i, err)
		}
	}

	for i := range doc.PaymentHistory {
		doc.PaymentHistory[i].DocumentID = doc.ID
		if doc.PaymentHistory[i].ID == uuid.Nil {
			doc.PaymentHistory[i].ID = uuid.New()
		}
		if _, err := tx.NamedExecContext(ctx, insertPaymentEntryQuery, doc.PaymentHistory[i]); err != nil {
			return fmt.Errorf("documentRepo insert payment entry: %w", err)
		}
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, companyID, docID uuid.UUID) (*domain.Document, error) {
	var row documentRow
	err := r.db.GetContext(ctx, &row,
		"SELECT * FROM documents WHERE id = $1 AND company_id = $2", docID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}

	doc := row.toDocument()
	if err := r.db.SelectContext(ctx, &doc.Items,
		"SELECT * FROM document_items WHERE document_id = $1 ORDER BY position", docID); err != nil {
		return nil, fmt.Errorf("documentRepo.GetByID items: %w", err)
	}
	if err := r.db.SelectContext(ctx, &doc.PaymentHistory,
		"SELECT * FROM payment_entries WHERE document_id = $1 ORDER BY created_at", docID); err != nil {
		return nil, fmt.Errorf("documentRepo.GetByID payment history: %w", err)
	}
	return doc, nil
}

func (r *documentRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, docType domain.DocumentType, offset, limit int) ([]domain.Document, int, error) {
	where := "WHERE company_id = $1"
	args := []any{companyID}
	if docType != "" {
		where += " AND doc_type = $2"
		args = append(args, docType)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM documents "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByCompany count: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM documents %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		where, limit, offset)
	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByCompany: %w", err)
	}

	docs := make([]domain.Document, 0, len(rows))
	for i := range rows {
		docs = append(docs, *rows[i].toDocument())
	}
	if err := r.attachItems(ctx, docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *documentRepo) attachItems(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(docs))
	byID := make(map[uuid.UUID]*domain.Document, len(docs))
	for i := range docs {
		ids = append(ids, docs[i].ID)
		byID[docs[i].ID] = &docs[i]
	}

	query, args, err := sqlx.In(
		"SELECT * FROM document_items WHERE document_id IN (?) ORDER BY document_id, position", ids)
	if err != nil {
		return fmt.Errorf("documentRepo.attachItems: %w", err)
	}
	var items []domain.LineItem
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("documentRepo.attachItems: %w", err)
	}
	for i := range items {
		if doc, ok := byID[items[i].DocumentID]; ok {
			doc.Items = append(doc.Items, items[i])
		}
	}
	return nil
}

func (r *documentRepo) UpdatePayment(ctx context.Context, doc *domain.Document, entry *domain.PaymentEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdatePayment begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE documents SET
			payment_method = $1, payment_status = $2, paid_amount = $3,
			pending_amount = $4, payment_date = $5, due_date = $6, credit_days = $7,
			version = version + 1, updated_at = NOW()
		 WHERE id = $8 AND company_id = $9 AND version = $10`,
		doc.Payment.Method, doc.Payment.Status, doc.Payment.PaidAmount,
		doc.Payment.PendingAmount, doc.Payment.PaymentDate, doc.Payment.DueDate,
		doc.Payment.CreditDays, doc.ID, doc.CompanyID, doc.Version)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdatePayment: %w", err)
	}
	if err := r.checkVersionWrite(ctx, tx, res, doc.ID); err != nil {
		return err
	}

	if entry != nil {
		entry.DocumentID = doc.ID
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if _, err := tx.NamedExecContext(ctx, insertPaymentEntryQuery, entry); err != nil {
			return fmt.Errorf("documentRepo.UpdatePayment entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("documentRepo.UpdatePayment commit: %w", err)
	}
	doc.Version++
	return nil
}

func (r *documentRepo) Cancel(ctx context.Context, doc *domain.Document, entry *domain.PaymentEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("documentRepo.Cancel begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE documents SET
			status = $1, cancel_reason = $2,
			payment_status = $3, paid_amount = $4, pending_amount = $5,
			version = version + 1, updated_at = NOW()
		 WHERE id = $6 AND company_id = $7 AND version = $8`,
		domain.DocStatusCancelled, doc.CancelReason,
		doc.Payment.Status, doc.Payment.PaidAmount, doc.Payment.PendingAmount,
		doc.ID, doc.CompanyID, doc.Version)
	if err != nil {
		return fmt.Errorf("documentRepo.Cancel: %w", err)
	}
	if err := r.checkVersionWrite(ctx, tx, res, doc.ID); err != nil {
		return err
	}

	if entry != nil {
		entry.DocumentID = doc.ID
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if _, err := tx.NamedExecContext(ctx, insertPaymentEntryQuery, entry); err != nil {
			return fmt.Errorf("documentRepo.Cancel reversal entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("documentRepo.Cancel commit: %w", err)
	}
	doc.Version++
	return nil
}

// checkVersionWrite distinguishes a stale version from a missing row after a
// version-guarded UPDATE touched nothing.
func (r *documentRepo) checkVersionWrite(ctx context.Context, tx *sqlx.Tx, res sql.Result, docID uuid.UUID) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("documentRepo rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}
	var exists bool
	if err := tx.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)", docID); err != nil {
		return fmt.Errorf("documentRepo version check: %w", err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}
	return domain.ErrVersionConflict
}

func (r *documentRepo) ClaimConversion(ctx context.Context, companyID, docID uuid.UUID, actor string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			converted = TRUE, converted_at = NOW(), converted_by = $1,
			version = version + 1, updated_at = NOW()
		 WHERE id = $2 AND company_id = $3 AND converted = FALSE AND status != $4`,
		actor, docID, companyID, domain.DocStatusCancelled)
	if err != nil {
		return fmt.Errorf("documentRepo.ClaimConversion: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("documentRepo.ClaimConversion rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var row documentRow
	err = r.db.GetContext(ctx, &row,
		"SELECT * FROM documents WHERE id = $1 AND company_id = $2", docID, companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrDocumentNotFound
		}
		return fmt.Errorf("documentRepo.ClaimConversion read: %w", err)
	}
	if row.Status == domain.DocStatusCancelled {
		return domain.ErrDocumentCancelled
	}
	return domain.ErrAlreadyConverted
}

func (r *documentRepo) ReleaseConversion(ctx context.Context, docID uuid.UUID) error {
	// Only an unfinished claim is releasable; once the target link is written
	// the conversion is committed and must stay converted.
	_, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			converted = FALSE, converted_at = NULL, converted_by = '',
			version = version + 1, updated_at = NOW()
		 WHERE id = $1 AND converted = TRUE AND target_id IS NULL`,
		docID)
	if err != nil {
		return fmt.Errorf("documentRepo.ReleaseConversion: %w", err)
	}
	return nil
}

func (r *documentRepo) CreateConverted(ctx context.Context, target, source *domain.Document) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("documentRepo.CreateConverted begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertDocumentTx(ctx, tx, target); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE documents SET
			target_id = $1, target_type = $2, updated_at = NOW()
		 WHERE id = $3 AND converted = TRUE AND target_id IS NULL`,
		target.ID, target.Type, source.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.CreateConverted link: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("documentRepo.CreateConverted rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrAlreadyConverted
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("documentRepo.CreateConverted commit: %w", err)
	}
	return nil
}
