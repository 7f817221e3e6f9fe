package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopbooks/internal/domain"
	"shopbooks/internal/gst"
	"shopbooks/internal/numbering"
	"shopbooks/internal/payment"
	"shopbooks/internal/port"
)

// DocumentLineRequest is one requested document line.
type DocumentLineRequest struct {
	ItemID          *uuid.UUID
	Name            string
	Quantity        decimal.Decimal
	Unit            string
	PricePerUnit    decimal.Decimal
	TaxRate         decimal.Decimal
	TaxMode         domain.TaxMode
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
}

// CreateDocumentRequest carries everything needed to create a document.
// GSTEnabled overrides the company default when set.
type CreateDocumentRequest struct {
	Type            domain.DocumentType
	PartyID         uuid.UUID
	Date            time.Time
	GSTEnabled      *bool
	RoundOffEnabled bool
	RoundOff        decimal.Decimal
	Notes           string
	PaymentMethod   string
	PaidAmount      decimal.Decimal
	CreditDays      int
	DueDate         *time.Time
	Lines           []DocumentLineRequest
	CreatedBy       string
}

// StockChange reports one inventory movement made for a document.
type StockChange struct {
	ItemID         uuid.UUID       `json:"item_id"`
	Delta          decimal.Decimal `json:"delta"`
	NewStock       decimal.Decimal `json:"new_stock"`
	Fallback       bool            `json:"fallback"`
	AlreadyApplied bool            `json:"already_applied"`
}

// CreateDocumentResult is a created document plus the stock movements it caused.
type CreateDocumentResult struct {
	Document     *domain.Document `json:"document"`
	StockChanges []StockChange    `json:"stock_changes"`
}

// DocumentService creates, reads, and cancels documents.
type DocumentService interface {
	Create(ctx context.Context, companyID uuid.UUID, req CreateDocumentRequest) (*CreateDocumentResult, error)
	GetByID(ctx context.Context, companyID, docID uuid.UUID) (*domain.Document, error)
	List(ctx context.Context, companyID uuid.UUID, docType domain.DocumentType, page, pageSize int) ([]domain.Document, int, error)
	Cancel(ctx context.Context, companyID, docID uuid.UUID, reason, actor string) (*domain.Document, error)
}

type documentService struct {
	docs      port.DocumentRepository
	companies port.CompanyRepository
	parties   port.PartyRepository
	items     port.ItemRepository
	stock     port.StockAdjuster
	allocator *numbering.Allocator
	email     port.EmailSender
}

// NewDocumentService wires a DocumentService.
func NewDocumentService(
	docs port.DocumentRepository,
	companies port.CompanyRepository,
	parties port.PartyRepository,
	items port.ItemRepository,
	stock port.StockAdjuster,
	allocator *numbering.Allocator,
	email port.EmailSender,
) DocumentService {
	return &documentService{
		docs:      docs,
		companies: companies,
		parties:   parties,
		items:     items,
		stock:     stock,
		allocator: allocator,
		email:     email,
	}
}

func (s *documentService) Create(ctx context.Context, companyID uuid.UUID, req CreateDocumentRequest) (*CreateDocumentResult, error) {
	if !domain.ValidDocumentTypes[req.Type] {
		return nil, domain.NewValidationError("type", "unknown document type")
	}
	if len(req.Lines) == 0 {
		return nil, domain.NewValidationError("items", "at least one line item is required")
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	party, err := s.parties.GetByID(ctx, companyID, req.PartyID)
	if err != nil {
		return nil, err
	}

	gstEnabled := company.GSTEnabled
	if req.GSTEnabled != nil {
		gstEnabled = *req.GSTEnabled
	}
	date := req.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	doc, err := buildDocument(companyID, party.ID, req, gstEnabled, date)
	if err != nil {
		return nil, err
	}

	if err := s.assignNumber(ctx, doc, date); err != nil {
		return nil, err
	}
	if err := s.persistWithRetry(ctx, doc, date); err != nil {
		return nil, err
	}

	changes := applyStockAdjustments(ctx, s.stock, s.items, doc)

	if doc.Payment.PaidAmount.IsPositive() && party.Email != "" {
		if err := s.email.SendPaymentReceipt(ctx, party.Email, party.Name, doc.Number,
			doc.Payment.PaidAmount.StringFixed(2), doc.Payment.PendingAmount.StringFixed(2)); err != nil {
			log.Printf("documentService.Create: payment receipt for %s failed: %v", doc.Number, err)
		}
	}

	return &CreateDocumentResult{Document: doc, StockChanges: changes}, nil
}

// buildDocument runs the full calculation pipeline and assembles the document,
// leaving the number unassigned.
func buildDocument(companyID, partyID uuid.UUID, req CreateDocumentRequest, gstEnabled bool, date time.Time) (*domain.Document, error) {
	inputs := make([]gst.LineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		inputs = append(inputs, gst.LineInput{
			Quantity:        l.Quantity,
			PricePerUnit:    l.PricePerUnit,
			DiscountPercent: l.DiscountPercent,
			DiscountAmount:  l.DiscountAmount,
			TaxRate:         l.TaxRate,
			TaxMode:         l.TaxMode,
		})
	}
	results, err := gst.CalculateLines(inputs, gstEnabled)
	if err != nil {
		return nil, err
	}
	totals := gst.Aggregate(results, req.RoundOff, req.RoundOffEnabled)

	items := make([]domain.LineItem, 0, len(req.Lines))
	for i, l := range req.Lines {
		r := results[i].Rounded()
		items = append(items, domain.LineItem{
			ID:              uuid.New(),
			Position:        i,
			ItemID:          l.ItemID,
			Name:            l.Name,
			Quantity:        l.Quantity,
			Unit:            l.Unit,
			PricePerUnit:    l.PricePerUnit,
			TaxRate:         l.TaxRate,
			TaxMode:         l.TaxMode,
			DiscountPercent: l.DiscountPercent,
			DiscountAmount:  l.DiscountAmount,
			TaxableAmount:   r.TaxableAmount,
			CGST:            r.CGST,
			SGST:            r.SGST,
			IGST:            r.IGST,
			LineTotal:       r.LineTotal,
		})
	}
	if err := gst.CheckTotals(items, totals); err != nil {
		return nil, err
	}

	doc := &domain.Document{
		ID:              uuid.New(),
		CompanyID:       companyID,
		PartyID:         partyID,
		Type:            req.Type,
		Date:            date,
		Status:          domain.DocStatusCompleted,
		GSTEnabled:      gstEnabled,
		RoundOffEnabled: req.RoundOffEnabled,
		Notes:           req.Notes,
		Totals:          totals,
		Items:           items,
		CreatedBy:       req.CreatedBy,
	}

	now := time.Now().UTC()
	dueDate := req.DueDate
	if dueDate == nil && req.CreditDays > 0 {
		d := payment.DueDateFrom(date, req.CreditDays)
		dueDate = &d
	}
	doc.Payment = domain.PaymentInfo{
		Method:        req.PaymentMethod,
		Status:        domain.PaymentStatusPending,
		PaidAmount:    decimal.Zero,
		PendingAmount: totals.FinalTotal,
		DueDate:       dueDate,
		CreditDays:    req.CreditDays,
	}

	if req.PaidAmount.IsPositive() {
		out, err := payment.Apply(totals.FinalTotal, decimal.Zero, req.PaidAmount, dueDate, now)
		if err != nil {
			return nil, err
		}
		doc.Payment.PaidAmount = out.PaidAmount
		doc.Payment.PendingAmount = out.PendingAmount
		doc.Payment.Status = out.Status
		doc.Payment.PaymentDate = &now
		if out.ClearDueDate {
			doc.Payment.DueDate = nil
		}
		doc.PaymentHistory = append(doc.PaymentHistory, domain.PaymentEntry{
			ID:          uuid.New(),
			Amount:      req.PaidAmount,
			Method:      req.PaymentMethod,
			PaymentDate: now,
			DueDate:     doc.Payment.DueDate,
			CreatedAt:   now,
			CreatedBy:   req.CreatedBy,
		})
	} else {
		doc.Payment.Status = payment.Derive(domain.PaymentStatusPending, decimal.Zero, totals.FinalTotal, dueDate, now)
	}

	return doc, nil
}

// assignNumber allocates a sequential number, falling back to a timestamped
// one when the sequence store itself is unreachable. Sequence exhaustion is
// a hard error, never a fallback.
func (s *documentService) assignNumber(ctx context.Context, doc *domain.Document, date time.Time) error {
	number, err := s.allocator.Allocate(ctx, doc.CompanyID, doc.Type, doc.GSTEnabled, date)
	if err == nil {
		doc.Number = number
		return nil
	}
	if errors.Is(err, domain.ErrSequenceExhausted) {
		return err
	}
	log.Printf("documentService.assignNumber: allocator failed, using fallback number: %v", err)
	doc.Number = numbering.FallbackNumber(doc.Type, doc.GSTEnabled, date, time.Now().UTC())
	doc.NumberFallback = true
	return nil
}

// persistWithRetry creates the document, re-allocating the number once if a
// concurrent writer took it first.
func (s *documentService) persistWithRetry(ctx context.Context, doc *domain.Document, date time.Time) error {
	err := s.docs.Create(ctx, doc)
	if !errors.Is(err, domain.ErrNumberConflict) {
		return err
	}
	log.Printf("documentService.persistWithRetry: number %s conflicted, re-allocating", doc.Number)
	if err := s.assignNumber(ctx, doc, date); err != nil {
		return err
	}
	return s.docs.Create(ctx, doc)
}

// stockDirection returns the stock delta sign and reason for a document type,
// or false when the type does not move stock (orders never do).
func stockDirection(t domain.DocumentType) (decimal.Decimal, domain.StockReason, bool) {
	switch t {
	case domain.DocTypeSale:
		return decimal.NewFromInt(-1), domain.StockReasonSale, true
	case domain.DocTypePurchase:
		return decimal.NewFromInt(1), domain.StockReasonPurchase, true
	default:
		return decimal.Zero, "", false
	}
}

// applyStockAdjustments moves stock for every catalog-linked line. Adjuster
// failures fall back to a direct item write; a failed fallback is logged and
// swallowed, because stock is a projection and the financial document stands.
func applyStockAdjustments(ctx context.Context, stock port.StockAdjuster, items port.ItemRepository, doc *domain.Document) []StockChange {
	sign, reason, moves := stockDirection(doc.Type)
	if !moves {
		return nil
	}

	var changes []StockChange
	for _, line := range doc.Items {
		if line.ItemID == nil {
			continue
		}
		delta := line.Quantity.Mul(sign)
		change := StockChange{ItemID: *line.ItemID, Delta: delta}

		res, err := stock.Adjust(ctx, port.StockAdjustment{
			CompanyID:   doc.CompanyID,
			ItemID:      *line.ItemID,
			Delta:       delta,
			Reason:      reason,
			ReferenceID: doc.ID,
		})
		if err == nil {
			change.NewStock = res.NewStock
			change.AlreadyApplied = res.AlreadyApplied
			changes = append(changes, change)
			continue
		}

		log.Printf("documentService.applyStockAdjustments: adjuster failed for item %s on %s, falling back: %v",
			line.ItemID, doc.Number, err)
		newStock, ferr := items.AdjustStock(ctx, doc.CompanyID, *line.ItemID, delta)
		if ferr != nil {
			log.Printf("documentService.applyStockAdjustments: fallback failed for item %s on %s: %v",
				line.ItemID, doc.Number, ferr)
			continue
		}
		change.NewStock = newStock
		change.Fallback = true
		changes = append(changes, change)
	}
	return changes
}

func (s *documentService) GetByID(ctx context.Context, companyID, docID uuid.UUID) (*domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, companyID, docID)
	if err != nil {
		return nil, err
	}
	refreshPaymentStatus(doc, time.Now().UTC())
	return doc, nil
}

func (s *documentService) List(ctx context.Context, companyID uuid.UUID, docType domain.DocumentType, page, pageSize int) ([]domain.Document, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	docs, total, err := s.docs.ListByCompany(ctx, companyID, docType, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	now := time.Now().UTC()
	for i := range docs {
		refreshPaymentStatus(&docs[i], now)
	}
	return docs, total, nil
}

// refreshPaymentStatus re-derives the display status so overdue appears and
// disappears without a write.
func refreshPaymentStatus(doc *domain.Document, now time.Time) {
	doc.Payment.Status = payment.Derive(
		doc.Payment.Status, doc.Payment.PaidAmount, doc.Payment.PendingAmount,
		doc.Payment.DueDate, now)
}

func (s *documentService) Cancel(ctx context.Context, companyID, docID uuid.UUID, reason, actor string) (*domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, companyID, docID)
	if err != nil {
		return nil, err
	}
	if err := s.cancelOnce(ctx, doc, reason, actor); err != nil {
		if !errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		// One retry on a concurrent write, against fresh state.
		doc, err = s.docs.GetByID(ctx, companyID, docID)
		if err != nil {
			return nil, err
		}
		if err := s.cancelOnce(ctx, doc, reason, actor); err != nil {
			return nil, err
		}
	}

	restoreStock(ctx, s.stock, s.items, doc)
	return doc, nil
}

func (s *documentService) cancelOnce(ctx context.Context, doc *domain.Document, reason, actor string) error {
	if doc.Status == domain.DocStatusCancelled {
		return domain.ErrDocumentCancelled
	}
	if doc.Payment.Status == domain.PaymentStatusPaid {
		return domain.ErrPaidDocumentCancellation
	}

	now := time.Now().UTC()
	var entry *domain.PaymentEntry
	if doc.Payment.PaidAmount.IsPositive() {
		entry = &domain.PaymentEntry{
			ID:          uuid.New(),
			Amount:      doc.Payment.PaidAmount.Neg(),
			Method:      doc.Payment.Method,
			Reference:   "cancellation reversal",
			PaymentDate: now,
			CreatedAt:   now,
			CreatedBy:   actor,
		}
	}

	doc.CancelReason = reason
	doc.Payment.Status = domain.PaymentStatusCancelled
	doc.Payment.PaidAmount = decimal.Zero
	doc.Payment.PendingAmount = decimal.Zero

	if err := s.docs.Cancel(ctx, doc, entry); err != nil {
		return err
	}
	doc.Status = domain.DocStatusCancelled
	if entry != nil {
		doc.PaymentHistory = append(doc.PaymentHistory, *entry)
	}
	return nil
}

// restoreStock reverses the document's stock movements under the cancel
// reason, so a retried cancellation cannot double-restore.
func restoreStock(ctx context.Context, stock port.StockAdjuster, items port.ItemRepository, doc *domain.Document) {
	sign, _, moves := stockDirection(doc.Type)
	if !moves {
		return
	}
	for _, line := range doc.Items {
		if line.ItemID == nil {
			continue
		}
		delta := line.Quantity.Mul(sign).Neg()
		_, err := stock.Adjust(ctx, port.StockAdjustment{
			CompanyID:   doc.CompanyID,
			ItemID:      *line.ItemID,
			Delta:       delta,
			Reason:      domain.StockReasonCancel,
			ReferenceID: doc.ID,
		})
		if err == nil {
			continue
		}
		log.Printf("documentService.restoreStock: adjuster failed for item %s on %s, falling back: %v",
			line.ItemID, doc.Number, err)
		if _, ferr := items.AdjustStock(ctx, doc.CompanyID, *line.ItemID, delta); ferr != nil {
			log.Printf("documentService.restoreStock: fallback failed for item %s on %s: %v",
				line.ItemID, doc.Number, ferr)
		}
	}
}
