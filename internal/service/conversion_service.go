package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"shopbooks/internal/domain"
	"shopbooks/internal/numbering"
	"shopbooks/internal/port"
)

// ConversionService turns documents into their downstream counterparts:
// a sales order into a sales invoice within one company, and a sales invoice
// into a purchase invoice in another company's books. Each source converts
// exactly once; concurrent attempts race for a claim on the source and the
// losers either receive the already-created target or a conflict.
type ConversionService interface {
	ConvertOrderToInvoice(ctx context.Context, companyID, orderID uuid.UUID, actor string) (*domain.Document, error)
	ConvertInvoiceToPurchase(ctx context.Context, sourceCompanyID, invoiceID, targetCompanyID uuid.UUID, actor string) (*domain.Document, error)
}

type conversionService struct {
	docs      port.DocumentRepository
	companies port.CompanyRepository
	parties   port.PartyRepository
	items     port.ItemRepository
	stock     port.StockAdjuster
	allocator *numbering.Allocator
}

// NewConversionService wires a ConversionService.
func NewConversionService(
	docs port.DocumentRepository,
	companies port.CompanyRepository,
	parties port.PartyRepository,
	items port.ItemRepository,
	stock port.StockAdjuster,
	allocator *numbering.Allocator,
) ConversionService {
	return &conversionService{
		docs:      docs,
		companies: companies,
		parties:   parties,
		items:     items,
		stock:     stock,
		allocator: allocator,
	}
}

func (s *conversionService) ConvertOrderToInvoice(ctx context.Context, companyID, orderID uuid.UUID, actor string) (*domain.Document, error) {
	source, err := s.docs.GetByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	if source.Type != domain.DocTypeSalesOrder {
		return nil, domain.NewValidationError("id", "only sales orders convert to invoices")
	}

	if err := s.claim(ctx, companyID, source, actor); err != nil {
		if errors.Is(err, domain.ErrAlreadyConverted) {
			return s.existingTarget(ctx, companyID, companyID, orderID)
		}
		return nil, err
	}

	target := deriveTarget(source, companyID, source.PartyID, domain.DocTypeSale, actor)
	if err := s.finishConversion(ctx, source, target); err != nil {
		return nil, err
	}

	applyStockAdjustments(ctx, s.stock, s.items, target)
	return target, nil
}

func (s *conversionService) ConvertInvoiceToPurchase(ctx context.Context, sourceCompanyID, invoiceID, targetCompanyID uuid.UUID, actor string) (*domain.Document, error) {
	if sourceCompanyID == targetCompanyID {
		return nil, domain.ErrSameCompanyConversion
	}

	source, err := s.docs.GetByID(ctx, sourceCompanyID, invoiceID)
	if err != nil {
		return nil, err
	}
	if source.Type != domain.DocTypeSale {
		return nil, domain.NewValidationError("id", "only sales invoices convert to purchase invoices")
	}

	sourceCompany, err := s.companies.GetByID(ctx, sourceCompanyID)
	if err != nil {
		return nil, err
	}
	if _, err := s.companies.GetByID(ctx, targetCompanyID); err != nil {
		return nil, err
	}

	supplier, err := s.findOrCreateSupplier(ctx, targetCompanyID, sourceCompany)
	if err != nil {
		return nil, err
	}

	if err := s.claim(ctx, sourceCompanyID, source, actor); err != nil {
		if errors.Is(err, domain.ErrAlreadyConverted) {
			return s.existingTarget(ctx, sourceCompanyID, targetCompanyID, invoiceID)
		}
		return nil, err
	}

	target := deriveTarget(source, targetCompanyID, supplier.ID, domain.DocTypePurchase, actor)
	// The buyer's books have no catalog entries for the seller's items, so
	// lines carry over by name only and no stock moves on this side.
	for i := range target.Items {
		target.Items[i].ItemID = nil
	}
	if err := s.finishConversion(ctx, source, target); err != nil {
		return nil, err
	}
	return target, nil
}

// claim takes the source's one-shot conversion claim, translating an
// in-flight claim (converted but no target yet) into ErrConversionInProgress.
func (s *conversionService) claim(ctx context.Context, companyID uuid.UUID, source *domain.Document, actor string) error {
	err := s.docs.ClaimConversion(ctx, companyID, source.ID, actor)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrAlreadyConverted) {
		fresh, rerr := s.docs.GetByID(ctx, companyID, source.ID)
		if rerr != nil {
			return rerr
		}
		if fresh.Conversion.TargetID == nil {
			return domain.ErrConversionInProgress
		}
	}
	return err
}

// existingTarget resolves the target a finished conversion already produced.
func (s *conversionService) existingTarget(ctx context.Context, sourceCompanyID, targetCompanyID, sourceID uuid.UUID) (*domain.Document, error) {
	source, err := s.docs.GetByID(ctx, sourceCompanyID, sourceID)
	if err != nil {
		return nil, err
	}
	if source.Conversion.TargetID == nil {
		return nil, domain.ErrConversionInProgress
	}
	return s.docs.GetByID(ctx, targetCompanyID, *source.Conversion.TargetID)
}

// deriveTarget copies the source's financial content into a new document of
// the given type. Amounts are carried verbatim, never recalculated, so the
// two documents always agree to the paisa.
func deriveTarget(source *domain.Document, companyID, partyID uuid.UUID, docType domain.DocumentType, actor string) *domain.Document {
	now := time.Now().UTC()
	target := &domain.Document{
		ID:              uuid.New(),
		CompanyID:       companyID,
		PartyID:         partyID,
		Type:            docType,
		Date:            now,
		Status:          domain.DocStatusCompleted,
		GSTEnabled:      source.GSTEnabled,
		RoundOffEnabled: source.RoundOffEnabled,
		Notes:           source.Notes,
		Totals:          source.Totals,
		Payment: domain.PaymentInfo{
			Method:        source.Payment.Method,
			Status:        source.Payment.Status,
			PaidAmount:    source.Payment.PaidAmount,
			PendingAmount: source.Payment.PendingAmount,
			PaymentDate:   source.Payment.PaymentDate,
			DueDate:       source.Payment.DueDate,
			CreditDays:    source.Payment.CreditDays,
		},
		Conversion: domain.ConversionLink{
			SourceID:   &source.ID,
			SourceType: source.Type,
		},
		CreatedBy: actor,
	}
	if target.Payment.Status == domain.PaymentStatusOverdue {
		target.Payment.Status = domain.PaymentStatusPartial
		if !target.Payment.PaidAmount.IsPositive() {
			target.Payment.Status = domain.PaymentStatusPending
		}
	}

	target.Items = make([]domain.LineItem, len(source.Items))
	for i, line := range source.Items {
		line.ID = uuid.New()
		line.DocumentID = target.ID
		target.Items[i] = line
	}

	if target.Payment.PaidAmount.IsPositive() {
		target.PaymentHistory = append(target.PaymentHistory, domain.PaymentEntry{
			ID:          uuid.New(),
			Amount:      target.Payment.PaidAmount,
			Method:      target.Payment.Method,
			Reference:   fmt.Sprintf("carried over from %s", source.Number),
			PaymentDate: now,
			CreatedAt:   now,
			CreatedBy:   actor,
		})
	}
	return target
}

// finishConversion numbers the target and commits it together with the
// source's link. Any failure releases the claim so the source stays
// convertible.
func (s *conversionService) finishConversion(ctx context.Context, source, target *domain.Document) error {
	err := s.createNumbered(ctx, source, target)
	if err != nil {
		if rerr := s.docs.ReleaseConversion(ctx, source.ID); rerr != nil {
			log.Printf("conversionService.finishConversion: releasing claim on %s failed: %v", source.Number, rerr)
		}
		return err
	}

	now := time.Now().UTC()
	source.Conversion.Converted = true
	source.Conversion.ConvertedAt = &now
	source.Conversion.TargetID = &target.ID
	source.Conversion.TargetType = target.Type
	return nil
}

func (s *conversionService) createNumbered(ctx context.Context, source, target *domain.Document) error {
	date := target.Date
	number, err := s.allocator.Allocate(ctx, target.CompanyID, target.Type, target.GSTEnabled, date)
	if err != nil {
		if errors.Is(err, domain.ErrSequenceExhausted) {
			return err
		}
		log.Printf("conversionService.createNumbered: allocator failed, using fallback number: %v", err)
		number = numbering.FallbackNumber(target.Type, target.GSTEnabled, date, time.Now().UTC())
		target.NumberFallback = true
	}
	target.Number = number

	err = s.docs.CreateConverted(ctx, target, source)
	if !errors.Is(err, domain.ErrNumberConflict) {
		return err
	}

	log.Printf("conversionService.createNumbered: number %s conflicted, re-allocating", target.Number)
	number, err = s.allocator.Allocate(ctx, target.CompanyID, target.Type, target.GSTEnabled, date)
	if err != nil {
		return err
	}
	target.Number = number
	return s.docs.CreateConverted(ctx, target, source)
}

// findOrCreateSupplier resolves the seller's standing as a supplier in the
// buyer's directory, keyed by the seller company's ID. Created suppliers get
// a synthesized phone; on a phone collision the full company ID is used, and
// a losing concurrent create falls back to the winner's row.
func (s *conversionService) findOrCreateSupplier(ctx context.Context, targetCompanyID uuid.UUID, sourceCompany *domain.Company) (*domain.Party, error) {
	party, err := s.parties.FindByExternalRef(ctx, targetCompanyID, sourceCompany.ID)
	if err == nil {
		return party, nil
	}
	if !errors.Is(err, domain.ErrPartyNotFound) {
		return nil, err
	}

	ref := sourceCompany.ID
	party = &domain.Party{
		ID:          uuid.New(),
		CompanyID:   targetCompanyID,
		Kind:        domain.PartyKindSupplier,
		Name:        sourceCompany.Name,
		Phone:       fmt.Sprintf("ext-%.8s", sourceCompany.ID.String()),
		GSTIN:       sourceCompany.GSTIN,
		ExternalRef: &ref,
	}
	err = s.parties.Create(ctx, party)
	if errors.Is(err, domain.ErrDuplicatePartyPhone) {
		party.ID = uuid.New()
		party.Phone = fmt.Sprintf("ext-%s", sourceCompany.ID.String())
		err = s.parties.Create(ctx, party)
	}
	if errors.Is(err, domain.ErrDuplicatePartyPhone) {
		// A concurrent conversion created the supplier first.
		return s.parties.FindByExternalRef(ctx, targetCompanyID, sourceCompany.ID)
	}
	if err != nil {
		return nil, err
	}
	return party, nil
}
