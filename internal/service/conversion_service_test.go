package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shopbooks/internal/domain"
	"shopbooks/internal/numbering"
	"shopbooks/internal/port"
	"shopbooks/internal/service"
	"shopbooks/mocks"
)

type conversionServiceFixture struct {
	docs      *mocks.MockDocumentRepo
	companies *mocks.MockCompanyRepo
	parties   *mocks.MockPartyRepo
	items     *mocks.MockItemRepo
	stock     *mocks.MockStockAdjuster
	seq       *mocks.MockSequenceStore
	svc       service.ConversionService

	companyID uuid.UUID
	partyID   uuid.UUID
	itemID    uuid.UUID
	sourceID  uuid.UUID
}

func newConversionServiceFixture() *conversionServiceFixture {
	f := &conversionServiceFixture{
		docs:      new(mocks.MockDocumentRepo),
		companies: new(mocks.MockCompanyRepo),
		parties:   new(mocks.MockPartyRepo),
		items:     new(mocks.MockItemRepo),
		stock:     new(mocks.MockStockAdjuster),
		seq:       new(mocks.MockSequenceStore),
		companyID: uuid.New(),
		partyID:   uuid.New(),
		itemID:    uuid.New(),
		sourceID:  uuid.New(),
	}
	f.svc = service.NewConversionService(
		f.docs, f.companies, f.parties, f.items, f.stock,
		numbering.NewAllocator(f.seq))
	return f
}

func (f *conversionServiceFixture) salesOrder() *domain.Document {
	return &domain.Document{
		ID:        f.sourceID,
		CompanyID: f.companyID,
		PartyID:   f.partyID,
		Type:      domain.DocTypeSalesOrder,
		Number:    "SO-20260830-0001",
		Status:    domain.DocStatusCompleted,
		Totals: domain.Totals{
			Subtotal:   dec("200"),
			TotalTax:   dec("36"),
			FinalTotal: dec("236"),
		},
		Payment: domain.PaymentInfo{
			Status:        domain.PaymentStatusPartial,
			PaidAmount:    dec("100"),
			PendingAmount: dec("136"),
			Method:        "upi",
		},
		Items: []domain.LineItem{
			{ID: uuid.New(), DocumentID: f.sourceID, ItemID: &f.itemID,
				Name: "Basmati Rice 5kg", Quantity: dec("2"), LineTotal: dec("236")},
		},
		Version: 1,
	}
}

func (f *conversionServiceFixture) salesInvoice() *domain.Document {
	doc := f.salesOrder()
	doc.Type = domain.DocTypeSale
	doc.Number = "INV-20260830-0001"
	return doc
}

func TestConversionService_OrderToInvoice_Success(t *testing.T) {
	f := newConversionServiceFixture()
	source := f.salesOrder()

	f.docs.On("GetByID", mock.Anything, f.companyID, f.sourceID).Return(source, nil)
	f.docs.On("ClaimConversion", mock.Anything, f.companyID, f.sourceID, "ramesh").Return(nil)
	f.seq.On("Next", mock.Anything, f.companyID, "INV", mock.Anything).Return(int64(1), nil)
	f.docs.On("CreateConverted", mock.Anything, mock.AnythingOfType("*domain.Document"), source).Return(nil)
	f.stock.On("Adjust", mock.Anything, mock.MatchedBy(func(adj port.StockAdjustment) bool {
		return adj.Reason == domain.StockReasonSale && adj.Delta.Equal(dec("-2"))
	})).Return(&port.StockResult{NewStock: dec("48")}, nil)

	invoice, err := f.svc.ConvertOrderToInvoice(context.Background(), f.companyID, f.sourceID, "ramesh")

	assert.NoError(t, err)
	assert.Equal(t, domain.DocTypeSale, invoice.Type)
	assert.True(t, strings.HasPrefix(invoice.Number, "INV-"))
	assert.Equal(t, "236.00", invoice.Totals.FinalTotal.StringFixed(2))
	assert.Equal(t, "100.00", invoice.Payment.PaidAmount.StringFixed(2))
	assert.Equal(t, f.sourceID, *invoice.Conversion.SourceID)
	assert.Equal(t, domain.DocTypeSalesOrder, invoice.Conversion.SourceType)
	assert.Len(t, invoice.PaymentHistory, 1)
	assert.Contains(t, invoice.PaymentHistory[0].Reference, "SO-20260830-0001")

	// The source now carries the forward link.
	assert.True(t, source.Conversion.Converted)
	assert.Equal(t, invoice.ID, *source.Conversion.TargetID)

	f.docs.AssertExpectations(t)
	f.stock.AssertExpectations(t)
}

func TestConversionService_OrderToInvoice_RepeatReturnsExistingTarget(t *testing.T) {
	f := newConversionServiceFixture()
	targetID := uuid.New()

	source := f.salesOrder()
	source.Conversion = domain.ConversionLink{Converted: true, TargetID: &targetID, TargetType: domain.DocTypeSale}
	existing := f.salesInvoice()
	existing.ID = targetID

	f.docs.On("GetByID", mock.Anything, f.companyID, f.sourceID).Return(source, nil)
	f.docs.On("ClaimConversion", mock.Anything, f.companyID, f.sourceID, "ramesh").
		Return(domain.ErrAlreadyConverted)
	f.docs.On("GetByID", mock.Anything, f.companyID, targetID).Return(existing, nil)

	got, err := f.svc.ConvertOrderToInvoice(context.Background(), f.companyID, f.sourceID, "ramesh")

	assert.NoError(t, err)
	assert.Equal(t, targetID, got.ID)
	f.docs.AssertNotCalled(t, "CreateConverted", mock.Anything, mock.Anything, mock.Anything)
}

func TestConversionService_OrderToInvoice_InProgressConflict(t *testing.T) {
	f := newConversionServiceFixture()

	source := f.salesOrder()
	source.Conversion = domain.ConversionLink{Converted: true} // claimed, no target yet

	f.docs.On("GetByID", mock.Anything, f.companyID, f.sourceID).Return(source, nil)
	f.docs.On("ClaimConversion", mock.Anything, f.companyID, f.sourceID, "ramesh").
		Return(domain.ErrAlreadyConverted)

	_, err := f.svc.ConvertOrderToInvoice(context.Background(), f.companyID, f.sourceID, "ramesh")
	assert.ErrorIs(t, err, domain.ErrConversionInProgress)
}

func TestConversionService_OrderToInvoice_WrongTypeRejected(t *testing.T) {
	f := newConversionServiceFixture()

	f.docs.On("GetByID", mock.Anything, f.companyID, f.sourceID).Return(f.salesInvoice(), nil)

	_, err := f.svc.ConvertOrderToInvoice(context.Background(), f.companyID, f.sourceID, "ramesh")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestConversionService_OrderToInvoice_FailureReleasesClaim(t *testing.T) {
	f := newConversionServiceFixture()
	source := f.salesOrder()

	f.docs.On("GetByID", mock.Anything, f.companyID, f.sourceID).Return(source, nil)
	f.docs.On("ClaimConversion", mock.Anything, f.companyID, f.sourceID, "ramesh").Return(nil)
	f.seq.On("Next", mock.Anything, f.companyID, "INV", mock.Anything).Return(int64(1), nil)
	f.docs.On("CreateConverted", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("db down"))
	f.docs.On("ReleaseConversion", mock.Anything, f.sourceID).Return(nil)

	_, err := f.svc.ConvertOrderToInvoice(context.Background(), f.companyID, f.sourceID, "ramesh")

	assert.Error(t, err)
	f.docs.AssertCalled(t, "ReleaseConversion", mock.Anything, f.sourceID)
}

func TestConversionService_InvoiceToPurchase_SameCompanyRejected(t *testing.T) {
	f := newConversionServiceFixture()

	_, err := f.svc.ConvertInvoiceToPurchase(
		context.Background(), f.companyID, f.sourceID, f.companyID, "ramesh")
	assert.ErrorIs(t, err, domain.ErrSameCompanyConversion)
}

func TestConversionService_InvoiceToPurchase_Success(t *testing.T) {
	f := newConversionServiceFixture()
	targetCompanyID := uuid.New()
	source := f.salesInvoice()

	seller := &domain.Company{ID: f.companyID, Name: "Mehta Traders", GSTIN: "27AAAAA0000A1Z5"}
	buyer := &domain.Company{ID: targetCompanyID, Name: "Sharma Retail"}

	f.docs.On("GetByID", mock.Anything, f.companyID, f.sourceID).Return(source, nil)
	f.companies.On("GetByID", mock.Anything, f.companyID).Return(seller, nil)
	f.companies.On("GetByID", mock.Anything, targetCompanyID).Return(buyer, nil)
	f.parties.On("FindByExternalRef", mock.Anything, targetCompanyID, f.companyID).
		Return(nil, domain.ErrPartyNotFound)
	f.parties.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Party) bool {
		return p.CompanyID == targetCompanyID &&
			p.Kind == domain.PartyKindSupplier &&
			p.Name == "Mehta Traders" &&
			p.ExternalRef != nil && *p.ExternalRef == f.companyID
	})).Return(nil)
	f.docs.On("ClaimConversion", mock.Anything, f.companyID, f.sourceID, "ramesh").Return(nil)
	f.seq.On("Next", mock.Anything, targetCompanyID, "PUR", mock.Anything).Return(int64(1), nil)
	f.docs.On("CreateConverted", mock.Anything, mock.AnythingOfType("*domain.Document"), source).Return(nil)

	purchase, err := f.svc.ConvertInvoiceToPurchase(
		context.Background(), f.companyID, f.sourceID, targetCompanyID, "ramesh")

	assert.NoError(t, err)
	assert.Equal(t, domain.DocTypePurchase, purchase.Type)
	assert.Equal(t, targetCompanyID, purchase.CompanyID)
	assert.True(t, strings.HasPrefix(purchase.Number, "PUR-"))
	assert.Equal(t, "236.00", purchase.Totals.FinalTotal.StringFixed(2))
	assert.Equal(t, "100.00", purchase.Payment.PaidAmount.StringFixed(2))

	// Lines carry over by name only; the buyer has no matching catalog items.
	assert.Len(t, purchase.Items, 1)
	assert.Nil(t, purchase.Items[0].ItemID)
	f.stock.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything)

	f.parties.AssertExpectations(t)
	f.docs.AssertExpectations(t)
}

func TestConversionService_InvoiceToPurchase_ReusesExistingSupplier(t *testing.T) {
	f := newConversionServiceFixture()
	targetCompanyID := uuid.New()
	supplierID := uuid.New()
	source := f.salesInvoice()

	ref := f.companyID
	f.docs.On("GetByID", mock.Anything, f.companyID, f.sourceID).Return(source, nil)
	f.companies.On("GetByID", mock.Anything, f.companyID).
		Return(&domain.Company{ID: f.companyID, Name: "Mehta Traders"}, nil)
	f.companies.On("GetByID", mock.Anything, targetCompanyID).
		Return(&domain.Company{ID: targetCompanyID}, nil)
	f.parties.On("FindByExternalRef", mock.Anything, targetCompanyID, f.companyID).
		Return(&domain.Party{ID: supplierID, CompanyID: targetCompanyID, ExternalRef: &ref}, nil)
	f.docs.On("ClaimConversion", mock.Anything, f.companyID, f.sourceID, "ramesh").Return(nil)
	f.seq.On("Next", mock.Anything, targetCompanyID, "PUR", mock.Anything).Return(int64(4), nil)
	f.docs.On("CreateConverted", mock.Anything, mock.Anything, source).Return(nil)

	purchase, err := f.svc.ConvertInvoiceToPurchase(
		context.Background(), f.companyID, f.sourceID, targetCompanyID, "ramesh")

	assert.NoError(t, err)
	assert.Equal(t, supplierID, purchase.PartyID)
	f.parties.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConversionService_InvoiceToPurchase_PhoneCollisionRetries(t *testing.T) {
	f := newConversionServiceFixture()
	targetCompanyID := uuid.New()
	source := f.salesInvoice()

	f.docs.On("GetByID", mock.Anything, f.companyID, f.sourceID).Return(source, nil)
	f.companies.On("GetByID", mock.Anything, f.companyID).
		Return(&domain.Company{ID: f.companyID, Name: "Mehta Traders"}, nil)
	f.companies.On("GetByID", mock.Anything, targetCompanyID).
		Return(&domain.Company{ID: targetCompanyID}, nil)
	f.parties.On("FindByExternalRef", mock.Anything, targetCompanyID, f.companyID).
		Return(nil, domain.ErrPartyNotFound)
	f.parties.On("Create", mock.Anything, mock.Anything).
		Return(domain.ErrDuplicatePartyPhone).Once()
	f.parties.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Party) bool {
		// Retry widens the synthesized phone to the full company ID.
		return p.Phone == "ext-"+f.companyID.String()
	})).Return(nil).Once()
	f.docs.On("ClaimConversion", mock.Anything, f.companyID, f.sourceID, "ramesh").Return(nil)
	f.seq.On("Next", mock.Anything, targetCompanyID, "PUR", mock.Anything).Return(int64(1), nil)
	f.docs.On("CreateConverted", mock.Anything, mock.Anything, source).Return(nil)

	_, err := f.svc.ConvertInvoiceToPurchase(
		context.Background(), f.companyID, f.sourceID, targetCompanyID, "ramesh")

	assert.NoError(t, err)
	f.parties.AssertExpectations(t)
}
