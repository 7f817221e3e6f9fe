package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"shopbooks/internal/domain"
)

// MockDocumentRepo is a mock implementation of port.DocumentRepository.
type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) Create(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepo) GetByID(ctx context.Context, companyID, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, companyID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, docType domain.DocumentType, offset, limit int) ([]domain.Document, int, error) {
	args := m.Called(ctx, companyID, docType, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockDocumentRepo) UpdatePayment(ctx context.Context, doc *domain.Document, entry *domain.PaymentEntry) error {
	args := m.Called(ctx, doc, entry)
	return args.Error(0)
}

func (m *MockDocumentRepo) Cancel(ctx context.Context, doc *domain.Document, entry *domain.PaymentEntry) error {
	args := m.Called(ctx, doc, entry)
	return args.Error(0)
}

func (m *MockDocumentRepo) ClaimConversion(ctx context.Context, companyID, docID uuid.UUID, actor string) error {
	args := m.Called(ctx, companyID, docID, actor)
	return args.Error(0)
}

func (m *MockDocumentRepo) ReleaseConversion(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}

func (m *MockDocumentRepo) CreateConverted(ctx context.Context, target, source *domain.Document) error {
	args := m.Called(ctx, target, source)
	return args.Error(0)
}
