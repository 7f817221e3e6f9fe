package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopbooks/internal/domain"
	"shopbooks/internal/payment"
	"shopbooks/internal/port"
)

// AddPaymentRequest records one payment against a document.
type AddPaymentRequest struct {
	Amount      decimal.Decimal
	Method      string
	Reference   string
	PaymentDate time.Time
	CreatedBy   string
}

// PaymentService applies payments and due-date changes to documents.
type PaymentService interface {
	AddPayment(ctx context.Context, companyID, docID uuid.UUID, req AddPaymentRequest) (*domain.Document, error)
	SetDueDate(ctx context.Context, companyID, docID uuid.UUID, dueDate time.Time) (*domain.Document, error)
}

type paymentService struct {
	docs    port.DocumentRepository
	parties port.PartyRepository
	email   port.EmailSender
}

// NewPaymentService wires a PaymentService.
func NewPaymentService(docs port.DocumentRepository, parties port.PartyRepository, email port.EmailSender) PaymentService {
	return &paymentService{docs: docs, parties: parties, email: email}
}

func (s *paymentService) AddPayment(ctx context.Context, companyID, docID uuid.UUID, req AddPaymentRequest) (*domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, companyID, docID)
	if err != nil {
		return nil, err
	}
	err = s.addPaymentOnce(ctx, doc, req)
	if errors.Is(err, domain.ErrVersionConflict) {
		// One retry on a concurrent write, re-validated against fresh state.
		doc, err = s.docs.GetByID(ctx, companyID, docID)
		if err != nil {
			return nil, err
		}
		err = s.addPaymentOnce(ctx, doc, req)
	}
	if err != nil {
		return nil, err
	}

	s.sendReceipt(ctx, doc, req.Amount)
	return doc, nil
}

func (s *paymentService) addPaymentOnce(ctx context.Context, doc *domain.Document, req AddPaymentRequest) error {
	if doc.Status == domain.DocStatusCancelled {
		return domain.ErrDocumentCancelled
	}

	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now().UTC()
	}

	out, err := payment.Apply(doc.Totals.FinalTotal, doc.Payment.PaidAmount, req.Amount,
		doc.Payment.DueDate, time.Now().UTC())
	if err != nil {
		return err
	}

	// The history entry snapshots the due date in effect when the payment
	// landed, even when this payment clears it.
	dueAtPayment := doc.Payment.DueDate

	doc.Payment.PaidAmount = out.PaidAmount
	doc.Payment.PendingAmount = out.PendingAmount
	doc.Payment.Status = out.Status
	doc.Payment.PaymentDate = &paymentDate
	if req.Method != "" {
		doc.Payment.Method = req.Method
	}
	if out.ClearDueDate {
		doc.Payment.DueDate = nil
	}

	now := time.Now().UTC()
	entry := &domain.PaymentEntry{
		ID:          uuid.New(),
		Amount:      req.Amount,
		Method:      req.Method,
		Reference:   req.Reference,
		PaymentDate: paymentDate,
		DueDate:     dueAtPayment,
		CreatedAt:   now,
		CreatedBy:   req.CreatedBy,
	}
	if err := s.docs.UpdatePayment(ctx, doc, entry); err != nil {
		return err
	}
	doc.PaymentHistory = append(doc.PaymentHistory, *entry)
	return nil
}

func (s *paymentService) SetDueDate(ctx context.Context, companyID, docID uuid.UUID, dueDate time.Time) (*domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, companyID, docID)
	if err != nil {
		return nil, err
	}
	err = s.setDueDateOnce(ctx, doc, dueDate)
	if errors.Is(err, domain.ErrVersionConflict) {
		doc, err = s.docs.GetByID(ctx, companyID, docID)
		if err != nil {
			return nil, err
		}
		err = s.setDueDateOnce(ctx, doc, dueDate)
	}
	if err != nil {
		return nil, err
	}

	if doc.Payment.Status == domain.PaymentStatusOverdue {
		s.sendOverdueNotice(ctx, doc)
	}
	return doc, nil
}

func (s *paymentService) setDueDateOnce(ctx context.Context, doc *domain.Document, dueDate time.Time) error {
	if doc.Status == domain.DocStatusCancelled {
		return domain.ErrDocumentCancelled
	}
	if doc.Payment.Status == domain.PaymentStatusPaid {
		return domain.NewValidationError("due_date", "document is already fully paid")
	}

	doc.Payment.DueDate = &dueDate
	doc.Payment.Status = payment.Derive(doc.Payment.Status, doc.Payment.PaidAmount,
		doc.Payment.PendingAmount, &dueDate, time.Now().UTC())
	return s.docs.UpdatePayment(ctx, doc, nil)
}

// sendReceipt delivers a best-effort payment receipt; failures never surface.
func (s *paymentService) sendReceipt(ctx context.Context, doc *domain.Document, amount decimal.Decimal) {
	party, err := s.parties.GetByID(ctx, doc.CompanyID, doc.PartyID)
	if err != nil || party.Email == "" {
		return
	}
	if err := s.email.SendPaymentReceipt(ctx, party.Email, party.Name, doc.Number,
		amount.StringFixed(2), doc.Payment.PendingAmount.StringFixed(2)); err != nil {
		log.Printf("paymentService.sendReceipt: receipt for %s failed: %v", doc.Number, err)
	}
}

// sendOverdueNotice delivers a best-effort overdue notice; failures never
// surface.
func (s *paymentService) sendOverdueNotice(ctx context.Context, doc *domain.Document) {
	party, err := s.parties.GetByID(ctx, doc.CompanyID, doc.PartyID)
	if err != nil || party.Email == "" {
		return
	}
	due := ""
	if doc.Payment.DueDate != nil {
		due = doc.Payment.DueDate.Format("2006-01-02")
	}
	if err := s.email.SendOverdueNotice(ctx, party.Email, party.Name, doc.Number,
		doc.Payment.PendingAmount.StringFixed(2), due); err != nil {
		log.Printf("paymentService.sendOverdueNotice: notice for %s failed: %v", doc.Number, err)
	}
}
