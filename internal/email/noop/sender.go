package noop

import (
	"context"
	"log"

	"shopbooks/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs instead of sending.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendPaymentReceipt(_ context.Context, toEmail, toName, docNumber, amount, pending string) error {
	log.Printf("[NOOP EMAIL] Payment receipt for %s (%s): ₹%s against %s, ₹%s pending", toName, toEmail, amount, docNumber, pending)
	return nil
}

func (s *noopSender) SendOverdueNotice(_ context.Context, toEmail, toName, docNumber, pending, dueDate string) error {
	log.Printf("[NOOP EMAIL] Overdue notice for %s (%s): ₹%s against %s, due %s", toName, toEmail, pending, docNumber, dueDate)
	return nil
}
