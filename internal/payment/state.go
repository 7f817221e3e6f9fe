// Package payment implements the pure payment state machine:
// pending -> partial -> paid, with overdue as a derived, non-sticky flag and
// cancelled as a terminal state handled by the service layer.
package payment

import (
	"time"

	"github.com/shopspring/decimal"

	"shopbooks/internal/domain"
)

// Outcome is the result of applying a payment.
type Outcome struct {
	PaidAmount    decimal.Decimal
	PendingAmount decimal.Decimal
	Status        domain.PaymentStatus
	// ClearDueDate is set when the document became fully paid.
	ClearDueDate bool
}

// Apply validates and applies a payment of amount against a document with the
// given final total, paid so far, and due date. Over-payment is rejected, not
// clamped; the uniform policy across every payment path.
func Apply(finalTotal, paid, amount decimal.Decimal, dueDate *time.Time, now time.Time) (Outcome, error) {
	if !amount.IsPositive() {
		return Outcome{}, domain.NewValidationError("amount", "must be greater than zero")
	}
	pending := Pending(finalTotal, paid)
	if amount.GreaterThan(pending) {
		return Outcome{}, domain.ErrOverPayment
	}

	newPaid := paid.Add(amount)
	out := Outcome{
		PaidAmount:    newPaid,
		PendingAmount: Pending(finalTotal, newPaid),
	}

	if newPaid.GreaterThanOrEqual(finalTotal) {
		out.Status = domain.PaymentStatusPaid
		out.PendingAmount = decimal.Zero
		out.ClearDueDate = true
		return out, nil
	}

	base := domain.PaymentStatusPending
	if newPaid.IsPositive() {
		base = domain.PaymentStatusPartial
	}
	out.Status = Derive(base, newPaid, out.PendingAmount, dueDate, now)
	return out, nil
}

// Pending returns max(0, finalTotal - paid).
func Pending(finalTotal, paid decimal.Decimal) decimal.Decimal {
	p := finalTotal.Sub(paid)
	if p.IsNegative() {
		return decimal.Zero
	}
	return p
}

// Derive resolves the effective status for display and storage: pending and
// partial documents become overdue while the due date has passed with a
// balance outstanding, and revert when that stops being true. Paid and
// cancelled are terminal and never overridden.
func Derive(status domain.PaymentStatus, paid, pending decimal.Decimal, dueDate *time.Time, now time.Time) domain.PaymentStatus {
	switch status {
	case domain.PaymentStatusPaid, domain.PaymentStatusCancelled:
		return status
	}
	if dueDate != nil && dueDate.Before(now) && pending.IsPositive() {
		return domain.PaymentStatusOverdue
	}
	// Non-sticky: outside the overdue window, fall back to the underlying state.
	if paid.IsPositive() {
		return domain.PaymentStatusPartial
	}
	return domain.PaymentStatusPending
}

// DueDateFrom derives a due date from a payment date and credit days.
func DueDateFrom(paymentDate time.Time, creditDays int) time.Time {
	return paymentDate.AddDate(0, 0, creditDays)
}
