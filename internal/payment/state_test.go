package payment_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"shopbooks/internal/domain"
	"shopbooks/internal/payment"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

var now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func TestApply_PartialPayment(t *testing.T) {
	out, err := payment.Apply(dec("236"), decimal.Zero, dec("100"), nil, now)

	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPartial, out.Status)
	assert.Equal(t, "100.00", out.PaidAmount.StringFixed(2))
	assert.Equal(t, "136.00", out.PendingAmount.StringFixed(2))
	assert.False(t, out.ClearDueDate)
}

func TestApply_FullPaymentClearsDueDate(t *testing.T) {
	due := now.AddDate(0, 0, 15)
	out, err := payment.Apply(dec("236"), dec("100"), dec("136"), &due, now)

	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, out.Status)
	assert.True(t, out.PendingAmount.IsZero())
	assert.True(t, out.ClearDueDate)
}

func TestApply_OverPaymentRejected(t *testing.T) {
	_, err := payment.Apply(dec("236"), dec("200"), dec("50"), nil, now)
	assert.ErrorIs(t, err, domain.ErrOverPayment)

	// Exactly the pending amount is fine.
	out, err := payment.Apply(dec("236"), dec("200"), dec("36"), nil, now)
	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, out.Status)
}

func TestApply_NonPositiveAmountRejected(t *testing.T) {
	_, err := payment.Apply(dec("100"), decimal.Zero, decimal.Zero, nil, now)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = payment.Apply(dec("100"), decimal.Zero, dec("-5"), nil, now)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestApply_PartialPastDueBecomesOverdue(t *testing.T) {
	due := now.AddDate(0, 0, -1)
	out, err := payment.Apply(dec("236"), decimal.Zero, dec("100"), &due, now)

	assert.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusOverdue, out.Status)
}

func TestDerive_OverdueIsNotSticky(t *testing.T) {
	past := now.AddDate(0, 0, -1)
	future := now.AddDate(0, 0, 10)

	// Past due with a balance: overdue.
	got := payment.Derive(domain.PaymentStatusPartial, dec("100"), dec("136"), &past, now)
	assert.Equal(t, domain.PaymentStatusOverdue, got)

	// Due date moved forward: reverts to the underlying state.
	got = payment.Derive(domain.PaymentStatusOverdue, dec("100"), dec("136"), &future, now)
	assert.Equal(t, domain.PaymentStatusPartial, got)

	got = payment.Derive(domain.PaymentStatusOverdue, decimal.Zero, dec("236"), &future, now)
	assert.Equal(t, domain.PaymentStatusPending, got)
}

func TestDerive_TerminalStatesNeverOverridden(t *testing.T) {
	past := now.AddDate(0, 0, -1)

	got := payment.Derive(domain.PaymentStatusPaid, dec("236"), decimal.Zero, &past, now)
	assert.Equal(t, domain.PaymentStatusPaid, got)

	got = payment.Derive(domain.PaymentStatusCancelled, decimal.Zero, decimal.Zero, &past, now)
	assert.Equal(t, domain.PaymentStatusCancelled, got)
}

func TestDerive_NoDueDateNeverOverdue(t *testing.T) {
	got := payment.Derive(domain.PaymentStatusPending, decimal.Zero, dec("236"), nil, now)
	assert.Equal(t, domain.PaymentStatusPending, got)
}

func TestPending_NeverNegative(t *testing.T) {
	assert.Equal(t, "0.00", payment.Pending(dec("100"), dec("150")).StringFixed(2))
	assert.Equal(t, "40.00", payment.Pending(dec("100"), dec("60")).StringFixed(2))
}

func TestDueDateFrom(t *testing.T) {
	got := payment.DueDateFrom(now, 15)
	assert.Equal(t, now.AddDate(0, 0, 15), got)
}
