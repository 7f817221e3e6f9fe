package port

import "context"

// EmailSender delivers customer-facing notifications. Failures are logged and
// never fail the financial write that triggered them.
type EmailSender interface {
	SendPaymentReceipt(ctx context.Context, toEmail, toName, docNumber, amount, pending string) error
	SendOverdueNotice(ctx context.Context, toEmail, toName, docNumber, pending, dueDate string) error
}
