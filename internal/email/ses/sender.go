package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"shopbooks/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendPaymentReceipt(ctx context.Context, toEmail, toName, docNumber, amount, pending string) error {
	subject := fmt.Sprintf("Payment received for %s", docNumber)
	htmlBody := buildReceiptHTML(toName, docNumber, amount, pending)
	textBody := fmt.Sprintf("Hi %s,\n\nWe have received your payment of ₹%s against %s.\nRemaining balance: ₹%s.\n\nThank you for your business.", toName, amount, docNumber, pending)
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendOverdueNotice(ctx context.Context, toEmail, toName, docNumber, pending, dueDate string) error {
	subject := fmt.Sprintf("Payment overdue for %s", docNumber)
	htmlBody := buildOverdueHTML(toName, docNumber, pending, dueDate)
	textBody := fmt.Sprintf("Hi %s,\n\nA balance of ₹%s against %s was due on %s and is still outstanding.\nPlease arrange payment at your earliest convenience.", toName, pending, docNumber, dueDate)
	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildReceiptHTML(name, docNumber, amount, pending string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Payment received</h2>
  <p>Hi %s,</p>
  <p>We have received your payment of <strong>₹%s</strong> against <strong>%s</strong>.</p>
  <p>Remaining balance: ₹%s</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Thank you for your business.</p>
</body>
</html>`, name, amount, docNumber, pending)
}

func buildOverdueHTML(name, docNumber, pending, dueDate string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Payment overdue</h2>
  <p>Hi %s,</p>
  <p>A balance of <strong>₹%s</strong> against <strong>%s</strong> was due on %s and is still outstanding.</p>
  <p>Please arrange payment at your earliest convenience.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">If you have already paid, please disregard this notice.</p>
</body>
</html>`, name, pending, docNumber, dueDate)
}
