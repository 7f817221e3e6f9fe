package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendPaymentReceipt(ctx context.Context, toEmail, toName, docNumber, amount, pending string) error {
	args := m.Called(ctx, toEmail, toName, docNumber, amount, pending)
	return args.Error(0)
}

func (m *MockEmailSender) SendOverdueNotice(ctx context.Context, toEmail, toName, docNumber, pending, dueDate string) error {
	args := m.Called(ctx, toEmail, toName, docNumber, pending, dueDate)
	return args.Error(0)
}
