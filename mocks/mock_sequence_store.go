package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockSequenceStore is a mock implementation of port.SequenceStore.
type MockSequenceStore struct {
	mock.Mock
}

func (m *MockSequenceStore) Next(ctx context.Context, companyID uuid.UUID, prefix string, day time.Time) (int64, error) {
	args := m.Called(ctx, companyID, prefix, day)
	return args.Get(0).(int64), args.Error(1)
}
