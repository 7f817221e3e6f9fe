package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shopbooks/internal/port"
)

// MockStockAdjuster is a mock implementation of port.StockAdjuster.
type MockStockAdjuster struct {
	mock.Mock
}

func (m *MockStockAdjuster) Adjust(ctx context.Context, adj port.StockAdjustment) (*port.StockResult, error) {
	args := m.Called(ctx, adj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.StockResult), args.Error(1)
}
