package checkout

import (
	"context"

	"cakeshop-be/internal/backend"

	"github.com/stretchr/testify/mock"
)

// MockBackend is a mock implementation of the Backend interface.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) CreatePendingBill(ctx context.Context, req backend.PendingBillRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) CancelBill(ctx context.Context, billID string) error {
	args := m.Called(ctx, billID)
	return args.Error(0)
}

func (m *MockBackend) CreateAfterPayment(ctx context.Context, req backend.AfterPaymentRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockBackend) DecreaseQuantity(ctx context.Context, sizeID string, quantity int) error {
	args := m.Called(ctx, sizeID, quantity)
	return args.Error(0)
}

func (m *MockBackend) DeleteCartLine(ctx context.Context, cartLineID string) error {
	args := m.Called(ctx, cartLineID)
	return args.Error(0)
}

// MockNotifier is a mock implementation of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderPlaced(ctx context.Context, accountID, billID string) error {
	args := m.Called(ctx, accountID, billID)
	return args.Error(0)
}
