package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cakeshop-be/internal/backend"
	"cakeshop-be/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func codOrder() *PendingOrder {
	return &PendingOrder{
		BillID:             "bill-42",
		AccountID:          "acc-1",
		AddressID:          "addr-1",
		ShippingMethodName: "Giao tiêu chuẩn",
		Payment:            PaymentMethod{Kind: PaymentCOD, DisplayName: "Thanh toán khi nhận hàng"},
		Lines: []CartLine{
			{ID: "line-1", ProductID: "p-1", UnitPrice: 50000, Size: "M", SizeID: "size-1", Quantity: 2},
			{ID: "line-2", ProductID: "p-2", UnitPrice: 30000, Size: "S", SizeID: "size-2", Quantity: 1},
		},
		Totals: pricing.Totals{Subtotal: 130000, ShippingFee: 35000, OriginalTotal: 165000, FinalTotal: 165000},
	}
}

func gatewayOrder() *PendingOrder {
	o := codOrder()
	o.Payment = PaymentMethod{Kind: PaymentGateway, DisplayName: "VNPay"}
	return o
}

func newTestConfirmation(be Backend, notifier *MockNotifier, order *PendingOrder, window time.Duration) *Confirmation {
	c := newConfirmation(be, notifier, order, window, window)
	c.start()
	return c
}

func TestConfirmation_ConfirmCOD(t *testing.T) {
	ctx := context.Background()

	t.Run("Side effects fire once per line in order", func(t *testing.T) {
		be := new(MockBackend)
		notifier := new(MockNotifier)

		be.On("DeleteCartLine", mock.Anything, "line-1").Return(nil).Once()
		be.On("DeleteCartLine", mock.Anything, "line-2").Return(nil).Once()
		be.On("DecreaseQuantity", mock.Anything, "size-1", 2).Return(nil).Once()
		be.On("DecreaseQuantity", mock.Anything, "size-2", 1).Return(nil).Once()
		notifier.On("OrderPlaced", mock.Anything, "acc-1", "bill-42").Return(nil).Once()

		c := newTestConfirmation(be, notifier, codOrder(), time.Minute)
		err := c.Confirm(ctx)

		require.NoError(t, err)
		assert.Equal(t, StateConfirmed, c.State())
		be.AssertExpectations(t)
		notifier.AssertExpectations(t)
		be.AssertNotCalled(t, "CancelBill", mock.Anything, mock.Anything)
	})

	t.Run("Partial side-effect failure does not abort", func(t *testing.T) {
		be := new(MockBackend)
		notifier := new(MockNotifier)

		be.On("DeleteCartLine", mock.Anything, mock.Anything).Return(nil)
		be.On("DecreaseQuantity", mock.Anything, "size-1", 2).Return(errors.New("stock service down")).Once()
		be.On("DecreaseQuantity", mock.Anything, "size-2", 1).Return(nil).Once()
		notifier.On("OrderPlaced", mock.Anything, "acc-1", "bill-42").Return(nil).Once()

		c := newTestConfirmation(be, notifier, codOrder(), time.Minute)
		err := c.Confirm(ctx)

		// The order stays confirmed even when a decrement fails.
		require.NoError(t, err)
		assert.Equal(t, StateConfirmed, c.State())
		be.AssertExpectations(t)
	})

	t.Run("Second decision is rejected", func(t *testing.T) {
		be := new(MockBackend)
		notifier := new(MockNotifier)
		be.On("DeleteCartLine", mock.Anything, mock.Anything).Return(nil)
		be.On("DecreaseQuantity", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		notifier.On("OrderPlaced", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		c := newTestConfirmation(be, notifier, codOrder(), time.Minute)
		require.NoError(t, c.Confirm(ctx))

		assert.ErrorIs(t, c.Confirm(ctx), ErrAlreadyDecided)
		assert.ErrorIs(t, c.Cancel(ctx, ReasonUser), ErrAlreadyDecided)
	})

	t.Run("Gateway orders cannot confirm directly", func(t *testing.T) {
		be := new(MockBackend)
		be.On("CancelBill", mock.Anything, "bill-42").Return(nil).Once()
		c := newTestConfirmation(be, new(MockNotifier), gatewayOrder(), time.Minute)

		assert.ErrorIs(t, c.Confirm(ctx), ErrGatewayPaymentRequired)
		assert.Equal(t, StateAwaitingDecision, c.State())

		require.NoError(t, c.Cancel(ctx, ReasonUser))
		be.AssertExpectations(t)
	})
}

func TestConfirmation_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Explicit cancel calls backend once", func(t *testing.T) {
		be := new(MockBackend)
		be.On("CancelBill", mock.Anything, "bill-42").Return(nil).Once()

		c := newTestConfirmation(be, new(MockNotifier), codOrder(), time.Minute)
		require.NoError(t, c.Cancel(ctx, ReasonUser))

		assert.Equal(t, StateCancelled, c.State())
		assert.Equal(t, ReasonUser, c.Reason())
		be.AssertExpectations(t)
	})

	t.Run("Cancel failure surfaces but state is terminal", func(t *testing.T) {
		be := new(MockBackend)
		be.On("CancelBill", mock.Anything, "bill-42").Return(errors.New("network down"))

		c := newTestConfirmation(be, new(MockNotifier), codOrder(), time.Minute)
		err := c.Cancel(ctx, ReasonUser)

		assert.Error(t, err)
		assert.Equal(t, StateCancelled, c.State())
	})
}

func TestConfirmation_Expiry(t *testing.T) {
	t.Run("Countdown auto-cancels with timeout reason", func(t *testing.T) {
		be := new(MockBackend)
		cancelled := make(chan struct{})
		be.On("CancelBill", mock.Anything, "bill-42").Run(func(mock.Arguments) {
			close(cancelled)
		}).Return(nil).Once()

		c := newTestConfirmation(be, new(MockNotifier), codOrder(), 10*time.Millisecond)

		select {
		case <-cancelled:
		case <-time.After(time.Second):
			t.Fatal("countdown did not cancel the pending bill")
		}

		assert.Equal(t, StateCancelled, c.State())
		assert.Equal(t, ReasonTimeout, c.Reason())
		be.AssertNumberOfCalls(t, "CancelBill", 1)
	})

	t.Run("Expiry racing a user cancel fires backend exactly once", func(t *testing.T) {
		be := new(MockBackend)
		be.On("CancelBill", mock.Anything, "bill-42").Return(nil)

		c := newTestConfirmation(be, new(MockNotifier), codOrder(), 5*time.Millisecond)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = c.Cancel(context.Background(), ReasonUser)
			}()
		}
		wg.Wait()
		time.Sleep(30 * time.Millisecond) // let the timer callback run

		assert.Equal(t, StateCancelled, c.State())
		be.AssertNumberOfCalls(t, "CancelBill", 1)
	})

	t.Run("Confirm before expiry stops the timer", func(t *testing.T) {
		be := new(MockBackend)
		notifier := new(MockNotifier)
		be.On("DeleteCartLine", mock.Anything, mock.Anything).Return(nil)
		be.On("DecreaseQuantity", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		notifier.On("OrderPlaced", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		c := newTestConfirmation(be, notifier, codOrder(), 20*time.Millisecond)
		require.NoError(t, c.Confirm(context.Background()))

		time.Sleep(50 * time.Millisecond)

		assert.Equal(t, StateConfirmed, c.State())
		be.AssertNotCalled(t, "CancelBill", mock.Anything, mock.Anything)
	})
}

func TestConfirmation_Gateway(t *testing.T) {
	ctx := context.Background()

	successTxn := backend.TransactionRecord{
		TransactionID:     "14350952",
		Amount:            165000,
		BankCode:          "NCB",
		ResponseCode:      "00",
		TransactionStatus: "00",
	}

	t.Run("Success finalizes after payment and runs side effects", func(t *testing.T) {
		be := new(MockBackend)
		notifier := new(MockNotifier)

		be.On("CancelBill", mock.Anything, "bill-42").Return(nil).Once()
		var captured backend.AfterPaymentRequest
		be.On("CreateAfterPayment", mock.Anything, mock.MatchedBy(func(req backend.AfterPaymentRequest) bool {
			captured = req
			return true
		})).Return("bill-77", nil).Once()
		be.On("DeleteCartLine", mock.Anything, mock.Anything).Return(nil).Times(2)
		be.On("DecreaseQuantity", mock.Anything, mock.Anything, mock.Anything).Return(nil).Times(2)
		notifier.On("OrderPlaced", mock.Anything, "acc-1", "bill-77").Return(nil).Once()

		c := newTestConfirmation(be, notifier, gatewayOrder(), time.Minute)
		require.NoError(t, c.BeginGateway())

		finalID, err := c.CompleteGateway(ctx, true, successTxn)

		require.NoError(t, err)
		assert.Equal(t, "bill-77", finalID)
		assert.Equal(t, StateConfirmed, c.State())
		assert.Equal(t, "14350952", captured.Transaction.TransactionID)
		assert.Equal(t, "VNPay", captured.Bill.PaymentMethodName)
		require.Len(t, captured.Bill.Items, 2)
		be.AssertExpectations(t)
	})

	t.Run("Failure leaves the cart untouched", func(t *testing.T) {
		be := new(MockBackend)
		be.On("CancelBill", mock.Anything, "bill-42").Return(nil).Once()

		c := newTestConfirmation(be, new(MockNotifier), gatewayOrder(), time.Minute)
		require.NoError(t, c.BeginGateway())

		finalID, err := c.CompleteGateway(ctx, false, backend.TransactionRecord{ResponseCode: "24"})

		require.NoError(t, err)
		assert.Empty(t, finalID)
		assert.Equal(t, StateCancelled, c.State())
		assert.Equal(t, ReasonGatewayFailed, c.Reason())
		be.AssertNotCalled(t, "DeleteCartLine", mock.Anything, mock.Anything)
		be.AssertNotCalled(t, "DecreaseQuantity", mock.Anything, mock.Anything, mock.Anything)
		be.AssertNotCalled(t, "CreateAfterPayment", mock.Anything, mock.Anything)
	})

	t.Run("Outcome handled at most once", func(t *testing.T) {
		be := new(MockBackend)
		be.On("CancelBill", mock.Anything, mock.Anything).Return(nil)

		c := newTestConfirmation(be, new(MockNotifier), gatewayOrder(), time.Minute)
		require.NoError(t, c.BeginGateway())

		_, err := c.CompleteGateway(ctx, false, backend.TransactionRecord{ResponseCode: "24"})
		require.NoError(t, err)

		_, err = c.CompleteGateway(ctx, false, backend.TransactionRecord{ResponseCode: "24"})
		assert.ErrorIs(t, err, ErrAlreadyDecided)
	})

	t.Run("Complete without begin is rejected", func(t *testing.T) {
		be := new(MockBackend)
		be.On("CancelBill", mock.Anything, "bill-42").Return(nil).Once()
		c := newTestConfirmation(be, new(MockNotifier), gatewayOrder(), time.Minute)

		_, err := c.CompleteGateway(ctx, true, successTxn)
		assert.ErrorIs(t, err, ErrGatewayNotStarted)

		require.NoError(t, c.Cancel(ctx, ReasonUser))
	})

	t.Run("Begin twice is rejected", func(t *testing.T) {
		be := new(MockBackend)
		be.On("CancelBill", mock.Anything, "bill-42").Return(nil).Once()
		c := newTestConfirmation(be, new(MockNotifier), gatewayOrder(), time.Minute)

		require.NoError(t, c.BeginGateway())
		assert.ErrorIs(t, c.BeginGateway(), ErrGatewayAlreadyStarted)

		require.NoError(t, c.Cancel(ctx, ReasonUser))
	})

	t.Run("Gateway window expiry cancels the pending bill", func(t *testing.T) {
		be := new(MockBackend)
		cancelled := make(chan struct{})
		be.On("CancelBill", mock.Anything, "bill-42").Run(func(mock.Arguments) {
			close(cancelled)
		}).Return(nil).Once()

		c := newConfirmation(be, new(MockNotifier), gatewayOrder(), time.Minute, 10*time.Millisecond)
		c.start()
		require.NoError(t, c.BeginGateway())

		select {
		case <-cancelled:
		case <-time.After(time.Second):
			t.Fatal("gateway window did not expire")
		}

		assert.Equal(t, StateCancelled, c.State())
		assert.Equal(t, ReasonGatewayTimeout, c.Reason())
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	be := new(MockBackend)
	c := newConfirmation(be, new(MockNotifier), codOrder(), time.Minute, time.Minute)

	r.Add(c)
	got, err := r.Get("bill-42")
	assert.NoError(t, err)
	assert.Same(t, c, got)
	assert.Equal(t, 1, r.Len())

	r.Remove("bill-42")
	_, err = r.Get("bill-42")
	assert.ErrorIs(t, err, ErrPendingOrderNotFound)
}
