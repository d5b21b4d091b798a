package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"cakeshop-be/internal/backend"
	"cakeshop-be/internal/logger"
	"cakeshop-be/internal/notify"

	"go.uber.org/zap"
)

// State of a pending order's confirmation window.
type State string

const (
	StateAwaitingDecision State = "awaiting_decision"
	StateConfirmed        State = "confirmed"
	StateCancelled        State = "cancelled"
)

// CancelReason records why a confirmation ended in StateCancelled.
type CancelReason string

const (
	ReasonUser           CancelReason = "user"
	ReasonTimeout        CancelReason = "timeout"
	ReasonGatewayFailed  CancelReason = "gateway_failed"
	ReasonGatewayTimeout CancelReason = "gateway_timeout"
)

// Confirmation owns one pending order's decision window. Transitions are
// accepted only from StateAwaitingDecision under the mutex, so the countdown
// expiry and a concurrent user action can never both fire the backend
// cancellation.
type Confirmation struct {
	mu             sync.Mutex
	state          State
	reason         CancelReason
	gatewayStarted bool

	order    *PendingOrder
	backend  Backend
	notifier notify.Notifier

	decisionWindow time.Duration
	gatewayWindow  time.Duration
	decisionTimer  *time.Timer
	gatewayTimer   *time.Timer
	expiresAt      time.Time

	onTerminal func()
}

func newConfirmation(be Backend, notifier notify.Notifier, order *PendingOrder, decisionWindow, gatewayWindow time.Duration) *Confirmation {
	return &Confirmation{
		state:          StateAwaitingDecision,
		order:          order,
		backend:        be,
		notifier:       notifier,
		decisionWindow: decisionWindow,
		gatewayWindow:  gatewayWindow,
	}
}

// start arms the decision countdown.
func (c *Confirmation) start() {
	c.mu.Lock()
	c.expiresAt = time.Now().Add(c.decisionWindow)
	c.decisionTimer = time.AfterFunc(c.decisionWindow, c.expire)
	c.mu.Unlock()
}

func (c *Confirmation) Order() *PendingOrder { return c.order }

func (c *Confirmation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Confirmation) Reason() CancelReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

func (c *Confirmation) ExpiresAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expiresAt
}

// transition moves to a terminal state. Only the first caller wins; every
// timer is stopped on the way out so none can leak past a terminal state.
func (c *Confirmation) transition(to State, reason CancelReason) error {
	c.mu.Lock()
	if c.state != StateAwaitingDecision {
		c.mu.Unlock()
		return ErrAlreadyDecided
	}
	c.state = to
	c.reason = reason
	c.teardownLocked()
	c.mu.Unlock()

	if c.onTerminal != nil {
		c.onTerminal()
	}
	return nil
}

func (c *Confirmation) teardownLocked() {
	if c.decisionTimer != nil {
		c.decisionTimer.Stop()
	}
	if c.gatewayTimer != nil {
		c.gatewayTimer.Stop()
	}
}

// Confirm finalizes a non-gateway order: the pending bill stands, then the
// purchased lines leave the cart, stock is decremented per line and the
// customer is notified. Side-effect failures are logged, not rolled back;
// the order is confirmed regardless.
func (c *Confirmation) Confirm(ctx context.Context) error {
	c.mu.Lock()
	if c.order.Payment.Kind == PaymentGateway {
		c.mu.Unlock()
		return ErrGatewayPaymentRequired
	}
	c.mu.Unlock()

	if err := c.transition(StateConfirmed, ""); err != nil {
		return err
	}

	c.runSideEffects(ctx, c.order.BillID)
	return nil
}

// Cancel terminates the pending order. Used by the explicit cancel action,
// the hardware-back flow and the countdown expiry.
func (c *Confirmation) Cancel(ctx context.Context, reason CancelReason) error {
	if err := c.transition(StateCancelled, reason); err != nil {
		return err
	}

	if err := c.backend.CancelBill(ctx, c.order.BillID); err != nil {
		logger.FromCtx(ctx).Error("cancel pending bill failed",
			zap.String("bill_id", c.order.BillID),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// expire is the countdown callback. Losing the race against a user action
// is expected and not an error.
func (c *Confirmation) expire() {
	ctx := context.Background()
	if err := c.Cancel(ctx, ReasonTimeout); err != nil && !errors.Is(err, ErrAlreadyDecided) {
		logger.L().Error("auto-cancel on expiry failed",
			zap.String("bill_id", c.order.BillID),
			zap.Error(err),
		)
	}
}

// BeginGateway hands the decision to the payment gateway: the decision
// countdown stops and a longer gateway window starts. The confirmation stays
// in StateAwaitingDecision until the gateway outcome arrives.
func (c *Confirmation) BeginGateway() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAwaitingDecision {
		return ErrAlreadyDecided
	}
	if c.gatewayStarted {
		return ErrGatewayAlreadyStarted
	}

	c.gatewayStarted = true
	if c.decisionTimer != nil {
		c.decisionTimer.Stop()
	}
	c.gatewayTimer = time.AfterFunc(c.gatewayWindow, c.gatewayExpire)
	return nil
}

// CompleteGateway resolves a gateway session; at most one call wins. On
// success the order is created after payment, the pending bill is retired
// and the COD side effects run against the finalized bill. On failure the
// cart is left untouched.
func (c *Confirmation) CompleteGateway(ctx context.Context, success bool, txn backend.TransactionRecord) (string, error) {
	c.mu.Lock()
	if c.state != StateAwaitingDecision {
		c.mu.Unlock()
		return "", ErrAlreadyDecided
	}
	if !c.gatewayStarted {
		c.mu.Unlock()
		return "", ErrGatewayNotStarted
	}
	c.mu.Unlock()

	log := logger.FromCtx(ctx).With(
		zap.String("bill_id", c.order.BillID),
		zap.String("transaction_id", txn.TransactionID),
	)

	if !success {
		if err := c.transition(StateCancelled, ReasonGatewayFailed); err != nil {
			return "", err
		}
		if err := c.backend.CancelBill(ctx, c.order.BillID); err != nil {
			log.Error("retire pending bill after gateway failure", zap.Error(err))
		}
		log.Info("gateway payment failed, cart preserved")
		return "", nil
	}

	if err := c.transition(StateConfirmed, ""); err != nil {
		return "", err
	}

	// The gateway path defers order creation until payment is verified;
	// the pending bill is superseded by the post-payment bill.
	if err := c.backend.CancelBill(ctx, c.order.BillID); err != nil {
		log.Error("retire pending bill after gateway success", zap.Error(err))
	}

	req := backend.AfterPaymentRequest{Transaction: txn}
	req.Bill = backend.PendingBillRequest{
		AccountID:          c.order.AccountID,
		AddressID:          c.order.AddressID,
		ShippingMethodName: c.order.ShippingMethodName,
		PaymentMethodName:  c.order.Payment.DisplayName,
		Note:               c.order.Note,
		OriginalTotal:      c.order.Totals.OriginalTotal,
		FinalTotal:         c.order.Totals.FinalTotal,
		DiscountAmount:     c.order.Totals.DiscountAmount,
		VoucherCode:        c.order.VoucherCode,
	}
	for _, l := range c.order.Lines {
		req.Bill.Items = append(req.Bill.Items, backend.LineItem{
			ProductID: l.ProductID,
			Size:      l.Size,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.UnitPrice * float64(l.Quantity),
		})
	}

	finalBillID, err := c.backend.CreateAfterPayment(ctx, req)
	if err != nil {
		log.Error("create bill after payment failed", zap.Error(err))
		return "", err
	}

	c.runSideEffects(ctx, finalBillID)
	log.Info("order finalized after gateway payment", zap.String("final_bill_id", finalBillID))
	return finalBillID, nil
}

// gatewayExpire fires when no navigation event resolved the gateway outcome
// in time.
func (c *Confirmation) gatewayExpire() {
	ctx := context.Background()
	if err := c.transition(StateCancelled, ReasonGatewayTimeout); err != nil {
		return
	}
	if err := c.backend.CancelBill(ctx, c.order.BillID); err != nil {
		logger.L().Error("cancel pending bill on gateway timeout failed",
			zap.String("bill_id", c.order.BillID),
			zap.Error(err),
		)
	}
}

// runSideEffects clears the purchased lines from the cart, decrements stock
// per line and emits the order-placed notification. Cart removals run
// concurrently; decrements stay sequential for per-item error attribution.
// Individual failures are logged and tolerated.
func (c *Confirmation) runSideEffects(ctx context.Context, billID string) {
	log := logger.FromCtx(ctx).With(zap.String("bill_id", billID))

	var wg sync.WaitGroup
	for _, line := range c.order.Lines {
		wg.Add(1)
		go func(line CartLine) {
			defer wg.Done()
			if err := c.backend.DeleteCartLine(ctx, line.ID); err != nil {
				log.Warn("cart line removal failed",
					zap.String("cart_line_id", line.ID),
					zap.Error(err),
				)
			}
		}(line)
	}
	wg.Wait()

	for _, line := range c.order.Lines {
		if err := c.backend.DecreaseQuantity(ctx, line.SizeID, line.Quantity); err != nil {
			log.Warn("stock decrement failed",
				zap.String("size_id", line.SizeID),
				zap.Int("quantity", line.Quantity),
				zap.Error(err),
			)
		}
	}

	if err := c.notifier.OrderPlaced(ctx, c.order.AccountID, billID); err != nil {
		log.Warn("order-placed notification failed", zap.Error(err))
	}
}
