package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cakeshop-be/internal/backend"
	"cakeshop-be/internal/logger"
	"cakeshop-be/internal/notify"
	"cakeshop-be/internal/pricing"
	"cakeshop-be/internal/session"
	"cakeshop-be/internal/shipping"
	"cakeshop-be/internal/voucher"

	"go.uber.org/zap"
)

// Backend is the slice of the core backend the checkout flow drives.
type Backend interface {
	CreatePendingBill(ctx context.Context, req backend.PendingBillRequest) (string, error)
	CancelBill(ctx context.Context, billID string) error
	CreateAfterPayment(ctx context.Context, req backend.AfterPaymentRequest) (string, error)
	DecreaseQuantity(ctx context.Context, sizeID string, quantity int) error
	DeleteCartLine(ctx context.Context, cartLineID string) error
}

// Checkout aggregates one session's inputs. Totals are derived on demand,
// never stored, so they can never go stale against the inputs.
type Checkout struct {
	AccountID string
	Note      string

	address        *Address
	lines          []CartLine
	zone           shipping.Zone
	methods        []shipping.Method
	selectedMethod *shipping.Method
	shippingError  bool
	payment        *PaymentMethod
	voucherSel     *voucher.Selection
}

func (c *Checkout) Address() *Address             { return c.address }
func (c *Checkout) Lines() []CartLine             { return c.lines }
func (c *Checkout) Zone() shipping.Zone           { return c.zone }
func (c *Checkout) Methods() []shipping.Method    { return c.methods }
func (c *Checkout) Payment() *PaymentMethod       { return c.payment }
func (c *Checkout) Voucher() *voucher.Selection   { return c.voucherSel }
func (c *Checkout) ShippingError() bool           { return c.shippingError }
func (c *Checkout) SelectedMethod() *shipping.Method {
	if c.selectedMethod == nil {
		return nil
	}
	m := *c.selectedMethod
	return &m
}

// SetLines replaces the selected cart-line snapshot.
func (c *Checkout) SetLines(lines []CartLine) {
	c.lines = lines
}

// SetAddress installs the delivery address and recomputes the shipping
// offer from its district's zone. If the previously selected method is no
// longer offered the selection resets to none; the shipping-error flag stays
// down because no submit attempt is at fault — the next Submit raises it.
func (c *Checkout) SetAddress(addr *Address) {
	c.address = addr

	district := ""
	if addr != nil {
		district = addr.District
	}
	c.zone = shipping.ClassifyDistrict(district)
	c.methods = shipping.MethodsForZone(c.zone)

	if c.selectedMethod != nil && !methodOffered(c.methods, c.selectedMethod.ID) {
		c.selectedMethod = nil
		c.shippingError = false
	}
}

// SelectShippingMethod picks a method by id from the current offer.
func (c *Checkout) SelectShippingMethod(id string) error {
	zone := c.zone
	if c.address == nil {
		zone = shipping.ZoneUnknown
	}
	m, ok := shipping.MethodByID(zone, id)
	if !ok {
		return ErrMethodNotOffered
	}
	c.selectedMethod = &m
	c.shippingError = false
	return nil
}

func (c *Checkout) SelectPayment(pm PaymentMethod) {
	c.payment = &pm
}

func (c *Checkout) SetVoucher(sel *voucher.Selection) {
	c.voucherSel = sel
}

// Totals recomputes the pricing breakdown from the current inputs.
func (c *Checkout) Totals() pricing.Totals {
	var fee float64
	if c.selectedMethod != nil {
		fee = c.selectedMethod.Price
	}
	var percent float64
	if c.voucherSel != nil {
		percent = c.voucherSel.DiscountPercent
	}
	return pricing.ComputeTotals(pricingLines(c.lines), fee, percent)
}

// Orchestrator builds checkout sessions and submits them as pending orders.
type Orchestrator struct {
	backend  Backend
	notifier notify.Notifier
	vouchers *voucher.Resolver
	store    session.Store
	registry *Registry

	decisionWindow time.Duration
	gatewayWindow  time.Duration
}

func NewOrchestrator(be Backend, notifier notify.Notifier, vouchers *voucher.Resolver, store session.Store) *Orchestrator {
	return &Orchestrator{
		backend:        be,
		notifier:       notifier,
		vouchers:       vouchers,
		store:          store,
		registry:       NewRegistry(),
		decisionWindow: 5 * time.Minute,
		gatewayWindow:  10 * time.Minute,
	}
}

// Registry exposes the live confirmations, keyed by bill id.
func (o *Orchestrator) Registry() *Registry { return o.registry }

// NewCheckout starts a session seeded from the account's persisted
// selections (address, payment method, voucher).
func (o *Orchestrator) NewCheckout(ctx context.Context, accountID string) (*Checkout, error) {
	c := &Checkout{
		AccountID: accountID,
		zone:      shipping.ZoneUnknown,
		methods:   shipping.MethodsForZone(shipping.ZoneUnknown),
	}

	if raw, err := o.store.Get(ctx, accountID, session.KeySelectedAddress); err == nil {
		var addr Address
		if err := json.Unmarshal([]byte(raw), &addr); err == nil {
			c.SetAddress(&addr)
		}
	}

	if raw, err := o.store.Get(ctx, accountID, session.KeySelectedPaymentMethod); err == nil {
		var pm PaymentMethod
		if err := json.Unmarshal([]byte(raw), &pm); err == nil && pm.Kind != "" {
			c.payment = &pm
		}
	}

	sel, err := o.vouchers.LoadPersisted(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("seed checkout: %w", err)
	}
	c.voucherSel = sel

	return c, nil
}

// SelectAddress persists the address as the session default and installs it.
// A newly chosen default must be reflected before order creation reads it.
func (o *Orchestrator) SelectAddress(ctx context.Context, c *Checkout, addr *Address) error {
	if addr != nil {
		raw, err := json.Marshal(addr)
		if err != nil {
			return fmt.Errorf("persist address: %w", err)
		}
		if err := o.store.Set(ctx, c.AccountID, session.KeySelectedAddress, string(raw)); err != nil {
			return fmt.Errorf("persist address: %w", err)
		}
	}
	c.SetAddress(addr)
	return nil
}

// SelectPayment persists and installs the payment method.
func (o *Orchestrator) SelectPayment(ctx context.Context, c *Checkout, pm PaymentMethod) error {
	raw, err := json.Marshal(pm)
	if err != nil {
		return fmt.Errorf("persist payment method: %w", err)
	}
	if err := o.store.Set(ctx, c.AccountID, session.KeySelectedPaymentMethod, string(raw)); err != nil {
		return fmt.Errorf("persist payment method: %w", err)
	}
	c.SelectPayment(pm)
	return nil
}

// ApplyVoucher overrides or clears (nil) the session voucher.
func (o *Orchestrator) ApplyVoucher(ctx context.Context, c *Checkout, rec *voucher.Record) error {
	sel, err := o.vouchers.ApplyRoute(ctx, c.AccountID, rec)
	if err != nil {
		return err
	}
	c.SetVoucher(sel)
	return nil
}

// Submit validates the session and creates the pending bill. Validation
// short-circuits before any network call: shipping method, then payment
// method, then address, then a non-empty line selection.
func (o *Orchestrator) Submit(ctx context.Context, c *Checkout) (*Confirmation, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("account_id", c.AccountID),
		zap.Int("item_count", len(c.lines)),
	)

	if c.selectedMethod == nil {
		c.shippingError = true
		log.Warn("submit rejected: shipping method missing")
		return nil, ErrShippingMethodRequired
	}
	if c.payment == nil {
		log.Warn("submit rejected: payment method missing")
		return nil, ErrPaymentMethodRequired
	}
	if c.address == nil {
		log.Warn("submit rejected: address missing")
		return nil, ErrAddressRequired
	}
	if len(c.lines) == 0 {
		log.Warn("submit rejected: empty cart selection")
		return nil, ErrEmptyCartSelection
	}

	totals := c.Totals()

	req := backend.PendingBillRequest{
		AccountID:          c.AccountID,
		AddressID:          c.address.ID,
		ShippingMethodName: c.selectedMethod.Name,
		PaymentMethodName:  c.payment.DisplayName,
		Note:               c.Note,
		OriginalTotal:      totals.OriginalTotal,
		FinalTotal:         totals.FinalTotal,
		DiscountAmount:     totals.DiscountAmount,
		Items:              make([]backend.LineItem, 0, len(c.lines)),
	}
	if c.voucherSel != nil {
		req.VoucherCode = c.voucherSel.Code
	}
	for _, l := range c.lines {
		req.Items = append(req.Items, backend.LineItem{
			ProductID: l.ProductID,
			Size:      l.Size,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.UnitPrice * float64(l.Quantity),
		})
	}

	billID, err := o.backend.CreatePendingBill(ctx, req)
	if err != nil {
		return nil, err
	}

	order := &PendingOrder{
		BillID:             billID,
		AccountID:          c.AccountID,
		AddressID:          c.address.ID,
		Note:               c.Note,
		ShippingMethodName: c.selectedMethod.Name,
		Payment:            *c.payment,
		VoucherCode:        req.VoucherCode,
		Lines:              c.lines,
		Totals:             totals,
	}

	conf := newConfirmation(o.backend, o.notifier, order, o.decisionWindow, o.gatewayWindow)
	conf.onTerminal = func() { o.registry.Remove(billID) }
	o.registry.Add(conf)
	conf.start()

	log.Info("pending order created",
		zap.String("bill_id", billID),
		zap.Float64("final_total", totals.FinalTotal),
	)
	return conf, nil
}
