package httpx

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"cakeshop-be/internal/backend"
	"cakeshop-be/internal/checkout"
	"cakeshop-be/internal/logger"
	"cakeshop-be/internal/middleware"
	"cakeshop-be/internal/payment"
	"cakeshop-be/internal/pricing"
	"cakeshop-be/internal/shipping"
	"cakeshop-be/internal/utils"
	"cakeshop-be/internal/voucher"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes the checkout orchestration over REST.
type Handler struct {
	orch   *checkout.Orchestrator
	bridge *payment.Bridge
}

func NewHandler(orch *checkout.Orchestrator, bridge *payment.Bridge) *Handler {
	return &Handler{orch: orch, bridge: bridge}
}

// NewRouter wires the middleware chain and all routes.
func NewRouter(h *Handler, jwtSecret []byte) http.Handler {
	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(middleware.AuthMiddleware(jwtSecret))
	r.Use(middleware.RateLimitMiddleware)

	r.Get("/healthz", h.Health)
	r.Get("/shipping/methods", h.ShippingMethods)
	r.Get("/payment/vnpay/return", h.PaymentReturn)

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/submit", h.Submit)
		r.Get("/{billID}", h.Status)
		r.Post("/{billID}/confirm", h.Confirm)
		r.Post("/{billID}/cancel", h.Cancel)
	})

	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type shippingMethodsResponse struct {
	District string            `json:"district"`
	Zone     shipping.Zone     `json:"zone"`
	Methods  []shipping.Method `json:"methods"`
}

// ShippingMethods returns the delivery offer for a district.
func (h *Handler) ShippingMethods(w http.ResponseWriter, r *http.Request) {
	district := r.URL.Query().Get("district")
	zone := shipping.ClassifyDistrict(district)

	writeJSON(w, http.StatusOK, shippingMethodsResponse{
		District: district,
		Zone:     zone,
		Methods:  shipping.MethodsForZone(zone),
	})
}

type submitRequest struct {
	Lines            []checkout.CartLine     `json:"lines"`
	Address          *checkout.Address       `json:"address,omitempty"`
	ShippingMethodID string                  `json:"shipping_method_id"`
	PaymentMethod    *checkout.PaymentMethod `json:"payment_method,omitempty"`
	Voucher          *voucher.Record         `json:"voucher,omitempty"`
	ClearVoucher     bool                    `json:"clear_voucher,omitempty"`
	Note             string                  `json:"note"`
}

type submitResponse struct {
	BillID     string         `json:"bill_id"`
	State      checkout.State `json:"state"`
	ExpiresAt  time.Time      `json:"expires_at"`
	Totals     pricing.Totals `json:"totals"`
	PaymentURL string         `json:"payment_url,omitempty"`
}

// Submit builds a checkout session from the account's persisted selections
// plus the request overrides and creates the pending order. Gateway payments
// additionally get a hosted-payment URL and a longer decision window.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, ok := utils.GetAccountIDFromContext(ctx)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	c, err := h.orch.NewCheckout(ctx, accountID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	c.SetLines(req.Lines)
	c.Note = req.Note

	if req.Address != nil {
		if err := h.orch.SelectAddress(ctx, c, req.Address); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.PaymentMethod != nil {
		if err := h.orch.SelectPayment(ctx, c, *req.PaymentMethod); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.Voucher != nil || req.ClearVoucher {
		if err := h.orch.ApplyVoucher(ctx, c, req.Voucher); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if req.ShippingMethodID != "" {
		if err := c.SelectShippingMethod(req.ShippingMethodID); err != nil {
			writeError(w, r, err)
			return
		}
	}

	conf, err := h.orch.Submit(ctx, c)
	if err != nil {
		writeError(w, r, err)
		return
	}

	order := conf.Order()
	resp := submitResponse{
		BillID:    order.BillID,
		State:     conf.State(),
		ExpiresAt: conf.ExpiresAt(),
		Totals:    order.Totals,
	}

	if order.Payment.Kind == checkout.PaymentGateway {
		payURL, err := h.beginGateway(r, conf)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.PaymentURL = payURL
	}

	writeJSON(w, http.StatusCreated, resp)
}

// beginGateway opens the gateway window and builds the redirect URL. If the
// URL cannot be built the pending order is cancelled so no orphan awaits a
// payment that can never arrive.
func (h *Handler) beginGateway(r *http.Request, conf *checkout.Confirmation) (string, error) {
	ctx := r.Context()
	order := conf.Order()

	if err := conf.BeginGateway(); err != nil {
		return "", err
	}

	payURL, err := h.bridge.BuildPaymentURL(
		order.BillID,
		order.Totals.FinalTotal,
		"Thanh toan don hang "+order.BillID,
		clientIP(r),
	)
	if err != nil {
		logger.FromCtx(ctx).Error("build payment url failed",
			zap.String("bill_id", order.BillID),
			zap.Error(err),
		)
		if cErr := conf.Cancel(ctx, checkout.ReasonGatewayFailed); cErr != nil {
			logger.FromCtx(ctx).Error("cancel after payment url failure",
				zap.String("bill_id", order.BillID),
				zap.Error(cErr),
			)
		}
		return "", err
	}
	return payURL, nil
}

type statusResponse struct {
	BillID    string                `json:"bill_id"`
	State     checkout.State        `json:"state"`
	Reason    checkout.CancelReason `json:"reason,omitempty"`
	ExpiresAt time.Time             `json:"expires_at"`
	Totals    pricing.Totals        `json:"totals"`
}

// Status reports the live confirmation for one pending order.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	conf, ok := h.lookup(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		BillID:    conf.Order().BillID,
		State:     conf.State(),
		Reason:    conf.Reason(),
		ExpiresAt: conf.ExpiresAt(),
		Totals:    conf.Order().Totals,
	})
}

// Confirm finalizes a COD or bank-transfer order inside its decision window.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	conf, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := conf.Confirm(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		BillID: conf.Order().BillID,
		State:  conf.State(),
		Totals: conf.Order().Totals,
	})
}

// Cancel terminates a pending order on the user's request.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	conf, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := conf.Cancel(r.Context(), checkout.ReasonUser); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		BillID: conf.Order().BillID,
		State:  conf.State(),
		Reason: conf.Reason(),
		Totals: conf.Order().Totals,
	})
}

// lookup resolves the bill id to a live confirmation owned by the caller.
// Another account's bill reads as not found, never as forbidden.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*checkout.Confirmation, bool) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return nil, false
	}

	billID := chi.URLParam(r, "billID")
	conf, err := h.orch.Registry().Get(billID)
	if err != nil || conf.Order().AccountID != accountID {
		writeError(w, r, checkout.ErrPendingOrderNotFound)
		return nil, false
	}
	return conf, true
}

type paymentReturnResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	BillID  string `json:"bill_id,omitempty"`
}

// PaymentReturn is the landing point the gateway redirects the customer to.
// It classifies the outcome and resolves the matching gateway session. The
// route is unauthenticated: the redirect carries no app token, the secure
// hash authenticates the gateway instead.
func (h *Handler) PaymentReturn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	out := h.bridge.ParseReturn(r.URL.String())
	if !out.Recognized || out.TxnRef == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unrecognized gateway return"})
		return
	}

	conf, err := h.orch.Registry().Get(out.TxnRef)
	if err != nil {
		writeError(w, r, err)
		return
	}

	txn := backend.TransactionRecord{
		TransactionID:     out.TransactionNo,
		Amount:            out.Amount,
		BankCode:          out.BankCode,
		ResponseCode:      out.ResponseCode,
		TransactionStatus: out.TransactionStatus,
	}

	finalBillID, err := conf.CompleteGateway(ctx, out.Success, txn)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, paymentReturnResponse{
		Success: out.Success,
		Message: payment.ResponseMessage(out.ResponseCode),
		BillID:  finalBillID,
	})
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
