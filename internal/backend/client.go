package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cakeshop-be/internal/logger"

	"go.uber.org/zap"
)

// Client talks to the core cake-shop backend that owns orders, carts and
// stock. The orchestrator never persists those itself.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreatePendingBill persists a pending order and returns its bill id.
func (c *Client) CreatePendingBill(ctx context.Context, req PendingBillRequest) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("account_id", req.AccountID),
		zap.Int("item_count", len(req.Items)),
		zap.Float64("final_total", req.FinalTotal),
	)
	log.Info("creating pending bill")

	var res billResponse
	if err := c.do(ctx, http.MethodPost, "/bills/CreatePending", req, &res); err != nil {
		log.Error("pending bill creation failed", zap.Error(err))
		return "", err
	}

	log.Info("pending bill created", zap.String("bill_id", res.BillID))
	return res.BillID, nil
}

// CancelBill moves a pending order to cancelled.
func (c *Client) CancelBill(ctx context.Context, billID string) error {
	log := logger.FromCtx(ctx).With(zap.String("bill_id", billID))

	body := map[string]string{"status": "cancelled"}
	if err := c.do(ctx, http.MethodPut, "/bills/"+billID, body, nil); err != nil {
		log.Error("bill cancellation failed", zap.Error(err))
		return err
	}

	log.Info("pending bill cancelled")
	return nil
}

// CreateAfterPayment finalizes an order once the gateway confirmed payment.
func (c *Client) CreateAfterPayment(ctx context.Context, req AfterPaymentRequest) (string, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("account_id", req.Bill.AccountID),
		zap.String("transaction_id", req.Transaction.TransactionID),
	)
	log.Info("creating bill after gateway payment")

	var res billResponse
	if err := c.do(ctx, http.MethodPost, "/bills/CreateAfterPayment", req, &res); err != nil {
		log.Error("post-payment bill creation failed", zap.Error(err))
		return "", err
	}

	log.Info("bill created after payment", zap.String("bill_id", res.BillID))
	return res.BillID, nil
}

// DecreaseQuantity decrements one size's stock by the purchased quantity.
func (c *Client) DecreaseQuantity(ctx context.Context, sizeID string, quantity int) error {
	body := map[string]any{
		"sizeId":             sizeID,
		"quantityToDecrease": quantity,
	}
	return c.do(ctx, http.MethodPost, "/decrease-quantity", body, nil)
}

// DeleteCartLine removes one line from the account's persisted cart.
func (c *Client) DeleteCartLine(ctx context.Context, cartLineID string) error {
	return c.do(ctx, http.MethodDelete, "/carts/"+cartLineID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read backend response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(bodyBytes, &payload)
		return &Error{StatusCode: resp.StatusCode, Message: payload.Message}
	}

	if out != nil {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("decode backend response: %w", err)
		}
	}
	return nil
}
