package backend

// LineItem is one purchased cart line as the core backend expects it.
type LineItem struct {
	ProductID string  `json:"product_id"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// PendingBillRequest creates a pending order awaiting confirmation.
type PendingBillRequest struct {
	AccountID          string     `json:"account_id"`
	AddressID          string     `json:"address_id"`
	ShippingMethodName string     `json:"shipping_method_name"`
	PaymentMethodName  string     `json:"payment_method_name"`
	Note               string     `json:"note"`
	OriginalTotal      float64    `json:"original_total"`
	FinalTotal         float64    `json:"final_total"`
	DiscountAmount     float64    `json:"discount_amount"`
	VoucherCode        string     `json:"voucher_code,omitempty"`
	Items              []LineItem `json:"items"`
}

// TransactionRecord describes a completed gateway payment.
type TransactionRecord struct {
	TransactionID     string  `json:"transaction_id"`
	Amount            float64 `json:"amount"`
	BankCode          string  `json:"bank_code"`
	ResponseCode      string  `json:"response_code"`
	TransactionStatus string  `json:"transaction_status"`
}

// AfterPaymentRequest finalizes an order once the gateway confirmed payment.
type AfterPaymentRequest struct {
	Bill        PendingBillRequest `json:"bill"`
	Transaction TransactionRecord  `json:"transaction"`
}

type billResponse struct {
	BillID string `json:"billId"`
}
