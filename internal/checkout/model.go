package checkout

import (
	"cakeshop-be/internal/pricing"
	"cakeshop-be/internal/shipping"
)

// CartLine is a read-only snapshot of one selected cart line. The cart
// itself is owned by the core backend; the orchestrator only receives the
// lines the caller selected for checkout.
type CartLine struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Title     string  `json:"title"`
	UnitPrice float64 `json:"unit_price"`
	Size      string  `json:"size"`
	SizeID    string  `json:"size_id"`
	Quantity  int     `json:"quantity"`
	ImageRef  string  `json:"image_ref"`
}

// Address is the delivery address selected for the session.
type Address struct {
	ID            string   `json:"id"`
	RecipientName string   `json:"recipient_name"`
	Phone         string   `json:"phone"`
	Ward          string   `json:"ward"`
	District      string   `json:"district"`
	City          string   `json:"city"`
	DetailLine    string   `json:"detail_line"`
	IsDefault     bool     `json:"is_default"`
	Lat           *float64 `json:"lat,omitempty"`
	Lng           *float64 `json:"lng,omitempty"`
}

// PaymentKind discriminates payment methods by behavior, independent of the
// free-form display name shown to the user.
type PaymentKind string

const (
	// PaymentCOD finalizes on explicit confirmation.
	PaymentCOD PaymentKind = "cod"
	// PaymentGateway defers finalization to the online payment gateway.
	PaymentGateway PaymentKind = "gateway"
	// PaymentBankTransfer behaves like COD for the confirmation flow.
	PaymentBankTransfer PaymentKind = "bank_transfer"
)

type PaymentMethod struct {
	Kind        PaymentKind `json:"kind"`
	DisplayName string      `json:"display_name"`
}

// PendingOrder is the snapshot handed to the confirmation flow after the
// backend accepted a pending bill. It is mutable only via the two terminal
// transitions: confirm or cancel.
type PendingOrder struct {
	BillID             string         `json:"bill_id"`
	AccountID          string         `json:"account_id"`
	AddressID          string         `json:"address_id"`
	Note               string         `json:"note"`
	ShippingMethodName string         `json:"shipping_method_name"`
	Payment            PaymentMethod  `json:"payment"`
	VoucherCode        string         `json:"voucher_code,omitempty"`
	Lines              []CartLine     `json:"lines"`
	Totals             pricing.Totals `json:"totals"`
}

func pricingLines(lines []CartLine) []pricing.Line {
	out := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		out = append(out, pricing.Line{UnitPrice: l.UnitPrice, Quantity: l.Quantity})
	}
	return out
}

// methodOffered reports whether a method id is in the offered list.
func methodOffered(methods []shipping.Method, id string) bool {
	for _, m := range methods {
		if m.ID == id {
			return true
		}
	}
	return false
}
