package pricing

// Line is the minimal view of a cart line the calculator needs.
type Line struct {
	UnitPrice float64
	Quantity  int
}

// Totals is the derived pricing breakdown of a checkout. It is never
// persisted; it is recomputed whenever cart selection, shipping method or
// voucher changes.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	ShippingFee    float64 `json:"shipping_fee"`
	OriginalTotal  float64 `json:"original_total"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalTotal     float64 `json:"final_total"`
}

// ComputeTotals derives the checkout totals. Pure: no rounding is applied
// mid-calculation and identical inputs always yield identical outputs.
// DiscountAmount is clamped so the payable total never goes negative.
func ComputeTotals(lines []Line, shippingFee, discountPercent float64) Totals {
	var subtotal float64
	for _, l := range lines {
		subtotal += l.UnitPrice * float64(l.Quantity)
	}

	originalTotal := subtotal + shippingFee

	var discountAmount float64
	if discountPercent > 0 {
		discountAmount = originalTotal * discountPercent / 100
		if discountAmount > originalTotal {
			discountAmount = originalTotal
		}
	}

	return Totals{
		Subtotal:       subtotal,
		ShippingFee:    shippingFee,
		OriginalTotal:  originalTotal,
		DiscountAmount: discountAmount,
		FinalTotal:     originalTotal - discountAmount,
	}
}
