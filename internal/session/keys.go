package session

import "time"

// Well-known session keys. The checkout flow owns these; other values may be
// stored by callers but are opaque to this package.
const (
	KeySelectedVoucher       = "selectedVoucher"
	KeySelectedAddress       = "selectedAddress"
	KeySelectedPaymentMethod = "selectedPaymentMethod"
	KeyDiscountPercent       = "discount_percent"
	KeyAccountID             = "accountId"
)

// TTLSession bounds how long abandoned per-account checkout state lives in
// stores that support expiry.
var TTLSession = 7 * 24 * time.Hour
