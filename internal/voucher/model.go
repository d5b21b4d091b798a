package voucher

import (
	"strconv"
	"strings"
	"time"
)

// Record is a voucher as persisted in the session store or handed over from
// the voucher-selection flow. Discount tolerates both numeric values and
// strings with a trailing percent sign ("10%").
type Record struct {
	ID       string    `json:"id"`
	Code     string    `json:"code"`
	Discount any       `json:"discount"`
	EndDate  time.Time `json:"end_date"`
}

// Selection is the resolved voucher applied to a checkout.
type Selection struct {
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discount_percent"`
	SourceRecordID  string  `json:"source_record_id"`
}

// ParsePercent extracts a discount percentage from a loosely typed value.
// Numbers pass through; strings may carry a trailing '%'. Malformed values
// yield 0.
func ParsePercent(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
