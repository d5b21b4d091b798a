package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cakeshop-be/internal/logger"

	"go.uber.org/zap"
)

const (
	vnpVersion = "2.1.0"
	vnpCommand = "pay"
	vnpLocale  = "vn"

	codeSuccess = "00"
)

// Config holds the merchant credentials and URLs for the VNPay gateway.
type Config struct {
	TmnCode    string
	HashSecret string
	// PayURL is the hosted payment page the customer is redirected to.
	PayURL string
	// ReturnURL is where the gateway sends the customer back.
	ReturnURL string
	// DeepLinkScheme marks app deep links as gateway returns ("cakeshop").
	DeepLinkScheme string
}

// Bridge builds hosted-payment URLs and classifies gateway return URLs.
// Classification is fail-safe: anything it cannot positively verify as a
// successful payment is treated as a failure.
type Bridge struct {
	cfg Config
	now func() time.Time
}

func NewBridge(cfg Config) *Bridge {
	return &Bridge{cfg: cfg, now: time.Now}
}

// BuildPaymentURL constructs the signed redirect URL for one pending bill.
// The gateway wire format carries amounts multiplied by 100.
func (b *Bridge) BuildPaymentURL(billID string, amount float64, orderInfo, clientIP string) (string, error) {
	if b.cfg.TmnCode == "" || b.cfg.HashSecret == "" {
		return "", errors.New("vnpay gateway not configured")
	}

	now := b.now()
	params := url.Values{}
	params.Set("vnp_Version", vnpVersion)
	params.Set("vnp_Command", vnpCommand)
	params.Set("vnp_TmnCode", b.cfg.TmnCode)
	params.Set("vnp_Amount", strconv.FormatInt(int64(amount*100), 10))
	params.Set("vnp_CurrCode", "VND")
	params.Set("vnp_TxnRef", billID)
	params.Set("vnp_OrderInfo", orderInfo)
	params.Set("vnp_OrderType", "other")
	params.Set("vnp_Locale", vnpLocale)
	params.Set("vnp_ReturnUrl", b.cfg.ReturnURL)
	params.Set("vnp_IpAddr", clientIP)
	params.Set("vnp_CreateDate", now.Format("20060102150405"))
	params.Set("vnp_ExpireDate", now.Add(15*time.Minute).Format("20060102150405"))

	signed := params.Encode()
	params.Set("vnp_SecureHash", b.sign(signed))

	return b.cfg.PayURL + "?" + params.Encode(), nil
}

// ParseReturn inspects a navigation URL and classifies the payment outcome.
// A URL is a gateway return when it hits the configured return path, uses
// the app deep-link scheme, or carries a gateway response-code parameter.
func (b *Bridge) ParseReturn(rawURL string) Outcome {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Unparseable URL: heuristic substring check before deciding
		// failure.
		return Outcome{
			Recognized: strings.Contains(rawURL, "vnp_ResponseCode"),
			Success: hasParamValue(rawURL, "vnp_ResponseCode", codeSuccess) &&
				hasParamValue(rawURL, "vnp_TransactionStatus", codeSuccess),
		}
	}

	q := u.Query()
	if !b.isReturn(u, q) {
		return Outcome{}
	}

	out := Outcome{
		Recognized:        true,
		ResponseCode:      q.Get("vnp_ResponseCode"),
		TransactionStatus: q.Get("vnp_TransactionStatus"),
		TransactionNo:     q.Get("vnp_TransactionNo"),
		BankCode:          q.Get("vnp_BankCode"),
		TxnRef:            q.Get("vnp_TxnRef"),
		OrderInfo:         q.Get("vnp_OrderInfo"),
	}
	if cents, err := strconv.ParseInt(q.Get("vnp_Amount"), 10, 64); err == nil {
		out.Amount = float64(cents) / 100
	}

	out.HashValid = b.verify(q)
	out.Success = out.HashValid &&
		out.ResponseCode == codeSuccess &&
		out.TransactionStatus == codeSuccess

	if !out.Success {
		logger.L().Info("gateway return classified as failure",
			zap.String("txn_ref", out.TxnRef),
			zap.String("response_code", out.ResponseCode),
			zap.String("transaction_status", out.TransactionStatus),
			zap.Bool("hash_valid", out.HashValid),
		)
	}
	return out
}

func (b *Bridge) isReturn(u *url.URL, q url.Values) bool {
	if b.cfg.DeepLinkScheme != "" && u.Scheme == b.cfg.DeepLinkScheme {
		return true
	}
	if b.cfg.ReturnURL != "" {
		if ret, err := url.Parse(b.cfg.ReturnURL); err == nil && ret.Path != "" && u.Path == ret.Path {
			return true
		}
	}
	return q.Has("vnp_ResponseCode")
}

// verify recomputes the secure hash over every vnp_ parameter except the
// hash fields themselves. With no secret configured verification is skipped.
func (b *Bridge) verify(q url.Values) bool {
	if b.cfg.HashSecret == "" {
		return true
	}

	got := q.Get("vnp_SecureHash")
	if got == "" {
		return false
	}

	signable := url.Values{}
	for k, vs := range q {
		if k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		if !strings.HasPrefix(k, "vnp_") {
			continue
		}
		for _, v := range vs {
			signable.Add(k, v)
		}
	}

	want := b.sign(signable.Encode())
	return hmac.Equal([]byte(strings.ToLower(got)), []byte(want))
}

// hasParamValue reports whether the raw query carries key with exactly the
// given value, so "vnp_ResponseCode=00" never matches code "007".
func hasParamValue(raw, key, value string) bool {
	needle := key + "=" + value
	rest := raw
	for {
		idx := strings.Index(rest, needle)
		if idx < 0 {
			return false
		}
		end := idx + len(needle)
		if end == len(rest) || rest[end] == '&' || rest[end] == '#' {
			return true
		}
		rest = rest[end:]
	}
}

func (b *Bridge) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(b.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
