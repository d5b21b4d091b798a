package payment

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testBridge() *Bridge {
	b := NewBridge(Config{
		TmnCode:        "CAKESHOP",
		HashSecret:     "super-secret",
		PayURL:         "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:      "https://shop.example.com/payment/vnpay/return",
		DeepLinkScheme: "cakeshop",
	})
	b.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	}
	return b
}

func TestBuildPaymentURL(t *testing.T) {
	b := testBridge()

	raw, err := b.BuildPaymentURL("bill-42", 121500, "Thanh toan don hang bill-42", "203.0.113.9")
	assert.NoError(t, err)

	u, err := url.Parse(raw)
	assert.NoError(t, err)
	q := u.Query()

	assert.Equal(t, "2.1.0", q.Get("vnp_Version"))
	assert.Equal(t, "pay", q.Get("vnp_Command"))
	assert.Equal(t, "CAKESHOP", q.Get("vnp_TmnCode"))
	assert.Equal(t, "12150000", q.Get("vnp_Amount"))
	assert.Equal(t, "bill-42", q.Get("vnp_TxnRef"))
	assert.Equal(t, "20240315103000", q.Get("vnp_CreateDate"))
	assert.Equal(t, "20240315104500", q.Get("vnp_ExpireDate"))
	assert.NotEmpty(t, q.Get("vnp_SecureHash"))
}

func TestBuildPaymentURLUnconfigured(t *testing.T) {
	b := NewBridge(Config{})

	_, err := b.BuildPaymentURL("bill-1", 1000, "info", "127.0.0.1")
	assert.Error(t, err)
}

func TestParseReturnRoundTrip(t *testing.T) {
	b := testBridge()

	// Simulate the gateway redirecting back with a success outcome, signed
	// with the shared secret the same way BuildPaymentURL signs requests.
	q := url.Values{}
	q.Set("vnp_Amount", "12150000")
	q.Set("vnp_BankCode", "NCB")
	q.Set("vnp_ResponseCode", "00")
	q.Set("vnp_TransactionStatus", "00")
	q.Set("vnp_TransactionNo", "14226112")
	q.Set("vnp_TxnRef", "bill-42")
	q.Set("vnp_OrderInfo", "Thanh toan don hang bill-42")
	q.Set("vnp_SecureHash", b.sign(q.Encode()))

	out := b.ParseReturn("https://shop.example.com/payment/vnpay/return?" + q.Encode())

	assert.True(t, out.Recognized)
	assert.True(t, out.HashValid)
	assert.True(t, out.Success)
	assert.Equal(t, "bill-42", out.TxnRef)
	assert.Equal(t, "14226112", out.TransactionNo)
	assert.Equal(t, 121500.0, out.Amount)
}

func TestParseReturnDeclined(t *testing.T) {
	b := testBridge()

	q := url.Values{}
	q.Set("vnp_Amount", "12150000")
	q.Set("vnp_ResponseCode", "24")
	q.Set("vnp_TransactionStatus", "02")
	q.Set("vnp_TxnRef", "bill-42")
	q.Set("vnp_SecureHash", b.sign(q.Encode()))

	out := b.ParseReturn("https://shop.example.com/payment/vnpay/return?" + q.Encode())

	assert.True(t, out.Recognized)
	assert.True(t, out.HashValid)
	assert.False(t, out.Success)
	assert.Equal(t, "24", out.ResponseCode)
}

func TestParseReturnTamperedHash(t *testing.T) {
	b := testBridge()

	q := url.Values{}
	q.Set("vnp_Amount", "12150000")
	q.Set("vnp_ResponseCode", "00")
	q.Set("vnp_TransactionStatus", "00")
	q.Set("vnp_TxnRef", "bill-42")
	q.Set("vnp_SecureHash", b.sign(q.Encode()))

	// Attacker bumps the amount after signing.
	q.Set("vnp_Amount", "100")

	out := b.ParseReturn("https://shop.example.com/payment/vnpay/return?" + q.Encode())

	assert.True(t, out.Recognized)
	assert.False(t, out.HashValid)
	assert.False(t, out.Success)
}

func TestParseReturnMissingHash(t *testing.T) {
	b := testBridge()

	out := b.ParseReturn("https://shop.example.com/payment/vnpay/return?vnp_ResponseCode=00&vnp_TransactionStatus=00")

	assert.True(t, out.Recognized)
	assert.False(t, out.HashValid)
	assert.False(t, out.Success)
}

func TestParseReturnDeepLink(t *testing.T) {
	b := testBridge()

	out := b.ParseReturn("cakeshop://payment?vnp_ResponseCode=24&vnp_TransactionStatus=02")

	assert.True(t, out.Recognized)
	assert.False(t, out.Success)
}

func TestParseReturnUnrelatedURL(t *testing.T) {
	b := testBridge()

	out := b.ParseReturn("https://shop.example.com/products/123")

	assert.False(t, out.Recognized)
	assert.False(t, out.Success)
}

func TestParseReturnUnparseable(t *testing.T) {
	b := testBridge()

	raw := "https://shop.example.com/payment/vnpay/return?vnp_ResponseCode=00&vnp_TransactionStatus=00&bad=%zz\x7f"
	out := b.ParseReturn(raw)

	assert.True(t, out.Recognized)
	assert.True(t, out.Success)

	out = b.ParseReturn(strings.Replace(raw, "vnp_ResponseCode=00", "vnp_ResponseCode=24", 1))
	assert.False(t, out.Success)

	// "007" must not read as "00".
	out = b.ParseReturn(strings.Replace(raw, "vnp_ResponseCode=00", "vnp_ResponseCode=007", 1))
	assert.False(t, out.Success)
}

func TestResponseMessage(t *testing.T) {
	assert.NotEmpty(t, ResponseMessage("00"))
	assert.NotEmpty(t, ResponseMessage("24"))
	assert.Equal(t, "Giao dịch không thành công", ResponseMessage("??"))
}
