package payment

// Outcome is the classified result of a gateway return URL.
type Outcome struct {
	// Recognized reports whether the URL was a gateway return at all.
	// Unrecognized navigations are ignored by the caller.
	Recognized bool
	// Success requires response code "00", transaction status "00" and,
	// when a hash secret is configured, a valid secure hash.
	Success bool
	// HashValid is false when the return carried a missing or tampered
	// secure hash. Success is never true in that case.
	HashValid bool

	ResponseCode      string
	TransactionStatus string
	TransactionNo     string
	BankCode          string
	TxnRef            string
	OrderInfo         string
	// Amount in currency units (the wire format carries it multiplied
	// by 100).
	Amount float64
}

// responseMessages maps VNPay response codes to user-facing text.
var responseMessages = map[string]string{
	"00": "Giao dịch thành công",
	"07": "Giao dịch bị nghi ngờ gian lận",
	"09": "Thẻ/Tài khoản chưa đăng ký InternetBanking",
	"10": "Xác thực thông tin thẻ/tài khoản không đúng quá 3 lần",
	"11": "Đã hết hạn chờ thanh toán",
	"12": "Thẻ/Tài khoản bị khóa",
	"13": "Nhập sai mật khẩu xác thực giao dịch (OTP)",
	"24": "Khách hàng hủy giao dịch",
	"51": "Tài khoản không đủ số dư",
	"65": "Tài khoản đã vượt quá hạn mức giao dịch trong ngày",
	"75": "Ngân hàng thanh toán đang bảo trì",
	"79": "Nhập sai mật khẩu thanh toán quá số lần quy định",
}

// ResponseMessage returns the user-facing text for a gateway response code.
func ResponseMessage(code string) string {
	if msg, ok := responseMessages[code]; ok {
		return msg
	}
	return "Giao dịch không thành công"
}
