package checkout

import "errors"

var (
	// -- Submission validation --
	ErrShippingMethodRequired = errors.New("no shipping method selected")
	ErrPaymentMethodRequired  = errors.New("no payment method selected")
	ErrAddressRequired        = errors.New("no delivery address selected")
	ErrEmptyCartSelection     = errors.New("no cart lines selected")
	ErrMethodNotOffered       = errors.New("shipping method not offered for this zone")

	// -- Confirmation state machine --
	ErrAlreadyDecided         = errors.New("pending order already confirmed or cancelled")
	ErrGatewayPaymentRequired = errors.New("order uses the payment gateway; begin a gateway session instead")
	ErrGatewayNotStarted      = errors.New("no gateway session in progress")
	ErrGatewayAlreadyStarted  = errors.New("gateway session already in progress")

	// -- Registry --
	ErrPendingOrderNotFound = errors.New("pending order not found")
)
