package model

// Payment method names and providers understood by the dispatcher.
const (
	MethodCard   = "card"
	MethodPayPal = "paypal"

	ProviderStripe = "stripe"
	ProviderAdyen  = "adyen"
	ProviderPayPal = "paypal"
)

// PaymentMethod is a payment option declared by the commerce API.
type PaymentMethod struct {
	ID         int    `json:"id"`
	MethodName string `json:"methodName"`
	Provider   string `json:"paymentGateway"`
	Logo       string `json:"logoUrl,omitempty"`
}

// PaymentWidget names the payment UI the client must render.
type PaymentWidget string

const (
	WidgetNoPayment  PaymentWidget = "no-payment"
	WidgetStripeCard PaymentWidget = "stripe-card"
	WidgetAdyenCard  PaymentWidget = "adyen-card"
	WidgetPayPal     PaymentWidget = "paypal"
)

// PayPalPaymentRequest is sent to the commerce API to start a PayPal flow.
type PayPalPaymentRequest struct {
	OrderID    int64  `json:"orderId"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
	ErrorURL   string `json:"errorUrl"`
	CouponCode string `json:"couponCode,omitempty"`
}

// PayPalPaymentResponse carries the PayPal approval URL, when any.
type PayPalPaymentResponse struct {
	RedirectURL string `json:"redirectUrl,omitempty"`
}
