package model

import "github.com/google/uuid"

// Navigation tells the client where to go next.
type Navigation struct {
	To      string `json:"to"`
	Replace bool   `json:"replace"`
}

// StartCheckoutRequest represents the request payload for opening checkout.
type StartCheckoutRequest struct {
	OfferID         string `json:"offerId"`
	Location        string `json:"location"`
	PurchasingOffer bool   `json:"purchasingOffer,omitempty"`
}

// ApplyCouponRequest represents a coupon submission.
type ApplyCouponRequest struct {
	CouponCode string `json:"couponCode"`
	Location   string `json:"location"`
}

// ChangePaymentMethodRequest represents a payment method switch.
type ChangePaymentMethodRequest struct {
	PaymentMethodID int    `json:"paymentMethodId"`
	Location        string `json:"location"`
}

// PaymentRequest carries the client location used to build return URLs.
type PaymentRequest struct {
	Origin   string `json:"origin"`
	Location string `json:"location"`
}

// CouponState is the UI-facing coupon form state.
type CouponState struct {
	Code    string `json:"code"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

// CheckoutView is everything the client needs to render checkout.
type CheckoutView struct {
	SessionID       uuid.UUID       `json:"sessionId"`
	Order           *Order          `json:"order,omitempty"`
	Offer           *Offer          `json:"offer,omitempty"`
	OfferType       OfferType       `json:"offerType"`
	PaymentMethods  []PaymentMethod `json:"paymentMethods"`
	PaymentMethodID *int            `json:"paymentMethodId,omitempty"`
	Widget          PaymentWidget   `json:"widget,omitempty"`
	WidgetError     string          `json:"widgetError,omitempty"`
	Coupon          CouponState     `json:"coupon"`
	Submitting      bool            `json:"submitting"`
	PaymentError    string          `json:"paymentError,omitempty"`
	SuccessURL      string          `json:"successUrl"`
}

// CheckoutResult is returned by workflow operations. Exactly one of View
// or Navigation is usually set; Navigation wins when both are present.
type CheckoutResult struct {
	View       *CheckoutView `json:"view,omitempty"`
	Navigation *Navigation   `json:"navigation,omitempty"`
	// RedirectURL is an external payment provider URL.
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// Translation keys surfaced to the client instead of raw error text.
const (
	CouponErrorNotValid = "coupon_not_valid"
	PaymentErrorFailed  = "payment_failed"
)
