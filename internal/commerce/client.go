// Package commerce is the client of the remote commerce API that owns
// offers, orders and payments.
package commerce

import (
	"context"

	"ott-webapp/internal/model"
)

// Client defines the operations of the commerce API used by checkout.
// Every error returned is, or wraps, a *model.CommerceError.
type Client interface {
	// GetOffer retrieves a purchasable offer by its offer id.
	GetOffer(ctx context.Context, offerID string) (*model.Offer, error)

	// GetPaymentMethods returns the ordered payment methods; the first is
	// the default selection.
	GetPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error)

	// CreateOrder creates an order bound to an offer and payment method.
	CreateOrder(ctx context.Context, offerID string, paymentMethodID int) (*model.Order, error)

	// UpdateOrder re-issues an order with a payment method and coupon.
	UpdateOrder(ctx context.Context, orderID int64, paymentMethodID int, couponCode string) (*model.Order, error)

	// PaymentWithoutDetails completes an order that needs no payment details.
	PaymentWithoutDetails(ctx context.Context, orderID int64) error

	// PayPalPayment starts a PayPal payment and returns the approval URL.
	PayPalPayment(ctx context.Context, req model.PayPalPaymentRequest) (*model.PayPalPaymentResponse, error)

	// ReloadSubscription refreshes the customer's active subscription.
	ReloadSubscription(ctx context.Context) error
}

type customerTokenKey struct{}

// WithCustomerToken attaches the customer's bearer token to ctx. The
// client forwards it on every request.
func WithCustomerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, customerTokenKey{}, token)
}

// CustomerToken returns the token attached by WithCustomerToken.
func CustomerToken(ctx context.Context) string {
	token, _ := ctx.Value(customerTokenKey{}).(string)
	return token
}
