package service

import (
	"context"

	"ott-webapp/internal/model"

	"github.com/google/uuid"
)

// CheckoutService defines the order workflow of one checkout screen.
type CheckoutService interface {
	// Start opens a checkout session for an offer and creates its order.
	Start(ctx context.Context, req *model.StartCheckoutRequest) (*model.CheckoutResult, error)

	// Get returns the current checkout view of a session.
	Get(ctx context.Context, id uuid.UUID) (*model.CheckoutView, error)

	// ApplyCoupon re-issues the session's order with a coupon code.
	ApplyCoupon(ctx context.Context, id uuid.UUID, req *model.ApplyCouponRequest) (*model.CheckoutResult, error)

	// ChangePaymentMethod re-issues the session's order with another payment method.
	ChangePaymentMethod(ctx context.Context, id uuid.UUID, req *model.ChangePaymentMethodRequest) (*model.CheckoutResult, error)

	// PayWithoutDetails completes an order that needs no payment details.
	PayWithoutDetails(ctx context.Context, id uuid.UUID, req *model.PaymentRequest) (*model.CheckoutResult, error)

	// PayWithPayPal starts a PayPal payment and returns its approval URL.
	PayWithPayPal(ctx context.Context, id uuid.UUID, req *model.PaymentRequest) (*model.CheckoutResult, error)

	// Close tears the session down so the next checkout creates a fresh order.
	Close(ctx context.Context, id uuid.UUID) error
}

// SeriesService resolves series screens from media and navigation state.
type SeriesService interface {
	// Resolve loads the series of media and builds its view.
	Resolve(ctx context.Context, req *SeriesRequest) (*model.SeriesView, error)
}
