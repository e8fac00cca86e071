package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// OfferType distinguishes subscription from transactional offers.
type OfferType string

const (
	OfferTypeSVOD OfferType = "svod"
	OfferTypeTVOD OfferType = "tvod"
)

// Offer is a purchasable subscription or one-time product.
type Offer struct {
	ID             int64   `json:"id"`
	OfferID        string  `json:"offerId"`
	Title          string  `json:"offerTitle"`
	Price          float64 `json:"customerPriceInclTax"`
	Currency       string  `json:"customerCurrency"`
	Period         string  `json:"period,omitempty"`
	FreeDays       int     `json:"freeDays,omitempty"`
	DurationPeriod string  `json:"durationPeriod,omitempty"`
	DurationAmount int     `json:"durationAmount,omitempty"`
}

// IsSVOD reports whether the offer is a subscription. Subscription offer
// ids carry an "S" prefix.
func (o *Offer) IsSVOD() bool {
	return strings.HasPrefix(o.OfferID, "S")
}

// Type returns the derived offer type. A nil offer counts as svod.
func (o *Offer) Type() OfferType {
	if o != nil && !o.IsSVOD() {
		return OfferTypeTVOD
	}
	return OfferTypeSVOD
}

// OrderDiscount describes a coupon or trial discount applied to an order.
type OrderDiscount struct {
	Applied bool   `json:"applied"`
	Type    string `json:"type"`
	Periods int    `json:"periods"`
}

// PriceBreakdown holds the individual price components of an order.
type PriceBreakdown struct {
	OfferPrice       float64 `json:"offerPrice"`
	DiscountAmount   float64 `json:"discountAmount"`
	TaxValue         float64 `json:"taxValue"`
	PaymentMethodFee float64 `json:"paymentMethodFee"`
}

// Order is the commerce-side record binding an offer, a payment method and
// an optional coupon.
type Order struct {
	ID                     int64          `json:"id"`
	OfferID                string         `json:"offerId"`
	CustomerID             int64          `json:"customerId,omitempty"`
	PaymentMethodID        int            `json:"paymentMethodId,omitempty"`
	CouponCode             string         `json:"couponCode,omitempty"`
	RequiredPaymentDetails bool           `json:"requiredPaymentDetails"`
	Discount               OrderDiscount  `json:"discount"`
	PriceBreakdown         PriceBreakdown `json:"priceBreakdown"`
	TotalPrice             float64        `json:"totalPrice"`
	Currency               string         `json:"currency"`
}

// CheckoutSession is the persisted state of one checkout screen.
// OrderID stays nil until the order has been created. Order and Offer are
// the last snapshots returned by the commerce API.
type CheckoutSession struct {
	ID              uuid.UUID `json:"id" db:"id"`
	OfferID         string    `json:"offerId" db:"offer_id"`
	OrderID         *int64    `json:"orderId,omitempty" db:"order_id"`
	PaymentMethodID *int      `json:"paymentMethodId,omitempty" db:"payment_method_id"`
	CouponCode      string    `json:"couponCode" db:"coupon_code"`
	CouponApplied   bool      `json:"couponApplied" db:"coupon_applied"`
	CouponError     string    `json:"couponError,omitempty" db:"coupon_error"`
	PaymentError    string    `json:"paymentError,omitempty" db:"payment_error"`
	PurchasingOffer bool      `json:"purchasingOffer" db:"purchasing_offer"`
	Location        string    `json:"location" db:"location"`
	Order           *Order    `json:"order,omitempty" db:"order_data"`
	Offer           *Offer    `json:"offer,omitempty" db:"offer_data"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}
