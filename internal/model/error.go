package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON              = "INVALID_JSON"
	ErrCodeMissingField             = "MISSING_FIELD"
	ErrCodeOfferRequired            = "OFFER_REQUIRED"
	ErrCodeSessionNotFound          = "SESSION_NOT_FOUND"
	ErrCodeOrderNotReady            = "ORDER_NOT_READY"
	ErrCodeUnsupportedPaymentMethod = "UNSUPPORTED_PAYMENT_METHOD"
	ErrCodeSuperseded               = "SUPERSEDED"
	ErrCodeMediaNotFound            = "MEDIA_NOT_FOUND"
	ErrCodeSeriesError              = "SERIES_ERROR"
	ErrCodeUnauthorised             = "UNAUTHORIZED"
	ErrCodeForbidden                = "FORBIDDEN"
	ErrCodeInternalError            = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrOfferRequired            = NewDomainError(ErrCodeOfferRequired, "An offer must be selected before checkout")
	ErrSessionNotFound          = NewDomainError(ErrCodeSessionNotFound, "Checkout session not found")
	ErrOrderNotReady            = NewDomainError(ErrCodeOrderNotReady, "Order has not been created yet")
	ErrUnsupportedPaymentMethod = NewDomainError(ErrCodeUnsupportedPaymentMethod, "Selected payment method is not supported")
	ErrSuperseded               = NewDomainError(ErrCodeSuperseded, "Order update was superseded by a newer request")
	ErrMediaNotFound            = NewDomainError(ErrCodeMediaNotFound, "Media item not found")
	ErrSeriesError              = NewDomainError(ErrCodeSeriesError, "Series could not be loaded")
)

// ErrorKind classifies failures reported by the commerce API.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNotFound
	KindValidation
	KindProcessing
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindProcessing:
		return "processing"
	default:
		return "unknown"
	}
}

// CommerceError is the tagged error returned by the commerce client.
type CommerceError struct {
	Kind    ErrorKind
	Status  int
	Message string
	// OrderID is the order named by an "Order with id N not found"
	// message, zero otherwise.
	OrderID int64
}

func (e *CommerceError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("commerce api (%s, status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("commerce api (%s): %s", e.Kind, e.Message)
}

// StaleOrder reports whether err says that orderID no longer exists. A
// not-found error naming a different order does not count.
func StaleOrder(err error, orderID int64) bool {
	var ce *CommerceError
	if !errors.As(err, &ce) || ce.Kind != KindNotFound {
		return false
	}
	return ce.OrderID == 0 || ce.OrderID == orderID
}

// KindOf returns the commerce error kind wrapped in err, or KindUnknown.
func KindOf(err error) ErrorKind {
	var ce *CommerceError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}
