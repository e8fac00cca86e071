package service

import (
	"ott-webapp/internal/model"
)

// DispatchPayment selects the payment widget for an order and the selected
// payment method. Orders that need no payment details always get the
// no-payment widget. Unmatched methods yield model.ErrUnsupportedPaymentMethod.
func DispatchPayment(order *model.Order, method *model.PaymentMethod) (model.PaymentWidget, error) {
	if order != nil && !order.RequiredPaymentDetails {
		return model.WidgetNoPayment, nil
	}
	if order == nil || method == nil {
		return "", model.ErrUnsupportedPaymentMethod
	}

	switch method.MethodName {
	case model.MethodCard:
		if method.Provider == model.ProviderStripe {
			return model.WidgetStripeCard, nil
		}
		return model.WidgetAdyenCard, nil
	case model.MethodPayPal:
		return model.WidgetPayPal, nil
	default:
		return "", model.ErrUnsupportedPaymentMethod
	}
}

// findPaymentMethod returns the method with id, or nil.
func findPaymentMethod(methods []model.PaymentMethod, id *int) *model.PaymentMethod {
	if id == nil {
		return nil
	}
	for i := range methods {
		if methods[i].ID == *id {
			return &methods[i]
		}
	}
	return nil
}

// dispatchOutcome is the metric label of the widget decision in view.
func dispatchOutcome(view *model.CheckoutView) string {
	if view.WidgetError != "" {
		return "unsupported"
	}
	return string(view.Widget)
}
