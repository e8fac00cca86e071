package service

import (
	"testing"

	"ott-webapp/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestDispatchPayment(t *testing.T) {
	stripeCard := &model.PaymentMethod{ID: 1, MethodName: model.MethodCard, Provider: model.ProviderStripe}
	adyenCard := &model.PaymentMethod{ID: 2, MethodName: model.MethodCard, Provider: model.ProviderAdyen}
	unknownCard := &model.PaymentMethod{ID: 3, MethodName: model.MethodCard}
	paypal := &model.PaymentMethod{ID: 4, MethodName: model.MethodPayPal, Provider: model.ProviderPayPal}
	ideal := &model.PaymentMethod{ID: 5, MethodName: "ideal", Provider: model.ProviderAdyen}

	payable := &model.Order{ID: 1, RequiredPaymentDetails: true}
	free := &model.Order{ID: 2, RequiredPaymentDetails: false}

	tests := []struct {
		name     string
		order    *model.Order
		method   *model.PaymentMethod
		expected model.PaymentWidget
		err      error
	}{
		{name: "No details required with stripe", order: free, method: stripeCard, expected: model.WidgetNoPayment},
		{name: "No details required with paypal", order: free, method: paypal, expected: model.WidgetNoPayment},
		{name: "No details required without method", order: free, method: nil, expected: model.WidgetNoPayment},
		{name: "No details required with unknown method", order: free, method: ideal, expected: model.WidgetNoPayment},
		{name: "Stripe card", order: payable, method: stripeCard, expected: model.WidgetStripeCard},
		{name: "Adyen card", order: payable, method: adyenCard, expected: model.WidgetAdyenCard},
		{name: "Card without provider", order: payable, method: unknownCard, expected: model.WidgetAdyenCard},
		{name: "PayPal", order: payable, method: paypal, expected: model.WidgetPayPal},
		{name: "Unsupported method", order: payable, method: ideal, err: model.ErrUnsupportedPaymentMethod},
		{name: "No method selected", order: payable, method: nil, err: model.ErrUnsupportedPaymentMethod},
		{name: "No order", order: nil, method: stripeCard, err: model.ErrUnsupportedPaymentMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			widget, err := DispatchPayment(tt.order, tt.method)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Empty(t, widget)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, widget)
		})
	}
}

func TestFindPaymentMethod(t *testing.T) {
	methods := []model.PaymentMethod{{ID: 1}, {ID: 2, MethodName: model.MethodPayPal}}
	id := 2
	missing := 9

	assert.Equal(t, model.MethodPayPal, findPaymentMethod(methods, &id).MethodName)
	assert.Nil(t, findPaymentMethod(methods, &missing))
	assert.Nil(t, findPaymentMethod(methods, nil))
}
