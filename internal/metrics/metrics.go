// Package metrics holds the Prometheus collectors of the checkout and
// series workflows.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	orderMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ottweb_order_mutations_total",
		Help: "Order mutations issued against the commerce API by kind and outcome",
	}, []string{"kind", "outcome"}) // outcome=success|not_found|validation|processing|unknown|superseded

	ordersCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ottweb_orders_created_total",
		Help: "Orders created on checkout entry by outcome",
	}, []string{"outcome"})

	paymentDispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ottweb_payment_dispatch_total",
		Help: "Payment widget selections",
	}, []string{"widget"}) // widget=no-payment|stripe-card|adyen-card|paypal|unsupported

	paymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ottweb_payments_total",
		Help: "Payment attempts by flow and outcome",
	}, []string{"flow", "outcome"})

	seriesResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ottweb_series_resolutions_total",
		Help: "Series screen resolutions by terminal state",
	}, []string{"state"})

	catalogCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ottweb_catalog_cache_total",
		Help: "Catalog cache lookups by result",
	}, []string{"result"}) // result=hit|miss|error
)

// RecordOrderMutation counts one order update.
func RecordOrderMutation(kind, outcome string) {
	orderMutationsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordOrderCreated counts one order creation attempt.
func RecordOrderCreated(outcome string) {
	ordersCreatedTotal.WithLabelValues(outcome).Inc()
}

// RecordPaymentDispatch counts one widget selection.
func RecordPaymentDispatch(widget string) {
	paymentDispatchTotal.WithLabelValues(widget).Inc()
}

// RecordPayment counts one payment attempt.
func RecordPayment(flow, outcome string) {
	paymentsTotal.WithLabelValues(flow, outcome).Inc()
}

// RecordSeriesResolution counts one series resolution.
func RecordSeriesResolution(state string) {
	seriesResolutionsTotal.WithLabelValues(state).Inc()
}

// RecordCatalogCache counts one catalog cache lookup.
func RecordCatalogCache(result string) {
	catalogCacheTotal.WithLabelValues(result).Inc()
}
