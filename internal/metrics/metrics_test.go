package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordOrderMutation(t *testing.T) {
	before := testutil.ToFloat64(orderMutationsTotal.WithLabelValues("coupon", "superseded"))

	RecordOrderMutation("coupon", "superseded")
	RecordOrderMutation("coupon", "superseded")

	after := testutil.ToFloat64(orderMutationsTotal.WithLabelValues("coupon", "superseded"))
	assert.Equal(t, before+2, after)
}

func TestRecordPaymentDispatch(t *testing.T) {
	before := testutil.ToFloat64(paymentDispatchTotal.WithLabelValues("unsupported"))

	RecordPaymentDispatch("unsupported")

	assert.Equal(t, before+1, testutil.ToFloat64(paymentDispatchTotal.WithLabelValues("unsupported")))
}

func TestRecordSeriesResolution(t *testing.T) {
	before := testutil.ToFloat64(seriesResolutionsTotal.WithLabelValues("legacy-redirect"))

	RecordSeriesResolution("legacy-redirect")

	assert.Equal(t, before+1, testutil.ToFloat64(seriesResolutionsTotal.WithLabelValues("legacy-redirect")))
}
