package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ott-webapp/internal/catalog"
	"ott-webapp/internal/commerce"
	"ott-webapp/internal/handler"
	"ott-webapp/internal/model"
	"ott-webapp/internal/repository"
	"ott-webapp/internal/router"
	"ott-webapp/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, testDB *TestDB, commerceURL, catalogURL string) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	sessionRepo := repository.NewSessionRepository(testDB.Pool, logger)
	commerceClient := commerce.NewCachingClient(
		commerce.NewHTTPClient(commerceURL, "", 5*time.Second, logger),
		time.Minute,
		logger,
	)
	catalogClient := catalog.NewHTTPClient(catalogURL, 5*time.Second, logger)

	checkoutService := service.NewCheckoutService(commerceClient, sessionRepo, service.NewMutationQueue(), logger)
	seriesService := service.NewSeriesService(catalogClient, 10, logger)

	return router.New(
		handler.NewCheckoutHandler(checkoutService, logger),
		handler.NewSeriesHandler(seriesService, logger),
		router.Options{ServiceName: "ott-webapp-test", RateLimit: 1000},
		logger,
	)
}

func doRequest(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) model.CheckoutResult {
	t.Helper()

	var result model.CheckoutResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	return result
}

func TestCheckoutFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	fake := NewFakeCommerce(t)
	srv := setupTestServer(t, testDB, fake.Server.URL, "http://catalog.invalid")
	t.Cleanup(func() { CleanupDB(t, testDB.Pool) })

	const location = "/m/abc/movie"

	// Start
	w := doRequest(t, srv, http.MethodPost, "/api/checkout/sessions", model.StartCheckoutRequest{
		OfferID:  "S1",
		Location: location,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	started := decodeResult(t, w)
	require.NotNil(t, started.View)
	require.NotNil(t, started.View.Order)

	view := started.View
	sessionPath := "/api/checkout/sessions/" + view.SessionID.String()
	orderID := view.Order.ID

	assert.Equal(t, model.OfferTypeSVOD, view.OfferType)
	assert.Equal(t, model.WidgetStripeCard, view.Widget)
	assert.Len(t, view.PaymentMethods, 2)
	require.NotNil(t, view.PaymentMethodID)
	assert.Equal(t, 1, *view.PaymentMethodID)
	assert.Equal(t, location+"?u=welcome", view.SuccessURL)

	// Switch to PayPal
	w = doRequest(t, srv, http.MethodPut, sessionPath+"/payment-method", model.ChangePaymentMethodRequest{PaymentMethodID: 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeResult(t, w)
	require.NotNil(t, result.View)
	assert.Equal(t, model.WidgetPayPal, result.View.Widget)
	assert.Empty(t, result.View.PaymentError)

	// Invalid coupon stays inline
	w = doRequest(t, srv, http.MethodPost, sessionPath+"/coupon", model.ApplyCouponRequest{CouponCode: "BAD"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result = decodeResult(t, w)
	require.NotNil(t, result.View)
	assert.Equal(t, "BAD", result.View.Coupon.Code)
	assert.False(t, result.View.Coupon.Applied)
	assert.Equal(t, model.CouponErrorNotValid, result.View.Coupon.Error)

	// Valid coupon
	w = doRequest(t, srv, http.MethodPost, sessionPath+"/coupon", model.ApplyCouponRequest{CouponCode: "VALID"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result = decodeResult(t, w)
	require.NotNil(t, result.View)
	assert.True(t, result.View.Coupon.Applied)
	assert.Empty(t, result.View.Coupon.Error)
	assert.Equal(t, 4.99, result.View.Order.TotalPrice)

	created, updated := fake.Stats()
	assert.Equal(t, 1, created)
	for _, id := range updated {
		assert.Equal(t, orderID, id)
	}

	// Session survives a reload
	w = doRequest(t, srv, http.MethodGet, sessionPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reloaded model.CheckoutView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&reloaded))
	assert.Equal(t, "VALID", reloaded.Coupon.Code)
	assert.True(t, reloaded.Coupon.Applied)
	require.NotNil(t, reloaded.PaymentMethodID)
	assert.Equal(t, 2, *reloaded.PaymentMethodID)

	// PayPal redirect
	w = doRequest(t, srv, http.MethodPost, sessionPath+"/payments/paypal", model.PaymentRequest{Origin: "https://app.example"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result = decodeResult(t, w)
	assert.Contains(t, result.RedirectURL, "https://paypal.example/approve")

	// Order expired upstream
	fake.Expire(orderID)
	w = doRequest(t, srv, http.MethodPost, sessionPath+"/coupon", model.ApplyCouponRequest{CouponCode: "VALID"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result = decodeResult(t, w)
	require.NotNil(t, result.Navigation)
	assert.Equal(t, location+"?u=choose-offer", result.Navigation.To)
	assert.True(t, result.Navigation.Replace)

	// The stale session is gone
	w = doRequest(t, srv, http.MethodGet, sessionPath, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, srv, http.MethodDelete, sessionPath, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCheckoutWithoutPaymentDetails(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	fake := NewFakeCommerce(t)
	srv := setupTestServer(t, testDB, fake.Server.URL, "http://catalog.invalid")
	t.Cleanup(func() { CleanupDB(t, testDB.Pool) })

	const location = "/m/abc/movie?u=checkout"

	w := doRequest(t, srv, http.MethodPost, "/api/checkout/sessions", model.StartCheckoutRequest{
		OfferID:  "R1",
		Location: location,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	started := decodeResult(t, w)
	require.NotNil(t, started.View)
	assert.Equal(t, model.OfferTypeTVOD, started.View.OfferType)
	assert.Equal(t, model.WidgetNoPayment, started.View.Widget)

	sessionPath := "/api/checkout/sessions/" + started.View.SessionID.String()
	w = doRequest(t, srv, http.MethodPost, sessionPath+"/payments/no-details", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeResult(t, w)
	require.NotNil(t, result.Navigation)
	assert.Equal(t, "/m/abc/movie", result.Navigation.To)
	assert.True(t, result.Navigation.Replace)

	fake.mu.Lock()
	assert.Equal(t, []int64{started.View.Order.ID}, fake.paid)
	fake.mu.Unlock()
}

func TestStartCheckout_UnknownOffer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	fake := NewFakeCommerce(t)
	srv := setupTestServer(t, testDB, fake.Server.URL, "http://catalog.invalid")

	w := doRequest(t, srv, http.MethodPost, "/api/checkout/sessions", model.StartCheckoutRequest{
		OfferID:  "S404",
		Location: "/",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := decodeResult(t, w)
	require.NotNil(t, result.Navigation)
	assert.Equal(t, "/?u=choose-offer", result.Navigation.To)

	created, _ := fake.Stats()
	assert.Zero(t, created)
}

func TestSeriesLegacyRedirect(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/media/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.Playlist{Playlist: []model.PlaylistItem{{
			MediaID:      r.PathValue("id"),
			Title:        "Old Show",
			CustomParams: map[string]string{"seriesPlayListId": "PL1"},
		}}})
	})
	mux.HandleFunc("GET /v2/playlists/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.Playlist{FeedID: r.PathValue("id"), Title: "Old Show"})
	})
	mux.HandleFunc("GET /apps/series/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	catalogServer := httptest.NewServer(mux)
	t.Cleanup(catalogServer.Close)

	testDB := SetupTestDB(t)
	srv := setupTestServer(t, testDB, "http://commerce.invalid", catalogServer.URL)

	w := doRequest(t, srv, http.MethodGet, "/api/media/M1/series?r=FEED&play=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view model.SeriesView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&view))
	assert.Equal(t, model.SeriesLegacyRedirect, view.State)
	require.NotNil(t, view.Navigation)
	assert.Equal(t, "/s/PL1?play=1&r=FEED", view.Navigation.To)
	assert.True(t, view.Navigation.Replace)
}
