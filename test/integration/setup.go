package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"ott-webapp/internal/model"
	"ott-webapp/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container, a connection pool and
// the checkout schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	if err := repository.Migrate(ctx, pool); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	if _, err := pool.Exec(context.Background(), "DELETE FROM checkout_sessions"); err != nil {
		t.Logf("failed to clean table checkout_sessions: %v", err)
	}
}

// FakeCommerce is an in-memory commerce API. Coupon "VALID" is the only
// accepted coupon.
type FakeCommerce struct {
	Server *httptest.Server

	mu      sync.Mutex
	nextID  int64
	orders  map[int64]*model.Order
	created int
	updated []int64
	paid    []int64
}

// NewFakeCommerce starts a fake commerce API server.
func NewFakeCommerce(t *testing.T) *FakeCommerce {
	t.Helper()

	f := &FakeCommerce{nextID: 1000, orders: map[int64]*model.Order{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /offers/{id}", f.getOffer)
	mux.HandleFunc("GET /payment-methods", f.getPaymentMethods)
	mux.HandleFunc("POST /orders", f.createOrder)
	mux.HandleFunc("PATCH /orders/{id}", f.updateOrder)
	mux.HandleFunc("POST /payments/paypal", f.paypal)
	mux.HandleFunc("POST /payments/without-details", f.withoutDetails)
	mux.HandleFunc("POST /subscriptions/reload", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, nil)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// Expire deletes an order so later updates report it missing.
func (f *FakeCommerce) Expire(orderID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orders, orderID)
}

// Stats returns the number of created orders and the order ids updated so far.
func (f *FakeCommerce) Stats() (int, []int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created, append([]int64(nil), f.updated...)
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"responseData": data, "errors": []string{}})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"responseData": map[string]any{}, "errors": []string{message}})
}

func (f *FakeCommerce) getOffer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch id {
	case "S1":
		respond(w, http.StatusOK, model.Offer{ID: 1, OfferID: "S1", Title: "Monthly", Price: 9.99, Currency: "EUR", Period: "month"})
	case "R1":
		respond(w, http.StatusOK, model.Offer{ID: 2, OfferID: "R1", Title: "Rental", Price: 3.99, Currency: "EUR"})
	default:
		respondError(w, http.StatusNotFound, fmt.Sprintf("Offer with id %s not found", id))
	}
}

func (f *FakeCommerce) getPaymentMethods(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"paymentMethods": []model.PaymentMethod{
			{ID: 1, MethodName: model.MethodCard, Provider: model.ProviderStripe},
			{ID: 2, MethodName: model.MethodPayPal, Provider: model.ProviderPayPal},
		},
	})
}

func (f *FakeCommerce) createOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OfferID         string `json:"offerId"`
		PaymentMethodID int    `json:"paymentMethodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	f.mu.Lock()
	f.nextID++
	f.created++
	order := &model.Order{
		ID:                     f.nextID,
		OfferID:                body.OfferID,
		PaymentMethodID:        body.PaymentMethodID,
		RequiredPaymentDetails: body.OfferID != "R1",
		TotalPrice:             9.99,
		Currency:               "EUR",
	}
	f.orders[order.ID] = order
	f.mu.Unlock()

	respond(w, http.StatusOK, map[string]any{"order": order})
}

func (f *FakeCommerce) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	var body struct {
		PaymentMethodID int    `json:"paymentMethodId"`
		CouponCode      string `json:"couponCode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.updated = append(f.updated, id)
	order, ok := f.orders[id]
	if !ok {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Order with id %d not found", id))
		return
	}
	if body.CouponCode != "" && body.CouponCode != "VALID" {
		respondError(w, http.StatusUnprocessableEntity, "Invalid coupon code")
		return
	}

	order.PaymentMethodID = body.PaymentMethodID
	order.CouponCode = body.CouponCode
	if body.CouponCode != "" {
		order.Discount = model.OrderDiscount{Applied: true, Type: "coupon"}
		order.TotalPrice = 4.99
	}
	respond(w, http.StatusOK, map[string]any{"order": order})
}

func (f *FakeCommerce) paypal(w http.ResponseWriter, r *http.Request) {
	var req model.PayPalPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	respond(w, http.StatusOK, model.PayPalPaymentResponse{
		RedirectURL: "https://paypal.example/approve?order=" + strconv.FormatInt(req.OrderID, 10) + "&success=" + req.SuccessURL,
	})
}

func (f *FakeCommerce) withoutDetails(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderID int64 `json:"orderId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.paid = append(f.paid, body.OrderID)
	respond(w, http.StatusOK, nil)
}
