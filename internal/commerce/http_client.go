package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ott-webapp/internal/model"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// envelope is the response wrapper used by every commerce endpoint.
type envelope struct {
	ResponseData json.RawMessage `json:"responseData"`
	Errors       []string        `json:"errors"`
}

// httpClient implements Client over the commerce REST API.
type httpClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPClient creates a commerce client for baseURL.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.With().Str("component", "commerce-client").Logger(),
	}
}

// GetOffer retrieves a purchasable offer by its offer id.
func (c *httpClient) GetOffer(ctx context.Context, offerID string) (*model.Offer, error) {
	var offer model.Offer
	if err := c.do(ctx, http.MethodGet, "/offers/"+url.PathEscape(offerID), nil, &offer, false); err != nil {
		return nil, err
	}
	return &offer, nil
}

// GetPaymentMethods returns the ordered payment methods.
func (c *httpClient) GetPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	var resp struct {
		PaymentMethods []model.PaymentMethod `json:"paymentMethods"`
	}
	if err := c.do(ctx, http.MethodGet, "/payment-methods", nil, &resp, false); err != nil {
		return nil, err
	}
	return resp.PaymentMethods, nil
}

// CreateOrder creates an order bound to an offer and payment method.
func (c *httpClient) CreateOrder(ctx context.Context, offerID string, paymentMethodID int) (*model.Order, error) {
	body := map[string]any{
		"offerId":         offerID,
		"paymentMethodId": paymentMethodID,
	}

	var resp struct {
		Order model.Order `json:"order"`
	}
	if err := c.do(ctx, http.MethodPost, "/orders", body, &resp, false); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// UpdateOrder re-issues an order with a payment method and coupon.
func (c *httpClient) UpdateOrder(ctx context.Context, orderID int64, paymentMethodID int, couponCode string) (*model.Order, error) {
	body := map[string]any{
		"paymentMethodId": paymentMethodID,
	}
	if couponCode != "" {
		body["couponCode"] = couponCode
	}

	var resp struct {
		Order model.Order `json:"order"`
	}
	path := "/orders/" + strconv.FormatInt(orderID, 10)
	if err := c.do(ctx, http.MethodPatch, path, body, &resp, false); err != nil {
		return nil, err
	}
	return &resp.Order, nil
}

// PaymentWithoutDetails completes an order that needs no payment details.
func (c *httpClient) PaymentWithoutDetails(ctx context.Context, orderID int64) error {
	body := map[string]any{"orderId": orderID}
	return c.do(ctx, http.MethodPost, "/payments/without-details", body, nil, true)
}

// PayPalPayment starts a PayPal payment and returns the approval URL.
func (c *httpClient) PayPalPayment(ctx context.Context, req model.PayPalPaymentRequest) (*model.PayPalPaymentResponse, error) {
	var resp model.PayPalPaymentResponse
	if err := c.do(ctx, http.MethodPost, "/payments/paypal", req, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReloadSubscription refreshes the customer's active subscription.
func (c *httpClient) ReloadSubscription(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/subscriptions/reload", nil, nil, false)
}

// do performs one request and decodes the envelope's responseData into out.
func (c *httpClient) do(ctx context.Context, method, path string, body, out any, payment bool) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &model.CommerceError{Kind: model.KindUnknown, Message: fmt.Sprintf("failed to encode request: %v", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &model.CommerceError{Kind: model.KindUnknown, Message: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Publisher-Token", c.apiKey)
	}
	if token := CustomerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("method", method).
			Str("path", path).
			Msg("commerce request failed")
		if errors.Is(err, context.Canceled) {
			return err
		}
		return &model.CommerceError{Kind: model.KindUnknown, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &model.CommerceError{Kind: model.KindUnknown, Status: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	var env envelope
	var decodeErr error
	if len(bytes.TrimSpace(raw)) > 0 {
		decodeErr = json.Unmarshal(raw, &env)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("commerce request")

	if resp.StatusCode >= 400 || len(env.Errors) > 0 {
		status := resp.StatusCode
		message := strings.Join(env.Errors, "; ")
		if decodeErr != nil && message == "" {
			message = strings.TrimSpace(string(raw))
		}
		if status < 400 {
			status = http.StatusBadRequest
		}
		cerr := Classify(status, message, payment)
		c.logger.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("kind", cerr.Kind.String()).
			Str("message", cerr.Message).
			Msg("commerce api returned an error")
		return cerr
	}

	if decodeErr != nil {
		return &model.CommerceError{Kind: model.KindUnknown, Status: resp.StatusCode, Message: fmt.Sprintf("invalid response body: %v", decodeErr)}
	}

	if out == nil || len(env.ResponseData) == 0 {
		return nil
	}

	if err := json.Unmarshal(env.ResponseData, out); err != nil {
		return &model.CommerceError{Kind: model.KindUnknown, Status: resp.StatusCode, Message: fmt.Sprintf("invalid response data: %v", err)}
	}

	return nil
}
