package handler

import (
	"context"
	"net/http"

	"ott-webapp/internal/model"
	"ott-webapp/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout session HTTP requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Start handles POST /api/checkout/sessions requests.
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req model.StartCheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	result, err := h.service.Start(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	status := http.StatusOK
	if result.Navigation == nil && result.View != nil {
		status = http.StatusCreated
	}
	writeJSON(w, status, result)
}

// Get handles GET /api/checkout/sessions/{id} requests.
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	view, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Close handles DELETE /api/checkout/sessions/{id} requests.
func (h *CheckoutHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.service.Close(r.Context(), id); err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ApplyCoupon handles POST /api/checkout/sessions/{id}/coupon requests.
func (h *CheckoutHandler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req model.ApplyCouponRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	result, err := h.service.ApplyCoupon(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ChangePaymentMethod handles PUT /api/checkout/sessions/{id}/payment-method requests.
func (h *CheckoutHandler) ChangePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req model.ChangePaymentMethodRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	result, err := h.service.ChangePaymentMethod(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// PayWithoutDetails handles POST /api/checkout/sessions/{id}/payments/no-details requests.
func (h *CheckoutHandler) PayWithoutDetails(w http.ResponseWriter, r *http.Request) {
	h.pay(w, r, h.service.PayWithoutDetails)
}

// PayWithPayPal handles POST /api/checkout/sessions/{id}/payments/paypal requests.
func (h *CheckoutHandler) PayWithPayPal(w http.ResponseWriter, r *http.Request) {
	h.pay(w, r, h.service.PayWithPayPal)
}

type payFunc func(ctx context.Context, id uuid.UUID, req *model.PaymentRequest) (*model.CheckoutResult, error)

func (h *CheckoutHandler) pay(w http.ResponseWriter, r *http.Request, fn payFunc) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var req model.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if req.Origin == "" {
		req.Origin = r.Header.Get("Origin")
	}

	result, err := fn(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// sessionID parses the {id} URL parameter, writing a 400 when it is malformed.
func (h *CheckoutHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid session ID format", h.logger)
		return uuid.Nil, false
	}
	return id, true
}
