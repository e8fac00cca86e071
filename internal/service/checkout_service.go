package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ott-webapp/internal/commerce"
	"ott-webapp/internal/metrics"
	"ott-webapp/internal/model"
	"ott-webapp/internal/navigation"
	"ott-webapp/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// errStaleOrder is returned from inside a mutation when the commerce API no
// longer knows the session's order.
var errStaleOrder = errors.New("order no longer exists")

// checkoutService implements CheckoutService.
type checkoutService struct {
	commerce       commerce.Client
	sessions       repository.SessionRepository
	queue          *MutationQueue
	now            func() time.Time
	// recordDispatch counts widget decisions; views rendered by Get are
	// not decisions.
	recordDispatch func(outcome string)
	logger         zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	client commerce.Client,
	sessions repository.SessionRepository,
	queue *MutationQueue,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		commerce:       client,
		sessions:       sessions,
		queue:          queue,
		now:            time.Now,
		recordDispatch: metrics.RecordPaymentDispatch,
		logger:         logger.With().Str("service", "checkout").Logger(),
	}
}

// Start opens a checkout session for an offer and creates its order.
func (s *checkoutService) Start(ctx context.Context, req *model.StartCheckoutRequest) (*model.CheckoutResult, error) {
	if req == nil {
		return nil, model.ErrOfferRequired
	}

	if req.OfferID == "" {
		s.logger.Debug().Msg("no offer selected, redirecting to offer selection")
		metrics.RecordOrderCreated("no_offer")
		return chooseOffer(req.Location, true), nil
	}

	offer, err := s.commerce.GetOffer(ctx, req.OfferID)
	if err != nil {
		if model.KindOf(err) == model.KindNotFound {
			s.logger.Warn().Str("offer_id", req.OfferID).Msg("offer not found, redirecting to offer selection")
			metrics.RecordOrderCreated("no_offer")
			return chooseOffer(req.Location, true), nil
		}
		s.logger.Error().Err(err).Str("offer_id", req.OfferID).Msg("failed to get offer")
		metrics.RecordOrderCreated("error")
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	methods, err := s.commerce.GetPaymentMethods(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get payment methods")
		metrics.RecordOrderCreated("error")
		return nil, fmt.Errorf("failed to get payment methods: %w", err)
	}

	var methodID *int
	if len(methods) > 0 {
		id := methods[0].ID
		methodID = &id
	}

	order, err := s.commerce.CreateOrder(ctx, offer.OfferID, valueOf(methodID))
	if err != nil {
		if model.KindOf(err) == model.KindNotFound {
			metrics.RecordOrderCreated("no_offer")
			return chooseOffer(req.Location, true), nil
		}
		s.logger.Error().Err(err).Str("offer_id", offer.OfferID).Msg("failed to create order")
		metrics.RecordOrderCreated("error")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	now := s.now()
	session := &model.CheckoutSession{
		ID:              uuid.New(),
		OfferID:         offer.OfferID,
		OrderID:         &order.ID,
		PaymentMethodID: methodID,
		PurchasingOffer: req.PurchasingOffer,
		Location:        req.Location,
		Order:           order,
		Offer:           offer,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		metrics.RecordOrderCreated("error")
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	metrics.RecordOrderCreated("success")
	s.logger.Info().
		Str("session_id", session.ID.String()).
		Int64("order_id", order.ID).
		Str("offer_id", offer.OfferID).
		Msg("checkout started")

	result := &model.CheckoutResult{View: s.view(session, methods)}
	s.recordWidget(result)
	return result, nil
}

// Get returns the current checkout view of a session.
func (s *checkoutService) Get(ctx context.Context, id uuid.UUID) (*model.CheckoutView, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	methods, err := s.commerce.GetPaymentMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment methods: %w", err)
	}

	return s.view(session, methods), nil
}

// ApplyCoupon re-issues the session's order with a coupon code. A stale
// order sends the user back to offer selection; any other failure is an
// inline coupon error and leaves the order untouched. Every submission
// clears the applied flag; an empty code stops there.
func (s *checkoutService) ApplyCoupon(ctx context.Context, id uuid.UUID, req *model.ApplyCouponRequest) (*model.CheckoutResult, error) {
	if req == nil || req.CouponCode == "" {
		session, err := s.mutate(ctx, id, MutationCoupon, func(ctx context.Context, session *model.CheckoutSession) error {
			session.CouponApplied = false
			return nil
		})
		return s.mutationResult(ctx, id, session, err, "", true)
	}

	session, err := s.mutate(ctx, id, MutationCoupon, func(ctx context.Context, session *model.CheckoutSession) error {
		if req.Location != "" {
			session.Location = req.Location
		}
		session.CouponCode = req.CouponCode
		session.CouponApplied = false
		session.CouponError = ""

		order, err := s.commerce.UpdateOrder(ctx, *session.OrderID, valueOf(session.PaymentMethodID), req.CouponCode)
		if err != nil {
			return s.couponFailure(session, err)
		}

		metrics.RecordOrderMutation(MutationCoupon, "success")
		session.Order = order
		session.CouponApplied = true
		return nil
	})

	result, err := s.mutationResult(ctx, id, session, err, req.Location, true)
	if result != nil && result.View != nil && result.View.Coupon.Applied {
		s.recordWidget(result)
	}
	return result, err
}

// ChangePaymentMethod re-issues the session's order with the new payment
// method and the current coupon code.
func (s *checkoutService) ChangePaymentMethod(ctx context.Context, id uuid.UUID, req *model.ChangePaymentMethodRequest) (*model.CheckoutResult, error) {
	if req == nil || req.PaymentMethodID <= 0 {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "paymentMethodId is required")
	}

	session, err := s.mutate(ctx, id, MutationPaymentMethod, func(ctx context.Context, session *model.CheckoutSession) error {
		if req.Location != "" {
			session.Location = req.Location
		}
		methodID := req.PaymentMethodID
		session.PaymentMethodID = &methodID
		session.PaymentError = ""
		session.CouponApplied = false

		order, err := s.commerce.UpdateOrder(ctx, *session.OrderID, methodID, session.CouponCode)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			metrics.RecordOrderMutation(MutationPaymentMethod, model.KindOf(err).String())
			if model.StaleOrder(err, *session.OrderID) {
				return errStaleOrder
			}
			s.logger.Warn().Err(err).Str("session_id", session.ID.String()).Msg("payment method update failed")
			session.PaymentError = paymentErrorMessage(err)
			return nil
		}

		metrics.RecordOrderMutation(MutationPaymentMethod, "success")
		session.Order = order
		return nil
	})

	result, err := s.mutationResult(ctx, id, session, err, req.Location, false)
	s.recordWidget(result)
	return result, err
}

// PayWithoutDetails completes an order that needs no payment details, then
// reloads the customer's subscription and navigates to the success URL.
func (s *checkoutService) PayWithoutDetails(ctx context.Context, id uuid.UUID, req *model.PaymentRequest) (*model.CheckoutResult, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.OrderID == nil {
		return nil, model.ErrOrderNotReady
	}
	if req != nil && req.Location != "" {
		session.Location = req.Location
	}
	session.PaymentError = ""

	if err := s.commerce.PaymentWithoutDetails(ctx, *session.OrderID); err != nil {
		metrics.RecordPayment("no-details", model.KindOf(err).String())
		return s.paymentFailed(ctx, session, err)
	}

	if err := s.commerce.ReloadSubscription(ctx); err != nil {
		s.logger.Warn().Err(err).Str("session_id", session.ID.String()).Msg("failed to reload subscription")
	}

	metrics.RecordPayment("no-details", "success")
	s.logger.Info().
		Str("session_id", session.ID.String()).
		Int64("order_id", *session.OrderID).
		Msg("order completed without payment details")

	return &model.CheckoutResult{
		Navigation: &model.Navigation{To: successURL(session), Replace: true},
	}, nil
}

// PayWithPayPal starts a PayPal payment. The return URLs are built from the
// client origin and the session location.
func (s *checkoutService) PayWithPayPal(ctx context.Context, id uuid.UUID, req *model.PaymentRequest) (*model.CheckoutResult, error) {
	if req == nil || req.Origin == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "origin is required")
	}

	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.OrderID == nil {
		return nil, model.ErrOrderNotReady
	}
	if req.Location != "" {
		session.Location = req.Location
	}
	session.PaymentError = ""

	payment := model.PayPalPaymentRequest{
		OrderID:    *session.OrderID,
		SuccessURL: req.Origin + successURL(session),
		CancelURL:  req.Origin + navigation.AddQueryParam(session.Location, navigation.ParamView, navigation.ViewPaymentCancelled),
		ErrorURL:   req.Origin + navigation.AddQueryParam(session.Location, navigation.ParamView, navigation.ViewPaymentError),
		CouponCode: session.CouponCode,
	}

	resp, err := s.commerce.PayPalPayment(ctx, payment)
	if err != nil {
		metrics.RecordPayment("paypal", model.KindOf(err).String())
		return s.paymentFailed(ctx, session, err)
	}

	metrics.RecordPayment("paypal", "success")

	return &model.CheckoutResult{RedirectURL: resp.RedirectURL}, nil
}

// Close tears the session down.
func (s *checkoutService) Close(ctx context.Context, id uuid.UUID) error {
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to close checkout session: %w", err)
	}
	s.logger.Debug().Str("session_id", id.String()).Msg("checkout closed")
	return nil
}

// mutate runs fn against a freshly loaded session inside the order's
// mutation slot and persists the result.
func (s *checkoutService) mutate(
	ctx context.Context,
	id uuid.UUID,
	kind string,
	fn func(ctx context.Context, session *model.CheckoutSession) error,
) (*model.CheckoutSession, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.OrderID == nil {
		return nil, model.ErrOrderNotReady
	}

	var result *model.CheckoutSession
	err = s.queue.Submit(ctx, *session.OrderID, kind, func(ctx context.Context) error {
		current, err := s.load(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, current); err != nil {
			result = current
			return err
		}
		current.UpdatedAt = s.now()
		if err := s.sessions.Update(ctx, current); err != nil {
			return err
		}
		result = current
		return nil
	})
	if errors.Is(err, model.ErrSuperseded) {
		metrics.RecordOrderMutation(kind, "superseded")
		s.logger.Debug().Str("session_id", id.String()).Str("kind", kind).Msg("order mutation superseded")
	}

	return result, err
}

// mutationResult turns the outcome of mutate into a result.
func (s *checkoutService) mutationResult(
	ctx context.Context,
	id uuid.UUID,
	session *model.CheckoutSession,
	err error,
	location string,
	replace bool,
) (*model.CheckoutResult, error) {
	if errors.Is(err, errStaleOrder) {
		if location == "" && session != nil {
			location = session.Location
		}
		s.logger.Info().Str("session_id", id.String()).Msg("order no longer exists, redirecting to offer selection")
		if closeErr := s.Close(ctx, id); closeErr != nil {
			s.logger.Warn().Err(closeErr).Str("session_id", id.String()).Msg("failed to close stale session")
		}
		return chooseOffer(location, replace), nil
	}
	if err != nil {
		return nil, err
	}

	methods, err := s.commerce.GetPaymentMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment methods: %w", err)
	}

	return &model.CheckoutResult{View: s.view(session, methods)}, nil
}

// couponFailure records a failed coupon update on session.
func (s *checkoutService) couponFailure(session *model.CheckoutSession, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	kind := model.KindOf(err)
	metrics.RecordOrderMutation(MutationCoupon, kind.String())

	if model.StaleOrder(err, *session.OrderID) {
		return errStaleOrder
	}

	s.logger.Debug().
		Err(err).
		Str("session_id", session.ID.String()).
		Str("coupon_code", session.CouponCode).
		Msg("coupon rejected")
	session.CouponError = model.CouponErrorNotValid
	return nil
}

// paymentFailed stores the payment error on the session and returns the view.
func (s *checkoutService) paymentFailed(ctx context.Context, session *model.CheckoutSession, err error) (*model.CheckoutResult, error) {
	s.logger.Warn().Err(err).Str("session_id", session.ID.String()).Msg("payment failed")

	session.PaymentError = paymentErrorMessage(err)
	session.UpdatedAt = s.now()
	if updateErr := s.sessions.Update(ctx, session); updateErr != nil {
		return nil, fmt.Errorf("failed to store payment error: %w", updateErr)
	}

	methods, methodsErr := s.commerce.GetPaymentMethods(ctx)
	if methodsErr != nil {
		return nil, fmt.Errorf("failed to get payment methods: %w", methodsErr)
	}

	return &model.CheckoutResult{View: s.view(session, methods)}, nil
}

// load fetches a session or returns model.ErrSessionNotFound.
func (s *checkoutService) load(ctx context.Context, id uuid.UUID) (*model.CheckoutSession, error) {
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", err)
	}
	if session == nil {
		return nil, model.ErrSessionNotFound
	}
	return session, nil
}

// view builds the client view of session.
func (s *checkoutService) view(session *model.CheckoutSession, methods []model.PaymentMethod) *model.CheckoutView {
	view := &model.CheckoutView{
		SessionID:       session.ID,
		Order:           session.Order,
		Offer:           session.Offer,
		OfferType:       session.Offer.Type(),
		PaymentMethods:  methods,
		PaymentMethodID: session.PaymentMethodID,
		Coupon: model.CouponState{
			Code:    session.CouponCode,
			Applied: session.CouponApplied,
			Error:   session.CouponError,
		},
		PaymentError: session.PaymentError,
		SuccessURL:   successURL(session),
	}

	if session.OrderID != nil {
		view.Submitting = s.queue.InFlight(*session.OrderID)
	}

	if session.Order != nil {
		widget, err := DispatchPayment(session.Order, findPaymentMethod(methods, session.PaymentMethodID))
		if err != nil {
			view.WidgetError = model.ErrCodeUnsupportedPaymentMethod
		}
		view.Widget = widget
	}

	return view
}

// recordWidget counts the widget decision of a freshly built view.
func (s *checkoutService) recordWidget(result *model.CheckoutResult) {
	if result == nil || result.View == nil || result.View.Order == nil {
		return
	}
	s.recordDispatch(dispatchOutcome(result.View))
}

// successURL is where the client lands after a successful payment.
func successURL(session *model.CheckoutSession) string {
	if session.PurchasingOffer {
		return "/"
	}
	if session.Offer.Type() == model.OfferTypeSVOD {
		return navigation.AddQueryParam(session.Location, navigation.ParamView, navigation.ViewWelcome)
	}
	return navigation.RemoveQueryParam(session.Location, navigation.ParamView)
}

// paymentErrorMessage returns the user-facing text of a payment failure.
// Only classified commerce errors are shown verbatim.
func paymentErrorMessage(err error) string {
	var ce *model.CommerceError
	if errors.As(err, &ce) && ce.Kind != model.KindUnknown && ce.Message != "" {
		return ce.Message
	}
	return model.PaymentErrorFailed
}

func chooseOffer(location string, replace bool) *model.CheckoutResult {
	return &model.CheckoutResult{
		Navigation: &model.Navigation{
			To:      navigation.AddQueryParam(location, navigation.ParamView, navigation.ViewChooseOffer),
			Replace: replace,
		},
	}
}

func valueOf(id *int) int {
	if id == nil {
		return 0
	}
	return *id
}
