package repository

import (
	"context"
	"errors"
	"fmt"

	"ott-webapp/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// sessionRepository implements the SessionRepository interface using PostgreSQL.
type sessionRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewSessionRepository creates a new PostgreSQL-backed session repository.
func NewSessionRepository(pool *pgxpool.Pool, logger zerolog.Logger) SessionRepository {
	return &sessionRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "session").Logger(),
	}
}

// Create inserts a new checkout session.
func (r *sessionRepository) Create(ctx context.Context, session *model.CheckoutSession) error {
	query := `
		INSERT INTO checkout_sessions (
			id, offer_id, order_id, payment_method_id, coupon_code, coupon_applied,
			coupon_error, payment_error, purchasing_offer, location, order_data, offer_data,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.OfferID,
		session.OrderID,
		session.PaymentMethodID,
		session.CouponCode,
		session.CouponApplied,
		session.CouponError,
		session.PaymentError,
		session.PurchasingOffer,
		session.Location,
		session.Order,
		session.Offer,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("session_id", session.ID.String()).
			Msg("failed to create session")
		return fmt.Errorf("failed to create session: %w", err)
	}

	r.logger.Debug().
		Str("session_id", session.ID.String()).
		Str("offer_id", session.OfferID).
		Msg("session created successfully")

	return nil
}

// GetByID retrieves a session by its ID.
func (r *sessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.CheckoutSession, error) {
	query := `
		SELECT id, offer_id, order_id, payment_method_id, coupon_code, coupon_applied,
			coupon_error, payment_error, purchasing_offer, location, order_data, offer_data,
			created_at, updated_at
		FROM checkout_sessions
		WHERE id = $1
	`

	var session model.CheckoutSession
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&session.ID,
		&session.OfferID,
		&session.OrderID,
		&session.PaymentMethodID,
		&session.CouponCode,
		&session.CouponApplied,
		&session.CouponError,
		&session.PaymentError,
		&session.PurchasingOffer,
		&session.Location,
		&session.Order,
		&session.Offer,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("session_id", id.String()).Msg("session not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("session_id", id.String()).Msg("failed to query session")
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return &session, nil
}

// Update persists the mutable fields of a session.
func (r *sessionRepository) Update(ctx context.Context, session *model.CheckoutSession) error {
	query := `
		UPDATE checkout_sessions
		SET order_id = $2,
			payment_method_id = $3,
			coupon_code = $4,
			coupon_applied = $5,
			coupon_error = $6,
			payment_error = $7,
			location = $8,
			order_data = $9,
			offer_data = $10,
			updated_at = $11
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		session.ID,
		session.OrderID,
		session.PaymentMethodID,
		session.CouponCode,
		session.CouponApplied,
		session.CouponError,
		session.PaymentError,
		session.Location,
		session.Order,
		session.Offer,
		session.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("session_id", session.ID.String()).
			Msg("failed to update session")
		return fmt.Errorf("failed to update session: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrSessionNotFound
	}

	return nil
}

// Delete removes a session.
func (r *sessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM checkout_sessions WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Str("session_id", id.String()).Msg("failed to delete session")
		return fmt.Errorf("failed to delete session: %w", err)
	}

	r.logger.Debug().Str("session_id", id.String()).Msg("session deleted")

	return nil
}
