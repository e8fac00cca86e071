package repository

import (
	"context"

	"ott-webapp/internal/model"

	"github.com/google/uuid"
)

// SessionRepository defines the interface for checkout session data access.
type SessionRepository interface {
	// Create inserts a new checkout session.
	Create(ctx context.Context, session *model.CheckoutSession) error

	// GetByID retrieves a session by its ID. Returns nil when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.CheckoutSession, error)

	// Update persists the mutable fields of a session.
	// Returns model.ErrSessionNotFound when the session does not exist.
	Update(ctx context.Context, session *model.CheckoutSession) error

	// Delete removes a session. Deleting an absent session is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
}
