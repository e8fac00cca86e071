package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const sessionSchema = `
	CREATE TABLE IF NOT EXISTS checkout_sessions (
		id UUID PRIMARY KEY,
		offer_id TEXT NOT NULL,
		order_id BIGINT,
		payment_method_id INTEGER,
		coupon_code TEXT NOT NULL DEFAULT '',
		coupon_applied BOOLEAN NOT NULL DEFAULT FALSE,
		coupon_error TEXT NOT NULL DEFAULT '',
		payment_error TEXT NOT NULL DEFAULT '',
		purchasing_offer BOOLEAN NOT NULL DEFAULT FALSE,
		location TEXT NOT NULL DEFAULT '',
		order_data JSONB,
		offer_data JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_checkout_sessions_order_id ON checkout_sessions(order_id);
`

// Migrate creates the checkout session schema when it does not exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, sessionSchema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
