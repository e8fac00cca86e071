package commerce

import (
	"context"
	"sync"
	"time"

	"ott-webapp/internal/model"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// fetchTimeout bounds a shared payment-method fetch. The fetch is detached
// from the caller that started it, so it needs its own deadline.
const fetchTimeout = 30 * time.Second

// cachingClient wraps a Client and shares payment-method fetches. Payment
// methods are publisher-wide, so concurrent checkouts collapse onto one
// upstream request and reuse the result for ttl.
type cachingClient struct {
	Client

	ttl    time.Duration
	group  singleflight.Group
	now    func() time.Time
	logger zerolog.Logger

	mu        sync.RWMutex
	methods   []model.PaymentMethod
	fetchedAt time.Time
}

// NewCachingClient wraps next with a payment-method cache. A ttl of zero
// disables reuse but still deduplicates concurrent fetches.
func NewCachingClient(next Client, ttl time.Duration, logger zerolog.Logger) Client {
	return &cachingClient{
		Client: next,
		ttl:    ttl,
		now:    time.Now,
		logger: logger.With().Str("component", "payment-methods-cache").Logger(),
	}
}

// GetPaymentMethods returns cached payment methods or fetches them once.
func (c *cachingClient) GetPaymentMethods(ctx context.Context) ([]model.PaymentMethod, error) {
	c.mu.RLock()
	if c.methods != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		methods := append([]model.PaymentMethod(nil), c.methods...)
		c.mu.RUnlock()
		return methods, nil
	}
	c.mu.RUnlock()

	ch := c.group.DoChan("payment-methods", func() (any, error) {
		// Detached so a departing caller does not cancel joined callers.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		methods, err := c.Client.GetPaymentMethods(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.methods = methods
		c.fetchedAt = c.now()
		c.mu.Unlock()
		return methods, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	c.logger.Debug().Bool("shared", res.Shared).Msg("payment methods fetched")

	return append([]model.PaymentMethod(nil), res.Val.([]model.PaymentMethod)...), nil
}
