package service

import (
	"context"
	"errors"
	"sync"

	"ott-webapp/internal/model"
)

// Mutation kinds funnelled through the queue.
const (
	MutationCoupon        = "coupon"
	MutationPaymentMethod = "payment-method"
)

// MutationQueue serialises order mutations per order id. At most one
// mutation of an order runs at a time, and a new mutation of the same kind
// supersedes the outstanding one: its context is cancelled and it returns
// model.ErrSuperseded whether it was still waiting or already running.
type MutationQueue struct {
	mu    sync.Mutex
	slots map[int64]*orderSlot
}

type orderSlot struct {
	sem     chan struct{}
	pending map[string]*mutation
	active  int
}

type mutation struct {
	cancel context.CancelCauseFunc
}

// NewMutationQueue creates an empty queue.
func NewMutationQueue() *MutationQueue {
	return &MutationQueue{slots: make(map[int64]*orderSlot)}
}

// Submit runs fn once the order's slot is free. fn receives a context that
// is cancelled when a newer mutation of the same kind is submitted.
func (q *MutationQueue) Submit(ctx context.Context, orderID int64, kind string, fn func(ctx context.Context) error) error {
	mctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	m := &mutation{cancel: cancel}
	slot := q.enter(orderID, kind, m)
	defer q.leave(orderID, slot, kind, m)

	select {
	case slot.sem <- struct{}{}:
	case <-mctx.Done():
		return causeOf(mctx)
	}

	// Superseded while acquiring.
	if mctx.Err() != nil {
		<-slot.sem
		return causeOf(mctx)
	}

	err := fn(mctx)
	<-slot.sem

	if errors.Is(context.Cause(mctx), model.ErrSuperseded) {
		return model.ErrSuperseded
	}
	return err
}

// InFlight reports whether any mutation of orderID is waiting or running.
func (q *MutationQueue) InFlight(orderID int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	slot, ok := q.slots[orderID]
	return ok && slot.active > 0
}

func (q *MutationQueue) enter(orderID int64, kind string, m *mutation) *orderSlot {
	q.mu.Lock()
	defer q.mu.Unlock()

	slot, ok := q.slots[orderID]
	if !ok {
		slot = &orderSlot{
			sem:     make(chan struct{}, 1),
			pending: make(map[string]*mutation),
		}
		q.slots[orderID] = slot
	}

	if prev, ok := slot.pending[kind]; ok {
		prev.cancel(model.ErrSuperseded)
	}
	slot.pending[kind] = m
	slot.active++

	return slot
}

func (q *MutationQueue) leave(orderID int64, slot *orderSlot, kind string, m *mutation) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if slot.pending[kind] == m {
		delete(slot.pending, kind)
	}
	slot.active--
	if slot.active == 0 {
		delete(q.slots, orderID)
	}
}

func causeOf(ctx context.Context) error {
	if cause := context.Cause(ctx); cause != nil {
		return cause
	}
	return ctx.Err()
}
