// Package notify carries change signals for payments and expenses to the
// friend views that need to recompute. It never carries balances: a signal
// only says which counterparts of a subscriber may have changed.
package notify

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Kind names the change that produced an Event.
type Kind string

const (
	ExpenseCreated   Kind = "expense.created"
	PaymentCreated   Kind = "payment.created"
	PaymentConfirmed Kind = "payment.confirmed"
	PaymentRejected  Kind = "payment.rejected"
)

// Event describes a change affecting the balance or pending payments between
// two users. For payments FromUser is the debtor; for expenses it is a
// participant and ToUser the payer.
type Event struct {
	Kind       Kind      `json:"kind"`
	FromUser   string    `json:"from_user"`
	ToUser     string    `json:"to_user"`
	TrackerIDs []string  `json:"tracker_ids,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Invalidation tells a subscriber which counterparts' balances may be stale.
type Invalidation struct {
	Counterparties []string
}

// Sink receives every event published on a Hub, e.g. to forward it to other
// service instances.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Hub is an in-process broker routing events to per-user subscriptions.
type Hub struct {
	mu    sync.Mutex
	subs  map[string]map[*Subscription]struct{}
	sinks []Sink
}

// NewHub creates a Hub forwarding published events to sinks.
func NewHub(sinks ...Sink) *Hub {
	return &Hub{
		subs:  make(map[string]map[*Subscription]struct{}),
		sinks: sinks,
	}
}

// Subscribe registers interest in changes touching userID.
// The caller must Close the subscription when done.
func (h *Hub) Subscribe(userID string) *Subscription {
	sub := &Subscription{
		hub:     h,
		userID:  userID,
		pending: make(map[string]struct{}),
		signal:  make(chan struct{}, 1),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	return sub
}

// Publish delivers event to local subscribers and forwards it to every sink.
// A failing sink is logged; local delivery has already happened by then.
func (h *Hub) Publish(ctx context.Context, event Event) {
	h.Deliver(event)
	for _, sink := range h.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			slog.Warn("Failed to forward change event", "kind", event.Kind, "error", err)
		}
	}
}

// Deliver routes event to local subscribers only. Both parties are notified,
// each with the other as the invalidated counterpart.
func (h *Hub) Deliver(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[event.FromUser] {
		sub.invalidate(event.ToUser)
	}
	for sub := range h.subs[event.ToUser] {
		sub.invalidate(event.FromUser)
	}
}

// Subscribers returns how many live subscriptions userID has.
func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sub.userID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.userID)
		}
	}
}

// Subscription accumulates invalidations for one user. Signals that arrive
// between two Next calls are merged into a single Invalidation.
type Subscription struct {
	hub    *Hub
	userID string

	mu      sync.Mutex
	pending map[string]struct{}
	signal  chan struct{}
	once    sync.Once
}

func (s *Subscription) invalidate(counterparty string) {
	s.mu.Lock()
	s.pending[counterparty] = struct{}{}
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
		// A wakeup is already queued; the counterparty is merged into it.
	}
}

// Next blocks until at least one invalidation is pending or ctx is done, then
// returns everything accumulated so far.
func (s *Subscription) Next(ctx context.Context) (Invalidation, error) {
	for {
		select {
		case <-ctx.Done():
			return Invalidation{}, ctx.Err()
		case <-s.signal:
		}

		if inv, ok := s.drain(); ok {
			return inv, nil
		}
		// The wakeup belonged to counterparts an earlier Next already drained.
	}
}

func (s *Subscription) drain() (Invalidation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return Invalidation{}, false
	}
	inv := Invalidation{Counterparties: make([]string, 0, len(s.pending))}
	for c := range s.pending {
		inv.Counterparties = append(inv.Counterparties, c)
	}
	sort.Strings(inv.Counterparties)
	s.pending = make(map[string]struct{})
	return inv, true
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s) })
}
