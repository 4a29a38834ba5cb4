package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/metrics"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/models"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/notify"
)

// Notifier receives an event after every successful payment transition.
type Notifier interface {
	Publish(ctx context.Context, event notify.Event)
}

// Ledger drives the payment lifecycle:
//
//	MarkPaid (debtor)        -> pending
//	ConfirmPayment (creditor) pending -> confirmed
//	RejectPayment (creditor)  pending -> rejected
type Ledger struct {
	store    Store
	view     *View
	notifier Notifier
	metrics  *metrics.Metrics
	guard    *guard
	now      func() time.Time
}

// New creates a Ledger. notifier and m may be nil.
func New(store Store, notifier Notifier, m *metrics.Metrics) *Ledger {
	return &Ledger{
		store:    store,
		view:     NewView(store, m),
		notifier: notifier,
		metrics:  m,
		guard:    newGuard(),
		now:      time.Now,
	}
}

// View returns the friend view the ledger computes balances with.
func (l *Ledger) View() *View {
	return l.view
}

// MarkPaid records that viewer has paid counterparty everything viewer owes
// them. One pending payment is written per shared tracker in which viewer owes,
// for the absolute per-tracker balance. An existing pending payment for the
// same tracker is superseded. The batch is written atomically.
func (l *Ledger) MarkPaid(ctx context.Context, viewer, counterparty string) ([]models.Payment, error) {
	if viewer == counterparty {
		return nil, ErrSelfSettlement
	}
	release, err := l.acquire(viewer, counterparty)
	if err != nil {
		return nil, err
	}
	defer release()

	friend, err := l.view.pair(ctx, viewer, counterparty)
	if err != nil {
		return nil, err
	}
	if !friend.Balance.IsNegative() {
		return nil, ErrNothingOwed
	}

	var batch []*models.Payment
	var trackerIDs []string
	for _, tb := range friend.PerTracker {
		if !tb.Balance.IsNegative() {
			continue
		}
		batch = append(batch, &models.Payment{
			TrackerID:  tb.TrackerID,
			FromUser:   viewer,
			ToUser:     counterparty,
			Amount:     tb.Balance.Abs(),
			SourceType: models.SourceFriend,
			SourceID:   counterparty,
			CreatedAt:  l.now().Unix(),
		})
		trackerIDs = append(trackerIDs, tb.TrackerID)
	}
	// Per-tracker balances are rounded on their own, so sub-cent debts spread
	// over several trackers can leave no tracker negative.
	if len(batch) == 0 {
		return nil, ErrNothingOwed
	}

	if err := l.store.SavePendingPayments(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to save payments: %w", err)
	}

	payments := make([]models.Payment, len(batch))
	for i, p := range batch {
		payments[i] = *p
	}

	slog.Info("Payments marked as paid", "from", viewer, "to", counterparty,
		"trackers", len(payments), "total", friend.Balance.Abs().StringFixed(2))
	l.publish(ctx, notify.PaymentCreated, viewer, counterparty, trackerIDs)
	return payments, nil
}

// ConfirmPayment confirms every pending payment from debtor to creditor and
// returns how many were confirmed. Confirmed payments count toward balances.
func (l *Ledger) ConfirmPayment(ctx context.Context, creditor, debtor string) (int, error) {
	return l.resolve(ctx, creditor, debtor, notify.PaymentConfirmed, l.store.ConfirmPendingPayments)
}

// RejectPayment rejects every pending payment from debtor to creditor and
// returns how many were rejected. Rejected payments never count.
func (l *Ledger) RejectPayment(ctx context.Context, creditor, debtor string) (int, error) {
	return l.resolve(ctx, creditor, debtor, notify.PaymentRejected, l.store.RejectPendingPayments)
}

// PendingPayments returns the pending payments in which userID is either side.
func (l *Ledger) PendingPayments(ctx context.Context, userID string) (incoming, outgoing []models.Payment, err error) {
	pending := []models.PaymentStatus{models.PaymentPending}
	incoming, err = l.store.ListPayments(ctx, models.PaymentFilter{ToUser: userID, Statuses: pending})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list incoming payments: %w", err)
	}
	outgoing, err = l.store.ListPayments(ctx, models.PaymentFilter{FromUser: userID, Statuses: pending})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list outgoing payments: %w", err)
	}
	return incoming, outgoing, nil
}

type transitionFunc func(ctx context.Context, from, to string, at int64) (int, error)

func (l *Ledger) resolve(ctx context.Context, creditor, debtor string, kind notify.Kind, apply transitionFunc) (int, error) {
	if creditor == debtor {
		return 0, ErrSelfSettlement
	}
	release, err := l.acquire(creditor, debtor)
	if err != nil {
		return 0, err
	}
	defer release()

	pending, err := l.store.ListPayments(ctx, models.PaymentFilter{
		FromUser: debtor,
		ToUser:   creditor,
		Statuses: []models.PaymentStatus{models.PaymentPending},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list pending payments: %w", err)
	}
	if len(pending) == 0 {
		return 0, ErrNoPendingPayments
	}

	n, err := apply(ctx, debtor, creditor, l.now().Unix())
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// Resolved between the read and the write by another path.
		return 0, ErrNoPendingPayments
	}

	trackerIDs := make([]string, 0, len(pending))
	seen := make(map[string]bool, len(pending))
	for _, p := range pending {
		if !seen[p.TrackerID] {
			seen[p.TrackerID] = true
			trackerIDs = append(trackerIDs, p.TrackerID)
		}
	}

	slog.Info("Pending payments resolved", "kind", kind, "creditor", creditor, "debtor", debtor, "count", n)
	l.publish(ctx, kind, debtor, creditor, trackerIDs)
	return n, nil
}

func (l *Ledger) acquire(actor, counterpart string) (func(), error) {
	release, ok := l.guard.acquire(actor, counterpart)
	if !ok {
		l.metrics.Conflict()
		slog.Warn("Payment transition already in flight", "actor", actor, "counterpart", counterpart)
		return nil, ErrTransitionInFlight
	}
	return release, nil
}

func (l *Ledger) publish(ctx context.Context, kind notify.Kind, from, to string, trackerIDs []string) {
	l.metrics.Transition(string(kind))
	if l.notifier == nil {
		return
	}
	l.notifier.Publish(ctx, notify.Event{
		Kind:       kind,
		FromUser:   from,
		ToUser:     to,
		TrackerIDs: trackerIDs,
		OccurredAt: l.now().UTC(),
	})
}
