// Package ledger reconciles balances between users and drives the payment
// lifecycle on top of the pure calculator and a storage backend.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/calculator"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/metrics"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/models"
)

var (
	ErrSelfSettlement     = errors.New("cannot settle with yourself")
	ErrNoSharedTrackers   = errors.New("no shared trackers with this user")
	ErrNothingOwed        = errors.New("you do not owe this user anything")
	ErrNoPendingPayments  = errors.New("no pending payments from this user")
	ErrTransitionInFlight = errors.New("another payment change for this user is in progress")
)

// Store is the subset of storage.Store the ledger reads and writes.
type Store interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	ListTrackerIDsForUser(ctx context.Context, userID string) ([]string, error)
	ListMembers(ctx context.Context, trackerIDs []string) (map[string][]string, error)
	ListExpenses(ctx context.Context, trackerIDs []string) ([]models.Expense, error)
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
	SavePendingPayments(ctx context.Context, payments []*models.Payment) error
	ConfirmPendingPayments(ctx context.Context, from, to string, at int64) (int, error)
	RejectPendingPayments(ctx context.Context, from, to string, at int64) (int, error)
}

// Friend is one row of the unified friend view: the calculator's balance plus
// display and pending-payment state.
type Friend struct {
	calculator.FriendBalance

	DisplayName string

	// PendingOutgoing is what the viewer has marked as paid to this friend and
	// is awaiting confirmation. PendingIncoming is the reverse.
	PendingOutgoing    decimal.Decimal
	PendingOutgoingIDs []string
	PendingIncoming    decimal.Decimal
	PendingIncomingIDs []string
}

// View computes unified friend balances from stored facts.
type View struct {
	store   Store
	metrics *metrics.Metrics
}

// NewView creates a View. m may be nil.
func NewView(store Store, m *metrics.Metrics) *View {
	return &View{store: store, metrics: m}
}

// FriendBalances returns viewer's balance with every user sharing a tracker,
// largest absolute balance first.
func (v *View) FriendBalances(ctx context.Context, viewer string) ([]Friend, error) {
	start := time.Now()

	f, err := v.loadFacts(ctx, viewer)
	if err != nil {
		return nil, err
	}
	balances := calculator.FriendBalances(viewer, f.memberships, f.expenses, f.payments)

	friends, err := v.decorate(ctx, viewer, balances)
	if err != nil {
		return nil, err
	}

	v.metrics.ObserveRecompute(time.Since(start).Seconds())
	slog.Debug("Friend view computed", "viewer", viewer, "friends", len(friends))
	return friends, nil
}

// PairBalance returns viewer's unified balance with counterparty, with display
// and pending-payment state. It returns ErrNoSharedTrackers when the two share
// no tracker.
func (v *View) PairBalance(ctx context.Context, viewer, counterparty string) (Friend, error) {
	balance, err := v.pair(ctx, viewer, counterparty)
	if err != nil {
		return Friend{}, err
	}
	friends, err := v.decorate(ctx, viewer, []calculator.FriendBalance{balance})
	if err != nil {
		return Friend{}, err
	}
	return friends[0], nil
}

// pair computes the balance between viewer and counterparty from the trackers
// they share, and nothing else.
func (v *View) pair(ctx context.Context, viewer, counterparty string) (calculator.FriendBalance, error) {
	trackerIDs, err := v.store.ListTrackerIDsForUser(ctx, viewer)
	if err != nil {
		return calculator.FriendBalance{}, fmt.Errorf("failed to load trackers: %w", err)
	}
	if len(trackerIDs) == 0 {
		return calculator.FriendBalance{}, ErrNoSharedTrackers
	}
	memberships, err := v.store.ListMembers(ctx, trackerIDs)
	if err != nil {
		return calculator.FriendBalance{}, fmt.Errorf("failed to load members: %w", err)
	}

	shared := calculator.SharedTrackers(viewer, memberships)[counterparty]
	if len(shared) == 0 {
		return calculator.FriendBalance{}, ErrNoSharedTrackers
	}

	f, err := v.loadEntries(ctx, shared)
	if err != nil {
		return calculator.FriendBalance{}, err
	}
	f.memberships = make(map[string][]string, len(shared))
	for _, id := range shared {
		f.memberships[id] = []string{viewer, counterparty}
	}

	balances := calculator.FriendBalances(viewer, f.memberships, f.expenses, f.payments)
	if len(balances) != 1 {
		return calculator.FriendBalance{}, ErrNoSharedTrackers
	}
	return balances[0], nil
}

type facts struct {
	memberships map[string][]string
	expenses    []calculator.ExpenseForBalance
	payments    []calculator.PaymentForBalance
}

// loadFacts reads viewer's trackers, their members, their expenses with splits
// and their confirmed payments, one query each.
func (v *View) loadFacts(ctx context.Context, viewer string) (facts, error) {
	trackerIDs, err := v.store.ListTrackerIDsForUser(ctx, viewer)
	if err != nil {
		return facts{}, fmt.Errorf("failed to load trackers: %w", err)
	}
	if len(trackerIDs) == 0 {
		return facts{memberships: map[string][]string{}}, nil
	}

	memberships, err := v.store.ListMembers(ctx, trackerIDs)
	if err != nil {
		return facts{}, fmt.Errorf("failed to load members: %w", err)
	}

	f, err := v.loadEntries(ctx, trackerIDs)
	if err != nil {
		return facts{}, err
	}
	f.memberships = memberships
	return f, nil
}

// loadEntries reads the expenses with splits and the confirmed payments of
// trackerIDs.
func (v *View) loadEntries(ctx context.Context, trackerIDs []string) (facts, error) {
	expenses, err := v.store.ListExpenses(ctx, trackerIDs)
	if err != nil {
		return facts{}, fmt.Errorf("failed to load expenses: %w", err)
	}

	payments, err := v.store.ListPayments(ctx, models.PaymentFilter{
		TrackerIDs: trackerIDs,
		Statuses:   []models.PaymentStatus{models.PaymentConfirmed},
	})
	if err != nil {
		return facts{}, fmt.Errorf("failed to load payments: %w", err)
	}

	f := facts{
		expenses: make([]calculator.ExpenseForBalance, 0, len(expenses)),
		payments: make([]calculator.PaymentForBalance, 0, len(payments)),
	}
	for _, e := range expenses {
		percents := make(map[string]decimal.Decimal, len(e.Splits))
		for _, s := range e.Splits {
			percents[s.UserID] = s.Percent
		}
		f.expenses = append(f.expenses, calculator.ExpenseForBalance{
			TrackerID: e.TrackerID,
			Amount:    e.Amount,
			PaidBy:    e.PaidBy,
			Percents:  percents,
		})
	}
	for _, p := range payments {
		f.payments = append(f.payments, calculator.PaymentForBalance{
			TrackerID: p.TrackerID,
			From:      p.FromUser,
			To:        p.ToUser,
			Amount:    p.Amount,
			Confirmed: p.Status == models.PaymentConfirmed,
		})
	}
	return f, nil
}

// decorate attaches display names and pending payment totals.
func (v *View) decorate(ctx context.Context, viewer string, balances []calculator.FriendBalance) ([]Friend, error) {
	if len(balances) == 0 {
		return []Friend{}, nil
	}

	ids := make([]string, len(balances))
	for i, b := range balances {
		ids[i] = b.UserID
	}
	users, err := v.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	outgoing, err := v.store.ListPayments(ctx, models.PaymentFilter{
		FromUser: viewer,
		Statuses: []models.PaymentStatus{models.PaymentPending},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load pending payments: %w", err)
	}
	incoming, err := v.store.ListPayments(ctx, models.PaymentFilter{
		ToUser:   viewer,
		Statuses: []models.PaymentStatus{models.PaymentPending},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load pending payments: %w", err)
	}

	friends := make([]Friend, len(balances))
	index := make(map[string]int, len(balances))
	for i, b := range balances {
		friends[i] = Friend{
			FriendBalance:   b,
			PendingOutgoing: decimal.Zero,
			PendingIncoming: decimal.Zero,
		}
		if u, ok := users[b.UserID]; ok {
			friends[i].DisplayName = u.DisplayName
		}
		index[b.UserID] = i
	}

	for _, p := range outgoing {
		if i, ok := index[p.ToUser]; ok {
			friends[i].PendingOutgoing = friends[i].PendingOutgoing.Add(p.Amount)
			friends[i].PendingOutgoingIDs = append(friends[i].PendingOutgoingIDs, p.ID)
		}
	}
	for _, p := range incoming {
		if i, ok := index[p.FromUser]; ok {
			friends[i].PendingIncoming = friends[i].PendingIncoming.Add(p.Amount)
			friends[i].PendingIncomingIDs = append(friends[i].PendingIncomingIDs, p.ID)
		}
	}

	return friends, nil
}
