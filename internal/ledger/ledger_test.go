package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/models"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/notify"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/storage/sqlstore"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordingNotifier) Publish(_ context.Context, event notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingNotifier) kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kinds []notify.Kind
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	store    *sqlstore.Store
	ledger   *Ledger
	notifier *recordingNotifier
	g1, g2   string
}

// newFixture builds two trackers shared by alice and bob:
// in g1 alice owes bob 30, in g2 bob owes alice 10.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store, err := sqlstore.OpenSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.CreateUser(ctx, &models.User{ID: "alice", DisplayName: "Alice"}))
	require.NoError(t, store.CreateUser(ctx, &models.User{ID: "bob", DisplayName: "Bob"}))

	g1 := &models.Tracker{CreatedBy: "alice"}
	g2 := &models.Tracker{CreatedBy: "bob"}
	for _, tr := range []*models.Tracker{g1, g2} {
		require.NoError(t, store.CreateTracker(ctx, tr))
	}
	require.NoError(t, store.AddMember(ctx, g1.ID, "bob", models.RoleMember))
	require.NoError(t, store.AddMember(ctx, g2.ID, "alice", models.RoleMember))

	half := []models.ExpenseSplit{
		{UserID: "alice", Percent: dec("50")},
		{UserID: "bob", Percent: dec("50")},
	}
	require.NoError(t, store.CreateExpense(ctx, &models.Expense{
		TrackerID: g1.ID, Amount: dec("60"), PaidBy: "bob", Date: "2026-01-02", Splits: half,
	}))
	require.NoError(t, store.CreateExpense(ctx, &models.Expense{
		TrackerID: g2.ID, Amount: dec("20"), PaidBy: "alice", Date: "2026-01-03", Splits: half,
	}))

	n := &recordingNotifier{}
	return &fixture{
		store:    store,
		ledger:   New(store, n, nil),
		notifier: n,
		g1:       g1.ID,
		g2:       g2.ID,
	}
}

func TestView_UnifiedBalanceAcrossTrackers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	friends, err := f.ledger.View().FriendBalances(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, friends, 1)

	bob := friends[0]
	assert.Equal(t, "bob", bob.UserID)
	assert.Equal(t, "Bob", bob.DisplayName)
	assert.True(t, bob.Balance.Equal(dec("-20")), "balance = %s", bob.Balance)
	assert.Len(t, bob.SharedTrackers, 2)
	assert.True(t, bob.PendingOutgoing.IsZero())

	mirror, err := f.ledger.View().PairBalance(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, mirror.Balance.Equal(dec("20")), "balance = %s", mirror.Balance)
}

func TestView_NoTrackers(t *testing.T) {
	f := newFixture(t)

	friends, err := f.ledger.View().FriendBalances(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, friends)

	_, err = f.ledger.View().PairBalance(context.Background(), "alice", "nobody")
	assert.ErrorIs(t, err, ErrNoSharedTrackers)
}

func TestMarkPaid_OnlyDebtTrackers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	payments, err := f.ledger.MarkPaid(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, payments, 1)

	p := payments[0]
	assert.Equal(t, f.g1, p.TrackerID)
	assert.Equal(t, "alice", p.FromUser)
	assert.Equal(t, "bob", p.ToUser)
	assert.True(t, p.Amount.Equal(dec("30")), "amount = %s", p.Amount)
	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Equal(t, models.SourceFriend, p.SourceType)
	assert.Equal(t, "bob", p.SourceID)
	assert.NotEmpty(t, p.ID)

	// Pending payments do not move the balance.
	bob, err := f.ledger.View().PairBalance(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, bob.Balance.Equal(dec("-20")))
	assert.True(t, bob.PendingOutgoing.Equal(dec("30")))
	assert.Equal(t, []string{p.ID}, bob.PendingOutgoingIDs)

	alice, err := f.ledger.View().PairBalance(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, alice.PendingIncoming.Equal(dec("30")))

	assert.Equal(t, []notify.Kind{notify.PaymentCreated}, f.notifier.kinds())
	assert.Equal(t, []string{f.g1}, f.notifier.events[0].TrackerIDs)
}

func TestMarkPaid_SupersedesPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.ledger.MarkPaid(ctx, "alice", "bob")
	require.NoError(t, err)
	second, err := f.ledger.MarkPaid(ctx, "alice", "bob")
	require.NoError(t, err)

	assert.Equal(t, first[0].ID, second[0].ID)

	incoming, outgoing, err := f.ledger.PendingPayments(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, incoming)
	assert.Len(t, outgoing, 1)
}

func TestMarkPaid_WithdrawsPendingInSettledTrackers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.ledger.MarkPaid(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// g1 flips to bob owing alice 20; g2 becomes alice owing bob 40.
	half := []models.ExpenseSplit{
		{UserID: "alice", Percent: dec("50")},
		{UserID: "bob", Percent: dec("50")},
	}
	require.NoError(t, f.store.CreateExpense(ctx, &models.Expense{
		TrackerID: f.g1, Amount: dec("100"), PaidBy: "alice", Date: "2026-01-04", Splits: half,
	}))
	require.NoError(t, f.store.CreateExpense(ctx, &models.Expense{
		TrackerID: f.g2, Amount: dec("100"), PaidBy: "bob", Date: "2026-01-05", Splits: half,
	}))

	second, err := f.ledger.MarkPaid(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, f.g2, second[0].TrackerID)
	assert.True(t, second[0].Amount.Equal(dec("40")), "amount = %s", second[0].Amount)

	bob, err := f.ledger.View().PairBalance(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, bob.PendingOutgoing.Equal(dec("40")), "pending = %s", bob.PendingOutgoing)

	stale, err := f.store.ListPayments(ctx, models.PaymentFilter{TrackerIDs: []string{f.g1}})
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, first[0].ID, stale[0].ID)
	assert.Equal(t, models.PaymentRejected, stale[0].Status)

	n, err := f.ledger.ConfirmPayment(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	bob, err = f.ledger.View().PairBalance(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, bob.Balance.Equal(dec("20")), "balance = %s", bob.Balance)
}

// countingStore records which reads MarkPaid performs.
type countingStore struct {
	*sqlstore.Store

	mu          sync.Mutex
	userLookups int
	listings    []models.PaymentFilter
}

func (c *countingStore) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	c.mu.Lock()
	c.userLookups++
	c.mu.Unlock()
	return c.Store.GetUsersByIDs(ctx, ids)
}

func (c *countingStore) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	c.mu.Lock()
	c.listings = append(c.listings, filter)
	c.mu.Unlock()
	return c.Store.ListPayments(ctx, filter)
}

func TestMarkPaid_ReadsOnlyThePair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// carol shares a separate tracker with alice; it must not be read.
	g3 := &models.Tracker{CreatedBy: "carol"}
	require.NoError(t, f.store.CreateTracker(ctx, g3, "alice"))

	store := &countingStore{Store: f.store}
	l := New(store, nil, nil)

	payments, err := l.MarkPaid(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Len(t, payments, 1)

	assert.Zero(t, store.userLookups, "display names are not needed to mark paid")
	require.Len(t, store.listings, 1)
	assert.Equal(t, []models.PaymentStatus{models.PaymentConfirmed}, store.listings[0].Statuses)
	assert.ElementsMatch(t, []string{f.g1, f.g2}, store.listings[0].TrackerIDs)
}

func TestMarkPaid_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		viewer       string
		counterparty string
		want         error
	}{
		{"self settlement", "alice", "alice", ErrSelfSettlement},
		{"no shared trackers", "alice", "carol", ErrNoSharedTrackers},
		{"creditor has nothing to pay", "bob", "alice", ErrNothingOwed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.MarkPaid(ctx, tt.viewer, tt.counterparty)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	payments, err := f.store.ListPayments(ctx, models.PaymentFilter{})
	require.NoError(t, err)
	assert.Empty(t, payments, "failed calls must not write")
	assert.Empty(t, f.notifier.kinds())
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.ConfirmPayment(ctx, "bob", "alice")
	assert.ErrorIs(t, err, ErrNoPendingPayments)

	_, err = f.ledger.MarkPaid(ctx, "alice", "bob")
	require.NoError(t, err)

	n, err := f.ledger.ConfirmPayment(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// g1 is settled; bob still owes alice 10 in g2.
	bob, err := f.ledger.View().PairBalance(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, bob.Balance.Equal(dec("10")), "balance = %s", bob.Balance)
	assert.True(t, bob.PendingOutgoing.IsZero())

	_, err = f.ledger.MarkPaid(ctx, "alice", "bob")
	assert.ErrorIs(t, err, ErrNothingOwed)

	_, err = f.ledger.ConfirmPayment(ctx, "bob", "alice")
	assert.ErrorIs(t, err, ErrNoPendingPayments)

	assert.Equal(t, []notify.Kind{notify.PaymentCreated, notify.PaymentConfirmed}, f.notifier.kinds())
}

func TestRejectPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.MarkPaid(ctx, "alice", "bob")
	require.NoError(t, err)

	n, err := f.ledger.RejectPayment(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	bob, err := f.ledger.View().PairBalance(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, bob.Balance.Equal(dec("-20")), "rejection must not change the balance")

	rejected, err := f.store.ListPayments(ctx, models.PaymentFilter{
		Statuses: []models.PaymentStatus{models.PaymentRejected},
	})
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	assert.NotZero(t, rejected[0].RejectedAt)

	_, err = f.ledger.RejectPayment(ctx, "bob", "alice")
	assert.ErrorIs(t, err, ErrNoPendingPayments)

	_, err = f.ledger.RejectPayment(ctx, "bob", "bob")
	assert.ErrorIs(t, err, ErrSelfSettlement)

	// The debtor can mark paid again after a rejection.
	_, err = f.ledger.MarkPaid(ctx, "alice", "bob")
	require.NoError(t, err)
}

func TestLedger_TransitionInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	release, ok := f.ledger.guard.acquire("alice", "bob")
	require.True(t, ok)

	_, err := f.ledger.MarkPaid(ctx, "alice", "bob")
	assert.ErrorIs(t, err, ErrTransitionInFlight)

	// Other pairs are not blocked.
	_, err = f.ledger.MarkPaid(ctx, "alice", "carol")
	assert.ErrorIs(t, err, ErrNoSharedTrackers)
	_, err = f.ledger.ConfirmPayment(ctx, "bob", "alice")
	assert.ErrorIs(t, err, ErrNoPendingPayments)

	release()
	_, err = f.ledger.MarkPaid(ctx, "alice", "bob")
	assert.NoError(t, err)
}

func TestGuard(t *testing.T) {
	g := newGuard()

	release, ok := g.acquire("a", "b")
	require.True(t, ok)

	_, ok = g.acquire("a", "b")
	assert.False(t, ok)

	other, ok := g.acquire("b", "a")
	assert.True(t, ok, "reverse direction is a different pair")
	other()

	release()
	again, ok := g.acquire("a", "b")
	assert.True(t, ok)
	again()
}

type chanInvalidations chan notify.Invalidation

func (c chanInvalidations) Next(ctx context.Context) (notify.Invalidation, error) {
	select {
	case <-ctx.Done():
		return notify.Invalidation{}, ctx.Err()
	case inv := <-c:
		return inv, nil
	}
}

func TestWatch_RecomputesOnInvalidation(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inv := make(chanInvalidations, 1)
	views := make(chan []Friend, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, f.ledger.View(), "bob", inv, nil, func(friends []Friend) error {
			views <- friends
			return nil
		})
	}()

	first := <-views
	require.Len(t, first, 1)
	assert.True(t, first[0].PendingIncoming.IsZero())

	_, err := f.ledger.MarkPaid(context.Background(), "alice", "bob")
	require.NoError(t, err)
	inv <- notify.Invalidation{Counterparties: []string{"alice"}}

	select {
	case second := <-views:
		require.Len(t, second, 1)
		assert.True(t, second[0].PendingIncoming.Equal(dec("30")))
	case <-time.After(time.Second):
		t.Fatal("no recompute after invalidation")
	}

	cancel()
	assert.NoError(t, <-done)
}
