package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense(tracker, paidBy, amount string, percents ...string) ExpenseForBalance {
	e := ExpenseForBalance{
		TrackerID: tracker,
		Amount:    d(amount),
		PaidBy:    paidBy,
		Percents:  make(map[string]decimal.Decimal),
	}
	for i := 0; i+1 < len(percents); i += 2 {
		e.Percents[percents[i]] = d(percents[i+1])
	}
	return e
}

func payment(tracker, from, to, amount string, confirmed bool) PaymentForBalance {
	return PaymentForBalance{TrackerID: tracker, From: from, To: to, Amount: d(amount), Confirmed: confirmed}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, got.Equal(d(want)), append([]interface{}{"got %s, want %s", got, want}, msgAndArgs...)...)
}

func TestPairBalance_EqualSplit(t *testing.T) {
	expenses := []ExpenseForBalance{expense("G", "A", "100", "A", "50", "B", "50")}

	assertDecimal(t, "50", PairBalance("A", "B", []string{"G"}, expenses, nil))
	assertDecimal(t, "-50", PairBalance("B", "A", []string{"G"}, expenses, nil))
}

func TestPairBalance_PendingPaymentIgnoredUntilConfirmed(t *testing.T) {
	expenses := []ExpenseForBalance{expense("G", "A", "100", "A", "50", "B", "50")}

	pending := []PaymentForBalance{payment("G", "B", "A", "50", false)}
	assertDecimal(t, "50", PairBalance("A", "B", []string{"G"}, expenses, pending))
	assertDecimal(t, "-50", PairBalance("B", "A", []string{"G"}, expenses, pending))

	confirmed := []PaymentForBalance{payment("G", "B", "A", "50", true)}
	assertDecimal(t, "0", PairBalance("A", "B", []string{"G"}, expenses, confirmed))
	assertDecimal(t, "0", PairBalance("B", "A", []string{"G"}, expenses, confirmed))
}

func TestPairBalance_ConfirmationShiftsByAmount(t *testing.T) {
	expenses := []ExpenseForBalance{
		expense("G", "B", "80", "A", "25", "B", "75"),
		expense("G", "A", "12.30", "A", "50", "B", "50"),
	}
	before := PairBalance("A", "B", []string{"G"}, expenses, nil)
	after := PairBalance("A", "B", []string{"G"}, expenses, []PaymentForBalance{payment("G", "A", "B", "7.5", true)})

	assertDecimal(t, "7.5", after.Sub(before))
}

func TestPairBalance_SkipsExpensesWithoutBothSplits(t *testing.T) {
	expenses := []ExpenseForBalance{
		expense("G", "A", "100", "A", "50", "C", "50"),
		expense("G", "B", "60", "B", "100"),
	}

	assertDecimal(t, "0", PairBalance("A", "B", []string{"G"}, expenses, nil))
}

func TestPairBalance_ScopedToTrackers(t *testing.T) {
	expenses := []ExpenseForBalance{
		expense("G1", "B", "60", "A", "50", "B", "50"),
		expense("G2", "A", "20", "A", "50", "B", "50"),
		expense("G3", "A", "1000", "A", "50", "B", "50"),
	}
	payments := []PaymentForBalance{payment("G3", "B", "A", "500", true)}

	assertDecimal(t, "-30", PairBalance("A", "B", []string{"G1"}, expenses, payments))
	assertDecimal(t, "10", PairBalance("A", "B", []string{"G2"}, expenses, payments))
	assertDecimal(t, "-20", PairBalance("A", "B", []string{"G1", "G2"}, expenses, payments))
	assertDecimal(t, "0", PairBalance("A", "B", nil, expenses, payments))
}

func TestPairBalance_RoundsOnceAtEnd(t *testing.T) {
	// Three shares of 0.005 each: per-expense rounding would give 0.03.
	expenses := []ExpenseForBalance{
		expense("G", "A", "0.01", "A", "50", "B", "50"),
		expense("G", "A", "0.01", "A", "50", "B", "50"),
		expense("G", "A", "0.01", "A", "50", "B", "50"),
	}

	assertDecimal(t, "0.02", PairBalance("A", "B", []string{"G"}, expenses, nil))
	assertDecimal(t, "-0.02", PairBalance("B", "A", []string{"G"}, expenses, nil))
}

func TestPairBalance_Antisymmetry(t *testing.T) {
	expenses := []ExpenseForBalance{
		expense("G1", "A", "100", "A", "33.33", "B", "33.33", "C", "33.34"),
		expense("G1", "B", "47.19", "A", "12.5", "B", "87.5"),
		expense("G1", "C", "19.99", "A", "40", "B", "30", "C", "30"),
		expense("G2", "B", "3.33", "A", "70", "B", "30"),
		expense("G2", "A", "0.05", "A", "50", "B", "50"),
	}
	payments := []PaymentForBalance{
		payment("G1", "A", "B", "10.01", true),
		payment("G2", "B", "A", "1.11", true),
		payment("G2", "B", "A", "99", false),
	}
	users := []string{"A", "B", "C"}
	scopes := [][]string{{"G1"}, {"G2"}, {"G1", "G2"}}

	for _, scope := range scopes {
		for _, a := range users {
			for _, b := range users {
				if a == b {
					continue
				}
				ab := PairBalance(a, b, scope, expenses, payments)
				ba := PairBalance(b, a, scope, expenses, payments)
				assert.True(t, ab.Equal(ba.Neg()), "balance(%s,%s,%v)=%s but balance(%s,%s)=%s", a, b, scope, ab, b, a, ba)
			}
		}
	}
}

func TestPairBalance_Pure(t *testing.T) {
	expenses := []ExpenseForBalance{expense("G", "A", "10", "A", "50", "B", "50")}
	payments := []PaymentForBalance{payment("G", "B", "A", "2", true)}

	first := PairBalance("A", "B", []string{"G"}, expenses, payments)
	second := PairBalance("A", "B", []string{"G"}, expenses, payments)
	assert.True(t, first.Equal(second))
	assertDecimal(t, "3", first)
}

func TestFriendBalances(t *testing.T) {
	memberships := map[string][]string{
		"G1": {"A", "B"},
		"G2": {"A", "B", "C"},
		"G3": {"B", "D"},
		"P":  {"A"},
	}
	expenses := []ExpenseForBalance{
		expense("G1", "B", "60", "A", "50", "B", "50"),
		expense("G2", "A", "20", "A", "50", "B", "50"),
		expense("G2", "C", "90", "A", "33.33", "B", "33.33", "C", "33.34"),
		expense("G3", "D", "1000", "B", "50", "D", "50"),
	}

	friends := FriendBalances("A", memberships, expenses, nil)
	require.Len(t, friends, 2)

	// C: A owes 29.997 -> -30.00; B: -30 + 10 = -20.
	assert.Equal(t, "C", friends[0].UserID)
	assertDecimal(t, "-30", friends[0].Balance)
	assert.Equal(t, OwedByMe, friends[0].Direction)
	assert.Equal(t, []string{"G2"}, friends[0].SharedTrackers)

	assert.Equal(t, "B", friends[1].UserID)
	assertDecimal(t, "-20", friends[1].Balance)
	assert.Equal(t, OwedByMe, friends[1].Direction)
	assert.Equal(t, []string{"G1", "G2"}, friends[1].SharedTrackers)
	require.Len(t, friends[1].PerTracker, 2)
	assert.Equal(t, "G1", friends[1].PerTracker[0].TrackerID)
	assertDecimal(t, "-30", friends[1].PerTracker[0].Balance)
	assertDecimal(t, "10", friends[1].PerTracker[1].Balance)
}

func TestFriendBalances_SettledAndTies(t *testing.T) {
	memberships := map[string][]string{"G": {"A", "B", "C", "D"}}
	expenses := []ExpenseForBalance{
		expense("G", "A", "20", "A", "50", "C", "50"),
		expense("G", "A", "20", "A", "50", "B", "50"),
	}

	friends := FriendBalances("A", memberships, expenses, nil)
	require.Len(t, friends, 3)
	assert.Equal(t, []string{"B", "C", "D"}, []string{friends[0].UserID, friends[1].UserID, friends[2].UserID})
	assert.Equal(t, OwedToMe, friends[0].Direction)
	assert.Equal(t, Settled, friends[2].Direction)
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, OwedByMe, DirectionOf(d("-0.01")))
	assert.Equal(t, OwedToMe, DirectionOf(d("0.01")))
	assert.Equal(t, Settled, DirectionOf(decimal.Zero))
}
