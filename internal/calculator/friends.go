package calculator

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Direction classifies a friend-level balance from the viewer's side.
type Direction string

const (
	OwedByMe Direction = "owed_by_me" // viewer owes the friend
	OwedToMe Direction = "owed_to_me" // friend owes the viewer
	Settled  Direction = "settled"
)

// DirectionOf classifies a signed balance.
func DirectionOf(balance decimal.Decimal) Direction {
	switch balance.Sign() {
	case -1:
		return OwedByMe
	case 1:
		return OwedToMe
	default:
		return Settled
	}
}

// TrackerBalance is the balance with a friend inside a single tracker.
type TrackerBalance struct {
	TrackerID string
	Balance   decimal.Decimal
}

// FriendBalance is the unified balance between the viewer and one counterpart
// across every tracker they share.
type FriendBalance struct {
	UserID         string
	Balance        decimal.Decimal // Positive = friend owes viewer, negative = viewer owes friend
	Direction      Direction
	SharedTrackers []string
	PerTracker     []TrackerBalance
}

// FriendBalances computes the friend-level balance for every user who shares
// at least one tracker with viewer. memberships maps tracker ID to member user
// IDs. The result is sorted by absolute balance, largest first.
func FriendBalances(viewer string, memberships map[string][]string, expenses []ExpenseForBalance, payments []PaymentForBalance) []FriendBalance {
	shared := SharedTrackers(viewer, memberships)

	friends := make([]FriendBalance, 0, len(shared))
	for friend, trackerIDs := range shared {
		fb := FriendBalance{
			UserID:         friend,
			Balance:        PairBalance(viewer, friend, trackerIDs, expenses, payments),
			SharedTrackers: trackerIDs,
		}
		fb.Direction = DirectionOf(fb.Balance)
		for _, id := range trackerIDs {
			fb.PerTracker = append(fb.PerTracker, TrackerBalance{
				TrackerID: id,
				Balance:   PairBalance(viewer, friend, []string{id}, expenses, payments),
			})
		}
		friends = append(friends, fb)
	}

	sort.Slice(friends, func(i, j int) bool {
		ai, aj := friends[i].Balance.Abs(), friends[j].Balance.Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return friends[i].UserID < friends[j].UserID
	})
	return friends
}

// SharedTrackers returns, for each other user, the sorted IDs of trackers that
// both they and viewer belong to.
func SharedTrackers(viewer string, memberships map[string][]string) map[string][]string {
	shared := make(map[string][]string)
	for trackerID, members := range memberships {
		if !contains(members, viewer) {
			continue
		}
		seen := make(map[string]bool, len(members))
		for _, m := range members {
			if m == viewer || seen[m] {
				continue
			}
			seen[m] = true
			shared[m] = append(shared[m], trackerID)
		}
	}
	for _, ids := range shared {
		sort.Strings(ids)
	}
	return shared
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
