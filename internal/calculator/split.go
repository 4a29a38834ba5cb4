package calculator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNoParticipants       = errors.New("split must have at least one participant")
	ErrDuplicateParticipant = errors.New("participant appears more than once in split")
	ErrNegativePercent      = errors.New("split percent cannot be negative")
	ErrSplitSum             = errors.New("split percentages must sum to 100")
	ErrIndexOutOfRange      = errors.New("boundary index out of range")
)

var (
	hundred = decimal.NewFromInt(100)

	// MinSharePercent is the floor a boundary drag leaves on either side.
	MinSharePercent = decimal.NewFromInt(5)

	// SplitTolerance is how far a split total may drift from 100.
	SplitTolerance = decimal.RequireFromString("0.01")
)

// Share is one participant's percentage of an expense.
type Share struct {
	UserID  string
	Percent decimal.Decimal
}

// ToggleParticipant adds userID to the split if absent, or removes it if present,
// then gives every remaining participant an equal share of 100/count rounded to
// 2 decimal places. Rounding drift is not corrected here; when count does not
// divide 100 the total may be off by up to 0.01 per participant.
func ToggleParticipant(shares []Share, userID string) []Share {
	next := make([]Share, 0, len(shares)+1)
	removed := false
	for _, s := range shares {
		if s.UserID == userID {
			removed = true
			continue
		}
		next = append(next, s)
	}
	if !removed {
		next = append(next, Share{UserID: userID})
	}
	if len(next) == 0 {
		return next
	}

	each := hundred.DivRound(decimal.NewFromInt(int64(len(next))), 2)
	for i := range next {
		next[i].Percent = each
	}
	return next
}

// EqualShares builds an equal split over userIDs. Unlike ToggleParticipant the
// result sums to exactly 100: the rounding remainder goes to the last participant.
func EqualShares(userIDs []string) []Share {
	var shares []Share
	for _, id := range userIDs {
		shares = ToggleParticipant(shares, id)
	}
	if len(shares) > 0 {
		last := len(shares) - 1
		shares[last].Percent = shares[last].Percent.Add(hundred.Sub(SumPercent(shares)))
	}
	return shares
}

// AdjustBoundary moves the boundary between participants leftIndex and
// leftIndex+1 on the cumulative 0..100 line to target. Only those two shares
// change; each keeps at least MinSharePercent. After rounding every share to
// 2 decimal places, any difference from 100 is added to the last participant.
//
// A split with fewer than two participants is returned unchanged. Otherwise
// the input must be a split ToggleParticipant or AdjustBoundary could have
// produced: no duplicates, no negative percent, and a total within
// SplitTolerance per participant of 100.
func AdjustBoundary(shares []Share, leftIndex int, target decimal.Decimal) ([]Share, error) {
	next := make([]Share, len(shares))
	copy(next, shares)
	if len(next) < 2 {
		return next, nil
	}
	if err := validateShares(next, SplitTolerance.Mul(decimal.NewFromInt(int64(len(next))))); err != nil {
		return nil, err
	}
	if leftIndex < 0 || leftIndex+1 >= len(next) {
		return nil, fmt.Errorf("%w: %d with %d participants", ErrIndexOutOfRange, leftIndex, len(next))
	}

	leftStart := decimal.Zero
	for i := 0; i < leftIndex; i++ {
		leftStart = leftStart.Add(next[i].Percent)
	}
	rightEnd := leftStart.Add(next[leftIndex].Percent).Add(next[leftIndex+1].Percent)

	lo := leftStart.Add(MinSharePercent)
	hi := rightEnd.Sub(MinSharePercent)
	var boundary decimal.Decimal
	switch {
	case lo.GreaterThan(hi):
		// The pair holds less than twice the floor; split it evenly.
		boundary = leftStart.Add(rightEnd).Div(decimal.NewFromInt(2))
	case target.LessThan(lo):
		boundary = lo
	case target.GreaterThan(hi):
		boundary = hi
	default:
		boundary = target
	}

	next[leftIndex].Percent = boundary.Sub(leftStart)
	next[leftIndex+1].Percent = rightEnd.Sub(boundary)

	total := decimal.Zero
	for i := range next {
		next[i].Percent = next[i].Percent.Round(2)
		total = total.Add(next[i].Percent)
	}
	if !total.Equal(hundred) {
		last := len(next) - 1
		next[last].Percent = next[last].Percent.Add(hundred.Sub(total)).Round(2)

		// The last participant may be the right side of the dragged pair.
		if last == leftIndex+1 && next[last].Percent.LessThan(MinSharePercent) {
			short := MinSharePercent.Sub(next[last].Percent)
			next[last].Percent = MinSharePercent
			next[leftIndex].Percent = next[leftIndex].Percent.Sub(short)
		}
	}
	return next, nil
}

// SumPercent returns the total of all shares.
func SumPercent(shares []Share) decimal.Decimal {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.Percent)
	}
	return total
}

// ValidateShares checks that a split can be stored: at least one participant,
// no duplicates, no negative percent and a total within SplitTolerance of 100.
func ValidateShares(shares []Share) error {
	return validateShares(shares, SplitTolerance)
}

func validateShares(shares []Share, tolerance decimal.Decimal) error {
	if len(shares) == 0 {
		return ErrNoParticipants
	}
	seen := make(map[string]bool, len(shares))
	for _, s := range shares {
		if seen[s.UserID] {
			return fmt.Errorf("%w: %s", ErrDuplicateParticipant, s.UserID)
		}
		seen[s.UserID] = true
		if s.Percent.IsNegative() {
			return fmt.Errorf("%w: %s has %s", ErrNegativePercent, s.UserID, s.Percent.StringFixed(2))
		}
	}
	total := SumPercent(shares)
	if total.Sub(hundred).Abs().GreaterThan(tolerance) {
		return fmt.Errorf("%w: got %s", ErrSplitSum, total.StringFixed(2))
	}
	return nil
}
