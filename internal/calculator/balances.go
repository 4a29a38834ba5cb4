package calculator

import "github.com/shopspring/decimal"

// ExpenseForBalance represents an expense with the minimal information needed for balance calculations.
type ExpenseForBalance struct {
	TrackerID string
	Amount    decimal.Decimal
	PaidBy    string
	Percents  map[string]decimal.Decimal // user ID -> split percent
}

// PaymentForBalance represents a payment with the minimal information needed for balance calculations.
type PaymentForBalance struct {
	TrackerID string
	From      string // Debtor settling up
	To        string // Creditor being paid
	Amount    decimal.Decimal
	Confirmed bool
}

// PairBalance computes the signed balance between viewer and counterparty over
// the trackers in trackerIDs. Positive means counterparty owes viewer, negative
// means viewer owes counterparty.
//
// Algorithm:
//   - An expense counts only if both users have a split row for it
//   - Counterparty paid: viewer consumed their share, balance -= viewer share
//   - Viewer paid: counterparty consumed their share, balance += counterparty share
//   - Confirmed payment viewer -> counterparty: balance += amount
//   - Confirmed payment counterparty -> viewer: balance -= amount
//
// The result is rounded to 2 decimal places once, after all terms are summed.
// PairBalance(a, b, ...) is always the negation of PairBalance(b, a, ...).
func PairBalance(viewer, counterparty string, trackerIDs []string, expenses []ExpenseForBalance, payments []PaymentForBalance) decimal.Decimal {
	scope := make(map[string]bool, len(trackerIDs))
	for _, id := range trackerIDs {
		scope[id] = true
	}

	balance := decimal.Zero
	for _, e := range expenses {
		if !scope[e.TrackerID] {
			continue
		}
		viewerPct, ok := e.Percents[viewer]
		if !ok {
			continue
		}
		counterpartyPct, ok := e.Percents[counterparty]
		if !ok {
			continue
		}

		if e.PaidBy == counterparty {
			balance = balance.Sub(e.Amount.Mul(viewerPct).Div(hundred))
		}
		if e.PaidBy == viewer {
			balance = balance.Add(e.Amount.Mul(counterpartyPct).Div(hundred))
		}
	}

	for _, p := range payments {
		if !p.Confirmed || !scope[p.TrackerID] {
			continue
		}
		if p.From == viewer && p.To == counterparty {
			balance = balance.Add(p.Amount)
		}
		if p.From == counterparty && p.To == viewer {
			balance = balance.Sub(p.Amount)
		}
	}

	return balance.Round(2)
}
