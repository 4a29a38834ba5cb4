package models

import "github.com/shopspring/decimal"

// Expense is a cost paid by one member of a tracker and shared by the
// participants listed in Splits.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	TrackerID string

	// Amount is the total cost, not a per-person share. Always positive.
	Amount decimal.Decimal

	// PaidBy is the user ID of the member who paid.
	PaidBy string

	// Date is the calendar day of the expense in YYYY-MM-DD form.
	Date string

	Category    string
	Description string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// Splits holds one row per participant. A user without a row is not
	// party to the expense.
	Splits []ExpenseSplit
}

// ExpenseSplit is one participant's percentage of an expense.
// The percentages of one expense sum to 100 within 0.01.
type ExpenseSplit struct {
	ExpenseID string
	UserID    string
	Percent   decimal.Decimal
}

// SplitFor returns the split row for userID, if any.
func (e *Expense) SplitFor(userID string) (ExpenseSplit, bool) {
	for _, s := range e.Splits {
		if s.UserID == userID {
			return s, true
		}
	}
	return ExpenseSplit{}, false
}
