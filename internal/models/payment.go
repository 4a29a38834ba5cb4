package models

import "github.com/shopspring/decimal"

// PaymentStatus is the lifecycle state of a Payment row.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentConfirmed PaymentStatus = "confirmed"
	PaymentRejected  PaymentStatus = "rejected"
)

// SourceFriend marks payments created from the friend-level settle action.
const SourceFriend = "friend"

// Payment is a claim that FromUser paid ToUser Amount for TrackerID.
// It is created by the debtor and confirmed or rejected by the creditor.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	TrackerID string

	// FromUser is the debtor settling up.
	FromUser string

	// ToUser is the creditor being paid.
	ToUser string

	Amount decimal.Decimal
	Status PaymentStatus

	// SourceType and SourceID record which action produced the payment,
	// e.g. "friend" and the counterparty's user ID.
	SourceType string
	SourceID   string

	// CreatedAt, ConfirmedAt and RejectedAt are Unix timestamps; zero means unset.
	CreatedAt   int64
	ConfirmedAt int64
	RejectedAt  int64
}

// PaymentFilter selects payments. Empty fields do not constrain the query.
type PaymentFilter struct {
	TrackerIDs []string
	FromUser   string
	ToUser     string
	Statuses   []PaymentStatus
}
