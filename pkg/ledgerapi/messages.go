package ledgerapi

import "github.com/shopspring/decimal"

// Money and percentages are decimals, encoded as JSON strings ("12.50").

// Share is one participant's percentage in a split.
type Share struct {
	UserID  string          `json:"user_id"`
	Percent decimal.Decimal `json:"percent"`
}

type Tracker struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	CreatedBy string   `json:"created_by"`
	GroupCode string   `json:"group_code,omitempty"`
	Members   []string `json:"members,omitempty"`
	CreatedAt int64    `json:"created_at"`
}

type Expense struct {
	ID          string          `json:"id"`
	TrackerID   string          `json:"tracker_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paid_by"`
	Date        string          `json:"date"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Splits      []Share         `json:"splits"`
	CreatedAt   int64           `json:"created_at"`
}

type Payment struct {
	ID          string          `json:"id"`
	TrackerID   string          `json:"tracker_id"`
	FromUser    string          `json:"from_user"`
	ToUser      string          `json:"to_user"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	SourceType  string          `json:"source_type,omitempty"`
	SourceID    string          `json:"source_id,omitempty"`
	CreatedAt   int64           `json:"created_at"`
	ConfirmedAt int64           `json:"confirmed_at,omitempty"`
	RejectedAt  int64           `json:"rejected_at,omitempty"`
}

type TrackerBalance struct {
	TrackerID string          `json:"tracker_id"`
	Balance   decimal.Decimal `json:"balance"`
}

// FriendBalance is one row of the unified friend view. A positive balance
// means the friend owes the caller.
type FriendBalance struct {
	UserID             string           `json:"user_id"`
	DisplayName        string           `json:"display_name,omitempty"`
	Balance            decimal.Decimal  `json:"balance"`
	Direction          string           `json:"direction"`
	SharedTrackerIDs   []string         `json:"shared_tracker_ids"`
	PerTracker         []TrackerBalance `json:"per_tracker"`
	PendingOutgoing    decimal.Decimal  `json:"pending_outgoing"`
	PendingOutgoingIDs []string         `json:"pending_outgoing_ids,omitempty"`
	PendingIncoming    decimal.Decimal  `json:"pending_incoming"`
	PendingIncomingIDs []string         `json:"pending_incoming_ids,omitempty"`
}

// ExpenseService

type ToggleParticipantRequest struct {
	Shares []Share `json:"shares"`
	UserID string  `json:"user_id"`
}

type ToggleParticipantResponse struct {
	Shares []Share `json:"shares"`
}

type AdjustBoundaryRequest struct {
	Shares    []Share         `json:"shares"`
	LeftIndex int             `json:"left_index"`
	Target    decimal.Decimal `json:"target"`
}

type AdjustBoundaryResponse struct {
	Shares []Share `json:"shares"`
}

type CreateExpenseRequest struct {
	TrackerID   string          `json:"tracker_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paid_by"`
	Date        string          `json:"date"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
	Splits      []Share         `json:"splits"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	TrackerID string `json:"tracker_id"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

// TrackerService

type CreateTrackerRequest struct {
	Type    string   `json:"type,omitempty"`
	Members []string `json:"members,omitempty"`
}

type CreateTrackerResponse struct {
	Tracker *Tracker `json:"tracker"`
}

type AddMemberRequest struct {
	TrackerID string `json:"tracker_id"`
	UserID    string `json:"user_id"`
}

type AddMemberResponse struct {
	Members []string `json:"members"`
}

// FriendService

type GetFriendBalancesRequest struct{}

type GetFriendBalancesResponse struct {
	Friends []*FriendBalance `json:"friends"`
}

type GetPairBalanceRequest struct {
	UserID string `json:"user_id"`
}

type GetPairBalanceResponse struct {
	Friend *FriendBalance `json:"friend"`
}

type WatchFriendBalancesRequest struct{}

type WatchFriendBalancesResponse struct {
	Friends []*FriendBalance `json:"friends"`
}

// PaymentService

type MarkPaidRequest struct {
	CounterpartyID string `json:"counterparty_id"`
}

type MarkPaidResponse struct {
	Payments []*Payment `json:"payments"`
}

type ConfirmPaymentRequest struct {
	DebtorID string `json:"debtor_id"`
}

type ConfirmPaymentResponse struct {
	Confirmed int `json:"confirmed"`
}

type RejectPaymentRequest struct {
	DebtorID string `json:"debtor_id"`
}

type RejectPaymentResponse struct {
	Rejected int `json:"rejected"`
}

type ListPendingPaymentsRequest struct{}

type ListPendingPaymentsResponse struct {
	Incoming []*Payment `json:"incoming"`
	Outgoing []*Payment `json:"outgoing"`
}
