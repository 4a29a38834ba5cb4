// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the row-oriented operations the ledger needs.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger or service layers.
type Store interface {
	// CreateUser inserts a user's display record.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUsersByIDs returns the known users among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// CreateTracker persists a tracker, makes its creator the owner member and
	// adds members, all or nothing. The tracker.ID field will be populated by
	// the store.
	CreateTracker(ctx context.Context, tracker *models.Tracker, members ...string) error

	// GetTracker retrieves a tracker by ID. Returns ErrNotFound if it does not exist.
	GetTracker(ctx context.Context, id string) (*models.Tracker, error)

	// AddMember adds userID to a tracker. Adding an existing member is a no-op.
	AddMember(ctx context.Context, trackerID, userID string, role models.Role) error

	// ListTrackerIDsForUser returns the IDs of every tracker userID belongs to.
	ListTrackerIDsForUser(ctx context.Context, userID string) ([]string, error)

	// ListMembers returns the member user IDs of each tracker in trackerIDs.
	ListMembers(ctx context.Context, trackerIDs []string) (map[string][]string, error)

	// CreateExpense persists an expense together with its split rows.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpenses returns the expenses of the given trackers with their splits.
	ListExpenses(ctx context.Context, trackerIDs []string) ([]models.Expense, error)

	// SavePendingPayments writes a batch of pending payments atomically. A pending
	// payment that already exists for the same (from, to, tracker) is superseded:
	// its amount and creation time are replaced and its ID is returned in place.
	// Pending payments of the same (from, to) pair in trackers the batch does not
	// cover are rejected in the same transaction.
	SavePendingPayments(ctx context.Context, payments []*models.Payment) error

	// ListPayments returns the payments matching filter, oldest first.
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)

	// ConfirmPendingPayments marks every pending payment from -> to confirmed.
	// Returns the number of rows changed.
	ConfirmPendingPayments(ctx context.Context, from, to string, at int64) (int, error)

	// RejectPendingPayments marks every pending payment from -> to rejected.
	// Returns the number of rows changed.
	RejectPendingPayments(ctx context.Context, from, to string, at int64) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
