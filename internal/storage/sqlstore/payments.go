package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/models"
)

const paymentColumns = `id, tracker_id, from_user, to_user, amount, status, source_type, source_id,
	created_at, confirmed_at, rejected_at`

// SavePendingPayments writes a batch of pending payments in one transaction,
// superseding any pending row for the same (from, to, tracker). Pending rows of
// the same (from, to) pair in trackers outside the batch are rejected, so the
// batch becomes the pair's whole pending claim.
func (s *Store) SavePendingPayments(ctx context.Context, payments []*models.Payment) error {
	if len(payments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	type pair struct{ from, to string }
	batchTrackers := make(map[pair][]string)
	for _, p := range payments {
		k := pair{p.FromUser, p.ToUser}
		batchTrackers[k] = append(batchTrackers[k], p.TrackerID)
	}

	for k, trackerIDs := range batchTrackers {
		args := []interface{}{now, k.from, k.to}
		args = append(args, stringArgs(trackerIDs)...)
		_, err := tx.ExecContext(ctx, s.rebind(
			`UPDATE payments SET status = 'rejected', rejected_at = ?
			 WHERE from_user = ? AND to_user = ? AND status = 'pending'
			 AND tracker_id NOT IN (`+placeholders(len(trackerIDs))+`)`),
			args...,
		)
		if err != nil {
			return fmt.Errorf("failed to withdraw stale payments: %w", err)
		}
	}

	for _, p := range payments {
		p.Status = models.PaymentPending
		if p.CreatedAt == 0 {
			p.CreatedAt = now
		}

		var existingID string
		err := tx.QueryRowContext(ctx, s.rebind(
			`SELECT id FROM payments
			 WHERE from_user = ? AND to_user = ? AND tracker_id = ? AND status = 'pending'`),
			p.FromUser, p.ToUser, p.TrackerID,
		).Scan(&existingID)

		switch {
		case err == sql.ErrNoRows:
			if p.ID == "" {
				p.ID = uuid.New().String()
			}
			_, err = tx.ExecContext(ctx, s.rebind(
				`INSERT INTO payments (id, tracker_id, from_user, to_user, amount, status, source_type, source_id, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
				p.ID, p.TrackerID, p.FromUser, p.ToUser, p.Amount, string(p.Status),
				p.SourceType, p.SourceID, p.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert payment: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to look up pending payment: %w", err)
		default:
			p.ID = existingID
			_, err = tx.ExecContext(ctx, s.rebind(
				`UPDATE payments SET amount = ?, source_type = ?, source_id = ?, created_at = ?
				 WHERE id = ?`),
				p.Amount, p.SourceType, p.SourceID, p.CreatedAt, p.ID,
			)
			if err != nil {
				return fmt.Errorf("failed to supersede payment: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListPayments retrieves payments matching the filter, oldest first.
func (s *Store) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	var where []string
	var args []interface{}

	if len(filter.TrackerIDs) > 0 {
		where = append(where, "tracker_id IN ("+placeholders(len(filter.TrackerIDs))+")")
		args = append(args, stringArgs(filter.TrackerIDs)...)
	}
	if filter.FromUser != "" {
		where = append(where, "from_user = ?")
		args = append(args, filter.FromUser)
	}
	if filter.ToUser != "" {
		where = append(where, "to_user = ?")
		args = append(args, filter.ToUser)
	}
	if len(filter.Statuses) > 0 {
		where = append(where, "status IN ("+placeholders(len(filter.Statuses))+")")
		for _, st := range filter.Statuses {
			args = append(args, string(st))
		}
	}

	query := "SELECT " + paymentColumns + " FROM payments"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		var status string
		var confirmedAt, rejectedAt sql.NullInt64
		if err := rows.Scan(&p.ID, &p.TrackerID, &p.FromUser, &p.ToUser, &p.Amount, &status,
			&p.SourceType, &p.SourceID, &p.CreatedAt, &confirmedAt, &rejectedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Status = models.PaymentStatus(status)
		if confirmedAt.Valid {
			p.ConfirmedAt = confirmedAt.Int64
		}
		if rejectedAt.Valid {
			p.RejectedAt = rejectedAt.Int64
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}

// ConfirmPendingPayments marks all pending payments from -> to as confirmed.
func (s *Store) ConfirmPendingPayments(ctx context.Context, from, to string, at int64) (int, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE payments SET status = 'confirmed', confirmed_at = ?
		 WHERE from_user = ? AND to_user = ? AND status = 'pending'`),
		at, from, to,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to confirm payments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count confirmed payments: %w", err)
	}
	return int(n), nil
}

// RejectPendingPayments marks all pending payments from -> to as rejected.
func (s *Store) RejectPendingPayments(ctx context.Context, from, to string, at int64) (int, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE payments SET status = 'rejected', rejected_at = ?
		 WHERE from_user = ? AND to_user = ? AND status = 'pending'`),
		at, from, to,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to reject payments: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count rejected payments: %w", err)
	}
	return int(n), nil
}
