package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/models"
)

// CreateExpense persists a new expense and its split rows in one transaction.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == "" {
		expense.Date = time.Unix(expense.CreatedAt, 0).UTC().Format("2006-01-02")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(
		`INSERT INTO expenses (id, tracker_id, amount, paid_by, expense_date, category, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		expense.ID, expense.TrackerID, expense.Amount, expense.PaidBy, expense.Date,
		expense.Category, expense.Description, expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i := range expense.Splits {
		split := &expense.Splits[i]
		split.ExpenseID = expense.ID
		_, err = tx.ExecContext(ctx, s.rebind(
			"INSERT INTO expense_splits (expense_id, user_id, percent) VALUES (?, ?, ?)"),
			split.ExpenseID, split.UserID, split.Percent,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListExpenses retrieves every expense of the given trackers, including splits.
func (s *Store) ListExpenses(ctx context.Context, trackerIDs []string) ([]models.Expense, error) {
	if len(trackerIDs) == 0 {
		return nil, nil
	}
	in := placeholders(len(trackerIDs))
	args := stringArgs(trackerIDs)

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, tracker_id, amount, paid_by, expense_date, category, description, created_at
		 FROM expenses WHERE tracker_id IN (`+in+`) ORDER BY created_at, id`),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	index := make(map[string]int)
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.TrackerID, &e.Amount, &e.PaidBy, &e.Date,
			&e.Category, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		index[e.ID] = len(expenses)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	splitRows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT s.expense_id, s.user_id, s.percent
		 FROM expense_splits s JOIN expenses e ON e.id = s.expense_id
		 WHERE e.tracker_id IN (`+in+`) ORDER BY s.expense_id, s.user_id`),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var split models.ExpenseSplit
		if err := splitRows.Scan(&split.ExpenseID, &split.UserID, &split.Percent); err != nil {
			return nil, fmt.Errorf("failed to scan expense split: %w", err)
		}
		if i, ok := index[split.ExpenseID]; ok {
			expenses[i].Splits = append(expenses[i].Splits, split)
		}
	}
	if err := splitRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
	}

	return expenses, nil
}
