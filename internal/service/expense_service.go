package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/calculator"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/ledger"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/models"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/notify"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/storage"
	pb "github.com/Hruthwik-68/MyVyaya-sub000/pkg/ledgerapi"
)

const dateLayout = "2006-01-02"

// ExpenseService implements the Connect ExpenseService: the split allocator
// and recording expenses within a tracker.
type ExpenseService struct {
	store    storage.Store
	notifier ledger.Notifier
}

// NewExpenseService creates a new ExpenseService. notifier may be nil.
func NewExpenseService(store storage.Store, notifier ledger.Notifier) *ExpenseService {
	return &ExpenseService{store: store, notifier: notifier}
}

// isMember checks if the user is in the members list.
func isMember(userID string, members []string) bool {
	for _, m := range members {
		if m == userID {
			return true
		}
	}
	return false
}

// loadMembers checks that the tracker exists and that userID belongs to it,
// returning its members.
func loadMembers(ctx context.Context, store storage.Store, trackerID, userID string) ([]string, error) {
	if trackerID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("tracker_id is required"))
	}
	if _, err := store.GetTracker(ctx, trackerID); err != nil {
		return nil, toConnectError(err)
	}
	members, err := store.ListMembers(ctx, []string{trackerID})
	if err != nil {
		return nil, toConnectError(err)
	}
	if !isMember(userID, members[trackerID]) {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("you are not a member of this tracker"))
	}
	return members[trackerID], nil
}

// ToggleParticipant adds or removes a participant and re-splits equally.
func (s *ExpenseService) ToggleParticipant(ctx context.Context, req *connect.Request[pb.ToggleParticipantRequest]) (*connect.Response[pb.ToggleParticipantResponse], error) {
	if req.Msg.UserID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("user_id is required"))
	}

	shares := calculator.ToggleParticipant(sharesFromAPI(req.Msg.Shares), req.Msg.UserID)

	slog.Debug("ToggleParticipant", "user_id", req.Msg.UserID, "participants", len(shares))
	return connect.NewResponse(&pb.ToggleParticipantResponse{Shares: sharesToAPI(shares)}), nil
}

// AdjustBoundary drags the boundary after shares[left_index] to target.
func (s *ExpenseService) AdjustBoundary(ctx context.Context, req *connect.Request[pb.AdjustBoundaryRequest]) (*connect.Response[pb.AdjustBoundaryResponse], error) {
	shares, err := calculator.AdjustBoundary(sharesFromAPI(req.Msg.Shares), req.Msg.LeftIndex, req.Msg.Target)
	if err != nil {
		slog.Warn("AdjustBoundary failed", "left_index", req.Msg.LeftIndex, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&pb.AdjustBoundaryResponse{Shares: sharesToAPI(shares)}), nil
}

// CreateExpense records an expense in a tracker the caller belongs to.
// The payer and every split participant must be members as well.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[pb.CreateExpenseRequest]) (*connect.Response[pb.CreateExpenseResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("CreateExpense request received",
		"user_id", userID,
		"tracker_id", req.Msg.TrackerID,
		"amount", req.Msg.Amount.String(),
		"splits", len(req.Msg.Splits),
	)

	members, err := loadMembers(ctx, s.store, req.Msg.TrackerID, userID)
	if err != nil {
		return nil, err
	}

	if !req.Msg.Amount.IsPositive() {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("amount must be positive"))
	}

	paidBy := req.Msg.PaidBy
	if paidBy == "" {
		paidBy = userID
	}
	if !isMember(paidBy, members) {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("paid_by '%s' must be a member of the tracker", paidBy))
	}

	shares := sharesFromAPI(req.Msg.Splits)
	if err := calculator.ValidateShares(shares); err != nil {
		slog.Error("CreateExpense split validation failed", "error", err)
		return nil, toConnectError(err)
	}
	for _, sh := range shares {
		if !isMember(sh.UserID, members) {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("participant '%s' must be a member of the tracker", sh.UserID))
		}
	}

	date := req.Msg.Date
	if date == "" {
		date = time.Now().Format(dateLayout)
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("date must be YYYY-MM-DD: %w", err))
	}

	expense := &models.Expense{
		TrackerID:   req.Msg.TrackerID,
		Amount:      req.Msg.Amount,
		PaidBy:      paidBy,
		Date:        date,
		Category:    req.Msg.Category,
		Description: req.Msg.Description,
	}
	for _, sh := range shares {
		expense.Splits = append(expense.Splits, models.ExpenseSplit{UserID: sh.UserID, Percent: sh.Percent})
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "tracker_id", expense.TrackerID)
	s.publish(ctx, expense)

	return connect.NewResponse(&pb.CreateExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// publish tells every participant's watchers that their balance with the payer
// changed.
func (s *ExpenseService) publish(ctx context.Context, expense *models.Expense) {
	if s.notifier == nil {
		return
	}
	for _, split := range expense.Splits {
		if split.UserID == expense.PaidBy {
			continue
		}
		s.notifier.Publish(ctx, notify.Event{
			Kind:       notify.ExpenseCreated,
			FromUser:   split.UserID,
			ToUser:     expense.PaidBy,
			TrackerIDs: []string{expense.TrackerID},
			OccurredAt: time.Now().UTC(),
		})
	}
}

// ListExpenses returns the expenses of a tracker the caller belongs to.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[pb.ListExpensesRequest]) (*connect.Response[pb.ListExpensesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("ListExpenses request received", "user_id", userID, "tracker_id", req.Msg.TrackerID)

	if _, err := loadMembers(ctx, s.store, req.Msg.TrackerID, userID); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpenses(ctx, []string{req.Msg.TrackerID})
	if err != nil {
		slog.Error("ListExpenses failed", "tracker_id", req.Msg.TrackerID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*pb.Expense, len(expenses))
	for i := range expenses {
		out[i] = expenseToAPI(&expenses[i])
	}

	slog.Info("ListExpenses successful", "tracker_id", req.Msg.TrackerID, "count", len(out))
	return connect.NewResponse(&pb.ListExpensesResponse{Expenses: out}), nil
}
