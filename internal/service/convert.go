package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/calculator"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/ledger"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/middleware"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/models"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/storage"
	pb "github.com/Hruthwik-68/MyVyaya-sub000/pkg/ledgerapi"
)

// requireUser returns the authenticated user ID or an Unauthenticated error.
func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}
	return userID, nil
}

// toConnectError maps domain errors to Connect codes. Anything unrecognised is
// a storage or programming failure and becomes Internal.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, ledger.ErrTransitionInFlight):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, ledger.ErrSelfSettlement),
		errors.Is(err, calculator.ErrNoParticipants),
		errors.Is(err, calculator.ErrDuplicateParticipant),
		errors.Is(err, calculator.ErrNegativePercent),
		errors.Is(err, calculator.ErrSplitSum),
		errors.Is(err, calculator.ErrIndexOutOfRange):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ledger.ErrNoSharedTrackers),
		errors.Is(err, ledger.ErrNothingOwed),
		errors.Is(err, ledger.ErrNoPendingPayments):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func sharesFromAPI(shares []pb.Share) []calculator.Share {
	out := make([]calculator.Share, len(shares))
	for i, s := range shares {
		out[i] = calculator.Share{UserID: s.UserID, Percent: s.Percent}
	}
	return out
}

func sharesToAPI(shares []calculator.Share) []pb.Share {
	out := make([]pb.Share, len(shares))
	for i, s := range shares {
		out[i] = pb.Share{UserID: s.UserID, Percent: s.Percent}
	}
	return out
}

func expenseToAPI(e *models.Expense) *pb.Expense {
	splits := make([]pb.Share, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = pb.Share{UserID: s.UserID, Percent: s.Percent}
	}
	return &pb.Expense{
		ID:          e.ID,
		TrackerID:   e.TrackerID,
		Amount:      e.Amount,
		PaidBy:      e.PaidBy,
		Date:        e.Date,
		Category:    e.Category,
		Description: e.Description,
		Splits:      splits,
		CreatedAt:   e.CreatedAt,
	}
}

func paymentToAPI(p models.Payment) *pb.Payment {
	return &pb.Payment{
		ID:          p.ID,
		TrackerID:   p.TrackerID,
		FromUser:    p.FromUser,
		ToUser:      p.ToUser,
		Amount:      p.Amount,
		Status:      string(p.Status),
		SourceType:  p.SourceType,
		SourceID:    p.SourceID,
		CreatedAt:   p.CreatedAt,
		ConfirmedAt: p.ConfirmedAt,
		RejectedAt:  p.RejectedAt,
	}
}

func paymentsToAPI(payments []models.Payment) []*pb.Payment {
	out := make([]*pb.Payment, len(payments))
	for i, p := range payments {
		out[i] = paymentToAPI(p)
	}
	return out
}

func friendToAPI(f ledger.Friend) *pb.FriendBalance {
	perTracker := make([]pb.TrackerBalance, len(f.PerTracker))
	for i, tb := range f.PerTracker {
		perTracker[i] = pb.TrackerBalance{TrackerID: tb.TrackerID, Balance: tb.Balance}
	}
	return &pb.FriendBalance{
		UserID:             f.UserID,
		DisplayName:        f.DisplayName,
		Balance:            f.Balance,
		Direction:          string(f.Direction),
		SharedTrackerIDs:   f.SharedTrackers,
		PerTracker:         perTracker,
		PendingOutgoing:    f.PendingOutgoing,
		PendingOutgoingIDs: f.PendingOutgoingIDs,
		PendingIncoming:    f.PendingIncoming,
		PendingIncomingIDs: f.PendingIncomingIDs,
	}
}

func friendsToAPI(friends []ledger.Friend) []*pb.FriendBalance {
	out := make([]*pb.FriendBalance, len(friends))
	for i, f := range friends {
		out[i] = friendToAPI(f)
	}
	return out
}
