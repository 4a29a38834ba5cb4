package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/ledger"
	pb "github.com/Hruthwik-68/MyVyaya-sub000/pkg/ledgerapi"
)

// PaymentService implements the Connect PaymentService on top of the ledger's
// payment lifecycle.
type PaymentService struct {
	ledger *ledger.Ledger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(l *ledger.Ledger) *PaymentService {
	return &PaymentService{ledger: l}
}

// MarkPaid records that the caller paid what they owe the counterparty.
func (s *PaymentService) MarkPaid(ctx context.Context, req *connect.Request[pb.MarkPaidRequest]) (*connect.Response[pb.MarkPaidResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.CounterpartyID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("counterparty_id is required"))
	}

	slog.Info("MarkPaid request received", "user_id", userID, "counterparty_id", req.Msg.CounterpartyID)

	payments, err := s.ledger.MarkPaid(ctx, userID, req.Msg.CounterpartyID)
	if err != nil {
		slog.Warn("MarkPaid failed", "user_id", userID, "counterparty_id", req.Msg.CounterpartyID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.MarkPaidResponse{Payments: paymentsToAPI(payments)}), nil
}

// ConfirmPayment confirms every pending payment the debtor sent the caller.
func (s *PaymentService) ConfirmPayment(ctx context.Context, req *connect.Request[pb.ConfirmPaymentRequest]) (*connect.Response[pb.ConfirmPaymentResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.DebtorID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("debtor_id is required"))
	}

	slog.Info("ConfirmPayment request received", "user_id", userID, "debtor_id", req.Msg.DebtorID)

	n, err := s.ledger.ConfirmPayment(ctx, userID, req.Msg.DebtorID)
	if err != nil {
		slog.Warn("ConfirmPayment failed", "user_id", userID, "debtor_id", req.Msg.DebtorID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.ConfirmPaymentResponse{Confirmed: n}), nil
}

// RejectPayment rejects every pending payment the debtor sent the caller.
func (s *PaymentService) RejectPayment(ctx context.Context, req *connect.Request[pb.RejectPaymentRequest]) (*connect.Response[pb.RejectPaymentResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.DebtorID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("debtor_id is required"))
	}

	slog.Info("RejectPayment request received", "user_id", userID, "debtor_id", req.Msg.DebtorID)

	n, err := s.ledger.RejectPayment(ctx, userID, req.Msg.DebtorID)
	if err != nil {
		slog.Warn("RejectPayment failed", "user_id", userID, "debtor_id", req.Msg.DebtorID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.RejectPaymentResponse{Rejected: n}), nil
}

// ListPendingPayments returns the caller's pending payments in both directions.
func (s *PaymentService) ListPendingPayments(ctx context.Context, req *connect.Request[pb.ListPendingPaymentsRequest]) (*connect.Response[pb.ListPendingPaymentsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	incoming, outgoing, err := s.ledger.PendingPayments(ctx, userID)
	if err != nil {
		slog.Error("ListPendingPayments failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.ListPendingPaymentsResponse{
		Incoming: paymentsToAPI(incoming),
		Outgoing: paymentsToAPI(outgoing),
	}), nil
}
