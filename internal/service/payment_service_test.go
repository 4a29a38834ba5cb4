package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	pb "github.com/Hruthwik-68/MyVyaya-sub000/pkg/ledgerapi"
)

func TestMarkPaidAndConfirm(t *testing.T) {
	s := setupTestServer(t)
	alice, bob, g1, _ := setupTwoTrackers(t, s)
	ctx := context.Background()

	markResp, err := alice.payment.MarkPaid(ctx, connect.NewRequest(&pb.MarkPaidRequest{CounterpartyID: "bob"}))
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if len(markResp.Msg.Payments) != 1 {
		t.Fatalf("expected 1 payment (g1 only), got %d", len(markResp.Msg.Payments))
	}
	p := markResp.Msg.Payments[0]
	if p.TrackerID != g1 || p.FromUser != "alice" || p.ToUser != "bob" || p.Status != "pending" {
		t.Errorf("unexpected payment: %+v", p)
	}
	if !p.Amount.Equal(dec("30")) {
		t.Errorf("amount = %s, want 30", p.Amount)
	}

	pending, err := bob.payment.ListPendingPayments(ctx, connect.NewRequest(&pb.ListPendingPaymentsRequest{}))
	if err != nil {
		t.Fatalf("ListPendingPayments failed: %v", err)
	}
	if len(pending.Msg.Incoming) != 1 || len(pending.Msg.Outgoing) != 0 {
		t.Errorf("bob pending: incoming %d, outgoing %d", len(pending.Msg.Incoming), len(pending.Msg.Outgoing))
	}

	// Only the creditor can confirm.
	_, err = alice.payment.ConfirmPayment(ctx, connect.NewRequest(&pb.ConfirmPaymentRequest{DebtorID: "bob"}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	confirmResp, err := bob.payment.ConfirmPayment(ctx, connect.NewRequest(&pb.ConfirmPaymentRequest{DebtorID: "alice"}))
	if err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}
	if confirmResp.Msg.Confirmed != 1 {
		t.Errorf("confirmed = %d, want 1", confirmResp.Msg.Confirmed)
	}

	pair, err := alice.friend.GetPairBalance(ctx, connect.NewRequest(&pb.GetPairBalanceRequest{UserID: "bob"}))
	if err != nil {
		t.Fatalf("GetPairBalance failed: %v", err)
	}
	if !pair.Msg.Friend.Balance.Equal(dec("10")) {
		t.Errorf("balance after confirmation = %s, want 10", pair.Msg.Friend.Balance)
	}
	if pair.Msg.Friend.Direction != "owed_to_me" {
		t.Errorf("direction = %s, want owed_to_me", pair.Msg.Friend.Direction)
	}

	_, err = bob.payment.ConfirmPayment(ctx, connect.NewRequest(&pb.ConfirmPaymentRequest{DebtorID: "alice"}))
	assertCode(t, err, connect.CodeFailedPrecondition)

	_, err = alice.payment.MarkPaid(ctx, connect.NewRequest(&pb.MarkPaidRequest{CounterpartyID: "bob"}))
	assertCode(t, err, connect.CodeFailedPrecondition)
}

func TestRejectPayment(t *testing.T) {
	s := setupTestServer(t)
	alice, bob, _, _ := setupTwoTrackers(t, s)
	ctx := context.Background()

	if _, err := alice.payment.MarkPaid(ctx, connect.NewRequest(&pb.MarkPaidRequest{CounterpartyID: "bob"})); err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}

	resp, err := bob.payment.RejectPayment(ctx, connect.NewRequest(&pb.RejectPaymentRequest{DebtorID: "alice"}))
	if err != nil {
		t.Fatalf("RejectPayment failed: %v", err)
	}
	if resp.Msg.Rejected != 1 {
		t.Errorf("rejected = %d, want 1", resp.Msg.Rejected)
	}

	pair, err := alice.friend.GetPairBalance(ctx, connect.NewRequest(&pb.GetPairBalanceRequest{UserID: "bob"}))
	if err != nil {
		t.Fatalf("GetPairBalance failed: %v", err)
	}
	if !pair.Msg.Friend.Balance.Equal(dec("-20")) {
		t.Errorf("balance after rejection = %s, want -20", pair.Msg.Friend.Balance)
	}
	if !pair.Msg.Friend.PendingOutgoing.IsZero() {
		t.Errorf("pending outgoing = %s, want 0", pair.Msg.Friend.PendingOutgoing)
	}
}

func TestMarkPaid_Errors(t *testing.T) {
	s := setupTestServer(t)
	alice, bob, _, _ := setupTwoTrackers(t, s)
	ctx := context.Background()

	tests := []struct {
		name   string
		client clients
		to     string
		want   connect.Code
	}{
		{"missing counterparty", alice, "", connect.CodeInvalidArgument},
		{"self", alice, "alice", connect.CodeInvalidArgument},
		{"no shared trackers", alice, "carol", connect.CodeFailedPrecondition},
		{"nothing owed", bob, "alice", connect.CodeFailedPrecondition},
		{"no token", s.clientsFor(t, ""), "bob", connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.payment.MarkPaid(ctx, connect.NewRequest(&pb.MarkPaidRequest{CounterpartyID: tt.to}))
			assertCode(t, err, tt.want)
		})
	}
}
