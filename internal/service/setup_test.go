package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/auth"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/ledger"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/metrics"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/middleware"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/notify"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/storage/sqlstore"
	pb "github.com/Hruthwik-68/MyVyaya-sub000/pkg/ledgerapi"
)

type testServer struct {
	url   string
	store *sqlstore.Store
	jwt   *auth.JWTManager
}

type clients struct {
	expense pb.ExpenseServiceClient
	tracker pb.TrackerServiceClient
	friend  pb.FriendServiceClient
	payment pb.PaymentServiceClient
}

// setupTestServer starts every service behind the real auth and logging
// interceptors, on a temp-file SQLite database.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlstore.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	hub := notify.NewHub()
	m := metrics.New()
	l := ledger.New(store, hub, m)
	jwt := auth.NewJWTManager("test-secret", time.Hour, "")

	interceptors := connect.WithInterceptors(middleware.RequireAuth(jwt), middleware.NewLoggingInterceptor())

	mux := http.NewServeMux()
	mux.Handle(pb.NewExpenseServiceHandler(NewExpenseService(store, hub), interceptors))
	mux.Handle(pb.NewTrackerServiceHandler(NewTrackerService(store), interceptors))
	mux.Handle(pb.NewFriendServiceHandler(NewFriendService(l.View(), hub, m), interceptors))
	mux.Handle(pb.NewPaymentServiceHandler(NewPaymentService(l), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testServer{url: server.URL, store: store, jwt: jwt}
}

// clientsFor returns clients authenticated as userID. An empty userID gives
// clients that send no token.
func (s *testServer) clientsFor(t *testing.T, userID string) clients {
	t.Helper()

	var opts []connect.ClientOption
	if userID != "" {
		token, err := s.jwt.Generate(userID)
		if err != nil {
			t.Fatalf("failed to generate token: %v", err)
		}
		opts = append(opts, connect.WithInterceptors(middleware.BearerToken(token)))
	}

	return clients{
		expense: pb.NewExpenseServiceClient(http.DefaultClient, s.url, opts...),
		tracker: pb.NewTrackerServiceClient(http.DefaultClient, s.url, opts...),
		friend:  pb.NewFriendServiceClient(http.DefaultClient, s.url, opts...),
		payment: pb.NewPaymentServiceClient(http.DefaultClient, s.url, opts...),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func halfSplit(a, b string) []pb.Share {
	return []pb.Share{
		{UserID: a, Percent: dec("50")},
		{UserID: b, Percent: dec("50")},
	}
}

func createTracker(t *testing.T, c clients, members ...string) string {
	t.Helper()
	resp, err := c.tracker.CreateTracker(context.Background(), connect.NewRequest(&pb.CreateTrackerRequest{
		Members: members,
	}))
	if err != nil {
		t.Fatalf("CreateTracker failed: %v", err)
	}
	return resp.Msg.Tracker.ID
}

func createExpense(t *testing.T, c clients, trackerID, amount, paidBy string, splits []pb.Share) *pb.Expense {
	t.Helper()
	resp, err := c.expense.CreateExpense(context.Background(), connect.NewRequest(&pb.CreateExpenseRequest{
		TrackerID: trackerID,
		Amount:    dec(amount),
		PaidBy:    paidBy,
		Date:      "2026-05-01",
		Splits:    splits,
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

// setupTwoTrackers creates g1 where alice owes bob 30 and g2 where bob owes
// alice 10.
func setupTwoTrackers(t *testing.T, s *testServer) (alice, bob clients, g1, g2 string) {
	t.Helper()
	alice = s.clientsFor(t, "alice")
	bob = s.clientsFor(t, "bob")

	g1 = createTracker(t, alice, "bob")
	g2 = createTracker(t, bob, "alice")
	createExpense(t, bob, g1, "60", "bob", halfSplit("alice", "bob"))
	createExpense(t, alice, g2, "20", "alice", halfSplit("alice", "bob"))
	return alice, bob, g1, g2
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("code = %v, want %v (%v)", got, want, err)
	}
}
