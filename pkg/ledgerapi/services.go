package ledgerapi

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	ExpenseServiceName = "ledger.v1.ExpenseService"
	TrackerServiceName = "ledger.v1.TrackerService"
	FriendServiceName  = "ledger.v1.FriendService"
	PaymentServiceName = "ledger.v1.PaymentService"
)

const (
	ExpenseServiceToggleParticipantProcedure = "/ledger.v1.ExpenseService/ToggleParticipant"
	ExpenseServiceAdjustBoundaryProcedure    = "/ledger.v1.ExpenseService/AdjustBoundary"
	ExpenseServiceCreateExpenseProcedure     = "/ledger.v1.ExpenseService/CreateExpense"
	ExpenseServiceListExpensesProcedure      = "/ledger.v1.ExpenseService/ListExpenses"

	TrackerServiceCreateTrackerProcedure = "/ledger.v1.TrackerService/CreateTracker"
	TrackerServiceAddMemberProcedure     = "/ledger.v1.TrackerService/AddMember"

	FriendServiceGetFriendBalancesProcedure   = "/ledger.v1.FriendService/GetFriendBalances"
	FriendServiceGetPairBalanceProcedure      = "/ledger.v1.FriendService/GetPairBalance"
	FriendServiceWatchFriendBalancesProcedure = "/ledger.v1.FriendService/WatchFriendBalances"

	PaymentServiceMarkPaidProcedure            = "/ledger.v1.PaymentService/MarkPaid"
	PaymentServiceConfirmPaymentProcedure      = "/ledger.v1.PaymentService/ConfirmPayment"
	PaymentServiceRejectPaymentProcedure       = "/ledger.v1.PaymentService/RejectPayment"
	PaymentServiceListPendingPaymentsProcedure = "/ledger.v1.PaymentService/ListPendingPayments"
)

// ExpenseService

type ExpenseServiceHandler interface {
	ToggleParticipant(context.Context, *connect.Request[ToggleParticipantRequest]) (*connect.Response[ToggleParticipantResponse], error)
	AdjustBoundary(context.Context, *connect.Request[AdjustBoundaryRequest]) (*connect.Response[AdjustBoundaryResponse], error)
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + ExpenseServiceName + "/", route(map[string]http.Handler{
		ExpenseServiceToggleParticipantProcedure: connect.NewUnaryHandler(ExpenseServiceToggleParticipantProcedure, svc.ToggleParticipant, opts...),
		ExpenseServiceAdjustBoundaryProcedure:    connect.NewUnaryHandler(ExpenseServiceAdjustBoundaryProcedure, svc.AdjustBoundary, opts...),
		ExpenseServiceCreateExpenseProcedure:     connect.NewUnaryHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts...),
		ExpenseServiceListExpensesProcedure:      connect.NewUnaryHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts...),
	})
}

type ExpenseServiceClient interface {
	ToggleParticipant(context.Context, *connect.Request[ToggleParticipantRequest]) (*connect.Response[ToggleParticipantResponse], error)
	AdjustBoundary(context.Context, *connect.Request[AdjustBoundaryRequest]) (*connect.Response[AdjustBoundaryResponse], error)
	CreateExpense(context.Context, *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error)
}

// NewExpenseServiceClient constructs a client for the ledger.v1.ExpenseService
// service. baseURL is the server root, e.g. http://localhost:8080.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &expenseServiceClient{
		toggleParticipant: connect.NewClient[ToggleParticipantRequest, ToggleParticipantResponse](httpClient, baseURL+ExpenseServiceToggleParticipantProcedure, opts...),
		adjustBoundary:    connect.NewClient[AdjustBoundaryRequest, AdjustBoundaryResponse](httpClient, baseURL+ExpenseServiceAdjustBoundaryProcedure, opts...),
		createExpense:     connect.NewClient[CreateExpenseRequest, CreateExpenseResponse](httpClient, baseURL+ExpenseServiceCreateExpenseProcedure, opts...),
		listExpenses:      connect.NewClient[ListExpensesRequest, ListExpensesResponse](httpClient, baseURL+ExpenseServiceListExpensesProcedure, opts...),
	}
}

type expenseServiceClient struct {
	toggleParticipant *connect.Client[ToggleParticipantRequest, ToggleParticipantResponse]
	adjustBoundary    *connect.Client[AdjustBoundaryRequest, AdjustBoundaryResponse]
	createExpense     *connect.Client[CreateExpenseRequest, CreateExpenseResponse]
	listExpenses      *connect.Client[ListExpensesRequest, ListExpensesResponse]
}

func (c *expenseServiceClient) ToggleParticipant(ctx context.Context, req *connect.Request[ToggleParticipantRequest]) (*connect.Response[ToggleParticipantResponse], error) {
	return c.toggleParticipant.CallUnary(ctx, req)
}

func (c *expenseServiceClient) AdjustBoundary(ctx context.Context, req *connect.Request[AdjustBoundaryRequest]) (*connect.Response[AdjustBoundaryResponse], error) {
	return c.adjustBoundary.CallUnary(ctx, req)
}

func (c *expenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[CreateExpenseRequest]) (*connect.Response[CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[ListExpensesRequest]) (*connect.Response[ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

// TrackerService

type TrackerServiceHandler interface {
	CreateTracker(context.Context, *connect.Request[CreateTrackerRequest]) (*connect.Response[CreateTrackerResponse], error)
	AddMember(context.Context, *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error)
}

func NewTrackerServiceHandler(svc TrackerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + TrackerServiceName + "/", route(map[string]http.Handler{
		TrackerServiceCreateTrackerProcedure: connect.NewUnaryHandler(TrackerServiceCreateTrackerProcedure, svc.CreateTracker, opts...),
		TrackerServiceAddMemberProcedure:     connect.NewUnaryHandler(TrackerServiceAddMemberProcedure, svc.AddMember, opts...),
	})
}

type TrackerServiceClient interface {
	CreateTracker(context.Context, *connect.Request[CreateTrackerRequest]) (*connect.Response[CreateTrackerResponse], error)
	AddMember(context.Context, *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error)
}

func NewTrackerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) TrackerServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &trackerServiceClient{
		createTracker: connect.NewClient[CreateTrackerRequest, CreateTrackerResponse](httpClient, baseURL+TrackerServiceCreateTrackerProcedure, opts...),
		addMember:     connect.NewClient[AddMemberRequest, AddMemberResponse](httpClient, baseURL+TrackerServiceAddMemberProcedure, opts...),
	}
}

type trackerServiceClient struct {
	createTracker *connect.Client[CreateTrackerRequest, CreateTrackerResponse]
	addMember     *connect.Client[AddMemberRequest, AddMemberResponse]
}

func (c *trackerServiceClient) CreateTracker(ctx context.Context, req *connect.Request[CreateTrackerRequest]) (*connect.Response[CreateTrackerResponse], error) {
	return c.createTracker.CallUnary(ctx, req)
}

func (c *trackerServiceClient) AddMember(ctx context.Context, req *connect.Request[AddMemberRequest]) (*connect.Response[AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

// FriendService

type FriendServiceHandler interface {
	GetFriendBalances(context.Context, *connect.Request[GetFriendBalancesRequest]) (*connect.Response[GetFriendBalancesResponse], error)
	GetPairBalance(context.Context, *connect.Request[GetPairBalanceRequest]) (*connect.Response[GetPairBalanceResponse], error)
	WatchFriendBalances(context.Context, *connect.Request[WatchFriendBalancesRequest], *connect.ServerStream[WatchFriendBalancesResponse]) error
}

func NewFriendServiceHandler(svc FriendServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + FriendServiceName + "/", route(map[string]http.Handler{
		FriendServiceGetFriendBalancesProcedure:   connect.NewUnaryHandler(FriendServiceGetFriendBalancesProcedure, svc.GetFriendBalances, opts...),
		FriendServiceGetPairBalanceProcedure:      connect.NewUnaryHandler(FriendServiceGetPairBalanceProcedure, svc.GetPairBalance, opts...),
		FriendServiceWatchFriendBalancesProcedure: connect.NewServerStreamHandler(FriendServiceWatchFriendBalancesProcedure, svc.WatchFriendBalances, opts...),
	})
}

type FriendServiceClient interface {
	GetFriendBalances(context.Context, *connect.Request[GetFriendBalancesRequest]) (*connect.Response[GetFriendBalancesResponse], error)
	GetPairBalance(context.Context, *connect.Request[GetPairBalanceRequest]) (*connect.Response[GetPairBalanceResponse], error)
	WatchFriendBalances(context.Context, *connect.Request[WatchFriendBalancesRequest]) (*connect.ServerStreamForClient[WatchFriendBalancesResponse], error)
}

func NewFriendServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) FriendServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &friendServiceClient{
		getFriendBalances:   connect.NewClient[GetFriendBalancesRequest, GetFriendBalancesResponse](httpClient, baseURL+FriendServiceGetFriendBalancesProcedure, opts...),
		getPairBalance:      connect.NewClient[GetPairBalanceRequest, GetPairBalanceResponse](httpClient, baseURL+FriendServiceGetPairBalanceProcedure, opts...),
		watchFriendBalances: connect.NewClient[WatchFriendBalancesRequest, WatchFriendBalancesResponse](httpClient, baseURL+FriendServiceWatchFriendBalancesProcedure, opts...),
	}
}

type friendServiceClient struct {
	getFriendBalances   *connect.Client[GetFriendBalancesRequest, GetFriendBalancesResponse]
	getPairBalance      *connect.Client[GetPairBalanceRequest, GetPairBalanceResponse]
	watchFriendBalances *connect.Client[WatchFriendBalancesRequest, WatchFriendBalancesResponse]
}

func (c *friendServiceClient) GetFriendBalances(ctx context.Context, req *connect.Request[GetFriendBalancesRequest]) (*connect.Response[GetFriendBalancesResponse], error) {
	return c.getFriendBalances.CallUnary(ctx, req)
}

func (c *friendServiceClient) GetPairBalance(ctx context.Context, req *connect.Request[GetPairBalanceRequest]) (*connect.Response[GetPairBalanceResponse], error) {
	return c.getPairBalance.CallUnary(ctx, req)
}

func (c *friendServiceClient) WatchFriendBalances(ctx context.Context, req *connect.Request[WatchFriendBalancesRequest]) (*connect.ServerStreamForClient[WatchFriendBalancesResponse], error) {
	return c.watchFriendBalances.CallServerStream(ctx, req)
}

// PaymentService

type PaymentServiceHandler interface {
	MarkPaid(context.Context, *connect.Request[MarkPaidRequest]) (*connect.Response[MarkPaidResponse], error)
	ConfirmPayment(context.Context, *connect.Request[ConfirmPaymentRequest]) (*connect.Response[ConfirmPaymentResponse], error)
	RejectPayment(context.Context, *connect.Request[RejectPaymentRequest]) (*connect.Response[RejectPaymentResponse], error)
	ListPendingPayments(context.Context, *connect.Request[ListPendingPaymentsRequest]) (*connect.Response[ListPendingPaymentsResponse], error)
}

func NewPaymentServiceHandler(svc PaymentServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/" + PaymentServiceName + "/", route(map[string]http.Handler{
		PaymentServiceMarkPaidProcedure:            connect.NewUnaryHandler(PaymentServiceMarkPaidProcedure, svc.MarkPaid, opts...),
		PaymentServiceConfirmPaymentProcedure:      connect.NewUnaryHandler(PaymentServiceConfirmPaymentProcedure, svc.ConfirmPayment, opts...),
		PaymentServiceRejectPaymentProcedure:       connect.NewUnaryHandler(PaymentServiceRejectPaymentProcedure, svc.RejectPayment, opts...),
		PaymentServiceListPendingPaymentsProcedure: connect.NewUnaryHandler(PaymentServiceListPendingPaymentsProcedure, svc.ListPendingPayments, opts...),
	})
}

type PaymentServiceClient interface {
	MarkPaid(context.Context, *connect.Request[MarkPaidRequest]) (*connect.Response[MarkPaidResponse], error)
	ConfirmPayment(context.Context, *connect.Request[ConfirmPaymentRequest]) (*connect.Response[ConfirmPaymentResponse], error)
	RejectPayment(context.Context, *connect.Request[RejectPaymentRequest]) (*connect.Response[RejectPaymentResponse], error)
	ListPendingPayments(context.Context, *connect.Request[ListPendingPaymentsRequest]) (*connect.Response[ListPendingPaymentsResponse], error)
}

func NewPaymentServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PaymentServiceClient {
	baseURL = trimBase(baseURL)
	opts = clientOptions(opts)
	return &paymentServiceClient{
		markPaid:            connect.NewClient[MarkPaidRequest, MarkPaidResponse](httpClient, baseURL+PaymentServiceMarkPaidProcedure, opts...),
		confirmPayment:      connect.NewClient[ConfirmPaymentRequest, ConfirmPaymentResponse](httpClient, baseURL+PaymentServiceConfirmPaymentProcedure, opts...),
		rejectPayment:       connect.NewClient[RejectPaymentRequest, RejectPaymentResponse](httpClient, baseURL+PaymentServiceRejectPaymentProcedure, opts...),
		listPendingPayments: connect.NewClient[ListPendingPaymentsRequest, ListPendingPaymentsResponse](httpClient, baseURL+PaymentServiceListPendingPaymentsProcedure, opts...),
	}
}

type paymentServiceClient struct {
	markPaid            *connect.Client[MarkPaidRequest, MarkPaidResponse]
	confirmPayment      *connect.Client[ConfirmPaymentRequest, ConfirmPaymentResponse]
	rejectPayment       *connect.Client[RejectPaymentRequest, RejectPaymentResponse]
	listPendingPayments *connect.Client[ListPendingPaymentsRequest, ListPendingPaymentsResponse]
}

func (c *paymentServiceClient) MarkPaid(ctx context.Context, req *connect.Request[MarkPaidRequest]) (*connect.Response[MarkPaidResponse], error) {
	return c.markPaid.CallUnary(ctx, req)
}

func (c *paymentServiceClient) ConfirmPayment(ctx context.Context, req *connect.Request[ConfirmPaymentRequest]) (*connect.Response[ConfirmPaymentResponse], error) {
	return c.confirmPayment.CallUnary(ctx, req)
}

func (c *paymentServiceClient) RejectPayment(ctx context.Context, req *connect.Request[RejectPaymentRequest]) (*connect.Response[RejectPaymentResponse], error) {
	return c.rejectPayment.CallUnary(ctx, req)
}

func (c *paymentServiceClient) ListPendingPayments(ctx context.Context, req *connect.Request[ListPendingPaymentsRequest]) (*connect.Response[ListPendingPaymentsResponse], error) {
	return c.listPendingPayments.CallUnary(ctx, req)
}
