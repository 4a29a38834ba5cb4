package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/ledger"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/metrics"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/notify"
	pb "github.com/Hruthwik-68/MyVyaya-sub000/pkg/ledgerapi"
)

// FriendService implements the Connect FriendService: the unified friend view
// and its live stream.
type FriendService struct {
	view    *ledger.View
	hub     *notify.Hub
	metrics *metrics.Metrics
}

// NewFriendService creates a FriendService. m may be nil.
func NewFriendService(view *ledger.View, hub *notify.Hub, m *metrics.Metrics) *FriendService {
	return &FriendService{view: view, hub: hub, metrics: m}
}

// GetFriendBalances returns the caller's balance with everyone they share a
// tracker with, largest first.
func (s *FriendService) GetFriendBalances(ctx context.Context, req *connect.Request[pb.GetFriendBalancesRequest]) (*connect.Response[pb.GetFriendBalancesResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("GetFriendBalances request received", "user_id", userID)

	friends, err := s.view.FriendBalances(ctx, userID)
	if err != nil {
		slog.Error("GetFriendBalances failed", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("GetFriendBalances successful", "user_id", userID, "friends", len(friends))
	return connect.NewResponse(&pb.GetFriendBalancesResponse{Friends: friendsToAPI(friends)}), nil
}

// GetPairBalance returns the caller's unified balance with one user.
func (s *FriendService) GetPairBalance(ctx context.Context, req *connect.Request[pb.GetPairBalanceRequest]) (*connect.Response[pb.GetPairBalanceResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.UserID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("user_id is required"))
	}
	if req.Msg.UserID == userID {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("cannot compute a balance with yourself"))
	}

	friend, err := s.view.PairBalance(ctx, userID, req.Msg.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.GetPairBalanceResponse{Friend: friendToAPI(friend)}), nil
}

// WatchFriendBalances streams the caller's friend view, once on open and again
// whenever an expense or payment touching the caller changes.
func (s *FriendService) WatchFriendBalances(ctx context.Context, req *connect.Request[pb.WatchFriendBalancesRequest], stream *connect.ServerStream[pb.WatchFriendBalancesResponse]) error {
	userID, err := requireUser(ctx)
	if err != nil {
		return err
	}

	sub := s.hub.Subscribe(userID)
	defer sub.Close()

	err = ledger.Watch(ctx, s.view, userID, sub, s.metrics, func(friends []ledger.Friend) error {
		return stream.Send(&pb.WatchFriendBalancesResponse{Friends: friendsToAPI(friends)})
	})
	if err != nil {
		slog.Warn("WatchFriendBalances ended", "user_id", userID, "error", err)
		return toConnectError(err)
	}
	return nil
}
