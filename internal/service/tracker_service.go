package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/models"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/storage"
	pb "github.com/Hruthwik-68/MyVyaya-sub000/pkg/ledgerapi"
)

// TrackerService implements the Connect TrackerService
type TrackerService struct {
	store storage.Store
}

// NewTrackerService creates a new TrackerService with the given storage backend.
func NewTrackerService(store storage.Store) *TrackerService {
	return &TrackerService{store: store}
}

// CreateTracker creates a tracker owned by the caller. Group trackers may be
// created with initial members; personal trackers only ever have their owner.
func (s *TrackerService) CreateTracker(ctx context.Context, req *connect.Request[pb.CreateTrackerRequest]) (*connect.Response[pb.CreateTrackerResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("CreateTracker request received",
		"user_id", userID,
		"type", req.Msg.Type,
		"members_count", len(req.Msg.Members),
	)

	trackerType := models.TrackerType(req.Msg.Type)
	switch trackerType {
	case "":
		trackerType = models.TrackerGroup
	case models.TrackerGroup, models.TrackerPersonal:
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("type must be 'group' or 'personal'"))
	}
	if trackerType == models.TrackerPersonal && len(req.Msg.Members) > 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("personal trackers cannot have members"))
	}

	tracker := &models.Tracker{Type: trackerType, CreatedBy: userID}
	if err := s.store.CreateTracker(ctx, tracker, req.Msg.Members...); err != nil {
		slog.Error("CreateTracker failed", "error", err)
		return nil, toConnectError(err)
	}

	members, err := s.store.ListMembers(ctx, []string{tracker.ID})
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Tracker created", "tracker_id", tracker.ID, "type", tracker.Type)

	return connect.NewResponse(&pb.CreateTrackerResponse{
		Tracker: &pb.Tracker{
			ID:        tracker.ID,
			Type:      string(tracker.Type),
			CreatedBy: tracker.CreatedBy,
			GroupCode: tracker.GroupCode,
			Members:   members[tracker.ID],
			CreatedAt: tracker.CreatedAt,
		},
	}), nil
}

// AddMember adds a user to a group tracker the caller belongs to.
func (s *TrackerService) AddMember(ctx context.Context, req *connect.Request[pb.AddMemberRequest]) (*connect.Response[pb.AddMemberResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("AddMember request received",
		"user_id", userID,
		"tracker_id", req.Msg.TrackerID,
		"member", req.Msg.UserID,
	)

	if req.Msg.UserID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("user_id is required"))
	}
	if _, err := loadMembers(ctx, s.store, req.Msg.TrackerID, userID); err != nil {
		return nil, err
	}

	tracker, err := s.store.GetTracker(ctx, req.Msg.TrackerID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if tracker.Type == models.TrackerPersonal {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("personal trackers cannot have members"))
	}

	if err := s.store.AddMember(ctx, tracker.ID, req.Msg.UserID, models.RoleMember); err != nil {
		slog.Error("AddMember failed", "tracker_id", tracker.ID, "error", err)
		return nil, toConnectError(err)
	}

	members, err := s.store.ListMembers(ctx, []string{tracker.ID})
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Member added", "tracker_id", tracker.ID, "member", req.Msg.UserID)
	return connect.NewResponse(&pb.AddMemberResponse{Members: members[tracker.ID]}), nil
}
