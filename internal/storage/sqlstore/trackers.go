package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/models"
	"github.com/Hruthwik-68/MyVyaya-sub000/internal/storage"
)

// CreateTracker persists a new tracker, its owner membership and any initial
// members in one transaction.
func (s *Store) CreateTracker(ctx context.Context, tracker *models.Tracker, members ...string) error {
	if tracker.ID == "" {
		tracker.ID = uuid.New().String()
	}
	if tracker.CreatedAt == 0 {
		tracker.CreatedAt = time.Now().Unix()
	}
	if tracker.Type == "" {
		tracker.Type = models.TrackerGroup
	}
	if tracker.Type == models.TrackerGroup && tracker.GroupCode == "" {
		tracker.GroupCode = generateGroupCode()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, s.rebind(
		"INSERT INTO trackers (id, type, created_by, group_code, created_at) VALUES (?, ?, ?, ?, ?)"),
		tracker.ID, string(tracker.Type), tracker.CreatedBy, tracker.GroupCode, tracker.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tracker: %w", err)
	}

	_, err = tx.ExecContext(ctx, s.rebind(
		"INSERT INTO group_members (tracker_id, user_id, role) VALUES (?, ?, ?)"),
		tracker.ID, tracker.CreatedBy, string(models.RoleOwner),
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner member: %w", err)
	}

	for _, member := range members {
		if member == "" || member == tracker.CreatedBy {
			continue
		}
		_, err = tx.ExecContext(ctx, s.rebind(
			`INSERT INTO group_members (tracker_id, user_id, role) VALUES (?, ?, ?)
			 ON CONFLICT (tracker_id, user_id) DO NOTHING`),
			tracker.ID, member, string(models.RoleMember),
		)
		if err != nil {
			return fmt.Errorf("failed to insert member %s: %w", member, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetTracker retrieves a tracker by ID.
func (s *Store) GetTracker(ctx context.Context, id string) (*models.Tracker, error) {
	tracker := &models.Tracker{}
	var trackerType string
	err := s.db.QueryRowContext(ctx, s.rebind(
		"SELECT id, type, created_by, group_code, created_at FROM trackers WHERE id = ?"),
		id,
	).Scan(&tracker.ID, &trackerType, &tracker.CreatedBy, &tracker.GroupCode, &tracker.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tracker %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracker: %w", err)
	}
	tracker.Type = models.TrackerType(trackerType)
	return tracker, nil
}

// AddMember adds a user to a tracker, ignoring existing memberships.
func (s *Store) AddMember(ctx context.Context, trackerID, userID string, role models.Role) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO group_members (tracker_id, user_id, role) VALUES (?, ?, ?)
		 ON CONFLICT (tracker_id, user_id) DO NOTHING`),
		trackerID, userID, string(role),
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// ListTrackerIDsForUser returns the trackers userID is a member of.
func (s *Store) ListTrackerIDsForUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		"SELECT tracker_id FROM group_members WHERE user_id = ? ORDER BY tracker_id"),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list trackers for user: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tracker id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trackers: %w", err)
	}

	return ids, nil
}

// ListMembers returns tracker ID -> member user IDs for the given trackers.
func (s *Store) ListMembers(ctx context.Context, trackerIDs []string) (map[string][]string, error) {
	members := make(map[string][]string, len(trackerIDs))
	if len(trackerIDs) == 0 {
		return members, nil
	}

	query := `SELECT tracker_id, user_id FROM group_members
		WHERE tracker_id IN (` + placeholders(len(trackerIDs)) + `)
		ORDER BY tracker_id, user_id`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), stringArgs(trackerIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var trackerID, userID string
		if err := rows.Scan(&trackerID, &userID); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members[trackerID] = append(members[trackerID], userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// generateGroupCode returns a short upper-case join code.
func generateGroupCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
}
