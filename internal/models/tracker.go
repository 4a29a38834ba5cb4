package models

// TrackerType distinguishes personal ledgers from shared ones.
type TrackerType string

const (
	TrackerPersonal TrackerType = "personal"
	TrackerGroup    TrackerType = "group"
)

// Role is a member's role within a tracker.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// Tracker is a ledger scope owning members and expenses.
// Its type never changes after creation.
type Tracker struct {
	// ID is the unique identifier for the tracker (UUID format).
	ID string

	Type TrackerType

	// CreatedBy is the user who created the tracker and became its owner.
	CreatedBy string

	// GroupCode is the short join code for group trackers (empty for personal ones).
	GroupCode string

	// CreatedAt is the Unix timestamp when the tracker was created.
	CreatedAt int64
}

// Member links a user to a tracker.
type Member struct {
	TrackerID string
	UserID    string
	Role      Role
}
