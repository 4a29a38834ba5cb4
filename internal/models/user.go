package models

// User is the display information for an authenticated user ID.
// Accounts themselves are managed outside this service.
type User struct {
	// ID is the user identifier carried in the auth token.
	ID string

	// DisplayName is shown next to balances in the friend view.
	DisplayName string

	Email string

	// CreatedAt is the Unix timestamp when the user was first seen.
	CreatedAt int64
}
