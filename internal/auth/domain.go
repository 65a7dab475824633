package auth

import "time"

// User is a login account. IsActive gates authentication: deactivated
// accounts fail login with the same error as a bad password so the response
// does not leak account state.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
