package rbac

import "time"

// Role groups permissions under a name users can be assigned to.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission is a single capability string, e.g. "sales.approve".
// The "admin" permission short-circuits every check.
type Permission struct {
	ID          int64
	Name        string
	Description string
}

// UserRole is the assignment row linking a user to a role.
type UserRole struct {
	UserID    int64
	RoleID    int64
	CreatedAt time.Time
}
