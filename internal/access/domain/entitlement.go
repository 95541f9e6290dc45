package domain

import "time"

// Reserved entitlement names. They gate behaviour in the kernel (RoleAdmin) or
// the UI (RoleEndUser); any other name is an ordinary grantable badge.
const (
	RoleAdmin   = "ROLE_ADMIN"
	RoleEndUser = "ROLE_END_USER"
)

// Entitlement is a named, grantable capability/badge.
type Entitlement struct {
	ID          string
	Name        string // unique
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Grant joins exactly one user to one entitlement. The (UserID, EntitlementID)
// pair is unique: a user holds at most one grant per entitlement.
type Grant struct {
	ID            string
	UserID        string
	EntitlementID string
	CreatedAt     time.Time
}
