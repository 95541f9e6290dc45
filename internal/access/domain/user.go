package domain

import "time"

type User struct {
	ID           string
	Username     string // unique, immutable key
	PasswordHash string // argon2id encoded, never serialized outward
	FirstName    string
	LastName     string
	Email        string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserPatch is a partial update for mutable user fields. Nil fields are left
// untouched. Username is immutable and the password hash is not patchable, so
// neither appears here.
type UserPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Active    *bool
}
