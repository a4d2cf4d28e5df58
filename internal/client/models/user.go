// Package models defines the client-side domain types: the authenticated
// user, token pairs, file descriptors, and realtime channel state.
package models

import "time"

// Role is the server-assigned authorization role of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// UserRef identifies the authenticated user as reported by the identity
// endpoint.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *UserRef) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserAccount is a row from the admin user listing.
type UserAccount struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
