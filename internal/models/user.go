package models

import "time"

// Role is a user capability in the system.
type Role string

const (
	RoleClient Role = "CLIENT"
	RoleAgent  Role = "AGENT"
	RoleAdmin  Role = "ADMIN"
)

// User represents a user in the system.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"` // Not serialized
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the resolved caller passed explicitly into every engine call.
// AccountID is zero for agents and admins, who own no client account.
type Identity struct {
	UserID    int64
	AccountID int64
	Roles     []Role
}

// HasRole reports whether the identity carries the given role.
func (i Identity) HasRole(role Role) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
