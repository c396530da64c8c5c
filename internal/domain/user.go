package domain

import (
	"time"
)

// Role controls access to the admin surface
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// UserRecord is the persisted profile for an account. The credential itself is
// owned by the identity provider; this record carries everything else.
type UserRecord struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}
