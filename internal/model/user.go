// Package model defines domain entities for the application.
package model

import "time"

// Role constants for user authorization.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Plan constants for billing.
const (
	PlanFree = "free"
	PlanPro  = "pro"
)

// User represents an account holder of the application.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	PasswordHash     string    `json:"-"` // Never serialize
	Role             string    `json:"role"`
	Plan             string    `json:"plan"`
	StripeCustomerID string    `json:"-"`
	XP               int64     `json:"xp"`
	Level            int       `json:"level"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthContext holds authenticated request context.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	UserID string
	Email  string
	Role   string
}

// IsAdmin checks if the auth context belongs to an admin.
func (a *AuthContext) IsAdmin() bool {
	return a.Role == RoleAdmin
}
