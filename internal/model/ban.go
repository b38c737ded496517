package model

import "time"

// Ban blocks a user from using the application.
type Ban struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Reason    string     `json:"reason"`
	BannedBy  string     `json:"banned_by"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsActive returns true if the ban is in force at the given time.
func (b *Ban) IsActive(now time.Time) bool {
	return b.ExpiresAt == nil || now.Before(*b.ExpiresAt)
}
