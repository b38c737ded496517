package model

import "time"

// AlertType classifies a notification.
type AlertType string

const (
	AlertBudgetWarning  AlertType = "budget_warning"
	AlertBudgetExceeded AlertType = "budget_exceeded"
	AlertGoalReached    AlertType = "goal_reached"
	AlertAchievement    AlertType = "achievement"
	AlertSystem         AlertType = "system"
)

// Alert is an in-app notification.
type Alert struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      AlertType `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
