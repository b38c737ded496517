package model

import "time"

// XPEventType names an action that earns experience points.
type XPEventType string

const (
	EventTransactionCreated XPEventType = "transaction_created"
	EventBudgetCreated      XPEventType = "budget_created"
	EventGoalCreated        XPEventType = "goal_created"
	EventGoalContribution   XPEventType = "goal_contribution"
	EventGoalCompleted      XPEventType = "goal_completed"
	EventDebtPayment        XPEventType = "debt_payment"
	EventDebtPaidOff        XPEventType = "debt_paid_off"
	EventInvestmentCreated  XPEventType = "investment_created"
)

// XPEvent is a gamification event flowing through the event stream.
type XPEvent struct {
	EventID    string      `json:"event_id"`
	UserID     string      `json:"user_id"`
	Type       XPEventType `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Achievement describes an unlockable badge.
type Achievement struct {
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// UserAchievement is an achievement unlocked by a user.
type UserAchievement struct {
	UserID     string    `json:"user_id"`
	Code       string    `json:"code"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

// GamificationStats holds the per-user counters achievements are evaluated on.
type GamificationStats struct {
	UserID       string   `json:"user_id"`
	XP           int64    `json:"xp"`
	Level        int      `json:"level"`
	Counters     Counters `json:"counters"`
	Achievements []string `json:"achievements"`
}

// Counters maps an event type to how many times it happened.
type Counters map[XPEventType]int64

// LeaderboardEntry is a ranked user on the leaderboard.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	XP     int64  `json:"xp"`
	Level  int    `json:"level"`
}
