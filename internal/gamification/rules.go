// Package gamification awards experience points and achievements for
// finance activity.
package gamification

import (
	"math"

	"github.com/organizai/organizai/internal/model"
)

// xpTable maps each event type to the experience it awards.
var xpTable = map[model.XPEventType]int64{
	model.EventTransactionCreated: 5,
	model.EventBudgetCreated:      10,
	model.EventGoalCreated:        15,
	model.EventGoalContribution:   10,
	model.EventGoalCompleted:      100,
	model.EventDebtPayment:        10,
	model.EventDebtPaidOff:        150,
	model.EventInvestmentCreated:  10,
}

// XPFor returns the experience awarded for an event type, zero when unknown.
func XPFor(t model.XPEventType) int64 {
	return xpTable[t]
}

// IsKnownEvent reports whether t awards experience.
func IsKnownEvent(t model.XPEventType) bool {
	_, ok := xpTable[t]
	return ok
}

// Level returns floor(sqrt(xp/100)) + 1.
func Level(xp int64) int {
	if xp <= 0 {
		return 1
	}
	level := int(math.Sqrt(float64(xp)/100)) + 1
	// Guard against float rounding right below a perfect square.
	for LevelThreshold(level+1) <= xp {
		level++
	}
	for level > 1 && LevelThreshold(level) > xp {
		level--
	}
	return level
}

// LevelThreshold is the total XP needed to reach level: 100·(level−1)².
func LevelThreshold(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return 100 * n * n
}

// Progress describes how far a user is into the current level.
type Progress struct {
	XP              int64   `json:"xp"`
	Level           int     `json:"level"`
	LevelStartXP    int64   `json:"level_start_xp"`
	NextLevelXP     int64   `json:"next_level_xp"`
	PercentToNext   float64 `json:"percent_to_next"`
	RemainingToNext int64   `json:"remaining_to_next"`
}

// ProgressFor computes level progress for a total XP.
func ProgressFor(xp int64) Progress {
	level := Level(xp)
	start := LevelThreshold(level)
	next := LevelThreshold(level + 1)

	pct := 0.0
	if span := next - start; span > 0 {
		pct = float64(xp-start) / float64(span) * 100
	}
	return Progress{
		XP:              xp,
		Level:           level,
		LevelStartXP:    start,
		NextLevelXP:     next,
		PercentToNext:   math.Round(pct*100) / 100,
		RemainingToNext: next - xp,
	}
}

type achievementRule struct {
	model.Achievement
	unlocked func(counters model.Counters, level int) bool
}

func atLeast(t model.XPEventType, n int64) func(model.Counters, int) bool {
	return func(c model.Counters, _ int) bool { return c[t] >= n }
}

var catalog = []achievementRule{
	{model.Achievement{Code: "first_transaction", Title: "First Steps", Description: "Record your first transaction", Icon: "receipt"},
		atLeast(model.EventTransactionCreated, 1)},
	{model.Achievement{Code: "transaction_master", Title: "Transaction Master", Description: "Record 100 transactions", Icon: "list-checks"},
		atLeast(model.EventTransactionCreated, 100)},
	{model.Achievement{Code: "first_budget", Title: "Budget Planner", Description: "Create your first budget", Icon: "pie-chart"},
		atLeast(model.EventBudgetCreated, 1)},
	{model.Achievement{Code: "goal_setter", Title: "Goal Setter", Description: "Create your first goal", Icon: "target"},
		atLeast(model.EventGoalCreated, 1)},
	{model.Achievement{Code: "goal_achiever", Title: "Goal Achiever", Description: "Complete a goal", Icon: "trophy"},
		atLeast(model.EventGoalCompleted, 1)},
	{model.Achievement{Code: "debt_slayer", Title: "Debt Slayer", Description: "Pay off a debt", Icon: "sword"},
		atLeast(model.EventDebtPaidOff, 1)},
	{model.Achievement{Code: "investor", Title: "Investor", Description: "Register your first investment", Icon: "trending-up"},
		atLeast(model.EventInvestmentCreated, 1)},
	{model.Achievement{Code: "consistent_saver", Title: "Consistent Saver", Description: "Make 10 goal contributions", Icon: "piggy-bank"},
		atLeast(model.EventGoalContribution, 10)},
	{model.Achievement{Code: "level_5", Title: "Rising Star", Description: "Reach level 5", Icon: "star"},
		func(_ model.Counters, level int) bool { return level >= 5 }},
}

// Achievements returns the full catalog in display order.
func Achievements() []model.Achievement {
	out := make([]model.Achievement, len(catalog))
	for i, rule := range catalog {
		out[i] = rule.Achievement
	}
	return out
}

// AchievementByCode looks up a catalog entry.
func AchievementByCode(code string) (model.Achievement, bool) {
	for _, rule := range catalog {
		if rule.Code == code {
			return rule.Achievement, true
		}
	}
	return model.Achievement{}, false
}

// NewlyUnlocked returns the codes whose conditions hold for stats but that
// are not yet in stats.Achievements.
func NewlyUnlocked(stats *model.GamificationStats) []string {
	have := make(map[string]bool, len(stats.Achievements))
	for _, code := range stats.Achievements {
		have[code] = true
	}

	var codes []string
	for _, rule := range catalog {
		if have[rule.Code] {
			continue
		}
		if rule.unlocked(stats.Counters, stats.Level) {
			codes = append(codes, rule.Code)
		}
	}
	return codes
}
