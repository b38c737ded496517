package gamification

import (
	"reflect"
	"testing"

	"github.com/organizai/organizai/internal/model"
)

func TestXPFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		event model.XPEventType
		want  int64
	}{
		{model.EventTransactionCreated, 5},
		{model.EventBudgetCreated, 10},
		{model.EventGoalCreated, 15},
		{model.EventGoalContribution, 10},
		{model.EventGoalCompleted, 100},
		{model.EventDebtPayment, 10},
		{model.EventDebtPaidOff, 150},
		{model.EventInvestmentCreated, 10},
		{"unknown", 0},
	}

	for _, tt := range tests {
		if got := XPFor(tt.event); got != tt.want {
			t.Errorf("XPFor(%q) = %d, want %d", tt.event, got, tt.want)
		}
	}
}

func TestLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		xp   int64
		want int
	}{
		{-10, 1},
		{0, 1},
		{99, 1},
		{100, 2},
		{399, 2},
		{400, 3},
		{899, 3},
		{900, 4},
		{1600, 5},
		{1599, 4},
		{10000, 11},
	}

	for _, tt := range tests {
		if got := Level(tt.xp); got != tt.want {
			t.Errorf("Level(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestProgressFor(t *testing.T) {
	t.Parallel()

	p := ProgressFor(250)
	if p.Level != 2 {
		t.Fatalf("Level = %d, want 2", p.Level)
	}
	if p.LevelStartXP != 100 || p.NextLevelXP != 400 {
		t.Errorf("thresholds = %d..%d, want 100..400", p.LevelStartXP, p.NextLevelXP)
	}
	if p.PercentToNext != 50 {
		t.Errorf("PercentToNext = %v, want 50", p.PercentToNext)
	}
	if p.RemainingToNext != 150 {
		t.Errorf("RemainingToNext = %d, want 150", p.RemainingToNext)
	}
}

func TestNewlyUnlocked(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stats model.GamificationStats
		want  []string
	}{
		{
			name:  "nothing yet",
			stats: model.GamificationStats{Level: 1, Counters: model.Counters{}},
			want:  nil,
		},
		{
			name: "first transaction",
			stats: model.GamificationStats{Level: 1, Counters: model.Counters{
				model.EventTransactionCreated: 1,
			}},
			want: []string{"first_transaction"},
		},
		{
			name: "already unlocked is skipped",
			stats: model.GamificationStats{
				Level:        1,
				Counters:     model.Counters{model.EventTransactionCreated: 100},
				Achievements: []string{"first_transaction"},
			},
			want: []string{"transaction_master"},
		},
		{
			name: "contributions and level",
			stats: model.GamificationStats{Level: 5, Counters: model.Counters{
				model.EventGoalContribution: 10,
				model.EventDebtPaidOff:      1,
			}},
			want: []string{"debt_slayer", "consistent_saver", "level_5"},
		},
		{
			name: "nine contributions is not enough",
			stats: model.GamificationStats{Level: 1, Counters: model.Counters{
				model.EventGoalContribution: 9,
			}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewlyUnlocked(&tt.stats); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NewlyUnlocked() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAchievements_Catalog(t *testing.T) {
	t.Parallel()

	all := Achievements()
	if len(all) != 9 {
		t.Fatalf("catalog size = %d, want 9", len(all))
	}
	seen := map[string]bool{}
	for _, a := range all {
		if seen[a.Code] {
			t.Errorf("duplicate code %q", a.Code)
		}
		seen[a.Code] = true
		if _, ok := AchievementByCode(a.Code); !ok {
			t.Errorf("AchievementByCode(%q) not found", a.Code)
		}
	}
	if _, ok := AchievementByCode("missing"); ok {
		t.Error("AchievementByCode(missing) should not be found")
	}
}
