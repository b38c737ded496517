package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/organizai/organizai/internal/cache"
	"github.com/organizai/organizai/internal/gamification"
	"github.com/organizai/organizai/internal/model"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// GamificationStore is the storage GamificationService needs.
type GamificationStore interface {
	GetGamificationStats(ctx context.Context, userID string) (*model.GamificationStats, error)
	ListUserAchievements(ctx context.Context, userID string) ([]model.UserAchievement, error)
	ListUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error)
	ListTopUsersByXP(ctx context.Context, limit int) ([]*model.User, error)
}

// LeaderboardReader reads the cached XP ranking.
type LeaderboardReader interface {
	TopLeaderboard(ctx context.Context, n int) ([]cache.LeaderboardScore, error)
}

// GamificationService exposes XP, levels and achievements.
type GamificationService struct {
	store  GamificationStore
	board  LeaderboardReader
	logger *slog.Logger
}

// NewGamificationService creates a new GamificationService. board may be nil.
func NewGamificationService(store GamificationStore, board LeaderboardReader, logger *slog.Logger) *GamificationService {
	return &GamificationService{store: store, board: board, logger: logger}
}

// Profile is a user's gamification standing.
type Profile struct {
	gamification.Progress
	Counters     model.Counters      `json:"counters"`
	Achievements []AchievementStatus `json:"achievements"`
}

// AchievementStatus is a catalog entry with the user's unlock state.
type AchievementStatus struct {
	model.Achievement
	Unlocked   bool    `json:"unlocked"`
	UnlockedAt *string `json:"unlocked_at,omitempty"`
}

// Profile returns the user's XP, level progress and unlocked achievements.
func (s *GamificationService) Profile(ctx context.Context, userID string) (*Profile, error) {
	stats, err := s.store.GetGamificationStats(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	all, err := s.Achievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	unlocked := make([]AchievementStatus, 0, len(stats.Achievements))
	for _, a := range all {
		if a.Unlocked {
			unlocked = append(unlocked, a)
		}
	}
	return &Profile{
		Progress:     gamification.ProgressFor(stats.XP),
		Counters:     stats.Counters,
		Achievements: unlocked,
	}, nil
}

// Achievements returns the whole catalog, flagging what the user unlocked.
func (s *GamificationService) Achievements(ctx context.Context, userID string) ([]AchievementStatus, error) {
	have, err := s.store.ListUserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	when := make(map[string]string, len(have))
	for _, a := range have {
		when[a.Code] = a.UnlockedAt.UTC().Format(time.RFC3339)
	}

	catalog := gamification.Achievements()
	out := make([]AchievementStatus, 0, len(catalog))
	for _, a := range catalog {
		st := AchievementStatus{Achievement: a}
		if at, ok := when[a.Code]; ok {
			st.Unlocked = true
			st.UnlockedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}

// Leaderboard returns the top n users by XP. The Redis ranking is used
// when available; otherwise users are ranked from the database.
func (s *GamificationService) Leaderboard(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n <= 0 || n > maxLeaderboardSize {
		n = defaultLeaderboardSize
	}

	if s.board != nil {
		scores, err := s.board.TopLeaderboard(ctx, n)
		if err != nil {
			s.logger.Warn("leaderboard cache read failed", "error", err)
		} else if len(scores) > 0 {
			return s.fromScores(ctx, scores)
		}
	}

	users, err := s.store.ListTopUsersByXP(ctx, n)
	if err != nil {
		return nil, err
	}
	entries := make([]model.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, model.LeaderboardEntry{
			Rank:   i + 1,
			UserID: u.ID,
			Name:   u.Name,
			XP:     u.XP,
			Level:  gamification.Level(u.XP),
		})
	}
	return entries, nil
}

func (s *GamificationService) fromScores(ctx context.Context, scores []cache.LeaderboardScore) ([]model.LeaderboardEntry, error) {
	ids := make([]string, len(scores))
	for i, sc := range scores {
		ids[i] = sc.UserID
	}
	users, err := s.store.ListUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(scores))
	for _, sc := range scores {
		u, ok := users[sc.UserID]
		if !ok {
			// Deleted user still in the sorted set.
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			Rank:   len(entries) + 1,
			UserID: sc.UserID,
			Name:   u.Name,
			XP:     sc.XP,
			Level:  gamification.Level(sc.XP),
		})
	}
	return entries, nil
}
