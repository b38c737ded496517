package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/repository"
)

type fakeGoalStore struct {
	goal   *model.Goal
	alerts []*model.Alert
}

func (f *fakeGoalStore) CreateGoal(_ context.Context, g *model.Goal) error {
	f.goal = g
	return nil
}

func (f *fakeGoalStore) GetGoal(_ context.Context, userID, id string) (*model.Goal, error) {
	if f.goal == nil || f.goal.ID != id || f.goal.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return f.goal, nil
}

func (f *fakeGoalStore) ListGoals(context.Context, string, model.GoalStatus) ([]*model.Goal, error) {
	return []*model.Goal{f.goal}, nil
}

func (f *fakeGoalStore) UpdateGoal(context.Context, *model.Goal) error { return nil }

func (f *fakeGoalStore) DeleteGoal(context.Context, string, string) error { return nil }

// AddGoalContribution mirrors the repository's locking update.
func (f *fakeGoalStore) AddGoalContribution(_ context.Context, c *model.GoalContribution) (*model.Goal, bool, error) {
	g, err := f.GetGoal(context.Background(), c.UserID, c.GoalID)
	if err != nil {
		return nil, false, err
	}
	if g.Status != model.GoalActive {
		return nil, false, repository.ErrNotActive
	}
	g.CurrentAmount = g.CurrentAmount.Add(c.Amount)
	completed := false
	if g.IsReached() {
		g.Status = model.GoalCompleted
		completed = true
	}
	return g, completed, nil
}

func (f *fakeGoalStore) ListGoalContributions(context.Context, string, string) ([]*model.GoalContribution, error) {
	return []*model.GoalContribution{}, nil
}

func (f *fakeGoalStore) CreateAlert(_ context.Context, a *model.Alert) error {
	f.alerts = append(f.alerts, a)
	return nil
}

func TestGoalContributions(t *testing.T) {
	store := &fakeGoalStore{}
	events := &recordingPublisher{}
	svc := NewGoalService(store, events, nil, testLogger())
	ctx := context.Background()

	target := decimal.RequireFromString("1000")
	g, err := svc.Create(ctx, "user-1", GoalInput{Name: strPtr("Emergency fund"), TargetAmount: &target})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if g.Status != model.GoalActive {
		t.Fatalf("status = %s, want active", g.Status)
	}

	if _, err := svc.AddContribution(ctx, "user-1", g.ID, ContributionInput{Amount: decimal.RequireFromString("600")}); err != nil {
		t.Fatalf("AddContribution() error = %v", err)
	}
	if len(store.alerts) != 0 {
		t.Fatalf("goal not reached yet, got %d alerts", len(store.alerts))
	}

	g, err = svc.AddContribution(ctx, "user-1", g.ID, ContributionInput{Amount: decimal.RequireFromString("400")})
	if err != nil {
		t.Fatalf("AddContribution() error = %v", err)
	}
	if g.Status != model.GoalCompleted {
		t.Fatalf("status = %s, want completed", g.Status)
	}
	if len(store.alerts) != 1 || store.alerts[0].Type != model.AlertGoalReached {
		t.Fatalf("expected goal_reached alert, got %+v", store.alerts)
	}
	if events.count(model.EventGoalContribution) != 2 || events.count(model.EventGoalCompleted) != 1 || events.count(model.EventGoalCreated) != 1 {
		t.Fatalf("unexpected events %v", events.events)
	}

	_, err = svc.AddContribution(ctx, "user-1", g.ID, ContributionInput{Amount: decimal.RequireFromString("1")})
	if !errors.Is(err, ErrGoalNotActive) {
		t.Fatalf("expected ErrGoalNotActive, got %v", err)
	}

	_, err = svc.AddContribution(ctx, "user-1", g.ID, ContributionInput{Amount: decimal.Zero})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}

	_, err = svc.AddContribution(ctx, "user-2", g.ID, ContributionInput{Amount: decimal.RequireFromString("1")})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
}

func TestGoalMonthlyNeeded(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	deadline := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	g := &model.Goal{
		TargetAmount:  decimal.RequireFromString("1200"),
		CurrentAmount: decimal.RequireFromString("600"),
		Deadline:      &deadline,
	}
	got := g.MonthlyNeeded(now)
	if got == nil || !got.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("MonthlyNeeded() = %v, want 100", got)
	}
}
