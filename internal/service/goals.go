package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/repository"
	"github.com/organizai/organizai/internal/sanitize"
)

// GoalStore is the storage GoalService needs.
type GoalStore interface {
	CreateGoal(ctx context.Context, g *model.Goal) error
	GetGoal(ctx context.Context, userID, id string) (*model.Goal, error)
	ListGoals(ctx context.Context, userID string, status model.GoalStatus) ([]*model.Goal, error)
	UpdateGoal(ctx context.Context, g *model.Goal) error
	DeleteGoal(ctx context.Context, userID, id string) error
	AddGoalContribution(ctx context.Context, c *model.GoalContribution) (*model.Goal, bool, error)
	ListGoalContributions(ctx context.Context, userID, goalID string) ([]*model.GoalContribution, error)
	CreateAlert(ctx context.Context, a *model.Alert) error
}

// GoalService handles savings goal business logic.
type GoalService struct {
	store      GoalStore
	events     EventPublisher
	invalidate DashboardInvalidator
	logger     *slog.Logger
}

// NewGoalService creates a new GoalService.
func NewGoalService(store GoalStore, events EventPublisher, invalidate DashboardInvalidator, logger *slog.Logger) *GoalService {
	if events == nil {
		events = noopPublisher{}
	}
	if invalidate == nil {
		invalidate = noopInvalidator{}
	}
	return &GoalService{store: store, events: events, invalidate: invalidate, logger: logger}
}

// GoalInput defines the fields of a goal.
type GoalInput struct {
	Name          *string
	TargetAmount  *decimal.Decimal
	CurrentAmount *decimal.Decimal
	Deadline      *time.Time
	ClearDeadline bool
	Category      *string
	Status        *model.GoalStatus
}

// ContributionInput defines a contribution to a goal.
type ContributionInput struct {
	Amount decimal.Decimal
	Date   *time.Time
	Note   string
}

// List returns the user's goals, optionally with one status.
func (s *GoalService) List(ctx context.Context, userID string, status model.GoalStatus) ([]*model.Goal, error) {
	if status != "" && !status.IsValid() {
		return nil, invalid("status", "is not a valid goal status")
	}
	return s.store.ListGoals(ctx, userID, status)
}

// Get returns one goal.
func (s *GoalService) Get(ctx context.Context, userID, id string) (*model.Goal, error) {
	g, err := s.store.GetGoal(ctx, userID, id)
	return g, mapRepoErr(err)
}

// Create adds a goal. A goal created already funded starts completed.
func (s *GoalService) Create(ctx context.Context, userID string, input GoalInput) (*model.Goal, error) {
	if input.Name == nil {
		return nil, invalid("name", "is required")
	}
	if input.TargetAmount == nil {
		return nil, invalid("target_amount", "is required")
	}
	ts := now()
	g := &model.Goal{
		ID:        generateULID(),
		UserID:    userID,
		Status:    model.GoalActive,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := applyGoalInput(g, input); err != nil {
		return nil, err
	}
	if g.Status == model.GoalActive && g.IsReached() {
		g.Status = model.GoalCompleted
	}

	if err := s.store.CreateGoal(ctx, g); err != nil {
		return nil, err
	}
	s.events.PublishAsync(userID, model.EventGoalCreated)
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return g, nil
}

// Update changes a goal.
func (s *GoalService) Update(ctx context.Context, userID, id string, input GoalInput) (*model.Goal, error) {
	g, err := s.store.GetGoal(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := applyGoalInput(g, input); err != nil {
		return nil, err
	}
	g.UpdatedAt = now()

	if err := s.store.UpdateGoal(ctx, g); err != nil {
		return nil, mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return g, nil
}

// Delete removes a goal and its contributions.
func (s *GoalService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteGoal(ctx, userID, id); err != nil {
		return mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return nil
}

// AddContribution puts money towards an active goal. The contribution that
// reaches the target completes the goal and raises a goal_reached alert.
func (s *GoalService) AddContribution(ctx context.Context, userID, goalID string, input ContributionInput) (*model.Goal, error) {
	amount, err := requirePositive("amount", input.Amount)
	if err != nil {
		return nil, err
	}
	ts := now()
	c := &model.GoalContribution{
		ID:        generateULID(),
		GoalID:    goalID,
		UserID:    userID,
		Amount:    amount,
		Date:      dateOnly(ts),
		Note:      sanitize.Line(input.Note, maxDescriptionLength),
		CreatedAt: ts,
	}
	if input.Date != nil {
		c.Date = dateOnly(*input.Date)
	}

	g, completed, err := s.store.AddGoalContribution(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrNotActive) {
			return nil, ErrGoalNotActive
		}
		return nil, mapRepoErr(err)
	}

	s.events.PublishAsync(userID, model.EventGoalContribution)
	if completed {
		s.events.PublishAsync(userID, model.EventGoalCompleted)
		s.goalReached(ctx, g)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return g, nil
}

// ListContributions returns a goal's contributions.
func (s *GoalService) ListContributions(ctx context.Context, userID, goalID string) ([]*model.GoalContribution, error) {
	if _, err := s.store.GetGoal(ctx, userID, goalID); err != nil {
		return nil, mapRepoErr(err)
	}
	return s.store.ListGoalContributions(ctx, userID, goalID)
}

func (s *GoalService) goalReached(ctx context.Context, g *model.Goal) {
	alert := &model.Alert{
		ID:        generateULID(),
		UserID:    g.UserID,
		Type:      model.AlertGoalReached,
		Title:     "Goal reached",
		Message:   fmt.Sprintf("Congratulations! You reached your goal %q of %s.", g.Name, g.TargetAmount.StringFixed(2)),
		CreatedAt: now(),
	}
	if err := s.store.CreateAlert(ctx, alert); err != nil && s.logger != nil {
		s.logger.Warn("failed to create goal alert", "goal_id", g.ID, "error", err)
	}
}

func applyGoalInput(g *model.Goal, input GoalInput) error {
	if input.Name != nil {
		name, err := requireName("name", sanitize.Line(*input.Name, maxNameLength))
		if err != nil {
			return err
		}
		g.Name = name
	}
	if input.TargetAmount != nil {
		target, err := requirePositive("target_amount", *input.TargetAmount)
		if err != nil {
			return err
		}
		g.TargetAmount = target
	}
	if input.CurrentAmount != nil {
		current, err := requireNonNegative("current_amount", *input.CurrentAmount)
		if err != nil {
			return err
		}
		g.CurrentAmount = current
	}
	switch {
	case input.ClearDeadline:
		g.Deadline = nil
	case input.Deadline != nil:
		d := dateOnly(*input.Deadline)
		g.Deadline = &d
	}
	if input.Category != nil {
		g.Category = sanitize.Line(*input.Category, maxNameLength)
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return invalid("status", "is not a valid goal status")
		}
		g.Status = *input.Status
	}
	return nil
}
