package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/organizai/organizai/internal/gamification"
	"github.com/organizai/organizai/internal/model"
)

const (
	dashboardTopCategories = 5
	dashboardRecent        = 5
)

// DashboardStore is the storage DashboardService needs.
type DashboardStore interface {
	TotalBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	TotalDebt(ctx context.Context, userID string) (decimal.Decimal, error)
	ListInvestments(ctx context.Context, userID string) ([]*model.Investment, error)
	FlowTotals(ctx context.Context, userID string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error)
	SpendingByCategory(ctx context.Context, userID string, from, to time.Time, limit int) ([]model.CategorySpend, error)
	ListRecentTransactions(ctx context.Context, userID string, limit int) ([]*model.Transaction, error)
	ListGoals(ctx context.Context, userID string, status model.GoalStatus) ([]*model.Goal, error)
	CountUnreadAlerts(ctx context.Context, userID string) (int64, error)
	GetGamificationStats(ctx context.Context, userID string) (*model.GamificationStats, error)
}

// BudgetStatuser evaluates a user's budgets.
type BudgetStatuser interface {
	Status(ctx context.Context, userID string) ([]*model.BudgetStatus, error)
}

// DashboardCache stores rendered dashboards.
type DashboardCache interface {
	GetDashboard(ctx context.Context, userID string, dest any) (bool, error)
	SetDashboard(ctx context.Context, userID string, v any) error
}

// DashboardService builds the monthly overview.
type DashboardService struct {
	store   DashboardStore
	budgets BudgetStatuser
	cache   DashboardCache
	logger  *slog.Logger
}

// NewDashboardService creates a new DashboardService. cache may be nil.
func NewDashboardService(store DashboardStore, budgets BudgetStatuser, cache DashboardCache, logger *slog.Logger) *DashboardService {
	return &DashboardService{store: store, budgets: budgets, cache: cache, logger: logger}
}

// GoalProgress is an active goal on the dashboard.
type GoalProgress struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	TargetAmount  decimal.Decimal  `json:"target_amount"`
	CurrentAmount decimal.Decimal  `json:"current_amount"`
	Progress      float64          `json:"progress"`
	Deadline      *time.Time       `json:"deadline,omitempty"`
	MonthlyNeeded *decimal.Decimal `json:"monthly_needed,omitempty"`
}

// Dashboard is the overview of the current month.
type Dashboard struct {
	Month              string                `json:"month"`
	TotalBalance       decimal.Decimal       `json:"total_balance"`
	InvestmentsValue   decimal.Decimal       `json:"investments_value"`
	DebtsBalance       decimal.Decimal       `json:"debts_balance"`
	NetWorth           decimal.Decimal       `json:"net_worth"`
	MonthIncome        decimal.Decimal       `json:"month_income"`
	MonthExpenses      decimal.Decimal       `json:"month_expenses"`
	SavingsRate        float64               `json:"savings_rate"`
	SpendingByCategory []model.CategorySpend `json:"spending_by_category"`
	RecentTransactions []*model.Transaction  `json:"recent_transactions"`
	Budgets            []*model.BudgetStatus `json:"budgets"`
	Goals              []GoalProgress        `json:"goals"`
	UnreadAlerts       int64                 `json:"unread_alerts"`
	Gamification       gamification.Progress `json:"gamification"`
	GeneratedAt        time.Time             `json:"generated_at"`
}

// Get returns the user's dashboard, from cache when fresh.
func (s *DashboardService) Get(ctx context.Context, userID string) (*Dashboard, error) {
	if s.cache != nil {
		var cached Dashboard
		found, err := s.cache.GetDashboard(ctx, userID, &cached)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", "user_id", userID, "error", err)
		} else if found {
			return &cached, nil
		}
	}

	d, err := s.build(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetDashboard(ctx, userID, d); err != nil {
			s.logger.Warn("dashboard cache write failed", "user_id", userID, "error", err)
		}
	}
	return d, nil
}

func (s *DashboardService) build(ctx context.Context, userID string) (*Dashboard, error) {
	ts := now()
	from, to := model.PeriodMonthly.Window(ts)
	d := &Dashboard{
		Month:       from.Format("2006-01"),
		GeneratedAt: ts,
	}

	var (
		investments []*model.Investment
		goals       []*model.Goal
		stats       *model.GamificationStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.TotalBalance, err = s.store.TotalBalance(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.DebtsBalance, err = s.store.TotalDebt(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		investments, err = s.store.ListInvestments(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.MonthIncome, d.MonthExpenses, err = s.store.FlowTotals(gctx, userID, from, to)
		return err
	})
	g.Go(func() (err error) {
		d.SpendingByCategory, err = s.store.SpendingByCategory(gctx, userID, from, to, dashboardTopCategories)
		return err
	})
	g.Go(func() (err error) {
		d.RecentTransactions, err = s.store.ListRecentTransactions(gctx, userID, dashboardRecent)
		return err
	})
	g.Go(func() (err error) {
		d.Budgets, err = s.budgets.Status(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		goals, err = s.store.ListGoals(gctx, userID, model.GoalActive)
		return err
	})
	g.Go(func() (err error) {
		d.UnreadAlerts, err = s.store.CountUnreadAlerts(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		stats, err = s.store.GetGamificationStats(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, mapRepoErr(err)
	}

	for _, inv := range investments {
		d.InvestmentsValue = d.InvestmentsValue.Add(inv.MarketValue())
	}
	d.NetWorth = d.TotalBalance.Add(d.InvestmentsValue).Sub(d.DebtsBalance)
	d.SavingsRate = savingsRate(d.MonthIncome, d.MonthExpenses)

	d.Goals = make([]GoalProgress, 0, len(goals))
	for _, goal := range goals {
		d.Goals = append(d.Goals, GoalProgress{
			ID:            goal.ID,
			Name:          goal.Name,
			TargetAmount:  goal.TargetAmount,
			CurrentAmount: goal.CurrentAmount,
			Progress:      goal.Progress(),
			Deadline:      goal.Deadline,
			MonthlyNeeded: goal.MonthlyNeeded(ts),
		})
	}
	d.Gamification = gamification.ProgressFor(stats.XP)
	return d, nil
}

// savingsRate is the share of income not spent, in percent. Zero without
// income.
func savingsRate(income, expenses decimal.Decimal) float64 {
	if income.Sign() <= 0 {
		return 0
	}
	return percentOf(income.Sub(expenses), income)
}
