package service

import (
	"context"

	"github.com/organizai/organizai/internal/model"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 200
)

// AlertStore is the storage AlertService needs.
type AlertStore interface {
	ListAlerts(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*model.Alert, error)
	MarkAlertRead(ctx context.Context, userID, id string) error
	MarkAllAlertsRead(ctx context.Context, userID string) (int64, error)
	DeleteAlert(ctx context.Context, userID, id string) error
	CountUnreadAlerts(ctx context.Context, userID string) (int64, error)
}

// AlertService manages in-app notifications.
type AlertService struct {
	store      AlertStore
	invalidate DashboardInvalidator
}

// NewAlertService creates a new AlertService.
func NewAlertService(store AlertStore, invalidate DashboardInvalidator) *AlertService {
	if invalidate == nil {
		invalidate = noopInvalidator{}
	}
	return &AlertService{store: store, invalidate: invalidate}
}

// List returns the user's newest alerts.
func (s *AlertService) List(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*model.Alert, error) {
	if limit <= 0 || limit > maxAlertLimit {
		limit = defaultAlertLimit
	}
	return s.store.ListAlerts(ctx, userID, unreadOnly, limit)
}

// MarkRead marks one alert as read.
func (s *AlertService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.store.MarkAlertRead(ctx, userID, id); err != nil {
		return mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return nil
}

// MarkAllRead marks every alert as read and returns how many changed.
func (s *AlertService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.store.MarkAllAlertsRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return n, nil
}

// Delete removes an alert.
func (s *AlertService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteAlert(ctx, userID, id); err != nil {
		return mapRepoErr(err)
	}
	_ = s.invalidate.InvalidateDashboard(ctx, userID)
	return nil
}

// UnreadCount returns the number of unread alerts.
func (s *AlertService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.store.CountUnreadAlerts(ctx, userID)
}
