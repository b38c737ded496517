package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/repository"
	"github.com/organizai/organizai/internal/sanitize"
)

const (
	defaultUserPageSize = 50
	maxUserPageSize     = 200
	maxBanReasonLength  = 500
)

// AdminStore is the storage AdminService needs.
type AdminStore interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context, search string, limit, offset int) ([]*model.User, error)
	SetUserRoleByEmail(ctx context.Context, email, role string) error
	CreateBan(ctx context.Context, b *model.Ban) error
	ListActiveBans(ctx context.Context, now time.Time) ([]*model.Ban, error)
	DeleteBans(ctx context.Context, userID string) error
}

// AdminService implements the moderation operations.
type AdminService struct {
	store  AdminStore
	bans   BanCache
	logger *slog.Logger
}

// NewAdminService creates a new AdminService. bans may be nil.
func NewAdminService(store AdminStore, bans BanCache, logger *slog.Logger) *AdminService {
	return &AdminService{store: store, bans: bans, logger: logger}
}

// BanInput defines a ban.
type BanInput struct {
	UserID    string
	Reason    string
	ExpiresAt *time.Time
}

// ListUsers returns users, optionally filtered by email or name.
func (s *AdminService) ListUsers(ctx context.Context, search string, limit, offset int) ([]*model.User, error) {
	if limit <= 0 || limit > maxUserPageSize {
		limit = defaultUserPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListUsers(ctx, sanitize.Line(search, maxNameLength), limit, offset)
}

// Ban blocks a user. Admins cannot ban themselves or other admins.
func (s *AdminService) Ban(ctx context.Context, adminID string, input BanInput) (*model.Ban, error) {
	if input.UserID == "" {
		return nil, invalid("user_id", "is required")
	}
	if input.UserID == adminID {
		return nil, ErrCannotBanSelf
	}
	reason := sanitize.Line(input.Reason, maxBanReasonLength)
	if reason == "" {
		return nil, invalid("reason", "is required")
	}
	ts := now()
	if input.ExpiresAt != nil && !input.ExpiresAt.After(ts) {
		return nil, invalid("expires_at", "must be in the future")
	}

	target, err := s.store.GetUserByID(ctx, input.UserID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if target.IsAdmin() {
		return nil, ErrCannotBanAdmin
	}

	ban := &model.Ban{
		ID:        generateULID(),
		UserID:    target.ID,
		Reason:    reason,
		BannedBy:  adminID,
		ExpiresAt: input.ExpiresAt,
		CreatedAt: ts,
	}
	if err := s.store.CreateBan(ctx, ban); err != nil {
		return nil, mapRepoErr(err)
	}
	s.dropCachedBan(ctx, target.ID)

	s.logger.Info("user banned", "user_id", target.ID, "banned_by", adminID)
	return ban, nil
}

// Unban lifts every ban on a user.
func (s *AdminService) Unban(ctx context.Context, adminID, userID string) error {
	if err := s.store.DeleteBans(ctx, userID); err != nil {
		return mapRepoErr(err)
	}
	s.dropCachedBan(ctx, userID)

	s.logger.Info("user unbanned", "user_id", userID, "unbanned_by", adminID)
	return nil
}

// ListBans returns the bans currently in force.
func (s *AdminService) ListBans(ctx context.Context) ([]*model.Ban, error) {
	return s.store.ListActiveBans(ctx, now())
}

// PromoteUser grants the admin role to the user with email.
func (s *AdminService) PromoteUser(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return invalid("email", "is required")
	}
	if err := s.store.SetUserRoleByEmail(ctx, email, model.RoleAdmin); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.logger.Info("user promoted to admin", "email", email)
	return nil
}

func (s *AdminService) dropCachedBan(ctx context.Context, userID string) {
	if s.bans == nil {
		return
	}
	if err := s.bans.DeleteBan(ctx, userID); err != nil {
		s.logger.Warn("ban cache invalidation failed", "user_id", userID, "error", err)
	}
}
