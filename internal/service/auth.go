package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/organizai/organizai/internal/auth"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/repository"
	"github.com/organizai/organizai/internal/sanitize"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	maxEmailLength    = 254
)

// dummyHash is verified against when the email is unknown so that both
// failure paths cost one argon2 evaluation.
var dummyHash = sync.OnceValue(func() string {
	h, _ := auth.HashPassword("organizai-dummy-password")
	return h
})

// UserStore is the storage AuthService needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User, categories []*model.Category) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUserName(ctx context.Context, id, name string) (*model.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	GetActiveBan(ctx context.Context, userID string, now time.Time) (*model.Ban, error)
}

// BanCache caches the ban state looked up on every authenticated request.
type BanCache interface {
	GetBan(ctx context.Context, userID string) (*model.Ban, bool, error)
	SetBan(ctx context.Context, userID string, ban *model.Ban) error
	DeleteBan(ctx context.Context, userID string) error
}

// AuthService handles registration, login and profiles.
type AuthService struct {
	users  UserStore
	bans   BanCache
	jwt    *auth.JWTManager
	logger *slog.Logger
}

// NewAuthService creates a new AuthService. bans may be nil.
func NewAuthService(users UserStore, bans BanCache, jwt *auth.JWTManager, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		bans:   bans,
		jwt:    jwt,
		logger: logger,
	}
}

// RegisterInput defines input for registration.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// AuthResult is a user together with a fresh session token.
type AuthResult struct {
	User      *model.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a user with the starter categories and signs them in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	name := sanitize.Line(input.Name, maxNameLength)
	if name == "" {
		name = email[:strings.IndexByte(email, '@')]
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	ts := now()
	user := &model.User{
		ID:           generateULID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Plan:         model.PlanFree,
		Level:        1,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	if err := s.users.CreateUser(ctx, user, starterCategories(user.ID, ts)); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return s.issue(user)
}

// Login checks credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_, _ = auth.VerifyPassword(password, dummyHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	if auth.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, user.ID, password)
	}

	ban, err := s.ActiveBan(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if ban != nil {
		return nil, &BanError{Reason: ban.Reason}
	}

	return s.issue(user)
}

// rehash upgrades a stored hash to the current parameters. Failure only
// delays the upgrade to the next login.
func (s *AuthService) rehash(ctx context.Context, userID, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.users.UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		s.logger.Warn("password rehash failed", "user_id", userID, "error", err)
		return
	}
	s.logger.Info("password rehashed", "user_id", userID)
}

// Me returns the current user's profile.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return user, nil
}

// UpdateProfile changes the display name.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, name string) (*model.User, error) {
	name = sanitize.Line(name, maxNameLength)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	user, err := s.users.UpdateUserName(ctx, userID, name)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return user, nil
}

// ActiveBan returns the ban in force for a user, or nil. Results are cached
// briefly; cache failures fall back to the database.
func (s *AuthService) ActiveBan(ctx context.Context, userID string) (*model.Ban, error) {
	if s.bans != nil {
		ban, found, err := s.bans.GetBan(ctx, userID)
		if err != nil {
			s.logger.Warn("ban cache read failed", "user_id", userID, "error", err)
		} else if found {
			if ban != nil && !ban.IsActive(now()) {
				return nil, nil
			}
			return ban, nil
		}
	}

	ban, err := s.users.GetActiveBan(ctx, userID, now())
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("load ban: %w", err)
	}
	if errors.Is(err, repository.ErrNotFound) {
		ban = nil
	}

	if s.bans != nil {
		if err := s.bans.SetBan(ctx, userID, ban); err != nil {
			s.logger.Warn("ban cache write failed", "user_id", userID, "error", err)
		}
	}
	return ban, nil
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, expiresAt, err := s.jwt.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || len(email) > maxEmailLength {
		return "", invalid("email", "must be a valid email address")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.IndexByte(email, '@'):], ".") {
		return "", invalid("email", "must be a valid email address")
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		return invalid("password", "is too long")
	}
	return nil
}

func starterCategories(userID string, ts time.Time) []*model.Category {
	out := make([]*model.Category, 0, len(model.DefaultCategories))
	for _, d := range model.DefaultCategories {
		out = append(out, &model.Category{
			ID:        generateULID(),
			UserID:    userID,
			Name:      d.Name,
			Type:      d.Type,
			Color:     d.Color,
			Icon:      d.Icon,
			CreatedAt: ts,
		})
	}
	return out
}
