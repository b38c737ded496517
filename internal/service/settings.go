package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/organizai/organizai/internal/auth"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/repository"
)

const (
	maxAPIKeyLength = 256
	maxModelLength  = 100
)

// SettingsStore is the storage SettingsService needs.
type SettingsStore interface {
	UpsertAPISetting(ctx context.Context, s *model.APISetting) error
	GetAPISetting(ctx context.Context, userID, provider string) (*model.APISetting, error)
	ListAPISettings(ctx context.Context, userID string) ([]*model.APISetting, error)
	DeleteAPISetting(ctx context.Context, userID, provider string) error
}

// SettingsService stores users' own provider keys encrypted.
type SettingsService struct {
	store  SettingsStore
	sealer *auth.Sealer
	logger *slog.Logger
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(store SettingsStore, sealer *auth.Sealer, logger *slog.Logger) *SettingsService {
	return &SettingsService{store: store, sealer: sealer, logger: logger}
}

// SettingView is a stored key as shown to its owner.
type SettingView struct {
	Provider  string    `json:"provider"`
	MaskedKey string    `json:"masked_key"`
	Model     string    `json:"model,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// List returns the user's keys, masked.
func (s *SettingsService) List(ctx context.Context, userID string) ([]SettingView, error) {
	settings, err := s.store.ListAPISettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]SettingView, 0, len(settings))
	for _, setting := range settings {
		views = append(views, s.view(setting))
	}
	return views, nil
}

// Upsert stores a key for provider, replacing any previous one.
func (s *SettingsService) Upsert(ctx context.Context, userID, provider, key, modelName string) (*SettingView, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !slices.Contains(model.ValidProviders, provider) {
		return nil, invalid("provider", "must be groq or tavily")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, invalid("api_key", "is required")
	}
	if len(key) > maxAPIKeyLength {
		return nil, invalid("api_key", "is too long")
	}
	modelName = strings.TrimSpace(modelName)
	if len(modelName) > maxModelLength {
		return nil, invalid("model", "is too long")
	}

	sealed, err := s.sealer.Seal(key)
	if err != nil {
		return nil, err
	}
	setting := &model.APISetting{
		UserID:       userID,
		Provider:     provider,
		EncryptedKey: sealed,
		Model:        modelName,
		UpdatedAt:    now(),
	}
	if err := s.store.UpsertAPISetting(ctx, setting); err != nil {
		return nil, err
	}
	view := SettingView{
		Provider:  provider,
		MaskedKey: auth.Mask(key),
		Model:     modelName,
		UpdatedAt: setting.UpdatedAt,
	}
	return &view, nil
}

// Delete removes the key for provider.
func (s *SettingsService) Delete(ctx context.Context, userID, provider string) error {
	return mapRepoErr(s.store.DeleteAPISetting(ctx, userID, strings.ToLower(provider)))
}

// ResolveKey returns the user's own key and model for provider. Both are
// empty when the user has none, and the caller uses the server key.
func (s *SettingsService) ResolveKey(ctx context.Context, userID, provider string) (key, modelName string, err error) {
	setting, err := s.store.GetAPISetting(ctx, userID, provider)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", nil
		}
		return "", "", err
	}
	key, err = s.sealer.Open(setting.EncryptedKey)
	if err != nil {
		s.logger.Warn("stored provider key cannot be decrypted", "user_id", userID, "provider", provider)
		return "", "", nil
	}
	return key, setting.Model, nil
}

func (s *SettingsService) view(setting *model.APISetting) SettingView {
	masked := "****"
	if key, err := s.sealer.Open(setting.EncryptedKey); err == nil {
		masked = auth.Mask(key)
	}
	return SettingView{
		Provider:  setting.Provider,
		MaskedKey: masked,
		Model:     setting.Model,
		UpdatedAt: setting.UpdatedAt,
	}
}
