package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/organizai/organizai/internal/model"
)

// UpsertAPISetting stores the user's key for a provider.
func (r *Repository) UpsertAPISetting(ctx context.Context, s *model.APISetting) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO api_settings (user_id, provider, encrypted_key, model, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			encrypted_key = EXCLUDED.encrypted_key,
			model = EXCLUDED.model,
			updated_at = EXCLUDED.updated_at
	`, s.UserID, s.Provider, s.EncryptedKey, s.Model, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save api setting: %w", err)
	}
	return nil
}

// GetAPISetting returns the user's setting for a provider.
func (r *Repository) GetAPISetting(ctx context.Context, userID, provider string) (*model.APISetting, error) {
	var s model.APISetting
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, provider, encrypted_key, model, updated_at
		FROM api_settings WHERE user_id = $1 AND provider = $2
	`, userID, provider).Scan(&s.UserID, &s.Provider, &s.EncryptedKey, &s.Model, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get api setting: %w", err)
	}
	return &s, nil
}

// ListAPISettings returns all of the user's provider settings.
func (r *Repository) ListAPISettings(ctx context.Context, userID string) ([]*model.APISetting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, provider, encrypted_key, model, updated_at
		FROM api_settings WHERE user_id = $1 ORDER BY provider
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list api settings: %w", err)
	}
	defer rows.Close()

	settings := []*model.APISetting{}
	for rows.Next() {
		var s model.APISetting
		if err := rows.Scan(&s.UserID, &s.Provider, &s.EncryptedKey, &s.Model, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan api setting: %w", err)
		}
		settings = append(settings, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating api settings: %w", err)
	}
	return settings, nil
}

// DeleteAPISetting removes the user's key for a provider.
func (r *Repository) DeleteAPISetting(ctx context.Context, userID, provider string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM api_settings WHERE user_id = $1 AND provider = $2`, userID, provider)
	if err != nil {
		return fmt.Errorf("failed to delete api setting: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
