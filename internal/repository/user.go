package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/organizai/organizai/internal/model"
)

const userColumns = `id, email, name, password_hash, role, plan, COALESCE(stripe_customer_id, ''), xp, level, created_at, updated_at`

// CreateUser inserts a user together with their starter categories.
func (r *Repository) CreateUser(ctx context.Context, user *model.User, categories []*model.Category) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email, name, password_hash, role, plan, xp, level, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`,
			user.ID,
			user.Email,
			user.Name,
			user.PasswordHash,
			user.Role,
			user.Plan,
			user.XP,
			user.Level,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrEmailExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}

		for _, c := range categories {
			if err := insertCategory(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// UpdateUserName changes the display name.
func (r *Repository) UpdateUserName(ctx context.Context, id, name string) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `
		UPDATE users SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, id, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// UpdatePasswordHash replaces a user's stored password hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	result, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserRoleByEmail grants or revokes a role.
func (r *Repository) SetUserRoleByEmail(ctx context.Context, email, role string) error {
	result, err := r.pool.Exec(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE email = $1`, email, role)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserPlan sets the plan for a user and records their Stripe customer.
func (r *Repository) SetUserPlan(ctx context.Context, userID, plan, customerID string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users
		SET plan = $2, stripe_customer_id = COALESCE(NULLIF($3, ''), stripe_customer_id), updated_at = NOW()
		WHERE id = $1
	`, userID, plan, customerID)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPlanByCustomer sets the plan of whichever user owns the Stripe customer.
func (r *Repository) SetPlanByCustomer(ctx context.Context, customerID, plan string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET plan = $2, updated_at = NOW()
		WHERE stripe_customer_id = $1
	`, customerID, plan)
	if err != nil {
		return fmt.Errorf("failed to update plan by customer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsers returns users ordered by signup, newest first, optionally
// filtered by an email or name substring.
func (r *Repository) ListUsers(ctx context.Context, search string, limit, offset int) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if search = strings.TrimSpace(search); search != "" {
		query += ` WHERE email ILIKE $1 OR name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	return r.queryUsers(ctx, query, args...)
}

// ListUsersByIDs loads the given users keyed by ID.
func (r *Repository) ListUsersByIDs(ctx context.Context, ids []string) (map[string]*model.User, error) {
	users, err := r.queryUsers(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*model.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// ListTopUsersByXP returns the users with the most XP.
func (r *Repository) ListTopUsersByXP(ctx context.Context, limit int) ([]*model.User, error) {
	return r.queryUsers(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE xp > 0
		ORDER BY xp DESC, created_at ASC
		LIMIT $1
	`, limit)
}

func (r *Repository) queryUsers(ctx context.Context, query string, args ...any) ([]*model.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.Plan,
		&u.StripeCustomerID,
		&u.XP,
		&u.Level,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return &u, err
}
