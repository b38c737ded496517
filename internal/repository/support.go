package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/organizai/organizai/internal/model"
)

const ticketColumns = `id, user_id, subject, message, status, priority, admin_response, created_at, updated_at`

// CreateTicket inserts a support ticket.
func (r *Repository) CreateTicket(ctx context.Context, t *model.SupportTicket) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO support_tickets (id, user_id, subject, message, status, priority, admin_response, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.UserID, t.Subject, t.Message, t.Status, t.Priority, t.AdminResponse, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

// GetTicket returns a ticket. An empty userID skips the ownership check.
func (r *Repository) GetTicket(ctx context.Context, userID, id string) (*model.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE id = $1`
	args := []any{id}
	if userID != "" {
		query += ` AND user_id = $2`
		args = append(args, userID)
	}
	t, err := scanTicket(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return t, nil
}

// ListTickets returns tickets newest first. An empty userID lists every
// user's tickets; an empty status lists every status.
func (r *Repository) ListTickets(ctx context.Context, userID string, status model.TicketStatus) ([]*model.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE TRUE`
	args := []any{}
	if userID != "" {
		args = append(args, userID)
		query += fmt.Sprintf(` AND user_id = $%d`, len(args))
	}
	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	tickets := []*model.SupportTicket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}
	return tickets, nil
}

// RespondTicket stores an admin response and moves the ticket to status.
func (r *Repository) RespondTicket(ctx context.Context, id, response string, status model.TicketStatus) (*model.SupportTicket, error) {
	t, err := scanTicket(r.pool.QueryRow(ctx, `
		UPDATE support_tickets SET admin_response = $2, status = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+ticketColumns, id, response, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to respond to ticket: %w", err)
	}
	return t, nil
}

func scanTicket(row pgx.Row) (*model.SupportTicket, error) {
	var t model.SupportTicket
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Subject,
		&t.Message,
		&t.Status,
		&t.Priority,
		&t.AdminResponse,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return &t, err
}
