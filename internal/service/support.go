package service

import (
	"context"

	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/sanitize"
)

const (
	maxSubjectLength  = 200
	maxMessageLength  = 5000
	maxResponseLength = 5000
)

// SupportStore is the storage SupportService needs.
type SupportStore interface {
	CreateTicket(ctx context.Context, t *model.SupportTicket) error
	GetTicket(ctx context.Context, userID, id string) (*model.SupportTicket, error)
	ListTickets(ctx context.Context, userID string, status model.TicketStatus) ([]*model.SupportTicket, error)
	RespondTicket(ctx context.Context, id, response string, status model.TicketStatus) (*model.SupportTicket, error)
}

// SupportService handles support tickets.
type SupportService struct {
	store SupportStore
}

// NewSupportService creates a new SupportService.
func NewSupportService(store SupportStore) *SupportService {
	return &SupportService{store: store}
}

// TicketInput defines a new ticket.
type TicketInput struct {
	Subject  string
	Message  string
	Priority model.TicketPriority
}

// Create opens a ticket.
func (s *SupportService) Create(ctx context.Context, userID string, input TicketInput) (*model.SupportTicket, error) {
	subject := sanitize.Line(input.Subject, maxSubjectLength)
	if subject == "" {
		return nil, invalid("subject", "is required")
	}
	message := sanitize.Text(input.Message, maxMessageLength)
	if message == "" {
		return nil, invalid("message", "is required")
	}
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityNormal
	}
	if !priority.IsValid() {
		return nil, invalid("priority", "must be low, normal or high")
	}

	ts := now()
	t := &model.SupportTicket{
		ID:        generateULID(),
		UserID:    userID,
		Subject:   subject,
		Message:   message,
		Status:    model.TicketOpen,
		Priority:  priority,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if err := s.store.CreateTicket(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListMine returns the user's tickets.
func (s *SupportService) ListMine(ctx context.Context, userID string) ([]*model.SupportTicket, error) {
	return s.store.ListTickets(ctx, userID, "")
}

// Get returns one of the user's tickets.
func (s *SupportService) Get(ctx context.Context, userID, id string) (*model.SupportTicket, error) {
	t, err := s.store.GetTicket(ctx, userID, id)
	return t, mapRepoErr(err)
}

// ListAll returns every ticket, optionally with one status. Admin only.
func (s *SupportService) ListAll(ctx context.Context, status model.TicketStatus) ([]*model.SupportTicket, error) {
	if status != "" && !status.IsValid() {
		return nil, invalid("status", "is not a valid ticket status")
	}
	return s.store.ListTickets(ctx, "", status)
}

// Respond answers a ticket and sets its status. Admin only.
func (s *SupportService) Respond(ctx context.Context, id, response string, status model.TicketStatus) (*model.SupportTicket, error) {
	response = sanitize.Text(response, maxResponseLength)
	if response == "" {
		return nil, invalid("response", "is required")
	}
	if status == "" {
		status = model.TicketInProgress
	}
	if !status.IsValid() {
		return nil, invalid("status", "is not a valid ticket status")
	}
	t, err := s.store.RespondTicket(ctx, id, response, status)
	return t, mapRepoErr(err)
}
