package model

import "time"

// TicketStatus represents the lifecycle of a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketClosed     TicketStatus = "closed"
)

// IsValid checks if the status is known.
func (s TicketStatus) IsValid() bool {
	return s == TicketOpen || s == TicketInProgress || s == TicketClosed
}

// TicketPriority ranks support tickets.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityNormal TicketPriority = "normal"
	PriorityHigh   TicketPriority = "high"
)

// IsValid checks if the priority is known.
func (p TicketPriority) IsValid() bool {
	return p == PriorityLow || p == PriorityNormal || p == PriorityHigh
}

// SupportTicket is a user request to the support team.
type SupportTicket struct {
	ID            string         `json:"id"`
	UserID        string         `json:"user_id"`
	Subject       string         `json:"subject"`
	Message       string         `json:"message"`
	Status        TicketStatus   `json:"status"`
	Priority      TicketPriority `json:"priority"`
	AdminResponse string         `json:"admin_response,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
