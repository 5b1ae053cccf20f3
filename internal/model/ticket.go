package model

import "time"

// TicketStatus represents the status of a support ticket.
type TicketStatus string

const (
	TicketStatusUnread TicketStatus = "Unread"
	TicketStatusOpen   TicketStatus = "Open"
	TicketStatusClosed TicketStatus = "Closed"
)

// TicketPriority represents the priority of a support ticket.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// Ticket represents a support ticket scoped to one workspace.
type Ticket struct {
	ID          string         `json:"id"`
	WorkspaceID string         `json:"workspaceId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      TicketStatus   `json:"status"`
	Priority    TicketPriority `json:"priority"`
	AssigneeID  string         `json:"assigneeId,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// CreateTicketRequest represents a request to create a new ticket.
type CreateTicketRequest struct {
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description"`
	Priority    TicketPriority `json:"priority"`
	AssigneeID  string         `json:"assigneeId"`
}

// Validate validates the create ticket request.
func (r *CreateTicketRequest) Validate() error {
	if r.Title == "" {
		return ErrTitleRequired
	}
	if r.Priority != "" && !validPriority(r.Priority) {
		return ErrInvalidPriority
	}
	return nil
}

// UpdateTicketRequest represents a partial ticket update.
type UpdateTicketRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Status      *TicketStatus   `json:"status"`
	Priority    *TicketPriority `json:"priority"`
	AssigneeID  *string         `json:"assigneeId"`
}

// Validate validates the update ticket request.
func (r *UpdateTicketRequest) Validate() error {
	if r.Status != nil && !validStatus(*r.Status) {
		return ErrInvalidStatus
	}
	if r.Priority != nil && !validPriority(*r.Priority) {
		return ErrInvalidPriority
	}
	return nil
}

func validStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusUnread, TicketStatusOpen, TicketStatusClosed:
		return true
	}
	return false
}

func validPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}
