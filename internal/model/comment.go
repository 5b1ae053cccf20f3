package model

import "time"

// Comment represents an agent comment on a ticket.
type Comment struct {
	ID          string    `json:"id"`
	TicketID    string    `json:"ticketId"`
	WorkspaceID string    `json:"workspaceId"`
	AgentID     string    `json:"agentId"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateCommentRequest represents a request to post a comment.
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// Validate validates the create comment request.
func (r *CreateCommentRequest) Validate() error {
	if r.Content == "" {
		return ErrContentRequired
	}
	return nil
}
