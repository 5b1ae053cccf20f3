package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/S-FX-com/Enque-Backend/internal/model"
)

// CommentRepository provides data access for ticket comments.
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create inserts a new comment into the database.
func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	query := `
		INSERT INTO comments (id, ticket_id, workspace_id, agent_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.TicketID,
		comment.WorkspaceID,
		comment.AgentID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	return nil
}

// ListByTicket retrieves all comments for a ticket, oldest first.
func (r *CommentRepository) ListByTicket(ctx context.Context, workspaceID, ticketID string) ([]*model.Comment, error) {
	query := `
		SELECT id, ticket_id, workspace_id, agent_id, content, created_at, updated_at
		FROM comments
		WHERE ticket_id = ? AND workspace_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, ticketID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*model.Comment
	for rows.Next() {
		comment := &model.Comment{}
		err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.WorkspaceID,
			&comment.AgentID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}
