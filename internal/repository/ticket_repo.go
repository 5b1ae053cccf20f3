// Package repository provides data access for tickets and comments.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/S-FX-com/Enque-Backend/internal/model"
)

// TicketRepository provides data access for tickets.
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository creates a new TicketRepository.
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Create inserts a new ticket into the database.
func (r *TicketRepository) Create(ctx context.Context, ticket *model.Ticket) error {
	query := `
		INSERT INTO tickets (id, workspace_id, title, description, status, priority, assignee_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		ticket.ID,
		ticket.WorkspaceID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		nullable(ticket.AssigneeID),
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	return nil
}

// GetByID retrieves a ticket by its ID, scoped to a workspace.
func (r *TicketRepository) GetByID(ctx context.Context, workspaceID, id string) (*model.Ticket, error) {
	query := `
		SELECT id, workspace_id, title, description, status, priority, assignee_id, created_at, updated_at
		FROM tickets
		WHERE id = ? AND workspace_id = ?
	`

	ticket := &model.Ticket{}
	var assigneeID sql.NullString

	err := r.db.QueryRowContext(ctx, query, id, workspaceID).Scan(
		&ticket.ID,
		&ticket.WorkspaceID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&assigneeID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, model.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	if assigneeID.Valid {
		ticket.AssigneeID = assigneeID.String
	}

	return ticket, nil
}

// List retrieves all tickets for a workspace, newest first.
func (r *TicketRepository) List(ctx context.Context, workspaceID string) ([]*model.Ticket, error) {
	query := `
		SELECT id, workspace_id, title, description, status, priority, assignee_id, created_at, updated_at
		FROM tickets
		WHERE workspace_id = ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*model.Ticket
	for rows.Next() {
		ticket := &model.Ticket{}
		var assigneeID sql.NullString

		err := rows.Scan(
			&ticket.ID,
			&ticket.WorkspaceID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&assigneeID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}

		if assigneeID.Valid {
			ticket.AssigneeID = assigneeID.String
		}

		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// Update persists the mutable ticket fields.
func (r *TicketRepository) Update(ctx context.Context, ticket *model.Ticket) error {
	query := `
		UPDATE tickets
		SET title = ?, description = ?, status = ?, priority = ?, assignee_id = ?, updated_at = ?
		WHERE id = ? AND workspace_id = ?
	`

	ticket.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		nullable(ticket.AssigneeID),
		ticket.UpdatedAt,
		ticket.ID,
		ticket.WorkspaceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrTicketNotFound
	}

	return nil
}

// Delete removes a ticket and, via the schema cascade, its comments.
func (r *TicketRepository) Delete(ctx context.Context, workspaceID, id string) error {
	query := `DELETE FROM tickets WHERE id = ? AND workspace_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to delete ticket: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return model.ErrTicketNotFound
	}

	return nil
}

// nullable converts an empty string to a SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
