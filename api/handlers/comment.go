package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/S-FX-com/Enque-Backend/internal/metrics"
	"github.com/S-FX-com/Enque-Backend/internal/model"
	"github.com/S-FX-com/Enque-Backend/internal/realtime"
	"github.com/S-FX-com/Enque-Backend/internal/repository"
)

// CommentHandler handles ticket comment requests.
type CommentHandler struct {
	comments *repository.CommentRepository
	tickets  *repository.TicketRepository
	notifier Notifier
	logger   zerolog.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(comments *repository.CommentRepository, tickets *repository.TicketRepository, notifier Notifier, logger zerolog.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		tickets:  tickets,
		notifier: notifier,
		logger:   logger,
	}
}

// Create handles POST /api/workspaces/:workspaceID/tickets/:ticketID/comments.
func (h *CommentHandler) Create(c *gin.Context) {
	workspaceID := c.Param("workspaceID")
	ticketID := c.Param("ticketID")

	var req model.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	// The ticket must exist in this workspace before anything is written.
	if _, err := h.tickets.GetByID(c.Request.Context(), workspaceID, ticketID); err != nil {
		if errors.Is(err, model.ErrTicketNotFound) {
			sendError(c, http.StatusNotFound, "TICKET_NOT_FOUND", "Ticket "+ticketID+" not found")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get ticket: "+err.Error())
		return
	}

	now := time.Now().UTC()
	comment := &model.Comment{
		ID:          ulid.Make().String(),
		TicketID:    ticketID,
		WorkspaceID: workspaceID,
		AgentID:     getAgentID(c),
		Content:     req.Content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.comments.Create(c.Request.Context(), comment); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create comment: "+err.Error())
		return
	}

	metrics.CommentsPosted.Inc()

	payload, err := json.Marshal(comment)
	if err != nil {
		h.logger.Error().Err(err).Str("comment_id", comment.ID).Msg("failed to marshal comment event")
	} else {
		h.notifier.Notify(workspaceID, &realtime.Message{
			Type:    realtime.MessageTypeCommentUpdated,
			Payload: payload,
		})
	}

	c.JSON(http.StatusCreated, comment)
}

// List handles GET /api/workspaces/:workspaceID/tickets/:ticketID/comments.
func (h *CommentHandler) List(c *gin.Context) {
	workspaceID := c.Param("workspaceID")
	ticketID := c.Param("ticketID")

	comments, err := h.comments.ListByTicket(c.Request.Context(), workspaceID, ticketID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list comments: "+err.Error())
		return
	}
	if comments == nil {
		comments = []*model.Comment{}
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// RegisterRoutes registers the comment handler routes on a Gin router group.
func (h *CommentHandler) RegisterRoutes(read, write *gin.RouterGroup) {
	read.GET("/workspaces/:workspaceID/tickets/:ticketID/comments", h.List)
	write.POST("/workspaces/:workspaceID/tickets/:ticketID/comments", h.Create)
}
