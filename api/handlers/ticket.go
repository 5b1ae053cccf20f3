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

// Notifier pushes a domain event to every live session of a workspace.
type Notifier interface {
	Notify(workspaceID string, msg *realtime.Message)
}

// TicketHandler handles ticket CRUD requests and publishes the
// resulting events to the realtime layer.
type TicketHandler struct {
	tickets  *repository.TicketRepository
	notifier Notifier
	logger   zerolog.Logger
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(tickets *repository.TicketRepository, notifier Notifier, logger zerolog.Logger) *TicketHandler {
	return &TicketHandler{
		tickets:  tickets,
		notifier: notifier,
		logger:   logger,
	}
}

// Create handles POST /api/workspaces/:workspaceID/tickets.
func (h *TicketHandler) Create(c *gin.Context) {
	workspaceID := c.Param("workspaceID")

	var req model.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	now := time.Now().UTC()
	priority := req.Priority
	if priority == "" {
		priority = model.TicketPriorityMedium
	}

	ticket := &model.Ticket{
		ID:          ulid.Make().String(),
		WorkspaceID: workspaceID,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TicketStatusUnread,
		Priority:    priority,
		AssigneeID:  req.AssigneeID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.tickets.Create(c.Request.Context(), ticket); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create ticket: "+err.Error())
		return
	}

	metrics.TicketsCreated.Inc()
	h.notifyTicket(workspaceID, realtime.MessageTypeTicketCreated, ticket)
	c.JSON(http.StatusCreated, ticket)
}

// List handles GET /api/workspaces/:workspaceID/tickets.
func (h *TicketHandler) List(c *gin.Context) {
	workspaceID := c.Param("workspaceID")

	tickets, err := h.tickets.List(c.Request.Context(), workspaceID)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list tickets: "+err.Error())
		return
	}
	if tickets == nil {
		tickets = []*model.Ticket{}
	}

	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// Get handles GET /api/workspaces/:workspaceID/tickets/:ticketID.
func (h *TicketHandler) Get(c *gin.Context) {
	workspaceID := c.Param("workspaceID")
	ticketID := c.Param("ticketID")

	ticket, err := h.tickets.GetByID(c.Request.Context(), workspaceID, ticketID)
	if err != nil {
		if errors.Is(err, model.ErrTicketNotFound) {
			sendError(c, http.StatusNotFound, "TICKET_NOT_FOUND", "Ticket "+ticketID+" not found")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get ticket: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// Update handles PUT /api/workspaces/:workspaceID/tickets/:ticketID.
func (h *TicketHandler) Update(c *gin.Context) {
	workspaceID := c.Param("workspaceID")
	ticketID := c.Param("ticketID")

	var req model.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		sendError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	ticket, err := h.tickets.GetByID(c.Request.Context(), workspaceID, ticketID)
	if err != nil {
		if errors.Is(err, model.ErrTicketNotFound) {
			sendError(c, http.StatusNotFound, "TICKET_NOT_FOUND", "Ticket "+ticketID+" not found")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get ticket: "+err.Error())
		return
	}

	if req.Title != nil {
		ticket.Title = *req.Title
	}
	if req.Description != nil {
		ticket.Description = *req.Description
	}
	if req.Status != nil {
		ticket.Status = *req.Status
	}
	if req.Priority != nil {
		ticket.Priority = *req.Priority
	}
	if req.AssigneeID != nil {
		ticket.AssigneeID = *req.AssigneeID
	}

	if err := h.tickets.Update(c.Request.Context(), ticket); err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update ticket: "+err.Error())
		return
	}

	h.notifyTicket(workspaceID, realtime.MessageTypeTicketUpdated, ticket)
	c.JSON(http.StatusOK, ticket)
}

// Delete handles DELETE /api/workspaces/:workspaceID/tickets/:ticketID.
func (h *TicketHandler) Delete(c *gin.Context) {
	workspaceID := c.Param("workspaceID")
	ticketID := c.Param("ticketID")

	if err := h.tickets.Delete(c.Request.Context(), workspaceID, ticketID); err != nil {
		if errors.Is(err, model.ErrTicketNotFound) {
			sendError(c, http.StatusNotFound, "TICKET_NOT_FOUND", "Ticket "+ticketID+" not found")
			return
		}
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete ticket: "+err.Error())
		return
	}

	payload, _ := json.Marshal(gin.H{"ticketId": ticketID})
	h.notifier.Notify(workspaceID, &realtime.Message{
		Type:    realtime.MessageTypeTicketDeleted,
		Payload: payload,
	})

	c.Status(http.StatusNoContent)
}

// RegisterRoutes registers the ticket handler routes on a Gin router group.
func (h *TicketHandler) RegisterRoutes(read, write *gin.RouterGroup) {
	read.GET("/workspaces/:workspaceID/tickets", h.List)
	read.GET("/workspaces/:workspaceID/tickets/:ticketID", h.Get)
	write.POST("/workspaces/:workspaceID/tickets", h.Create)
	write.PUT("/workspaces/:workspaceID/tickets/:ticketID", h.Update)
	write.DELETE("/workspaces/:workspaceID/tickets/:ticketID", h.Delete)
}

// notifyTicket publishes a ticket event. Delivery is best-effort; a
// failure to serialize is logged and the request still succeeds.
func (h *TicketHandler) notifyTicket(workspaceID string, t realtime.MessageType, ticket *model.Ticket) {
	payload, err := json.Marshal(ticket)
	if err != nil {
		h.logger.Error().Err(err).Str("ticket_id", ticket.ID).Msg("failed to marshal ticket event")
		return
	}
	h.notifier.Notify(workspaceID, &realtime.Message{
		Type:    t,
		Payload: payload,
	})
}
