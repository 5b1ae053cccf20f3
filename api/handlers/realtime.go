package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/S-FX-com/Enque-Backend/internal/realtime"
)

// RealtimeHandler handles WebSocket attach requests for agent sessions.
type RealtimeHandler struct {
	rt *realtime.Handler
}

// NewRealtimeHandler creates a new RealtimeHandler.
func NewRealtimeHandler(rt *realtime.Handler) *RealtimeHandler {
	return &RealtimeHandler{rt: rt}
}

// Attach handles GET /api/ws - attaches an agent to their workspace's
// event stream. Identity parameters are supplied by the gateway as
// query parameters; validation and upgrade rejection happen inside the
// realtime handler, before any session state exists.
func (h *RealtimeHandler) Attach(c *gin.Context) {
	workspaceID := c.Query("workspace_id")
	agentID := c.Query("agent_id")

	if err := h.rt.HandleConnection(c.Writer, c.Request, workspaceID, agentID); err != nil {
		// The upgrade failed mid-handshake; the response is already
		// written by the upgrader.
		return
	}
}

// RegisterRoutes registers the realtime handler routes on a Gin router group.
func (h *RealtimeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", h.Attach)
}
