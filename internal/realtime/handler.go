package realtime

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking in production
		return true
	},
}

// Handler upgrades HTTP requests to WebSocket sessions and runs the
// per-connection read and write pumps.
type Handler struct {
	manager *Manager
	logger  zerolog.Logger
}

// NewHandler creates a new Handler.
func NewHandler(manager *Manager, logger zerolog.Logger) *Handler {
	return &Handler{
		manager: manager,
		logger:  logger,
	}
}

// HandleConnection validates identity, upgrades the connection, and
// registers the resulting session with the workspace's hub. Both
// workspace_id and agent_id must be supplied by the gateway; a request
// missing either is rejected before any session state exists.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request, workspaceID, agentID string) error {
	if workspaceID == "" || agentID == "" {
		http.Error(w, "workspace_id and agent_id are required", http.StatusBadRequest)
		return nil
	}
	if !websocket.IsWebSocketUpgrade(r) {
		http.Error(w, "websocket upgrade required", http.StatusUpgradeRequired)
		return nil
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	session := NewSession(uuid.NewString(), workspaceID, agentID, conn)

	// A hub can be reaped between lookup and registration; a second
	// lookup gets a fresh one.
	hub := h.manager.GetOrCreate(workspaceID)
	if !hub.Register(session) {
		hub = h.manager.GetOrCreate(workspaceID)
		if !hub.Register(session) {
			conn.Close()
			return nil
		}
	}

	go h.writePump(session)
	go h.readPump(session, hub)

	return nil
}

// readPump pumps frames from the connection into the hub. Frames from
// one session reach the hub in arrival order.
func (h *Handler) readPump(session *Session, hub *Hub) {
	defer func() {
		hub.Unregister(session)
		session.Conn().Close()
	}()

	session.Conn().SetReadLimit(maxMessageSize)
	session.Conn().SetReadDeadline(time.Now().Add(pongWait))
	session.Conn().SetPongHandler(func(string) error {
		session.Conn().SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := session.Conn().ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug().Err(err).Str("session_id", session.ID).Msg("websocket read error")
			}
			break
		}
		hub.Inbound(session, raw)
	}
}

// writePump pumps queued messages to the connection, one frame per
// message, and keeps the transport alive with protocol-level pings.
func (h *Handler) writePump(session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		session.Conn().Close()
	}()

	for {
		select {
		case data, ok := <-session.SendChan():
			session.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				session.Conn().WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := session.Conn().WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			session.Conn().SetWriteDeadline(time.Now().Add(writeWait))
			if err := session.Conn().WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
