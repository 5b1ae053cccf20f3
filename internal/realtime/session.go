package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// sendBufferSize is the per-session outbound queue depth. A session that
// falls this far behind is evicted on the next delivery attempt.
const sendBufferSize = 256

// Session represents one live agent connection. The identity fields are
// bound at upgrade time and immutable for the session's lifetime.
type Session struct {
	ID          string
	WorkspaceID string
	AgentID     string

	conn   *websocket.Conn
	send   chan []byte
	mu     sync.Mutex
	closed bool
}

// NewSession creates a session for an upgraded connection.
func NewSession(id, workspaceID, agentID string, conn *websocket.Conn) *Session {
	return &Session{
		ID:          id,
		WorkspaceID: workspaceID,
		AgentID:     agentID,
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
	}
}

// TrySend queues data for the write pump without blocking. It reports
// false when the session is closed or its queue is full; the caller
// treats that as an implicit disconnect.
func (s *Session) TrySend(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

// Close closes the session's outbound queue. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

// IsClosed returns true if the session has been closed.
func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Conn returns the underlying WebSocket connection. It is nil for
// sessions constructed without a transport (tests).
func (s *Session) Conn() *websocket.Conn {
	return s.conn
}

// SendChan returns the outbound queue consumed by the write pump.
func (s *Session) SendChan() <-chan []byte {
	return s.send
}
