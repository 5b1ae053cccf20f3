package realtime

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/S-FX-com/Enque-Backend/internal/metrics"
)

// commandBufferSize bounds the hub mailbox. Every command is handled in
// constant time (sends are non-blocking), so the mailbox drains quickly
// and callers almost never wait here.
const commandBufferSize = 64

type hubOp int

const (
	opRegister hubOp = iota
	opUnregister
	opInbound
	opNotify
)

type hubCommand struct {
	op      hubOp
	session *Session
	raw     []byte
	msg     *Message
}

// Hub owns all live sessions for exactly one workspace. The registry is
// mutated only by the hub's own goroutine; everything else talks to it
// through the mailbox, which also preserves per-session inbound order.
type Hub struct {
	workspaceID string

	sessions map[*Session]struct{}
	commands chan hubCommand
	done     chan struct{}
	stopOnce sync.Once
	count    atomic.Int64

	logger  zerolog.Logger
	onEmpty func(*Hub)
}

// NewHub creates a hub for the given workspace and starts its actor
// goroutine. onEmpty is invoked from the actor after the last session
// is removed; it may be nil.
func NewHub(workspaceID string, logger zerolog.Logger, onEmpty func(*Hub)) *Hub {
	h := &Hub{
		workspaceID: workspaceID,
		sessions:    make(map[*Session]struct{}),
		commands:    make(chan hubCommand, commandBufferSize),
		done:        make(chan struct{}),
		logger:      logger.With().Str("workspace_id", workspaceID).Logger(),
		onEmpty:     onEmpty,
	}
	go h.run()
	return h
}

// WorkspaceID returns the workspace this hub serves.
func (h *Hub) WorkspaceID() string {
	return h.workspaceID
}

// Len returns the number of registered sessions.
func (h *Hub) Len() int {
	return int(h.count.Load())
}

// Register adds a session to the hub and acknowledges it with a
// `connected` frame. It reports false if the hub has already stopped.
func (h *Hub) Register(s *Session) bool {
	return h.enqueue(hubCommand{op: opRegister, session: s})
}

// Unregister removes a session. Removing a session that is already gone
// is a no-op.
func (h *Hub) Unregister(s *Session) {
	h.enqueue(hubCommand{op: opUnregister, session: s})
}

// Inbound hands a raw frame received from a session to the hub.
func (h *Hub) Inbound(s *Session, raw []byte) {
	h.enqueue(hubCommand{op: opInbound, session: s, raw: raw})
}

// Notify fans a message out to every registered session. It never
// blocks on client sockets and silently succeeds with zero sessions.
func (h *Hub) Notify(msg *Message) {
	h.enqueue(hubCommand{op: opNotify, msg: msg})
}

// Stop terminates the actor goroutine and closes all sessions.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) enqueue(cmd hubCommand) bool {
	// Refuse deterministically once the hub has stopped; the second
	// select alone could still pick the buffered send over the closed
	// done channel.
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.commands <- cmd:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) run() {
	defer h.shutdown()

	for {
		select {
		case cmd := <-h.commands:
			h.handle(cmd)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handle(cmd hubCommand) {
	switch cmd.op {
	case opRegister:
		h.sessions[cmd.session] = struct{}{}
		h.count.Store(int64(len(h.sessions)))
		metrics.RealtimeSessions.Inc()
		h.sendTo(cmd.session, &Message{
			Type:    MessageTypeConnected,
			AgentID: cmd.session.AgentID,
		})
		h.logger.Debug().
			Str("session_id", cmd.session.ID).
			Str("agent_id", cmd.session.AgentID).
			Msg("session registered")

	case opUnregister:
		h.remove(cmd.session)

	case opInbound:
		h.handleInbound(cmd.session, cmd.raw)

	case opNotify:
		h.fanout(cmd.msg)
	}
}

// handleInbound parses and dispatches one frame from a session. An
// unparseable frame earns the sender an error reply; the connection
// stays open. Unrecognized types are ignored so newer clients keep
// working against older servers.
func (h *Hub) handleInbound(s *Session, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.sendTo(s, &Message{Type: MessageTypeError, Error: "invalid message"})
		return
	}

	switch msg.Type {
	case MessageTypePing:
		h.sendTo(s, &Message{Type: MessageTypePong})
	case MessageTypeSubscribe:
		h.sendTo(s, &Message{Type: MessageTypeSubscribed, Payload: msg.Payload})
	case MessageTypeBroadcast:
		// The sender's bound workspace is authoritative; any workspace
		// id inside the frame is discarded.
		h.fanout(&Message{Type: MessageTypeBroadcast, Payload: msg.Payload})
	default:
	}
}

// fanout delivers msg to every registered session, stamping it with the
// hub's workspace and the delivery time. A failed send evicts the
// recipient; it is never surfaced to the broadcaster or other peers.
func (h *Hub) fanout(msg *Message) {
	data, ok := h.stamp(msg)
	if !ok {
		return
	}

	for s := range h.sessions {
		if s.TrySend(data) {
			metrics.RealtimeEventsDelivered.WithLabelValues(string(msg.Type)).Inc()
			continue
		}
		h.logger.Debug().
			Str("session_id", s.ID).
			Msg("send failed, evicting session")
		metrics.RealtimeEventsDropped.Inc()
		h.remove(s)
	}
}

// sendTo delivers msg to a single session, evicting it on failure.
func (h *Hub) sendTo(s *Session, msg *Message) {
	data, ok := h.stamp(msg)
	if !ok {
		return
	}
	if !s.TrySend(data) {
		metrics.RealtimeEventsDropped.Inc()
		h.remove(s)
	}
}

func (h *Hub) stamp(msg *Message) ([]byte, bool) {
	msg.WorkspaceID = h.workspaceID
	msg.Timestamp = time.Now().UnixMilli()

	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", string(msg.Type)).Msg("failed to marshal message")
		return nil, false
	}
	return data, true
}

func (h *Hub) remove(s *Session) {
	if _, ok := h.sessions[s]; !ok {
		return
	}
	delete(h.sessions, s)
	h.count.Store(int64(len(h.sessions)))
	metrics.RealtimeSessions.Dec()
	s.Close()

	if len(h.sessions) == 0 && h.onEmpty != nil {
		h.onEmpty(h)
	}
}

func (h *Hub) shutdown() {
	for s := range h.sessions {
		s.Close()
		metrics.RealtimeSessions.Dec()
	}
	h.sessions = make(map[*Session]struct{})
	h.count.Store(0)

	// A register can be accepted into the mailbox just before done
	// closes and never reach the actor loop. Drain the mailbox so every
	// such session is closed instead of hanging without an ack.
	for {
		select {
		case cmd := <-h.commands:
			if cmd.op == opRegister {
				cmd.session.Close()
			}
		default:
			return
		}
	}
}
