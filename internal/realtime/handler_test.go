package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

func newWSServer(t *testing.T, m *Manager) *httptest.Server {
	t.Helper()
	h := NewHandler(m, zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.HandleConnection(w, r, r.URL.Query().Get("workspace_id"), r.URL.Query().Get("agent_id"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, workspaceID, agentID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?workspace_id=" + workspaceID + "&agent_id=" + agentID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) *Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to unmarshal frame %s: %v", data, err)
	}
	return &msg
}

func TestHandleConnectionRejectsMissingIdentity(t *testing.T) {
	m := NewManager(zerolog.Nop())
	defer m.Close()
	srv := newWSServer(t, m)

	// Missing agent_id: rejected before any session exists.
	resp, err := http.Get(srv.URL + "/?workspace_id=W1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	if m.HubCount() != 0 {
		t.Errorf("no hub should exist after a rejected request, got %d", m.HubCount())
	}
}

func TestHandleConnectionRejectsPlainRequest(t *testing.T) {
	m := NewManager(zerolog.Nop())
	defer m.Close()
	srv := newWSServer(t, m)

	resp, err := http.Get(srv.URL + "/?workspace_id=W1&agent_id=A1")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("expected 426 for a non-upgrade request, got %d", resp.StatusCode)
	}
}

func TestConnectionLifecycle(t *testing.T) {
	m := NewManager(zerolog.Nop())
	defer m.Close()
	srv := newWSServer(t, m)

	conn := dial(t, srv, "W1", "A1")

	ack := readFrame(t, conn)
	if ack.Type != MessageTypeConnected {
		t.Fatalf("expected connected ack, got %s", ack.Type)
	}
	if ack.WorkspaceID != "W1" || ack.AgentID != "A1" {
		t.Errorf("ack identity mismatch: workspace=%s agent=%s", ack.WorkspaceID, ack.AgentID)
	}

	// ping -> pong over the real transport.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	pong := readFrame(t, conn)
	if pong.Type != MessageTypePong {
		t.Errorf("expected pong, got %s", pong.Type)
	}

	// A notify from the CRUD side reaches the connected agent.
	payload, _ := json.Marshal(map[string]string{"ticketId": "T1"})
	m.Notify("W1", &Message{Type: MessageTypeTicketUpdated, Payload: payload})

	event := readFrame(t, conn)
	if event.Type != MessageTypeTicketUpdated {
		t.Errorf("expected ticket_updated, got %s", event.Type)
	}
}

func TestBroadcastAcrossRealConnections(t *testing.T) {
	m := NewManager(zerolog.Nop())
	defer m.Close()
	srv := newWSServer(t, m)

	c1 := dial(t, srv, "W1", "A1")
	c2 := dial(t, srv, "W1", "A2")
	readFrame(t, c1) // connected
	readFrame(t, c2) // connected

	if err := c1.WriteMessage(websocket.TextMessage, []byte(`{"type":"broadcast","payload":{"x":1}}`)); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	for _, conn := range []*websocket.Conn{c1, c2} {
		msg := readFrame(t, conn)
		if msg.Type != MessageTypeBroadcast || string(msg.Payload) != `{"x":1}` {
			t.Errorf("unexpected frame: type=%s payload=%s", msg.Type, msg.Payload)
		}
	}
}

func TestDisconnectRemovesSession(t *testing.T) {
	m := NewManager(zerolog.Nop())
	defer m.Close()
	srv := newWSServer(t, m)

	conn := dial(t, srv, "W1", "A1")
	readFrame(t, conn)

	hub := m.Get("W1")
	if hub == nil || hub.Len() != 1 {
		t.Fatal("expected one registered session")
	}

	conn.Close()

	// The read pump notices the close and unregisters; the empty hub is
	// then reaped.
	waitFor(t, func() bool { return m.HubCount() == 0 })
}
