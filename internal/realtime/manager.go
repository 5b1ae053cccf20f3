package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// Manager routes events to the hub owning each workspace, spawning hubs
// on demand and reaping them once their registry empties. It is the only
// component allowed to create or stop hubs.
type Manager struct {
	mu     sync.RWMutex
	hubs   map[string]*Hub
	logger zerolog.Logger
	closed bool
}

// NewManager creates a new Manager.
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		hubs:   make(map[string]*Hub),
		logger: logger,
	}
}

// GetOrCreate returns the hub owning workspaceID, spawning it if needed.
func (m *Manager) GetOrCreate(workspaceID string) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[workspaceID]; ok {
		return hub
	}

	hub := NewHub(workspaceID, m.logger, m.reap)
	m.hubs[workspaceID] = hub
	return hub
}

// Get returns the hub for the workspace, or nil if none is live.
func (m *Manager) Get(workspaceID string) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[workspaceID]
}

// Notify fans msg out to every session of the workspace. It is the sole
// write entry point from the CRUD layer into the realtime core, and a
// no-op when the workspace has no live sessions.
func (m *Manager) Notify(workspaceID string, msg *Message) {
	hub := m.Get(workspaceID)
	if hub == nil {
		return
	}
	hub.Notify(msg)
}

// HubCount returns the number of live hubs.
func (m *Manager) HubCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}

// reap is the hub's onEmpty callback. The identity check guards against
// a hub that was already replaced for the same workspace.
func (m *Manager) reap(h *Hub) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	if current, ok := m.hubs[h.WorkspaceID()]; !ok || current != h || h.Len() != 0 {
		return
	}
	delete(m.hubs, h.WorkspaceID())
	h.Stop()
}

// Close stops all hubs and their sessions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	for _, hub := range m.hubs {
		hub.Stop()
	}
	m.hubs = make(map[string]*Hub)
}
