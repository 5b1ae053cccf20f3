// Package realtime provides WebSocket connection handling and event
// fan-out for workspaces.
//
// The package implements:
//   - Session: One live agent connection with a buffered outbound queue
//   - Hub: A per-workspace actor goroutine that owns the session registry
//   - Manager: Routes events to the owning hub, spawning hubs on demand
//   - Handler: Upgrades HTTP requests and runs the read/write pumps
//
// Delivery is fire-and-forget: every broadcast makes at most one send
// attempt per session, and a session whose outbound queue is full is
// evicted on the spot. Disconnected agents reconnect and resync through
// the regular REST endpoints; nothing is replayed.
package realtime
