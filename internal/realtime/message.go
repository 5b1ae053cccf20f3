package realtime

import "encoding/json"

// MessageType represents the type of a realtime message.
type MessageType string

const (
	// Client -> Server message types
	MessageTypePing      MessageType = "ping"
	MessageTypeSubscribe MessageType = "subscribe"
	MessageTypeBroadcast MessageType = "broadcast"

	// Server -> Client message types
	MessageTypeConnected  MessageType = "connected"
	MessageTypePong       MessageType = "pong"
	MessageTypeSubscribed MessageType = "subscribed"
	MessageTypeError      MessageType = "error"

	// Domain events pushed by the CRUD layer
	MessageTypeTicketCreated  MessageType = "ticket_created"
	MessageTypeTicketUpdated  MessageType = "ticket_updated"
	MessageTypeTicketDeleted  MessageType = "ticket_deleted"
	MessageTypeCommentUpdated MessageType = "comment_updated"
	MessageTypeTeamUpdated    MessageType = "team_updated"
)

// Message is the envelope exchanged over the wire and between the CRUD
// layer and the hub. Timestamp is assigned by the hub at delivery time,
// never by the sender.
type Message struct {
	Type        MessageType     `json:"type"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Timestamp   int64           `json:"timestamp,omitempty"`
	WorkspaceID string          `json:"workspaceId,omitempty"`
	AgentID     string          `json:"agentId,omitempty"`
	Error       string          `json:"error,omitempty"`
}
