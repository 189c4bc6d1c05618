package realtime

import (
	"time"
)

// Client-to-server message types
const (
	MsgJoinRoom  = "JOIN_ROOM"
	MsgLeaveRoom = "LEAVE_ROOM"
	MsgJoinChat  = "JOIN_CHAT"
	MsgLeaveChat = "LEAVE_CHAT"
	MsgPing      = "PING"
	MsgSetIdle   = "SET_IDLE"
)

// Server-to-client event types owned by the transport layer. Domain
// event types live with the emitter.
const (
	EventConnected       = "CONNECTED"
	EventPresenceChanged = "PRESENCE_CHANGED"
)

// WSMessage is the inbound wire shape
type WSMessage struct {
	Type    string `json:"type"`
	Kind    string `json:"kind,omitempty"`
	ScopeID string `json:"scopeId,omitempty"`
	Idle    *bool  `json:"idle,omitempty"`
}

// Envelope is the outbound wire shape for every server-pushed event
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ConnectedPayload is the acknowledgment sent immediately on every new
// connection. UserID and TenantID are null for connections whose
// handshake did not resolve a session.
type ConnectedPayload struct {
	ServerTime string  `json:"serverTime"`
	RequestID  string  `json:"requestId"`
	UserID     *string `json:"userId"`
	TenantID   *string `json:"tenantId"`
}

// DenyReason is the structured, log-only reason a chat join was
// refused. Denials are silent on the wire: the client UI already gates
// which rooms it attempts, so the only consumer is the server log.
type DenyReason string

const (
	DenyNone             DenyReason = ""
	DenyNotAuthenticated DenyReason = "not-authenticated"
	DenyAccessDenied     DenyReason = "access-denied"
	DenyValidationError  DenyReason = "validation-error"
)
