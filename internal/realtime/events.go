package realtime

import "time"

// Client-to-server event names.
const (
	EventBoardJoin   = "board:join"
	EventBoardLeave  = "board:leave"
	EventCursorMove  = "cursor:move"
	EventTypingStart = "typing:start"
	EventTypingStop  = "typing:stop"
)

// Server-to-client event names.
const (
	EventMessageCreated  = "message:created"
	EventMessageUpdated  = "message:updated"
	EventMessageDeleted  = "message:deleted"
	EventUserJoined      = "user:joined"
	EventUserLeft        = "user:left"
	EventCursorUpdate    = "cursor:update"
	EventTypingIndicator = "typing:indicator"
)

// Event is a named payload fanned out to a board room. Delivery is
// fire-and-forget and at-most-once.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// PresencePayload notifies room members that a connection joined or left.
type PresencePayload struct {
	SocketID  string    `json:"socketId"`
	Timestamp time.Time `json:"timestamp"`
}

// CursorPayload carries a relayed cursor position.
type CursorPayload struct {
	SocketID string  `json:"socketId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Name     string  `json:"name,omitempty"`
}

// TypingPayload carries a relayed typing indicator.
type TypingPayload struct {
	SocketID string `json:"socketId"`
	Name     string `json:"name,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

// DeletionPayload identifies a removed message.
type DeletionPayload struct {
	ID      string `json:"id"`
	BoardID string `json:"boardId"`
}
