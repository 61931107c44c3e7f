package realtime

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type cursorMoveFrame struct {
	BoardID string  `json:"boardId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Name    string  `json:"name"`
}

type typingFrame struct {
	BoardID string `json:"boardId"`
	Name    string `json:"name"`
}

// SocketHandlerConfig configures the websocket endpoint.
type SocketHandlerConfig struct {
	Hub         *Hub
	Logger      *zap.Logger
	CheckOrigin func(r *http.Request) bool
}

// SocketHandler upgrades connections and bridges them onto the hub. Each
// connection drives one read loop (dispatching join/leave and ephemeral
// signals) and one write loop (draining the subscription stream).
type SocketHandler struct {
	hub      *Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewSocketHandler constructs the websocket handler.
func NewSocketHandler(cfg SocketHandlerConfig) *SocketHandler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &SocketHandler{
		hub:    cfg.Hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Handle serves one websocket connection for its full lifetime.
func (h *SocketHandler) Handle(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := h.hub.Register()
	h.logger.Debug("socket connected", zap.String("socket_id", sub.SocketID()))

	done := make(chan struct{})
	go h.writeLoop(conn, sub, done)

	h.readLoop(conn, sub)

	close(done)
	h.hub.Unregister(sub)
	_ = conn.Close()
	h.logger.Debug("socket disconnected", zap.String("socket_id", sub.SocketID()))
}

func (h *SocketHandler) writeLoop(conn *websocket.Conn, sub *Subscription, done <-chan struct{}) {
	for {
		select {
		case event := <-sub.Stream():
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *SocketHandler) readLoop(conn *websocket.Conn, sub *Subscription) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			h.logger.Debug("dropping malformed frame", zap.Error(err))
			continue
		}
		h.dispatch(sub, frame)
	}
}

func (h *SocketHandler) dispatch(sub *Subscription, frame inboundFrame) {
	switch frame.Event {
	case EventBoardJoin:
		var boardID string
		if err := json.Unmarshal(frame.Data, &boardID); err != nil || boardID == "" {
			return
		}
		h.hub.Join(sub, boardID)
	case EventBoardLeave:
		var boardID string
		if err := json.Unmarshal(frame.Data, &boardID); err != nil || boardID == "" {
			return
		}
		h.hub.Leave(sub, boardID)
	case EventCursorMove:
		var move cursorMoveFrame
		if err := json.Unmarshal(frame.Data, &move); err != nil || move.BoardID == "" {
			return
		}
		h.hub.Relay(move.BoardID, sub, Event{
			Name: EventCursorUpdate,
			Data: CursorPayload{SocketID: sub.SocketID(), X: move.X, Y: move.Y, Name: move.Name},
		})
	case EventTypingStart:
		var typing typingFrame
		if err := json.Unmarshal(frame.Data, &typing); err != nil || typing.BoardID == "" {
			return
		}
		h.hub.Relay(typing.BoardID, sub, Event{
			Name: EventTypingIndicator,
			Data: TypingPayload{SocketID: sub.SocketID(), Name: typing.Name, IsTyping: true},
		})
	case EventTypingStop:
		var typing typingFrame
		if err := json.Unmarshal(frame.Data, &typing); err != nil || typing.BoardID == "" {
			return
		}
		h.hub.Relay(typing.BoardID, sub, Event{
			Name: EventTypingIndicator,
			Data: TypingPayload{SocketID: sub.SocketID(), IsTyping: false},
		})
	default:
		h.logger.Debug("unknown socket event", zap.String("event", frame.Event))
	}
}
