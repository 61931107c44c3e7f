package reconciler

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/niteshj11/kudoboard/internal/realtime"
	"go.uber.org/zap"
)

var errNotConnected = errors.New("reconciler: not connected")

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ClientConfig configures a board viewer's realtime connection.
type ClientConfig struct {
	URL    string
	View   *View
	Logger *zap.Logger
	// OnEvent, when set, observes every received event after the view has
	// applied it.
	OnEvent func(name string, data json.RawMessage)
}

// Client is one viewer's websocket connection to the realtime endpoint. The
// server holds no memory of interest across disconnects, so the client
// restates its board membership on every Connect. It deliberately does not
// refetch on reconnect: events missed while disconnected stay lost until the
// surrounding application reloads the board.
type Client struct {
	url     string
	view    *View
	logger  *zap.Logger
	onEvent func(name string, data json.RawMessage)

	mu      sync.Mutex
	conn    *websocket.Conn
	boardID string
	closed  chan struct{}
}

// NewClient constructs a disconnected client.
func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	view := cfg.View
	if view == nil {
		view = NewView()
	}
	return &Client{
		url:     cfg.URL,
		view:    view,
		logger:  logger,
		onEvent: cfg.OnEvent,
	}
}

// View exposes the client's reconciled message list.
func (c *Client) View() *View {
	return c.view
}

// Connect dials the realtime endpoint and starts the read loop. If a board
// was previously joined, interest is restated immediately.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.conn != nil {
		c.mu.Unlock()
		return nil
	}
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.conn = conn
	c.closed = make(chan struct{})
	rejoin := c.boardID
	c.mu.Unlock()

	go c.readLoop(conn)

	if rejoin != "" {
		return c.send(outboundFrame{Event: realtime.EventBoardJoin, Data: rejoin})
	}
	return nil
}

// JoinBoard registers interest in a board's room. The board id is remembered
// so a later Connect re-joins it.
func (c *Client) JoinBoard(boardID string) error {
	c.mu.Lock()
	c.boardID = boardID
	c.mu.Unlock()
	return c.send(outboundFrame{Event: realtime.EventBoardJoin, Data: boardID})
}

// LeaveBoard drops interest in a board's room.
func (c *Client) LeaveBoard(boardID string) error {
	c.mu.Lock()
	if c.boardID == boardID {
		c.boardID = ""
	}
	c.mu.Unlock()
	return c.send(outboundFrame{Event: realtime.EventBoardLeave, Data: boardID})
}

// SendCursor relays the viewer's cursor position to other room members.
func (c *Client) SendCursor(boardID string, x, y float64, name string) error {
	return c.send(outboundFrame{Event: realtime.EventCursorMove, Data: map[string]any{
		"boardId": boardID,
		"x":       x,
		"y":       y,
		"name":    name,
	}})
}

// SendTyping relays a typing indicator to other room members.
func (c *Client) SendTyping(boardID, name string, typing bool) error {
	event := realtime.EventTypingStop
	data := map[string]any{"boardId": boardID}
	if typing {
		event = realtime.EventTypingStart
		data["name"] = name
	}
	return c.send(outboundFrame{Event: event, Data: data})
}

// Close tears the connection down. The remembered board id survives so a
// subsequent Connect restates interest.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	closed := c.closed
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return nil
	}
	err := conn.Close()
	if closed != nil {
		<-closed
	}
	return err
}

func (c *Client) send(frame outboundFrame) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return errNotConnected
	}
	return conn.WriteJSON(frame)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		closed := c.closed
		c.closed = nil
		c.mu.Unlock()
		_ = conn.Close()
		if closed != nil {
			close(closed)
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame inboundFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			c.logger.Debug("dropping malformed frame", zap.Error(err))
			continue
		}
		if err := c.view.Apply(frame.Event, frame.Data); err != nil {
			c.logger.Debug("failed to apply event", zap.String("event", frame.Event), zap.Error(err))
			continue
		}
		if c.onEvent != nil {
			c.onEvent(frame.Event, frame.Data)
		}
	}
}
