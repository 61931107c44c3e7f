package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultQueueSize = 16

// Subscription is one live connection's membership handle. Events destined
// for the connection arrive on Stream in best-effort FIFO order; events are
// dropped rather than blocking when the queue is full.
type Subscription struct {
	id       int64
	socketID string
	stream   chan Event
}

// Stream exposes the subscriber's delivery channel.
func (s *Subscription) Stream() <-chan Event {
	return s.stream
}

// SocketID returns the connection's public identifier used in presence payloads.
func (s *Subscription) SocketID() string {
	return s.socketID
}

// Hub maintains socket-to-room membership, one room per board, and
// rebroadcasts events to room members. Membership is pure process memory:
// it is destroyed on disconnect and lost on restart, with no durability.
type Hub struct {
	mu        sync.RWMutex
	rooms     map[string]map[int64]*Subscription
	members   map[int64]map[string]struct{}
	nextID    int64
	queueSize int
	clock     func() time.Time
}

// NewHub constructs a hub with the given per-subscriber queue size.
func NewHub(queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Hub{
		rooms:     make(map[string]map[int64]*Subscription),
		members:   make(map[int64]map[string]struct{}),
		queueSize: queueSize,
		clock:     time.Now,
	}
}

// Register allocates a subscription for a newly connected socket. The
// subscription belongs to no room until Join is called.
func (h *Hub) Register() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	sub := &Subscription{
		id:       h.nextID,
		socketID: uuid.NewString(),
		stream:   make(chan Event, h.queueSize),
	}
	h.members[sub.id] = make(map[string]struct{})
	return sub
}

// Unregister destroys all of the subscription's room memberships. It does not
// emit presence events; only an explicit Leave does.
func (h *Hub) Unregister(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	rooms := h.members[sub.id]
	delete(h.members, sub.id)
	for boardID := range rooms {
		h.removeLocked(boardID, sub.id)
	}
	h.mu.Unlock()
}

// Join adds the subscription to the board's room and notifies the other
// members. Joining twice is a no-op beyond re-sending the presence notice.
func (h *Hub) Join(sub *Subscription, boardID string) {
	if sub == nil || boardID == "" {
		return
	}
	h.mu.Lock()
	room, ok := h.rooms[boardID]
	if !ok {
		room = make(map[int64]*Subscription)
		h.rooms[boardID] = room
	}
	room[sub.id] = sub
	if joined, ok := h.members[sub.id]; ok {
		joined[boardID] = struct{}{}
	}
	h.mu.Unlock()

	h.Relay(boardID, sub, Event{
		Name: EventUserJoined,
		Data: PresencePayload{SocketID: sub.socketID, Timestamp: h.clock().UTC()},
	})
}

// Leave removes the subscription from the board's room and notifies the
// remaining members.
func (h *Hub) Leave(sub *Subscription, boardID string) {
	if sub == nil || boardID == "" {
		return
	}
	h.mu.Lock()
	h.removeLocked(boardID, sub.id)
	if joined, ok := h.members[sub.id]; ok {
		delete(joined, boardID)
	}
	h.mu.Unlock()

	h.Relay(boardID, sub, Event{
		Name: EventUserLeft,
		Data: PresencePayload{SocketID: sub.socketID, Timestamp: h.clock().UTC()},
	})
}

// Broadcast delivers the event to every connection currently in the board's
// room. Sends never block: a slow subscriber's event is dropped.
func (h *Hub) Broadcast(boardID string, event Event) {
	h.fanOut(boardID, event, 0)
}

// Relay delivers the event to every room member except the originating
// connection, used for presence, cursor and typing signals.
func (h *Hub) Relay(boardID string, origin *Subscription, event Event) {
	originID := int64(0)
	if origin != nil {
		originID = origin.id
	}
	h.fanOut(boardID, event, originID)
}

// RoomSize reports the current number of connections in a board's room.
func (h *Hub) RoomSize(boardID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[boardID])
}

func (h *Hub) fanOut(boardID string, event Event, excludeID int64) {
	h.mu.RLock()
	room := h.rooms[boardID]
	if len(room) == 0 {
		h.mu.RUnlock()
		return
	}
	targets := make([]*Subscription, 0, len(room))
	for _, sub := range room {
		if sub.id == excludeID {
			continue
		}
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		select {
		case sub.stream <- event:
		default:
		}
	}
}

func (h *Hub) removeLocked(boardID string, subID int64) {
	room := h.rooms[boardID]
	if room == nil {
		return
	}
	delete(room, subID)
	if len(room) == 0 {
		delete(h.rooms, boardID)
	}
}
