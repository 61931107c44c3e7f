package realtime

import (
	"testing"
	"time"
)

func TestHubBroadcastReachesAllRoomMembers(t *testing.T) {
	hub := NewHub(4)

	first := hub.Register()
	second := hub.Register()
	hub.Join(first, "board-1")
	hub.Join(second, "board-1")
	drain(first)
	drain(second)

	hub.Broadcast("board-1", Event{Name: EventMessageCreated, Data: "payload"})

	for _, sub := range []*Subscription{first, second} {
		select {
		case event := <-sub.Stream():
			if event.Name != EventMessageCreated {
				t.Fatalf("expected %s, got %s", EventMessageCreated, event.Name)
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatal("expected broadcast within deadline")
		}
	}
}

func TestHubRoomsAreIsolatedByBoard(t *testing.T) {
	hub := NewHub(4)

	member := hub.Register()
	outsider := hub.Register()
	hub.Join(member, "board-a")
	hub.Join(outsider, "board-b")
	drain(member)
	drain(outsider)

	hub.Broadcast("board-a", Event{Name: EventMessageCreated})

	select {
	case <-outsider.Stream():
		t.Fatal("did not expect event for a different room")
	case <-time.After(200 * time.Millisecond):
	}

	select {
	case <-member.Stream():
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event for room member")
	}
}

func TestHubRelayExcludesOrigin(t *testing.T) {
	hub := NewHub(4)

	origin := hub.Register()
	other := hub.Register()
	hub.Join(origin, "board-1")
	hub.Join(other, "board-1")
	drain(origin)
	drain(other)

	hub.Relay("board-1", origin, Event{Name: EventCursorUpdate})

	select {
	case <-origin.Stream():
		t.Fatal("origin must not receive its own relayed event")
	case <-time.After(200 * time.Millisecond):
	}

	select {
	case event := <-other.Stream():
		if event.Name != EventCursorUpdate {
			t.Fatalf("expected %s, got %s", EventCursorUpdate, event.Name)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected relayed event for other member")
	}
}

func TestHubJoinNotifiesExistingMembers(t *testing.T) {
	hub := NewHub(4)

	resident := hub.Register()
	hub.Join(resident, "board-1")

	newcomer := hub.Register()
	hub.Join(newcomer, "board-1")

	select {
	case event := <-resident.Stream():
		if event.Name != EventUserJoined {
			t.Fatalf("expected %s, got %s", EventUserJoined, event.Name)
		}
		presence, ok := event.Data.(PresencePayload)
		if !ok {
			t.Fatalf("unexpected presence payload type %T", event.Data)
		}
		if presence.SocketID != newcomer.SocketID() {
			t.Fatalf("expected newcomer socket id %s, got %s", newcomer.SocketID(), presence.SocketID)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected presence event for existing member")
	}

	select {
	case <-newcomer.Stream():
		t.Fatal("newcomer must not receive its own join notice")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestHubLeaveNotifiesRemainingMembers(t *testing.T) {
	hub := NewHub(4)

	stayer := hub.Register()
	leaver := hub.Register()
	hub.Join(stayer, "board-1")
	hub.Join(leaver, "board-1")
	drain(stayer)
	drain(leaver)

	hub.Leave(leaver, "board-1")

	select {
	case event := <-stayer.Stream():
		if event.Name != EventUserLeft {
			t.Fatalf("expected %s, got %s", EventUserLeft, event.Name)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected departure event for remaining member")
	}

	if size := hub.RoomSize("board-1"); size != 1 {
		t.Fatalf("expected room size 1 after leave, got %d", size)
	}
}

func TestHubUnregisterRemovesAllMembershipsSilently(t *testing.T) {
	hub := NewHub(4)

	observer := hub.Register()
	dropped := hub.Register()
	hub.Join(observer, "board-1")
	hub.Join(dropped, "board-1")
	hub.Join(dropped, "board-2")
	drain(observer)
	drain(dropped)

	hub.Unregister(dropped)

	if size := hub.RoomSize("board-1"); size != 1 {
		t.Fatalf("expected room size 1 after unregister, got %d", size)
	}
	if size := hub.RoomSize("board-2"); size != 0 {
		t.Fatalf("expected empty second room, got %d", size)
	}

	select {
	case event := <-observer.Stream():
		t.Fatalf("disconnect must not emit presence events, got %s", event.Name)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestHubDropsEventsForSlowSubscriber(t *testing.T) {
	hub := NewHub(1)

	slow := hub.Register()
	hub.Join(slow, "board-1")

	hub.Broadcast("board-1", Event{Name: EventMessageCreated, Data: 1})
	hub.Broadcast("board-1", Event{Name: EventMessageCreated, Data: 2})

	received := 0
	for {
		select {
		case <-slow.Stream():
			received++
		case <-time.After(200 * time.Millisecond):
			if received != 1 {
				t.Fatalf("expected exactly one delivered event, got %d", received)
			}
			return
		}
	}
}

func TestHubBroadcastToEmptyRoomIsNoOp(t *testing.T) {
	hub := NewHub(4)
	hub.Broadcast("missing", Event{Name: EventMessageCreated})

	if size := hub.RoomSize("missing"); size != 0 {
		t.Fatalf("expected empty room, got %d", size)
	}
}

func drain(sub *Subscription) {
	for {
		select {
		case <-sub.stream:
		default:
			return
		}
	}
}
