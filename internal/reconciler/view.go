// Package reconciler keeps a connected viewer's local message list in sync
// with the board room's broadcast events, without refetching.
package reconciler

import (
	"encoding/json"
	"sync"

	"github.com/niteshj11/kudoboard/internal/messages"
	"github.com/niteshj11/kudoboard/internal/realtime"
)

// View is the locally cached, ordered message list for one board. It is
// seeded from a bulk fetch (ascending by creation time) and then maintained
// by applying broadcast events: created appends, updated replaces in place,
// deleted removes. The list is never re-sorted, so a late-delivered older
// message lands at the end.
type View struct {
	mu   sync.Mutex
	list []messages.Message
}

// NewView returns an empty view.
func NewView() *View {
	return &View{}
}

// Load replaces the cached list with a bulk fetch result.
func (v *View) Load(list []messages.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.list = append(v.list[:0:0], list...)
}

// Apply merges one broadcast event into the cached list. Events that do not
// concern messages, and updates or deletions for unknown ids, are no-ops.
func (v *View) Apply(name string, data json.RawMessage) error {
	switch name {
	case realtime.EventMessageCreated:
		var message messages.Message
		if err := json.Unmarshal(data, &message); err != nil {
			return err
		}
		v.mu.Lock()
		v.list = append(v.list, message)
		v.mu.Unlock()
	case realtime.EventMessageUpdated:
		var message messages.Message
		if err := json.Unmarshal(data, &message); err != nil {
			return err
		}
		v.mu.Lock()
		for i := range v.list {
			if v.list[i].ID == message.ID {
				v.list[i] = message
				break
			}
		}
		v.mu.Unlock()
	case realtime.EventMessageDeleted:
		var deletion realtime.DeletionPayload
		if err := json.Unmarshal(data, &deletion); err != nil {
			return err
		}
		v.mu.Lock()
		for i := range v.list {
			if v.list[i].ID == deletion.ID {
				v.list = append(v.list[:i], v.list[i+1:]...)
				break
			}
		}
		v.mu.Unlock()
	}
	return nil
}

// Messages returns a copy of the cached list in display order.
func (v *View) Messages() []messages.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append(v.list[:0:0], v.list...)
}

// Len reports the number of cached messages.
func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.list)
}
