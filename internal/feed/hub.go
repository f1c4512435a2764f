// Package feed provides the live change feed: subscribers receive an
// initial snapshot message followed by incremental change events, mirroring
// the listen semantics of a document database. Subscriptions are explicitly
// cancelled when the consuming connection goes away.
package feed

import (
	"encoding/json"
	"sync"

	"tokopos/internal/core/id"
)

// Event is one incremental change delivered to subscribers.
type Event struct {
	// Entity names the changed collection: sale, debtor, purchase, stock
	Entity string `json:"entity"`

	// Action is what happened: created, settled, deleted, updated
	Action string `json:"action"`

	// Payload carries the changed record (or a summary of it)
	Payload any `json:"payload,omitempty"`
}

// Message is the wire envelope. Type is "snapshot" for the initial full
// state and "change" for every event after it.
type Message struct {
	Type  string `json:"type"`
	Event *Event `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// SnapshotFunc produces the initial full state delivered on subscribe.
type SnapshotFunc func() (any, error)

// Subscription is one registered listener.
type Subscription struct {
	ID id.ID

	// C delivers marshalled messages. Closed on unsubscribe.
	C chan []byte

	hub *Hub
}

// Cancel unregisters the subscription and closes its channel.
func (s *Subscription) Cancel() {
	s.hub.unsubscribe(s.ID)
}

// Hub fans events out to subscribers. Slow subscribers are dropped rather
// than allowed to block publishers.
type Hub struct {
	mu       sync.Mutex
	subs     map[id.ID]*Subscription
	snapshot SnapshotFunc
	closed   bool
}

// NewHub creates a hub. snapshot may be nil; subscribers then receive an
// empty snapshot message.
func NewHub(snapshot SnapshotFunc) *Hub {
	return &Hub{
		subs:     make(map[id.ID]*Subscription),
		snapshot: snapshot,
	}
}

// Subscribe registers a listener and queues its snapshot message. The
// snapshot is taken under the hub lock: an event published while it is
// computed waits for registration and arrives on the change stream,
// never in the gap between snapshot and stream.
func (h *Hub) Subscribe() (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}

	var data any
	if h.snapshot != nil {
		var err error
		data, err = h.snapshot()
		if err != nil {
			return nil, err
		}
	}

	msg, err := json.Marshal(Message{Type: "snapshot", Data: data})
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		ID:  id.New(),
		C:   make(chan []byte, 64),
		hub: h,
	}
	sub.C <- msg
	h.subs[sub.ID] = sub
	return sub, nil
}

// Publish delivers an event to all subscribers. Subscribers whose buffers
// are full are dropped and their channels closed.
func (h *Hub) Publish(event Event) {
	msg, err := json.Marshal(Message{Type: "change", Event: &event})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for subID, sub := range h.subs {
		select {
		case sub.C <- msg:
		default:
			delete(h.subs, subID)
			close(sub.C)
		}
	}
}

// Close cancels all subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for subID, sub := range h.subs {
		delete(h.subs, subID)
		close(sub.C)
	}
}

func (h *Hub) unsubscribe(subID id.ID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[subID]; ok {
		delete(h.subs, subID)
		close(sub.C)
	}
}

// SubscriberCount returns the number of active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
