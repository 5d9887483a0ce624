package store

import "sync"

// Slot names.
const (
	IndoorName  = "indoor"
	OutdoorName = "outdoor"
)

// State groups the two slots of one panel assembly.
//
// State is created fresh on every (re)start of the assembly, so a crash
// resets both slots to empty and stale.
type State struct {
	Indoor  *Slot
	Outdoor *Slot
}

// NewState creates both slots empty and stale. Commits are published to hub
// when it is non-nil.
func NewState(hub *Hub) *State {
	var notify func(Snapshot)
	if hub != nil {
		notify = hub.Publish
	}
	return &State{
		Indoor:  NewSlot(IndoorName, notify),
		Outdoor: NewSlot(OutdoorName, notify),
	}
}

// Snapshot loads both slots, outdoor first then indoor.
//
// The two values may come from different instants; there is no cross-slot
// consistency guarantee.
func (s *State) Snapshot() (outdoor, indoor Snapshot) {
	outdoor = s.Outdoor.Load()
	indoor = s.Indoor.Load()
	return outdoor, indoor
}

// Healthy reports whether both slots are fresh.
func (s *State) Healthy() bool {
	outdoor, indoor := s.Snapshot()
	return outdoor.Fresh && indoor.Fresh
}

// Hub fans slot commits out to subscribers.
//
// Subscribers receive updates via buffered channels (buffer size 100).
// Updates are sent non-blocking; if a subscriber's buffer is full the update
// is dropped for that subscriber so a slow consumer never stalls a poller.
//
// A Hub outlives individual assemblies: the panel keeps one hub and hands it
// to every new [State].
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Snapshot]struct{}
}

// NewHub creates a hub with no subscribers.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// Publish sends snap to all subscribers without blocking.
func (h *Hub) Publish(snap Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- snap:
		default:
			// subscriber is slow, drop the message
		}
	}
}

// Subscribe creates a new subscription.
//
// Caller must call [Hub.Unsubscribe] when done to prevent resource leaks.
func (h *Hub) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 100)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel.
// Safe to call multiple times or with an unknown channel.
func (h *Hub) Unsubscribe(ch <-chan Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for subCh := range h.subscribers {
		if subCh == ch {
			delete(h.subscribers, subCh)
			close(subCh)
			break
		}
	}
}
