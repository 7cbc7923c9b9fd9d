// Package events fans out workspace change notifications to the host UI.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"workspacemanager/internal/metrics"
)

const (
	// EventRefresh asks the host to re-render the file tree
	EventRefresh = "tree.refresh"
	// EventDeleted reports a node removed from the tree; Path is the parent to re-render
	EventDeleted = "tree.deleted"
	// EventFilter reports a change of the show-hidden filter
	EventFilter = "tree.filter"
	// EventProfiles asks the host to re-render the profile panel
	EventProfiles = "profiles.changed"
)

// Event is one change notification.
type Event struct {
	Type      string `json:"type"`
	Path      string `json:"path,omitempty"`
	ProfileID string `json:"profile_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Broadcaster manages subscribers and publishes events.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// NewBroadcaster creates a new event broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe adds a new subscriber and returns its event channel.
// The caller must call Unsubscribe when done.
func (b *Broadcaster) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	count := len(b.subscribers)
	b.mu.Unlock()
	metrics.SetSSEConnectionsActive(count)
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
	count := len(b.subscribers)
	b.mu.Unlock()
	metrics.SetSSEConnectionsActive(count)
}

// Publish sends an event to all subscribers. Non-blocking: drops events
// for slow consumers.
func (b *Broadcaster) Publish(event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
	metrics.RecordEvent(event.Type)
}

// Count returns the current number of subscribers.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// MarshalEvent serializes an event to JSON.
func MarshalEvent(e Event) ([]byte, error) {
	return json.Marshal(e)
}
