// Package events announces stored layouts and atlases to other services.
//
// The HTTP server publishes one [Event] per document it saves. With NATS
// configured, events go to "<prefix>.<type>" subjects, e.g.
// "mondrian.events.layout.created"; otherwise they are dropped.
package events

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type names an event.
type Type string

const (
	LayoutCreated Type = "layout.created"
	AtlasCreated  Type = "atlas.created"
)

// Event is the envelope published for every event. Publishers fill in
// Timestamp, NodeID, and MessageID.
type Event struct {
	Type      Type           `json:"event_type"`
	ID        string         `json:"id"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	NodeID    string         `json:"node_id"`
	MessageID string         `json:"message_id"`
}

// Publisher sends events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// stamp fills the envelope fields of ev.
func stamp(ev Event, nodeID string) Event {
	ev.Timestamp = time.Now().UTC()
	ev.NodeID = nodeID
	ev.MessageID = uuid.NewString()
	return ev
}

// NodeID identifies this process: hostname plus a per-process suffix.
func NodeID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return host + "-" + uuid.NewString()[:8]
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	nodeID string
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{nodeID: NodeID()} }

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, stamp(ev, r.nodeID))
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of the events published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

var (
	_ Publisher = Nop{}
	_ Publisher = (*Recorder)(nil)
)
