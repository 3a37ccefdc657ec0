package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func TestRecorderStampsEnvelope(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()
	_ = r.Publish(ctx, Event{Type: LayoutCreated, ID: "a"})
	_ = r.Publish(ctx, Event{Type: AtlasCreated, ID: "b"})

	evs := r.Events()
	if len(evs) != 2 {
		t.Fatalf("got %d events, want 2", len(evs))
	}
	if evs[0].MessageID == "" || evs[0].MessageID == evs[1].MessageID {
		t.Errorf("message ids %q and %q should be set and distinct", evs[0].MessageID, evs[1].MessageID)
	}
	if evs[0].NodeID == "" || evs[0].NodeID != evs[1].NodeID {
		t.Errorf("node ids %q and %q should match", evs[0].NodeID, evs[1].NodeID)
	}
	if evs[0].Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestEncode(t *testing.T) {
	ev := stamp(Event{
		Type:    AtlasCreated,
		ID:      "2f1c7a7e-7a42-4c8e-9d44-0c4a6f1d2b3e",
		Payload: map[string]any{"pages": 2},
	}, "node-1")

	msg, err := encode("mondrian.events", ev)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Subject != "mondrian.events.atlas.created" {
		t.Errorf("subject = %q", msg.Subject)
	}
	if got := msg.Header.Get(nats.MsgIdHdr); got != ev.MessageID {
		t.Errorf("Nats-Msg-Id = %q, want %q", got, ev.MessageID)
	}

	var decoded Event
	if err := json.Unmarshal(msg.Data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Type != AtlasCreated || decoded.ID != ev.ID || decoded.NodeID != "node-1" {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Payload["pages"] != float64(2) {
		t.Errorf("payload = %v", decoded.Payload)
	}
}

func TestNATSPublisherUnreachable(t *testing.T) {
	cfg := DefaultNATSConfig()
	cfg.URL = "nats://127.0.0.1:1"
	cfg.MaxReconnects = 0
	cfg.Timeout = 100 * time.Millisecond

	if _, err := NewNATSPublisher(cfg, nil); err == nil {
		t.Error("connecting to a closed port should fail")
	}
}
