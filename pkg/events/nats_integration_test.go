//go:build integration

package events

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func TestNATSPublisherRoundTrip(t *testing.T) {
	url := os.Getenv("MONDRIAN_TEST_NATS")
	if url == "" {
		url = nats.DefaultURL
	}
	cfg := DefaultNATSConfig()
	cfg.URL = url
	cfg.MaxReconnects = 0

	pub, err := NewNATSPublisher(cfg, nil)
	if err != nil {
		t.Skipf("nats not reachable at %s: %v", url, err)
	}
	defer pub.Close()

	sub, err := nats.Connect(url)
	if err != nil {
		t.Fatal(err)
	}
	defer sub.Close()
	ch := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe(pub.Subject(LayoutCreated), ch)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Unsubscribe()
	if err := sub.Flush(); err != nil {
		t.Fatal(err)
	}

	if err := pub.Publish(context.Background(), Event{Type: LayoutCreated, ID: "x"}); err != nil {
		t.Fatal(err)
	}
	select {
	case msg := <-ch:
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			t.Fatal(err)
		}
		if ev.ID != "x" || ev.Type != LayoutCreated {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}
