package sse

import (
	"strings"
	"testing"

	"callcenter_backend/platform/logger"
)

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub(logger.New("test"))

	first, cancelFirst := hub.Subscribe()
	second, cancelSecond := hub.Subscribe()
	defer cancelFirst()
	defer cancelSecond()

	hub.Broadcast("lead_updated", map[string]string{"id": "42"})

	for name, ch := range map[string]<-chan Message{"first": first, "second": second} {
		select {
		case msg := <-ch:
			if msg.Event != "lead_updated" {
				t.Errorf("%s got event %q", name, msg.Event)
			}
		default:
			t.Errorf("%s subscriber received nothing", name)
		}
	}
}

func TestCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub(logger.New("test"))

	_, cancel := hub.Subscribe()
	if hub.Subscribers() != 1 {
		t.Fatalf("subscribers = %d, want 1", hub.Subscribers())
	}
	cancel()
	if hub.Subscribers() != 0 {
		t.Fatalf("subscribers = %d after cancel, want 0", hub.Subscribers())
	}
}

func TestBroadcastNeverBlocksOnFullBuffer(t *testing.T) {
	hub := NewHub(logger.New("test"))
	_, cancel := hub.Subscribe()
	defer cancel()

	// More messages than the subscriber buffer holds; must not deadlock.
	for i := 0; i < 100; i++ {
		hub.Broadcast("tick", i)
	}
}

func TestFormat(t *testing.T) {
	wire, err := Format(Message{Event: "lead_updated", Data: map[string]string{"id": "7"}})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.HasPrefix(wire, "event: lead_updated\ndata: ") {
		t.Errorf("unexpected wire format: %q", wire)
	}
	if !strings.HasSuffix(wire, "\n\n") {
		t.Error("message must end with a blank line")
	}
}
