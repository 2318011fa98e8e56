package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("chat.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindMessagesChanged, Timestamp: time.Now(), Payload: 42})

	select {
	case evt := <-ch:
		if evt.Kind != KindMessagesChanged {
			t.Errorf("got kind %q, want %q", evt.Kind, KindMessagesChanged)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("session.", 10)
	defer unsub()

	b.Publish(Event{Kind: KindRecentChanged})
	b.Publish(Event{Kind: KindAuthFailed})

	select {
	case evt := <-ch:
		if evt.Kind != KindAuthFailed {
			t.Errorf("got kind %q, want %q", evt.Kind, KindAuthFailed)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	// Ensure the chat event was not delivered.
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected: no more events.
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("chat.", 10)
	unsub()

	b.Publish(Event{Kind: KindMessagesChanged})

	select {
	case evt := <-ch:
		t.Errorf("received event after unsubscribe: %v", evt)
	case <-time.After(50 * time.Millisecond):
		// Expected.
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("chat.", 1)
	defer unsub()

	// Fill buffer.
	b.Publish(Event{Kind: "chat.one"})
	// This should be dropped (non-blocking).
	b.Publish(Event{Kind: "chat.two"})

	evt := <-ch
	if evt.Kind != "chat.one" {
		t.Errorf("got %q, want chat.one", evt.Kind)
	}
}
