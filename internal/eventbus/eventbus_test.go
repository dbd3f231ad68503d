package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/kilianp07/automail/core/events"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := New(4)
	ch := bus.Subscribe()
	bus.Publish(events.StateEvent{RobotID: "R0", From: "RETURNING", To: "WAITING"})
	v := <-ch
	ev, ok := v.(events.StateEvent)
	if !ok || ev.RobotID != "R0" {
		t.Fatalf("unexpected event %#v", v)
	}
	bus.Unsubscribe(ch)
}

func TestConsumeStopsOnClose(t *testing.T) {
	bus := NewTyped[int]()
	got := make(chan int, 4)
	done := make(chan struct{})
	go func() {
		Consume(context.Background(), bus, func(v int) { got <- v })
		close(done)
	}()
	// wait for the subscription to be registered
	deadline := time.Now().Add(time.Second)
	for {
		bus.mu.RLock()
		n := len(bus.subs)
		bus.mu.RUnlock()
		if n == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	bus.Publish(7)
	if v := <-got; v != 7 {
		t.Fatalf("expected 7 got %d", v)
	}
	bus.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("consume did not return after close")
	}
}

func TestConsumeStopsOnContext(t *testing.T) {
	bus := NewTyped[string]()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Consume(ctx, bus, func(string) {})
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("consume did not return after cancel")
	}
}
