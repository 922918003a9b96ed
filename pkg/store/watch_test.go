package store

import (
	"context"
	"sync"
	"testing"
	"time"
)

type testConfig struct {
	path string
}

func (t testConfig) BasePath() string {
	return t.path
}

func TestPersistenceWatchEmitsKeyChanges(t *testing.T) {
	base := t.TempDir()
	p, err := Load(testConfig{path: base})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe before storing.
	time.Sleep(50 * time.Millisecond)

	if err := p.Put("chat-storage", map[string]string{"hello": "world"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventInvalidated {
				return
			}
			if evt.Type == EventKeyChanged {
				if evt.Key != "chat-storage" {
					t.Fatalf("expected key 'chat-storage', got %q", evt.Key)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for key change event")
		}
	}
}

func TestWatchClosesChannelOnCancel(t *testing.T) {
	p, err := Load(testConfig{path: t.TempDir()})
	if err != nil {
		t.Fatalf("load persistence: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestEventThrottleCoalesces(t *testing.T) {
	throttle := newEventThrottle(20 * time.Millisecond)
	defer throttle.Stop()

	var mu sync.Mutex
	var got []Event
	done := make(chan struct{})
	send := func(ev Event) {
		mu.Lock()
		got = append(got, ev)
		if len(got) == 2 {
			close(done)
		}
		mu.Unlock()
	}

	throttle.Enqueue(Event{Type: EventKeyChanged, Key: "a"}, send)
	throttle.Enqueue(Event{Type: EventKeyChanged, Key: "b"}, send)
	throttle.Enqueue(Event{Type: EventKeyRemoved, Key: "a"}, send)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("throttle never flushed")
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0].Key != "a" || got[0].Type != EventKeyRemoved {
		t.Fatalf("expected last event for a to win, got %+v", got[0])
	}
	if got[1].Key != "b" || got[1].Type != EventKeyChanged {
		t.Fatalf("unexpected second event %+v", got[1])
	}
}
