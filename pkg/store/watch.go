package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes the nature of a persistence change notification.
type EventType int

const (
	// EventKeyChanged indicates the document stored under Key was written.
	EventKeyChanged EventType = iota

	// EventKeyRemoved indicates the document stored under Key was erased.
	EventKeyRemoved

	// EventInvalidated signals the watcher could not classify a change and
	// callers should reload everything they care about.
	EventInvalidated
)

func (t EventType) String() string {
	switch t {
	case EventKeyChanged:
		return "changed"
	case EventKeyRemoved:
		return "removed"
	case EventInvalidated:
		return "invalidated"
	}
	return fmt.Sprintf("EventType(%d)", int(t))
}

// Event is emitted by Persistence.Watch when underlying storage changes.
type Event struct {
	Type EventType
	Key  string
}

// ThrottleDelay is how long the watcher coalesces bursts of writes.
var ThrottleDelay = 100 * time.Millisecond

// Watch streams change events until ctx is cancelled. Callers should drain the
// returned channel to avoid blocking the watcher. The channel is closed once
// ctx is done or the watcher encounters an unrecoverable error.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if p.basePath == "" {
		return nil, errors.New("store: persistence base path unknown")
	}

	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}
	var closeOnce sync.Once
	closeWatcher := func() {
		closeOnce.Do(func() {
			if err := watcher.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "store: watcher close: %v\n", err)
			}
		})
	}

	if err := watcher.Add(p.basePath); err != nil {
		closeWatcher()
		return nil, fmt.Errorf("store: watch %s: %w", p.basePath, err)
	}

	events := make(chan Event, 64)

	go func() {
		var sendMu sync.Mutex
		closed := false
		defer func() {
			sendMu.Lock()
			closed = true
			close(events)
			sendMu.Unlock()
		}()
		defer closeWatcher()

		send := func(ev Event) {
			sendMu.Lock()
			defer sendMu.Unlock()
			if closed {
				return
			}
			select {
			case events <- ev:
			default:
				// Drop events if the consumer is not ready; the next burst
				// carries the latest state anyway.
			}
		}

		throttle := newEventThrottle(ThrottleDelay)
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.Enqueue(Event{Type: EventInvalidated}, send)
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				key := p.keyForPath(evt.Name)
				if key == "" {
					continue
				}
				switch {
				case evt.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
					// diskv renames temp files over the target, so a rename
					// of the target itself means it is gone.
					if _, err := os.Stat(evt.Name); errors.Is(err, os.ErrNotExist) {
						throttle.Enqueue(Event{Type: EventKeyRemoved, Key: key}, send)
						continue
					}
					throttle.Enqueue(Event{Type: EventKeyChanged, Key: key}, send)
				case evt.Op&(fsnotify.Create|fsnotify.Write) != 0:
					throttle.Enqueue(Event{Type: EventKeyChanged, Key: key}, send)
				}
			}
		}
	}()

	return events, nil
}

// keyForPath derives the key of a document written directly under the base
// path. Temp files and directories map to "".
func (p *persistence) keyForPath(path string) string {
	if filepath.Clean(filepath.Dir(path)) != filepath.Clean(p.basePath) {
		return ""
	}
	return keyForFile(filepath.Base(path))
}

// eventThrottle coalesces rapid change notifications so consumers reload once
// per burst of filesystem activity instead of on every single write. The last
// event type seen for a key wins.
type eventThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	order   []string
	pending map[string]EventType
	delay   time.Duration
}

func newEventThrottle(delay time.Duration) *eventThrottle {
	return &eventThrottle{
		delay:   delay,
		pending: make(map[string]EventType),
	}
}

func (t *eventThrottle) Enqueue(ev Event, send func(Event)) {
	t.mu.Lock()
	if _, seen := t.pending[ev.Key]; !seen {
		t.order = append(t.order, ev.Key)
	}
	t.pending[ev.Key] = ev.Type

	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() {
			t.flush(send)
		})
	}
	t.mu.Unlock()
}

func (t *eventThrottle) flush(send func(Event)) {
	t.mu.Lock()
	pending := t.pending
	order := t.order
	t.pending = make(map[string]EventType)
	t.order = nil
	t.timer = nil
	t.mu.Unlock()

	for _, key := range order {
		send(Event{Type: pending[key], Key: key})
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
}
