package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Memory is a Persistence that keeps encoded documents in memory. Values go
// through JSON exactly like the disk store so callers see the same decoding
// behaviour.
type Memory struct {
	mu       sync.Mutex
	docs     map[string][]byte
	watchers []chan Event
}

var _ Persistence = (*Memory)(nil)

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string][]byte)}
}

func (m *Memory) BasePath() string {
	return ""
}

func (m *Memory) Get(key string, v any) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	data, ok := m.docs[key]
	m.mu.Unlock()
	if !ok {
		return ErrNotExist
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: decode %s: %w", key, err)
	}
	return nil
}

func (m *Memory) Put(key string, v any) error {
	if err := validKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}
	m.mu.Lock()
	m.docs[key] = data
	m.notifyLocked(Event{Type: EventKeyChanged, Key: key})
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	if _, ok := m.docs[key]; ok {
		delete(m.docs, key)
		m.notifyLocked(Event{Type: EventKeyRemoved, Key: key})
	}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Keys(_ context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.docs))
	for key := range m.docs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Watch delivers an event for every Put and Delete until ctx is done.
func (m *Memory) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, 64)
	m.mu.Lock()
	m.watchers = append(m.watchers, ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, w := range m.watchers {
			if w == ch {
				m.watchers = append(m.watchers[:i], m.watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

func (m *Memory) notifyLocked(ev Event) {
	for _, w := range m.watchers {
		select {
		case w <- ev:
		default:
		}
	}
}
