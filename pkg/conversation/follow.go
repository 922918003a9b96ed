package conversation

import (
	"context"
	"errors"

	"tableflip.dev/chatroom/pkg/store"
)

// Follow reloads the store whenever another writer changes its snapshot and
// calls onChange with the fresh state. It blocks until ctx is done.
func (s *Store) Follow(ctx context.Context, onChange func(Snapshot)) error {
	if s.p == nil {
		return errors.New("conversation: nothing to follow without persistence")
	}
	events, err := s.p.Watch(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Type != store.EventInvalidated && ev.Key != s.key {
				continue
			}
			if err := s.Reload(ctx); err != nil {
				s.log.WarnContext(ctx, "reload after change failed", "event", ev.Type.String(), "err", err)
				continue
			}
			if onChange != nil {
				onChange(s.Snapshot())
			}
		}
	}
}
