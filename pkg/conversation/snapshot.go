package conversation

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"tableflip.dev/chatroom/pkg/message"
)

// SnapshotVersion is written into every persisted snapshot.
const SnapshotVersion = 1

// Snapshot is the persisted form of the store.
type Snapshot struct {
	Version         int                 `json:"version"`
	Chatrooms       []*message.Chatroom `json:"chatrooms"`
	CurrentChatroom string              `json:"currentChatroom,omitempty"`
}

// normalize replaces nil sequences with empty ones so a decoded snapshot
// looks the same as one built in memory.
func (s *Snapshot) normalize() {
	if s.Chatrooms == nil {
		s.Chatrooms = []*message.Chatroom{}
	}
	kept := s.Chatrooms[:0]
	for _, room := range s.Chatrooms {
		if room == nil {
			continue
		}
		if room.Messages == nil {
			room.Messages = []*message.Message{}
		}
		message.Walk(room.Messages, func(m *message.Message, _ int) {
			if m.Reactions == nil {
				m.Reactions = []message.Reaction{}
			}
			if m.Replies == nil {
				m.Replies = []*message.Message{}
			}
		})
		kept = append(kept, room)
	}
	s.Chatrooms = kept
}

func (s Snapshot) hasChatroom(id string) bool {
	for _, room := range s.Chatrooms {
		if room.ID == id {
			return true
		}
	}
	return false
}

// Validate reports every structural inconsistency in the snapshot. The data
// is not modified.
func (s Snapshot) Validate() error {
	var result *multierror.Error

	if s.Version > SnapshotVersion {
		result = multierror.Append(result, fmt.Errorf("unsupported snapshot version %d", s.Version))
	}

	rooms := make(map[string]bool, len(s.Chatrooms))
	for _, room := range s.Chatrooms {
		if room == nil {
			continue
		}
		if rooms[room.ID] {
			result = multierror.Append(result, fmt.Errorf("duplicate chatroom id %q", room.ID))
		}
		rooms[room.ID] = true

		seen := map[string]bool{}
		var check func(msgs []*message.Message, parent string)
		check = func(msgs []*message.Message, parent string) {
			for _, m := range msgs {
				if m == nil {
					continue
				}
				if seen[m.ID] {
					result = multierror.Append(result, fmt.Errorf("chatroom %q: duplicate message id %q", room.ID, m.ID))
				}
				seen[m.ID] = true
				if !m.Role.Valid() {
					result = multierror.Append(result, fmt.Errorf("chatroom %q: message %q has unknown role %q", room.ID, m.ID, m.Role))
				}
				if m.ThreadID != parent {
					result = multierror.Append(result, fmt.Errorf("chatroom %q: message %q has thread %q, nested under %q", room.ID, m.ID, m.ThreadID, parent))
				}
				pairs := map[string]bool{}
				for _, r := range m.Reactions {
					pair := r.UserID + "\x00" + r.Emoji
					if pairs[pair] {
						result = multierror.Append(result, fmt.Errorf("chatroom %q: message %q has duplicate %s reaction from %q", room.ID, m.ID, r.Emoji, r.UserID))
					}
					pairs[pair] = true
				}
				check(m.Replies, m.ID)
			}
		}
		check(room.Messages, "")
	}

	if s.CurrentChatroom != "" && !rooms[s.CurrentChatroom] {
		result = multierror.Append(result, fmt.Errorf("current chatroom %q does not exist", s.CurrentChatroom))
	}
	return result.ErrorOrNil()
}
