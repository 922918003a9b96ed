// Package conversation is the single source of truth for chatrooms, their
// messages, reactions and threaded replies.
//
// All state is held in memory as an immutable tree. Every mutation builds a
// new tree (rebuilding only the path to the changed node), writes the full
// snapshot through to persistence and only then makes it visible. Values
// returned by accessors must be treated as read-only.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/chatroom/pkg/message"
	"tableflip.dev/chatroom/pkg/store"
)

// DefaultNamespace is the persistence key holding the snapshot.
const DefaultNamespace = "chat-storage"

var (
	// ErrNotFound is wrapped by every lookup failure.
	ErrNotFound = errors.New("not found")

	ErrChatroomNotFound = fmt.Errorf("conversation: chatroom %w", ErrNotFound)
	ErrMessageNotFound  = fmt.Errorf("conversation: message %w", ErrNotFound)

	ErrEmptyTitle   = errors.New("conversation: chatroom title required")
	ErrEmptyMessage = errors.New("conversation: message needs content or an image")
	ErrInvalidRole  = errors.New("conversation: invalid role")
	ErrEmptyEmoji   = errors.New("conversation: emoji required")
	ErrEmptyUser    = errors.New("conversation: user id required")
)

// Draft is the caller supplied part of a new message.
type Draft struct {
	Content string
	Role    message.Role
	Image   string
}

func (d Draft) validate() error {
	if !d.Role.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidRole, d.Role)
	}
	if strings.TrimSpace(d.Content) == "" && d.Image == "" {
		return ErrEmptyMessage
	}
	return nil
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs replaces the random id source. Ids are prefixed with their kind.
func WithIDs(next func() string) Option {
	return func(s *Store) { s.newID = next }
}

// WithNamespace stores the snapshot under a different key.
func WithNamespace(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithLogger sets the logger used for load warnings. Defaults to
// slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// Store holds the conversation state.
type Store struct {
	p     store.Persistence
	key   string
	now   func() time.Time
	newID func() string
	log   *slog.Logger

	mu        sync.RWMutex
	chatrooms []*message.Chatroom
	current   string
	typing    bool
	pending   int
}

// New creates a Store and rehydrates it from persistence. A nil persistence
// keeps everything in memory.
func New(p store.Persistence, opts ...Option) (*Store, error) {
	s := &Store{
		p:         p,
		key:       DefaultNamespace,
		now:       time.Now,
		newID:     uuid.NewString,
		log:       slog.Default(),
		chatrooms: []*message.Chatroom{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

// Namespace is the persistence key this store writes to.
func (s *Store) Namespace() string {
	return s.key
}

// Reload replaces the in-memory state with the persisted snapshot. A missing
// snapshot yields an empty store. The read and the swap happen under the
// write lock so a commit cannot land between them.
func (s *Store) Reload(ctx context.Context) error {
	if s.p == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{}
	if err := s.p.Get(s.key, &snap); err != nil {
		if !errors.Is(err, store.ErrNotExist) {
			return fmt.Errorf("conversation: load snapshot: %w", err)
		}
		snap = Snapshot{Version: SnapshotVersion}
	}
	snap.normalize()
	if err := snap.Validate(); err != nil {
		s.log.WarnContext(ctx, "snapshot has inconsistencies", "key", s.key, "err", err)
	}
	if !snap.hasChatroom(snap.CurrentChatroom) {
		snap.CurrentChatroom = ""
	}

	s.chatrooms = snap.Chatrooms
	s.current = snap.CurrentChatroom
	return nil
}

// Snapshot returns the current persisted view of the store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(s.chatrooms, s.current)
}

func (s *Store) snapshotLocked(rooms []*message.Chatroom, current string) Snapshot {
	out := make([]*message.Chatroom, len(rooms))
	copy(out, rooms)
	return Snapshot{Version: SnapshotVersion, Chatrooms: out, CurrentChatroom: current}
}

// commitLocked writes the candidate state through and, on success, makes it
// the visible state. On failure nothing changes.
func (s *Store) commitLocked(rooms []*message.Chatroom, current string) error {
	if s.p != nil {
		snap := s.snapshotLocked(rooms, current)
		if err := s.p.Put(s.key, snap); err != nil {
			return fmt.Errorf("conversation: persist snapshot: %w", err)
		}
	}
	s.chatrooms = rooms
	s.current = current
	return nil
}

func (s *Store) id(kind string) string {
	return kind + "-" + s.newID()
}

func (s *Store) stamp() message.Timestamp {
	return message.Timestamp{Time: s.now()}
}

// CreateChatroom appends a new empty chatroom and returns its id.
func (s *Store) CreateChatroom(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	room := &message.Chatroom{
		ID:        s.id("chatroom"),
		Title:     title,
		CreatedAt: s.stamp(),
		Messages:  []*message.Message{},
	}
	rooms := make([]*message.Chatroom, 0, len(s.chatrooms)+1)
	rooms = append(rooms, s.chatrooms...)
	rooms = append(rooms, room)
	if err := s.commitLocked(rooms, s.current); err != nil {
		return "", err
	}
	s.log.Debug("chatroom created", "chatroom", room.ID, "title", title)
	return room.ID, nil
}

// DeleteChatroom removes the chatroom and clears the current pointer if it
// referenced it. Deleting an unknown id is a no-op.
func (s *Store) DeleteChatroom(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return nil
	}
	rooms := make([]*message.Chatroom, 0, len(s.chatrooms)-1)
	rooms = append(rooms, s.chatrooms[:i]...)
	rooms = append(rooms, s.chatrooms[i+1:]...)
	current := s.current
	if current == id {
		current = ""
	}
	if err := s.commitLocked(rooms, current); err != nil {
		return err
	}
	s.log.Debug("chatroom deleted", "chatroom", id)
	return nil
}

// Chatroom looks a chatroom up by id.
func (s *Store) Chatroom(id string) (*message.Chatroom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.chatrooms[i], true
	}
	return nil, false
}

// Chatrooms lists all chatrooms in creation order.
func (s *Store) Chatrooms() []*message.Chatroom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*message.Chatroom, len(s.chatrooms))
	copy(out, s.chatrooms)
	return out
}

func (s *Store) indexLocked(id string) int {
	for i, room := range s.chatrooms {
		if room.ID == id {
			return i
		}
	}
	return -1
}

// SetCurrentChatroom points the shared context at id.
func (s *Store) SetCurrentChatroom(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %q", ErrChatroomNotFound, id)
	}
	if s.current == id {
		return nil
	}
	return s.commitLocked(s.chatrooms, id)
}

// ClearCurrentChatroom resets the current chatroom pointer.
func (s *Store) ClearCurrentChatroom() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == "" {
		return nil
	}
	return s.commitLocked(s.chatrooms, "")
}

// CurrentChatroom returns the id of the current chatroom, if any.
func (s *Store) CurrentChatroom() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.current != ""
}

// SetTyping flags whether the assistant is composing. It is never persisted.
func (s *Store) SetTyping(typing bool) {
	s.mu.Lock()
	s.typing = typing
	s.mu.Unlock()
}

// StartTyping marks one more answer as pending and returns the func that
// marks it done. Typing stays on while any answer is pending, so concurrent
// callers do not clear each other's indicator.
func (s *Store) StartTyping() (done func()) {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.pending > 0 {
				s.pending--
			}
			s.mu.Unlock()
		})
	}
}

// Typing reports whether the flag is set or any answer is pending.
func (s *Store) Typing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.typing || s.pending > 0
}

func (s *Store) newMessage(d Draft) *message.Message {
	m := message.New(s.id("msg"), d.Role, d.Content, s.stamp())
	m.Image = d.Image
	return m
}

// updateRoomLocked swaps the messages of one chatroom via fn and commits.
func (s *Store) updateRoomLocked(chatroomID string, fn func([]*message.Message) ([]*message.Message, error)) error {
	i := s.indexLocked(chatroomID)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrChatroomNotFound, chatroomID)
	}
	msgs, err := fn(s.chatrooms[i].Messages)
	if err != nil {
		return err
	}
	room := *s.chatrooms[i]
	room.Messages = msgs
	rooms := make([]*message.Chatroom, len(s.chatrooms))
	copy(rooms, s.chatrooms)
	rooms[i] = &room
	return s.commitLocked(rooms, s.current)
}

// AddMessage appends a top-level message to the chatroom.
func (s *Store) AddMessage(chatroomID string, d Draft) (*message.Message, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.newMessage(d)
	err := s.updateRoomLocked(chatroomID, func(msgs []*message.Message) ([]*message.Message, error) {
		out := make([]*message.Message, 0, len(msgs)+1)
		out = append(out, msgs...)
		return append(out, m), nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// AddReply inserts a reply under parentID, which may sit at any depth of the
// chatroom's thread tree.
func (s *Store) AddReply(chatroomID, parentID string, d Draft) (*message.Message, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	reply := s.newMessage(d)
	reply.ThreadID = parentID
	err := s.updateRoomLocked(chatroomID, func(msgs []*message.Message) ([]*message.Message, error) {
		out, ok := message.Update(msgs, parentID, func(parent *message.Message) *message.Message {
			return parent.WithReply(reply)
		})
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMessageNotFound, parentID)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// AddReaction upserts a reaction by (userID, emoji) on the message, wherever
// it sits in the thread tree.
func (s *Store) AddReaction(chatroomID, messageID, emoji, userID string) (message.Reaction, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return message.Reaction{}, ErrEmptyEmoji
	}
	if strings.TrimSpace(userID) == "" {
		return message.Reaction{}, ErrEmptyUser
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r := message.Reaction{
		ID:        s.id("reaction"),
		Emoji:     emoji,
		UserID:    userID,
		Timestamp: s.stamp(),
	}
	err := s.updateRoomLocked(chatroomID, func(msgs []*message.Message) ([]*message.Message, error) {
		out, ok := message.Update(msgs, messageID, func(m *message.Message) *message.Message {
			return m.WithReaction(r)
		})
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMessageNotFound, messageID)
		}
		return out, nil
	})
	if err != nil {
		return message.Reaction{}, err
	}
	return r, nil
}

// RemoveReaction drops the reaction with reactionID from the message. An
// unknown reaction id on an existing message is a no-op.
func (s *Store) RemoveReaction(chatroomID, messageID, reactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateRoomLocked(chatroomID, func(msgs []*message.Message) ([]*message.Message, error) {
		out, ok := message.Update(msgs, messageID, func(m *message.Message) *message.Message {
			return m.WithoutReaction(reactionID)
		})
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMessageNotFound, messageID)
		}
		return out, nil
	})
}

// Message finds a message anywhere in a chatroom.
func (s *Store) Message(chatroomID, messageID string) (*message.Message, error) {
	room, ok := s.Chatroom(chatroomID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrChatroomNotFound, chatroomID)
	}
	m, ok := message.Find(room.Messages, messageID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMessageNotFound, messageID)
	}
	return m, nil
}

// Resolve maps a user supplied reference to a chatroom id. The reference may
// be an id or a title; an empty reference means the current chatroom.
func (s *Store) Resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	s.mu.RLock()
	defer s.mu.RUnlock()

	if ref == "" {
		if s.current == "" {
			return "", fmt.Errorf("%w: no current chatroom", ErrChatroomNotFound)
		}
		return s.current, nil
	}
	if s.indexLocked(ref) >= 0 {
		return ref, nil
	}
	var match string
	for _, room := range s.chatrooms {
		if strings.EqualFold(room.Title, ref) {
			if match != "" {
				return "", fmt.Errorf("conversation: more than one chatroom titled %q", ref)
			}
			match = room.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %q", ErrChatroomNotFound, ref)
	}
	return match, nil
}

// Search returns the chatrooms whose title contains query, ignoring case, in
// insertion order. An empty query matches every chatroom.
func (s *Store) Search(query string) []*message.Chatroom {
	query = strings.ToLower(strings.TrimSpace(query))
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*message.Chatroom, 0, len(s.chatrooms))
	for _, room := range s.chatrooms {
		if query == "" || strings.Contains(strings.ToLower(room.Title), query) {
			out = append(out, room)
		}
	}
	return out
}

// MessagePage is one page of a chatroom's top-level messages, oldest first.
type MessagePage struct {
	Messages []*message.Message `json:"messages"`
	HasMore  bool               `json:"hasMore"`
	// Before is the cursor for the next older page; empty when HasMore is
	// false.
	Before string `json:"before,omitempty"`
}

// Messages pages back through a chatroom's top-level messages. before is the
// id of the oldest top-level message already seen; empty starts at the
// newest.
func (s *Store) Messages(chatroomID, before string, limit int) (MessagePage, error) {
	room, ok := s.Chatroom(chatroomID)
	if !ok {
		return MessagePage{}, fmt.Errorf("%w: %q", ErrChatroomNotFound, chatroomID)
	}
	if before != "" && !hasTopLevel(room.Messages, before) {
		return MessagePage{}, fmt.Errorf("%w: %q", ErrMessageNotFound, before)
	}
	msgs, more := message.Page(room.Messages, before, limit)
	page := MessagePage{Messages: msgs, HasMore: more}
	if more && len(msgs) > 0 {
		page.Before = msgs[0].ID
	}
	return page, nil
}

func hasTopLevel(msgs []*message.Message, id string) bool {
	for _, m := range msgs {
		if m != nil && m.ID == id {
			return true
		}
	}
	return false
}

// SeedHistory appends count alternating user and assistant messages, one
// minute apart and ending a minute before now, in a single write.
func (s *Store) SeedHistory(chatroomID string, count int) ([]*message.Message, error) {
	if count <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	seeded := make([]*message.Message, 0, count)
	for i := 0; i < count; i++ {
		role, content := message.RoleUser, fmt.Sprintf("User dummy message #%d", i+1)
		if i%2 == 1 {
			role, content = message.RoleAssistant, fmt.Sprintf("Assistant response to message #%d", i)
		}
		at := message.Timestamp{Time: now.Add(-time.Duration(count-i) * time.Minute)}
		seeded = append(seeded, message.New(s.id("msg"), role, content, at))
	}
	err := s.updateRoomLocked(chatroomID, func(msgs []*message.Message) ([]*message.Message, error) {
		out := make([]*message.Message, 0, len(msgs)+count)
		out = append(out, msgs...)
		return append(out, seeded...), nil
	})
	if err != nil {
		return nil, err
	}
	return seeded, nil
}
