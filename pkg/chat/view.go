// Package chat drives one open chatroom: it posts user messages, asks the
// responder for an answer and records it, keeping the typing indicator in
// step.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tableflip.dev/chatroom/pkg/conversation"
	"tableflip.dev/chatroom/pkg/message"
	"tableflip.dev/chatroom/pkg/responder"
)

var (
	ErrViewClosed = errors.New("chat: view closed")
	ErrNoChatroom = errors.New("chat: no chatroom open")
	ErrResponder  = errors.New("chat: responder failed")
)

// Exchange is a user message and the assistant answer it produced. Answer
// is nil when no responder ran.
type Exchange struct {
	Prompt *message.Message
	Answer *message.Message
}

// Notifier surfaces short status notices to the user.
type Notifier interface {
	Success(title string)
	Failure(title string, err error)
}

// LogNotifier reports notices through slog.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) logger() *slog.Logger {
	if n.Log == nil {
		return slog.Default()
	}
	return n.Log
}

func (n LogNotifier) Success(title string) {
	n.logger().Info(title)
}

func (n LogNotifier) Failure(title string, err error) {
	n.logger().Error(title, "err", err)
}

type Option func(*View)

func WithNotifier(n Notifier) Option {
	return func(v *View) { v.notify = n }
}

// WithUser sets the id reactions are recorded under.
func WithUser(userID string) Option {
	return func(v *View) { v.user = userID }
}

// View is the controller behind a single chat page.
type View struct {
	store   *conversation.Store
	respond responder.Responder
	notify  Notifier
	user    string

	mu       sync.Mutex
	room     string
	gen      uint64
	closed   bool
	inflight map[uint64]context.CancelFunc
	next     uint64
}

// New creates a View. A nil responder records user messages only.
func New(s *conversation.Store, r responder.Responder, opts ...Option) *View {
	v := &View{
		store:    s,
		respond:  r,
		notify:   LogNotifier{},
		user:     "me",
		inflight: map[uint64]context.CancelFunc{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Open binds the view to chatroomID and makes it the current chatroom.
// Opening a different room abandons answers still pending for the old one.
func (v *View) Open(chatroomID string) error {
	if err := v.store.SetCurrentChatroom(chatroomID); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrViewClosed
	}
	if v.room != chatroomID {
		v.cancelLocked()
	}
	v.room = chatroomID
	return nil
}

// Chatroom returns the open chatroom.
func (v *View) Chatroom() (*message.Chatroom, error) {
	v.mu.Lock()
	id := v.room
	v.mu.Unlock()
	if id == "" {
		return nil, ErrNoChatroom
	}
	room, ok := v.store.Chatroom(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", conversation.ErrChatroomNotFound, id)
	}
	return room, nil
}

// CreateChatroom creates a room and opens it.
func (v *View) CreateChatroom(title string) (string, error) {
	id, err := v.store.CreateChatroom(title)
	if err != nil {
		v.notify.Failure("Failed to create chatroom", err)
		return "", err
	}
	v.notify.Success("Chatroom created")
	return id, v.Open(id)
}

// DeleteChatroom removes a room, closing it first when it is the open one.
func (v *View) DeleteChatroom(id string) error {
	v.mu.Lock()
	if v.room == id {
		v.cancelLocked()
		v.room = ""
	}
	v.mu.Unlock()
	if err := v.store.DeleteChatroom(id); err != nil {
		v.notify.Failure("Failed to delete chatroom", err)
		return err
	}
	v.notify.Success("Chatroom deleted")
	return nil
}

// Send posts d as a top-level message and records the responder's answer.
func (v *View) Send(ctx context.Context, d conversation.Draft) (*Exchange, error) {
	return v.post(ctx, "", d, "Message sent")
}

// Reply posts d under parentID; the answer joins the same thread.
func (v *View) Reply(ctx context.Context, parentID string, d conversation.Draft) (*Exchange, error) {
	return v.post(ctx, parentID, d, "Reply sent")
}

func (v *View) post(ctx context.Context, parentID string, d conversation.Draft, notice string) (*Exchange, error) {
	room, gen, err := v.active()
	if err != nil {
		return nil, err
	}
	d.Role = message.RoleUser

	var prompt *message.Message
	if parentID == "" {
		prompt, err = v.store.AddMessage(room, d)
	} else {
		prompt, err = v.store.AddReply(room, parentID, d)
	}
	if err != nil {
		v.notify.Failure("Failed to send message", err)
		return nil, err
	}
	v.notify.Success(notice)

	ex := &Exchange{Prompt: prompt}
	if v.respond == nil {
		return ex, nil
	}

	ctx, done, err := v.track(ctx, gen)
	if err != nil {
		return ex, err
	}
	defer done()

	stopTyping := v.store.StartTyping()
	defer stopTyping()

	text, err := v.respond.Respond(ctx, prompt.Content)
	if !v.current(room, gen) {
		return ex, ErrViewClosed
	}
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrResponder, err)
		v.notify.Failure("Failed to get AI response", err)
		return ex, err
	}

	answer := conversation.Draft{Content: text, Role: message.RoleAssistant}
	if parentID == "" {
		ex.Answer, err = v.store.AddMessage(room, answer)
	} else {
		ex.Answer, err = v.store.AddReply(room, parentID, answer)
	}
	if err != nil {
		v.notify.Failure("Failed to save AI response", err)
		return ex, err
	}
	return ex, nil
}

// React adds emoji to a message as the view's user.
func (v *View) React(messageID, emoji string) (message.Reaction, error) {
	room, _, err := v.active()
	if err != nil {
		return message.Reaction{}, err
	}
	r, err := v.store.AddReaction(room, messageID, emoji, v.user)
	if err != nil {
		v.notify.Failure("Failed to add reaction", err)
		return message.Reaction{}, err
	}
	v.notify.Success("Reaction added")
	return r, nil
}

// Unreact removes a reaction by id.
func (v *View) Unreact(messageID, reactionID string) error {
	room, _, err := v.active()
	if err != nil {
		return err
	}
	if err := v.store.RemoveReaction(room, messageID, reactionID); err != nil {
		v.notify.Failure("Failed to remove reaction", err)
		return err
	}
	v.notify.Success("Reaction removed")
	return nil
}

// Toggle removes the user's emoji reaction when present and adds it
// otherwise. It reports whether the reaction is now set.
func (v *View) Toggle(messageID, emoji string) (bool, error) {
	room, _, err := v.active()
	if err != nil {
		return false, err
	}
	m, err := v.store.Message(room, messageID)
	if err != nil {
		return false, err
	}
	if existing, ok := m.ReactionBy(v.user, emoji); ok {
		return false, v.Unreact(messageID, existing.ID)
	}
	_, err = v.React(messageID, emoji)
	return err == nil, err
}

// Close cancels pending responder calls. Answers that arrive afterwards are
// dropped.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.cancelLocked()
}

func (v *View) active() (string, uint64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return "", 0, ErrViewClosed
	}
	if v.room == "" {
		return "", 0, ErrNoChatroom
	}
	return v.room, v.gen, nil
}

func (v *View) current(room string, gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.closed && v.room == room && v.gen == gen
}

// track derives a cancellable context for one responder call.
func (v *View) track(ctx context.Context, gen uint64) (context.Context, func(), error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.gen != gen {
		return nil, nil, ErrViewClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	v.next++
	id := v.next
	v.inflight[id] = cancel
	return ctx, func() {
		v.mu.Lock()
		delete(v.inflight, id)
		v.mu.Unlock()
		cancel()
	}, nil
}

func (v *View) cancelLocked() {
	v.gen++
	for id, cancel := range v.inflight {
		cancel()
		delete(v.inflight, id)
	}
}
