package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tableflip.dev/chatroom/pkg/conversation"
	"tableflip.dev/chatroom/pkg/message"
	"tableflip.dev/chatroom/pkg/responder"
	"tableflip.dev/chatroom/pkg/store"
)

type fixedResponder struct {
	answer string
	err    error
}

func (f fixedResponder) Respond(ctx context.Context, _ string) (string, error) {
	return f.answer, f.err
}

// blockingResponder holds every call until release is closed.
type blockingResponder struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingResponder) Respond(ctx context.Context, _ string) (string, error) {
	close(b.started)
	select {
	case <-b.release:
		return "late answer", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

type recordingNotifier struct {
	mu       sync.Mutex
	success  []string
	failures []string
}

func (r *recordingNotifier) Success(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success = append(r.success, title)
}

func (r *recordingNotifier) Failure(title string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, title)
}

func newStore(t *testing.T) *conversation.Store {
	t.Helper()
	s, err := conversation.New(store.NewMemory())
	if err != nil {
		t.Fatalf("conversation.New: %v", err)
	}
	return s
}

func openView(t *testing.T, s *conversation.Store, r responder.Responder, n *recordingNotifier) (*View, string) {
	t.Helper()
	v := New(s, r, WithNotifier(n))
	id, err := v.CreateChatroom("Trip Planning")
	if err != nil {
		t.Fatalf("CreateChatroom: %v", err)
	}
	return v, id
}

func TestSendRecordsAnswer(t *testing.T) {
	s := newStore(t)
	n := &recordingNotifier{}
	v, room := openView(t, s, fixedResponder{answer: "Lisbon!"}, n)

	ex, err := v.Send(context.Background(), conversation.Draft{Content: "where should we go?"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if ex.Prompt.Role != message.RoleUser || ex.Answer == nil || ex.Answer.Role != message.RoleAssistant {
		t.Fatalf("exchange = %+v", ex)
	}
	got, _ := s.Chatroom(room)
	if len(got.Messages) != 2 || got.Messages[1].Content != "Lisbon!" {
		t.Fatalf("messages = %+v", got.Messages)
	}
	if s.Typing() {
		t.Fatalf("typing left on")
	}
	if cur, _ := s.CurrentChatroom(); cur != room {
		t.Fatalf("current = %q", cur)
	}
	if len(n.success) != 2 || n.success[0] != "Chatroom created" || n.success[1] != "Message sent" {
		t.Fatalf("notices = %v", n.success)
	}
}

func TestReplyKeepsAnswerInThread(t *testing.T) {
	s := newStore(t)
	v, room := openView(t, s, fixedResponder{answer: "sure"}, &recordingNotifier{})
	ex, err := v.Send(context.Background(), conversation.Draft{Content: "top"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	reply, err := v.Reply(context.Background(), ex.Prompt.ID, conversation.Draft{Content: "follow up"})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if reply.Prompt.ThreadID != ex.Prompt.ID || reply.Answer.ThreadID != ex.Prompt.ID {
		t.Fatalf("thread ids = %q, %q", reply.Prompt.ThreadID, reply.Answer.ThreadID)
	}
	got, _ := s.Chatroom(room)
	if n := len(got.Messages[0].Replies); n != 2 {
		t.Fatalf("replies = %d", n)
	}
}

func TestResponderFailureClearsTyping(t *testing.T) {
	s := newStore(t)
	n := &recordingNotifier{}
	v, room := openView(t, s, fixedResponder{err: errors.New("offline")}, n)

	ex, err := v.Send(context.Background(), conversation.Draft{Content: "hello"})
	if !errors.Is(err, ErrResponder) {
		t.Fatalf("err = %v, want ErrResponder", err)
	}
	if ex == nil || ex.Prompt == nil || ex.Answer != nil {
		t.Fatalf("exchange = %+v", ex)
	}
	if s.Typing() {
		t.Fatalf("typing left on")
	}
	got, _ := s.Chatroom(room)
	if len(got.Messages) != 1 {
		t.Fatalf("messages = %d, want the prompt only", len(got.Messages))
	}
	if len(n.failures) != 1 {
		t.Fatalf("failures = %v", n.failures)
	}
}

func TestCloseDropsLateAnswer(t *testing.T) {
	s := newStore(t)
	r := &blockingResponder{started: make(chan struct{}), release: make(chan struct{})}
	v, room := openView(t, s, r, &recordingNotifier{})

	errs := make(chan error, 1)
	go func() {
		_, err := v.Send(context.Background(), conversation.Draft{Content: "anyone?"})
		errs <- err
	}()

	select {
	case <-r.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("responder never called")
	}
	if !s.Typing() {
		t.Fatalf("typing not raised while responding")
	}
	v.Close()

	select {
	case err := <-errs:
		if !errors.Is(err, ErrViewClosed) {
			t.Fatalf("err = %v, want ErrViewClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Send did not return after Close")
	}
	if s.Typing() {
		t.Fatalf("typing left on after close")
	}
	got, _ := s.Chatroom(room)
	if len(got.Messages) != 1 {
		t.Fatalf("late answer was written: %+v", got.Messages)
	}
	if _, err := v.Send(context.Background(), conversation.Draft{Content: "again"}); !errors.Is(err, ErrViewClosed) {
		t.Fatalf("Send after Close err = %v", err)
	}
}

func TestSwitchingRoomsDropsPendingAnswer(t *testing.T) {
	s := newStore(t)
	r := &blockingResponder{started: make(chan struct{}), release: make(chan struct{})}
	v, first := openView(t, s, r, &recordingNotifier{})
	second, err := s.CreateChatroom("elsewhere")
	if err != nil {
		t.Fatalf("CreateChatroom: %v", err)
	}

	errs := make(chan error, 1)
	go func() {
		_, err := v.Send(context.Background(), conversation.Draft{Content: "hi"})
		errs <- err
	}()
	<-r.started
	if err := v.Open(second); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := <-errs; !errors.Is(err, ErrViewClosed) {
		t.Fatalf("err = %v, want ErrViewClosed", err)
	}
	got, _ := s.Chatroom(first)
	if len(got.Messages) != 1 {
		t.Fatalf("answer written to abandoned room")
	}
}

func TestNoResponderOnlyStoresPrompt(t *testing.T) {
	s := newStore(t)
	v, room := openView(t, s, nil, &recordingNotifier{})
	ex, err := v.Send(context.Background(), conversation.Draft{Content: "note to self"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if ex.Answer != nil {
		t.Fatalf("unexpected answer %+v", ex.Answer)
	}
	got, _ := s.Chatroom(room)
	if len(got.Messages) != 1 {
		t.Fatalf("messages = %d", len(got.Messages))
	}
}

func TestToggleReaction(t *testing.T) {
	s := newStore(t)
	v, _ := openView(t, s, nil, &recordingNotifier{})
	ex, _ := v.Send(context.Background(), conversation.Draft{Content: "vote"})

	on, err := v.Toggle(ex.Prompt.ID, "👍")
	if err != nil || !on {
		t.Fatalf("Toggle on = %v, %v", on, err)
	}
	room, _ := v.Chatroom()
	if n := len(room.Messages[0].Reactions); n != 1 {
		t.Fatalf("reactions = %d", n)
	}
	on, err = v.Toggle(ex.Prompt.ID, "👍")
	if err != nil || on {
		t.Fatalf("Toggle off = %v, %v", on, err)
	}
	room, _ = v.Chatroom()
	if n := len(room.Messages[0].Reactions); n != 0 {
		t.Fatalf("reactions = %d after toggle off", n)
	}
}

func TestOpenUnknownRoom(t *testing.T) {
	v := New(newStore(t), nil)
	if err := v.Open("chatroom-nope"); !errors.Is(err, conversation.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := v.Send(context.Background(), conversation.Draft{Content: "x"}); !errors.Is(err, ErrNoChatroom) {
		t.Fatalf("Send without room err = %v", err)
	}
}

func TestDeleteOpenChatroom(t *testing.T) {
	s := newStore(t)
	v, room := openView(t, s, nil, &recordingNotifier{})
	if err := v.DeleteChatroom(room); err != nil {
		t.Fatalf("DeleteChatroom: %v", err)
	}
	if _, err := v.Chatroom(); !errors.Is(err, ErrNoChatroom) {
		t.Fatalf("Chatroom after delete err = %v", err)
	}
}
