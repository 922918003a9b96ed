package teaui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/muesli/reflow/ansi"

	"tableflip.dev/chatroom/pkg/conversation"
	"tableflip.dev/chatroom/pkg/store"
)

type fixedResponder string

func (f fixedResponder) Respond(context.Context, string) (string, error) {
	return string(f), nil
}

func stripANSI(s string) string {
	var b strings.Builder
	ansiSeq := false
	for _, r := range s {
		if r == ansi.Marker {
			ansiSeq = true
			continue
		}
		if ansiSeq {
			if ansi.IsTerminator(r) {
				ansiSeq = false
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func newModel(t *testing.T) (Model, *conversation.Store, string) {
	t.Helper()
	s, err := conversation.New(store.NewMemory())
	if err != nil {
		t.Fatalf("conversation.New: %v", err)
	}
	id, err := s.CreateChatroom("Trip Planning")
	if err != nil {
		t.Fatalf("CreateChatroom: %v", err)
	}
	m, err := New(context.Background(), s, fixedResponder("Lisbon!"), "me", id)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m, s, id
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func TestNewOpensChatroom(t *testing.T) {
	_, s, id := newModel(t)
	if cur, _ := s.CurrentChatroom(); cur != id {
		t.Fatalf("current = %q, want %q", cur, id)
	}
	if _, err := New(context.Background(), s, nil, "me", "chatroom-nope"); err == nil {
		t.Fatalf("opened an unknown chatroom")
	}
}

func TestEnterSendsAndRendersAnswer(t *testing.T) {
	m, s, id := newModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m.input.SetValue("where should we go?")
	m, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("enter produced no command")
	}
	if m.pending != 1 || m.input.Value() != "" {
		t.Fatalf("pending = %d, input = %q", m.pending, m.input.Value())
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "assistant is typing...") {
		t.Fatalf("no typing indicator while pending; view=%q", view)
	}

	m, _ = update(t, m, m.send("where should we go?", "")())
	if m.pending != 0 {
		t.Fatalf("pending = %d after answer", m.pending)
	}
	room, _ := s.Chatroom(id)
	if len(room.Messages) != 2 {
		t.Fatalf("messages = %d", len(room.Messages))
	}

	view := stripANSI(m.View())
	for _, want := range []string{"Trip Planning", "where should we go?", "Lisbon!"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q; view=%q", want, view)
		}
	}
	if strings.Contains(view, "assistant is typing...") {
		t.Fatalf("typing indicator left on; view=%q", view)
	}
}

func TestReplyAndReactCommands(t *testing.T) {
	m, s, id := newModel(t)
	top, err := s.AddMessage(id, conversation.Draft{Content: "top", Role: "user"})
	if err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	m.input.SetValue("/reply " + top.ID)
	m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.replyTo != top.ID {
		t.Fatalf("replyTo = %q", m.replyTo)
	}
	m.input.SetValue("nested")
	m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.replyTo != "" {
		t.Fatalf("replyTo not cleared after send")
	}
	m, _ = update(t, m, m.send("nested", top.ID)())

	room, _ := s.Chatroom(id)
	if n := len(room.Messages[0].Replies); n != 2 {
		t.Fatalf("replies = %d, want the reply and its answer", n)
	}

	m.input.SetValue("/react " + top.ID + " 👍")
	m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	room, _ = s.Chatroom(id)
	if n := len(room.Messages[0].Reactions); n != 1 {
		t.Fatalf("reactions = %d", n)
	}
	if view := stripANSI(m.View()); !strings.Contains(view, "👍 1") {
		t.Fatalf("reaction not rendered; view=%q", view)
	}

	m.input.SetValue("/reply msg-nope")
	m, _ = update(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.replyTo != "" || !strings.HasPrefix(m.status, "ERR:") {
		t.Fatalf("unknown reply target: replyTo=%q status=%q", m.replyTo, m.status)
	}
}

func TestEscClosesView(t *testing.T) {
	m, _, _ := newModel(t)
	m, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatalf("esc produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("esc did not quit")
	}
	if _, err := m.view.Send(context.Background(), conversation.Draft{Content: "late"}); err == nil {
		t.Fatalf("view still open after esc")
	}
}
