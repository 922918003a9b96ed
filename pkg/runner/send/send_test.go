package send

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/chatroom/pkg/conversation"
	"tableflip.dev/chatroom/pkg/store"
)

type canned string

func (c canned) Respond(context.Context, string) (string, error) {
	return string(c), nil
}

type quiet struct{}

func (quiet) Success(string)        {}
func (quiet) Failure(string, error) {}

func TestSendAndReply(t *testing.T) {
	color.NoColor = true
	s, err := conversation.New(store.NewMemory())
	if err != nil {
		t.Fatalf("conversation.New: %v", err)
	}
	id, _ := s.CreateChatroom("Trip Planning")

	var buf bytes.Buffer
	snd := &Send{Store: s, Responder: canned("Lisbon!"), Notify: quiet{}, Chatroom: "Trip Planning", Content: "where?", User: "me", Output: &buf}
	if err := snd.Do(context.Background()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "where?") || !strings.Contains(out, "Lisbon!") {
		t.Fatalf("output = %q", out)
	}
	if cur, _ := s.CurrentChatroom(); cur != id {
		t.Fatalf("current = %q", cur)
	}

	room, _ := s.Chatroom(id)
	parent := room.Messages[0].ID
	reply := &Send{Store: s, Notify: quiet{}, ReplyTo: parent, Content: "agreed", Output: &buf}
	if err := reply.Do(context.Background()); err != nil {
		t.Fatalf("reply: %v", err)
	}
	room, _ = s.Chatroom(id)
	if len(room.Messages[0].Replies) != 1 || room.Messages[0].Replies[0].ThreadID != parent {
		t.Fatalf("replies = %+v", room.Messages[0].Replies)
	}
}

func TestSendWithoutRoom(t *testing.T) {
	s, err := conversation.New(store.NewMemory())
	if err != nil {
		t.Fatalf("conversation.New: %v", err)
	}
	snd := &Send{Store: s, Content: "hi", Output: &bytes.Buffer{}}
	if err := snd.Do(context.Background()); err == nil {
		t.Fatalf("expected error without a current chatroom")
	}
}
