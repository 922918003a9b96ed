package show

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/chatroom/pkg/conversation"
	"tableflip.dev/chatroom/pkg/store"
)

func seeded(t *testing.T, n int) (*conversation.Store, string) {
	t.Helper()
	color.NoColor = true
	s, err := conversation.New(store.NewMemory())
	if err != nil {
		t.Fatalf("conversation.New: %v", err)
	}
	id, err := s.CreateChatroom("history")
	if err != nil {
		t.Fatalf("CreateChatroom: %v", err)
	}
	if _, err := s.SeedHistory(id, n); err != nil {
		t.Fatalf("SeedHistory: %v", err)
	}
	return s, id
}

func TestShowAll(t *testing.T) {
	s, id := seeded(t, 3)
	var buf bytes.Buffer
	if err := (&Show{Store: s, Chatroom: id, Output: &buf}).Do(context.Background()); err != nil {
		t.Fatalf("Show: %v", err)
	}
	got := buf.String()
	if !strings.Contains(got, "User dummy message #1") || !strings.Contains(got, "User dummy message #3") {
		t.Fatalf("output = %q", got)
	}
	if strings.Contains(got, "older messages") {
		t.Fatalf("unexpected paging hint in %q", got)
	}
}

func TestShowLimitPagesBack(t *testing.T) {
	s, id := seeded(t, 5)
	var buf bytes.Buffer
	if err := (&Show{Store: s, Chatroom: "history", Limit: 2, Output: &buf}).Do(context.Background()); err != nil {
		t.Fatalf("Show: %v", err)
	}
	got := buf.String()
	if strings.Contains(got, "User dummy message #3") || !strings.Contains(got, "User dummy message #5") {
		t.Fatalf("newest page = %q", got)
	}
	if !strings.Contains(got, "older messages: --before ") {
		t.Fatalf("missing paging hint in %q", got)
	}

	page, _ := s.Messages(id, "", 2)
	buf.Reset()
	if err := (&Show{Store: s, Chatroom: id, Limit: 10, Before: page.Before, JSON: true, Output: &buf}).Do(context.Background()); err != nil {
		t.Fatalf("Show older: %v", err)
	}
	var older struct {
		Title    string `json:"title"`
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
		HasMore bool `json:"hasMore"`
	}
	if err := json.Unmarshal(buf.Bytes(), &older); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if older.Title != "history" || len(older.Messages) != 3 || older.HasMore {
		t.Fatalf("older page = %+v", older)
	}
}
