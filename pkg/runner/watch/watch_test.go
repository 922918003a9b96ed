package watch

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/chatroom/pkg/conversation"
	"tableflip.dev/chatroom/pkg/logger"
	"tableflip.dev/chatroom/pkg/store"
)

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

// lines forwards each log record to a channel, dropping it when full.
type lines chan string

func (l lines) Write(p []byte) (int, error) {
	select {
	case l <- string(p):
	default:
	}
	return len(p), nil
}

func TestReportCountsNestedMessages(t *testing.T) {
	color.NoColor = true
	s, err := conversation.New(store.NewMemory())
	if err != nil {
		t.Fatalf("conversation.New: %v", err)
	}
	room, _ := s.CreateChatroom("room")
	m, _ := s.AddMessage(room, conversation.Draft{Content: "top", Role: "user"})
	if _, err := s.AddReply(room, m.ID, conversation.Draft{Content: "reply", Role: "user"}); err != nil {
		t.Fatalf("AddReply: %v", err)
	}

	var buf bytes.Buffer
	w := &Watch{Store: s, Output: &buf}
	if err := w.report(s.Snapshot()); err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(buf.String(), "1 chatrooms, 2 messages") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestWriteFailuresAreLogged(t *testing.T) {
	mem := store.NewMemory()
	reader, err := conversation.New(mem)
	if err != nil {
		t.Fatalf("conversation.New: %v", err)
	}
	writer, err := conversation.New(mem)
	if err != nil {
		t.Fatalf("conversation.New: %v", err)
	}

	logged := make(lines, 16)
	w := &Watch{
		Store:  reader,
		JSON:   true,
		Output: brokenWriter{},
		Log:    slog.New(logger.NewHandler(logged, &logger.Options{NoColor: true})),
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Do(ctx) }()

	deadline := time.After(2 * time.Second)
	for {
		if _, err := writer.CreateChatroom("elsewhere"); err != nil {
			t.Fatalf("CreateChatroom: %v", err)
		}
		select {
		case line := <-logged:
			if !strings.Contains(line, "failed to write change") || !strings.Contains(line, "broken pipe") {
				t.Fatalf("log line = %q", line)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Do: %v", err)
			}
			return
		case <-time.After(20 * time.Millisecond):
		case <-deadline:
			t.Fatalf("no write failure logged")
		}
	}
}
