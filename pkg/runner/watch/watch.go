// Package watch follows the store and reports changes made by any process.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/chatroom/pkg/conversation"
	"tableflip.dev/chatroom/pkg/logger"
	"tableflip.dev/chatroom/pkg/message"
	"tableflip.dev/chatroom/pkg/printers"
)

type Watch struct {
	Store  *conversation.Store
	JSON   bool
	Output io.Writer
	Log    *slog.Logger
}

// Do blocks until ctx is cancelled.
func (w *Watch) Do(ctx context.Context) error {
	if w.Store == nil {
		return errors.New("no conversation store")
	}
	_, _ = fmt.Fprintln(w.out(), color.New(color.Faint).Sprint("watching for changes, ctrl-c to stop"))

	return w.Store.Follow(ctx, func(s conversation.Snapshot) {
		if err := w.report(s); err != nil {
			w.logger().ErrorContext(ctx, "failed to write change", logger.Err(err))
		}
	})
}

func (w *Watch) report(s conversation.Snapshot) error {
	if w.JSON {
		return printers.JSON(w.out(), s)
	}
	msgs := 0
	for _, room := range s.Chatrooms {
		msgs += message.Count(room.Messages)
	}
	_, err := fmt.Fprintf(w.out(), "%s %d chatrooms, %d messages\n",
		color.New(color.Faint).Sprint(time.Now().Format(time.TimeOnly)), len(s.Chatrooms), msgs)
	return err
}

func (w *Watch) out() io.Writer {
	if w.Output == nil {
		return color.Output
	}
	return w.Output
}

func (w *Watch) logger() *slog.Logger {
	if w.Log == nil {
		return slog.Default()
	}
	return w.Log
}
