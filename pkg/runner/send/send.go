// Package send posts a message to a chatroom and waits for the answer.
package send

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/chatroom/pkg/chat"
	"tableflip.dev/chatroom/pkg/conversation"
	"tableflip.dev/chatroom/pkg/printers"
	"tableflip.dev/chatroom/pkg/responder"
)

type Send struct {
	Store *conversation.Store
	// Responder answers the message; nil posts without an answer.
	Responder responder.Responder
	Notify    chat.Notifier

	Chatroom string
	ReplyTo  string
	Content  string
	Image    string
	User     string
	ShowID   bool
	JSON     bool
	Output   io.Writer
}

func (s *Send) Do(ctx context.Context) error {
	if s.Store == nil {
		return errors.New("no conversation store")
	}
	id, err := s.Store.Resolve(s.Chatroom)
	if err != nil {
		return err
	}

	opts := []chat.Option{chat.WithUser(s.User)}
	if s.Notify != nil {
		opts = append(opts, chat.WithNotifier(s.Notify))
	}
	v := chat.New(s.Store, s.Responder, opts...)
	defer v.Close()
	if err := v.Open(id); err != nil {
		return err
	}

	out := s.Output
	if out == nil {
		out = color.Output
	}
	if s.Responder != nil && !s.JSON {
		_, _ = fmt.Fprintln(out, color.New(color.Faint, color.Italic).Sprint("assistant is typing..."))
	}

	draft := conversation.Draft{Content: s.Content, Image: s.Image}
	var ex *chat.Exchange
	if s.ReplyTo == "" {
		ex, err = v.Send(ctx, draft)
	} else {
		ex, err = v.Reply(ctx, s.ReplyTo, draft)
	}
	if ex == nil {
		return err
	}

	if s.JSON {
		if perr := printers.JSON(out, ex); perr != nil {
			return perr
		}
		return err
	}
	pp := printers.PrettyPrint{ShowID: s.ShowID, User: s.User, Out: out}
	pp.Message(ex.Prompt, 0)
	if ex.Answer != nil {
		pp.Message(ex.Answer, 0)
	}
	return err
}
