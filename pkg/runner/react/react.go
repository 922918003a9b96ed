// Package react adds and removes emoji reactions.
package react

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/chatroom/pkg/chat"
	"tableflip.dev/chatroom/pkg/conversation"
	"tableflip.dev/chatroom/pkg/printers"
)

var errNoStore = errors.New("no conversation store")

// React adds Emoji to a message as User. With Toggle set an existing
// reaction is removed instead.
type React struct {
	Store    *conversation.Store
	Notify   chat.Notifier
	Chatroom string
	Message  string
	Emoji    string
	User     string
	Toggle   bool
	JSON     bool
	Output   io.Writer
}

func (r *React) Do(_ context.Context) error {
	v, err := open(r.Store, r.Chatroom, r.User, r.Notify)
	if err != nil {
		return err
	}
	defer v.Close()

	out := r.Output
	if out == nil {
		out = color.Output
	}
	if r.Toggle {
		on, err := v.Toggle(r.Message, r.Emoji)
		if err != nil {
			return err
		}
		if r.JSON {
			return printers.JSON(out, map[string]any{"emoji": r.Emoji, "reacted": on})
		}
		state := "removed"
		if on {
			state = "added"
		}
		_, _ = fmt.Fprintf(out, "%s %s\n", r.Emoji, state)
		return nil
	}

	reaction, err := v.React(r.Message, r.Emoji)
	if err != nil {
		return err
	}
	if r.JSON {
		return printers.JSON(out, reaction)
	}
	_, _ = fmt.Fprintf(out, "%s %s\n", r.Emoji, color.New(color.Faint).Sprint(reaction.ID))
	return nil
}

// Unreact removes a reaction by id.
type Unreact struct {
	Store    *conversation.Store
	Notify   chat.Notifier
	Chatroom string
	Message  string
	Reaction string
}

func (u *Unreact) Do(_ context.Context) error {
	v, err := open(u.Store, u.Chatroom, "", u.Notify)
	if err != nil {
		return err
	}
	defer v.Close()
	return v.Unreact(u.Message, u.Reaction)
}

func open(s *conversation.Store, ref, user string, n chat.Notifier) (*chat.View, error) {
	if s == nil {
		return nil, errNoStore
	}
	id, err := s.Resolve(ref)
	if err != nil {
		return nil, err
	}
	var opts []chat.Option
	if user != "" {
		opts = append(opts, chat.WithUser(user))
	}
	if n != nil {
		opts = append(opts, chat.WithNotifier(n))
	}
	v := chat.New(s, nil, opts...)
	if err := v.Open(id); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}
