// Package rooms lists and manages chatrooms from the command line.
package rooms

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

// List prints every chatroom, or those whose title contains Search.
type List struct {
	Store  *conversation.Store
	Search string
	JSON   bool
	Output io.Writer
}

func (l *List) Do(_ context.Context) error {
	if l.Store == nil {
		return errNoStore
	}
	current, _ := l.Store.CurrentChatroom()
	rooms := l.Store.Search(l.Search)
	if l.JSON {
		return printers.JSON(l.Output, conversation.Snapshot{
			Version:         conversation.SnapshotVersion,
			Chatrooms:       rooms,
			CurrentChatroom: current,
		})
	}
	pp := printers.PrettyPrint{Out: l.Output}
	pp.Chatrooms(rooms, current)
	return nil
}

// Seed fills a chatroom with alternating placeholder messages.
type Seed struct {
	Store *conversation.Store
	// Ref is an id or title; empty means the current chatroom.
	Ref    string
	Count  int
	Output io.Writer
}

func (s *Seed) Do(_ context.Context) error {
	if s.Store == nil {
		return errNoStore
	}
	id, err := s.Store.Resolve(s.Ref)
	if err != nil {
		return err
	}
	seeded, err := s.Store.SeedHistory(id, s.Count)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out(s.Output), "added %d messages to %s\n", len(seeded), id)
	return nil
}

// Create makes a chatroom and switches to it.
type Create struct {
	Store  *conversation.Store
	Title  string
	JSON   bool
	Output io.Writer
	Notify chat.Notifier
}

func (c *Create) Do(_ context.Context) error {
	if c.Store == nil {
		return errNoStore
	}
	var opts []chat.Option
	if c.Notify != nil {
		opts = append(opts, chat.WithNotifier(c.Notify))
	}
	v := chat.New(c.Store, nil, opts...)
	defer v.Close()
	id, err := v.CreateChatroom(c.Title)
	if err != nil {
		return err
	}
	room, _ := c.Store.Chatroom(id)
	if c.JSON {
		return printers.JSON(c.Output, room)
	}
	_, _ = fmt.Fprintf(out(c.Output), "%s %s\n", room.ID, color.New(color.Bold).Sprint(room.Title))
	return nil
}

// Delete removes a chatroom. Unknown ids are ignored.
type Delete struct {
	Store  *conversation.Store
	ID     string
	Notify chat.Notifier
}

func (d *Delete) Do(_ context.Context) error {
	if d.Store == nil {
		return errNoStore
	}
	var opts []chat.Option
	if d.Notify != nil {
		opts = append(opts, chat.WithNotifier(d.Notify))
	}
	v := chat.New(d.Store, nil, opts...)
	defer v.Close()
	return v.DeleteChatroom(d.ID)
}

// Use makes a chatroom the current one. Ref may be an id or a title.
type Use struct {
	Store  *conversation.Store
	Ref    string
	Output io.Writer
}

func (u *Use) Do(_ context.Context) error {
	if u.Store == nil {
		return errNoStore
	}
	if u.Ref == "" {
		return u.Store.ClearCurrentChatroom()
	}
	id, err := u.Store.Resolve(u.Ref)
	if err != nil {
		return err
	}
	if err := u.Store.SetCurrentChatroom(id); err != nil {
		return err
	}
	room, _ := u.Store.Chatroom(id)
	_, _ = fmt.Fprintf(out(u.Output), "now in %s\n", color.New(color.Bold).Sprint(room.Title))
	return nil
}

func out(w io.Writer) io.Writer {
	if w == nil {
		return color.Output
	}
	return w
}
