// Package show prints one chatroom's thread tree.
package show

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/chatroom/pkg/conversation"
	"tableflip.dev/chatroom/pkg/printers"
)

type Show struct {
	Store *conversation.Store
	// Chatroom is an id or title; empty means the current chatroom.
	Chatroom string
	// Limit caps the top-level messages shown; zero shows all of them.
	Limit int
	// Before pages back from the top-level message with this id.
	Before string
	ShowID bool
	User   string
	JSON   bool
	Output io.Writer
}

func (s *Show) Do(_ context.Context) error {
	if s.Store == nil {
		return errors.New("no conversation store")
	}
	id, err := s.Store.Resolve(s.Chatroom)
	if err != nil {
		return err
	}
	room, _ := s.Store.Chatroom(id)
	if s.Limit <= 0 && s.Before == "" {
		if s.JSON {
			return printers.JSON(s.Output, room)
		}
		pp := printers.PrettyPrint{ShowID: s.ShowID, User: s.User, Out: s.Output}
		pp.Thread(room, s.Store.Typing())
		return nil
	}

	page, err := s.Store.Messages(id, s.Before, s.Limit)
	if err != nil {
		return err
	}
	if s.JSON {
		return printers.JSON(s.Output, struct {
			ID    string `json:"id"`
			Title string `json:"title"`
			conversation.MessagePage
		}{room.ID, room.Title, page})
	}

	out := s.Output
	if out == nil {
		out = color.Output
	}
	paged := *room
	paged.Messages = page.Messages
	pp := printers.PrettyPrint{ShowID: s.ShowID, User: s.User, Out: out}
	pp.Thread(&paged, s.Store.Typing() && s.Before == "")
	if page.HasMore {
		f := color.New(color.Faint, color.Italic)
		_, _ = fmt.Fprintln(out, f.Sprintf("older messages: --before %s", page.Before))
	}
	return nil
}
