package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/chatroom/pkg/countries"
	"tableflip.dev/chatroom/pkg/message"
)

// PrettyPrint renders chatrooms and threads for a terminal.
type PrettyPrint struct {
	ShowID bool
	// User marks reactions made by this user id.
	User string
	Out  io.Writer
}

const indent = "    "

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = fmt.Fprintln(pp.out(), t.Sprint(title))
}

// Chatrooms lists rooms, marking the current one.
func (pp *PrettyPrint) Chatrooms(rooms []*message.Chatroom, current string) {
	if len(rooms) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = fmt.Fprintln(pp.out(), f.Sprint(" no chatrooms"))
		return
	}
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("", bold.Sprint("ID"), bold.Sprint("TITLE"), bold.Sprint("MESSAGES"), bold.Sprint("LAST ACTIVITY"))
	for _, room := range rooms {
		mark := ""
		if room.ID == current {
			mark = color.New(color.FgGreen).Sprint("*")
		}
		tbl.AddRow(mark, faint.Sprint(room.ID), room.Title, message.Count(room.Messages), Ago(room.LastActivity().Time, time.Now()))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Thread prints every message of a room, replies indented under their
// parent.
func (pp *PrettyPrint) Thread(room *message.Chatroom, typing bool) {
	pp.Title(room.Title)
	if pp.ShowID {
		_, _ = fmt.Fprintln(pp.out(), color.New(color.Faint).Sprint(room.ID))
	}
	if len(room.Messages) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = fmt.Fprintln(pp.out(), f.Sprint(" no messages yet"))
	}
	message.Walk(room.Messages, func(m *message.Message, depth int) {
		pp.Message(m, depth)
	})
	if typing {
		f := color.New(color.Faint, color.Italic)
		_, _ = fmt.Fprintln(pp.out(), f.Sprint("assistant is typing..."))
	}
}

// Message prints one message at the given nesting depth.
func (pp *PrettyPrint) Message(m *message.Message, depth int) {
	pad := strings.Repeat(indent, depth)
	who := color.New(color.Bold, color.FgCyan)
	if m.Role == message.RoleAssistant {
		who = color.New(color.Bold, color.FgMagenta)
	}
	faint := color.New(color.Faint)

	head := who.Sprint(m.Role.String()) + " " + faint.Sprint(m.Timestamp.Local().Format(time.Kitchen))
	if pp.ShowID {
		head += " " + color.New(color.FgHiYellow, color.Faint).Sprint(m.ID)
	}
	_, _ = fmt.Fprintln(pp.out(), pad+head)
	for _, line := range strings.Split(m.Content, "\n") {
		_, _ = fmt.Fprintln(pp.out(), pad+"  "+line)
	}
	if m.Image != "" {
		_, _ = fmt.Fprintln(pp.out(), pad+"  "+faint.Sprint("[image]"))
	}
	if len(m.Reactions) > 0 {
		_, _ = fmt.Fprintln(pp.out(), pad+"  "+pp.reactions(m.Reactions))
	}
}

func (pp *PrettyPrint) reactions(rs []message.Reaction) string {
	mine := color.New(color.FgHiBlue)
	parts := make([]string, 0, len(rs))
	for _, g := range message.GroupReactions(rs) {
		part := fmt.Sprintf("%s %d", g.Emoji, g.Count)
		for _, u := range g.UserIDs {
			if u == pp.User && pp.User != "" {
				part = mine.Sprint(part)
				break
			}
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "  ")
}

// Countries lists dial codes.
func (pp *PrettyPrint) Countries(list []countries.Country) {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("", bold.Sprint("CODE"), bold.Sprint("DIAL"), bold.Sprint("COUNTRY"))
	for _, c := range list {
		tbl.AddRow(c.Flag, c.CCA2, countries.DialCode(c), c.Name.Common)
	}
	tbl.RightAlign(2)
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Ago renders a coarse relative time.
func Ago(then, now time.Time) string {
	if then.IsZero() {
		return "never"
	}
	d := now.Sub(then)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	}
	return then.Local().Format("Jan 2")
}
