// Package teaui is a terminal chat page over chat.View: a scrolling thread,
// an input line and a typing spinner.
package teaui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/chatroom/pkg/chat"
	"tableflip.dev/chatroom/pkg/conversation"
	"tableflip.dev/chatroom/pkg/message"
	"tableflip.dev/chatroom/pkg/responder"
)

const help = "enter send · /reply <id> · /react <id> <emoji> · /ids · esc quit"

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	faintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type exchangeMsg struct {
	ex  *chat.Exchange
	err error
}

type noticeMsg string

// notices forwards View notices into the program. Sends never block.
type notices chan string

func (n notices) Success(title string) {
	select {
	case n <- title:
	default:
	}
}

func (n notices) Failure(title string, err error) {
	select {
	case n <- fmt.Sprintf("%s: %v", title, err):
	default:
	}
}

// Model contains UI state.
type Model struct {
	store   *conversation.Store
	view    *chat.View
	ctx     context.Context
	notices notices

	input   textinput.Model
	spinner spinner.Model

	replyTo string
	showIDs bool
	pending int
	status  string

	termWidth  int
	termHeight int
}

// New builds a model for chatroomID. The room becomes the current chatroom.
func New(ctx context.Context, s *conversation.Store, r responder.Responder, user, chatroomID string) (Model, error) {
	n := make(notices, 8)
	v := chat.New(s, r, chat.WithNotifier(n), chat.WithUser(user))
	if err := v.Open(chatroomID); err != nil {
		return Model{}, err
	}

	ti := textinput.New()
	ti.Placeholder = "Message"
	ti.CharLimit = 2000
	ti.Prompt = "> "
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		store:   s,
		view:    v,
		ctx:     ctx,
		notices: n,
		input:   ti,
		spinner: sp,
		status:  help,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitNotice())
}

func (m Model) waitNotice() tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(<-m.notices)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.input.SetWidth(max(msg.Width-4, 10))
	case noticeMsg:
		m.status = string(msg)
		cmds = append(cmds, m.waitNotice())
	case exchangeMsg:
		m.pending--
		if msg.err != nil {
			m.status = "ERR: " + msg.err.Error()
		}
	case spinner.TickMsg:
		if m.pending > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.view.Close()
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text == "" {
				return m, nil
			}
			if strings.HasPrefix(text, "/") {
				return m.command(text)
			}
			m.pending++
			cmds = append(cmds, m.send(text, m.replyTo))
			if m.pending == 1 {
				cmds = append(cmds, m.spinner.Tick)
			}
			m.replyTo = ""
			return m, tea.Batch(cmds...)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// send posts text, as a reply when parentID is set, off the UI goroutine.
func (m Model) send(text, parentID string) tea.Cmd {
	v, ctx := m.view, m.ctx
	return func() tea.Msg {
		d := conversation.Draft{Content: text}
		var (
			ex  *chat.Exchange
			err error
		)
		if parentID == "" {
			ex, err = v.Send(ctx, d)
		} else {
			ex, err = v.Reply(ctx, parentID, d)
		}
		return exchangeMsg{ex: ex, err: err}
	}
}

func (m Model) command(text string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(text)
	switch fields[0] {
	case "/reply":
		if len(fields) == 1 {
			m.replyTo = ""
			m.status = help
			return m, nil
		}
		if len(fields) != 2 {
			m.status = "usage: /reply <message-id>"
			return m, nil
		}
		if _, err := m.store.Message(m.roomID(), fields[1]); err != nil {
			m.status = "ERR: " + err.Error()
			return m, nil
		}
		m.replyTo = fields[1]
		m.status = "replying to " + fields[1]
	case "/react":
		if len(fields) != 3 {
			m.status = "usage: /react <message-id> <emoji>"
			return m, nil
		}
		if _, err := m.view.Toggle(fields[1], fields[2]); err != nil {
			m.status = "ERR: " + err.Error()
		}
	case "/ids":
		m.showIDs = !m.showIDs
	case "/quit":
		m.view.Close()
		return m, tea.Quit
	default:
		m.status = "unknown command " + fields[0]
	}
	return m, nil
}

func (m Model) roomID() string {
	room, err := m.view.Chatroom()
	if err != nil {
		return ""
	}
	return room.ID
}

// View renders the thread above the input line, trimmed to the terminal.
func (m Model) View() string {
	room, err := m.view.Chatroom()
	if err != nil {
		return errStyle.Render(err.Error()) + "\n"
	}

	lines := []string{titleStyle.Render(room.Title)}
	message.Walk(room.Messages, func(msg *message.Message, depth int) {
		lines = append(lines, m.renderMessage(msg, depth)...)
	})
	if len(room.Messages) == 0 {
		lines = append(lines, faintStyle.Italic(true).Render("no messages yet"))
	}
	if m.pending > 0 || m.store.Typing() {
		lines = append(lines, m.spinner.View()+" "+faintStyle.Italic(true).Render("assistant is typing..."))
	}

	var footer []string
	if m.replyTo != "" {
		footer = append(footer, faintStyle.Render("replying to "+m.replyTo))
	}
	footer = append(footer, m.input.View(), faintStyle.Render(m.status))

	if m.termHeight > 0 {
		avail := m.termHeight - len(footer) - 1
		if avail < 1 {
			avail = 1
		}
		if len(lines) > avail {
			lines = lines[len(lines)-avail:]
		}
	}
	return strings.Join(lines, "\n") + "\n\n" + strings.Join(footer, "\n")
}

func (m Model) renderMessage(msg *message.Message, depth int) []string {
	indent := strings.Repeat("    ", depth)
	name := userStyle.Render("you")
	if msg.Role == message.RoleAssistant {
		name = assistantStyle.Render("assistant")
	}
	head := indent + name + " " + faintStyle.Render(msg.Timestamp.Format("15:04"))
	if m.showIDs {
		head += " " + faintStyle.Render(msg.ID)
	}
	out := []string{head}

	body := msg.Content
	if m.termWidth > 0 {
		body = wordwrap.String(body, max(m.termWidth-len(indent)-2, 20))
	}
	for _, line := range strings.Split(body, "\n") {
		out = append(out, indent+"  "+line)
	}
	if msg.Image != "" {
		out = append(out, indent+"  "+faintStyle.Render("[image]"))
	}
	if groups := message.GroupReactions(msg.Reactions); len(groups) > 0 {
		parts := make([]string, 0, len(groups))
		for _, g := range groups {
			parts = append(parts, fmt.Sprintf("%s %d", g.Emoji, g.Count))
		}
		out = append(out, indent+"  "+strings.Join(parts, "  "))
	}
	return out
}

// Run opens chatroomID in the alternate screen until the user quits.
func Run(ctx context.Context, s *conversation.Store, r responder.Responder, user, chatroomID string) error {
	m, err := New(ctx, s, r, user, chatroomID)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
