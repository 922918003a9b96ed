// Package mcp exposes the conversation store over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tableflip.dev/chatroom/pkg/chat"
	"tableflip.dev/chatroom/pkg/conversation"
	"tableflip.dev/chatroom/pkg/message"
	"tableflip.dev/chatroom/pkg/responder"
)

// Service coordinates the store operations shared by MCP tools and resources.
type Service struct {
	Store     *conversation.Store
	Responder responder.Responder
	// User is recorded on reactions when the caller names none.
	User string
	Log  *slog.Logger
}

// ChatroomSummary describes a chatroom without its messages.
type ChatroomSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    string `json:"createdAt"`
	MessageCount int    `json:"messageCount"`
	LastActivity string `json:"lastActivity,omitempty"`
	Current      bool   `json:"current"`
}

// PostOptions captures a new message or reply.
type PostOptions struct {
	Chatroom string
	ParentID string
	Content  string
	Image    string
	Role     message.Role
	// Respond asks the responder for an answer to a user message.
	Respond bool
}

// PostResult is the stored message and, when requested, the answer.
type PostResult struct {
	Message *message.Message `json:"message"`
	Answer  *message.Message `json:"answer,omitempty"`
}

var errNoStore = errors.New("conversation store is not configured")

// NewService builds a service wrapper around the provided store.
func NewService(s *conversation.Store, r responder.Responder) *Service {
	return &Service{Store: s, Responder: r, User: "me"}
}

func (s *Service) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

// ListChatrooms summarizes the chatrooms whose title contains query, ignoring
// case, in creation order. An empty query lists them all.
func (s *Service) ListChatrooms(_ context.Context, query string) ([]ChatroomSummary, error) {
	if s.Store == nil {
		return nil, errNoStore
	}
	current, _ := s.Store.CurrentChatroom()
	rooms := s.Store.Search(query)
	out := make([]ChatroomSummary, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, summarize(room, current))
	}
	return out, nil
}

func summarize(room *message.Chatroom, current string) ChatroomSummary {
	sum := ChatroomSummary{
		ID:           room.ID,
		Title:        room.Title,
		CreatedAt:    message.FormatTime(room.CreatedAt.Time),
		MessageCount: message.Count(room.Messages),
		Current:      room.ID == current,
	}
	if last := room.LastActivity(); !last.IsZero() {
		sum.LastActivity = message.FormatTime(last.Time)
	}
	return sum
}

// Messages returns one page of a chatroom's top-level messages.
func (s *Service) Messages(_ context.Context, id, before string, limit int) (conversation.MessagePage, error) {
	if s.Store == nil {
		return conversation.MessagePage{}, errNoStore
	}
	return s.Store.Messages(strings.TrimSpace(id), strings.TrimSpace(before), limit)
}

// Chatroom returns a chatroom with its full thread tree.
func (s *Service) Chatroom(_ context.Context, id string) (*message.Chatroom, error) {
	if s.Store == nil {
		return nil, errNoStore
	}
	id = strings.TrimSpace(id)
	room, ok := s.Store.Chatroom(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", conversation.ErrChatroomNotFound, id)
	}
	return room, nil
}

func (s *Service) CreateChatroom(_ context.Context, title string) (ChatroomSummary, error) {
	if s.Store == nil {
		return ChatroomSummary{}, errNoStore
	}
	id, err := s.Store.CreateChatroom(title)
	if err != nil {
		return ChatroomSummary{}, err
	}
	room, _ := s.Store.Chatroom(id)
	current, _ := s.Store.CurrentChatroom()
	return summarize(room, current), nil
}

func (s *Service) DeleteChatroom(_ context.Context, id string) error {
	if s.Store == nil {
		return errNoStore
	}
	return s.Store.DeleteChatroom(strings.TrimSpace(id))
}

// Post stores a message or reply. User messages may be answered by the
// responder, in which case the room becomes the current one.
func (s *Service) Post(ctx context.Context, opts PostOptions) (*PostResult, error) {
	if s.Store == nil {
		return nil, errNoStore
	}
	role := opts.Role
	if role == "" {
		role = message.RoleUser
	}
	draft := conversation.Draft{Content: opts.Content, Role: role, Image: opts.Image}

	if !opts.Respond || role != message.RoleUser || s.Responder == nil {
		var (
			m   *message.Message
			err error
		)
		if opts.ParentID == "" {
			m, err = s.Store.AddMessage(opts.Chatroom, draft)
		} else {
			m, err = s.Store.AddReply(opts.Chatroom, opts.ParentID, draft)
		}
		if err != nil {
			return nil, err
		}
		return &PostResult{Message: m}, nil
	}

	view := chat.New(s.Store, s.Responder, chat.WithUser(s.User), chat.WithNotifier(chat.LogNotifier{Log: s.logger()}))
	defer view.Close()
	if err := view.Open(opts.Chatroom); err != nil {
		return nil, err
	}
	var (
		ex  *chat.Exchange
		err error
	)
	if opts.ParentID == "" {
		ex, err = view.Send(ctx, draft)
	} else {
		ex, err = view.Reply(ctx, opts.ParentID, draft)
	}
	if ex == nil {
		return nil, err
	}
	return &PostResult{Message: ex.Prompt, Answer: ex.Answer}, err
}

func (s *Service) AddReaction(_ context.Context, chatroom, messageID, emoji, user string) (message.Reaction, error) {
	if s.Store == nil {
		return message.Reaction{}, errNoStore
	}
	if strings.TrimSpace(user) == "" {
		user = s.User
	}
	return s.Store.AddReaction(chatroom, messageID, emoji, user)
}

func (s *Service) RemoveReaction(_ context.Context, chatroom, messageID, reactionID string) error {
	if s.Store == nil {
		return errNoStore
	}
	return s.Store.RemoveReaction(chatroom, messageID, reactionID)
}
