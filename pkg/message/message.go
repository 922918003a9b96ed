// Package message defines chatrooms, messages, reactions and the recursive
// reply tree that holds them.
package message

import (
	"fmt"
	"strings"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, nil
	case RoleAssistant:
		return RoleAssistant, nil
	}
	return "", fmt.Errorf("message: unknown role %q", s)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

func (r Role) String() string {
	return string(r)
}

// Reaction is an emoji attached to a message by one user.
type Reaction struct {
	ID        string    `json:"id"`
	Emoji     string    `json:"emoji"`
	UserID    string    `json:"userId"`
	Timestamp Timestamp `json:"timestamp"`
}

// Message is a unit of conversation. Replies are full messages, so a thread
// can nest to any depth.
type Message struct {
	ID        string     `json:"id"`
	Content   string     `json:"content"`
	Role      Role       `json:"role"`
	Timestamp Timestamp  `json:"timestamp"`
	Image     string     `json:"image,omitempty"`
	Reactions []Reaction `json:"reactions"`
	ThreadID  string     `json:"threadId,omitempty"`
	Replies   []*Message `json:"replies"`
}

// New builds a message with empty reaction and reply sequences.
func New(id string, role Role, content string, at Timestamp) *Message {
	return &Message{
		ID:        id,
		Content:   content,
		Role:      role,
		Timestamp: at,
		Reactions: []Reaction{},
		Replies:   []*Message{},
	}
}

// WithReaction returns a copy of m holding r. Any reaction from the same
// user with the same emoji is replaced, so a user holds at most one reaction
// per emoji while still being free to add different emojis.
func (m *Message) WithReaction(r Reaction) *Message {
	cp := *m
	cp.Reactions = make([]Reaction, 0, len(m.Reactions)+1)
	for _, existing := range m.Reactions {
		if existing.UserID == r.UserID && existing.Emoji == r.Emoji {
			continue
		}
		cp.Reactions = append(cp.Reactions, existing)
	}
	cp.Reactions = append(cp.Reactions, r)
	return &cp
}

// WithoutReaction returns a copy of m without the reaction carrying id.
func (m *Message) WithoutReaction(id string) *Message {
	cp := *m
	cp.Reactions = make([]Reaction, 0, len(m.Reactions))
	for _, existing := range m.Reactions {
		if existing.ID == id {
			continue
		}
		cp.Reactions = append(cp.Reactions, existing)
	}
	return &cp
}

// WithReply returns a copy of m with reply appended to its replies.
func (m *Message) WithReply(reply *Message) *Message {
	cp := *m
	cp.Replies = make([]*Message, 0, len(m.Replies)+1)
	cp.Replies = append(cp.Replies, m.Replies...)
	cp.Replies = append(cp.Replies, reply)
	return &cp
}

// ReactionBy finds the reaction a user left with emoji, if any.
func (m *Message) ReactionBy(userID, emoji string) (Reaction, bool) {
	for _, r := range m.Reactions {
		if r.UserID == userID && r.Emoji == emoji {
			return r, true
		}
	}
	return Reaction{}, false
}

// ReactionGroup summarises the reactions sharing one emoji.
type ReactionGroup struct {
	Emoji   string   `json:"emoji"`
	Count   int      `json:"count"`
	UserIDs []string `json:"userIds"`
}

// GroupReactions groups reactions by emoji in first-seen order.
func GroupReactions(reactions []Reaction) []ReactionGroup {
	index := make(map[string]int)
	groups := make([]ReactionGroup, 0)
	for _, r := range reactions {
		i, ok := index[r.Emoji]
		if !ok {
			i = len(groups)
			index[r.Emoji] = i
			groups = append(groups, ReactionGroup{Emoji: r.Emoji})
		}
		groups[i].Count++
		groups[i].UserIDs = append(groups[i].UserIDs, r.UserID)
	}
	return groups
}

// Chatroom is a named, ordered sequence of top-level messages.
type Chatroom struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt Timestamp  `json:"createdAt"`
	Messages  []*Message `json:"messages"`
}

// LastActivity is the newest timestamp found anywhere in the room, falling
// back to the creation time.
func (c *Chatroom) LastActivity() Timestamp {
	latest := c.CreatedAt
	Walk(c.Messages, func(m *Message, _ int) {
		if m.Timestamp.After(latest.Time) {
			latest = m.Timestamp
		}
	})
	return latest
}
