package message

import (
	"encoding/json"
	"testing"
	"time"
)

func TestWithReactionReplacesSamePair(t *testing.T) {
	m := New("m1", RoleUser, "hi", Now())
	m = m.WithReaction(Reaction{ID: "r1", Emoji: "👍", UserID: "u1"})
	m = m.WithReaction(Reaction{ID: "r2", Emoji: "❤️", UserID: "u1"})
	m = m.WithReaction(Reaction{ID: "r3", Emoji: "👍", UserID: "u1"})

	if len(m.Reactions) != 2 {
		t.Fatalf("expected 2 reactions, got %d", len(m.Reactions))
	}
	if m.Reactions[0].ID != "r2" || m.Reactions[1].ID != "r3" {
		t.Fatalf("expected replacement appended last, got %+v", m.Reactions)
	}
	if r, ok := m.ReactionBy("u1", "👍"); !ok || r.ID != "r3" {
		t.Fatalf("expected r3 for u1/👍, got %+v", r)
	}
}

func TestWithReactionDoesNotMutate(t *testing.T) {
	orig := New("m1", RoleUser, "hi", Now())
	orig.Reactions = []Reaction{{ID: "r1", Emoji: "👍", UserID: "u1"}}
	next := orig.WithReaction(Reaction{ID: "r2", Emoji: "👍", UserID: "u2"})
	if len(orig.Reactions) != 1 {
		t.Fatalf("original reactions changed: %+v", orig.Reactions)
	}
	next = next.WithoutReaction("r1")
	if len(next.Reactions) != 1 || next.Reactions[0].ID != "r2" {
		t.Fatalf("expected only r2, got %+v", next.Reactions)
	}
	if len(orig.Reactions) != 1 {
		t.Fatalf("original reactions changed: %+v", orig.Reactions)
	}
}

func TestGroupReactions(t *testing.T) {
	groups := GroupReactions([]Reaction{
		{Emoji: "👍", UserID: "u1"},
		{Emoji: "🎉", UserID: "u1"},
		{Emoji: "👍", UserID: "u2"},
	})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Emoji != "👍" || groups[0].Count != 2 {
		t.Fatalf("unexpected first group %+v", groups[0])
	}
	if groups[1].Emoji != "🎉" || groups[1].Count != 1 {
		t.Fatalf("unexpected second group %+v", groups[1])
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole(" Assistant "); err != nil || r != RoleAssistant {
		t.Fatalf("expected assistant, got %q, %v", r, err)
	}
	if _, err := ParseRole("system"); err == nil {
		t.Fatalf("expected error for unknown role")
	}
}

func TestChatroomRoundTripKeepsTimes(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 30, 15, 123456789, time.UTC)
	room := &Chatroom{
		ID:        "chatroom-1",
		Title:     "Trip Planning",
		CreatedAt: Timestamp{Time: created},
		Messages:  []*Message{New("m1", RoleUser, "Hi", Timestamp{Time: created.Add(time.Minute)})},
	}
	room.Messages[0] = room.Messages[0].WithReaction(Reaction{
		ID: "r1", Emoji: "👍", UserID: "u1", Timestamp: Timestamp{Time: created.Add(2 * time.Minute)},
	})

	b, err := json.Marshal(room)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Chatroom
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("expected %v, got %v", created, got.CreatedAt)
	}
	if !got.Messages[0].Reactions[0].Timestamp.Equal(created.Add(2 * time.Minute)) {
		t.Fatalf("reaction timestamp not restored: %v", got.Messages[0].Reactions[0].Timestamp)
	}
	if !got.LastActivity().Equal(created.Add(time.Minute)) {
		t.Fatalf("unexpected last activity %v", got.LastActivity())
	}
}

func TestTimestampEmpty(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`""`), &ts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !ts.IsZero() {
		t.Fatalf("expected zero time")
	}
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Fatalf("expected parse error")
	}
}
