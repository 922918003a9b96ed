package responder

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"
)

var cannedResponses = []string{
	"That's an interesting question! Let me think about that for a moment.",
	"I understand what you're asking. Here's my perspective on that topic.",
	"Great question! I'd be happy to help you with that.",
	"That's a thoughtful inquiry. Let me provide you with some insights.",
	"I appreciate you asking about this. Here's what I can tell you.",
	"That's something I can definitely help you with. Let me explain.",
	"Interesting point! I have some thoughts on that subject.",
	"I'm glad you brought that up. Here's my take on it.",
	"That's a complex topic, but I'll do my best to explain it clearly.",
	"Good question! I think you'll find this information helpful.",
}

const (
	greeting = "Hello! It's great to meet you. How can I assist you today?"
	helping  = "I'm here to help! What specific topic would you like assistance with?"
	welcome  = "You're very welcome! I'm always happy to help. Is there anything else you'd like to know?"
)

// Canned answers with a fixed set of replies after a simulated thinking
// delay in [MinDelay, MaxDelay).
type Canned struct {
	MinDelay time.Duration
	MaxDelay time.Duration

	// Int64N returns a value in [0, n). Defaults to math/rand/v2.
	Int64N func(n int64) int64
	// Sleep waits out the thinking delay.
	Sleep func(ctx context.Context, d time.Duration) error
}

var _ Responder = (*Canned)(nil)

func NewCanned(minDelay, maxDelay time.Duration) *Canned {
	if minDelay <= 0 && maxDelay <= 0 {
		minDelay, maxDelay = time.Second, 3*time.Second
	}
	return &Canned{MinDelay: minDelay, MaxDelay: maxDelay}
}

func (c *Canned) Respond(ctx context.Context, prompt string) (string, error) {
	if err := c.sleep(ctx, c.delay()); err != nil {
		return "", err
	}
	return c.pick(prompt), nil
}

func (c *Canned) delay() time.Duration {
	if c.MaxDelay <= c.MinDelay {
		return c.MinDelay
	}
	return c.MinDelay + time.Duration(c.int64N(int64(c.MaxDelay-c.MinDelay)))
}

// pick applies the keyword overrides before falling back to a random answer.
// "hi" must stand alone as a word, unlike the other keywords, so words such as
// "this" or "which" do not read as a greeting.
func (c *Canned) pick(prompt string) string {
	lower := strings.ToLower(prompt)
	switch {
	case strings.Contains(lower, "hello") || hasWord(lower, "hi"):
		return greeting
	case strings.Contains(lower, "help"):
		return helping
	case strings.Contains(lower, "thank"):
		return welcome
	}
	return cannedResponses[c.int64N(int64(len(cannedResponses)))]
}

func (c *Canned) int64N(n int64) int64 {
	if c.Int64N != nil {
		return c.Int64N(n)
	}
	return rand.Int64N(n)
}

func (c *Canned) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	return sleep(ctx, d)
}

// hasWord reports whether word appears in s delimited by non-letters.
func hasWord(s, word string) bool {
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	}) {
		if f == word {
			return true
		}
	}
	return false
}
