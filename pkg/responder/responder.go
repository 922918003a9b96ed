// Package responder produces assistant replies to user prompts.
package responder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tableflip.dev/chatroom/pkg/store"
)

// Responder answers a prompt. Implementations must honour ctx cancellation.
type Responder interface {
	Respond(ctx context.Context, prompt string) (string, error)
}

// Kinds understood by New.
const (
	KindCanned = "canned"
	KindOpenAI = "openai"
)

var ErrMissingToken = errors.New("responder: openai token required")

// Config selects and tunes a Responder.
type Config struct {
	Kind     string
	MinDelay time.Duration
	MaxDelay time.Duration
	OpenAI   store.OpenAIConfig
	Logger   *slog.Logger
}

// ConfigFrom maps the file configuration onto a responder Config.
func ConfigFrom(f *store.FileConfig) Config {
	return Config{
		Kind:     f.Responder,
		MinDelay: f.MinDelay,
		MaxDelay: f.MaxDelay,
		OpenAI:   f.OpenAI,
	}
}

// New builds the responder named by cfg.Kind. An empty kind means canned.
func New(cfg Config) (Responder, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", KindCanned:
		return NewCanned(cfg.MinDelay, cfg.MaxDelay), nil
	case KindOpenAI:
		if cfg.OpenAI.Token == "" {
			return nil, ErrMissingToken
		}
		return NewOpenAI(cfg.OpenAI, cfg.Logger), nil
	}
	return nil, fmt.Errorf("responder: unknown kind %q", cfg.Kind)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
