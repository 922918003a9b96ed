package responder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sashabaranov/go-openai"

	"tableflip.dev/chatroom/pkg/store"
)

// OpenAI answers prompts with a chat completion.
type OpenAI struct {
	api          *openai.Client
	model        string
	systemPrompt string
}

var _ Responder = (*OpenAI)(nil)

// NewOpenAI builds a client from cfg. Transient HTTP failures are retried.
func NewOpenAI(cfg store.OpenAIConfig, log *slog.Logger) *OpenAI {
	if log == nil {
		log = slog.Default()
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = log.With("component", "openai")

	conf := openai.DefaultConfig(cfg.Token)
	if cfg.BaseURL != "" {
		conf.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	conf.HTTPClient = rc.StandardClient()

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{
		api:          openai.NewClientWithConfig(conf),
		model:        model,
		systemPrompt: cfg.SystemPrompt,
	}
}

func (o *OpenAI) Respond(ctx context.Context, prompt string) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if o.systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: o.systemPrompt})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := o.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("responder: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("responder: chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
