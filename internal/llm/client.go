// Package llm adapts the OpenAI chat API to the LanguageModel capability.
// Responses are plain text with no schema guarantee; the parse helpers in this
// package exist so callers can pull structure out of them defensively.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/unanue/mostrador/pkg/ports"
)

// DefaultChatModel is used when no model is configured.
const DefaultChatModel = "gpt-4o-mini"

// ClientConfig holds configuration for the OpenAI client.
type ClientConfig struct {
	APIKey     string
	ChatModel  string
	MaxRetries int
	RetryDelay time.Duration
}

// Client wraps the OpenAI API client with retry logic.
type Client struct {
	api        *openai.Client
	chatModel  string
	maxRetries int
	retryDelay time.Duration
}

var _ ports.LanguageModel = (*Client)(nil)

// NewClient creates an OpenAI-backed language model capability.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	return &Client{
		api:        openai.NewClient(cfg.APIKey),
		chatModel:  cfg.ChatModel,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}, nil
}

// Complete renders the prompt template with the given variables and returns
// the model's raw text response. Retries with exponential backoff on
// transient failures; the context deadline wins over the retry budget.
func (c *Client) Complete(ctx context.Context, prompt string, variables map[string]string) (string, error) {
	rendered := Render(prompt, variables)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(Backoff(c.retryDelay, attempt)):
			}
		}

		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: rendered},
			},
			Temperature: 0,
		})
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = errors.New("empty completion response")
			continue
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}
	return "", fmt.Errorf("completion failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

// Render substitutes {{name}} placeholders in the prompt template.
func Render(prompt string, variables map[string]string) string {
	out := prompt
	for name, value := range variables {
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return out
}
