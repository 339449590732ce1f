// Package providers wraps OpenAI-compatible chat-completions backends so
// the local vLLM server and the OpenRouter API can be driven through one
// client type.
package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"ossbench/internal/config"
)

const defaultMaxTokens = 2000

// Client issues chat-completion requests against a single backend.
type Client struct {
	name      string
	model     string
	maxTokens int64
	api       openai.Client
	logger    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithMaxTokens overrides the per-request completion token cap.
func WithMaxTokens(n int64) Option {
	return func(c *Client) {
		c.maxTokens = n
	}
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a Client from a provider config. The base URL points the
// OpenAI SDK at whichever backend this provider represents.
func New(cfg config.ProviderConfig, options ...Option) *Client {
	c := &Client{
		name:      cfg.Name,
		model:     cfg.Model,
		maxTokens: defaultMaxTokens,
		logger:    zap.NewNop(),
	}
	for _, o := range options {
		o(c)
	}
	c.api = openai.NewClient(
		option.WithBaseURL(cfg.BaseURL),
		option.WithAPIKey(cfg.APIKey),
	)
	return c
}

// Name returns the provider name, e.g. "vllm" or "openrouter".
func (c *Client) Name() string { return c.name }

// Model returns the model identifier requests are issued against.
func (c *Client) Model() string { return c.model }

// Complete sends a single user prompt and blocks until the full response
// is available.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	completion, err := c.api.Chat.Completions.New(ctx, c.params(prompt))
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", c.name, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", c.name)
	}
	return completion.Choices[0].Message.Content, nil
}

// Stream sends a single user prompt and invokes onChunk for every content
// delta as it arrives. It returns the accumulated response text. A nil
// onChunk is allowed.
func (c *Client) Stream(ctx context.Context, prompt string, onChunk func(string)) (string, error) {
	stream := c.api.Chat.Completions.NewStreaming(ctx, c.params(prompt))
	defer stream.Close()

	var buf strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		buf.WriteString(delta)
		if onChunk != nil {
			onChunk(delta)
		}
	}
	if err := stream.Err(); err != nil {
		return "", fmt.Errorf("%s stream failed: %w", c.name, err)
	}

	c.logger.Sugar().With(
		"provider", c.name,
		"model", c.model,
		"response_chars", buf.Len(),
	).Debug("stream complete")

	return buf.String(), nil
}

func (c *Client) params(prompt string) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens: openai.Int(c.maxTokens),
	}
}
