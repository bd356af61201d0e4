// Package llm answers unclassified player input through an OpenAI-compatible
// chat completion API. It implements engine.Fallback.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = openai.GPT4oMini

// Config configures a Client.
type Config struct {
	APIKey    string
	BaseURL   string // optional, for OpenAI-compatible servers
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Client completes one in-character reply per call.
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
}

// ErrNoReply is returned when the API answers without any choices.
var ErrNoReply = errors.New("llm: empty completion")

// New builds a client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm: api key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	c := &Client{
		client:    openai.NewClientWithConfig(oc),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = 120
	}
	if c.timeout <= 0 {
		c.timeout = 10 * time.Second
	}
	return c, nil
}

// Complete sends the system prompt and the player's input and returns the
// reply text.
func (c *Client) Complete(ctx context.Context, system, input string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoReply
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
