package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"TrendPress/internal/config"
	"TrendPress/internal/domain"
	"TrendPress/internal/ports"
)

// ClaudeClient implements ports.Backend on the Anthropic Messages API.
type ClaudeClient struct {
	client       anthropic.Client
	model        string
	systemPrompt string
	maxTokens    int64
	configured   bool
}

var _ ports.Backend = (*ClaudeClient)(nil)

// NewClaudeClient builds a client from configuration. Endpoint overrides the API base URL.
func NewClaudeClient(cfg config.BackendConfig) *ClaudeClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}

	maxTokens := int64(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	return &ClaudeClient{
		client:       anthropic.NewClient(opts...),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    maxTokens,
		configured:   cfg.APIKey != "" && cfg.Model != "",
	}
}

// Name identifies the backend in logs and metrics.
func (c *ClaudeClient) Name() string {
	return "claude"
}

// Complete sends the prompt as a single user turn and joins the returned text blocks.
func (c *ClaudeClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil || !c.configured {
		return "", domain.ErrBackendUnavailable
	}

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: safePrompt(c.systemPrompt)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude messages: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("claude returned no text")
	}
	return b.String(), nil
}
