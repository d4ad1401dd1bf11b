package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendPress/internal/config"
	"TrendPress/internal/domain"
)

func TestChatGPTComplete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "moonshot-v1-8k", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, defaultSystemPrompt, req.Messages[0].Content)
		assert.Equal(t, "write a title", req.Messages[1].Content)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Generated"}}]}`))
	}))
	defer server.Close()

	client := NewChatGPTClient(config.BackendConfig{Endpoint: server.URL, Model: "moonshot-v1-8k", APIKey: "key"})

	got, err := client.Complete(context.Background(), "write a title")
	require.NoError(t, err)
	assert.Equal(t, "Generated", got)
}

func TestChatGPTCompleteErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewChatGPTClient(config.BackendConfig{Endpoint: server.URL, Model: "gpt-4", APIKey: "key"})

	_, err := client.Complete(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestChatGPTCompleteMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewChatGPTClient(config.BackendConfig{Endpoint: "http://localhost", Model: "gpt-4"})
	_, err := client.Complete(context.Background(), "p")
	assert.True(t, errors.Is(err, domain.ErrBackendUnavailable))
}

func TestClaudeComplete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		assert.Equal(t, "key", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "Hello from Claude"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 3, "output_tokens": 4}
		}`))
	}))
	defer server.Close()

	client := NewClaudeClient(config.BackendConfig{
		Provider: config.ProviderClaude,
		Endpoint: server.URL + "/",
		Model:    "claude-sonnet-4-5",
		APIKey:   "key",
		Timeout:  5 * time.Second,
	})

	got, err := client.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello from Claude", got)
}

func TestClaudeUnconfigured(t *testing.T) {
	t.Parallel()

	client := NewClaudeClient(config.BackendConfig{Provider: config.ProviderClaude})
	_, err := client.Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestNewSelectsProvider(t *testing.T) {
	t.Parallel()

	assert.Nil(t, New(config.BackendConfig{}))
	assert.IsType(t, &ChatGPTClient{}, New(config.BackendConfig{APIKey: "k"}))
	assert.IsType(t, &ClaudeClient{}, New(config.BackendConfig{APIKey: "k", Provider: config.ProviderClaude}))
}
