package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyberio/backend/internal/config"
	"github.com/cyberio/backend/internal/domain"
)

func TestNewResponder_FallsBackToSimulated(t *testing.T) {
	r := NewResponder(config.AIConfig{})
	assert.Equal(t, "simulated", r.Name())
	assert.False(t, r.Configured())

	reply, err := r.Respond(context.Background(), &domain.Agent{AgentType: domain.DefaultAgentType}, "hi")
	require.NoError(t, err)
	assert.Equal(t, "AI client not configured", reply.Message)
	assert.Equal(t, "simulated", reply.Status)
}

func TestOpenAIResponder_Respond(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Rotate the leaked key."}}],
			"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
		}`))
	}))
	defer srv.Close()

	r, err := NewOpenAIResponder(config.AIConfig{APIKey: "sk-test"}, option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)
	assert.True(t, r.Configured())

	reply, err := r.Respond(context.Background(), &domain.Agent{AgentType: "security-reviewer"}, "what now?")
	require.NoError(t, err)
	assert.Equal(t, "Rotate the leaked key.", reply.Message)
	assert.Equal(t, "answered", reply.Status)
	assert.Equal(t, "gpt-4o-mini", reply.Model)

	assert.Equal(t, DefaultModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "security-reviewer")
	assert.Equal(t, "what now?", got.Messages[1].Content)
}

func TestOpenAIResponder_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "slow down", "type": "rate_limit"}}`))
	}))
	defer srv.Close()

	r, err := NewOpenAIResponder(config.AIConfig{APIKey: "sk-test"}, option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)

	_, err = r.Respond(context.Background(), &domain.Agent{AgentType: "x"}, "hi")
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestNewOpenAIResponder_RequiresKey(t *testing.T) {
	_, err := NewOpenAIResponder(config.AIConfig{})
	assert.ErrorIs(t, err, ErrAPIKeyNotSet)
}
