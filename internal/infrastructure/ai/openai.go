package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/cyberio/backend/internal/config"
	"github.com/cyberio/backend/internal/core/ports"
	"github.com/cyberio/backend/internal/domain"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 30 * time.Second

	statusAnswered = "answered"
)

var ErrAPIKeyNotSet = errors.New("ai: api key not set")

// OpenAIResponder forwards agent messages to the chat completions API.
type OpenAIResponder struct {
	client  openai.Client
	model   string
	timeout time.Duration
	now     func() time.Time
}

var _ ports.AgentResponder = (*OpenAIResponder)(nil)

func NewOpenAIResponder(cfg config.AIConfig, opts ...option.RequestOption) (*OpenAIResponder, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyNotSet
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	opts = append([]option.RequestOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	return &OpenAIResponder{
		client:  openai.NewClient(opts...),
		model:   model,
		timeout: timeout,
		now:     time.Now,
	}, nil
}

// NewResponder picks the OpenAI responder when a key is configured and the
// simulated one otherwise.
func NewResponder(cfg config.AIConfig) ports.AgentResponder {
	if r, err := NewOpenAIResponder(cfg); err == nil {
		return r
	}
	return NewSimulatedResponder()
}

func (r *OpenAIResponder) Name() string { return "openai" }

func (r *OpenAIResponder) Configured() bool { return true }

func (r *OpenAIResponder) Respond(ctx context.Context, agent *domain.Agent, message string) (*ports.AgentReply, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(r.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(agent.AgentType)),
			openai.UserMessage(message),
		},
	}

	completion, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == 429 {
			return nil, fmt.Errorf("ai: model rate limited: %w", domain.ErrUnavailable)
		}
		return nil, fmt.Errorf("ai: chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("ai: no completion choices returned")
	}

	return &ports.AgentReply{
		Message:   completion.Choices[0].Message.Content,
		Status:    statusAnswered,
		Model:     string(completion.Model),
		Timestamp: r.now().UTC(),
	}, nil
}

func systemPrompt(agentType string) string {
	return fmt.Sprintf("You are a %s assistant for the Cyberio security platform. Answer briefly.", agentType)
}
