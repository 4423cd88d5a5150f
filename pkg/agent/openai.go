package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rovelight/scribe/pkg/reply"
)

const defaultMaxTokens = 4096

// OpenAIConfig holds the settings an OpenAI agent is constructed with.
// Settings are resolved by the caller and injected here; the agent never
// reads the environment itself.
type OpenAIConfig struct {
	APIKey       string
	Model        string
	Instructions string
	MaxTokens    int64
}

// OpenAIAgent implements the Agent interface for OpenAI chat models.
type OpenAIAgent struct {
	client       openai.Client
	model        string
	instructions string
	maxTokens    int64
}

// NewOpenAIAgent creates a new OpenAI agent.
func NewOpenAIAgent(cfg OpenAIConfig) (*OpenAIAgent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	client := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &OpenAIAgent{
		client:       client,
		model:        cfg.Model,
		instructions: cfg.Instructions,
		maxTokens:    cfg.MaxTokens,
	}, nil
}

// Name returns the agent identifier.
func (a *OpenAIAgent) Name() string {
	return "openai"
}

// Invoke sends a prompt to OpenAI and returns the normalized reply.
func (a *OpenAIAgent) Invoke(ctx context.Context, input string) (*reply.Reply, error) {
	resp, err := a.client.Chat.Completions.New(ctx, a.params(input))
	if err != nil {
		return nil, wrapOpenAIError(a.Name(), err)
	}

	if len(resp.Choices) == 0 {
		return nil, &TransportError{Err: fmt.Errorf("openai returned no choices")}
	}

	r := reply.New(resp.Choices[0].Message.Content).
		WithMetadata("agent", a.Name()).
		WithMetadata("model", a.model)
	if resp.Usage.TotalTokens > 0 {
		r.WithMetadata("usage", map[string]any{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		})
	}
	return r, nil
}

// InvokeStream sends a prompt and yields the response as text deltas.
func (a *OpenAIAgent) InvokeStream(ctx context.Context, input string) (*Stream, error) {
	sse := a.client.Chat.Completions.NewStreaming(ctx, a.params(input))
	return NewStream(ctx, func(ctx context.Context, ch chan<- string) error {
		defer sse.Close()
		for sse.Next() {
			chunk := sse.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			if err := send(ctx, ch, delta); err != nil {
				return err
			}
		}
		if err := sse.Err(); err != nil {
			return wrapOpenAIError(a.Name(), err)
		}
		return nil
	}), nil
}

func (a *OpenAIAgent) params(input string) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if a.instructions != "" {
		messages = append(messages, openai.SystemMessage(a.instructions))
	}
	messages = append(messages, openai.UserMessage(input))
	return openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(a.model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(a.maxTokens),
	}
}

func wrapOpenAIError(name string, err error) error {
	status := 0
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		status = apierr.StatusCode
	}
	return &TransportError{Status: status, Err: fmt.Errorf("%s API error: %w", name, err)}
}
