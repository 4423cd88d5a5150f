package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rovelight/scribe/pkg/reply"
)

// AnthropicConfig holds the settings an Anthropic agent is constructed with.
type AnthropicConfig struct {
	APIKey       string
	Model        string
	Instructions string
	MaxTokens    int64
}

// AnthropicAgent implements the Agent interface for Claude models.
type AnthropicAgent struct {
	client       anthropic.Client
	model        string
	instructions string
	maxTokens    int64
}

// NewAnthropicAgent creates a new Anthropic agent.
func NewAnthropicAgent(cfg AnthropicConfig) (*AnthropicAgent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &AnthropicAgent{
		client:       client,
		model:        cfg.Model,
		instructions: cfg.Instructions,
		maxTokens:    cfg.MaxTokens,
	}, nil
}

// Name returns the agent identifier.
func (a *AnthropicAgent) Name() string {
	return "anthropic"
}

// Invoke sends a prompt to Claude and returns the normalized reply.
func (a *AnthropicAgent) Invoke(ctx context.Context, input string) (*reply.Reply, error) {
	resp, err := a.client.Messages.New(ctx, a.params(input))
	if err != nil {
		return nil, wrapAnthropicError(err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	r := reply.New(content).
		WithMetadata("agent", a.Name()).
		WithMetadata("model", a.model)
	if resp.Usage.OutputTokens > 0 {
		r.WithMetadata("usage", map[string]any{
			"input_tokens":  resp.Usage.InputTokens,
			"output_tokens": resp.Usage.OutputTokens,
		})
	}
	return r, nil
}

// InvokeStream sends a prompt and yields the response as text deltas.
func (a *AnthropicAgent) InvokeStream(ctx context.Context, input string) (*Stream, error) {
	sse := a.client.Messages.NewStreaming(ctx, a.params(input))
	return NewStream(ctx, func(ctx context.Context, ch chan<- string) error {
		defer sse.Close()
		for sse.Next() {
			event := sse.Current()
			switch ev := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch delta := ev.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					if err := send(ctx, ch, delta.Text); err != nil {
						return err
					}
				}
			}
		}
		if err := sse.Err(); err != nil {
			return wrapAnthropicError(err)
		}
		return nil
	}), nil
}

func (a *AnthropicAgent) params(input string) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
		},
	}
	if a.instructions != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: a.instructions},
		}
	}
	return params
}

func wrapAnthropicError(err error) error {
	status := 0
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		status = apierr.StatusCode
	}
	return &TransportError{Status: status, Err: fmt.Errorf("anthropic API error: %w", err)}
}
