package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/rovelight/scribe/pkg/reply"
	"google.golang.org/genai"
)

// GoogleConfig holds the settings a Google Gemini agent is constructed with.
type GoogleConfig struct {
	APIKey       string
	Model        string
	Instructions string
}

// GoogleAgent implements the Agent interface for Gemini models.
type GoogleAgent struct {
	client       *genai.Client
	model        string
	instructions string
}

// NewGoogleAgent creates a new Google Gemini agent.
func NewGoogleAgent(cfg GoogleConfig) (*GoogleAgent, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}

	return &GoogleAgent{
		client:       client,
		model:        cfg.Model,
		instructions: cfg.Instructions,
	}, nil
}

// Name returns the agent identifier.
func (a *GoogleAgent) Name() string {
	return "google"
}

// Invoke sends a prompt to Gemini and returns the normalized reply.
func (a *GoogleAgent) Invoke(ctx context.Context, input string) (*reply.Reply, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(input), a.generateConfig())
	if err != nil {
		return nil, wrapGoogleError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &TransportError{Err: fmt.Errorf("google returned no candidates")}
	}

	var content string
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text != "" {
				content += part.Text
			}
		}
	}

	return reply.New(content).
		WithMetadata("agent", a.Name()).
		WithMetadata("model", a.model), nil
}

// InvokeStream sends a prompt and yields the response as text deltas.
func (a *GoogleAgent) InvokeStream(ctx context.Context, input string) (*Stream, error) {
	return NewStream(ctx, func(ctx context.Context, ch chan<- string) error {
		for resp, err := range a.client.Models.GenerateContentStream(ctx, a.model, genai.Text(input), a.generateConfig()) {
			if err != nil {
				return wrapGoogleError(err)
			}
			if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				continue
			}
			for _, part := range resp.Candidates[0].Content.Parts {
				if part.Text == "" {
					continue
				}
				if err := send(ctx, ch, part.Text); err != nil {
					return err
				}
			}
		}
		return nil
	}), nil
}

func (a *GoogleAgent) generateConfig() *genai.GenerateContentConfig {
	if a.instructions == "" {
		return nil
	}
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: a.instructions}},
		},
	}
}

func wrapGoogleError(err error) error {
	status := 0
	var apierr genai.APIError
	if errors.As(err, &apierr) {
		status = apierr.Code
	}
	return &TransportError{Status: status, Err: fmt.Errorf("google API error: %w", err)}
}
