package agent

import (
	"context"
	"strings"

	"github.com/rovelight/scribe/pkg/reply"
)

// MockAgent returns deterministic responses for local runs and tests.
// With Echo set it returns its input verbatim; otherwise it answers from the
// canned response map, falling back to the default response.
type MockAgent struct {
	responses       map[string]string
	defaultResponse string
	Echo            bool
}

// NewMockAgent creates a mock agent with a default response.
func NewMockAgent() *MockAgent {
	return &MockAgent{
		responses:       make(map[string]string),
		defaultResponse: "mock response:",
	}
}

// NewMockAgentWithResponses creates a mock agent with predefined responses.
func NewMockAgentWithResponses(responses map[string]string, defaultResponse string) *MockAgent {
	if defaultResponse == "" {
		defaultResponse = "mock response:"
	}
	return &MockAgent{responses: responses, defaultResponse: defaultResponse}
}

// NewEchoAgent creates a mock agent that returns its input unchanged.
func NewEchoAgent() *MockAgent {
	m := NewMockAgent()
	m.Echo = true
	return m
}

// Name returns the agent identifier.
func (a *MockAgent) Name() string {
	return "mock"
}

// Invoke returns a deterministic reply for the prompt.
func (a *MockAgent) Invoke(_ context.Context, input string) (*reply.Reply, error) {
	return reply.New(a.respond(input)).WithMetadata("agent", a.Name()), nil
}

// InvokeStream yields the deterministic reply word by word.
func (a *MockAgent) InvokeStream(ctx context.Context, input string) (*Stream, error) {
	text := a.respond(input)
	return NewStream(ctx, func(ctx context.Context, ch chan<- string) error {
		words := strings.SplitAfter(text, " ")
		for _, w := range words {
			if err := send(ctx, ch, w); err != nil {
				return err
			}
		}
		return nil
	}), nil
}

func (a *MockAgent) respond(input string) string {
	if a.Echo {
		return input
	}
	if response, ok := a.responses[input]; ok {
		return response
	}
	return a.defaultResponse + "\n" + input
}
