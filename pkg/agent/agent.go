package agent

import (
	"context"

	"github.com/rovelight/scribe/pkg/reply"
)

// Agent presents a uniform call contract over a hosted model client.
// Implementations must be safe for concurrent use: a single instance may
// serve overlapping pipeline runs.
type Agent interface {
	// Invoke sends a text prompt to the model and returns the normalized
	// reply. Provider failures surface as a *TransportError; agents never
	// panic on a failed call.
	Invoke(ctx context.Context, input string) (*reply.Reply, error)

	// Name returns the agent's identifier.
	Name() string
}

// StreamingAgent is implemented by agents that can deliver the reply as an
// incremental sequence of text chunks.
type StreamingAgent interface {
	Agent

	// InvokeStream sends a prompt and returns a single-pass stream of text
	// chunks in generation order. The caller owns closing the stream.
	InvokeStream(ctx context.Context, input string) (*Stream, error)
}

// Info holds display metadata about a configured agent.
type Info struct {
	Name  string
	Model string
}
