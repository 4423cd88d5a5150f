package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rovelight/scribe/pkg/agent"
	"github.com/rovelight/scribe/pkg/reply"
)

type fixedAgent struct {
	name    string
	content string
	calls   int
}

func (a *fixedAgent) Name() string { return a.name }

func (a *fixedAgent) Invoke(_ context.Context, _ string) (*reply.Reply, error) {
	a.calls++
	return reply.New(a.content), nil
}

type failingAgent struct {
	name  string
	err   error
	calls int
}

func (a *failingAgent) Name() string { return a.name }

func (a *failingAgent) Invoke(_ context.Context, _ string) (*reply.Reply, error) {
	a.calls++
	return nil, a.err
}

type flakyAgent struct {
	failures int
	calls    int
}

func (a *flakyAgent) Name() string { return "flaky" }

func (a *flakyAgent) Invoke(_ context.Context, _ string) (*reply.Reply, error) {
	a.calls++
	if a.calls <= a.failures {
		return nil, &agent.TransportError{Status: 503}
	}
	return reply.New("recovered"), nil
}

func TestRunTwoStageEcho(t *testing.T) {
	research := &fixedAgent{name: "research", content: "Edge computing reduces latency."}
	writer := agent.NewEchoAgent()

	p, err := New("research-blog",
		&Stage{Name: "research", Agent: research},
		&Stage{Name: "blog", Agent: writer, Template: MustTemplate("Write a blog post about: {{ .Text }}")},
	)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	result, err := p.Run(context.Background(), "edge computing")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", result.Status)
	}
	if len(result.Replies) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(result.Replies))
	}
	if result.Replies[0].Text != "Edge computing reduces latency." {
		t.Fatalf("unexpected stage 1 text: %q", result.Replies[0].Text)
	}
	if result.Replies[1].Text != "Write a blog post about: Edge computing reduces latency." {
		t.Fatalf("unexpected stage 2 text: %q", result.Replies[1].Text)
	}
}

func TestRunStageFailureStopsPipeline(t *testing.T) {
	failing := &failingAgent{name: "research", err: &agent.TransportError{Status: 401, Err: errors.New("invalid credentials")}}
	writer := &fixedAgent{name: "blog", content: "never reached"}

	p, err := New("research-blog",
		&Stage{Name: "research", Agent: failing},
		&Stage{Name: "blog", Agent: writer},
	)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	result, err := p.Run(context.Background(), "topic")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if len(result.Replies) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(result.Replies))
	}
	if !strings.HasPrefix(result.Replies[0].Text, reply.ErrorPrefix) {
		t.Fatalf("expected error-prefixed reply, got %q", result.Replies[0].Text)
	}
	if writer.calls != 0 {
		t.Fatalf("stage 2 must not run after stage 1 failure")
	}
}

type contentOnlyAgent struct{}

func (contentOnlyAgent) Name() string { return "content-only" }

func (contentOnlyAgent) Invoke(_ context.Context, _ string) (*reply.Reply, error) {
	return reply.Normalize(contentOnly{}), nil
}

type contentOnly struct{}

func (contentOnly) Content() string { return "X" }

func TestRunNormalizesContentField(t *testing.T) {
	p, err := New("single", &Stage{Name: "only", Agent: contentOnlyAgent{}})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	result, err := p.Run(context.Background(), "topic")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Replies[0].Text != "X" {
		t.Fatalf("unexpected text: %q", result.Replies[0].Text)
	}
	if len(result.Replies[0].Metadata) != 0 {
		t.Fatalf("expected empty metadata, got %v", result.Replies[0].Metadata)
	}
}

func TestRunEmptyTopicPassesThrough(t *testing.T) {
	echo := agent.NewEchoAgent()
	p, err := New("single", &Stage{Name: "only", Agent: echo})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	result, err := p.Run(context.Background(), "   ")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Replies[0].Text != "   " {
		t.Fatalf("topic must pass through unchanged, got %q", result.Replies[0].Text)
	}
	if result.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", result.Status)
	}
}

func TestRunCancelledBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &hookAgent{hook: cancel}
	second := &fixedAgent{name: "second", content: "never"}

	p, err := New("cancellable",
		&Stage{Name: "first", Agent: first},
		&Stage{Name: "second", Agent: second},
	)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	result, err := p.Run(ctx, "topic")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if result.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if len(result.Replies) != 1 {
		t.Fatalf("expected the completed stage's reply, got %d", len(result.Replies))
	}
	if second.calls != 0 {
		t.Fatalf("second stage must not start after cancellation")
	}
}

type hookAgent struct {
	hook func()
}

func (a *hookAgent) Name() string { return "hook" }

func (a *hookAgent) Invoke(_ context.Context, _ string) (*reply.Reply, error) {
	a.hook()
	return reply.New("done"), nil
}

func TestRunRetriesTransientErrors(t *testing.T) {
	flaky := &flakyAgent{failures: 2}
	p, err := New("retrying", &Stage{Name: "only", Agent: flaky, MaxRetries: 2})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	result, err := p.Run(context.Background(), "topic")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Status != StatusCompleted {
		t.Fatalf("expected completed after retries, got %s", result.Status)
	}
	if flaky.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", flaky.calls)
	}
}

func TestRunDoesNotRetryPermanentErrors(t *testing.T) {
	failing := &failingAgent{name: "auth", err: &agent.TransportError{Status: 401}}
	p, err := New("no-retry", &Stage{Name: "only", Agent: failing, MaxRetries: 3})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	result, err := p.Run(context.Background(), "topic")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if failing.calls != 1 {
		t.Fatalf("permanent errors must not be retried, got %d attempts", failing.calls)
	}
}

func TestNewRejectsEmptyStageList(t *testing.T) {
	_, err := New("empty")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewRejectsTemplateOnFirstStage(t *testing.T) {
	_, err := New("bad",
		&Stage{Name: "first", Agent: agent.NewEchoAgent(), Template: MustTemplate("{{ .Text }}")},
	)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewRejectsDuplicateStageNames(t *testing.T) {
	_, err := New("dup",
		&Stage{Name: "same", Agent: agent.NewEchoAgent()},
		&Stage{Name: "same", Agent: agent.NewEchoAgent()},
	)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestResultReplyByStageName(t *testing.T) {
	research := &fixedAgent{name: "research", content: "findings"}
	p, err := New("lookup",
		&Stage{Name: "research", Agent: research},
		&Stage{Name: "blog", Agent: agent.NewEchoAgent()},
	)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	result, err := p.Run(context.Background(), "topic")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := result.Reply(p, "research"); got == nil || got.Text != "findings" {
		t.Fatalf("unexpected lookup result: %v", got)
	}
	if got := result.Reply(p, "missing"); got != nil {
		t.Fatalf("expected nil for unknown stage, got %v", got)
	}
}
