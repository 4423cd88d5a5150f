package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rovelight/scribe/pkg/agent"
	"github.com/rovelight/scribe/pkg/reply"
)

// Status is the terminal state of a pipeline run.
type Status string

const (
	// StatusCompleted means every stage produced a normalized reply.
	StatusCompleted Status = "completed"
	// StatusFailed means a stage failed; later stages were not attempted.
	StatusFailed Status = "failed"
)

// Result is the aggregate outcome of a run: one reply per executed stage, in
// stage order, plus the originating topic. It is built fresh per run and not
// retained by the pipeline.
type Result struct {
	Topic   string         `json:"topic"`
	Replies []*reply.Reply `json:"replies"`
	Status  Status         `json:"status"`
}

// Reply returns the reply of the named stage, or nil if that stage was not
// reached.
func (r *Result) Reply(p *Pipeline, name string) *reply.Reply {
	for i, stage := range p.stages {
		if stage.Name == name && i < len(r.Replies) {
			return r.Replies[i]
		}
	}
	return nil
}

const (
	baseBackoff = 200 * time.Millisecond
	maxBackoff  = 2 * time.Second
)

// Run executes the stages strictly in order. Stage 0 receives the topic
// verbatim (even empty — topic validation belongs to the caller); each later
// stage receives the previous stage's normalized text rendered through its
// template. A failing stage is recorded as an ErrorPrefix reply and stops
// the run with StatusFailed; prior replies are preserved. Cancellation is
// checked cooperatively before each stage and reported via the returned
// error alongside the partial result.
func (p *Pipeline) Run(ctx context.Context, topic string) (*Result, error) {
	result := &Result{Topic: topic, Status: StatusCompleted}
	input := topic

	for i, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			result.Status = StatusFailed
			return result, err
		}

		if i > 0 && stage.Template != nil {
			rendered, err := stage.Template.Render(input)
			if err != nil {
				result.Status = StatusFailed
				result.Replies = append(result.Replies, reply.ErrorReply(fmt.Errorf("stage %s: render template: %w", stage.Name, err)))
				return result, nil
			}
			input = rendered
		}

		slog.Debug("running stage", "pipeline", p.name, "stage", stage.Name, "agent", stage.Agent.Name())
		start := time.Now()

		r, err := invokeWithRetry(ctx, stage, input)
		if err != nil {
			slog.Debug("stage failed", "pipeline", p.name, "stage", stage.Name, "err", err)
			result.Status = StatusFailed
			result.Replies = append(result.Replies, reply.ErrorReply(err))
			return result, nil
		}

		normalized := reply.Normalize(r)
		result.Replies = append(result.Replies, normalized)
		input = normalized.Text

		slog.Debug("stage completed",
			"pipeline", p.name,
			"stage", stage.Name,
			"duration", time.Since(start),
			"chars", len(normalized.Text))
	}

	return result, nil
}

// invokeWithRetry calls the stage agent, retrying transient transport errors
// up to the stage's MaxRetries with context-aware exponential backoff.
func invokeWithRetry(ctx context.Context, stage *Stage, input string) (*reply.Reply, error) {
	var lastErr error
	for attempt := 0; attempt <= stage.MaxRetries; attempt++ {
		r, err := stage.Agent.Invoke(ctx, input)
		if err == nil {
			return r, nil
		}
		lastErr = err
		if !agent.IsTransient(err) || attempt == stage.MaxRetries {
			break
		}
		if err := sleepWithContext(ctx, computeBackoff(attempt)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func computeBackoff(attempt int) time.Duration {
	backoff := baseBackoff
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
