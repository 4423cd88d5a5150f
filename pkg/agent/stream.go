package agent

import (
	"context"
	"strings"
	"sync"
)

// Stream is a single-pass, pull-based iterator over text chunks produced by
// a streaming agent call. It wraps a channel internally; chunk order is
// generation order and the stream is not restartable.
//
// Callers must call Close when done, or drain the stream to completion.
type Stream struct {
	ch        <-chan string
	errCh     <-chan error
	cancel    context.CancelFunc
	closeOnce sync.Once
	err       error
}

// NewStream runs producer in a goroutine and returns a Stream over the
// chunks it sends. The chunk channel is closed when the producer returns;
// a non-nil producer error is reported by the final Next call.
func NewStream(ctx context.Context, producer func(ctx context.Context, ch chan<- string) error) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan string, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(ch)
		if err := producer(ctx, ch); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	return &Stream{
		ch:     ch,
		errCh:  errCh,
		cancel: cancel,
	}
}

// Next returns the next chunk. ok is false once the stream is exhausted;
// err is non-nil when the producer failed.
func (s *Stream) Next(ctx context.Context) (chunk string, ok bool, err error) {
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case v, open := <-s.ch:
		if !open {
			select {
			case e := <-s.errCh:
				s.err = e
			default:
			}
			return "", false, s.err
		}
		return v, true, nil
	}
}

// Collect drains the stream and returns the concatenated text.
func (s *Stream) Collect(ctx context.Context) (string, error) {
	var b strings.Builder
	for {
		chunk, ok, err := s.Next(ctx)
		if err != nil {
			return b.String(), err
		}
		if !ok {
			return b.String(), nil
		}
		b.WriteString(chunk)
	}
}

// Close cancels the producer and releases resources. Safe to call multiple
// times.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		for range s.ch {
		}
		select {
		case e := <-s.errCh:
			if s.err == nil {
				s.err = e
			}
		default:
		}
	})
	return nil
}

// send delivers a chunk unless the context is cancelled first.
func send(ctx context.Context, ch chan<- string, chunk string) error {
	select {
	case ch <- chunk:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
