package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TransportError wraps a provider failure with status metadata.
type TransportError struct {
	Status    int
	Temporary bool
	Err       error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "transport error"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("transport error (status=%d)", e.Status)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsTransient reports whether an error is safe to retry.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		if transportErr.Temporary {
			return true
		}
		if transportErr.Status == 429 || (transportErr.Status >= 500 && transportErr.Status <= 599) {
			return true
		}
	}
	return false
}
