package store

import (
	"context"
	"errors"
	"time"
)

// Connection retry defaults for remote backends.
const (
	DefaultConnectAttempts = 3
	DefaultConnectDelay    = 500 * time.Millisecond
)

// transientError marks a failure worth retrying, such as a refused
// connection while a database container is still starting.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// transient wraps err so that retry attempts the operation again.
func transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// retry runs fn up to attempts times, doubling delay after each transient
// failure. Other errors return immediately. The last error is returned
// unwrapped, or ctx.Err() when ctx ends first.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		var te *transientError
		if !errors.As(err, &te) {
			return err
		}
		lastErr = te.err

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
