package cache

import (
	"context"
	"errors"
	"time"
)

// transientError marks an error as worth retrying.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err so [Backoff.Do] retries it. Transient(nil) is nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was wrapped with [Transient].
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Backoff is a capped exponential retry policy.
type Backoff struct {
	Attempts int           // total calls, including the first
	Initial  time.Duration // delay before the second call
	Max      time.Duration // delay cap; 0 means uncapped
}

// DefaultBackoff makes three attempts, waiting 100ms then 200ms.
func DefaultBackoff() Backoff {
	return Backoff{Attempts: 3, Initial: 100 * time.Millisecond, Max: time.Second}
}

// Do calls fn until it succeeds, returns an error not marked [Transient],
// or runs out of attempts. The last error is returned unwrapped. Waiting
// stops early when ctx is done.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Initial

	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if b.Max > 0 && delay > b.Max {
			delay = b.Max
		}
	}
	return errors.Unwrap(err)
}
