package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrBackend is returned when a cache backend cannot be reached.
	ErrBackend = errors.New("cache backend unavailable")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// Backoff retries transient backend failures with doubling delays.
type Backoff struct {
	Attempts int           // total tries, including the first
	Initial  time.Duration // wait before the second try
}

// DefaultBackoff is the policy used by RedisCache.
var DefaultBackoff = Backoff{Attempts: 3, Initial: 50 * time.Millisecond}

type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Transient marks err as worth retrying. Nil and context errors are
// returned unchanged.
func Transient(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return transientError{err: err}
}

// IsTransient reports whether err carries the Transient mark.
func IsTransient(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

// Do calls fn until it succeeds or returns an error not marked Transient,
// at most b.Attempts times. Cancelling ctx aborts the wait between tries.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Initial
	var err error
	for i := range max(b.Attempts, 1) {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
		if err = fn(); !IsTransient(err) {
			return err
		}
	}
	return err
}
