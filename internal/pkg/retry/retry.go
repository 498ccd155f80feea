// Package retry runs an operation under a bounded doubling backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy controls how often and how patiently an operation is retried.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultPolicy is used for transcript listing.
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
}

// Delays returns the wait scheduled after each failed attempt but the last.
func (p Policy) Delays() []time.Duration {
	if p.MaxAttempts < 2 {
		return nil
	}
	out := make([]time.Duration, 0, p.MaxAttempts-1)
	d := p.BaseDelay
	for i := 1; i < p.MaxAttempts; i++ {
		out = append(out, d)
		d *= 2
	}
	return out
}

type options struct {
	notify func(attempt int, err error, wait time.Duration)
}

// Option configures Do.
type Option func(*options)

// WithNotify is called before every wait with the failed attempt number (1-based).
func WithNotify(fn func(attempt int, err error, wait time.Duration)) Option {
	return func(o *options) { o.notify = fn }
}

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do calls fn until it succeeds, returns a permanent error, the context ends
// or the policy runs out of attempts. The last error is returned unwrapped.
func Do[T any](ctx context.Context, p Policy, fn func() (T, error), opts ...Option) (T, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.BaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = p.BaseDelay << uint(attempts)

	attempt := 0
	retryOpts := []backoff.RetryOption{
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithMaxElapsedTime(0),
	}
	if o.notify != nil {
		retryOpts = append(retryOpts, backoff.WithNotify(func(err error, wait time.Duration) {
			o.notify(attempt, err, wait)
		}))
	}

	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		return fn()
	}, retryOpts...)
}
