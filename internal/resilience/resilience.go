// Package resilience wraps single upstream calls with per-attempt timeouts
// and retry-with-backoff.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
)

// ErrTimeout is returned when an attempt exceeds its time ceiling.
var ErrTimeout = errors.New("call timed out")

// Call performs one unit of network work.
type Call[T any] func(ctx context.Context) (T, error)

// Policy configures Wrap. The zero value makes a single attempt with no timeout.
type Policy struct {
	Attempts  uint          // total attempts, including the first
	BaseDelay time.Duration // retry n (1-based) waits BaseDelay * 2^n
	MaxDelay  time.Duration // ceiling for server-supplied Retry-After hints
	Timeout   time.Duration // per-attempt ceiling

	// OnRetry is called after each failed attempt with its 1-based number.
	OnRetry func(attempt uint, err error)
}

// DefaultPolicy is 3 attempts, 2s/4s backoff, 10s per attempt.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: time.Second,
		MaxDelay:  30 * time.Second,
		Timeout:   10 * time.Second,
	}
}

// Wrap composes the policy around call: the timeout applies to each attempt,
// the retry loop spans all attempts.
func Wrap[T any](p Policy, call Call[T]) Call[T] {
	return Retry(p, Timeout(p.Timeout, call))
}

// Timeout bounds each invocation of call to d. When d fires before the
// parent context is done, the result is a transient ErrTimeout. A
// non-positive d returns call unchanged.
func Timeout[T any](d time.Duration, call Call[T]) Call[T] {
	if d <= 0 {
		return call
	}
	return func(ctx context.Context) (T, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		type result struct {
			value T
			err   error
		}
		done := make(chan result, 1)
		go func() {
			v, err := call(attemptCtx)
			done <- result{value: v, err: err}
		}()

		var zero T
		select {
		case r := <-done:
			if r.err != nil && ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
				return zero, Transient(fmt.Errorf("%w after %s", ErrTimeout, d))
			}
			return r.value, r.err
		case <-attemptCtx.Done():
			if err := ctx.Err(); err != nil {
				return zero, err
			}
			return zero, Transient(fmt.Errorf("%w after %s", ErrTimeout, d))
		}
	}
}

type retryGateKey struct{}

// WithRetryGate returns a context under which Retry makes a further attempt
// only while gate reports true. The attempt in flight is never interrupted.
func WithRetryGate(ctx context.Context, gate func() bool) context.Context {
	return context.WithValue(ctx, retryGateKey{}, gate)
}

// RetryAllowed reports whether the gate carried by ctx, if any, permits
// another attempt.
func RetryAllowed(ctx context.Context) bool {
	gate, ok := ctx.Value(retryGateKey{}).(func() bool)
	return !ok || gate()
}

// Retry re-invokes call while it fails transiently, up to p.Attempts times.
// Exhaustion returns the last failure unchanged. Cancellation of ctx stops
// the loop, including during backoff, and returns ctx.Err(). A closed retry
// gate stops the loop after the current attempt.
func Retry[T any](p Policy, call Call[T]) Call[T] {
	attempts := p.Attempts
	if attempts == 0 {
		attempts = 1
	}
	return func(ctx context.Context) (T, error) {
		var zero T
		var lastErr error
		var made uint

		v, err := retry.DoWithData(
			func() (T, error) {
				// gate may have closed during backoff
				if made > 0 && !RetryAllowed(ctx) {
					return zero, retry.Unrecoverable(lastErr)
				}
				made++
				v, err := call(ctx)
				if err != nil {
					lastErr = err
				}
				return v, err
			},
			retry.Context(ctx),
			retry.Attempts(attempts),
			retry.LastErrorOnly(true),
			retry.RetryIf(func(err error) bool {
				return retry.IsRecoverable(err) && ctx.Err() == nil && IsTransient(err) && RetryAllowed(ctx)
			}),
			retry.DelayType(func(n uint, err error, _ *retry.Config) time.Duration {
				return p.delay(n, err)
			}),
			retry.OnRetry(func(n uint, err error) {
				if p.OnRetry != nil {
					p.OnRetry(n+1, err)
				}
			}),
		)
		if err == nil {
			return v, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}
		if lastErr != nil {
			return zero, lastErr
		}
		return zero, err
	}
}

// delay returns the wait before retry n+1, where n is the 0-based index of
// the attempt that just failed.
func (p Policy) delay(n uint, err error) time.Duration {
	backoff := p.BaseDelay << (n + 1)
	if hint, ok := RetryAfter(err); ok && hint > backoff {
		if p.MaxDelay > 0 && hint > p.MaxDelay {
			return p.MaxDelay
		}
		return hint
	}
	return backoff
}
