// Package retry provides a single retry policy used by every endpoint of
// the API client. A policy is parameterized by attempt budget (bounded or
// unbounded) and delay strategy (fixed or exponential with a capped delay),
// selected per endpoint criticality.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Strategy selects how the delay between attempts evolves.
type Strategy int

const (
	// Fixed sleeps the same Delay between every attempt.
	Fixed Strategy = iota
	// Exponential doubles the delay from Delay up to MaxDelay.
	Exponential
)

// Unbounded makes a policy retry until the context is cancelled.
const Unbounded = 0

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total attempt budget. Unbounded (0) retries
	// until the context is cancelled.
	MaxAttempts int
	// Delay is the fixed delay, or the initial delay for Exponential.
	Delay time.Duration
	// MaxDelay caps the delay for Exponential. Ignored for Fixed.
	MaxDelay time.Duration
	// Strategy is the delay schedule.
	Strategy Strategy
}

// ErrExhausted wraps the last error once the attempt budget is spent.
var ErrExhausted = errors.New("retry budget exhausted")

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so Do returns it immediately instead of retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// backOff builds the delay schedule for one Do invocation.
func (p Policy) backOff() backoff.BackOff {
	if p.Strategy == Exponential {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = p.Delay
		b.Multiplier = 2
		b.RandomizationFactor = 0
		if p.MaxDelay > 0 {
			b.MaxInterval = p.MaxDelay
		}
		b.Reset()
		return b
	}
	return backoff.NewConstantBackOff(p.Delay)
}

// Do runs op until it succeeds, returns a permanent error, exhausts the
// attempt budget, or the context is cancelled. op receives the 1-based
// attempt number. Every attempt runs op from scratch, so per-attempt work
// such as request signing is refreshed on each retry.
func Do[T any](ctx context.Context, p Policy, op func(attempt int) (T, error)) (T, error) {
	var zero T
	var lastErr error

	schedule := p.backOff()

	for attempt := 1; p.MaxAttempts == Unbounded || attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := op(attempt)
		if err == nil {
			return v, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err

		// Don't sleep after the final attempt.
		if p.MaxAttempts != Unbounded && attempt == p.MaxAttempts {
			break
		}

		delay := schedule.NextBackOff()
		if delay == backoff.Stop {
			delay = p.MaxDelay
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, p.MaxAttempts, lastErr)
}
