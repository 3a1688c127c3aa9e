// Package wait implements the explicit wait used to synchronize test steps
// with asynchronous page rendering.
//
// A wait evaluates a Condition right away and then once per polling interval
// until it holds or the timeout elapses. The calling goroutine is blocked for
// the whole wait; nothing else is scheduled on its behalf.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Defaults used when a Waiter field is left at zero
const (
	DefaultTimeout  = 10 * time.Second
	DefaultInterval = 500 * time.Millisecond
)

var (
	// ErrTimeout matches every *TimeoutError
	ErrTimeout = errors.New("timed out waiting for condition")
	// ErrNotReady marks a Check error that means "try again"
	ErrNotReady = errors.New("condition not ready")
)

// TimeoutError is returned when a condition did not hold within the timeout
type TimeoutError struct {
	Condition string
	Timeout   time.Duration
	Attempts  int
	LastErr   error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s (%d attempts)", e.Timeout, e.Condition, e.Attempts)
	if e.LastErr != nil {
		msg += ": " + e.LastErr.Error()
	}
	return msg
}

// Is makes errors.Is(err, ErrTimeout) true
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

func (e *TimeoutError) Unwrap() error {
	return e.LastErr
}

// NotReady wraps cause so that Until keeps polling instead of aborting
func NotReady(cause error) error {
	if cause == nil {
		return ErrNotReady
	}
	return fmt.Errorf("%w: %w", ErrNotReady, cause)
}

// Condition is a named predicate over the current page state.
// Check returns the satisfying value and true once the condition holds.
type Condition[T any] struct {
	Description string
	Check       func(ctx context.Context) (T, bool, error)
}

// Waiter holds the timing of an explicit wait
type Waiter struct {
	Timeout  time.Duration
	Interval time.Duration
	// Backoff multiplies the interval after every unsuccessful check; values <= 1 keep it fixed
	Backoff     float64
	MaxInterval time.Duration
}

// Option configures a Waiter
type Option func(*Waiter)

// WithInterval sets the polling interval
func WithInterval(d time.Duration) Option {
	return func(w *Waiter) {
		w.Interval = d
	}
}

// WithBackoff grows the polling interval by factor up to maxInterval
func WithBackoff(factor float64, maxInterval time.Duration) Option {
	return func(w *Waiter) {
		w.Backoff = factor
		w.MaxInterval = maxInterval
	}
}

// New creates a Waiter with the given timeout
func New(timeout time.Duration, opts ...Option) Waiter {
	w := Waiter{Timeout: timeout, Interval: DefaultInterval}
	for _, opt := range opts {
		opt(&w)
	}
	return w
}

func (w Waiter) timeout() time.Duration {
	if w.Timeout <= 0 {
		return DefaultTimeout
	}
	return w.Timeout
}

func (w Waiter) interval() time.Duration {
	if w.Interval <= 0 {
		return DefaultInterval
	}
	return w.Interval
}

func (w Waiter) next(interval time.Duration) time.Duration {
	if w.Backoff <= 1 {
		return interval
	}
	grown := time.Duration(float64(interval) * w.Backoff)
	if w.MaxInterval > 0 && grown > w.MaxInterval {
		return w.MaxInterval
	}
	return grown
}

// Until blocks until cond holds and returns its value.
//
// An error from Check aborts the wait unless it matches ErrNotReady. The last
// sleep is clipped to the deadline, so a condition that becomes true exactly
// at the timeout is still observed. Retrying after a timeout is up to the caller.
func Until[T any](ctx context.Context, w Waiter, cond Condition[T]) (T, error) {
	var zero T

	timeout := w.timeout()
	interval := w.interval()
	deadline := time.Now().Add(timeout)

	var lastErr error
	for attempts := 1; ; attempts++ {
		value, ok, err := cond.Check(ctx)
		if err == nil && ok {
			return value, nil
		}
		if err != nil {
			if !errors.Is(err, ErrNotReady) {
				return zero, fmt.Errorf("waiting for %s: %w", cond.Description, err)
			}
			lastErr = err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return zero, &TimeoutError{
				Condition: cond.Description,
				Timeout:   timeout,
				Attempts:  attempts,
				LastErr:   lastErr,
			}
		}

		timer := time.NewTimer(min(interval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("waiting for %s: %w", cond.Description, ctx.Err())
		case <-timer.C:
		}
		interval = w.next(interval)
	}
}
