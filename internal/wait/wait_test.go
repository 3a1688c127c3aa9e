package wait

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// countingCondition holds after the given number of checks
func countingCondition(holdsAt int, calls *int) Condition[int] {
	return Condition[int]{
		Description: "counter",
		Check: func(ctx context.Context) (int, bool, error) {
			*calls++
			return *calls, *calls >= holdsAt, nil
		},
	}
}

// afterCondition holds once d has passed since start
func afterCondition(start time.Time, d time.Duration) Condition[string] {
	return Condition[string]{
		Description: "clock",
		Check: func(ctx context.Context) (string, bool, error) {
			if time.Since(start) >= d {
				return "ready", true, nil
			}
			return "", false, nil
		},
	}
}

func TestUntil_ImmediateSuccess(t *testing.T) {
	// GIVEN a condition that already holds
	calls := 0
	w := New(time.Second, WithInterval(10*time.Millisecond))

	// WHEN
	got, err := Until(context.Background(), w, countingCondition(1, &calls))

	// THEN it is evaluated exactly once
	require.NoError(t, err)
	assert.Equal(t, 1, got)
	assert.Equal(t, 1, calls)
}

func TestUntil_ConditionBecomesTrueBeforeTimeout(t *testing.T) {
	// GIVEN a condition that holds 50ms after the wait begins
	start := time.Now()
	w := New(500*time.Millisecond, WithInterval(10*time.Millisecond))

	// WHEN
	got, err := Until(context.Background(), w, afterCondition(start, 50*time.Millisecond))
	elapsed := time.Since(start)

	// THEN the wait returns after the condition holds and well before the timeout
	require.NoError(t, err)
	assert.Equal(t, "ready", got)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestUntil_ConditionTrueAtDeadlineIsObserved(t *testing.T) {
	// GIVEN an interval longer than the timeout
	start := time.Now()
	w := New(60*time.Millisecond, WithInterval(time.Hour))

	// WHEN the condition only holds at the deadline
	got, err := Until(context.Background(), w, afterCondition(start, 60*time.Millisecond))

	// THEN the clipped final check still sees it
	require.NoError(t, err)
	assert.Equal(t, "ready", got)
}

func TestUntil_TimeoutBounds(t *testing.T) {
	// GIVEN a condition that never holds
	timeout := 100 * time.Millisecond
	w := New(timeout, WithInterval(30*time.Millisecond))
	never := Condition[bool]{
		Description: "visibility of By.id(\"missing\")",
		Check: func(ctx context.Context) (bool, bool, error) {
			return false, false, nil
		},
	}

	// WHEN
	start := time.Now()
	_, err := Until(context.Background(), w, never)
	elapsed := time.Since(start)

	// THEN it fails with a TimeoutError at the timeout, not before
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))

	var timeoutErr *TimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	assert.Equal(t, never.Description, timeoutErr.Condition)
	assert.Equal(t, timeout, timeoutErr.Timeout)
	assert.GreaterOrEqual(t, timeoutErr.Attempts, 2)
	assert.Contains(t, err.Error(), "missing")

	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+200*time.Millisecond)
}

func TestUntil_NotReadyErrorsKeepPolling(t *testing.T) {
	// GIVEN a condition reporting a retryable cause
	cause := errors.New("no such element")
	calls := 0
	cond := Condition[int]{
		Description: "retryable",
		Check: func(ctx context.Context) (int, bool, error) {
			calls++
			return 0, false, NotReady(cause)
		},
	}

	// WHEN
	_, err := Until(context.Background(), New(50*time.Millisecond, WithInterval(5*time.Millisecond)), cond)

	// THEN the last cause is kept on the timeout
	var timeoutErr *TimeoutError
	require.True(t, errors.As(err, &timeoutErr))
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, timeoutErr.LastErr, ErrNotReady)
	assert.Greater(t, calls, 1)
}

func TestUntil_HardErrorAborts(t *testing.T) {
	// GIVEN a condition failing with an unexpected error
	boom := errors.New("browser crashed")
	calls := 0
	cond := Condition[int]{
		Description: "crashy",
		Check: func(ctx context.Context) (int, bool, error) {
			calls++
			return 0, false, boom
		},
	}

	// WHEN
	_, err := Until(context.Background(), New(time.Second, WithInterval(5*time.Millisecond)), cond)

	// THEN the wait stops at once without retrying
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, 1, calls)
}

func TestUntil_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	calls := 0
	_, err := Until(ctx, New(5*time.Second, WithInterval(5*time.Millisecond)), countingCondition(1_000_000, &calls))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestUntil_BackoffReducesAttempts(t *testing.T) {
	// GIVEN intervals of 10, 20, 40, 40, ... ms over 200ms
	w := New(200*time.Millisecond, WithInterval(10*time.Millisecond), WithBackoff(2, 40*time.Millisecond))
	calls := 0

	// WHEN
	_, err := Until(context.Background(), w, countingCondition(1_000_000, &calls))

	// THEN far fewer checks happen than with a fixed 10ms interval
	require.ErrorIs(t, err, ErrTimeout)
	assert.LessOrEqual(t, calls, 10)
}

func TestWaiter_Defaults(t *testing.T) {
	var w Waiter
	assert.Equal(t, DefaultTimeout, w.timeout())
	assert.Equal(t, DefaultInterval, w.interval())
	assert.Equal(t, 7*time.Millisecond, w.next(7*time.Millisecond))

	w = New(3*time.Second, WithBackoff(1.5, 0))
	assert.Equal(t, 3*time.Second, w.timeout())
	assert.Equal(t, 150*time.Millisecond, w.next(100*time.Millisecond))
}

// TestUntil_ReturnsOnFirstSatisfyingCheck checks the wait never skips a true result
func TestUntil_ReturnsOnFirstSatisfyingCheck(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		holdsAt := rapid.IntRange(1, 6).Draw(rt, "holdsAt")
		calls := 0

		got, err := Until(context.Background(), New(time.Second, WithInterval(time.Millisecond)), countingCondition(holdsAt, &calls))
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if got != holdsAt || calls != holdsAt {
			rt.Fatalf("expected to stop at check %d, stopped at %d", holdsAt, calls)
		}
	})
}
