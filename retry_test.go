package resicord

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test helpers: fake clock and timer for deterministic retry testing
// ---------------------------------------------------------------------------

type testTimer struct {
	ch      chan time.Time
	stopped bool
	mu      sync.Mutex
}

func newTestTimer() *testTimer {
	return &testTimer{ch: make(chan time.Time, 1)}
}

func (t *testTimer) C() <-chan time.Time { return t.ch }
func (t *testTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}
func (t *testTimer) Reset(time.Duration) bool { return false }

func (t *testTimer) fire() { t.ch <- time.Now() }

// immediateTestClock fires every timer it creates immediately, which is
// all runWithRetry needs since it no longer respects context cancellation
// during a backoff sleep.
type immediateTestClock struct {
	mu        sync.Mutex
	durations []time.Duration
}

func newImmediateTestClock() *immediateTestClock { return &immediateTestClock{} }

func (c *immediateTestClock) Now() time.Time                  { return time.Now() }
func (c *immediateTestClock) Since(t time.Time) time.Duration { return time.Since(t) }

func (c *immediateTestClock) NewTimer(d time.Duration) Timer {
	c.mu.Lock()
	c.durations = append(c.durations, d)
	c.mu.Unlock()

	t := newTestTimer()
	t.fire()

	return t
}

func (c *immediateTestClock) getDurations() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]time.Duration, len(c.durations))
	copy(result, c.durations)

	return result
}

// ---------------------------------------------------------------------------
// Success on first attempt (no retries)
// ---------------------------------------------------------------------------

func TestRunWithRetrySuccessOnFirstAttempt(t *testing.T) {
	clk := newImmediateTestClock()
	hooks := &Hooks{}

	result, err := runWithRetry(3, ConstantBackoff(100*time.Millisecond), clk, hooks, nil, func() (string, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if result != "ok" {
		t.Fatalf("result = %q, want %q", result, "ok")
	}
	if n := len(clk.getDurations()); n != 0 {
		t.Fatalf("expected 0 timers, got %d", n)
	}
}

// ---------------------------------------------------------------------------
// Success on Nth attempt after transient failures
// ---------------------------------------------------------------------------

func TestRunWithRetrySuccessOnThirdAttempt(t *testing.T) {
	clk := newImmediateTestClock()
	hooks := &Hooks{}
	attempt := 0

	result, err := runWithRetry(5, ConstantBackoff(100*time.Millisecond), clk, hooks, nil, func() (int, error) {
		attempt++
		if attempt < 3 {
			return 0, Transient(errors.New("not ready"))
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if result != 42 {
		t.Fatalf("result = %d, want 42", result)
	}
	if attempt != 3 {
		t.Fatalf("attempts = %d, want 3", attempt)
	}
}

// ---------------------------------------------------------------------------
// Permanent error stops retries immediately
// ---------------------------------------------------------------------------

func TestRunWithRetryPermanentErrorStopsImmediately(t *testing.T) {
	clk := newImmediateTestClock()
	hooks := &Hooks{}
	attempt := 0

	_, err := runWithRetry(5, ConstantBackoff(100*time.Millisecond), clk, hooks, nil, func() (string, error) {
		attempt++
		return "", Permanent(errors.New("bad request"))
	})
	if err == nil {
		t.Fatal("err = nil, want permanent error")
	}
	if attempt != 1 {
		t.Fatalf("attempts = %d, want 1", attempt)
	}
	if !IsPermanent(err) {
		t.Fatal("expected permanent error to be detectable")
	}
}

// ---------------------------------------------------------------------------
// All retries exhausted returns the last error unwrapped
// ---------------------------------------------------------------------------

func TestRunWithRetryAllRetriesExhausted(t *testing.T) {
	clk := newImmediateTestClock()
	hooks := &Hooks{}
	attempt := 0

	sentinel := errors.New("still failing")

	_, err := runWithRetry(3, ConstantBackoff(100*time.Millisecond), clk, hooks, nil, func() (string, error) {
		attempt++
		return "", Transient(sentinel)
	})
	if err == nil {
		t.Fatal("err = nil, want the exhausted error")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want wrapping %v", err, sentinel)
	}
	if attempt != 3 {
		t.Fatalf("attempts = %d, want 3", attempt)
	}
}

// ---------------------------------------------------------------------------
// MaxDelay caps the backoff
// ---------------------------------------------------------------------------

func TestRunWithRetryMaxDelayCapsBackoff(t *testing.T) {
	clk := newImmediateTestClock()
	hooks := &Hooks{}

	_, _ = runWithRetry(4, ExponentialBackoff(100*time.Millisecond), clk, hooks,
		[]RetryOption{MaxDelay(150 * time.Millisecond)},
		func() (string, error) {
			return "", Transient(errors.New("fail"))
		},
	)

	durations := clk.getDurations()
	for i, d := range durations {
		if d > 150*time.Millisecond {
			t.Fatalf("timer %d: duration = %v, want <= 150ms", i, d)
		}
	}
	if len(durations) >= 1 && durations[0] != 100*time.Millisecond {
		t.Fatalf("timer 0: duration = %v, want 100ms", durations[0])
	}
	if len(durations) >= 2 && durations[1] != 150*time.Millisecond {
		t.Fatalf("timer 1: duration = %v, want 150ms (capped)", durations[1])
	}
}

// ---------------------------------------------------------------------------
// RetryIf predicate controls retryability
// ---------------------------------------------------------------------------

func TestRunWithRetryRetryIfPredicateStopsRetry(t *testing.T) {
	clk := newImmediateTestClock()
	hooks := &Hooks{}
	attempt := 0

	_, err := runWithRetry(5, ConstantBackoff(time.Millisecond), clk, hooks,
		[]RetryOption{RetryIf(func(error) bool { return false })},
		func() (string, error) {
			attempt++
			return "", errors.New("custom non-retryable")
		},
	)

	if err == nil {
		t.Fatal("err = nil, want error")
	}
	if attempt != 1 {
		t.Fatalf("attempts = %d, want 1 when RetryIf returns false", attempt)
	}
}

func TestRunWithRetryRetryIfPredicateAllowsRetry(t *testing.T) {
	clk := newImmediateTestClock()
	hooks := &Hooks{}
	attempt := 0

	result, err := runWithRetry(5, ConstantBackoff(time.Millisecond), clk, hooks,
		[]RetryOption{RetryIf(func(error) bool { return true })},
		func() (string, error) {
			attempt++
			if attempt < 3 {
				return "", errors.New("retryable by predicate")
			}
			return "success", nil
		},
	)
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if result != "success" {
		t.Fatalf("result = %q, want %q", result, "success")
	}
	if attempt != 3 {
		t.Fatalf("attempts = %d, want 3", attempt)
	}
}

// ---------------------------------------------------------------------------
// Zero/one maxAttempts executes exactly once
// ---------------------------------------------------------------------------

func TestRunWithRetryZeroMaxAttemptsExecutesOnce(t *testing.T) {
	clk := newImmediateTestClock()
	hooks := &Hooks{}
	attempt := 0

	_, err := runWithRetry(0, ConstantBackoff(100*time.Millisecond), clk, hooks, nil, func() (string, error) {
		attempt++
		return "", Transient(errors.New("fail"))
	})

	if attempt != 1 {
		t.Fatalf("attempts = %d, want 1 with maxAttempts=0", attempt)
	}
	if err == nil {
		t.Fatal("err = nil, want error")
	}
}

func TestRunWithRetryOneMaxAttemptExecutesOnce(t *testing.T) {
	clk := newImmediateTestClock()
	hooks := &Hooks{}
	attempt := 0

	_, err := runWithRetry(1, ConstantBackoff(100*time.Millisecond), clk, hooks, nil, func() (string, error) {
		attempt++
		return "", Transient(errors.New("fail"))
	})

	if attempt != 1 {
		t.Fatalf("attempts = %d, want 1 with maxAttempts=1", attempt)
	}
	if err == nil {
		t.Fatal("err = nil, want error")
	}
}

// ---------------------------------------------------------------------------
// OnRetry hook is called with correct attempt number and error
// ---------------------------------------------------------------------------

func TestRunWithRetryOnRetryHookCalledWithCorrectArgs(t *testing.T) {
	clk := newImmediateTestClock()
	var hookCalls []int
	hooks := &Hooks{
		OnRetry: func(attempt int, _ error) { hookCalls = append(hookCalls, attempt) },
	}

	_, _ = runWithRetry(3, ConstantBackoff(time.Millisecond), clk, hooks, nil, func() (string, error) {
		return "", Transient(errors.New("fail"))
	})

	// 3 attempts means 2 retries, so the hook fires for attempts 1 and 2
	// (1-indexed), never for the last exhausted attempt.
	want := []int{1, 2}
	if len(hookCalls) != len(want) {
		t.Fatalf("hook calls = %d, want %d", len(hookCalls), len(want))
	}
	for i, w := range want {
		if hookCalls[i] != w {
			t.Fatalf("hook call %d attempt = %d, want %d", i, hookCalls[i], w)
		}
	}
}

// ---------------------------------------------------------------------------
// Unclassified errors are treated as transient (retried)
// ---------------------------------------------------------------------------

func TestRunWithRetryUnclassifiedErrorsAreRetried(t *testing.T) {
	clk := newImmediateTestClock()
	hooks := &Hooks{}
	attempt := 0

	result, err := runWithRetry(3, ConstantBackoff(time.Millisecond), clk, hooks, nil, func() (string, error) {
		attempt++
		if attempt < 3 {
			return "", errors.New("plain error, not classified")
		}
		return "recovered", nil
	})
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if result != "recovered" {
		t.Fatalf("result = %q, want %q", result, "recovered")
	}
	if attempt != 3 {
		t.Fatalf("attempts = %d, want 3", attempt)
	}
}

// ---------------------------------------------------------------------------
// RetryOption constructors
// ---------------------------------------------------------------------------

func TestMaxDelayOption(t *testing.T) {
	var cfg retryConfig
	MaxDelay(500 * time.Millisecond)(&cfg)
	if cfg.maxDelay != 500*time.Millisecond {
		t.Fatalf("maxDelay = %v, want 500ms", cfg.maxDelay)
	}
}

func TestRetryIfOption(t *testing.T) {
	var cfg retryConfig
	RetryIf(func(error) bool { return true })(&cfg)
	if cfg.retryIf == nil {
		t.Fatal("retryIf = nil, want non-nil")
	}
}

// ---------------------------------------------------------------------------
// Backoff strategy receives correct 0-indexed attempts
// ---------------------------------------------------------------------------

func TestRunWithRetryBackoffStrategyReceivesCorrectAttempts(t *testing.T) {
	var receivedAttempts []int
	strategy := BackoffFunc(func(attempt int) time.Duration {
		receivedAttempts = append(receivedAttempts, attempt)
		return time.Millisecond
	})

	clk := newImmediateTestClock()
	hooks := &Hooks{}

	_, _ = runWithRetry(4, strategy, clk, hooks, nil, func() (string, error) {
		return "", Transient(errors.New("fail"))
	})

	want := []int{0, 1, 2}
	if len(receivedAttempts) != len(want) {
		t.Fatalf("backoff called %d times, want %d", len(receivedAttempts), len(want))
	}
	for i, w := range want {
		if receivedAttempts[i] != w {
			t.Fatalf("backoff call %d attempt = %d, want %d", i, receivedAttempts[i], w)
		}
	}
}

// ---------------------------------------------------------------------------
// Nil-field Hooks do not panic
// ---------------------------------------------------------------------------

func TestRunWithRetryNilHooksDoNotPanic(t *testing.T) {
	clk := newImmediateTestClock()
	hooks := &Hooks{}

	_, _ = runWithRetry(3, ConstantBackoff(time.Millisecond), clk, hooks, nil, func() (string, error) {
		return "", Transient(errors.New("fail"))
	})
}

func BenchmarkRetry(b *testing.B) {
	clk := newImmediateTestClock()
	hooks := &Hooks{}
	strategy := ConstantBackoff(time.Millisecond)

	for b.Loop() {
		_, _ = runWithRetry(3, strategy, clk, hooks, nil, func() (string, error) {
			return "ok", nil
		})
	}
}
