package resicord

import "time"

// retryConfig holds the optional extra configuration for a retry loop
// beyond count, delay and backoff strategy.
type retryConfig struct {
	maxDelay time.Duration    // 0 means no cap
	retryIf  func(error) bool // nil means retry everything (default)
}

// RetryOption configures retry behavior beyond the basic count/delay pair.
type RetryOption func(*retryConfig)

// MaxDelay caps the backoff delay computed by a BackoffStrategy to a
// maximum value, useful on top of an otherwise-unbounded strategy like
// ExponentialBackoff.
func MaxDelay(d time.Duration) RetryOption {
	return func(cfg *retryConfig) {
		cfg.maxDelay = d
	}
}

// RetryIf sets a predicate that decides whether a given error is
// retryable. When unset, every error is retried, including
// BulkheadRejected and TimedOut — a caller opts specific error kinds out
// explicitly rather than the library guessing. A Permanent-marked error
// always stops retrying regardless of this predicate.
func RetryIf(fn func(error) bool) RetryOption {
	return func(cfg *retryConfig) {
		cfg.retryIf = fn
	}
}

// Pattern: Retry with Backoff — masks transient failures behind a
// configurable backoff strategy; respects Permanent error classification
// to stop early, and RetryIf to let a caller opt specific error kinds out
// of the default retry-everything behaviour.

// runWithRetry runs task up to maxAttempts times (clamped to at least 1),
// sleeping according to strategy between attempts. It stops early on
// success, on a Permanent-classified error, or when retryIf rejects the
// error. On exhaustion, the last error is returned unwrapped rather than
// as a distinct "exhausted" kind.
func runWithRetry[T any](maxAttempts int, strategy BackoffStrategy, clock Clock, hooks *Hooks, opts []RetryOption, task Task[T]) (T, error) {
	var cfg retryConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if maxAttempts <= 1 {
		maxAttempts = 1
	}

	var zero T
	var lastErr error

	for attempt := range maxAttempts {
		result, err := task()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if IsPermanent(err) {
			return zero, err
		}

		if cfg.retryIf != nil && !cfg.retryIf(err) {
			return zero, err
		}

		if attempt == maxAttempts-1 {
			break
		}

		hooks.emitRetry(attempt+1, err)

		delay := strategy.Delay(attempt)
		if cfg.maxDelay > 0 && delay > cfg.maxDelay {
			delay = cfg.maxDelay
		}

		if delay > 0 {
			timer := clock.NewTimer(delay)
			<-timer.C()
		}
	}

	return zero, lastErr
}
