package resicord

import (
	"errors"
	"time"
)

// Try[T] is a fluent builder composing resilience patterns around a single
// Task[T]. Construction (New) and configuration (the chained methods) are
// separate from execution (Run); nothing runs until Run is called.
//
// Pattern: Builder — method chaining over functional options, matching the
// idiomatic Go convention for fluent construction.
type Try[T any] struct {
	task  Task[T]
	name  string
	hooks *Hooks
	clock Clock

	registry *poolRegistry

	fallback FallbackHandler[T]

	hasRetry   bool
	retryCount int
	retryDelay time.Duration
	retryOpts  []RetryOption
	backoff    BackoffStrategy

	hasBulkhead    bool
	bulkheadAttach bool
	poolID         string
	maxConcurrent  int
	maxQueue       int
	maxWait        time.Duration

	hasTimeLimit bool
	timeLimit    time.Duration

	hasHedge   bool
	hedgeDelay time.Duration

	hasStaleCache bool
	staleCacheTTL time.Duration
	cache         Cache[string, any]

	configErr error
}

// New creates a Try[T] wrapping task. task is invoked with no arguments and
// no context — cancellation of a running task is always cooperative and
// best-effort, never forced, matching Task[T]'s signature.
func New[T any](task Task[T]) *Try[T] {
	return &Try[T]{
		task:  task,
		hooks: &Hooks{},
		clock: RealClock{},
	}
}

// Name sets a name used to key this Try[T]'s StaleCache entry. Defaults to
// the attached pool id (or DefaultPoolID if no Bulkhead/BulkheadAttach was
// configured) when unset.
func (t *Try[T]) Name(name string) *Try[T] {
	t.name = name

	return t
}

// OnFailure configures handler as the last-resort fallback: a terminal
// failure (after every other configured pattern has given up) is handed to
// handler, whose return value becomes Run's result with a nil error.
func (t *Try[T]) OnFailure(handler FallbackHandler[T]) *Try[T] {
	t.fallback = handler

	return t
}

// Retry configures up to count attempts (clamped to at least 1 by the
// underlying loop) with a constant delay between them. Every error is
// retried by default, including BulkheadRejected and TimedOut; only an
// error marked with Permanent stops the loop early. Use
// RetryOptions to layer on MaxDelay or RetryIf when the constant-delay,
// retry-everything default isn't enough, or RetryWithStrategy to replace
// the constant delay itself with ExponentialBackoff, LinearBackoff,
// ExponentialJitterBackoff, or a BackoffFunc.
func (t *Try[T]) Retry(count int, delay time.Duration) *Try[T] {
	t.hasRetry = true
	t.retryCount = count
	t.retryDelay = delay
	t.backoff = nil

	return t
}

// RetryWithStrategy configures up to count attempts using strategy to
// compute the delay before each retry, in place of Retry's constant
// delay. Pass ExponentialBackoff, LinearBackoff, ExponentialJitterBackoff,
// or a BackoffFunc wrapping ad-hoc logic.
func (t *Try[T]) RetryWithStrategy(count int, strategy BackoffStrategy) *Try[T] {
	t.hasRetry = true
	t.retryCount = count
	t.backoff = strategy

	return t
}

// RetryOptions appends RetryOption values (MaxDelay, RetryIf) applied on
// top of the delay configured by Retry or RetryWithStrategy. Supplement
// to the documented fluent surface, reachable for callers who need the
// finer control retry.go's RetryOption already exposes.
func (t *Try[T]) RetryOptions(opts ...RetryOption) *Try[T] {
	t.retryOpts = append(t.retryOpts, opts...)

	return t
}

// Bulkhead creates (or attaches to, if poolID was already created by an
// earlier Bulkhead call anywhere in the process) a named pool bounding
// concurrent admission to maxConcurrent, queue depth to maxQueue, and
// admission wait to maxWait. Bounds of an existing pool are never mutated
// by a later call with the same id — whoever creates the pool first wins.
func (t *Try[T]) Bulkhead(poolID string, maxConcurrent, maxQueue int, maxWait time.Duration) *Try[T] {
	t.hasBulkhead = true
	t.bulkheadAttach = false
	t.poolID = poolID
	t.maxConcurrent = maxConcurrent
	t.maxQueue = maxQueue
	t.maxWait = maxWait

	return t
}

// BulkheadAttach attaches to a pool previously created via Bulkhead. If no
// pool with poolID exists by the time Run is called, ErrPoolNotFound is
// returned by Run without invoking the task at all.
func (t *Try[T]) BulkheadAttach(poolID string) *Try[T] {
	t.hasBulkhead = true
	t.bulkheadAttach = true
	t.poolID = poolID

	return t
}

// TimeLimit enforces d as a hard deadline on the task. d <= 0 disables the
// time limit (the zero value's behavior, so configuring TimeLimit is
// genuinely optional).
func (t *Try[T]) TimeLimit(d time.Duration) *Try[T] {
	t.hasTimeLimit = true
	t.timeLimit = d

	return t
}

// Hedge launches a second, independent attempt after delay if the first has
// not yet completed. Whichever finishes first with a non-error result wins;
// the loser is abandoned, not cancelled.
func (t *Try[T]) Hedge(delay time.Duration) *Try[T] {
	t.hasHedge = true
	t.hedgeDelay = delay

	return t
}

// StaleCache caches a successful result for ttl and serves it on a
// terminal failure instead of propagating the error to OnFailure. The
// default backing cache is an in-process map; call WithCache to back it
// with cache/ristretto or another Cache[string, any] implementation.
func (t *Try[T]) StaleCache(ttl time.Duration) *Try[T] {
	t.hasStaleCache = true
	t.staleCacheTTL = ttl

	return t
}

// WithCache overrides the cache StaleCache stores results in. Without a
// call to WithCache, StaleCache falls back to a process-wide in-memory
// cache — see cache/ristretto for a production-grade adapter.
func (t *Try[T]) WithCache(cache Cache[string, any]) *Try[T] {
	t.cache = cache

	return t
}

// WithHooks overrides the lifecycle hooks fired during Run. Without a call
// to WithHooks, all hooks are nil no-ops.
func (t *Try[T]) WithHooks(hooks *Hooks) *Try[T] {
	if hooks != nil {
		t.hooks = hooks
	}

	return t
}

// WithClock overrides the Clock used for retry backoff, hedge delay and
// time-limit deadlines. Intended for deterministic tests.
func (t *Try[T]) WithClock(clock Clock) *Try[T] {
	if clock != nil {
		t.clock = clock
	}

	return t
}

// withRegistry overrides the pool registry Bulkhead/BulkheadAttach resolve
// against. Unexported: test-only escape hatch, not part of the public
// fluent surface.
func (t *Try[T]) withRegistry(reg *poolRegistry) *Try[T] {
	t.registry = reg

	return t
}

func (t *Try[T]) registryOrDefault() *poolRegistry {
	if t.registry != nil {
		return t.registry
	}

	return defaultRegistry()
}

// effectiveName returns the name used to key a StaleCache entry: the
// explicit Name if set, otherwise the configured pool id, otherwise
// DefaultPoolID.
func (t *Try[T]) effectiveName() string {
	if t.name != "" {
		return t.name
	}

	if t.hasBulkhead {
		return t.poolID
	}

	return DefaultPoolID
}

// resolvePoolEntry returns the poolEntry this Try[T] runs its Bulkhead
// and TimeLimit patterns against: the explicitly configured pool if
// Bulkhead/BulkheadAttach was called, otherwise an unbounded default pool
// shared by every Try[T] that called neither.
func (t *Try[T]) resolvePoolEntry() (*poolEntry, error) {
	reg := t.registryOrDefault()

	if !t.hasBulkhead {
		return reg.getOrCreate(DefaultPoolID, unboundedConcurrency, unboundedQueue, unboundedWait), nil
	}

	if t.bulkheadAttach {
		entry, ok := reg.get(t.poolID)
		if !ok {
			return nil, ErrPoolNotFound
		}

		return entry, nil
	}

	return reg.getOrCreate(t.poolID, t.maxConcurrent, t.maxQueue, t.maxWait), nil
}

// Run executes the composed pipeline and blocks until the task succeeds,
// every configured pattern has been exhausted, or a fallback/stale value
// masks the final failure.
//
// Every Run, even a bare New(task).Run() with no other configuration, runs
// the task through a bulkhead: a Try[T] that never called Bulkhead or
// BulkheadAttach runs off the unbounded DefaultPoolID pool instead of on
// the caller's own goroutine. Pattern ordering follows priorityFallback <
// priorityStaleCache < priorityRetry < priorityHedge < priorityBulkhead <
// priorityTimeout (see pattern.go): Fallback is outermost, TimeLimit
// innermost, so a caller opting into every pattern gets
// Fallback(StaleCache(Retry(Hedge(Bulkhead(TimeLimit(task)))))).
func (t *Try[T]) Run() (T, error) { //nolint:cyclop // assembling an optional pipeline is inherently branchy
	var zero T

	if t.configErr != nil {
		return zero, t.configErr
	}

	entry, err := t.resolvePoolEntry()
	if err != nil {
		return zero, err
	}

	var entries []patternEntry[T]

	if t.hasTimeLimit {
		limit := t.timeLimit
		pool := entry.pool

		entries = append(entries, patternEntry[T]{
			mw: func(next Task[T]) Task[T] {
				return func() (T, error) {
					return runWithTimeLimit(pool, limit, t.clock, t.hooks, next)
				}
			},
			name:     "timeout",
			priority: priorityTimeout,
		})
	}

	// Always present: every Run goes through entry's admission gate and
	// worker pool, defaulting to the unbounded DefaultPoolID pool when
	// neither Bulkhead nor BulkheadAttach was configured.
	bh := entry

	entries = append(entries, patternEntry[T]{
		mw: func(next Task[T]) Task[T] {
			return func() (T, error) {
				return runWithBulkhead(bh, t.hooks, next)
			}
		},
		name:     "bulkhead",
		priority: priorityBulkhead,
	})

	if t.hasHedge {
		delay := t.hedgeDelay

		entries = append(entries, patternEntry[T]{
			mw: func(next Task[T]) Task[T] {
				return func() (T, error) {
					return runWithHedge(delay, t.clock, t.hooks, next)
				}
			},
			name:     "hedge",
			priority: priorityHedge,
		})
	}

	if t.hasRetry {
		count := t.retryCount

		strategy := t.backoff
		if strategy == nil {
			strategy = ConstantBackoff(t.retryDelay)
		}

		opts := t.retryOpts

		entries = append(entries, patternEntry[T]{
			mw: func(next Task[T]) Task[T] {
				return func() (T, error) {
					return runWithRetry(count, strategy, t.clock, t.hooks, opts, next)
				}
			},
			name:     "retry",
			priority: priorityRetry,
		})
	}

	if t.hasStaleCache {
		cache := t.cache
		if cache == nil {
			cache = defaultCache()
		}

		key := t.effectiveName()
		ttl := t.staleCacheTTL

		entries = append(entries, patternEntry[T]{
			mw: func(next Task[T]) Task[T] {
				return func() (T, error) {
					return runWithStaleCache(cache, key, ttl, t.clock, t.hooks, next)
				}
			},
			name:     "stale_cache",
			priority: priorityStaleCache,
		})
	}

	hasFallback := t.fallback != nil
	if hasFallback {
		handler := t.fallback

		entries = append(entries, patternEntry[T]{
			mw: func(next Task[T]) Task[T] {
				return func() (T, error) {
					return runWithFallback(next, handler, t.hooks)
				}
			},
			name:     "fallback",
			priority: priorityFallback,
		})
	}

	pipeline := chain(sortPatterns(entries)...)(t.task)

	result, err := pipeline()
	if err == nil || hasFallback {
		return result, err
	}

	var resErr ResilienceError
	if errors.As(err, &resErr) {
		return zero, err
	}

	return zero, &RunError{Cause: err}
}
