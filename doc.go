// Package resicord composes retry, bulkhead isolation, time-limited
// execution and fallback around an arbitrary computation behind a fluent
// builder.
//
// The central type is Try[T], built with New and configured by chaining
// OnFailure, Retry, Bulkhead/BulkheadAttach, TimeLimit, Hedge and
// StaleCache. Run executes the composed pipeline and blocks until the
// wrapped task succeeds, is exhausted, or falls back.
package resicord

// Task is the zero-argument computation wrapped by a [Try]. It has no
// context.Context parameter because the library's own cancellation is
// cooperative and best-effort (carrier abandonment), not context-propagated.
type Task[T any] func() (T, error)

// FallbackHandler produces a terminal value from the error a [Task]
// ultimately failed with. It returns T directly, not (T, error), because a
// terminal fallback is by definition deterministic success.
type FallbackHandler[T any] func(error) T
