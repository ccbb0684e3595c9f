package resicord

import "sort"

// Pattern: Decorator — each resilience pattern wraps the next, forming a
// composable chain where order determines execution semantics.

// Middleware wraps a Task with additional behavior. Each middleware
// receives the next Task in the chain and returns a wrapped version.
type Middleware[T any] func(next Task[T]) Task[T]

// chain composes multiple middlewares into a single middleware.
// Middlewares are applied in order: the first middleware is the outermost
// wrapper.
//
// chain(a, b, c) produces a(b(c(next))) — a is outermost, c is innermost.
// chain() with zero middlewares returns an identity middleware.
func chain[T any](middlewares ...Middleware[T]) Middleware[T] {
	return func(next Task[T]) Task[T] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}

		return next
	}
}

// patternEntry holds a middleware with its priority for auto-ordering.
type patternEntry[T any] struct {
	mw       Middleware[T]
	name     string
	priority int
}

// Priority constants define the execution order for resilience patterns.
// Lower priority = outermost middleware (executed first). Positions follow
// the façade's documented stacking: a caller that opts into every pattern
// gets Fallback(StaleCache(Retry(Hedge(Bulkhead(TimeLimit(task)))))).
const (
	priorityFallback   = 0  // outermost — last resort
	priorityStaleCache = 10 // masks a terminal failure before it reaches Fallback
	priorityRetry      = 20
	priorityHedge      = 30 // each retry attempt may itself be hedged
	priorityBulkhead   = 40 // admission + enqueue
	priorityTimeout    = 50 // innermost — wraps the raw task
)

// sortPatterns sorts pattern entries by priority (lowest first = outermost).
// Stable sort preserves the order of patterns sharing a priority.
func sortPatterns[T any](entries []patternEntry[T]) []Middleware[T] {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]patternEntry[T], len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})

	mws := make([]Middleware[T], 0, len(sorted))
	for _, e := range sorted {
		mws = append(mws, e.mw)
	}

	return mws
}
