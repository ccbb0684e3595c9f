package resicord

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// admissionGate bounds how many callers may have a task in flight against a
// pool at once, counting both work that is running and work sitting in the
// pool's queue. It wraps a weighted semaphore of weight 1 per slot.
//
// Pattern: Counting Semaphore — admission control decoupled from the
// worker pool's own concurrency limit, so callers waiting to get in and
// work already queued are bounded independently.
type admissionGate struct {
	sem      *semaphore.Weighted
	elastic  bool
	capacity int64
}

// newAdmissionGate creates a gate admitting at most capacity concurrent
// callers. capacity <= 0 selects unbounded admission.
func newAdmissionGate(capacity int) *admissionGate {
	if capacity <= unboundedConcurrency {
		return &admissionGate{elastic: true}
	}

	return &admissionGate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: int64(capacity),
	}
}

// tryAcquire blocks until a slot is free or wait elapses, whichever comes
// first. wait <= 0 means fail fast: try once, non-blocking, and report
// false immediately if no slot is free, matching a caller-supplied
// max_admission_wait of zero rather than defaults.go's unrelated "unbounded
// pool" sentinel. It reports whether a slot was acquired; on false the
// caller must not call release.
func (g *admissionGate) tryAcquire(wait time.Duration) bool {
	if g.elastic {
		return true
	}

	if wait <= unboundedWait {
		return g.sem.TryAcquire(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	return g.sem.Acquire(ctx, 1) == nil
}

// release returns a slot acquired via tryAcquire.
func (g *admissionGate) release() {
	if g.elastic {
		return
	}

	g.sem.Release(1)
}
