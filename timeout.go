package resicord

import (
	"fmt"
	"time"
)

// deadlineExceeded is the Cause a TimedOut carries when a real deadline
// fires, naming the limit that was exceeded so Unwrap/%v surface something
// concrete about what timed out rather than a bare "timed out".
type deadlineExceeded struct {
	limit time.Duration
}

func (e *deadlineExceeded) Error() string {
	return fmt.Sprintf("deadline of %v exceeded", e.limit)
}

// runWithTimeLimit executes task, enforcing limit as a hard deadline. When
// limit is unbounded, task runs inline on the caller's goroutine. Otherwise
// task is resubmitted onto pool via submitNonBlocking and raced against a
// timer.
//
// On deadline, the carrier goroutine is abandoned: Go has no
// Thread.interrupt() equivalent for an arbitrary function, so the
// still-running goroutine is left to finish on its own and its result is
// discarded. A resubmission that momentarily finds the queue full (the
// "late rejection" race: the pool's capacity was consumed by unrelated work
// between admission and this second submit) is reported as
// BulkheadRejected("capacity exceeded"), not as a distinct error kind.
func runWithTimeLimit[T any](pool *workerPool, limit time.Duration, clock Clock, hooks *Hooks, task Task[T]) (T, error) {
	if limit <= unboundedWait {
		return task()
	}

	var (
		result  T
		taskErr error
	)

	done, accepted := pool.submitNonBlocking(func() {
		result, taskErr = task()
	})
	if !accepted {
		var zero T

		hooks.emitBulkheadRejected("capacity exceeded")

		return zero, &BulkheadRejected{Reason: "capacity exceeded"}
	}

	timer := clock.NewTimer(limit)
	defer timer.Stop()

	select {
	case <-done:
		return result, taskErr
	case <-timer.C():
		var zero T

		hooks.emitTimeout()

		return zero, &TimedOut{Cause: &deadlineExceeded{limit: limit}}
	}
}
