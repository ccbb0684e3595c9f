package resicord

import "time"

// Pattern: Hedged Request — after a delay, fire a second concurrent
// attempt. Whichever finishes first with a non-error result wins; the
// other is abandoned. Task[T] carries no context, so there is nothing to
// cancel the loser with — the losing goroutine simply runs to completion
// unobserved, consistent with the library's cooperative, best-effort
// cancellation model elsewhere.

// hedgeResult holds the outcome of one hedged attempt.
type hedgeResult[T any] struct {
	val    T
	err    error
	hedged bool
}

// runWithHedge runs task and, if it hasn't produced a result within
// delay, starts a second independent attempt. The first attempt to
// succeed wins. If both fail, the error from whichever finished first is
// returned.
func runWithHedge[T any](delay time.Duration, clock Clock, hooks *Hooks, task Task[T]) (T, error) {
	var zero T

	if delay <= 0 {
		return task()
	}

	results := make(chan hedgeResult[T], 2)

	go func() {
		v, err := task()
		results <- hedgeResult[T]{val: v, err: err}
	}()

	timer := clock.NewTimer(delay)

	select {
	case result := <-results:
		timer.Stop()

		return result.val, result.err

	case <-timer.C():
		hooks.emitHedgeTriggered()

		go func() {
			v, err := task()
			results <- hedgeResult[T]{val: v, err: err, hedged: true}
		}()

		first := <-results
		if first.err == nil {
			if first.hedged {
				hooks.emitHedgeWon()
			}

			return first.val, nil
		}

		second := <-results
		if second.err == nil {
			if second.hedged {
				hooks.emitHedgeWon()
			}

			return second.val, nil
		}

		return zero, first.err
	}
}
