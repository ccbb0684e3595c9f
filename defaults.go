package resicord

// DefaultPoolID names the bulkhead a Try[T] attaches to when neither
// Bulkhead nor BulkheadAttach is called before Run.
const DefaultPoolID = "Default-Pool-Id"

// A zero value for maxConcurrent or maxQueue means "unbounded" rather than
// "zero capacity" (a literal max-int-sized channel buffer is not a
// reasonable allocation). An unbounded pool runs each task on its own
// goroutine with no admission wait and no queue capacity check. A zero
// maxWait does not mean unbounded: on a bounded pool it means a single
// non-blocking attempt at the gate and at the queue, with no waiting.
const (
	unboundedConcurrency = 0
	unboundedQueue       = 0
	unboundedWait        = 0
)
