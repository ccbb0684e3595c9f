package resicord

import (
	"sync"
)

// job is a unit of work submitted to a workerPool. fn is invoked on a
// worker goroutine; done is closed exactly once, when fn returns or
// panics.
type job struct {
	fn   func()
	done chan struct{}
}

// workerPool is a fixed-size set of goroutines draining a bounded queue.
// It is the execution half of a bulkhead: the AdmissionGate bounds how
// many callers are allowed to have work in flight, workerPool bounds how
// many of those run concurrently and how many more may wait in its queue.
//
// Pattern: Worker Pool — fixed goroutine count plus a bounded channel as
// the work queue, with panic recovery per task so a single misbehaving
// task can never take down a worker or hang its caller.
type workerPool struct {
	queue    chan job
	elastic  bool // unbounded: run each job on its own goroutine, no queue
	stopped  chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// newWorkerPool starts a pool with the given number of workers and queue
// capacity. maxConcurrent <= 0 or maxQueue <= 0 selects the elastic
// (unbounded) mode described on unboundedConcurrency.
func newWorkerPool(maxConcurrent, maxQueue int) *workerPool {
	p := &workerPool{stopped: make(chan struct{})}

	if maxConcurrent <= unboundedConcurrency || maxQueue <= unboundedQueue {
		p.elastic = true

		return p
	}

	p.queue = make(chan job, maxQueue)

	for range maxConcurrent {
		p.wg.Add(1)

		go p.worker()
	}

	return p
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case j, ok := <-p.queue:
			if !ok {
				return
			}

			runJob(j)
		case <-p.stopped:
			return
		}
	}
}

// runJob executes j.fn, converting a panic into a silent return so that a
// task's result channel is always closed exactly once.
func runJob(j job) {
	defer close(j.done)
	defer func() { _ = recover() }()

	j.fn()
}

// tryEnqueue submits fn and blocks until it is accepted onto the queue (or
// run, in elastic mode) or wait elapses, whichever comes first. A nil wait
// means fail fast: a single non-blocking attempt, no waiting at all,
// matching a caller-supplied max_admission_wait of zero. It reports
// whether the job was accepted; the caller is responsible for waiting on
// the returned channel only when accepted is true.
func (p *workerPool) tryEnqueue(fn func(), wait <-chan struct{}) (done chan struct{}, accepted bool) {
	done = make(chan struct{})
	j := job{fn: fn, done: done}

	if p.elastic {
		go runJob(j)

		return done, true
	}

	select {
	case p.queue <- j:
		return done, true
	default:
	}

	if wait == nil {
		return nil, false
	}

	select {
	case p.queue <- j:
		return done, true
	case <-wait:
		return nil, false
	case <-p.stopped:
		return nil, false
	}
}

// submitNonBlocking offers fn onto the queue without waiting. It is used by
// the time-limit carrier to resubmit a task onto the same pool it was
// already admitted to. A false return means the queue was momentarily full
// and the caller should translate it into a BulkheadRejected("capacity
// exceeded").
func (p *workerPool) submitNonBlocking(fn func()) (done chan struct{}, accepted bool) {
	done = make(chan struct{})
	j := job{fn: fn, done: done}

	if p.elastic {
		go runJob(j)

		return done, true
	}

	select {
	case p.queue <- j:
		return done, true
	default:
		return nil, false
	}
}

// stop shuts the pool's workers down. It does not wait for queued jobs
// to drain; it is intended for test cleanup, not for runtime use by
// Try[T] (pools are process-wide and outlive any single call).
func (p *workerPool) stop() {
	p.stopOnce.Do(func() { close(p.stopped) })
	p.wg.Wait()
}
