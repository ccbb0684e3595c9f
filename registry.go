package resicord

import (
	"sync"
	"time"
)

// poolEntry bundles everything a bulkhead identified by a pool id shares
// across every Try[T] attached to it: the admission gate bounding
// concurrent callers and the worker pool bounding concurrent execution plus
// queue depth. Invariant: capacities of an existing entry are never
// mutated by a later Bulkhead call with the same id — whoever creates the
// entry first sets its bounds for the life of the process.
type poolEntry struct {
	gate    *admissionGate
	pool    *workerPool
	maxWait time.Duration
}

// poolRegistry is a process-wide mapping from pool id to poolEntry. Pools
// created with the same id are shared; callers compose against the same
// bulkhead by name without holding a reference to it. A single map entry
// owns both the admission gate and the worker pool for that id.
//
// Pattern: Singleton — defaultRegistry uses sync.OnceValue for safe lazy
// init; explicit registries can be constructed for test isolation.
type poolRegistry struct {
	mu      sync.Mutex
	entries map[string]*poolEntry
}

func newPoolRegistry() *poolRegistry {
	return &poolRegistry{entries: make(map[string]*poolEntry)}
}

//nolint:gochecknoglobals // singleton via sync.OnceValue
var defaultPoolRegistryOnce = sync.OnceValue(newPoolRegistry)

// getOrCreate returns the existing entry for id, creating one with the
// given bounds if absent. The bounds supplied by whichever caller arrives
// first win for the lifetime of the process; later calls with the same id
// attach to the entry already there, bounds and all.
func (r *poolRegistry) getOrCreate(id string, maxConcurrent, maxQueue int, maxWait time.Duration) *poolEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		return e
	}

	e := &poolEntry{
		gate:    newAdmissionGate(maxConcurrent),
		pool:    newWorkerPool(maxConcurrent, maxQueue),
		maxWait: maxWait,
	}
	r.entries[id] = e

	return e
}

// get looks up an existing pool entry without creating one. BulkheadAttach
// uses this to fail fast with ErrPoolNotFound rather than silently
// materializing a pool nobody configured.
func (r *poolRegistry) get(id string) (*poolEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]

	return e, ok
}

// defaultRegistry returns the package-level pool registry, creating it on
// first call.
func defaultRegistry() *poolRegistry {
	return defaultPoolRegistryOnce()
}
