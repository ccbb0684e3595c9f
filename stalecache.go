package resicord

import "time"

// CachedValue is the payload stored in a stale-value cache: a successful
// result plus the time it was produced, so a consumer can report the age
// of a stale value it serves.
type CachedValue[T any] struct {
	val      T
	storedAt time.Time
}

// Pattern: Stale-on-error caching — on success a result is cached keyed by
// name; on terminal failure, a cached value still within its TTL is served
// in place of the error. The underlying [Cache] owns expiration, so a Get
// miss already means either "never set" or "expired" — no second freshness
// check is needed here.

// runWithStaleCache runs task and caches a successful result under key. On
// failure, a cached value is returned if one is present; otherwise the
// original error propagates.
func runWithStaleCache[T any](cache Cache[string, any], key string, ttl time.Duration, clock Clock, hooks *Hooks, task Task[T]) (T, error) {
	result, err := task()
	if err == nil {
		cache.Set(key, CachedValue[T]{val: result, storedAt: clock.Now()}, ttl)
		hooks.emitCacheRefreshed()

		return result, nil
	}

	if cachedAny, ok := cache.Get(key); ok {
		if cached, ok := cachedAny.(CachedValue[T]); ok {
			hooks.emitStaleServed(clock.Now().Sub(cached.storedAt))

			return cached.val, nil
		}
	}

	var zero T

	return zero, err
}
