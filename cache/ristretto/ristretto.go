// Package ristretto provides an adapter for the Ristretto cache library,
// implementing the resicord.Cache interface for use with Try[T].StaleCache.
package ristretto

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/smeghaderi/resicord"
)

type (
	// Key is the subset of ristretto.Key types that are also comparable,
	// required by the resicord.Cache interface.
	Key interface {
		uint64 | string | byte | int | int32 | uint32 | int64
	}

	// adapter wraps a ristretto.Cache to implement resicord.Cache.
	adapter[K Key, V any] struct {
		cache *ristretto.Cache[K, V]
	}
)

// MustNew creates a resicord.Cache backed by a Ristretto cache. K must
// satisfy [Key]. MaxSize from [resicord.CacheConfig] configures the cache
// capacity; Ristretto recommends NumCounters = 10 * MaxSize. It panics if
// the underlying Ristretto cache cannot be built.
//
//nolint:ireturn,varnamelen // generic type params K,V are idiomatic in Go
func MustNew[K Key, V any](cfg resicord.CacheConfig) resicord.Cache[K, V] {
	cache, err := ristretto.NewCache(&ristretto.Config[K, V]{
		NumCounters: int64(cfg.MaxSize) * 10, //nolint:mnd // ristretto-recommended ratio
		MaxCost:     int64(cfg.MaxSize),
		BufferItems: 64, //nolint:mnd // ristretto-recommended buffer size
	})
	if err != nil {
		panic("resicord/cache/ristretto: failed to build cache: " + err.Error())
	}

	return &adapter[K, V]{cache: cache}
}

// Get retrieves a cached value by key.
//
//nolint:ireturn // generic type parameter V, not an interface
func (a *adapter[K, V]) Get(key K) (V, bool) {
	return a.cache.Get(key)
}

// Set stores a value with the given TTL.
func (a *adapter[K, V]) Set(key K, value V, ttl time.Duration) {
	a.cache.SetWithTTL(key, value, 1, ttl)
}

// Delete removes a cached entry by key.
func (a *adapter[K, V]) Delete(key K) {
	a.cache.Del(key)
}
