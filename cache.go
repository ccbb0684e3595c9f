package resicord

import (
	"fmt"
	"os"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

type (
	// Cache is the interface that cache adapters must implement. TTL is
	// passed per Set call; the underlying cache library handles expiration.
	Cache[K comparable, V any] interface {
		// Get retrieves a cached value by key. Returns the value and true if
		// found and unexpired.
		Get(key K) (V, bool)
		// Set stores a value with the given TTL.
		Set(key K, value V, ttl time.Duration)
		// Delete removes a cached entry by key.
		Delete(key K)
	}

	// CacheConfig holds configuration for a cache instance.
	CacheConfig struct {
		// Options holds adapter-specific settings.
		Options map[string]any
		// TTL is the time-to-live for cached entries.
		TTL time.Duration
		// MaxSize is the maximum number of entries the cache can hold.
		MaxSize int
	}

	cacheConfigFile struct {
		Caches map[string]cacheConfigJSON `json:"caches"`
	}

	cacheConfigJSON struct {
		Options map[string]any `json:"options,omitempty"`
		TTL     string         `json:"ttl"`
		MaxSize int            `json:"max_size"`
	}
)

// LoadCacheConfig reads a JSON configuration file and returns the
// CacheConfig for the named cache entry.
func LoadCacheConfig(path, name string) (CacheConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CacheConfig{}, fmt.Errorf("resicord: read cache config: %w", err)
	}

	var cfg cacheConfigFile

	if err = json.Unmarshal(data, &cfg); err != nil {
		return CacheConfig{}, fmt.Errorf("resicord: parse cache config: %w", err)
	}

	raw, ok := cfg.Caches[name]
	if !ok {
		return CacheConfig{}, fmt.Errorf("resicord: cache %q not found in config", name)
	}

	cc := CacheConfig{
		Options: raw.Options,
		MaxSize: raw.MaxSize,
	}

	if raw.TTL != "" {
		ttl, ttlErr := time.ParseDuration(raw.TTL)
		if ttlErr != nil {
			return CacheConfig{}, fmt.Errorf("resicord: cache %q: ttl: %w", name, ttlErr)
		}

		cc.TTL = ttl
	}

	return cc, nil
}

// memCacheEntry is a single slot in the built-in default cache.
type memCacheEntry struct {
	val       any
	expiresAt time.Time
}

// memCache is a minimal mutex-guarded map implementing Cache[string, any].
// It backs Try[T].StaleCache when a caller does not override the cache via
// WithCache — cache/ristretto lives in a subpackage that imports this
// package, so this package cannot import it back without a cycle.
// Expired entries are evicted lazily on Get, not by a background sweep.
type memCache struct {
	mu   sync.Mutex
	data map[string]memCacheEntry
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]memCacheEntry)}
}

func (c *memCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		delete(c.data, key)

		return nil, false
	}

	return entry.val, true
}

func (c *memCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = memCacheEntry{val: value, expiresAt: time.Now().Add(ttl)}
}

func (c *memCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
}

//nolint:gochecknoglobals // singleton via sync.OnceValue, mirrors defaultRegistry
var defaultMemCacheOnce = sync.OnceValue(func() Cache[string, any] { return newMemCache() })

// defaultCache returns the package-level fallback cache used by
// Try[T].StaleCache when no cache override is configured.
func defaultCache() Cache[string, any] {
	return defaultMemCacheOnce()
}
