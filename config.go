package resicord

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
)

type (
	// poolConfigFile is the top-level JSON structure read by LoadPoolConfig.
	poolConfigFile struct {
		Pools map[string]poolSpecJSON `json:"pools"`
	}

	poolSpecJSON struct {
		MaxConcurrent    int    `json:"max_concurrent"`
		MaxQueue         int    `json:"max_queue"`
		MaxAdmissionWait string `json:"max_admission_wait,omitempty"`
	}

	// PoolSpec holds the decoded bulkhead bounds for one named pool, as
	// returned by LoadPoolConfig. It carries no JSON tags itself; pass its
	// fields to Try[T].Bulkhead to materialize the pool.
	PoolSpec struct {
		MaxConcurrent    int
		MaxQueue         int
		MaxAdmissionWait time.Duration
	}

	// TryConfig holds the decoded configuration for a single Try[T] pipeline.
	// Embed it in your own app config struct for JSON unmarshaling, then
	// call BuildTry to obtain a configured Try[T].
	TryConfig struct {
		// Retry configures the retry pattern. Optional.
		Retry *RetryConfigSpec `json:"retry,omitempty"`
		// Timeout is the hard deadline for a single attempt. Optional.
		// Parsed via time.ParseDuration. Example: "2s".
		Timeout *string `json:"timeout,omitempty"`
		// Hedge is the delay before a second, redundant attempt. Optional.
		// Parsed via time.ParseDuration. Example: "200ms".
		Hedge *string `json:"hedge,omitempty"`
		// StaleCache is the TTL of a cached success served on terminal
		// failure. Optional. Parsed via time.ParseDuration.
		StaleCache *string `json:"stale_cache,omitempty"`
		// BulkheadPool names a pool this Try[T] should attach to via
		// BulkheadAttach. Optional; the pool must already exist in the
		// registry (typically created by a Bulkhead call fed with a
		// PoolSpec from LoadPoolConfig, which itself creates no pool).
		BulkheadPool *string `json:"bulkhead_pool,omitempty"`
	}

	// RetryConfigSpec holds retry configuration values. Embed it (via
	// TryConfig) in your own config struct for JSON unmarshaling.
	RetryConfigSpec struct {
		// Count is the maximum number of attempts. Required.
		Count int `json:"count"`
		// Delay is the constant delay between attempts. Required.
		// Parsed via time.ParseDuration. Example: "100ms".
		Delay string `json:"delay"`
		// MaxDelay caps the delay. Optional. Parsed via time.ParseDuration.
		MaxDelay *string `json:"max_delay,omitempty"`
	}
)

// LoadPoolConfig reads a JSON file describing named bulkhead presets and
// returns the decoded PoolSpec for each. Durations (max_admission_wait)
// are parsed via time.ParseDuration; an absent or empty
// max_admission_wait decodes to zero, which Bulkhead treats as "do not
// wait": a bounded pool rejects at once when no slot is free.
func LoadPoolConfig(path string) (map[string]PoolSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resicord: read pool config: %w", err)
	}

	var cfg poolConfigFile

	if err = json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("resicord: parse pool config: %w", err)
	}

	specs := make(map[string]PoolSpec, len(cfg.Pools))

	for name, raw := range cfg.Pools {
		spec := PoolSpec{
			MaxConcurrent: raw.MaxConcurrent,
			MaxQueue:      raw.MaxQueue,
		}

		if raw.MaxAdmissionWait != "" {
			wait, waitErr := time.ParseDuration(raw.MaxAdmissionWait)
			if waitErr != nil {
				return nil, fmt.Errorf("resicord: pool %q: max_admission_wait: %w", name, waitErr)
			}

			spec.MaxAdmissionWait = wait
		}

		specs[name] = spec
	}

	return specs, nil
}

// BuildTry assembles a Try[T] wrapping task from cfg: each optional field
// of TryConfig, if present, contributes one fluent call. A BulkheadPool
// name must already have a pool created for it (e.g. via a prior Bulkhead
// call) — BuildTry never creates a pool itself, only attaches to one.
func BuildTry[T any](task Task[T], cfg *TryConfig) (*Try[T], error) {
	t := New(task)

	if cfg.Retry != nil {
		delay, err := time.ParseDuration(cfg.Retry.Delay)
		if err != nil {
			return nil, fmt.Errorf("resicord: retry.delay: %w", err)
		}

		t.Retry(cfg.Retry.Count, delay)

		if cfg.Retry.MaxDelay != nil {
			maxDelay, maxErr := time.ParseDuration(*cfg.Retry.MaxDelay)
			if maxErr != nil {
				return nil, fmt.Errorf("resicord: retry.max_delay: %w", maxErr)
			}

			t.RetryOptions(MaxDelay(maxDelay))
		}
	}

	if cfg.Timeout != nil {
		d, err := time.ParseDuration(*cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("resicord: timeout: %w", err)
		}

		t.TimeLimit(d)
	}

	if cfg.Hedge != nil {
		d, err := time.ParseDuration(*cfg.Hedge)
		if err != nil {
			return nil, fmt.Errorf("resicord: hedge: %w", err)
		}

		t.Hedge(d)
	}

	if cfg.StaleCache != nil {
		d, err := time.ParseDuration(*cfg.StaleCache)
		if err != nil {
			return nil, fmt.Errorf("resicord: stale_cache: %w", err)
		}

		t.StaleCache(d)
	}

	if cfg.BulkheadPool != nil {
		t.BulkheadAttach(*cfg.BulkheadPool)
	}

	return t, nil
}
