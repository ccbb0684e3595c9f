package resicord

import "time"

// Hooks holds optional callback functions for pattern lifecycle events. All
// fields are nil by default; callers set only the hooks they care about.
// Once constructed, a Hooks value must not be mutated — emit methods read
// the function fields without synchronisation, which is safe as long as the
// struct is read-only after initialisation.
//
// Pattern: Observer — decouples event emission from consumers (logging,
// metrics, alerting) without the patterns themselves knowing about
// observers. Hooks is the library's entire logging story: there is no
// baked-in logger, a caller wires these to log/slog or a metrics client.
type Hooks struct {
	OnRetry            func(attempt int, err error)
	OnBulkheadRejected func(reason string)
	OnBulkheadAcquired func()
	OnBulkheadReleased func()
	OnTimeout          func()
	OnHedgeTriggered   func()
	OnHedgeWon         func()
	OnStaleServed      func(age time.Duration)
	OnCacheRefreshed   func()
	OnFallbackUsed     func(err error)
}

func (h *Hooks) emitRetry(attempt int, err error) {
	if h.OnRetry != nil {
		h.OnRetry(attempt, err)
	}
}

func (h *Hooks) emitBulkheadRejected(reason string) {
	if h.OnBulkheadRejected != nil {
		h.OnBulkheadRejected(reason)
	}
}

func (h *Hooks) emitBulkheadAcquired() {
	if h.OnBulkheadAcquired != nil {
		h.OnBulkheadAcquired()
	}
}

func (h *Hooks) emitBulkheadReleased() {
	if h.OnBulkheadReleased != nil {
		h.OnBulkheadReleased()
	}
}

func (h *Hooks) emitTimeout() {
	if h.OnTimeout != nil {
		h.OnTimeout()
	}
}

func (h *Hooks) emitHedgeTriggered() {
	if h.OnHedgeTriggered != nil {
		h.OnHedgeTriggered()
	}
}

func (h *Hooks) emitHedgeWon() {
	if h.OnHedgeWon != nil {
		h.OnHedgeWon()
	}
}

func (h *Hooks) emitStaleServed(age time.Duration) {
	if h.OnStaleServed != nil {
		h.OnStaleServed(age)
	}
}

func (h *Hooks) emitCacheRefreshed() {
	if h.OnCacheRefreshed != nil {
		h.OnCacheRefreshed()
	}
}

func (h *Hooks) emitFallbackUsed(err error) {
	if h.OnFallbackUsed != nil {
		h.OnFallbackUsed(err)
	}
}
