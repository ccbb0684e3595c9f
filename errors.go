package resicord

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Error classification wrappers
// ---------------------------------------------------------------------------.

type (
	// ResilienceError identifies errors produced by the library itself, as
	// opposed to errors returned by the wrapped task.
	ResilienceError interface {
		error
		// IsResilience reports whether this error originates from the
		// resilience layer.
		IsResilience() bool
	}

	// transientError marks a wrapped error as transient (retriable).
	transientError struct {
		err error
	}

	// permanentError marks a wrapped error as permanent (non-retriable).
	permanentError struct {
		err error
	}

	// BulkheadRejected is returned when a task cannot be admitted to a
	// bulkhead's worker pool: the admission wait timed out, the bounded
	// queue is full, or a late resubmission (see the time-limit carrier)
	// loses the race for a slot.
	BulkheadRejected struct {
		Reason string
	}

	// TimedOut is returned when a task does not complete within its
	// configured time limit. The carrier goroutine is abandoned, not
	// joined.
	TimedOut struct {
		Cause error
	}

	// RunError wraps the last failure produced by a task when no OnFailure
	// handler is configured and retry, hedge and stale-cache fallbacks (if
	// any) have all been exhausted.
	RunError struct {
		Cause error
	}

	// resilienceError is the concrete type backing package sentinel errors.
	resilienceError string
)

// ErrPoolNotFound is returned by Run for a Try[T] configured with
// BulkheadAttach when no pool with the given id was previously created via
// Bulkhead. It is a programmer error, not a runtime condition a caller
// should retry.
var ErrPoolNotFound error = resilienceError("resicord: pool not found")

func (e resilienceError) Error() string    { return string(e) }
func (resilienceError) IsResilience() bool { return true }

func (e *BulkheadRejected) Error() string      { return "bulkhead rejected: " + e.Reason }
func (e *BulkheadRejected) IsResilience() bool { return true }

func (e *TimedOut) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("timed out: %v", e.Cause)
	}

	return "timed out"
}

func (e *TimedOut) Unwrap() error      { return e.Cause }
func (e *TimedOut) IsResilience() bool { return true }

func (e *RunError) Error() string { return fmt.Sprintf("resicord: run failed: %v", e.Cause) }
func (e *RunError) Unwrap() error { return e.Cause }

func (e *transientError) Error() string { return "transient: " + e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func (e *permanentError) Error() string { return "permanent: " + e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Transient wraps err to mark it as a transient (retriable) error. Returns
// nil if err is nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}

	return &transientError{err: err}
}

// Permanent wraps err to mark it as a permanent (non-retriable) error.
// Returns nil if err is nil.
func Permanent(err error) error {
	if err == nil {
		return nil
	}

	return &permanentError{err: err}
}

// IsTransient reports whether err is transient. Unclassified errors are
// treated as transient, matching the library's default of retrying
// everything unless told otherwise. Returns false for nil.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pe *permanentError

	return !errors.As(err, &pe)
}

// IsPermanent reports whether err was explicitly marked permanent via
// Permanent. Returns false for nil and for unclassified errors.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}

	var pe *permanentError

	return errors.As(err, &pe)
}
