package resicord

// Pattern: Fallback — catches a final error and delegates to a handler
// that deterministically produces a value, providing a last line of
// defence. The handler cannot itself fail, so a Try[T] with OnFailure
// configured always succeeds from its caller's point of view.

// runWithFallback executes task. On error it calls handler with the error
// and returns the handler's value with a nil error.
func runWithFallback[T any](task Task[T], handler FallbackHandler[T], hooks *Hooks) (T, error) {
	result, err := task()
	if err != nil {
		hooks.emitFallbackUsed(err)

		return handler(err), nil
	}

	return result, nil
}
