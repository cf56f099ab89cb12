package observability

import "runtime/debug"

// RecoverPanic recovers from a panic and logs it with the panic value
// and the full stack trace. Use in a defer statement around goroutines
// that must not take the process down. The panic is not re-raised.
func RecoverPanic(logger *Logger, where string) {
	if r := recover(); r != nil {
		logger.WithFields(map[string]interface{}{
			"panic": r,
			"stack": string(debug.Stack()),
			"where": where,
		}).Error("panic recovered")
	}
}
