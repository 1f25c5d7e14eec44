package chat

import "errors"

// Error taxonomy surfaced by the orchestrator. Callers branch with errors.Is.
var (
	// ErrValidation marks malformed input, rejected before any persistence
	// or upstream call.
	ErrValidation = errors.New("validation failed")

	// ErrStorage marks an unavailable persistence medium. The operation did
	// not complete; the whole exchange may be retried.
	ErrStorage = errors.New("storage unavailable")

	// ErrUpstream marks a failed or timed-out completion call. The user turn
	// is already persisted and stays visible with no reply.
	ErrUpstream = errors.New("upstream completion failed")
)
