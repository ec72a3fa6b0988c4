package ticket

import "github.com/rotisserie/eris"

// Typed errors surfaced to callers of ticket operations. They are never
// retried automatically.
var (
	// ErrAlreadyActive means the plate already has an active session.
	ErrAlreadyActive = eris.New("ticket: session already active for plate")

	// ErrNotFound means no ticket exists with the given id.
	ErrNotFound = eris.New("ticket: not found")

	// ErrNotActive means the ticket exists but is no longer active.
	ErrNotActive = eris.New("ticket: not active")

	// ErrInvalidDuration means the requested duration is out of bounds.
	ErrInvalidDuration = eris.New("ticket: invalid duration")

	// ErrActivationFailed means the activation message could not be
	// dispatched; no ticket was created.
	ErrActivationFailed = eris.New("ticket: activation dispatch failed")
)
