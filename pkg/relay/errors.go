package relay

import "errors"

var (
	ErrNotFound        = errors.New("session not found")
	ErrSessionFull     = errors.New("session is full")
	ErrRoleBound       = errors.New("role already has an open stream")
	ErrBackpressure    = errors.New("peer is not draining messages")
	ErrMalformed       = errors.New("malformed message")
	ErrTooManySessions = errors.New("too many sessions")
	// ErrSessionClosed is returned by a stream pump when the session it was
	// bound to has been destroyed, either by the reaper or by the last peer
	// leaving.
	ErrSessionClosed = errors.New("session closed")
)
