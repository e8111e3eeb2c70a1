package session

import (
	"errors"
	"fmt"
)

// State guard errors returned when an operation arrives in the wrong
// lifecycle state. These are caller mistakes, not failures; nothing about
// the session changes.
var (
	ErrNotAwaitingParticipant = errors.New("session is not awaiting a participant")
	ErrNotRunning             = errors.New("session is not running")
)

// ValidationError reports invalid caller input (empty participant name,
// malformed duration, bad question or option reference). Surfaced
// synchronously; no state change.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// FetchError reports a failed read from a remote store. The dependent step
// does not advance; there is no automatic retry.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FinalizeError reports a failed merge into the remote result aggregate.
// The session stays in FINALIZING with its persisted keys intact; recovery
// requires external intervention.
type FinalizeError struct {
	Err error
}

func (e *FinalizeError) Error() string {
	return fmt.Sprintf("finalize: %v", e.Err)
}

func (e *FinalizeError) Unwrap() error { return e.Err }
