package callsync

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCallID marks an event that carries no provider call id.
	// Such events can never be reconciled and are dropped after logging.
	ErrMissingCallID = errors.New("event has no call id")

	// ErrUnknownAssistant marks an event whose assistant id does not map
	// to any local assistant. The event is dropped; no orphan row is
	// written.
	ErrUnknownAssistant = errors.New("assistant is not registered")
)

// PersistenceError wraps a database failure while applying a patch. The
// delivery should be retried (HTTP 500 to the provider, NACK on a queue).
type PersistenceError struct {
	CallID string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist call %s: %v", e.CallID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// UpstreamFetchError wraps a provider API failure during a sync job run.
type UpstreamFetchError struct {
	AssistantID string
	Err         error
}

func (e *UpstreamFetchError) Error() string {
	return fmt.Sprintf("fetch calls for assistant %s: %v", e.AssistantID, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}
