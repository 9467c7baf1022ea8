// Package session implements the registry of authenticated sessions.
//
// A session is the state of one logical, authenticated connection: its id,
// the encryption policy negotiated for it, the symmetric key and identity
// certificate produced by authentication, and the per-direction sequence
// numbers and message counters used by the encryption layer to guard
// against replay and reordering.
//
// The state lives in a single reference-counted record.  A *Session is a
// handle onto that record.  Handles are shared explicitly with Share() and
// dropped with Release(); the record, along with the key and certificate it
// owns, is destroyed when the last handle is released.  Every mutable field
// of the record is guarded by the record's lock, so handles may be used
// freely from multiple goroutines.
//
// Sessions are compared and ordered by id alone.  Two handles with the
// same id are equal even when they reference different records.  Tables
// depend on this, so use SameRecord() when identity actually matters.
package session

import "github.com/pkg/errors"

var (
	// Raised (as a panic) when a handle is used before Init() or after Release().
	UninitializedError = errors.New("SESSION:UNINITIALIZED")

	// Returned when a table already holds a session with the same id.
	DuplicateSessionError = errors.New("SESSION:DUPLICATE")

	// Returned when operating on a closed table.
	TableClosedError = errors.New("SESSION:TABLE:CLOSED")
)

const (
	confIdleTimeout  = "relay.session.idle.timeout"
	confReapInterval = "relay.session.reap.interval"
)
