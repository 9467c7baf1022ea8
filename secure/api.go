// Package secure seals outbound messages and opens inbound ones under the
// encryption policy of their session.
//
// Every frame carries a flag byte and a sequence number ahead of the body.
// Only encrypted frames are sequenced; plaintext frames carry zero, since
// nothing authenticates their header.  Encrypted bodies are a random nonce
// followed by the AEAD ciphertext, authenticated together with the session
// id and the header, so a frame cannot be replayed onto another session or
// have its sequence number rewritten.
//
// Inbound sequence numbers are verified only after the frame has
// authenticated, so forged frames never advance the session's state.
package secure

import "github.com/pkg/errors"

var (
	// Returned when an encrypted session is missing its key or certificate.
	InvalidSessionError = errors.New("SECURE:SESSION:INVALID")

	// Returned when a frame is too short or carries unknown flags.
	FrameError = errors.New("SECURE:FRAME:MALFORMED")

	// Returned when a frame fails to authenticate.
	AuthenticationError = errors.New("SECURE:FRAME:AUTH")

	// Returned when a plaintext frame arrives on a session that
	// requires every message to be encrypted.
	PlaintextError = errors.New("SECURE:FRAME:PLAINTEXT")

	// Returned when a frame is a replay or out of order.
	SequenceError = errors.New("SECURE:FRAME:SEQUENCE")
)

const (
	confReliable = "relay.secure.reliable"
)

const (
	defaultReliable = true
)
