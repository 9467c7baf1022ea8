package crypt

import (
	"crypto/cipher"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// Encryption modes a session may be bound to.  Only AEAD constructions
// are offered.  None means the session is unencrypted, and every other
// encryption attribute of the session is meaningless.
type Mode int32

const (
	None Mode = iota
	ChaCha20Poly1305
	XChaCha20Poly1305
)

func (m Mode) String() string {
	switch m {
	default:
		return fmt.Sprintf("Mode(%d)", int32(m))
	case None:
		return "None"
	case ChaCha20Poly1305:
		return "ChaCha20Poly1305"
	case XChaCha20Poly1305:
		return "XChaCha20Poly1305"
	}
}

// Size of the key, in bytes, required by the mode.
func (m Mode) KeySize() int {
	switch m {
	default:
		return 0
	case ChaCha20Poly1305, XChaCha20Poly1305:
		return chacha20poly1305.KeySize
	}
}

func (m Mode) newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != m.KeySize() {
		return nil, errors.Wrapf(KeySizeError, "Expected [%v] bytes for mode [%v] but got [%v]", m.KeySize(), m, len(key))
	}

	switch m {
	default:
		return nil, errors.Wrapf(UnknownModeError, "No cipher for mode [%v]", m)
	case ChaCha20Poly1305:
		return chacha20poly1305.New(key)
	case XChaCha20Poly1305:
		return chacha20poly1305.NewX(key)
	}
}
