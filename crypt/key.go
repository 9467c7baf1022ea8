package crypt

import (
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"io"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/pbkdf2"
)

// A symmetric key.  Keys are move-only: ownership is transferred with
// Move(), after which the original holder is empty and every operation on
// it fails with MovedError.  The owner is responsible for calling Destroy(),
// which zeroes the key material.
//
// *This object is thread-safe*
type Key struct {
	lock  sync.Mutex
	mode  Mode
	raw   []byte
	empty bool
}

// Creates a key for the given mode.  The raw bytes are copied.
func NewKey(mode Mode, raw []byte) (*Key, error) {
	if len(raw) != mode.KeySize() || mode.KeySize() == 0 {
		return nil, errors.Wrapf(KeySizeError, "Expected [%v] bytes for mode [%v] but got [%v]", mode.KeySize(), mode, len(raw))
	}

	buf := make([]byte, len(raw))
	copy(buf, raw)
	return &Key{mode: mode, raw: buf}, nil
}

// Generates a random key for the mode.
func GenerateKey(rand io.Reader, mode Mode) (*Key, error) {
	if mode.KeySize() == 0 {
		return nil, errors.Wrapf(UnknownModeError, "Cannot generate a key for mode [%v]", mode)
	}

	buf := make([]byte, mode.KeySize())
	defer destroyBytes(buf)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, errors.Wrapf(err, "Error generating [%v] key", mode)
	}
	return NewKey(mode, buf)
}

// Derives a key for the mode from a shared secret using pbkdf2 over sha256.
func DeriveKey(mode Mode, secret []byte, salt []byte, iter int) (*Key, error) {
	if mode.KeySize() == 0 {
		return nil, errors.Wrapf(UnknownModeError, "Cannot derive a key for mode [%v]", mode)
	}

	buf := pbkdf2.Key(secret, salt, iter, mode.KeySize(), sha256.New)
	defer destroyBytes(buf)
	return NewKey(mode, buf)
}

func (k *Key) Mode() Mode {
	return k.mode
}

// Transfers ownership of the key material to a new holder.  The receiver
// is left empty.  Moving a nil or already empty key returns nil.
func (k *Key) Move() *Key {
	if k == nil {
		return nil
	}

	k.lock.Lock()
	defer k.lock.Unlock()
	if k.empty {
		return nil
	}

	ret := &Key{mode: k.mode, raw: k.raw}
	k.raw = nil
	k.empty = true
	return ret
}

// Returns true if the key material has been moved or destroyed.
func (k *Key) IsEmpty() bool {
	k.lock.Lock()
	defer k.lock.Unlock()
	return k.empty
}

// Returns a cipher bound to the key.
func (k *Key) AEAD() (cipher.AEAD, error) {
	k.lock.Lock()
	defer k.lock.Unlock()
	if k.empty {
		return nil, errors.WithStack(MovedError)
	}
	return k.mode.newAEAD(k.raw)
}

// Zeroes the key material.  Safe to call more than once.
func (k *Key) Destroy() {
	k.lock.Lock()
	defer k.lock.Unlock()
	destroyBytes(k.raw)
	k.raw = nil
	k.empty = true
}

// Never renders key material.
func (k *Key) String() string {
	if k == nil {
		return "Key(nil)"
	}
	if k.IsEmpty() {
		return fmt.Sprintf("Key(%v, empty)", k.mode)
	}
	return fmt.Sprintf("Key(%v, %v bits)", k.mode, k.mode.KeySize()*8)
}

// Zeroes the input array of bytes
func destroyBytes(buf []byte) {
	for i := 0; i < len(buf); i++ {
		buf[i] = 0
	}
}
