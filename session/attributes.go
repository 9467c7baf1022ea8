package session

import (
	"fmt"

	"github.com/pkopriv2/relay/crypt"
)

// The encryption policy of a session.  Attributes are fixed for the life
// of the session.  A mode of crypt.None implies that none of the other
// attributes apply.
type EncryptAttributes struct {
	Mode       crypt.Mode
	Sequenced  bool // messages carry sequence numbers
	Persistent bool // keyed by session id, rather than one-shot
	EncryptAll bool // every message must be encrypted
}

// Returns attributes for the mode.  Sequencing and encrypt-all are on
// by default.
func NewEncryptAttributes(mode crypt.Mode, persistent bool) EncryptAttributes {
	return EncryptAttributes{
		Mode:       mode,
		Sequenced:  true,
		Persistent: persistent,
		EncryptAll: true}
}

func (e EncryptAttributes) String() string {
	if e.Mode == crypt.None {
		return "EncryptAttributes(None)"
	}
	return fmt.Sprintf("EncryptAttributes(mode=%v, sequenced=%v, persistent=%v, encryptAll=%v)",
		e.Mode, e.Sequenced, e.Persistent, e.EncryptAll)
}
