package dispatch

import (
	"fmt"
	"hash/crc32"

	"github.com/pkopriv2/relay/session"
)

// An opaque routing key identifying the user a message came from.
type Key uint32

// Derives the key for a user name.
func KeyOf(user string) Key {
	return Key(crc32.ChecksumIEEE([]byte(user)))
}

// Derives the key for the user authenticated on the session.  Sessions
// without a certificate all share the key of the empty name.
func KeyFor(s *session.Session) Key {
	return KeyOf(s.UserName())
}

func (k Key) String() string {
	return fmt.Sprintf("%08x", uint32(k))
}
