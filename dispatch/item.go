package dispatch

import (
	"sync"

	"github.com/pkopriv2/relay/session"
)

// A unit of work: a payload bound to the routing key of its sender.
//
// The item owns the payload until it is either destroyed, which releases
// the payload, or the payload is moved out with Take().  Items created for
// a session also hold a share of that session, so the session outlives
// its eviction from any table until the item is destroyed.
//
// *This object is thread-safe*
type Item struct {
	key Key

	lock    sync.Mutex
	payload Payload
	origin  *session.Session
}

// Creates an item.  Ownership of the payload moves to the item.
func NewItem(key Key, payload Payload) *Item {
	return &Item{key: key, payload: payload}
}

func newSessionItem(s *session.Session, payload Payload) *Item {
	return &Item{key: KeyFor(s), payload: payload, origin: s.Share()}
}

func (i *Item) Key() Key {
	return i.key
}

// Returns the payload, or nil once it has been taken or released.  The
// item keeps ownership.
func (i *Item) Payload() Payload {
	i.lock.Lock()
	defer i.lock.Unlock()
	return i.payload
}

// Returns the session the item arrived on, or nil.  The item keeps its
// share; callers that hold on to it past Destroy() must Share() it.
func (i *Item) Origin() *session.Session {
	i.lock.Lock()
	defer i.lock.Unlock()
	return i.origin
}

// Moves the payload out of the item.  The caller becomes responsible for
// releasing it.  Returns nil if the payload is already gone.
func (i *Item) Take() Payload {
	i.lock.Lock()
	defer i.lock.Unlock()
	ret := i.payload
	i.payload = nil
	return ret
}

// Releases the payload (unless taken) and the session share.  Only the
// first call has any effect.
func (i *Item) Destroy() {
	i.lock.Lock()
	payload, origin := i.payload, i.origin
	i.payload, i.origin = nil, nil
	i.lock.Unlock()

	if payload != nil {
		payload.Release()
	}
	if origin != nil {
		origin.Release()
	}
}
