package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkopriv2/relay/crypt"
	uuid "github.com/satori/go.uuid"
)

// The shared body of a session.  Only id, remote, attrs, key, cert and
// instance are immutable, and they are safe to read without the lock once
// the record has been published.  Everything else is guarded by lock.
type record struct {
	refs int32 // atomic

	instance uuid.UUID
	id       uint16
	remote   bool
	attrs    EncryptAttributes
	key      *crypt.Key  // owned, may be nil
	cert     *crypt.Cert // owned, may be nil

	lock       sync.Mutex
	lastAction time.Time
	recvSeq    uint16
	sendSeq    uint16
	recvCount  uint16
	sendCount  uint16
	procCount  uint16
}

func newRecord(ids IdGenerator, attrs EncryptAttributes, key *crypt.Key, cert *crypt.Cert, id uint16) *record {
	remote := id != 0
	if !remote {
		if ids == nil {
			ids = DefaultIds
		}
		id = ids.Next()
	}

	return &record{
		refs:       1,
		instance:   uuid.NewV4(),
		id:         id,
		remote:     remote,
		attrs:      attrs,
		key:        key.Move(),
		cert:       cert.Move(),
		lastAction: time.Now()}
}

func (r *record) retain() {
	atomic.AddInt32(&r.refs, 1)
}

func (r *record) count() int32 {
	return atomic.LoadInt32(&r.refs)
}

// Drops a reference.  The last reference destroys the key material.
func (r *record) release() bool {
	if atomic.AddInt32(&r.refs, -1) != 0 {
		return false
	}

	if r.key != nil {
		r.key.Destroy()
	}
	if r.cert != nil {
		r.cert.Destroy()
	}
	return true
}

func (r *record) certificate() crypt.AuthCertificate {
	if r.cert == nil {
		return nil
	}
	return r.cert.Get()
}

func (r *record) touch() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.lastAction = time.Now()
}

func (r *record) last() time.Time {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.lastAction
}

func (r *record) get(field *uint16) uint16 {
	r.lock.Lock()
	defer r.lock.Unlock()
	return *field
}

// Increments the field and returns the new value.  Wraps silently.
func (r *record) inc(field *uint16) uint16 {
	r.lock.Lock()
	defer r.lock.Unlock()
	*field++
	return *field
}

func (r *record) testSet(field *uint16, seq uint16, reliable bool) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	if !acceptSeq(*field, seq, reliable) {
		return false
	}

	*field = seq
	return true
}

// Decides whether seq may follow cur.
//
// Reliable streams require the exact successor, so after 65535 comes 0.
// Unreliable streams accept anything newer in serial number arithmetic:
// seq is newer when it lies in the half of the number space ahead of cur.
// A distance of exactly half the space is ambiguous and rejected.
func acceptSeq(cur uint16, seq uint16, reliable bool) bool {
	if reliable {
		return seq == cur+1
	}
	return int16(seq-cur) > 0
}
