package session

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/pkopriv2/relay/crypt"
	uuid "github.com/satori/go.uuid"
)

// A handle to a session record.  See the package docs for the ownership
// rules.  Handles must not be copied by value; use Share().
//
// The zero value is unusable until Init() is called, and every accessor
// panics with UninitializedError when called on an uninitialized or
// released handle.
type Session struct {
	rec atomic.Pointer[record]
}

// Creates a session.  See Init() for the meaning of the arguments.
func New(ids IdGenerator, attrs EncryptAttributes, key *crypt.Key, cert *crypt.Cert, id uint16) *Session {
	s := &Session{}
	s.Init(ids, attrs, key, cert, id)
	return s
}

// Binds the handle to a brand new record.
//
// If id is 0, a fresh id is drawn from ids (or DefaultIds when ids is nil)
// and the session is local.  Otherwise the id was assigned by a peer, is
// used as is and the session is remote.  No uniqueness check happens here.
//
// Ownership of key and cert moves into the record: both holders are empty
// once this returns.  Either may be nil.
//
// If the handle was already bound, its share of the old record is
// released.  Other handles of that record are unaffected.
func (s *Session) Init(ids IdGenerator, attrs EncryptAttributes, key *crypt.Key, cert *crypt.Cert, id uint16) {
	if old := s.rec.Swap(newRecord(ids, attrs, key, cert, id)); old != nil {
		old.release()
	}
}

func (s *Session) body() *record {
	r := s.rec.Load()
	if r == nil {
		panic(errors.WithStack(UninitializedError))
	}
	return r
}

// Returns a new handle onto the same record.  Mutations made through
// either handle are visible through the other.
func (s *Session) Share() *Session {
	r := s.body()
	r.retain()

	ret := &Session{}
	ret.rec.Store(r)
	return ret
}

// Drops this handle's share of the record.  The handle is unusable
// afterwards.  Releasing twice is a no-op.
func (s *Session) Release() {
	if r := s.rec.Swap(nil); r != nil {
		r.release()
	}
}

// Returns true until the handle is released.
func (s *Session) IsBound() bool {
	return s.rec.Load() != nil
}

// Returns false if the session is encrypted but lacks either its key or
// its certificate.  Callers must check this before trusting anything
// that depends on encryption.
func (s *Session) IsValid() bool {
	r := s.body()
	if r.attrs.Mode == crypt.None {
		return true
	}
	return r.key != nil && r.cert != nil
}

// Compares two sessions by id alone.
func (s *Session) Compare(o *Session) int {
	return int(s.body().id) - int(o.body().id)
}

func (s *Session) Equal(o *Session) bool {
	return s.Compare(o) == 0
}

func (s *Session) Less(o *Session) bool {
	return s.Compare(o) < 0
}

func (s *Session) LessOrEqual(o *Session) bool {
	return s.Compare(o) <= 0
}

func (s *Session) Greater(o *Session) bool {
	return s.Compare(o) > 0
}

func (s *Session) GreaterOrEqual(o *Session) bool {
	return s.Compare(o) >= 0
}

// Returns true if both handles reference the same record.
func (s *Session) SameRecord(o *Session) bool {
	return s.body() == o.body()
}

func (s *Session) Id() uint16 {
	return s.body().id
}

func (s *Session) Key() LookupKey {
	return LookupKey(s.body().id)
}

// Uniquely identifies the record behind the handle.
func (s *Session) Instance() uuid.UUID {
	return s.body().instance
}

func (s *Session) IsRemote() bool {
	return s.body().remote
}

// A session is authenticated once it holds a valid certificate.
func (s *Session) IsAuthenticated() bool {
	cert := s.body().certificate()
	return cert != nil && cert.IsValid()
}

// Returns 0 for sessions without a certificate.
func (s *Session) UserId() uint32 {
	if cert := s.body().certificate(); cert != nil {
		return cert.UserId()
	}
	return 0
}

func (s *Session) UserName() string {
	if cert := s.body().certificate(); cert != nil {
		return cert.UserName()
	}
	return ""
}

func (s *Session) Attributes() EncryptAttributes {
	return s.body().attrs
}

func (s *Session) Mode() crypt.Mode {
	return s.body().attrs.Mode
}

func (s *Session) IsSequenced() bool {
	return s.body().attrs.Sequenced
}

func (s *Session) IsPersistent() bool {
	return s.body().attrs.Persistent
}

func (s *Session) IsAlwaysEncrypted() bool {
	return s.body().attrs.EncryptAll
}

// The session key, or nil.  The record retains ownership.
func (s *Session) SymmetricKey() *crypt.Key {
	return s.body().key
}

// The session certificate, or nil.  A nil certificate implies an
// unauthenticated session.
func (s *Session) Certificate() crypt.AuthCertificate {
	return s.body().certificate()
}

// Returns the certificate if it is of the first family.
func (s *Session) Auth1Cert() *crypt.Auth1Certificate {
	cert := s.body().certificate()
	if cert == nil || cert.Family() != crypt.AuthFamily1 {
		return nil
	}

	ret, _ := cert.(*crypt.Auth1Certificate)
	return ret
}

func (s *Session) LastAction() time.Time {
	return s.body().last()
}

// Marks the session as used now.
func (s *Session) Touch() {
	s.body().touch()
}

func (s *Session) LastRecvSeq() uint16 {
	r := s.body()
	return r.get(&r.recvSeq)
}

func (s *Session) LastSendSeq() uint16 {
	r := s.body()
	return r.get(&r.sendSeq)
}

// Advances the receive sequence and returns it.  No verification.
func (s *Session) NextRecvSeq() uint16 {
	r := s.body()
	return r.inc(&r.recvSeq)
}

// Mints the next outgoing sequence number.
func (s *Session) NextSendSeq() uint16 {
	r := s.body()
	return r.inc(&r.sendSeq)
}

// Verifies that seq may follow the last received sequence and, if so,
// records it.  In reliable mode seq must be the exact successor; in
// unreliable mode any newer value is accepted, allowing gaps.  Returns
// whether seq was accepted.  A rejected seq leaves the state unchanged.
func (s *Session) TestSetRecvSeq(seq uint16, reliable bool) bool {
	r := s.body()
	return r.testSet(&r.recvSeq, seq, reliable)
}

// Same as TestSetRecvSeq, for the send direction.
func (s *Session) TestSetSendSeq(seq uint16, reliable bool) bool {
	r := s.body()
	return r.testSet(&r.sendSeq, seq, reliable)
}

func (s *Session) MsgsRecv() uint16 {
	r := s.body()
	return r.get(&r.recvCount)
}

func (s *Session) MsgsSent() uint16 {
	r := s.body()
	return r.get(&r.sendCount)
}

func (s *Session) MsgsProc() uint16 {
	r := s.body()
	return r.get(&r.procCount)
}

func (s *Session) IncMsgsRecv() {
	r := s.body()
	r.inc(&r.recvCount)
}

func (s *Session) IncMsgsSent() {
	r := s.body()
	r.inc(&r.sendCount)
}

func (s *Session) IncMsgsProc() {
	r := s.body()
	r.inc(&r.procCount)
}

func (s *Session) String() string {
	r := s.rec.Load()
	if r == nil {
		return "Session(unbound)"
	}
	return fmt.Sprintf("Session(id=%v, remote=%v, mode=%v)", r.id, r.remote, r.attrs.Mode)
}
