package crypt

import (
	"fmt"
	"sync"
	"time"
)

// Certificate families.
type Family int

const (
	AuthFamilyUnknown Family = iota
	AuthFamily1
)

// The identity issued by an authentication protocol.  Formats and trust
// validation belong to the issuer; sessions only need enough of it to
// identify and route on the user.
type AuthCertificate interface {
	Family() Family
	UserId() uint32
	UserName() string
	IsValid() bool
}

// Certificates that hold secrets may implement this to be wiped when
// their owning session is torn down.
type Destroyer interface {
	Destroy()
}

// The first generation certificate.
type Auth1Certificate struct {
	User      uint32
	Name      string
	Community uint32
	Trust     uint16
	Issued    time.Time
	Expires   time.Time
}

func (c *Auth1Certificate) Family() Family {
	return AuthFamily1
}

func (c *Auth1Certificate) UserId() uint32 {
	return c.User
}

func (c *Auth1Certificate) UserName() string {
	return c.Name
}

// A certificate is valid once issued to a user and until it expires.
// A zero expiry never expires.
func (c *Auth1Certificate) IsValid() bool {
	if c.User == 0 {
		return false
	}
	return c.Expires.IsZero() || time.Now().Before(c.Expires)
}

func (c *Auth1Certificate) String() string {
	return fmt.Sprintf("Auth1Certificate(user=%v, name=%v, community=%v, trust=%v)", c.User, c.Name, c.Community, c.Trust)
}

// A move-only holder of a certificate.  Mirrors Key: once moved, the
// original holder is empty.
//
// *This object is thread-safe*
type Cert struct {
	lock  sync.Mutex
	inner AuthCertificate
}

func NewCert(inner AuthCertificate) *Cert {
	return &Cert{inner: inner}
}

// Transfers ownership of the certificate to a new holder.  Moving a nil
// or empty holder returns nil.
func (c *Cert) Move() *Cert {
	if c == nil {
		return nil
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if c.inner == nil {
		return nil
	}

	ret := &Cert{inner: c.inner}
	c.inner = nil
	return ret
}

// Returns the certificate, or nil if it has been moved or destroyed.
func (c *Cert) Get() AuthCertificate {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.inner
}

func (c *Cert) IsEmpty() bool {
	return c.Get() == nil
}

// Drops the certificate, wiping it if it supports that.
func (c *Cert) Destroy() {
	c.lock.Lock()
	defer c.lock.Unlock()
	if d, ok := c.inner.(Destroyer); ok {
		d.Destroy()
	}
	c.inner = nil
}
