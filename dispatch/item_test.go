package dispatch

import (
	"sync/atomic"
	"testing"

	"github.com/pkopriv2/relay/crypt"
	"github.com/pkopriv2/relay/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type releaseCounter struct {
	count int32
}

func (r *releaseCounter) Buffer(raw []byte) *Buffer {
	return NewBuffer(raw, func([]byte) {
		atomic.AddInt32(&r.count, 1)
	})
}

func (r *releaseCounter) Count() int {
	return int(atomic.LoadInt32(&r.count))
}

func newUserSession(name string) *session.Session {
	cert := crypt.NewCert(&crypt.Auth1Certificate{User: 1, Name: name})
	return session.New(nil, session.NewEncryptAttributes(crypt.None, false), nil, cert, 0)
}

func TestKeyOf(t *testing.T) {
	assert.Equal(t, KeyOf("alice"), KeyOf("alice"))
	assert.NotEqual(t, KeyOf("alice"), KeyOf("bob"))
	assert.Len(t, KeyOf("alice").String(), 8)
}

func TestKeyFor_Anonymous(t *testing.T) {
	s := session.New(nil, session.NewEncryptAttributes(crypt.None, false), nil, nil, 0)
	defer s.Release()
	assert.Equal(t, KeyOf(""), KeyFor(s))
}

func TestItem_Destroy_ReleasesOnce(t *testing.T) {
	counter := &releaseCounter{}

	item := NewItem(KeyOf("alice"), counter.Buffer([]byte("hello")))
	assert.Equal(t, []byte("hello"), item.Payload().Bytes())

	item.Destroy()
	item.Destroy()
	assert.Equal(t, 1, counter.Count())
	assert.Nil(t, item.Payload())
}

func TestItem_Take(t *testing.T) {
	counter := &releaseCounter{}

	item := NewItem(KeyOf("alice"), counter.Buffer([]byte("hello")))
	payload := item.Take()
	require.NotNil(t, payload)
	assert.Nil(t, item.Take())

	item.Destroy()
	assert.Equal(t, 0, counter.Count())

	payload.Release()
	assert.Equal(t, 1, counter.Count())
}

func TestItem_HoldsSessionShare(t *testing.T) {
	s := newUserSession("alice")
	defer s.Release()

	item := newSessionItem(s, NewBuffer(nil, nil))
	assert.Equal(t, KeyOf("alice"), item.Key())
	assert.Equal(t, int32(2), s.Snapshot().Refs)

	origin := item.Origin()
	require.NotNil(t, origin)
	assert.True(t, origin.SameRecord(s))

	item.Destroy()
	assert.Equal(t, int32(1), s.Snapshot().Refs)
	assert.Nil(t, item.Origin())
}
