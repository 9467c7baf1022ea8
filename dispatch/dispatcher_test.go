package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/pkopriv2/relay/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatchContext(workers int) common.Context {
	return common.NewContext(common.NewConfig(map[string]interface{}{
		confWorkers:     workers,
		confPollTimeout: 10 * time.Millisecond,
	}))
}

type recorder struct {
	lock sync.Mutex
	seen []string
}

func (r *recorder) Handle(item *Item) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.seen = append(r.seen, string(item.Payload().Bytes()))
	return nil
}

func (r *recorder) Seen() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string{}, r.seen...)
}

func TestDispatcher_Submit(t *testing.T) {
	ctx := newDispatchContext(1)
	defer ctx.Close()

	rec := &recorder{}
	counter := &releaseCounter{}

	d := NewDispatcher(ctx, "test", rec.Handle)
	defer d.Close()

	s := newUserSession("alice")
	defer s.Release()

	for _, msg := range []string{"one", "two", "three"} {
		require.Nil(t, d.Submit(s, counter.Buffer([]byte(msg))))
	}

	require.Eventually(t, func() bool {
		return counter.Count() == 3
	}, 2*time.Second, 5*time.Millisecond)

	// a single worker preserves submission order.
	assert.Equal(t, []string{"one", "two", "three"}, rec.Seen())
	assert.Equal(t, int64(3), d.Stats().Submitted.Count())
	assert.Equal(t, int64(3), d.Stats().Processed.Count())
	assert.Equal(t, uint16(3), s.MsgsProc())

	require.Eventually(t, func() bool {
		return s.Snapshot().Refs == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestDispatcher_HandlerFailure(t *testing.T) {
	ctx := newDispatchContext(2)
	defer ctx.Close()

	counter := &releaseCounter{}
	d := NewDispatcher(ctx, "test", func(item *Item) error {
		switch string(item.Payload().Bytes()) {
		case "panic":
			panic("boom")
		case "fail":
			return errors.New("failed")
		}
		return nil
	})
	defer d.Close()

	require.Nil(t, d.Push(NewItem(KeyOf("alice"), counter.Buffer([]byte("panic")))))
	require.Nil(t, d.Push(NewItem(KeyOf("alice"), counter.Buffer([]byte("fail")))))
	require.Nil(t, d.Push(NewItem(KeyOf("alice"), counter.Buffer([]byte("ok")))))

	require.Eventually(t, func() bool {
		return counter.Count() == 3
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, int64(2), d.Stats().Failed.Count())
	assert.Equal(t, int64(1), d.Stats().Processed.Count())
}

func TestDispatcher_HandlerTakesPayload(t *testing.T) {
	ctx := newDispatchContext(1)
	defer ctx.Close()

	counter := &releaseCounter{}
	taken := make(chan Payload, 1)

	d := NewDispatcher(ctx, "test", func(item *Item) error {
		taken <- item.Take()
		return nil
	})
	defer d.Close()

	require.Nil(t, d.Push(NewItem(KeyOf("alice"), counter.Buffer([]byte("kept")))))

	select {
	case payload := <-taken:
		assert.Equal(t, []byte("kept"), payload.Bytes())
		assert.Equal(t, 0, counter.Count())
		payload.Release()
		assert.Equal(t, 1, counter.Count())
	case <-time.After(2 * time.Second):
		t.Fatal("item never processed")
	}
}

func TestDispatcher_Close(t *testing.T) {
	ctx := newDispatchContext(2)
	defer ctx.Close()

	rec := &recorder{}
	counter := &releaseCounter{}

	d := NewDispatcher(ctx, "test", rec.Handle)
	assert.Nil(t, d.Close())

	s := newUserSession("alice")
	defer s.Release()

	err := d.Submit(s, counter.Buffer([]byte("late")))
	assert.Equal(t, ClosedError, errors.Cause(err))
	assert.Equal(t, 1, counter.Count())
	assert.Equal(t, int32(1), s.Snapshot().Refs)
	assert.Equal(t, int64(1), d.Stats().Dropped.Count())
	assert.Empty(t, rec.Seen())
}

func TestDispatcher_CloseWithContext(t *testing.T) {
	ctx := newDispatchContext(1)

	d := NewDispatcher(ctx, "test", func(*Item) error { return nil })
	ctx.Close()

	done := make(chan struct{})
	go func() {
		d.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers never exited")
	}
}
