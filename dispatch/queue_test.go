package dispatch

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_Fifo(t *testing.T) {
	q := NewQueue(8)
	defer q.Close()

	for _, name := range []string{"a", "b", "c"} {
		require.Nil(t, q.Push(NewItem(KeyOf(name), NewBuffer([]byte(name), nil))))
	}
	assert.Equal(t, 3, q.Len())

	for _, name := range []string{"a", "b", "c"} {
		item, err := q.Pop(time.Second)
		require.Nil(t, err)
		assert.Equal(t, KeyOf(name), item.Key())
		assert.Equal(t, []byte(name), item.Payload().Bytes())
		item.Destroy()
	}
}

func TestQueue_Pop_Timeout(t *testing.T) {
	q := NewQueue(8)
	defer q.Close()

	_, err := q.Pop(10 * time.Millisecond)
	assert.Equal(t, TimeoutError, errors.Cause(err))
}

func TestQueue_Close_DestroysLeftovers(t *testing.T) {
	counter := &releaseCounter{}

	q := NewQueue(8)
	for i := 0; i < 3; i++ {
		require.Nil(t, q.Push(NewItem(KeyOf("alice"), counter.Buffer(nil))))
	}

	assert.Nil(t, q.Close())
	assert.Nil(t, q.Close())
	assert.True(t, q.IsClosed())
	assert.Equal(t, 3, counter.Count())

	item := NewItem(KeyOf("alice"), counter.Buffer(nil))
	assert.Equal(t, QueueClosedError, errors.Cause(q.Push(item)))

	// a failed push leaves the item with the caller.
	assert.Equal(t, 3, counter.Count())
	item.Destroy()
	assert.Equal(t, 4, counter.Count())

	_, err := q.Pop(time.Second)
	assert.Equal(t, QueueClosedError, errors.Cause(err))
}

func TestQueue_Close_WakesBlockedPop(t *testing.T) {
	q := NewQueue(8)

	done := make(chan error, 1)
	go func() {
		_, err := q.Pop(0)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case err := <-done:
		assert.Equal(t, QueueClosedError, errors.Cause(err))
	case <-time.After(2 * time.Second):
		t.Fatal("pop never returned")
	}
}
