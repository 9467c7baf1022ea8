package dispatch

import (
	"time"

	"github.com/Workiva/go-datastructures/queue"
	"github.com/pkg/errors"
)

// A FIFO queue of items, safe for any number of producers and consumers.
// Items from a single producer are popped in the order they were pushed.
type Queue struct {
	inner *queue.Queue
}

func NewQueue(hint int64) *Queue {
	return &Queue{queue.New(hint)}
}

// Enqueues the item.  On error the item still belongs to the caller.
func (q *Queue) Push(item *Item) error {
	if err := q.inner.Put(item); err != nil {
		return errors.Wrap(QueueClosedError, err.Error())
	}
	return nil
}

// Dequeues the oldest item, waiting up to timeout for one to arrive.  A
// timeout of zero waits until an item arrives or the queue closes.
func (q *Queue) Pop(timeout time.Duration) (*Item, error) {
	items, err := q.inner.Poll(1, timeout)
	switch {
	case err == queue.ErrTimeout:
		return nil, errors.WithStack(TimeoutError)
	case err != nil:
		return nil, errors.Wrap(QueueClosedError, err.Error())
	case len(items) == 0:
		return nil, errors.WithStack(TimeoutError)
	}
	return items[0].(*Item), nil
}

func (q *Queue) Len() int {
	return int(q.inner.Len())
}

func (q *Queue) IsClosed() bool {
	return q.inner.Disposed()
}

// Closes the queue and destroys every item still in it.  Blocked and
// future pops fail with QueueClosedError.
func (q *Queue) Close() error {
	if q.inner.Disposed() {
		return nil
	}

	for _, raw := range q.inner.Dispose() {
		raw.(*Item).Destroy()
	}
	return nil
}
