package common

import (
	"io"
	"sync"

	"github.com/pkopriv2/relay/concurrent"
)

// A control is a one-shot shutdown signal.  It may be closed normally or
// failed with a cause, and every child control derived through Sub()
// is failed with the same cause when its parent closes.
type Control interface {
	io.Closer
	Fail(error)
	Closed() <-chan struct{}
	IsClosed() bool
	Failure() error
	OnClose(func(error))
	Sub() Control
}

type control struct {
	closes  concurrent.List
	closed  chan struct{}
	closer  chan struct{}
	failure error
}

func NewControl(parent Control) Control {
	c := &control{
		closes: concurrent.NewList(8),
		closed: make(chan struct{}),
		closer: make(chan struct{}, 1),
	}

	if parent != nil {
		go func() {
			select {
			case <-parent.Closed():
				c.Fail(parent.Failure())
			case <-c.closed:
			}
		}()
	}

	return c
}

func (c *control) Fail(cause error) {
	select {
	case <-c.closed:
		return
	case c.closer <- struct{}{}:
	}

	c.failure = cause
	close(c.closed)

	for _, fn := range c.closes.All() {
		fn.(func(error))(cause)
	}
}

func (c *control) Close() error {
	c.Fail(nil)
	return c.Failure()
}

func (c *control) Closed() <-chan struct{} {
	return c.closed
}

func (c *control) IsClosed() bool {
	select {
	default:
		return false
	case <-c.closed:
		return true
	}
}

func (c *control) Failure() error {
	<-c.closed
	return c.failure
}

// Registers a callback to be run once the control closes.  Callbacks
// registered after close are run immediately.
func (c *control) OnClose(fn func(error)) {
	var once sync.Once
	wrapped := func(cause error) {
		once.Do(func() { fn(cause) })
	}

	c.closes.Append(wrapped)
	if c.IsClosed() {
		wrapped(c.failure)
	}
}

func (c *control) Sub() Control {
	return NewControl(c)
}
