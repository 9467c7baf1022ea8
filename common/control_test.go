package common

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestControl_Close(t *testing.T) {
	ctrl := NewControl(nil)
	assert.False(t, ctrl.IsClosed())

	closed := make(chan error, 2)
	ctrl.OnClose(func(e error) {
		closed <- e
	})

	assert.Nil(t, ctrl.Close())
	assert.Nil(t, ctrl.Close())
	assert.True(t, ctrl.IsClosed())
	assert.Nil(t, <-closed)

	// late callbacks run immediately.
	ctrl.OnClose(func(e error) {
		closed <- e
	})
	assert.Nil(t, <-closed)
	assert.Empty(t, closed)
}

func TestControl_Fail(t *testing.T) {
	cause := errors.New("cause")

	ctrl := NewControl(nil)
	ctrl.Fail(cause)
	ctrl.Fail(errors.New("other"))
	assert.Equal(t, cause, ctrl.Failure())
}

func TestControl_Sub(t *testing.T) {
	cause := errors.New("cause")

	parent := NewControl(nil)
	child := parent.Sub()

	parent.Fail(cause)

	select {
	case <-child.Closed():
	case <-time.After(time.Second):
		assert.FailNow(t, "Child never closed")
	}
	assert.Equal(t, cause, child.Failure())
}

func TestControl_SubClose_LeavesParent(t *testing.T) {
	parent := NewControl(nil)
	defer parent.Close()

	child := parent.Sub()
	child.Close()
	assert.False(t, parent.IsClosed())
}

func TestContext_Sub(t *testing.T) {
	ctx := NewEmptyContext()
	sub := ctx.Sub("Child(%v)", 1)

	ctx.Close()
	select {
	case <-sub.Control().Closed():
	case <-time.After(time.Second):
		assert.FailNow(t, "Child never closed")
	}
}
