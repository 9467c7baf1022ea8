// Package dispatch hands inbound messages from the wire to the server's
// processing loop.
//
// Each decoded message is bound to the routing key of the user that sent
// it and queued as an Item.  Items own their payload: whoever destroys the
// item releases the payload, and it is released exactly once no matter how
// the item leaves the queue (processed, or drained when the queue closes).
package dispatch

import "github.com/pkg/errors"

var (
	QueueClosedError = errors.New("DISPATCH:QUEUE:CLOSED")
	TimeoutError     = errors.New("DISPATCH:TIMEOUT")
	ClosedError      = errors.New("DISPATCH:CLOSED")
)

const (
	confQueueHint   = "relay.dispatch.queue.hint"
	confWorkers     = "relay.dispatch.workers"
	confPollTimeout = "relay.dispatch.poll.timeout"
)

const (
	defaultQueueHint   = 1024
	defaultWorkers     = 4
	defaultPollTimeout = 100
)
