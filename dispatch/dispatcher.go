package dispatch

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/pkopriv2/relay/common"
	"github.com/pkopriv2/relay/session"
	metrics "github.com/rcrowley/go-metrics"
)

// Processes a single item.  The item is destroyed once the handler
// returns, so handlers wishing to keep the payload must Take() it.
type Handler func(*Item) error

// The server's processing loop.
//
// Inbound messages are submitted along with the session they arrived on.
// Each is queued as an item keyed by the session's user, and a fixed set of
// workers pull items off the queue and run the handler over them.
//
// *This object is thread-safe*
type Dispatcher struct {
	ctx      common.Context
	logger   common.Logger
	ctrl     common.Control
	handler  Handler
	queue    *Queue
	poll     time.Duration
	registry metrics.Registry
	stats    *Stats
	workers  sync.WaitGroup
}

func NewDispatcher(ctx common.Context, name string, fn Handler) *Dispatcher {
	ctx = ctx.Sub("Dispatcher(%v)", name)

	conf := ctx.Config()
	registry := metrics.NewRegistry()
	d := &Dispatcher{
		ctx:      ctx,
		logger:   ctx.Logger(),
		ctrl:     ctx.Control(),
		handler:  fn,
		queue:    NewQueue(int64(conf.OptionalInt(confQueueHint, defaultQueueHint))),
		poll:     conf.OptionalDuration(confPollTimeout, defaultPollTimeout*time.Millisecond),
		registry: registry,
		stats:    newStats(registry),
	}

	d.ctrl.OnClose(func(error) {
		d.queue.Close()
	})

	num := conf.OptionalInt(confWorkers, defaultWorkers)
	if num <= 0 {
		panic(fmt.Sprintf("Invalid number of dispatch workers [%v]", num))
	}

	d.logger.Info("Starting [%v] workers", num)
	for i := 0; i < num; i++ {
		d.workers.Add(1)
		go d.work(i)
	}
	return d
}

// Stops the workers.  Items still queued are destroyed without being
// processed.  Blocks until in flight items have been handled.
func (d *Dispatcher) Close() error {
	d.ctrl.Close()
	d.workers.Wait()
	return nil
}

func (d *Dispatcher) Stats() *Stats {
	return d.stats
}

func (d *Dispatcher) Registry() metrics.Registry {
	return d.registry
}

// Number of items waiting to be processed.
func (d *Dispatcher) Pending() int {
	return d.queue.Len()
}

// Queues a decoded message that arrived on the session.  The payload is
// owned by the dispatcher from here on, even when an error is returned.
//
// Sequence verification is the business of the decryption layer and must
// already have happened.
func (d *Dispatcher) Submit(s *session.Session, payload Payload) error {
	s.Touch()
	return d.Push(newSessionItem(s, payload))
}

// Queues an item.  The dispatcher owns the item from here on, even when an
// error is returned.
func (d *Dispatcher) Push(item *Item) error {
	if d.ctrl.IsClosed() {
		item.Destroy()
		d.stats.Dropped.Inc(1)
		return errors.WithStack(ClosedError)
	}

	if err := d.queue.Push(item); err != nil {
		item.Destroy()
		d.stats.Dropped.Inc(1)
		return errors.Wrap(ClosedError, err.Error())
	}

	d.stats.Submitted.Inc(1)
	return nil
}

func (d *Dispatcher) work(num int) {
	defer d.workers.Done()

	logger := common.FormatLogger(d.logger, "Worker(%v)", num)
	for {
		item, err := d.queue.Pop(d.poll)
		if err != nil {
			if errors.Cause(err) == TimeoutError && !d.ctrl.IsClosed() {
				continue
			}

			logger.Debug("Exiting")
			return
		}

		d.process(logger, item)
	}
}

func (d *Dispatcher) process(logger common.Logger, item *Item) {
	start := time.Now()
	defer d.stats.Latency.UpdateSince(start)
	defer item.Destroy()

	if err := d.handle(item); err != nil {
		d.stats.Failed.Inc(1)
		logger.Error("Error processing item from [%v]: %+v", item.Key(), err)
		return
	}

	if origin := item.Origin(); origin != nil {
		origin.IncMsgsProc()
	}
	d.stats.Processed.Inc(1)
}

// Runs the handler, converting panics into errors so that one bad message
// cannot take a worker down.
func (d *Dispatcher) handle(item *Item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("Handler panic: %v", r)
		}
	}()
	return d.handler(item)
}
