package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/pkg/errors"
	"github.com/pkopriv2/relay/common"
	metrics "github.com/rcrowley/go-metrics"
)

const (
	defaultIdleTimeout  = 5 * time.Minute
	defaultReapInterval = 30 * time.Second
)

type TableStats struct {
	Added      metrics.Counter
	Removed    metrics.Counter
	Expired    metrics.Counter
	Duplicates metrics.Counter
	Live       metrics.Gauge
}

func newTableStats(r metrics.Registry) *TableStats {
	return &TableStats{
		Added:      metrics.NewRegisteredCounter("session.table.Added", r),
		Removed:    metrics.NewRegisteredCounter("session.table.Removed", r),
		Expired:    metrics.NewRegisteredCounter("session.table.Expired", r),
		Duplicates: metrics.NewRegisteredCounter("session.table.Duplicates", r),
		Live:       metrics.NewRegisteredGauge("session.table.Live", r)}
}

// A table of sessions, ordered and keyed by session id.
//
// The table holds its own share of every session it contains.  Lookups
// hand out new shares, so a session evicted from the table stays usable by
// anyone who already holds a handle to it.
//
// When configured with an idle timeout, a background routine evicts every
// session whose last action is older than the timeout.
//
// *This object is thread-safe*
type Table struct {
	ctx      common.Context
	logger   common.Logger
	ctrl     common.Control
	registry metrics.Registry
	stats    *TableStats
	idle     time.Duration

	lock     sync.RWMutex
	sessions *treemap.Map // LookupKey -> *Session
}

func NewTable(ctx common.Context, name string) *Table {
	ctx = ctx.Sub("Table(%v)", name)

	registry := metrics.NewRegistry()
	t := &Table{
		ctx:      ctx,
		logger:   ctx.Logger(),
		ctrl:     ctx.Control(),
		registry: registry,
		stats:    newTableStats(registry),
		idle:     ctx.Config().OptionalDuration(confIdleTimeout, defaultIdleTimeout),
		sessions: treemap.NewWith(lookupKeyComparator),
	}

	t.ctrl.OnClose(func(error) {
		t.clear()
	})

	if t.idle > 0 {
		interval := ctx.Config().OptionalDuration(confReapInterval, defaultReapInterval)
		if interval <= 0 {
			panic(fmt.Sprintf("Invalid session reap interval [%v]: must be positive", interval))
		}
		t.startReaper(interval)
	}
	return t
}

func (t *Table) Close() error {
	return t.ctrl.Close()
}

func (t *Table) Stats() *TableStats {
	return t.stats
}

func (t *Table) Registry() metrics.Registry {
	return t.registry
}

// Adds a share of the session to the table.  Fails if a session with the
// same id is already present.
func (t *Table) Add(s *Session) error {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.ctrl.IsClosed() {
		return errors.WithStack(TableClosedError)
	}

	key := s.Key()
	if _, ok := t.sessions.Get(key); ok {
		t.stats.Duplicates.Inc(1)
		return errors.Wrapf(DuplicateSessionError, "Session [%v] already exists", key)
	}

	t.sessions.Put(key, s.Share())
	t.stats.Added.Inc(1)
	t.stats.Live.Update(int64(t.sessions.Size()))
	t.logger.Debug("Added session [%v]", key)
	return nil
}

// Returns a new share of the session, which the caller must release.
func (t *Table) Get(key LookupKey) (*Session, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()

	raw, ok := t.sessions.Get(key)
	if !ok {
		return nil, false
	}
	return raw.(*Session).Share(), true
}

func (t *Table) Contains(key LookupKey) bool {
	t.lock.RLock()
	defer t.lock.RUnlock()
	_, ok := t.sessions.Get(key)
	return ok
}

// Removes the session and releases the table's share of it.
func (t *Table) Remove(key LookupKey) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	if !t.remove(key) {
		return false
	}

	t.stats.Removed.Inc(1)
	t.logger.Debug("Removed session [%v]", key)
	return true
}

func (t *Table) Len() int {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return t.sessions.Size()
}

// Returns the keys of every session, in ascending order.
func (t *Table) Keys() []LookupKey {
	t.lock.RLock()
	defer t.lock.RUnlock()

	raw := t.sessions.Keys()
	ret := make([]LookupKey, 0, len(raw))
	for _, k := range raw {
		ret = append(ret, k.(LookupKey))
	}
	return ret
}

// Evicts every session that has been idle since before now minus the
// idle timeout.  Returns the evicted keys.
func (t *Table) Expire(now time.Time) []LookupKey {
	if t.idle <= 0 {
		return nil
	}

	cutoff := now.Add(-t.idle)

	t.lock.Lock()
	defer t.lock.Unlock()

	expired := make([]LookupKey, 0)
	for _, v := range t.sessions.Values() {
		s := v.(*Session)
		if s.LastAction().Before(cutoff) {
			expired = append(expired, s.Key())
		}
	}

	for _, key := range expired {
		t.remove(key)
		t.stats.Expired.Inc(1)
	}

	if len(expired) > 0 {
		t.logger.Info("Expired [%v] idle sessions", len(expired))
	}
	return expired
}

// Requires the write lock.
func (t *Table) remove(key LookupKey) bool {
	raw, ok := t.sessions.Get(key)
	if !ok {
		return false
	}

	t.sessions.Remove(key)
	raw.(*Session).Release()
	t.stats.Live.Update(int64(t.sessions.Size()))
	return true
}

func (t *Table) clear() {
	t.lock.Lock()
	defer t.lock.Unlock()
	for _, v := range t.sessions.Values() {
		v.(*Session).Release()
	}
	t.sessions.Clear()
	t.stats.Live.Update(0)
}

func (t *Table) startReaper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-t.ctrl.Closed():
				return
			case now := <-ticker.C:
				t.Expire(now)
			}
		}
	}()
}
