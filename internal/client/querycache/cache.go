// Package querycache is the in-memory store behind every read in the client.
//
// A Cache maps a Key to the last known result of that query, runs at most one
// load per key at a time, and pushes every state change to the key's
// observers. Entries stay fresh until invalidated; there is no TTL.
//
// A SetData or Invalidate that lands while a load for the same key is in
// flight is overwritten when that load resolves. Loads are never cancelled
// to make room for newer writes.
package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gilab/labsite/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultQueryRetry = 1
	DefaultRetryBase  = time.Second
	maxRetryDelay     = 30 * time.Second
)

var ErrTypeMismatch = errors.New("cached value has unexpected type")

// Loader produces the value for a key. It runs on a context that keeps the
// caller's values but not its cancellation.
type Loader func(ctx context.Context) (any, error)

type Options struct {
	// QueryRetry is how many times a failed load is retried when the call
	// site does not say otherwise. Negative means no retries.
	QueryRetry int
	// RetryBase is the first backoff delay; later delays double up to 30s.
	RetryBase  time.Duration
	Logger     logging.Logger
	Registerer prometheus.Registerer
}

type observer struct {
	id     uint64
	fn     func(Snapshot)
	active atomic.Bool
}

type entry struct {
	key         Key
	snap        Snapshot
	fingerprint uint64
	hasPrint    bool
	inFlight    bool
	observers   []*observer
}

func (e *entry) snapshot() Snapshot {
	s := e.snap
	s.Key = NewKey(e.key...)
	return s
}

type notification struct {
	snap      Snapshot
	observers []*observer
}

type Cache struct {
	opts    Options
	log     logging.Logger
	metrics *metrics
	group   singleflight.Group
	now     func() time.Time

	mu       sync.Mutex
	entries  map[string]*entry
	nextID   uint64
	queue    []notification
	draining bool
}

func New(opts Options) *Cache {
	if opts.RetryBase <= 0 {
		opts.RetryBase = DefaultRetryBase
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Cache{
		opts:    opts,
		log:     log.With("component", "querycache"),
		metrics: newMetrics(opts.Registerer),
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

type fetchConfig struct {
	retry int
}

type FetchOption func(*fetchConfig)

// WithRetry overrides the cache-wide retry count for one call site.
func WithRetry(n int) FetchOption {
	return func(fc *fetchConfig) { fc.retry = n }
}

func (c *Cache) entryLocked(key Key) *entry {
	k := key.String()
	e, ok := c.entries[k]
	if !ok {
		e = &entry{key: NewKey(key...)}
		c.entries[k] = e
	}
	return e
}

// Fetch returns the fresh cached value for key, or waits for a load. If a
// load for key is already running the call joins it instead of starting
// another. Giving up via ctx only stops this caller from waiting.
func (c *Cache) Fetch(ctx context.Context, key Key, loader Loader, opts ...FetchOption) (any, error) {
	fc := fetchConfig{retry: c.opts.QueryRetry}
	for _, opt := range opts {
		opt(&fc)
	}

	query := key.Root()

	c.mu.Lock()
	e := c.entryLocked(key)
	if e.snap.Fresh() {
		data := e.snap.Data
		c.mu.Unlock()
		c.metrics.hits.WithLabelValues(query).Inc()
		c.log.Debug(ctx, "cache hit", "key", key.String())
		return data, nil
	}
	ch := c.group.DoChan(key.String(), func() (any, error) {
		return c.load(context.WithoutCancel(ctx), e, loader, fc)
	})
	c.mu.Unlock()

	c.metrics.misses.WithLabelValues(query).Inc()

	select {
	case res := <-ch:
		if res.Shared {
			c.metrics.sharedWaits.WithLabelValues(query).Inc()
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// FetchAs is Fetch for loaders returning a concrete type.
func FetchAs[T any](ctx context.Context, c *Cache, key Key, load func(ctx context.Context) (T, error), opts ...FetchOption) (T, error) {
	var zero T

	v, err := c.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return load(ctx)
	}, opts...)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T", ErrTypeMismatch, key, v)
	}
	return t, nil
}

func (c *Cache) load(ctx context.Context, e *entry, loader Loader, fc fetchConfig) (any, error) {
	query := e.key.Root()

	c.mu.Lock()
	e.inFlight = true
	e.snap.Status = StatusLoading
	e.snap.FetchCount++
	c.enqueueLocked(e)
	c.mu.Unlock()
	c.drain()

	c.metrics.loads.WithLabelValues(query).Inc()
	data, err := c.runLoader(ctx, loader, fc.retry)

	c.mu.Lock()
	e.inFlight = false

	if err != nil {
		e.snap.Status = StatusError
		e.snap.Err = err
	} else {
		data = c.shareLocked(e, data)
		e.snap.Data = data
		e.snap.HasData = true
		e.snap.Err = nil
		e.snap.Status = StatusSuccess
		e.snap.Stale = false
	}
	e.snap.UpdatedAt = c.now()
	c.enqueueLocked(e)
	c.mu.Unlock()
	c.drain()

	if err != nil {
		c.metrics.loadErrors.WithLabelValues(query).Inc()
		c.log.Warn(ctx, "query load failed", "key", e.key.String(), "error", err)
	}
	return data, err
}

func (c *Cache) runLoader(ctx context.Context, loader Loader, retries int) (any, error) {
	if retries <= 0 {
		return loader(ctx)
	}

	var out any
	backoff := retry.WithCappedDuration(maxRetryDelay, retry.NewExponential(c.opts.RetryBase))
	backoff = retry.WithMaxRetries(uint64(retries), backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		v, err := loader(ctx)
		if err != nil {
			return retry.RetryableError(err)
		}
		out = v
		return nil
	})
	return out, err
}

// shareLocked keeps the previous payload reference when the new one is
// structurally identical, so observers comparing by reference see no change.
func (c *Cache) shareLocked(e *entry, data any) any {
	b, err := json.Marshal(data)
	if err != nil {
		e.hasPrint = false
		return data
	}
	sum := xxhash.Sum64(b)
	if e.snap.HasData && e.hasPrint && e.fingerprint == sum {
		return e.snap.Data
	}
	e.fingerprint, e.hasPrint = sum, true
	return data
}

// SetData writes data as a successful result without loading.
func (c *Cache) SetData(key Key, data any) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.hasPrint = false
	e.snap.Data = data
	e.snap.HasData = true
	e.snap.Err = nil
	e.snap.Status = StatusSuccess
	e.snap.Stale = false
	e.snap.UpdatedAt = c.now()
	c.enqueueLocked(e)
	c.mu.Unlock()
	c.drain()
}

// Invalidate marks key stale. Observers keep the current value until the
// next Fetch replaces it. Unknown keys are ignored.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if ok {
		c.invalidateLocked(e)
	}
	c.mu.Unlock()
	c.drain()
}

// InvalidatePrefix marks every key starting with prefix stale.
func (c *Cache) InvalidatePrefix(prefix Key) int {
	c.mu.Lock()
	n := 0
	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			c.invalidateLocked(e)
			n++
		}
	}
	c.mu.Unlock()
	c.drain()
	return n
}

func (c *Cache) invalidateLocked(e *entry) {
	e.snap.Stale = true
	c.metrics.invalidations.WithLabelValues(e.key.Root()).Inc()
	c.enqueueLocked(e)
}

// Get returns the current state of key without loading. Unknown keys
// report an idle snapshot.
func (c *Cache) Get(key Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key.String()]; ok {
		return e.snapshot()
	}
	return Snapshot{Key: NewKey(key...)}
}

// Subscribe calls fn with a snapshot after every change to key until the
// returned function is called. The entry is created idle if needed.
func (c *Cache) Subscribe(key Key, fn func(Snapshot)) (unsubscribe func()) {
	c.mu.Lock()
	e := c.entryLocked(key)
	c.nextID++
	obs := &observer{id: c.nextID, fn: fn}
	obs.active.Store(true)
	e.observers = append(e.observers, obs)
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			obs.active.Store(false)
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, o := range e.observers {
				if o.id == obs.id {
					e.observers = append(e.observers[:i], e.observers[i+1:]...)
					break
				}
			}
		})
	}
}

// Remove forgets key. Observed entries are reset to idle instead of being
// dropped so their observers stay attached. An entry with a load running is
// kept too; its data is cleared and the load's result lands on it.
func (c *Cache) Remove(key Key) {
	c.mu.Lock()
	if e, ok := c.entries[key.String()]; ok {
		c.removeLocked(e)
	}
	c.mu.Unlock()
	c.drain()
}

// Clear does Remove for every key.
func (c *Cache) Clear() {
	c.mu.Lock()
	for _, e := range c.entries {
		c.removeLocked(e)
	}
	c.mu.Unlock()
	c.drain()
}

func (c *Cache) removeLocked(e *entry) {
	if len(e.observers) == 0 && !e.inFlight {
		delete(c.entries, e.key.String())
		return
	}
	fetches := e.snap.FetchCount
	e.snap = Snapshot{}
	e.hasPrint = false
	if e.inFlight {
		e.snap.Status = StatusLoading
		e.snap.FetchCount = fetches
	}
	c.enqueueLocked(e)
}

// Collect drops entries that have no observers and no load running, and
// returns how many were dropped.
func (c *Cache) Collect() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if len(e.observers) == 0 && !e.inFlight {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

// Len is the number of entries currently held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) enqueueLocked(e *entry) {
	if len(e.observers) == 0 {
		return
	}
	c.queue = append(c.queue, notification{
		snap:      e.snapshot(),
		observers: append([]*observer(nil), e.observers...),
	})
}

// drain delivers queued notifications in order, outside the lock. Only one
// goroutine drains at a time; callbacks that mutate the cache just enqueue.
func (c *Cache) drain() {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	for len(c.queue) > 0 {
		n := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()
		for _, o := range n.observers {
			if o.active.Load() {
				o.fn(n.snap)
			}
		}
		c.mu.Lock()
	}
	c.draining = false
	c.mu.Unlock()
}
