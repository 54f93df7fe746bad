package cache

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/cachecore/internal/singleflight"
	"github.com/IvanBrykalov/cachecore/internal/util"
	"github.com/IvanBrykalov/cachecore/removal"
	"github.com/IvanBrykalov/cachecore/stats"
)

// cache is the sharded implementation of Cache.
type cache[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
	closed atomic.Bool

	opt      Options[K, V]
	notifier *removal.Notifier[K, V]
	check    nilChecker[K, V]

	entries atomic.Int64
	weight  atomic.Int64

	// coalesces concurrent loads of the same key in Get.
	sf singleflight.Group[K, V]
}

// New constructs a cache. It panics if opt is invalid (negative bounds, or
// Weigher without MaximumWeight) or if Initial holds a nil key or value.
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	c, err := build(opt, nil)
	if err != nil {
		panic(err)
	}
	return c
}

// build validates opt and seeds the cache from opt.Initial followed by seed.
func build[K comparable, V any](opt Options[K, V], seed []wireEntry[K, V]) (*cache[K, V], error) {
	if err := opt.validate(); err != nil {
		return nil, err
	}
	check := newNilChecker[K, V]()
	if opt.Initial != nil {
		if err := check.entries(opt.Initial); err != nil {
			return nil, err
		}
	}
	for _, e := range seed {
		if err := check.entry(e.Key, e.Value); err != nil {
			return nil, err
		}
	}

	opt = opt.withDefaults()
	c := &cache[K, V]{
		hash:     util.Hash64[K],
		opt:      opt,
		notifier: removal.NewNotifier(opt.Listener, opt.Logger),
		check:    check,
	}

	n := opt.Shards
	c.shards = make([]*shard[K, V], n)
	maxSize := util.SplitCeil(opt.MaximumSize, n)
	maxWeight := util.SplitCeil(opt.MaximumWeight, n)
	for i := range c.shards {
		c.shards[i] = newShard(c, maxSize, maxWeight)
	}

	now := c.now()
	for k, v := range opt.Initial {
		c.shardFor(k).seed(k, v, now)
	}
	for _, e := range seed {
		c.shardFor(e.Key).seed(e.Key, e.Value, now)
	}
	c.opt.Initial = nil
	return c, nil
}

// ---- Cache[K,V] implementation ----

func (c *cache[K, V]) GetIfPresent(k K) (V, bool, error) {
	var zero V
	if err := c.check.key(k); err != nil {
		return zero, false, err
	}
	if c.closed.Load() {
		return zero, false, ErrClosed
	}
	var ns notes[K, V]
	v, ok := c.shardFor(k).get(k, c.now(), &ns)
	c.dispatch(ns)
	return v, ok, nil
}

func (c *cache[K, V]) Get(ctx context.Context, k K, loader Loader[K, V]) (V, error) {
	var zero V
	if err := c.check.key(k); err != nil {
		return zero, err
	}
	if loader == nil {
		return zero, fmt.Errorf("%w: nil loader", ErrInvalidArgument)
	}
	if c.closed.Load() {
		return zero, ErrClosed
	}

	s := c.shardFor(k)
	var ns notes[K, V]
	v, ok := s.get(k, c.now(), &ns)
	c.dispatch(ns)
	if ok {
		return v, nil
	}

	// A loader asking for a key its own load chain holds would wait on itself.
	if c.loading(ctx, k) {
		return zero, fmt.Errorf("%w: %v", ErrRecursiveLoad, k)
	}

	// The miss is recorded; followers of an in-flight load record nothing more.
	v, err, _ := c.sf.Do(ctx, k, func() (V, error) {
		if v, ok := s.peek(k, c.now()); ok {
			return v, nil
		}
		return c.load(c.withLoading(ctx, k), s, k, loader)
	})
	return v, err
}

// loadKey scopes the in-progress load chain carried by a loader's context
// to one cache.
type loadKey[K comparable, V any] struct{ c *cache[K, V] }

// loadFrame is one key of a load chain; parent is the load that called it.
type loadFrame[K comparable] struct {
	key    K
	parent *loadFrame[K]
}

// withLoading returns ctx marked as running the loader for k.
func (c *cache[K, V]) withLoading(ctx context.Context, k K) context.Context {
	parent, _ := ctx.Value(loadKey[K, V]{c}).(*loadFrame[K])
	return context.WithValue(ctx, loadKey[K, V]{c}, &loadFrame[K]{key: k, parent: parent})
}

// loading reports whether ctx belongs to a loader of this cache that is
// loading k, directly or further up its chain.
func (c *cache[K, V]) loading(ctx context.Context, k K) bool {
	f, _ := ctx.Value(loadKey[K, V]{c}).(*loadFrame[K])
	for ; f != nil; f = f.parent {
		if f.key == k {
			return true
		}
	}
	return false
}

// load calls loader once, records its outcome and stores a non-nil result.
// A panicking loader is recorded as a failure and the panic continues.
func (c *cache[K, V]) load(ctx context.Context, s *shard[K, V], k K, loader Loader[K, V]) (V, error) {
	start := c.now()
	done := false
	defer func() {
		if !done {
			c.recordLoad(time.Duration(c.now()-start), false)
		}
	}()

	v, err := loader(ctx, k)
	done = true
	c.recordLoad(time.Duration(c.now()-start), err == nil)
	if err != nil {
		var zero V
		return zero, err
	}
	if c.check.nillableValue && util.IsNil(v) {
		return v, nil
	}

	var ns notes[K, V]
	v = s.putLoaded(k, v, c.now(), &ns)
	c.dispatch(ns)
	c.reportSize()
	return v, nil
}

func (c *cache[K, V]) Put(k K, v V) error {
	if err := c.check.entry(k, v); err != nil {
		return err
	}
	if c.closed.Load() {
		return ErrClosed
	}
	var ns notes[K, V]
	err := c.shardFor(k).put(k, v, c.now(), &ns)
	c.dispatch(ns)
	c.reportSize()
	return err
}

func (c *cache[K, V]) Invalidate(k K) error {
	if err := c.check.key(k); err != nil {
		return err
	}
	if c.closed.Load() {
		return ErrClosed
	}
	var ns notes[K, V]
	err := c.shardFor(k).remove(k, c.now(), &ns)
	c.dispatch(ns)
	c.reportSize()
	return err
}

func (c *cache[K, V]) EstimatedSize() int64 { return c.entries.Load() }

func (c *cache[K, V]) Stats() stats.Snapshot { return c.opt.Stats.Snapshot() }

// CleanUp sweeps expired entries. Without ExpireAfterWrite there is no
// deferred work and it returns immediately.
func (c *cache[K, V]) CleanUp() {
	if c.opt.ExpireAfterWrite <= 0 || c.closed.Load() {
		return
	}
	now := c.now()
	var ns notes[K, V]
	for _, s := range c.shards {
		s.sweep(now, &ns)
	}
	c.dispatch(ns)
	c.reportSize()
}

// Close marks the cache closed. Entries are kept; nothing is notified.
func (c *cache[K, V]) Close() error {
	c.closed.Store(true)
	return nil
}

// ---- helpers ----

// shardFor picks a shard by hashing the key; the count is a power of two.
func (c *cache[K, V]) shardFor(k K) *shard[K, V] {
	return c.shards[util.ShardIndex(c.hash(k), len(c.shards))]
}

func (c *cache[K, V]) now() int64 {
	if c.opt.Clock != nil {
		return c.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

// deadline returns the expiry for an entry written at now, or 0 for none.
// A deadline past the end of the int64 range saturates and never expires.
func (c *cache[K, V]) deadline(now int64) int64 {
	ttl := int64(c.opt.ExpireAfterWrite)
	if ttl <= 0 {
		return 0
	}
	if now > math.MaxInt64-ttl {
		return math.MaxInt64
	}
	return now + ttl
}

func (c *cache[K, V]) weigh(k K, v V) int64 {
	if c.opt.Weigher == nil {
		return 0
	}
	return max(c.opt.Weigher(k, v), 0)
}

func (c *cache[K, V]) dispatch(ns notes[K, V]) {
	if len(ns) > 0 {
		c.notifier.NotifyAll(ns)
	}
}

func (c *cache[K, V]) recordHit() {
	c.opt.Stats.RecordHits(1)
	c.opt.Metrics.Hit()
}

func (c *cache[K, V]) recordMiss() {
	c.opt.Stats.RecordMisses(1)
	c.opt.Metrics.Miss()
}

func (c *cache[K, V]) recordLoad(d time.Duration, ok bool) {
	if ok {
		c.opt.Stats.RecordLoadSuccess(d)
		c.opt.Metrics.LoadSuccess(d)
		return
	}
	c.opt.Stats.RecordLoadFailure(d)
	c.opt.Metrics.LoadFailure(d)
}

func (c *cache[K, V]) recordEviction(cause removal.Cause) {
	c.opt.Stats.RecordEviction()
	c.opt.Metrics.Evict(cause)
}

func (c *cache[K, V]) reportSize() {
	c.opt.Metrics.Size(c.entries.Load(), c.weight.Load())
}
