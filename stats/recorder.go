package stats

import (
	"time"

	"github.com/IvanBrykalov/cachecore/internal/util"
)

// Recorder accumulates statistics while a cache operates.
// Implementations must be safe for concurrent use.
type Recorder interface {
	RecordHits(n int)
	RecordMisses(n int)
	RecordLoadSuccess(loadTime time.Duration)
	RecordLoadFailure(loadTime time.Duration)
	RecordEviction()
	// Snapshot returns an immutable copy; never a live handle.
	Snapshot() Snapshot
}

// Counter is a lock-free Recorder. Each counter sits on its own cache line
// to avoid false sharing between goroutines hitting different counters.
type Counter struct {
	_           util.CacheLinePad
	hits        util.PaddedAtomicInt64
	misses      util.PaddedAtomicInt64
	loadSuccess util.PaddedAtomicInt64
	loadFailure util.PaddedAtomicInt64
	loadTime    util.PaddedAtomicInt64
	evictions   util.PaddedAtomicInt64
}

// NewCounter returns a zeroed Counter.
func NewCounter() *Counter { return &Counter{} }

func (c *Counter) RecordHits(n int)   { c.hits.Add(int64(n)) }
func (c *Counter) RecordMisses(n int) { c.misses.Add(int64(n)) }

func (c *Counter) RecordLoadSuccess(loadTime time.Duration) {
	c.loadSuccess.Add(1)
	c.loadTime.Add(int64(loadTime))
}

func (c *Counter) RecordLoadFailure(loadTime time.Duration) {
	c.loadFailure.Add(1)
	c.loadTime.Add(int64(loadTime))
}

func (c *Counter) RecordEviction() { c.evictions.Add(1) }

func (c *Counter) Snapshot() Snapshot {
	return Snapshot{
		HitCount:         c.hits.Load(),
		MissCount:        c.misses.Load(),
		LoadSuccessCount: c.loadSuccess.Load(),
		LoadFailureCount: c.loadFailure.Load(),
		TotalLoadTime:    time.Duration(c.loadTime.Load()),
		EvictionCount:    c.evictions.Load(),
	}
}

// IncrementBy folds the current snapshot of other into c.
// Used to aggregate per-cache recorders into a process-wide total.
func (c *Counter) IncrementBy(other Recorder) {
	s := other.Snapshot()
	c.hits.Add(s.HitCount)
	c.misses.Add(s.MissCount)
	c.loadSuccess.Add(s.LoadSuccessCount)
	c.loadFailure.Add(s.LoadFailureCount)
	c.loadTime.Add(int64(s.TotalLoadTime))
	c.evictions.Add(s.EvictionCount)
}

// Disabled is a Recorder that drops everything; its snapshot is always zero.
type Disabled struct{}

func (Disabled) RecordHits(int)                  {}
func (Disabled) RecordMisses(int)                {}
func (Disabled) RecordLoadSuccess(time.Duration) {}
func (Disabled) RecordLoadFailure(time.Duration) {}
func (Disabled) RecordEviction()                 {}
func (Disabled) Snapshot() Snapshot              { return Snapshot{} }

var (
	_ Recorder = (*Counter)(nil)
	_ Recorder = Disabled{}
)
