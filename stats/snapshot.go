// Package stats accumulates cache hit/miss/load/eviction counters and exposes
// them as immutable snapshots that can be combined arithmetically.
package stats

import (
	"fmt"
	"time"
)

// Snapshot is an immutable point-in-time view of cache statistics.
// Two snapshots are equal (==) iff all counters match.
type Snapshot struct {
	HitCount         int64
	MissCount        int64
	LoadSuccessCount int64
	LoadFailureCount int64
	TotalLoadTime    time.Duration
	EvictionCount    int64
}

// Of builds a snapshot from raw counters. No validation is performed, so
// snapshots produced by Minus may hold negative values.
func Of(hit, miss, loadSuccess, loadFailure int64, totalLoadTime time.Duration, eviction int64) Snapshot {
	return Snapshot{
		HitCount:         hit,
		MissCount:        miss,
		LoadSuccessCount: loadSuccess,
		LoadFailureCount: loadFailure,
		TotalLoadTime:    totalLoadTime,
		EvictionCount:    eviction,
	}
}

// Plus returns the elementwise sum of s and o.
func (s Snapshot) Plus(o Snapshot) Snapshot {
	return Snapshot{
		HitCount:         s.HitCount + o.HitCount,
		MissCount:        s.MissCount + o.MissCount,
		LoadSuccessCount: s.LoadSuccessCount + o.LoadSuccessCount,
		LoadFailureCount: s.LoadFailureCount + o.LoadFailureCount,
		TotalLoadTime:    s.TotalLoadTime + o.TotalLoadTime,
		EvictionCount:    s.EvictionCount + o.EvictionCount,
	}
}

// Minus returns the elementwise difference s - o.
// Results are not clamped at zero: subtracting a larger snapshot yields
// negative counters.
func (s Snapshot) Minus(o Snapshot) Snapshot {
	return Snapshot{
		HitCount:         s.HitCount - o.HitCount,
		MissCount:        s.MissCount - o.MissCount,
		LoadSuccessCount: s.LoadSuccessCount - o.LoadSuccessCount,
		LoadFailureCount: s.LoadFailureCount - o.LoadFailureCount,
		TotalLoadTime:    s.TotalLoadTime - o.TotalLoadTime,
		EvictionCount:    s.EvictionCount - o.EvictionCount,
	}
}

// RequestCount is hits plus misses.
func (s Snapshot) RequestCount() int64 { return s.HitCount + s.MissCount }

// HitRate is hits/requests, or 1.0 when there were no requests.
func (s Snapshot) HitRate() float64 {
	n := s.RequestCount()
	if n == 0 {
		return 1.0
	}
	return float64(s.HitCount) / float64(n)
}

// MissRate is misses/requests, or 0.0 when there were no requests.
func (s Snapshot) MissRate() float64 {
	n := s.RequestCount()
	if n == 0 {
		return 0.0
	}
	return float64(s.MissCount) / float64(n)
}

// LoadCount is the number of loader invocations, successful or not.
func (s Snapshot) LoadCount() int64 { return s.LoadSuccessCount + s.LoadFailureCount }

// LoadFailureRate is failures/loads, or 0.0 when nothing was loaded.
func (s Snapshot) LoadFailureRate() float64 {
	n := s.LoadCount()
	if n == 0 {
		return 0.0
	}
	return float64(s.LoadFailureCount) / float64(n)
}

// AverageLoadPenalty is the mean time spent per load.
func (s Snapshot) AverageLoadPenalty() time.Duration {
	n := s.LoadCount()
	if n == 0 {
		return 0
	}
	return s.TotalLoadTime / time.Duration(n)
}

// String formats the snapshot for logs.
func (s Snapshot) String() string {
	return fmt.Sprintf("stats{hits=%d misses=%d loadSuccess=%d loadFailure=%d totalLoadTime=%s evictions=%d}",
		s.HitCount, s.MissCount, s.LoadSuccessCount, s.LoadFailureCount, s.TotalLoadTime, s.EvictionCount)
}
