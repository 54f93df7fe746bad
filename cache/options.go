package cache

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IvanBrykalov/cachecore/internal/util"
	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/policy/lru"
	"github.com/IvanBrykalov/cachecore/removal"
	"github.com/IvanBrykalov/cachecore/stats"
	"github.com/IvanBrykalov/cachecore/writer"
)

// Metrics exposes cache-level observability hooks.
// NoopMetrics is used by default; metrics/prom exports to Prometheus.
type Metrics interface {
	Hit()
	Miss()
	LoadSuccess(d time.Duration)
	LoadFailure(d time.Duration)
	Evict(cause removal.Cause)
	Size(entries, weight int64)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures a cache. The zero value is a valid unbounded cache;
// defaults are applied in New:
//   - Shards <= 0      => auto (≈ 2*GOMAXPROCS, power of two)
//   - nil Policy       => LRU
//   - nil Writer       => writer.Disabled
//   - nil Listener     => removal.Discard
//   - nil Stats        => stats.NewCounter()
//   - nil Metrics      => NoopMetrics
//   - nil Logger       => slog.Default()
//   - nil Clock        => wall clock
type Options[K comparable, V any] struct {
	// Shards is rounded up to a power of two (max 256).
	Shards int

	// MaximumSize bounds the number of entries; <= 0 means unbounded.
	// The bound is split evenly across shards, so with many shards and a
	// small bound the effective capacity is rounded up per shard.
	MaximumSize int64
	// Policy orders entries for size eviction; nil => LRU.
	Policy policy.Policy[K, V]

	// Weigher and MaximumWeight bound the summed entry weight. Both must be
	// set together. Negative weights count as zero.
	Weigher       func(k K, v V) int64
	MaximumWeight int64

	// ExpireAfterWrite removes entries this long after their last write;
	// 0 disables expiration. Deadlines beyond the int64 clock never expire.
	ExpireAfterWrite time.Duration

	// Writer is called before inserts, replacements and removals.
	Writer writer.Writer[K, V]
	// Listener receives one notification per removed entry.
	Listener removal.Listener[K, V]

	// Stats accumulates hit/miss/load/eviction counts.
	Stats stats.Recorder
	// Metrics receives the same signals for export.
	Metrics Metrics
	// Logger reports contained listener and eviction-writer failures.
	Logger *slog.Logger
	// Clock overrides the time source (tests).
	Clock Clock

	// Initial seeds the cache in New. Seeding bypasses Writer, Listener and
	// Stats; entries that exceed the size or weight bound are dropped.
	Initial map[K]V
}

// validate reports configuration errors; New panics on them.
func (o Options[K, V]) validate() error {
	var errs []error
	if o.Shards < 0 {
		errs = append(errs, errors.New("Shards must be >= 0"))
	}
	if o.MaximumSize < 0 {
		errs = append(errs, errors.New("MaximumSize must be >= 0"))
	}
	if o.MaximumWeight < 0 {
		errs = append(errs, errors.New("MaximumWeight must be >= 0"))
	}
	if (o.Weigher == nil) != (o.MaximumWeight == 0) {
		errs = append(errs, errors.New("Weigher and MaximumWeight must be set together"))
	}
	if o.ExpireAfterWrite < 0 {
		errs = append(errs, errors.New("ExpireAfterWrite must be >= 0"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("cache: invalid options: %w", err)
	}
	return nil
}

// withDefaults fills nil collaborators. o must already be valid.
func (o Options[K, V]) withDefaults() Options[K, V] {
	if o.Shards <= 0 {
		o.Shards = util.ReasonableShardCount()
	} else {
		o.Shards = util.ShardCount(o.Shards)
	}
	if o.Policy == nil {
		o.Policy = lru.New[K, V]()
	}
	if o.Writer == nil {
		o.Writer = writer.Disabled[K, V]{}
	}
	if o.Listener == nil {
		o.Listener = removal.Discard[K, V]{}
	}
	if o.Stats == nil {
		o.Stats = stats.NewCounter()
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetrics{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
