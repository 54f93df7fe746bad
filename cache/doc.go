// Package cache provides a generic, sharded, concurrent in-memory cache with
// a Guava-style contract: optional per-call loading, bulk operations,
// statistics, removal notifications and a synchronous writer hook.
//
// # Design
//
//   - Concurrency: the cache is split into shards, each protected by its own
//     mutex. The default shard count is a power of two near 2*GOMAXPROCS.
//
//   - Storage: each shard keeps a map[K]*node for lookups and an intrusive
//     MRU↔LRU doubly linked list for ordering. Policies from the policy
//     package decide promotion; LRU is the default and 2Q is provided.
//
//   - Bounds: MaximumSize counts entries and MaximumWeight sums a
//     user-supplied Weigher. Both budgets are split across shards. Entries
//     pushed out are reported with removal.Size.
//
//   - Expiry: ExpireAfterWrite removes entries lazily on access, or eagerly
//     in CleanUp. They are reported with removal.Expired.
//
//   - Loading: Get(ctx, k, loader) coalesces concurrent misses of the same
//     key so the loader runs once. Load time is measured with Options.Clock.
//
//   - Notifications: every removed entry produces exactly one
//     removal.Notification, delivered after the shard lock is released and
//     before the operation returns. Listener errors and panics are logged
//     and never reach the caller.
//
//   - Writer: Options.Writer sees every insert, replacement and explicit
//     removal before it happens and may veto it (ErrWriteRejected).
//     Evictions are reported to the writer but cannot be vetoed.
//
// # Basic usage
//
//	c := cache.New(cache.Options[string, []byte]{MaximumSize: 10_000})
//	_ = c.Put("a", []byte("1"))
//	if v, ok, _ := c.GetIfPresent("a"); ok {
//	    _ = v
//	}
//	_ = c.Invalidate("a")
//
// # Loading
//
//	v, err := c.Get(ctx, "key", func(ctx context.Context, k string) ([]byte, error) {
//	    return fetch(ctx, k)
//	})
//
// # Listening for removals
//
//	l := removal.NewConsuming[string, []byte]()
//	c := cache.New(cache.Options[string, []byte]{MaximumSize: 100, Listener: l})
//
// # Snapshots
//
// A cache implements json.Marshaler. Unmarshal restores the configuration,
// the built-in writer and listener kinds, and the entries in recency order.
//
// All methods on Cache are safe for concurrent use.
package cache
