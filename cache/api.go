package cache

import (
	"context"
	"encoding/json"

	"github.com/IvanBrykalov/cachecore/stats"
)

// Loader computes the value for a missing key. It may return a nil value,
// which is handed back to the caller but not stored.
type Loader[K comparable, V any] func(ctx context.Context, k K) (V, error)

// Cache is a sharded in-memory key/value cache. All methods are safe for
// concurrent use; each single-key operation is atomic with respect to its
// entry, the statistics it records and the notification it triggers.
//
// Arguments denoting a key, value, loader or collection are never nil;
// passing one fails with ErrInvalidArgument before any side effect.
//
// Bulk mutations validate the whole batch up front, then apply it key by
// key. A Writer veto fails only the key it names: the rest of the batch is
// applied and notified, and the vetoes come back joined under
// ErrWriteRejected.
type Cache[K comparable, V any] interface {
	// GetIfPresent returns the value for k, recording one hit or one miss.
	// It never loads.
	GetIfPresent(k K) (V, bool, error)

	// Get returns the value for k. On a miss it calls loader exactly once
	// (concurrent misses for k share one call), stores a non-nil result and
	// returns it. A loader error is returned unchanged and nothing is stored.
	// A loader that asks for a key its own load chain is computing gets
	// ErrRecursiveLoad.
	Get(ctx context.Context, k K, loader Loader[K, V]) (V, error)

	// GetAllPresent returns a read-only snapshot of the requested keys that
	// are present, recording one hit or miss per requested key.
	GetAllPresent(keys []K) (ReadOnlyMap[K, V], error)

	// Put associates v with k. Replacing an existing entry emits exactly one
	// removal.Replaced notification carrying the previous value.
	Put(k K, v V) error

	// PutAll is Put for every entry of the map. Vetoed keys keep their
	// previous state; the others are written.
	PutAll(entries map[K]V) error

	// Invalidate removes k, emitting removal.Explicit if it was present.
	Invalidate(k K) error

	// InvalidateKeys removes the given keys; absent keys are skipped and
	// vetoed keys stay resident.
	InvalidateKeys(keys []K) error

	// InvalidateAll removes every entry, one removal.Explicit each.
	InvalidateAll() error

	// EstimatedSize returns the number of resident entries. It is exact once
	// concurrent operations settle; expired entries count until swept.
	EstimatedSize() int64

	// Stats returns a snapshot of the accumulated statistics.
	Stats() stats.Snapshot

	// CleanUp performs pending maintenance, such as sweeping expired entries.
	CleanUp()

	// Close marks the cache closed; later operations return ErrClosed.
	Close() error

	// MarshalJSON encodes the configuration and live entries; see Unmarshal.
	json.Marshaler
}
