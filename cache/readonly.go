package cache

import (
	"iter"
	"maps"
)

// ReadOnlyMap is a detached snapshot returned by GetAllPresent. Later cache
// mutations do not show through, and its own mutators always fail with
// ErrUnsupported. The zero value is an empty map.
type ReadOnlyMap[K comparable, V any] struct {
	m map[K]V
}

// Get returns the value recorded for k.
func (r ReadOnlyMap[K, V]) Get(k K) (V, bool) {
	v, ok := r.m[k]
	return v, ok
}

// Len returns the number of entries.
func (r ReadOnlyMap[K, V]) Len() int { return len(r.m) }

// Keys returns the keys in unspecified order.
func (r ReadOnlyMap[K, V]) Keys() []K {
	out := make([]K, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	return out
}

// All iterates over the entries in unspecified order.
func (r ReadOnlyMap[K, V]) All() iter.Seq2[K, V] { return maps.All(r.m) }

// Clone returns a mutable copy that the caller owns.
func (r ReadOnlyMap[K, V]) Clone() map[K]V {
	out := make(map[K]V, len(r.m))
	maps.Copy(out, r.m)
	return out
}

func (r ReadOnlyMap[K, V]) Put(K, V) error { return ErrUnsupported }
func (r ReadOnlyMap[K, V]) Delete(K) error { return ErrUnsupported }
func (r ReadOnlyMap[K, V]) Clear() error   { return ErrUnsupported }
