package cache

import (
	"errors"
	"fmt"

	"github.com/IvanBrykalov/cachecore/internal/util"
)

var (
	// ErrInvalidArgument is returned, before any side effect, for a nil key,
	// value, loader, key slice, entry map or slice element.
	ErrInvalidArgument = errors.New("cache: invalid argument")
	// ErrUnsupported is returned by every mutating method of ReadOnlyMap.
	ErrUnsupported = fmt.Errorf("cache: read-only result: %w", errors.ErrUnsupported)
	// ErrClosed is returned by operations on a closed cache.
	ErrClosed = errors.New("cache: closed")
	// ErrRecursiveLoad is returned by Get when a loader asks the same cache
	// for a key that it, or a load up its call chain, is computing.
	ErrRecursiveLoad = errors.New("cache: recursive load")
	// ErrWriteRejected wraps a Writer error that vetoed a mutation.
	ErrWriteRejected = errors.New("cache: writer rejected mutation")
)

// nilChecker rejects nil keys and values. Checks are only performed for
// types that can hold nil, decided once per cache.
type nilChecker[K comparable, V any] struct {
	nillableKey, nillableValue bool
}

func newNilChecker[K comparable, V any]() nilChecker[K, V] {
	return nilChecker[K, V]{nillableKey: util.Nillable[K](), nillableValue: util.Nillable[V]()}
}

func (c nilChecker[K, V]) key(k K) error {
	if c.nillableKey && util.IsNil(k) {
		return fmt.Errorf("%w: nil key", ErrInvalidArgument)
	}
	return nil
}

func (c nilChecker[K, V]) value(v V) error {
	if c.nillableValue && util.IsNil(v) {
		return fmt.Errorf("%w: nil value", ErrInvalidArgument)
	}
	return nil
}

func (c nilChecker[K, V]) entry(k K, v V) error {
	return errors.Join(c.key(k), c.value(v))
}

func (c nilChecker[K, V]) keys(ks []K) error {
	if ks == nil {
		return fmt.Errorf("%w: nil key slice", ErrInvalidArgument)
	}
	for _, k := range ks {
		if err := c.key(k); err != nil {
			return err
		}
	}
	return nil
}

func (c nilChecker[K, V]) entries(m map[K]V) error {
	if m == nil {
		return fmt.Errorf("%w: nil entry map", ErrInvalidArgument)
	}
	for k, v := range m {
		if err := c.entry(k, v); err != nil {
			return err
		}
	}
	return nil
}

func wrapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrWriteRejected, err)
}
