// Package writer defines the write-through collaborator a cache notifies
// on inserts, replacements and removals, plus the built-in variants.
package writer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/IvanBrykalov/cachecore/removal"
)

var (
	// ErrRejected is returned by Rejecting for every call.
	ErrRejected = errors.New("writer: write rejected")
	// ErrUnexpected is returned by Exceptional; any call to it is a defect.
	ErrUnexpected = errors.New("writer: unexpected invocation")
)

// Writer is called synchronously, before the cache applies a mutation.
// Returning an error from Write or from Delete on an explicit removal vetoes
// that mutation. Loads and reads never reach the writer.
type Writer[K comparable, V any] interface {
	// Write is called when k is inserted or its value replaced.
	Write(k K, v V) error
	// Delete is called when k leaves the cache for the given cause.
	Delete(k K, v V, cause removal.Cause) error
}

// Disabled ignores every call. It is the default writer.
type Disabled[K comparable, V any] struct{}

func (Disabled[K, V]) Write(K, V) error                 { return nil }
func (Disabled[K, V]) Delete(K, V, removal.Cause) error { return nil }

// Rejecting vetoes every write and every delete.
type Rejecting[K comparable, V any] struct{}

func (Rejecting[K, V]) Write(k K, _ V) error {
	return fmt.Errorf("%w: write key=%v", ErrRejected, k)
}

func (Rejecting[K, V]) Delete(k K, _ V, cause removal.Cause) error {
	return fmt.Errorf("%w: delete key=%v cause=%s", ErrRejected, k, cause)
}

// Op is a single recorded writer call.
type Op[K comparable, V any] struct {
	Delete bool
	Key    K
	Value  V
	Cause  removal.Cause // only meaningful when Delete is true
}

// recorder is the shared bookkeeping of Consuming and Exceptional.
type recorder[K comparable, V any] struct {
	mu  sync.Mutex
	ops []Op[K, V]
}

func (r *recorder[K, V]) record(op Op[K, V]) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

// Ops returns a copy of the recorded calls in order.
func (r *recorder[K, V]) Ops() []Op[K, V] {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op[K, V], len(r.ops))
	copy(out, r.ops)
	return out
}

// Invocations returns the number of recorded calls.
func (r *recorder[K, V]) Invocations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}

// Reset forgets every recorded call.
func (r *recorder[K, V]) Reset() {
	r.mu.Lock()
	r.ops = nil
	r.mu.Unlock()
}

// Consuming accepts and records every call.
type Consuming[K comparable, V any] struct{ recorder[K, V] }

// NewConsuming returns an empty recording writer.
func NewConsuming[K comparable, V any]() *Consuming[K, V] { return &Consuming[K, V]{} }

func (c *Consuming[K, V]) Write(k K, v V) error {
	c.record(Op[K, V]{Key: k, Value: v})
	return nil
}

func (c *Consuming[K, V]) Delete(k K, v V, cause removal.Cause) error {
	c.record(Op[K, V]{Delete: true, Key: k, Value: v, Cause: cause})
	return nil
}

// Writes returns how many Write calls were recorded.
func (c *Consuming[K, V]) Writes() int { return c.count(false) }

// Deletes returns how many Delete calls were recorded.
func (c *Consuming[K, V]) Deletes() int { return c.count(true) }

func (c *Consuming[K, V]) count(del bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, op := range c.ops {
		if op.Delete == del {
			n++
		}
	}
	return n
}

// Exceptional must never be called. It records the offending call and
// returns ErrUnexpected, so tests can assert Invocations() == 0.
type Exceptional[K comparable, V any] struct{ recorder[K, V] }

// NewExceptional returns a writer that flags every invocation.
func NewExceptional[K comparable, V any]() *Exceptional[K, V] { return &Exceptional[K, V]{} }

func (e *Exceptional[K, V]) Write(k K, v V) error {
	e.record(Op[K, V]{Key: k, Value: v})
	return fmt.Errorf("%w: write key=%v", ErrUnexpected, k)
}

func (e *Exceptional[K, V]) Delete(k K, v V, cause removal.Cause) error {
	e.record(Op[K, V]{Delete: true, Key: k, Value: v, Cause: cause})
	return fmt.Errorf("%w: delete key=%v", ErrUnexpected, k)
}

// Kind identifies a built-in writer variant across serialization.
type Kind string

const (
	KindDisabled    Kind = "disabled"
	KindRejecting   Kind = "rejecting"
	KindConsuming   Kind = "consuming"
	KindExceptional Kind = "exceptional"
	KindCustom      Kind = "custom"
)

// KindOf classifies w. A nil writer is KindDisabled.
func KindOf[K comparable, V any](w Writer[K, V]) Kind {
	switch w.(type) {
	case nil, Disabled[K, V], *Disabled[K, V]:
		return KindDisabled
	case Rejecting[K, V], *Rejecting[K, V]:
		return KindRejecting
	case *Consuming[K, V]:
		return KindConsuming
	case *Exceptional[K, V]:
		return KindExceptional
	default:
		return KindCustom
	}
}

// For builds a fresh built-in writer of the given kind.
// KindCustom cannot be rebuilt and yields ok == false.
func For[K comparable, V any](k Kind) (w Writer[K, V], ok bool) {
	switch k {
	case KindDisabled, "":
		return Disabled[K, V]{}, true
	case KindRejecting:
		return Rejecting[K, V]{}, true
	case KindConsuming:
		return NewConsuming[K, V](), true
	case KindExceptional:
		return NewExceptional[K, V](), true
	default:
		return nil, false
	}
}
