package removal

import (
	"errors"
	"fmt"
	"sync"
)

// ErrRejected is returned by the Rejecting listener on every call.
var ErrRejected = errors.New("removal: listener rejected notification")

// Listener receives removal notifications. A returned error (or a panic) is
// contained by the Notifier and never reaches the cache caller.
type Listener[K comparable, V any] interface {
	OnRemoval(n Notification[K, V]) error
}

// ListenerFunc adapts a plain function to Listener.
type ListenerFunc[K comparable, V any] func(n Notification[K, V]) error

func (f ListenerFunc[K, V]) OnRemoval(n Notification[K, V]) error { return f(n) }

// Discard accepts every notification silently. It is the default listener.
type Discard[K comparable, V any] struct{}

func (Discard[K, V]) OnRemoval(Notification[K, V]) error { return nil }

// Rejecting fails on every notification.
type Rejecting[K comparable, V any] struct{}

func (Rejecting[K, V]) OnRemoval(n Notification[K, V]) error {
	return fmt.Errorf("%w: key=%v cause=%s", ErrRejected, n.Key, n.Cause)
}

// Consuming records every notification for later inspection.
// Safe for concurrent use.
type Consuming[K comparable, V any] struct {
	mu   sync.Mutex
	seen []Notification[K, V]
}

// NewConsuming returns an empty recording listener.
func NewConsuming[K comparable, V any]() *Consuming[K, V] { return &Consuming[K, V]{} }

func (c *Consuming[K, V]) OnRemoval(n Notification[K, V]) error {
	c.mu.Lock()
	c.seen = append(c.seen, n)
	c.mu.Unlock()
	return nil
}

// Notifications returns a copy of everything recorded so far, in dispatch order.
func (c *Consuming[K, V]) Notifications() []Notification[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification[K, V], len(c.seen))
	copy(out, c.seen)
	return out
}

// Len returns the number of recorded notifications.
func (c *Consuming[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

// Count returns how many recorded notifications carry cause.
func (c *Consuming[K, V]) Count(cause Cause) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, s := range c.seen {
		if s.Cause == cause {
			n++
		}
	}
	return n
}

// Reset drops everything recorded so far.
func (c *Consuming[K, V]) Reset() {
	c.mu.Lock()
	c.seen = nil
	c.mu.Unlock()
}

// Kind identifies one of the built-in listener variants. It is what survives
// serialization; function-backed listeners are reported as KindCustom.
type Kind string

const (
	KindDiscard   Kind = "discard"
	KindRejecting Kind = "rejecting"
	KindConsuming Kind = "consuming"
	KindCustom    Kind = "custom"
)

// KindOf classifies l. A nil listener is KindDiscard.
func KindOf[K comparable, V any](l Listener[K, V]) Kind {
	switch l.(type) {
	case nil, Discard[K, V], *Discard[K, V]:
		return KindDiscard
	case Rejecting[K, V], *Rejecting[K, V]:
		return KindRejecting
	case *Consuming[K, V]:
		return KindConsuming
	default:
		return KindCustom
	}
}

// ListenerFor builds a fresh built-in listener of the given kind.
// KindCustom cannot be rebuilt and yields ok == false.
func ListenerFor[K comparable, V any](k Kind) (l Listener[K, V], ok bool) {
	switch k {
	case KindDiscard, "":
		return Discard[K, V]{}, true
	case KindRejecting:
		return Rejecting[K, V]{}, true
	case KindConsuming:
		return NewConsuming[K, V](), true
	default:
		return nil, false
	}
}
