package removal

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// Notifier dispatches removal notifications to at most one listener.
//
// Dispatch is synchronous: Notify returns after the listener has run.
// Listener failures (returned errors and panics) are logged and counted here;
// they never propagate to the operation that removed the entry.
type Notifier[K comparable, V any] struct {
	listener Listener[K, V]
	logger   *slog.Logger
	failures atomic.Int64
}

// NewNotifier wraps l. A nil l means Discard; a nil logger means slog.Default().
func NewNotifier[K comparable, V any](l Listener[K, V], logger *slog.Logger) *Notifier[K, V] {
	if l == nil {
		l = Discard[K, V]{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier[K, V]{listener: l, logger: logger}
}

// Listener returns the registered listener.
func (n *Notifier[K, V]) Listener() Listener[K, V] { return n.listener }

// Notify delivers one notification.
func (n *Notifier[K, V]) Notify(key K, value V, cause Cause) {
	n.dispatch(Notification[K, V]{Key: key, Value: value, Cause: cause})
}

// NotifyAll delivers a batch in order. A failure on one notification does not
// prevent delivery of the rest.
func (n *Notifier[K, V]) NotifyAll(batch []Notification[K, V]) {
	for _, nt := range batch {
		n.dispatch(nt)
	}
}

// Failures returns how many listener invocations failed so far.
func (n *Notifier[K, V]) Failures() int64 { return n.failures.Load() }

func (n *Notifier[K, V]) dispatch(nt Notification[K, V]) {
	if err := n.invoke(nt); err != nil {
		n.failures.Add(1)
		n.logger.Warn("removal listener failed",
			"cause", nt.Cause.String(),
			"key", fmt.Sprint(nt.Key),
			"error", err)
	}
}

func (n *Notifier[K, V]) invoke(nt Notification[K, V]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("removal: listener panic: %v", r)
		}
	}()
	return n.listener.OnRemoval(nt)
}
