// Package removal describes why entries leave a cache and dispatches the
// resulting notifications to a single registered listener.
package removal

// Cause explains why an entry was removed.
type Cause int

const (
	// Explicit: removed by the caller (Invalidate/InvalidateKeys/InvalidateAll).
	Explicit Cause = iota
	// Replaced: the value was overwritten by Put for the same key.
	Replaced
	// Collected: reclaimed by the garbage collector. Reserved: values are
	// strongly held, so no built-in collaborator emits it.
	Collected
	// Expired: the write TTL elapsed.
	Expired
	// Size: evicted to satisfy the entry count or weight limit.
	Size
)

// String returns a stable lowercase label (used by metrics and logs).
func (c Cause) String() string {
	switch c {
	case Explicit:
		return "explicit"
	case Replaced:
		return "replaced"
	case Collected:
		return "collected"
	case Expired:
		return "expired"
	case Size:
		return "size"
	default:
		return "unknown"
	}
}

// WasEvicted reports whether the removal was automatic (not caused by the user).
func (c Cause) WasEvicted() bool {
	switch c {
	case Collected, Expired, Size:
		return true
	default:
		return false
	}
}

// Notification is a single removed entry.
type Notification[K comparable, V any] struct {
	Key   K
	Value V
	Cause Cause
}

// WasEvicted is shorthand for n.Cause.WasEvicted().
func (n Notification[K, V]) WasEvicted() bool { return n.Cause.WasEvicted() }
