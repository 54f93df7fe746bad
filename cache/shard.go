package cache

import (
	"errors"
	"sync"

	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/IvanBrykalov/cachecore/removal"
)

// notes collects notifications produced under a shard lock; the cache
// dispatches them after the lock is released, before the operation returns.
type notes[K comparable, V any] []removal.Notification[K, V]

func (ns *notes[K, V]) add(k K, v V, cause removal.Cause) {
	*ns = append(*ns, removal.Notification[K, V]{Key: k, Value: v, Cause: cause})
}

// shard is an independent partition with its own lock, key index and
// intrusive recency list. All list and map state is guarded by mu.
type shard[K comparable, V any] struct {
	mu   sync.Mutex
	m    map[K]*node[K, V]
	head *node[K, V]
	tail *node[K, V]
	len  int64

	weight    int64
	maxSize   int64 // 0 = unbounded
	maxWeight int64 // 0 = unbounded

	pol policy.ShardPolicy[K, V]
	c   *cache[K, V]
}

func newShard[K comparable, V any](c *cache[K, V], maxSize, maxWeight int64) *shard[K, V] {
	s := &shard[K, V]{
		m:         make(map[K]*node[K, V]),
		maxSize:   maxSize,
		maxWeight: maxWeight,
		c:         c,
	}
	s.pol = c.opt.Policy.New(shardHooks[K, V]{s: s})
	return s
}

// get returns a live value and records a hit, or records a miss.
// An expired entry is evicted first and reported as a miss.
func (s *shard[K, V]) get(k K, now int64, ns *notes[K, V]) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if ok && s.expired(n, now) {
		s.evict(n, removal.Expired, ns)
		ok = false
	}
	if !ok {
		s.c.recordMiss()
		var zero V
		return zero, false
	}
	s.pol.OnGet(n)
	s.c.recordHit()
	return n.val, true
}

// peek is get without statistics or policy promotion.
func (s *shard[K, V]) peek(k K, now int64) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok || s.expired(n, now) {
		var zero V
		return zero, false
	}
	return n.val, true
}

// put inserts or replaces k. The writer is consulted first and may veto.
// A replacement emits Replaced with the previous value even if it is equal.
func (s *shard[K, V]) put(k K, v V, now int64, ns *notes[K, V]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.c.opt.Writer.Write(k, v); err != nil {
		return wrapWriteErr(err)
	}

	if n, ok := s.m[k]; ok {
		if !s.expired(n, now) {
			old := n.val
			s.setWeight(n, s.c.weigh(k, v))
			n.val = v
			n.exp = s.c.deadline(now)
			s.pol.OnUpdate(n)
			ns.add(k, old, removal.Replaced)
			s.enforceLimits(ns)
			return nil
		}
		s.evict(n, removal.Expired, ns)
	}
	s.insert(k, v, now, ns)
	return nil
}

// putLoaded stores a loaded value unless another write got there first, in
// which case the resident value wins. The writer is not consulted for loads.
func (s *shard[K, V]) putLoaded(k K, v V, now int64, ns *notes[K, V]) V {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.m[k]; ok {
		if !s.expired(n, now) {
			return n.val
		}
		s.evict(n, removal.Expired, ns)
	}
	s.insert(k, v, now, ns)
	return v
}

// seed inserts without writer, listener or stats; used while constructing.
// Anything the bounds push out is discarded silently.
func (s *shard[K, V]) seed(k K, v V, now int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.m[k]; ok {
		s.unlink(n)
	}
	n := &node[K, V]{key: k, val: v, exp: s.c.deadline(now), weight: s.c.weigh(k, v)}
	s.m[k] = n
	if victim := s.pol.OnAdd(n); victim != nil {
		s.unlink(victim.(*node[K, V]))
	}
	for s.overLimit() && s.tail != nil {
		s.unlink(s.tail)
	}
}

// remove explicitly removes k if present. The writer may veto the removal,
// in which case the entry stays. An already expired entry is evicted as
// Expired instead.
func (s *shard[K, V]) remove(k K, now int64, ns *notes[K, V]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[k]
	if !ok {
		return nil
	}
	if s.expired(n, now) {
		s.evict(n, removal.Expired, ns)
		return nil
	}
	if err := s.c.opt.Writer.Delete(k, n.val, removal.Explicit); err != nil {
		return wrapWriteErr(err)
	}
	s.unlink(n)
	ns.add(k, n.val, removal.Explicit)
	return nil
}

// clear explicitly removes every entry, keeping those the writer vetoes.
func (s *shard[K, V]) clear(ns *notes[K, V]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for n := s.tail; n != nil; {
		prev := n.prev
		if err := s.c.opt.Writer.Delete(n.key, n.val, removal.Explicit); err != nil {
			errs = append(errs, wrapWriteErr(err))
		} else {
			s.unlink(n)
			ns.add(n.key, n.val, removal.Explicit)
		}
		n = prev
	}
	return errors.Join(errs...)
}

// sweep evicts every expired entry.
func (s *shard[K, V]) sweep(now int64, ns *notes[K, V]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for n := s.tail; n != nil; {
		prev := n.prev
		if s.expired(n, now) {
			s.evict(n, removal.Expired, ns)
		}
		n = prev
	}
}

// entries appends live entries from least to most recently used.
func (s *shard[K, V]) entries(now int64, dst []wireEntry[K, V]) []wireEntry[K, V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	for n := s.tail; n != nil; n = n.prev {
		if !s.expired(n, now) {
			dst = append(dst, wireEntry[K, V]{Key: n.key, Value: n.val})
		}
	}
	return dst
}

// -------------------- internals (mu held) --------------------

func (s *shard[K, V]) expired(n *node[K, V], now int64) bool {
	return n.exp != 0 && now > n.exp
}

func (s *shard[K, V]) insert(k K, v V, now int64, ns *notes[K, V]) {
	n := &node[K, V]{key: k, val: v, exp: s.c.deadline(now), weight: s.c.weigh(k, v)}
	s.m[k] = n
	if victim := s.pol.OnAdd(n); victim != nil {
		s.evict(victim.(*node[K, V]), removal.Size, ns)
	}
	s.enforceLimits(ns)
}

func (s *shard[K, V]) overLimit() bool {
	return (s.maxSize > 0 && s.len > s.maxSize) ||
		(s.maxWeight > 0 && s.weight > s.maxWeight)
}

// enforceLimits evicts from the LRU end until both bounds hold.
func (s *shard[K, V]) enforceLimits(ns *notes[K, V]) {
	for s.overLimit() && s.tail != nil {
		s.evict(s.tail, removal.Size, ns)
	}
}

// evict removes n on behalf of the eviction collaborator. The writer is told,
// but cannot veto; its failure is only logged.
func (s *shard[K, V]) evict(n *node[K, V], cause removal.Cause, ns *notes[K, V]) {
	s.unlink(n)
	if err := s.c.opt.Writer.Delete(n.key, n.val, cause); err != nil {
		s.c.opt.Logger.Warn("cache: writer failed on eviction",
			"cause", cause.String(), "error", err)
	}
	s.c.recordEviction(cause)
	ns.add(n.key, n.val, cause)
}

// unlink drops n from the policy, the list and the index.
func (s *shard[K, V]) unlink(n *node[K, V]) {
	s.pol.OnRemove(n)
	s.removeNode(n)
	delete(s.m, n.key)
}

func (s *shard[K, V]) setWeight(n *node[K, V], w int64) {
	d := w - n.weight
	n.weight = w
	s.weight += d
	s.c.weight.Add(d)
}

func (s *shard[K, V]) insertFront(n *node[K, V]) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
	s.len++
	s.weight += n.weight
	s.c.entries.Add(1)
	s.c.weight.Add(n.weight)
}

func (s *shard[K, V]) moveToFront(n *node[K, V]) {
	if n == s.head {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

func (s *shard[K, V]) removeNode(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.head == n {
		s.head = n.next
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
	s.len--
	s.weight -= n.weight
	s.c.entries.Add(-1)
	s.c.weight.Add(-n.weight)
}

// -------------------- policy hooks --------------------

// shardHooks adapts the shard's list operations to policy.Hooks.
type shardHooks[K comparable, V any] struct{ s *shard[K, V] }

func (h shardHooks[K, V]) MoveToFront(x policy.Node[K, V]) { h.s.moveToFront(x.(*node[K, V])) }
func (h shardHooks[K, V]) PushFront(x policy.Node[K, V])   { h.s.insertFront(x.(*node[K, V])) }
func (h shardHooks[K, V]) Remove(x policy.Node[K, V])      { h.s.removeNode(x.(*node[K, V])) }
func (h shardHooks[K, V]) Back() policy.Node[K, V] {
	if h.s.tail == nil {
		return nil
	}
	return h.s.tail
}
func (h shardHooks[K, V]) Len() int { return int(h.s.len) }
