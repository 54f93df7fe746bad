// Package twoq implements the 2Q policy, which keeps one-hit entries in a
// small admission queue so that scans do not flush the frequently used set.
package twoq

import (
	"container/list"

	"github.com/IvanBrykalov/cachecore/policy"
)

// New returns a 2Q factory. inCap bounds the admission queue (A1in) and
// ghostCap bounds the remembered keys of entries evicted from it (A1out).
// Both are per shard: divide cache-wide sizes by the shard count.
func New[K comparable, V any](inCap, ghostCap int) policy.Policy[K, V] {
	return factory[K, V]{inCap: max(inCap, 1), ghostCap: max(ghostCap, 1)}
}

type factory[K comparable, V any] struct {
	inCap    int
	ghostCap int
}

func (f factory[K, V]) New(h policy.Hooks[K, V]) policy.ShardPolicy[K, V] {
	return &twoQ[K, V]{
		h:        h,
		inCap:    f.inCap,
		ghostCap: f.ghostCap,
		inList:   list.New(),
		inIdx:    make(map[policy.Node[K, V]]*list.Element),
		ghosts:   list.New(),
		ghostIdx: make(map[K]*list.Element),
	}
}

// twoQ tracks A1in membership on the side; nodes not in A1in belong to the
// main queue (Am), whose order is the shard list itself.
type twoQ[K comparable, V any] struct {
	h policy.Hooks[K, V]

	inCap    int
	ghostCap int

	inList *list.List // A1in, front = newest; element.Value is policy.Node
	inIdx  map[policy.Node[K, V]]*list.Element

	ghosts   *list.List // A1out, front = newest; element.Value is K
	ghostIdx map[K]*list.Element
}

// OnAdd admits a remembered key straight into Am; anything else enters A1in.
// When A1in overflows its oldest member is proposed as the victim.
func (q *twoQ[K, V]) OnAdd(n policy.Node[K, V]) policy.Node[K, V] {
	q.h.PushFront(n)

	k := n.Key()
	if ge, ok := q.ghostIdx[k]; ok {
		q.ghosts.Remove(ge)
		delete(q.ghostIdx, k)
		return nil
	}

	q.inIdx[n] = q.inList.PushFront(n)
	if q.inList.Len() > q.inCap {
		return q.inList.Back().Value.(policy.Node[K, V])
	}
	return nil
}

// OnGet promotes a node out of A1in on its second use.
func (q *twoQ[K, V]) OnGet(n policy.Node[K, V]) {
	if el, ok := q.inIdx[n]; ok {
		q.inList.Remove(el)
		delete(q.inIdx, n)
	}
	q.h.MoveToFront(n)
}

func (q *twoQ[K, V]) OnUpdate(n policy.Node[K, V]) { q.OnGet(n) }

// OnRemove remembers keys leaving A1in as ghosts; Am removals leave no trace.
func (q *twoQ[K, V]) OnRemove(n policy.Node[K, V]) {
	el, ok := q.inIdx[n]
	if !ok {
		return
	}
	q.inList.Remove(el)
	delete(q.inIdx, n)

	k := n.Key()
	if old := q.ghostIdx[k]; old != nil {
		q.ghosts.Remove(old)
	}
	q.ghostIdx[k] = q.ghosts.PushFront(k)

	for q.ghosts.Len() > q.ghostCap {
		tail := q.ghosts.Back()
		delete(q.ghostIdx, tail.Value.(K))
		q.ghosts.Remove(tail)
	}
}
