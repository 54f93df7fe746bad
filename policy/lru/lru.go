// Package lru implements least-recently-used ordering, the default policy.
package lru

import "github.com/IvanBrykalov/cachecore/policy"

type lruPolicy[K comparable, V any] struct{}

// New returns the LRU policy factory.
func New[K comparable, V any]() policy.Policy[K, V] { return lruPolicy[K, V]{} }

func (lruPolicy[K, V]) New(h policy.Hooks[K, V]) policy.ShardPolicy[K, V] {
	return &lru[K, V]{h: h}
}

// lru moves every touched node to the front; the shard's capacity check
// evicts from the back, so lru itself never proposes a victim.
type lru[K comparable, V any] struct {
	h policy.Hooks[K, V]
}

func (p *lru[K, V]) OnAdd(n policy.Node[K, V]) policy.Node[K, V] {
	p.h.PushFront(n)
	return nil
}

func (p *lru[K, V]) OnGet(n policy.Node[K, V])    { p.h.MoveToFront(n) }
func (p *lru[K, V]) OnUpdate(n policy.Node[K, V]) { p.h.MoveToFront(n) }
func (p *lru[K, V]) OnRemove(policy.Node[K, V])   {}
