// Package policy defines the contract between a cache shard and a pluggable
// eviction policy. A policy only orders resident entries and proposes victims;
// the shard owns the key index, performs removals and emits notifications.
package policy

// Node is a resident entry as seen by a policy.
type Node[K comparable, V any] interface {
	Key() K
	// Value points at the stored value; only touch it under the shard lock.
	Value() *V
}

// Hooks are the O(1) list operations a shard exposes to its policy.
// Every hook is called under the shard lock. Hooks manage the recency list
// only; the shard keeps the key->node map in sync itself.
type Hooks[K comparable, V any] interface {
	// MoveToFront promotes the node to most-recently-used.
	MoveToFront(Node[K, V])
	// PushFront links a newly admitted node at most-recently-used.
	PushFront(Node[K, V])
	// Remove unlinks the node from the list.
	Remove(Node[K, V])
	// Back returns the least-recently-used node, or nil when empty.
	Back() Node[K, V]
	// Len returns the number of linked nodes.
	Len() int
}

// ShardPolicy is a policy instance bound to one shard.
//
//   - OnAdd links a new node and may propose a victim; the shard evicts it
//     with cause Size and then calls OnRemove for it.
//   - OnGet and OnUpdate record use of a resident node.
//   - OnRemove lets the policy drop internal state for a node that is
//     leaving for any reason (explicit, expired, evicted).
type ShardPolicy[K comparable, V any] interface {
	OnAdd(Node[K, V]) (victim Node[K, V])
	OnGet(Node[K, V])
	OnUpdate(Node[K, V])
	OnRemove(Node[K, V])
}

// Policy creates shard-local instances.
type Policy[K comparable, V any] interface {
	New(Hooks[K, V]) ShardPolicy[K, V]
}
