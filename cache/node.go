package cache

// node is a resident entry: the key/value plus intrusive list links
// (head = most recently used) and expiry/weight metadata.
type node[K comparable, V any] struct {
	key K
	val V

	prev *node[K, V]
	next *node[K, V]

	// exp is the absolute expiry in UnixNano; zero means never.
	exp int64
	// weight counts towards Options.MaximumWeight.
	weight int64
}

// Key implements policy.Node.
func (n *node[K, V]) Key() K { return n.key }

// Value implements policy.Node. Only dereference under the shard lock.
func (n *node[K, V]) Value() *V { return &n.val }
