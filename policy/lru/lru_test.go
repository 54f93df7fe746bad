package lru

import (
	"testing"

	"github.com/IvanBrykalov/cachecore/policy"
	"github.com/stretchr/testify/assert"
)

type testNode struct {
	k string
	v int
}

func (n *testNode) Key() string { return n.k }
func (n *testNode) Value() *int { return &n.v }

type recordingHooks struct {
	pushed, moved, removed []policy.Node[string, int]
}

func (h *recordingHooks) MoveToFront(n policy.Node[string, int]) { h.moved = append(h.moved, n) }
func (h *recordingHooks) PushFront(n policy.Node[string, int])   { h.pushed = append(h.pushed, n) }
func (h *recordingHooks) Remove(n policy.Node[string, int])      { h.removed = append(h.removed, n) }
func (h *recordingHooks) Back() policy.Node[string, int]         { return nil }
func (h *recordingHooks) Len() int                               { return len(h.pushed) }

func TestLRU_Hooks(t *testing.T) {
	t.Parallel()

	n := &testNode{k: "k", v: 1}
	tests := []struct {
		name               string
		act                func(p policy.ShardPolicy[string, int])
		pushed, moved, rem int
	}{
		{"add pushes front", func(p policy.ShardPolicy[string, int]) {
			assert.Nil(t, p.OnAdd(n), "lru never proposes a victim")
		}, 1, 0, 0},
		{"get promotes", func(p policy.ShardPolicy[string, int]) { p.OnGet(n) }, 0, 1, 0},
		{"update promotes", func(p policy.ShardPolicy[string, int]) { p.OnUpdate(n) }, 0, 1, 0},
		{"remove is a no-op", func(p policy.ShardPolicy[string, int]) { p.OnRemove(n) }, 0, 0, 0},
	}
	for _, tc := range tests {
		h := &recordingHooks{}
		tc.act(New[string, int]().New(h))

		assert.Len(t, h.pushed, tc.pushed, tc.name)
		assert.Len(t, h.moved, tc.moved, tc.name)
		assert.Len(t, h.removed, tc.rem, tc.name)
	}
}
