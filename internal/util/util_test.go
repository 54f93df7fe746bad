package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type point struct{ x, y int }

func TestHash64_Stable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Hash64("abc"), Hash64("abc"))
	assert.Equal(t, Hash64(42), Hash64(42))
	assert.Equal(t, Hash64(point{1, 2}), Hash64(point{1, 2}))
	assert.NotEqual(t, Hash64("a"), Hash64("b"))
}

func TestHash64_SpreadsSequentialInts(t *testing.T) {
	t.Parallel()

	const shards = 16
	var counts [shards]int
	for k := range 1024 {
		counts[ShardIndex(Hash64(k), shards)]++
	}
	for i, n := range counts {
		assert.Greater(t, n, 16, "shard %d underused", i)
	}
}

func TestIsNil(t *testing.T) {
	t.Parallel()

	var p *int
	var m map[string]int
	var s []int
	var f func()
	var e error

	assert.True(t, IsNil(nil))
	assert.True(t, IsNil(p))
	assert.True(t, IsNil(m))
	assert.True(t, IsNil(s))
	assert.True(t, IsNil(f))
	assert.True(t, IsNil(e))

	x := 0
	assert.False(t, IsNil(&x))
	assert.False(t, IsNil(0))
	assert.False(t, IsNil(""))
	assert.False(t, IsNil(point{}))
	assert.False(t, IsNil([]int{}))
}

func TestNextPow2(t *testing.T) {
	t.Parallel()

	cases := map[uint64]uint64{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128}
	for in, want := range cases {
		assert.Equal(t, want, NextPow2(in), "NextPow2(%d)", in)
	}
	assert.Equal(t, uint64(1<<63), NextPow2(1<<63+1))
}

func TestShardCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, ShardCount(0))
	assert.Equal(t, 4, ShardCount(3))
	assert.Equal(t, MaxShards, ShardCount(10_000))
	assert.True(t, IsPowerOfTwo(uint64(ReasonableShardCount())))
}

func TestShardIndex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, ShardIndex(12345, 1))
	assert.Equal(t, 5, ShardIndex(13, 8))
	assert.Equal(t, 1, ShardIndex(13, 3))
}

func TestSplitCeil(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(10), SplitCeil(10, 1))
	assert.Equal(t, int64(4), SplitCeil(10, 3))
	assert.Equal(t, int64(0), SplitCeil(0, 4))
}
