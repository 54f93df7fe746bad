package util

import (
	"math/bits"
	"runtime"
)

// MaxShards caps the shard count.
const MaxShards = 256

// ReasonableShardCount is 2*GOMAXPROCS rounded up to a power of two,
// clamped to [1..MaxShards].
func ReasonableShardCount() int {
	return ShardCount(2 * max(runtime.GOMAXPROCS(0), 1))
}

// ShardCount rounds n up to a power of two within [1..MaxShards].
func ShardCount(n int) int {
	if n <= 1 {
		return 1
	}
	return int(min(NextPow2(uint64(n)), MaxShards))
}

// ShardIndex maps a 64-bit hash to a shard index. Power-of-two counts are
// masked; other counts fall back to modulo.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}

// SplitCeil divides total across n parts, rounding up so the parts cover it.
func SplitCeil(total int64, n int) int64 {
	if n <= 1 {
		return total
	}
	return (total + int64(n) - 1) / int64(n)
}

// IsPowerOfTwo reports whether x is a power of two (> 0).
func IsPowerOfTwo(x uint64) bool { return bits.OnesCount64(x) == 1 }

// NextPow2 returns the smallest power of two >= x, clamped to 1<<63.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	n := bits.Len64(x - 1)
	if n >= 64 {
		return 1 << 63
	}
	return 1 << n
}
