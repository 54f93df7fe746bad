// Package util contains internal helpers (hashing, sharding, padding, nil checks).
//
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import "hash/maphash"

// seed is process-wide so that a key always lands on the same shard.
var seed = maphash.MakeSeed()

// Hash64 maps a key to a 64-bit hash used for shard selection.
// Integer keys are mixed arithmetically; strings and byte arrays use maphash
// directly; every other comparable type goes through maphash.Comparable.
func Hash64[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return maphash.String(seed, v)
	case [16]byte:
		return maphash.Bytes(seed, v[:])
	case [32]byte:
		return maphash.Bytes(seed, v[:])
	case int:
		return mix64(uint64(v))
	case int64:
		return mix64(uint64(v))
	case int32:
		return mix64(uint64(v))
	case uint:
		return mix64(uint64(v))
	case uint64:
		return mix64(v)
	case uint32:
		return mix64(uint64(v))
	default:
		return maphash.Comparable(seed, k)
	}
}

// mix64 is the splitmix64 finalizer; low bits depend on every input bit,
// so masking by the shard count spreads sequential keys.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
