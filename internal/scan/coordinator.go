// Package scan implements the cross-shard scan fan-out logic: computing
// the participant set of a range scan and, for lock-striped variants,
// the deterministic engine-pointer lock ordering that avoids deadlock
// when multiple shards' engines must be locked together.
//
// © 2025 partkv authors. MIT License.
package scan

import (
	"reflect"
	"sort"

	"github.com/Voskan/partkv/engine"
)

// Participants computes the distinct, ascending-ordered set of shard ids
// touched by shardOf.
func Participants(shardOf []int) []int {
	seen := make(map[int]struct{}, len(shardOf))
	out := make([]int, 0, len(shardOf))
	for _, s := range shardOf {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

// OrderEnginesByPointer returns the distinct engines in engineOf, ordered
// by their runtime pointer address. This gives every caller a stable,
// shared tie-break when a lock-striped variant must acquire locks across
// several engines for one scan, so no two goroutines can lock the same
// engines in opposite order and deadlock.
func OrderEnginesByPointer(engineOf []engine.Engine) []engine.Engine {
	seen := make(map[uintptr]engine.Engine, len(engineOf))
	for _, e := range engineOf {
		if e == nil {
			continue
		}
		seen[reflect.ValueOf(e).Pointer()] = e
	}
	ptrs := make([]uintptr, 0, len(seen))
	for p := range seen {
		ptrs = append(ptrs, p)
	}
	sort.Slice(ptrs, func(i, j int) bool { return ptrs[i] < ptrs[j] })
	out := make([]engine.Engine, len(ptrs))
	for i, p := range ptrs {
		out[i] = seen[p]
	}
	return out
}
