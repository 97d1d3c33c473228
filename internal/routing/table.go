// Package routing implements the ordered key->value routing tables a
// Store uses: the partition map (key->shard id) and, for Hard variants,
// the storage map (key->engine handle). Both need point lookup,
// get-or-insert, and lower-bound iteration; insertion order is
// irrelevant but key order must be strict and total (lexicographic
// bytewise, i.e. Go's native string ordering).
//
// Realized on top of github.com/google/btree so the same generic
// Table[V] works for both the partition map (V = int) and the storage
// map (V = engine handle) without duplicating tree logic.
//
// © 2025 partkv authors. MIT License.
package routing

import (
	"sync"

	"github.com/google/btree"
)

type item[V any] struct {
	key string
	val V
}

func lessItem[V any](a, b item[V]) bool { return a.key < b.key }

// Table is an ordered, thread-safe key->V map with lower-bound iteration.
// The same generic type backs both the partition map (V = int shard id)
// and, for Hard variants, the storage map (V = Engine handle), each as its
// own instance.
type Table[V any] struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[item[V]]
}

// New constructs an empty routing table.
func New[V any]() *Table[V] {
	return &Table[V]{tree: btree.NewG(32, lessItem[V])}
}

// Get returns the value stored for key and whether it was present.
func (t *Table[V]) Get(key string) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	it, ok := t.tree.Get(item[V]{key: key})
	return it.val, ok
}

// Put inserts or overwrites key's value.
func (t *Table[V]) Put(key string, val V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tree.ReplaceOrInsert(item[V]{key: key, val: val})
}

// GetOrInsert returns the existing value for key if present; otherwise it
// inserts toInsert and returns it. The boolean reports whether the key
// already existed.
func (t *Table[V]) GetOrInsert(key string, toInsert V) (V, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if it, ok := t.tree.Get(item[V]{key: key}); ok {
		return it.val, true
	}
	t.tree.ReplaceOrInsert(item[V]{key: key, val: toInsert})
	return toInsert, false
}

// Len returns the number of entries.
func (t *Table[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Len()
}

// RLock / RUnlock / Lock / Unlock expose the table's mutex directly so
// facades can hold it across a routing lookup plus a subsequent shard- or
// engine-level lock acquisition, releasing the routing lock only after
// the narrower lock is held.
func (t *Table[V]) RLock()   { t.mu.RLock() }
func (t *Table[V]) RUnlock() { t.mu.RUnlock() }
func (t *Table[V]) Lock()    { t.mu.Lock() }
func (t *Table[V]) Unlock()  { t.mu.Unlock() }

// Entry is one (key, value) pair yielded by LowerBoundLocked.
type Entry[V any] struct {
	Key   string
	Value V
}

// LowerBoundLocked returns, in ascending key order, up to limit entries
// with key >= from. The caller must already hold at least RLock, since
// iteration happens under the routing table's shared read lock.
func (t *Table[V]) LowerBoundLocked(from string, limit int) []Entry[V] {
	var out []Entry[V]
	t.tree.AscendGreaterOrEqual(item[V]{key: from}, func(it item[V]) bool {
		if len(out) >= limit {
			return false
		}
		out = append(out, Entry[V]{Key: it.key, Value: it.val})
		return len(out) < limit
	})
	return out
}

// PutLocked inserts or overwrites a key's value; caller must hold Lock.
func (t *Table[V]) PutLocked(key string, val V) {
	t.tree.ReplaceOrInsert(item[V]{key: key, val: val})
}

// GetLocked returns the value for key; caller must hold RLock or Lock.
func (t *Table[V]) GetLocked(key string) (V, bool) {
	it, ok := t.tree.Get(item[V]{key: key})
	return it.val, ok
}
