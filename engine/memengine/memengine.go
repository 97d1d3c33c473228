// Package memengine implements the in-memory ordered storage engine,
// backed by github.com/google/btree for ordered, lower-bound-capable
// iteration — the same library backs the routing table, so Scan's
// lower-bound semantics agree across the two.
//
// © 2025 partkv authors. MIT License.
package memengine

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/btree"

	"github.com/Voskan/partkv/engine"
)

type item struct {
	key   string
	value []byte
}

func less(a, b item) bool { return a.key < b.key }

// Engine is a single ordered in-memory shard. The zero value is not
// usable; construct with New.
type Engine struct {
	mu    sync.RWMutex
	tree  *btree.BTreeG[item]
	level atomic.Uint64

	// extMu backs RLock/Lock. It is separate from mu so a caller holding
	// it can still call Read/Write/Scan, which take mu themselves.
	extMu sync.RWMutex
}

var _ engine.Engine = (*Engine)(nil)

// New returns an empty in-memory engine at level 0.
func New() *Engine {
	return &Engine{tree: btree.NewG(32, less)}
}

func (e *Engine) Read(_ context.Context, key string) (engine.Result, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	got, ok := e.tree.Get(item{key: key})
	if !ok {
		return engine.Result{}, nil
	}
	return engine.Result{Value: got.value, Found: true}, nil
}

func (e *Engine) Write(_ context.Context, key string, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tree.ReplaceOrInsert(item{key: key, value: value})
	return nil
}

func (e *Engine) Scan(_ context.Context, lowerBound string, limit int) ([]engine.KV, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if limit <= 0 {
		return nil, nil
	}
	out := make([]engine.KV, 0, limit)
	e.tree.AscendGreaterOrEqual(item{key: lowerBound}, func(it item) bool {
		out = append(out, engine.KV{Key: it.key, Value: it.value})
		return len(out) < limit
	})
	return out, nil
}

// Level reports the repartition generation this handle was allocated at
// (Soft variants never call it; Hard variants compare it against the
// store's current level to detect a stale handle after a repartition).
func (e *Engine) Level() uint64 { return e.level.Load() }

// SetLevel stamps the generation this handle belongs to, set once at
// allocation time by engines.newEngine.
func (e *Engine) SetLevel(level uint64) { e.level.Store(level) }

func (e *Engine) Close() error { return nil }

func (e *Engine) RLock()   { e.extMu.RLock() }
func (e *Engine) RUnlock() { e.extMu.RUnlock() }
func (e *Engine) Lock()    { e.extMu.Lock() }
func (e *Engine) Unlock()  { e.extMu.Unlock() }
