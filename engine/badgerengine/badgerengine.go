// Package badgerengine implements the on-disk storage engine over
// github.com/dgraph-io/badger/v4, one instance per filesystem path, so a
// Hard-variant store can place each shard on its own volume.
//
// © 2025 partkv authors. MIT License.
package badgerengine

import (
	"context"
	"sync"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/Voskan/partkv/engine"
)

// Engine wraps one badger.DB rooted at a single on-disk path.
type Engine struct {
	mu    sync.RWMutex
	db    *badger.DB
	level atomic.Uint64
}

var _ engine.Engine = (*Engine)(nil)

// Open opens (creating if absent) a Badger database rooted at path.
func Open(path string) (*Engine, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Engine{db: db}, nil
}

// SetLevel records the repartition generation this handle was allocated
// at, called by the facade immediately after Open, both at construction
// and during a repartition.
func (e *Engine) SetLevel(level uint64) { e.level.Store(level) }

func (e *Engine) Level() uint64 { return e.level.Load() }

func (e *Engine) Read(_ context.Context, key string) (engine.Result, error) {
	var out engine.Result
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		out.Found = true
		return item.Value(func(val []byte) error {
			out.Value = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return engine.Result{}, err
	}
	return out, nil
}

func (e *Engine) Write(_ context.Context, key string, value []byte) error {
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (e *Engine) Scan(_ context.Context, lowerBound string, limit int) ([]engine.KV, error) {
	if limit <= 0 {
		return nil, nil
	}
	out := make([]engine.KV, 0, limit)
	err := e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte(lowerBound)); it.Valid() && len(out) < limit; it.Next() {
			item := it.Item()
			key := string(item.KeyCopy(nil))
			err := item.Value(func(val []byte) error {
				out = append(out, engine.KV{Key: key, Value: append([]byte(nil), val...)})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) Close() error { return e.db.Close() }

func (e *Engine) RLock()   { e.mu.RLock() }
func (e *Engine) RUnlock() { e.mu.RUnlock() }
func (e *Engine) Lock()    { e.mu.Lock() }
func (e *Engine) Unlock()  { e.mu.Unlock() }
