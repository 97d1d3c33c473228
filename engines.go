package partkv

// engines.go builds the concrete engine.Engine instances a Store uses:
// an in-memory engine.memengine when no paths are configured, or an
// on-disk engine.badgerengine per path otherwise. Hard variants round-
// robin shards across the configured paths.
//
// © 2025 partkv authors. MIT License.

import (
	"fmt"
	"path/filepath"

	"github.com/Voskan/partkv/engine"
	"github.com/Voskan/partkv/engine/badgerengine"
	"github.com/Voskan/partkv/engine/memengine"
)

// newEngine opens one engine instance for shard idx at the given level. If
// paths is empty, an in-memory engine is used regardless of shard/level.
func newEngine(paths []string, shard int, level uint64) (engine.Engine, error) {
	if len(paths) == 0 {
		e := memengine.New()
		e.SetLevel(level)
		return e, nil
	}
	root := paths[shard%len(paths)]
	dir := filepath.Join(root, fmt.Sprintf("shard-%d", shard), fmt.Sprintf("level-%d", level))
	e, err := badgerengine.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("partkv: open engine for shard %d: %w", shard, err)
	}
	e.SetLevel(level)
	return e, nil
}

// newEngineSet opens one engine per shard in [0, n) at the given level.
// On any failure, engines already opened are closed before returning.
func newEngineSet(paths []string, n int, level uint64) ([]engine.Engine, error) {
	out := make([]engine.Engine, 0, n)
	for i := 0; i < n; i++ {
		e, err := newEngine(paths, i, level)
		if err != nil {
			for _, opened := range out {
				_ = opened.Close()
			}
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
