package partkv

// hard_threaded.go implements the Hard-Threaded variant: per-shard engines
// served by per-shard worker goroutines. Ops carry their engine handle(s)
// directly since workers are stateless; the key's assigned shard id (from
// the partition map) determines which worker's queue serializes operations
// on that key, exactly as for Soft-Threaded.
//
// © 2025 partkv authors. MIT License.

import (
	"context"

	"github.com/Voskan/partkv/engine"
	"github.com/Voskan/partkv/internal/ops"
	"github.com/Voskan/partkv/internal/scan"
)

func (s *Store) readHardThreaded(ctx context.Context, key string) (Status, []byte, error) {
	s.storageMap.RLock()
	e, ok := s.storageMap.GetLocked(key)
	s.storageMap.RUnlock()
	if !ok {
		return StatusNotFound, nil, nil
	}

	s.routingMap.RLock()
	id, _ := s.routingMap.GetLocked(key)
	s.routingMap.RUnlock()

	future := ops.NewFuture[ops.ReadResult]()
	if err := s.workers[id].Enqueue(ctx, ops.Operation{
		Kind: ops.KindRead,
		Read: &ops.ReadOp{Key: key, Engine: e, Future: future},
	}); err != nil {
		return StatusError, nil, err
	}
	res := future.Wait()
	return res.Status, res.Value, nil
}

func (s *Store) writeHardThreaded(ctx context.Context, key string, value []byte) error {
	id := s.shardFor(key)

	s.storageMap.Lock()
	e, ok := s.storageMap.GetLocked(key)
	if !ok || e.Level() != s.level.Load() {
		e = s.engineAt(id)
		s.storageMap.PutLocked(key, e)
	}
	s.storageMap.Unlock()

	return s.workers[id].Enqueue(ctx, ops.Operation{
		Kind:  ops.KindWrite,
		Write: &ops.WriteOp{Key: key, Value: value, Engine: e},
	})
}

func (s *Store) scanHardThreaded(ctx context.Context, prefix string, limit int) (Status, []KV, error) {
	s.storageMap.RLock()
	entries := s.storageMap.LowerBoundLocked(prefix, limit)
	s.storageMap.RUnlock()

	if len(entries) == 0 {
		return StatusNotFound, nil, nil
	}

	keys := make([]string, len(entries))
	engineOf := make([]engine.Engine, len(entries))
	shardOf := make([]int, len(entries))

	s.routingMap.RLock()
	for i, e := range entries {
		keys[i] = e.Key
		engineOf[i] = e.Value
		shardOf[i], _ = s.routingMap.GetLocked(e.Key)
	}
	s.routingMap.RUnlock()
	s.trackMany(keys)

	participants := scan.Participants(shardOf)
	op := ops.NewScanOp(keys, shardOf, engineOf, len(participants))
	for _, id := range participants {
		if err := s.workers[id].Enqueue(ctx, ops.Operation{Kind: ops.KindScan, Scan: op}); err != nil {
			return StatusError, nil, err
		}
	}

	res := op.Future.Wait()
	if len(res.KVs) == 0 {
		return StatusNotFound, nil, nil
	}
	return res.Status, res.KVs, nil
}
