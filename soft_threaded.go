package partkv

// soft_threaded.go implements the Soft-Threaded variant: one shared engine
// served by N single-consumer worker goroutines instead of shard locks.
// The only lock on the critical path is the routing table's own mutex.
//
// © 2025 partkv authors. MIT License.

import (
	"context"

	"github.com/Voskan/partkv/internal/ops"
	"github.com/Voskan/partkv/internal/scan"
)

func (s *Store) readSoftThreaded(ctx context.Context, key string) (Status, []byte, error) {
	s.routingMap.RLock()
	id, ok := s.routingMap.GetLocked(key)
	s.routingMap.RUnlock()
	if !ok {
		return StatusNotFound, nil, nil
	}

	future := ops.NewFuture[ops.ReadResult]()
	if err := s.workers[id].Enqueue(ctx, ops.Operation{
		Kind: ops.KindRead,
		Read: &ops.ReadOp{Key: key, Future: future},
	}); err != nil {
		return StatusError, nil, err
	}
	res := future.Wait()
	return res.Status, res.Value, nil
}

func (s *Store) writeSoftThreaded(ctx context.Context, key string, value []byte) error {
	id := s.shardFor(key)
	return s.workers[id].Enqueue(ctx, ops.Operation{
		Kind:  ops.KindWrite,
		Write: &ops.WriteOp{Key: key, Value: value},
	})
}

func (s *Store) scanSoftThreaded(ctx context.Context, prefix string, limit int) (Status, []KV, error) {
	s.routingMap.RLock()
	entries := s.routingMap.LowerBoundLocked(prefix, limit)
	s.routingMap.RUnlock()

	if len(entries) == 0 {
		return StatusNotFound, nil, nil
	}

	keys := make([]string, len(entries))
	shardOf := make([]int, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
		shardOf[i] = e.Value
	}
	s.trackMany(keys)

	participants := scan.Participants(shardOf)
	op := ops.NewScanOp(keys, shardOf, nil, len(participants))
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
