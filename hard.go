package partkv

// hard.go implements the Hard variant: N engines at level L, each with
// its own lock; routing uses both a storage map (key->engine handle,
// drives read/scan) and a partition map (key->shard id, a hint used
// during rehoming and rebuilds).
//
// © 2025 partkv authors. MIT License.

import (
	"context"

	"github.com/Voskan/partkv/engine"
	"github.com/Voskan/partkv/internal/scan"
)

func (s *Store) readHard(ctx context.Context, key string) (Status, []byte, error) {
	s.storageMap.RLock()
	e, ok := s.storageMap.GetLocked(key)
	s.storageMap.RUnlock()
	if !ok {
		return StatusNotFound, nil, nil
	}

	e.RLock()
	defer e.RUnlock()

	res, err := e.Read(ctx, key)
	if err != nil {
		return StatusError, nil, err
	}
	if !res.Found {
		return StatusNotFound, nil, nil
	}
	return StatusSuccess, res.Value, nil
}

func (s *Store) writeHard(ctx context.Context, key string, value []byte) error {
	s.storageMap.Lock()
	e, ok := s.storageMap.GetLocked(key)
	needsRehome := !ok || e.Level() != s.level.Load()
	if needsRehome {
		s.routingMap.Lock()
		id, existed := s.routingMap.GetLocked(key)
		if !existed {
			id = int(s.hashFunc(key) % uint64(s.partitionCount))
			s.routingMap.PutLocked(key, id)
		}
		s.routingMap.Unlock()
		e = s.engineAt(id)
		s.storageMap.PutLocked(key, e)
	}
	s.storageMap.Unlock()

	e.Lock()
	defer e.Unlock()
	return e.Write(ctx, key, value)
}

func (s *Store) scanHard(ctx context.Context, prefix string, limit int) (Status, []KV, error) {
	s.storageMap.RLock()
	entries := s.storageMap.LowerBoundLocked(prefix, limit)
	s.storageMap.RUnlock()

	if len(entries) == 0 {
		return StatusNotFound, nil, nil
	}

	keys := make([]string, len(entries))
	engineOf := make([]engine.Engine, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
		engineOf[i] = e.Value
	}
	s.trackMany(keys)
	for _, e := range scan.OrderEnginesByPointer(engineOf) {
		e.RLock()
		defer e.RUnlock()
	}

	out := make([]KV, 0, len(entries))
	for i, e := range entries {
		res, err := engineOf[i].Read(ctx, e.Key)
		if err != nil {
			return StatusError, nil, err
		}
		if res.Found {
			out = append(out, KV{Key: e.Key, Value: res.Value})
		}
	}
	if len(out) == 0 {
		return StatusNotFound, nil, nil
	}
	return StatusSuccess, out, nil
}
