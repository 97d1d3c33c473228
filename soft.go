package partkv

// soft.go implements the Soft variant: one shared engine, N shard locks
// used purely for serialization (the engine itself holds all the data
// regardless of shard id).
//
// © 2025 partkv authors. MIT License.

import "context"

func (s *Store) readSoft(ctx context.Context, key string) (Status, []byte, error) {
	s.routingMap.RLock()
	id, ok := s.routingMap.GetLocked(key)
	s.routingMap.RUnlock()
	if !ok {
		return StatusNotFound, nil, nil
	}

	lock := s.shardLocks[id]
	lock.RLock()
	defer lock.RUnlock()

	res, err := s.sharedEngine.Read(ctx, key)
	if err != nil {
		return StatusError, nil, err
	}
	if !res.Found {
		return StatusNotFound, nil, nil
	}
	return StatusSuccess, res.Value, nil
}

func (s *Store) writeSoft(ctx context.Context, key string, value []byte) error {
	id := s.shardFor(key)

	lock := s.shardLocks[id]
	lock.Lock()
	defer lock.Unlock()

	return s.sharedEngine.Write(ctx, key, value)
}

func (s *Store) scanSoft(ctx context.Context, prefix string, limit int) (Status, []KV, error) {
	s.routingMap.RLock()
	entries := s.routingMap.LowerBoundLocked(prefix, limit)
	s.routingMap.RUnlock()

	if len(entries) == 0 {
		return StatusNotFound, nil, nil
	}

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	s.trackMany(keys)

	shardIDs := make(map[int]struct{}, len(entries))
	for _, e := range entries {
		shardIDs[e.Value] = struct{}{}
	}
	// Acquire shard locks in ascending shard-id order so concurrent scans
	// always take them in the same order, regardless of prefix.
	ids := make([]int, 0, len(shardIDs))
	for id := range shardIDs {
		ids = append(ids, id)
	}
	sortInts(ids)
	for _, id := range ids {
		s.shardLocks[id].RLock()
		defer s.shardLocks[id].RUnlock()
	}

	out := make([]KV, 0, len(entries))
	for _, e := range entries {
		res, err := s.sharedEngine.Read(ctx, e.Key)
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
