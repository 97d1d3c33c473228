package ops

import "github.com/Voskan/partkv/engine"

// NewScanOp allocates a ScanOp with result slots pre-sized to len(keys)
// so every worker can write its slot in place without further allocation
// or coordination.
func NewScanOp(keys []string, shardOf []int, engineOf []engine.Engine, participants int) *ScanOp {
	return &ScanOp{
		Keys:     keys,
		ShardOf:  shardOf,
		EngineOf: engineOf,
		Results:  make([]engine.KV, len(keys)),
		errs:     make([]error, len(keys)),
		Barrier:  NewBarrier(participants),
		Future:   NewFuture[ScanResult](),
	}
}

// SetResult fills result slot i. It is safe to call concurrently from
// different workers as long as each worker only touches slots it owns
// (ShardOf[i] == that worker's shard), since distinct slice elements never
// alias in Go.
func (s *ScanOp) SetResult(i int, value []byte, found bool, err error) {
	if err != nil {
		s.errs[i] = err
		return
	}
	s.Results[i] = engine.KV{Key: s.Keys[i], Value: value}
	if !found {
		s.errs[i] = errNotFoundSlot
	}
}

var errNotFoundSlot = notFoundSlotErr{}

type notFoundSlotErr struct{}

func (notFoundSlotErr) Error() string { return "slot not found" }

// Finalize computes the aggregate status across all slots: Success
// unless at least one slot was NotFound or Error, in which case the last
// observed non-success status wins. Called once, by the barrier's
// coordinator.
func (s *ScanOp) Finalize() ScanResult {
	if len(s.Keys) == 0 {
		return ScanResult{Status: StatusNotFound}
	}
	status := StatusSuccess
	kvs := make([]engine.KV, 0, len(s.Keys))
	for i, err := range s.errs {
		switch {
		case err == nil:
			kvs = append(kvs, s.Results[i])
		case err == errNotFoundSlot:
			status = StatusNotFound
		default:
			status = StatusError
		}
	}
	if status == StatusSuccess && len(kvs) == 0 {
		status = StatusNotFound
	}
	return ScanResult{Status: status, KVs: kvs}
}
