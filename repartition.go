package partkv

// repartition.go implements the background repartition loop and the
// synchronous Repartition entry point: cycle sleep -> enable tracking ->
// sleep -> disable tracking -> repartition, gated by s.stopLoop so
// destruction wakes a sleeping loop immediately instead of waiting out
// the interval.
//
// © 2025 partkv authors. MIT License.

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Voskan/partkv/engine"
	"github.com/Voskan/partkv/internal/ops"
	"github.com/Voskan/partkv/internal/scan"
)

// sleepOrStop sleeps for d, or returns false early if the store is
// closing.
func (s *Store) sleepOrStop(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-s.stopLoop:
		return false
	}
}

func (s *Store) repartitionLoop() {
	defer close(s.loopDone)
	for {
		if !s.sleepOrStop(s.repartitionInterval) {
			return
		}
		s.EnableTracking(true)
		if !s.sleepOrStop(s.trackingDuration) {
			return
		}
		s.EnableTracking(false)
		if err := s.Repartition(context.Background()); err != nil {
			s.logger.Warn("repartition round failed", zap.Error(err))
		}
	}
}

// Repartition synchronously drains the tracker, requests a new key->shard
// assignment from the graph partitioner, and — if one was produced —
// swaps it in. It is a no-op (not an error) when the tracker did not have
// enough signal or the partitioner failed; the prior routing is kept.
func (s *Store) Repartition(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.repartitioning.Store(true)
	defer s.repartitioning.Store(false)

	ctx, span := tracer.Start(ctx, "partkv.repartition")
	defer span.End()

	assignment, ok := s.trk.PrepareRound(ctx, s.adapter, s.partitionCount)
	if !ok {
		return nil
	}

	if s.variant.hard() {
		s.swapHard(assignment)
	} else {
		s.swapSoft(assignment)
	}

	if s.variant.threaded() {
		s.fenceWorkers(ctx)
	}

	s.trk.CommitRound()
	s.metrics.incRepartition()
	s.logger.Info("repartition round complete", zap.Int("assignment_size", len(assignment)))
	return nil
}

// swapSoft installs the new partition map. Soft variants keep all data in
// one shared engine, so the swap only changes which shard lock/worker
// serializes a key — there is nothing to migrate.
func (s *Store) swapSoft(assignment map[string]int) {
	s.routingMap.Lock()
	for key, shard := range assignment {
		s.routingMap.PutLocked(key, shard)
	}
	s.routingMap.Unlock()
}

// swapHard installs the new partition map as a hint, locks every existing
// engine (ordered by pointer, to avoid deadlocking against a concurrent
// scan's own lock ordering), bumps the level, and allocates N fresh
// engines. Existing storage-map entries are left pointing at their old
// engine; they rehome lazily on the next write that finds their level
// stale (see DESIGN.md's "Hard-variant rehoming" note).
func (s *Store) swapHard(assignment map[string]int) {
	s.routingMap.Lock()
	for key, shard := range assignment {
		s.routingMap.PutLocked(key, shard)
	}
	s.routingMap.Unlock()

	old := s.engineSnapshot()
	for _, e := range orderedByPointer(old) {
		e.RLock()
	}
	newLevel := s.level.Add(1)
	fresh, err := newEngineSet(s.paths, s.partitionCount, newLevel)
	for _, e := range orderedByPointer(old) {
		e.RUnlock()
	}
	if err != nil {
		s.logger.Warn("repartition: failed to allocate fresh engines, keeping old level", zap.Error(err))
		s.level.Add(^uint64(0)) // revert the bump (subtract 1)
		return
	}
	s.engines.Store(&fresh)
}

func orderedByPointer(engines []engine.Engine) []engine.Engine {
	// Reuse the scan package's deterministic engine-pointer ordering so
	// both read-path and repartition-path lock acquisition agree on
	// ordering (no deadlock between a concurrent scan and a repartition).
	return scan.OrderEnginesByPointer(engines)
}

// fenceWorkers enqueues one Sync op across every worker so that every
// operation enqueued before this call has been fully processed, and any
// operation enqueued after sees the routing swap above.
func (s *Store) fenceWorkers(ctx context.Context) {
	barrier := ops.NewBarrier(len(s.workers))
	for _, w := range s.workers {
		_ = w.Enqueue(ctx, ops.Operation{Kind: ops.KindSync, Sync: &ops.SyncOp{Barrier: barrier}})
	}
}
