// Package worker implements the per-shard single-consumer operation
// processor: a bounded ingress queue plus a worker goroutine that
// dispatches each ops.Operation by kind.
//
// The queue is a buffered channel, but enqueue/dequeue are additionally
// gated by a pair of counting semaphores (golang.org/x/sync/semaphore)
// so "queue capacity" (free) and "item availability" (avail) are tracked
// as two distinct counters rather than collapsed into the channel's own
// backpressure.
//
// © 2025 partkv authors. MIT License.
package worker

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/Voskan/partkv/engine"
	"github.com/Voskan/partkv/internal/ops"
)

// DefaultQueueCapacity is the ingress queue depth used unless a caller
// overrides it.
const DefaultQueueCapacity = 1 << 16

// Worker is a single-consumer shard processor. Soft variants construct it
// with a non-nil shared engine; Hard variants pass nil and rely on every
// Operation carrying its own engine handle. ShardIdx is the index this
// worker owns in a fan-out ScanOp's ShardOf slice.
type Worker struct {
	shared   engine.Engine
	shardIdx int
	queue    chan ops.Operation
	free     *semaphore.Weighted
	avail    *semaphore.Weighted
	cap      int64
	stopped  chan struct{}
}

// New starts a worker goroutine for shardIdx, bound to shared (nil for
// Hard variants), with the given queue capacity.
func New(shared engine.Engine, shardIdx, capacity int) *Worker {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	w := &Worker{
		shared:   shared,
		shardIdx: shardIdx,
		queue:    make(chan ops.Operation, capacity),
		free:     semaphore.NewWeighted(int64(capacity)),
		avail:    semaphore.NewWeighted(int64(capacity)),
		cap:      int64(capacity),
		stopped:  make(chan struct{}),
	}
	// All capacity permits start "free"; avail starts fully acquired (no
	// items yet) so the first dequeue blocks until Enqueue releases one.
	_ = w.avail.Acquire(context.Background(), w.cap)
	go w.loop()
	return w
}

// Enqueue blocks until there is queue capacity, then submits op.
func (w *Worker) Enqueue(ctx context.Context, op ops.Operation) error {
	if err := w.free.Acquire(ctx, 1); err != nil {
		return err
	}
	w.queue <- op
	w.avail.Release(1)
	return nil
}

func (w *Worker) dequeue(ctx context.Context) (ops.Operation, error) {
	if err := w.avail.Acquire(ctx, 1); err != nil {
		return ops.Operation{}, err
	}
	op := <-w.queue
	w.free.Release(1)
	return op, nil
}

// Stop enqueues a DoneOp and blocks until the worker loop has drained and
// exited.
func (w *Worker) Stop(ctx context.Context) error {
	barrier := ops.NewBarrier(2)
	if err := w.Enqueue(ctx, ops.Operation{Kind: ops.KindDone, Done: &ops.DoneOp{Barrier: barrier}}); err != nil {
		return err
	}
	barrier.Arrive()
	<-w.stopped
	return nil
}

func (w *Worker) loop() {
	ctx := context.Background()
	for {
		op, err := w.dequeue(ctx)
		if err != nil {
			return
		}
		switch op.Kind {
		case ops.KindRead:
			w.handleRead(ctx, op.Read)
		case ops.KindWrite:
			w.handleWrite(ctx, op.Write)
		case ops.KindScan:
			w.handleScan(ctx, op.Scan)
		case ops.KindSync:
			op.Sync.Barrier.Arrive()
		case ops.KindDone:
			op.Done.Barrier.Arrive()
			close(w.stopped)
			return
		}
	}
}

func (w *Worker) engineFor(handle engine.Engine) engine.Engine {
	if w.shared != nil {
		return w.shared
	}
	return handle
}

func (w *Worker) handleRead(ctx context.Context, op *ops.ReadOp) {
	e := w.engineFor(op.Engine)
	res, err := e.Read(ctx, op.Key)
	status := ops.StatusSuccess
	switch {
	case err != nil:
		status = ops.StatusError
	case !res.Found:
		status = ops.StatusNotFound
	}
	op.Future.Notify(ops.ReadResult{Value: res.Value, Status: status})
}

func (w *Worker) handleWrite(ctx context.Context, op *ops.WriteOp) {
	e := w.engineFor(op.Engine)
	_ = e.Write(ctx, op.Key, op.Value)
}

// handleScan reads only the keys this worker's shard owns (ShardOf[i] ==
// w.shardIdx), leaving every other slot to its own worker, then arrives at
// the shared barrier. Whichever arrival is last (the coordinator)
// finalizes the op's Future.
func (w *Worker) handleScan(ctx context.Context, op *ops.ScanOp) {
	for i, owner := range op.ShardOf {
		if owner != w.shardIdx {
			continue
		}
		var e engine.Engine
		if w.shared != nil {
			e = w.shared
		} else {
			e = op.EngineOf[i]
		}
		res, err := e.Read(ctx, op.Keys[i])
		if err != nil {
			op.SetResult(i, nil, false, err)
			continue
		}
		op.SetResult(i, res.Value, res.Found, nil)
	}
	if op.Barrier.Arrive() {
		op.Future.Notify(op.Finalize())
	}
}
