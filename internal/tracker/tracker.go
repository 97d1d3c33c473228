// Package tracker implements the access-pattern tracker: a bounded
// ingress queue of key-batches folded by a single consumer goroutine
// into a coaccess.Graph, plus the two-step prepare/commit handshake a
// repartition round drives against that graph.
//
// © 2025 partkv authors. MIT License.
package tracker

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/Voskan/partkv/internal/coaccess"
	"github.com/Voskan/partkv/internal/partition"
)

// DefaultQueueCapacity is the ingress queue depth used by New.
const DefaultQueueCapacity = 1_000_000

var tracer = otel.Tracer("github.com/Voskan/partkv/internal/tracker")

// Tracker folds reported key accesses into a co-access Graph and drives
// graph-partitioner rounds against it.
type Tracker struct {
	queue  chan []string
	graph  *coaccess.Graph
	log    *zap.Logger
	done   chan struct{}
	closed chan struct{}
}

// New starts the tracker's background consumer goroutine.
func New(log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	t := &Tracker{
		queue:  make(chan []string, DefaultQueueCapacity),
		graph:  coaccess.New(),
		log:    log,
		done:   make(chan struct{}),
		closed: make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *Tracker) loop() {
	defer close(t.closed)
	for {
		select {
		case keys := <-t.queue:
			t.fold(keys)
		case <-t.done:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case keys := <-t.queue:
					t.fold(keys)
				default:
					return
				}
			}
		}
	}
}

func (t *Tracker) fold(keys []string) {
	if len(keys) == 0 {
		return
	}
	for _, k := range keys {
		t.graph.IncrementVertex(k)
	}
	for i := 0; i < len(keys); i++ {
		for j := i + 1; j < len(keys); j++ {
			t.graph.IncrementEdge(keys[i], keys[j])
		}
	}
}

// Update records a single key access.
func (t *Tracker) Update(key string) {
	t.queue <- []string{key}
}

// MultiUpdate records a batch of co-accessed keys (e.g. a scan's touched
// set), incrementing an edge between every pair.
func (t *Tracker) MultiUpdate(keys []string) {
	if len(keys) == 0 {
		return
	}
	cp := make([]string, len(keys))
	copy(cp, keys)
	t.queue <- cp
}

// ClearGraph discards all tracked access patterns.
func (t *Tracker) ClearGraph() {
	for {
		select {
		case <-t.queue:
		default:
			t.graph.Clear()
			return
		}
	}
}

// Ready reports whether the graph has accumulated enough signal to be
// worth partitioning.
func (t *Tracker) Ready() bool {
	return t.graph.VertexCount() > 1
}

// Graph returns the tracked co-access graph.
func (t *Tracker) Graph() *coaccess.Graph { return t.graph }

// QueueDepth reports how many key-batches are currently buffered in the
// ingress queue, waiting to be folded into the graph.
func (t *Tracker) QueueDepth() int { return len(t.queue) }

// PrepareRound drains the ingress queue, waits briefly for any in-flight
// fold to settle, then runs the adapter's partitioner over the current
// graph. It returns the resulting key->partition assignment, or
// (nil, false) if the graph was not Ready or the partitioner failed; the
// caller is expected to keep the old partition map in that case.
func (t *Tracker) PrepareRound(ctx context.Context, adapter *partition.Adapter, k int) (map[string]int, bool) {
	ctx, span := tracer.Start(ctx, "tracker.prepare_round")
	defer span.End()

	for {
		select {
		case keys := <-t.queue:
			t.fold(keys)
		default:
			goto drained
		}
	}
drained:
	time.Sleep(10 * time.Millisecond)

	if !t.Ready() {
		return nil, false
	}
	assignment, err := adapter.Run(ctx, t.graph, k)
	if err != nil {
		t.log.Warn("partition round failed, keeping prior assignment", zap.Error(err))
		return nil, false
	}
	return assignment, true
}

// CommitRound clears the graph after the caller has installed the new
// partition map. The ingress queue is deliberately left alone: the next
// round may still fold in keys tracked during this one.
func (t *Tracker) CommitRound() {
	t.graph.Clear()
}

// Close stops the consumer goroutine, draining any remaining queued
// batches first.
func (t *Tracker) Close() {
	close(t.done)
	<-t.closed
}
