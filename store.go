// Package partkv implements a partitioned, adaptively repartitioning
// key-value store: point reads, blind writes, and ordered range scans over
// string keys and opaque byte-string values, spread across N shards whose
// assignment is periodically re-derived from an observed co-access pattern.
//
// Four variants are available (see Variant): Soft and Hard differ in
// whether shards share one storage engine or each own one; striped and
// threaded variants differ in whether shard concurrency is enforced with
// per-shard locks or per-shard single-consumer worker goroutines.
//
// © 2025 partkv authors. MIT License.
package partkv

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/Voskan/partkv/engine"
	"github.com/Voskan/partkv/internal/coaccess"
	"github.com/Voskan/partkv/internal/partition"
	"github.com/Voskan/partkv/internal/routing"
	"github.com/Voskan/partkv/internal/tracker"
	"github.com/Voskan/partkv/internal/worker"
)

var tracer = otel.Tracer("github.com/Voskan/partkv")

// KV is one (key, value) pair, e.g. one row of a Scan result.
type KV = engine.KV

// HashFunc is a stable keyed hash from key to a shard-selection value;
// callers supply one at construction.
type HashFunc func(string) uint64

// Store is the public facade over one of the four variants.
type Store struct {
	variant        Variant
	partitionCount int
	hashFunc       HashFunc
	paths          []string
	queueCapacity  int

	routingMap *routing.Table[int]           // partition map: key -> shard id
	storageMap *routing.Table[engine.Engine] // storage map: key -> engine handle (Hard only)

	sharedEngine engine.Engine                 // Soft / Soft-Threaded
	engines      atomic.Pointer[[]engine.Engine] // Hard / Hard-Threaded, len == partitionCount; swapped whole on repartition

	shardLocks []*sync.RWMutex // Soft striped only
	workers    []*worker.Worker // threaded variants only

	trk     *tracker.Tracker
	adapter *partition.Adapter

	logger  *zap.Logger
	metrics metricsSink

	opCount        atomic.Uint64
	tracking       atomic.Bool
	repartitioning atomic.Bool
	level          atomic.Uint64
	closed         atomic.Bool

	trackingDuration    time.Duration
	repartitionInterval time.Duration

	stopLoop  chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
}

// New constructs a Store of the given variant with partitionCount shards,
// routed by hashFunc, configured by opts.
func New(variant Variant, partitionCount int, hashFunc HashFunc, opts ...Option) (*Store, error) {
	if partitionCount < 1 {
		return nil, ErrInvalidPartitionCount
	}
	if hashFunc == nil {
		return nil, ErrInvalidHashFunc
	}
	cfg := applyOptions(opts)

	s := &Store{
		variant:             variant,
		partitionCount:      partitionCount,
		hashFunc:            hashFunc,
		paths:                cfg.paths,
		queueCapacity:        cfg.queueCapacity,
		routingMap:           routing.New[int](),
		logger:               cfg.logger,
		metrics:              newMetricsSink(cfg.registry),
		trackingDuration:     cfg.trackingDuration,
		repartitionInterval:  cfg.repartitionInterval,
		stopLoop:             make(chan struct{}),
		loopDone:             make(chan struct{}),
	}
	s.trk = tracker.New(s.logger)
	s.adapter = partition.NewAdapter(partition.GreedyBalanced{})

	if variant.hard() {
		s.storageMap = routing.New[engine.Engine]()
		engines, err := newEngineSet(s.paths, partitionCount, 0)
		if err != nil {
			return nil, err
		}
		s.engines.Store(&engines)
	} else {
		e, err := newEngine(s.paths, 0, 0)
		if err != nil {
			return nil, err
		}
		s.sharedEngine = e
	}

	if variant.threaded() {
		s.workers = make([]*worker.Worker, partitionCount)
		for i := range s.workers {
			s.workers[i] = worker.New(s.sharedEngine, i, s.queueCapacity)
		}
	} else if variant == VariantSoft {
		s.shardLocks = make([]*sync.RWMutex, partitionCount)
		for i := range s.shardLocks {
			s.shardLocks[i] = &sync.RWMutex{}
		}
	}

	if partitionCount > 1 && s.trackingDuration > 0 && s.repartitionInterval > 0 {
		go s.repartitionLoop()
	} else {
		close(s.loopDone)
	}

	return s, nil
}

// shardFor returns the shard id for key, consulting the partition map and
// hash-assigning (get-or-insert) on first touch.
func (s *Store) shardFor(key string) int {
	assigned := int(s.hashFunc(key) % uint64(s.partitionCount))
	id, _ := s.routingMap.GetOrInsert(key, assigned)
	return id
}

// engineAt returns the current per-shard engine at id. Hard variants swap
// the whole engine slice atomically during repartition, so a reader never
// observes a torn slice header.
func (s *Store) engineAt(id int) engine.Engine {
	return (*s.engines.Load())[id]
}

func (s *Store) engineSnapshot() []engine.Engine {
	return *s.engines.Load()
}

// EnableTracking turns access-pattern tracking on or off.
func (s *Store) EnableTracking(on bool) { s.tracking.Store(on) }

// IsTracking reports whether tracking is currently enabled.
func (s *Store) IsTracking() bool { return s.tracking.Load() }

// IsRepartitioning reports whether a repartition round is in progress.
func (s *Store) IsRepartitioning() bool { return s.repartitioning.Load() }

// Graph returns the tracker's co-access graph, for diagnostics.
func (s *Store) Graph() *coaccess.Graph { return s.trk.Graph() }

// OperationCount returns the total number of read/write/scan operations
// executed so far.
func (s *Store) OperationCount() uint64 { return s.opCount.Load() }

func (s *Store) trackOne(key string) {
	if s.tracking.Load() {
		s.trk.Update(key)
		s.metrics.setTrackerQueueDepth(s.trk.QueueDepth())
	}
}

func (s *Store) trackMany(keys []string) {
	if s.tracking.Load() && len(keys) > 0 {
		s.trk.MultiUpdate(keys)
		s.metrics.setTrackerQueueDepth(s.trk.QueueDepth())
	}
}

// Read looks up key, returning its value and status.
func (s *Store) Read(ctx context.Context, key string) (Status, []byte, error) {
	if s.closed.Load() {
		return StatusError, nil, ErrClosed
	}
	s.opCount.Add(1)
	var status Status
	var value []byte
	var err error
	switch s.variant {
	case VariantSoft:
		status, value, err = s.readSoft(ctx, key)
	case VariantHard:
		status, value, err = s.readHard(ctx, key)
	case VariantSoftThreaded:
		status, value, err = s.readSoftThreaded(ctx, key)
	case VariantHardThreaded:
		status, value, err = s.readHardThreaded(ctx, key)
	default:
		return StatusError, nil, fmt.Errorf("partkv: unknown variant %v", s.variant)
	}
	s.metrics.incRead(status)
	s.trackOne(key)
	return status, value, err
}

// Write stores value at key. Threaded variants are fire-and-forget: the
// write is enqueued on the shard's worker and the engine's own failure is
// not surfaced. Striped variants write synchronously and return the
// engine's error with StatusError.
func (s *Store) Write(ctx context.Context, key string, value []byte) (Status, error) {
	if s.closed.Load() {
		return StatusError, ErrClosed
	}
	s.opCount.Add(1)
	var err error
	switch s.variant {
	case VariantSoft:
		err = s.writeSoft(ctx, key, value)
	case VariantHard:
		err = s.writeHard(ctx, key, value)
	case VariantSoftThreaded:
		err = s.writeSoftThreaded(ctx, key, value)
	case VariantHardThreaded:
		err = s.writeHardThreaded(ctx, key, value)
	default:
		return StatusError, fmt.Errorf("partkv: unknown variant %v", s.variant)
	}
	s.metrics.incWrite()
	s.trackOne(key)
	if err != nil {
		return StatusError, err
	}
	return StatusSuccess, nil
}

// Scan returns the limit smallest keys >= prefix, paired with their
// values, in ascending key order.
func (s *Store) Scan(ctx context.Context, prefix string, limit int) (Status, []KV, error) {
	if s.closed.Load() {
		return StatusError, nil, ErrClosed
	}
	s.opCount.Add(1)
	var status Status
	var kvs []KV
	var err error
	switch s.variant {
	case VariantSoft:
		status, kvs, err = s.scanSoft(ctx, prefix, limit)
	case VariantHard:
		status, kvs, err = s.scanHard(ctx, prefix, limit)
	case VariantSoftThreaded:
		status, kvs, err = s.scanSoftThreaded(ctx, prefix, limit)
	case VariantHardThreaded:
		status, kvs, err = s.scanHardThreaded(ctx, prefix, limit)
	default:
		return StatusError, nil, fmt.Errorf("partkv: unknown variant %v", s.variant)
	}
	s.metrics.incScan(status)
	return status, kvs, err
}

// Close stops the repartition loop and any worker goroutines, and closes
// the shared engine (Soft variants) or the current level's per-shard
// engines (Hard variants). Engines of earlier levels, left in place by a
// Hard repartition, are not closed.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.stopLoop)
		<-s.loopDone
		s.trk.Close()

		ctx := context.Background()
		for _, w := range s.workers {
			if w != nil {
				_ = w.Stop(ctx)
			}
		}
		if s.sharedEngine != nil {
			if cerr := s.sharedEngine.Close(); cerr != nil {
				err = cerr
			}
		}
		if p := s.engines.Load(); p != nil {
			for _, e := range *p {
				if cerr := e.Close(); cerr != nil {
					err = cerr
				}
			}
		}
	})
	return err
}
