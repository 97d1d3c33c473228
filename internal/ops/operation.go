package ops

import "github.com/Voskan/partkv/engine"

// Kind tags which variant an Operation carries: the three data
// operations (read/write/scan) plus two control operations, Sync and
// Done, used for repartition fencing and worker shutdown.
type Kind int

const (
	KindRead Kind = iota
	KindWrite
	KindScan
	KindSync
	KindDone
)

// ReadOp carries a point-read request. Engine is nil for Soft variants,
// where the worker already owns the single shared engine; Hard variants
// set it to the specific per-shard handle so the worker needs no shard
// state of its own.
type ReadOp struct {
	Key    string
	Engine engine.Engine
	Future *Future[ReadResult]
}

// ReadResult is the value delivered through a ReadOp's Future.
type ReadResult struct {
	Value  []byte
	Status Status
}

// WriteOp carries a fire-and-forget write. It has no completion: ordering
// is preserved by the single-consumer shard queue, and internal engine
// failures are not surfaced to the caller.
type WriteOp struct {
	Key    string
	Value  []byte
	Engine engine.Engine
}

// ScanOp is shared by every shard participating in one fan-out scan. Keys,
// ShardOf (and, for Hard variants, EngineOf) are pre-computed by the
// facade under the routing table's read lock so that each worker knows
// exactly which Results slots it owns without any further coordination.
type ScanOp struct {
	Keys     []string        // ascending order, fixed for the life of the op
	ShardOf  []int           // ShardOf[i] is the shard owning Keys[i]
	EngineOf []engine.Engine // nil for Soft variants; else per-key engine handle
	Results  []engine.KV     // pre-sized; filled in-place by the owning worker
	errs     []error         // per-slot read errors, same indexing as Results

	Barrier *Barrier
	Future  *Future[ScanResult]
}

// ScanResult is the value delivered through a ScanOp's Future once the
// barrier's coordinator has finalized status.
type ScanResult struct {
	Status Status
	KVs    []engine.KV
}

// SyncOp fences in-flight operations across all N shard workers during a
// routing-table swap; its barrier has width N and whichever goroutine is
// chosen coordinator is responsible for any shared cleanup (here: none,
// since Go's GC reclaims the op once all workers drop their reference).
type SyncOp struct {
	Barrier *Barrier
}

// DoneOp drains and stops a worker; its barrier has width 2 (worker +
// submitter) so destruction can join deterministically.
type DoneOp struct {
	Barrier *Barrier
}

// Operation is the tagged variant message passed across a shard's ingress
// queue. Exactly one of the typed fields matching Kind is non-nil.
type Operation struct {
	Kind  Kind
	Read  *ReadOp
	Write *WriteOp
	Scan  *ScanOp
	Sync  *SyncOp
	Done  *DoneOp
}
