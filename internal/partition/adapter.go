package partition

import (
	"context"

	"github.com/Voskan/partkv/internal/coaccess"
)

// Partitioner is the external k-way graph partitioner collaborator:
// partition(graph, k) -> vertex->part. Implementations minimize a cut
// objective subject to vertex-weight balance across the k parts.
type Partitioner interface {
	Partition(ctx context.Context, csr *CSR, k int) ([]int, error)
}

// Adapter builds the CSR representation, invokes an external Partitioner,
// and returns the resulting key->part assignment. It never mutates its
// input graph; callers should keep the old routing table on any
// returned error.
type Adapter struct {
	partitioner Partitioner
}

// NewAdapter wires the adapter to a concrete Partitioner implementation.
func NewAdapter(p Partitioner) *Adapter {
	return &Adapter{partitioner: p}
}

// Run builds CSR from g and calls the wrapped partitioner for k parts,
// returning a key->part map. On failure it returns one of ErrGraphEmpty,
// ErrTooFewVertices, or a wrapped ErrPartitionerFail.
func (a *Adapter) Run(ctx context.Context, g *coaccess.Graph, k int) (map[string]int, error) {
	csr, err := BuildCSR(g)
	if err != nil {
		return nil, err
	}
	if k > csr.NumVertices() {
		return nil, ErrTooFewVertices
	}

	parts, err := a.partitioner.Partition(ctx, csr, k)
	if err != nil {
		return nil, wrapPartitionerErr(err)
	}
	if len(parts) != csr.NumVertices() {
		return nil, wrapPartitionerErr(errMismatchedResult)
	}

	out := make(map[string]int, len(parts))
	for i, p := range parts {
		out[csr.IdxToKey[i]] = p
	}
	return out, nil
}

var errMismatchedResult = &partitionerError{"partitioner returned a result of the wrong length"}

type partitionerError struct{ msg string }

func (e *partitionerError) Error() string { return e.msg }

func wrapPartitionerErr(cause error) error {
	return &wrappedErr{cause: cause}
}

type wrappedErr struct{ cause error }

func (w *wrappedErr) Error() string { return ErrPartitionerFail.Error() + ": " + w.cause.Error() }
func (w *wrappedErr) Unwrap() error { return ErrPartitionerFail }
