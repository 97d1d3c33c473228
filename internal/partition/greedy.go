package partition

import (
	"container/heap"
	"context"
)

// GreedyBalanced is the default Partitioner shipped with this module
// (see DESIGN.md for why a from-scratch balanced heuristic is used
// instead of an external METIS-style binding). It is deterministic:
// given the same CSR it always returns the same assignment.
//
// Algorithm: process vertices in descending weight order; for each
// vertex, assign it to whichever part already contains the heaviest total
// weight of its already-assigned neighbors (maximizing intra-part edge
// weight, i.e. minimizing cut), breaking ties by picking the least-loaded
// part (balancing vertex weight across parts). Balance enters only as that
// tie-break: no part's weight is capped, so a connected group of vertices
// can all be assigned to one part.
type GreedyBalanced struct{}

var _ Partitioner = GreedyBalanced{}

type vertexLoad struct {
	idx    int
	weight int64
}

type byWeightDesc []vertexLoad

func (s byWeightDesc) Len() int { return len(s) }
func (s byWeightDesc) Less(i, j int) bool {
	if s[i].weight != s[j].weight {
		return s[i].weight > s[j].weight
	}
	return s[i].idx < s[j].idx
}
func (s byWeightDesc) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// Partition implements Partitioner.
func (GreedyBalanced) Partition(ctx context.Context, csr *CSR, k int) ([]int, error) {
	n := csr.NumVertices()
	part := make([]int, n)
	for i := range part {
		part[i] = -1
	}

	order := make(byWeightDesc, n)
	for i := 0; i < n; i++ {
		order[i] = vertexLoad{idx: i, weight: csr.Vwgt[i]}
	}
	heap.Init(&maxHeap{&order})

	partWeight := make([]int64, k)
	// neighborAffinity[p] accumulates edge weight toward part p for the
	// vertex currently being placed.
	neighborAffinity := make([]int64, k)

	h := &maxHeap{&order}
	for h.Len() > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		v := heap.Pop(h).(vertexLoad)
		i := v.idx

		for p := range neighborAffinity {
			neighborAffinity[p] = 0
		}
		for e := csr.Xadj[i]; e < csr.Xadj[i+1]; e++ {
			nb := csr.Adjncy[e]
			if part[nb] >= 0 {
				neighborAffinity[part[nb]] += csr.Adjwgt[e]
			}
		}

		best := 0
		for p := 1; p < k; p++ {
			if better(neighborAffinity, partWeight, p, best) {
				best = p
			}
		}
		part[i] = best
		partWeight[best] += v.weight
	}
	return part, nil
}

// better reports whether candidate part p is preferable to the current
// best: higher neighbor affinity wins; ties go to the lighter part.
func better(affinity, load []int64, p, best int) bool {
	if affinity[p] != affinity[best] {
		return affinity[p] > affinity[best]
	}
	return load[p] < load[best]
}

// maxHeap adapts byWeightDesc (already descending) to container/heap so
// Pop always yields the heaviest remaining vertex.
type maxHeap struct{ s *byWeightDesc }

func (h maxHeap) Len() int            { return h.s.Len() }
func (h maxHeap) Less(i, j int) bool  { return h.s.Less(i, j) }
func (h maxHeap) Swap(i, j int)       { h.s.Swap(i, j) }
func (h *maxHeap) Push(x any) { *h.s = append(*h.s, x.(vertexLoad)) }
func (h *maxHeap) Pop() any {
	old := *h.s
	n := len(old)
	v := old[n-1]
	*h.s = old[:n-1]
	return v
}
