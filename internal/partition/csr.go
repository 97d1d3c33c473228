// Package partition wraps an external k-way graph partitioner behind a
// small adapter: it converts a coaccess.Graph into CSR form (the layout
// METIS-style partitioners expect) — dense vertex enumeration with
// xadj/adjncy/adjwgt/vwgt arrays and neighbors sorted by index for
// determinism — calls out to a Partitioner, and exposes the resulting
// vertex->part assignment keyed back by the original string keys.
//
// © 2025 partkv authors. MIT License.
package partition

import (
	"errors"
	"sort"

	"github.com/Voskan/partkv/internal/coaccess"
)

// Sentinel errors for the three ways a partition round can fail.
var (
	ErrGraphEmpty      = errors.New("partition: graph has no vertices")
	ErrTooFewVertices  = errors.New("partition: k exceeds vertex count")
	ErrPartitionerFail = errors.New("partition: external partitioner failed")
)

// CSR is the compressed-sparse-row adjacency representation handed to the
// external partitioner, plus the index<->key mapping needed to translate
// its result back into key space.
type CSR struct {
	// Xadj has length n+1; Adjncy[Xadj[i]:Xadj[i+1]] lists i's neighbors
	// in ascending index order, with parallel edge weights in Adjwgt.
	Xadj   []int
	Adjncy []int
	Adjwgt []int64
	Vwgt   []int64

	IdxToKey []string
	KeyToIdx map[string]int
}

// BuildCSR enumerates the graph's vertices in a stable (sorted) order and
// emits the CSR arrays. Returns ErrGraphEmpty if the graph has no vertices.
func BuildCSR(g *coaccess.Graph) (*CSR, error) {
	vertices, edges := g.Snapshot()
	if len(vertices) == 0 {
		return nil, ErrGraphEmpty
	}

	keys := make([]string, 0, len(vertices))
	for k := range vertices {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	keyToIdx := make(map[string]int, len(keys))
	vwgt := make([]int64, len(keys))
	for i, k := range keys {
		keyToIdx[k] = i
		vwgt[i] = vertices[k]
	}

	// adjacency[i] accumulates (neighborIdx, weight) pairs for vertex i.
	type nbr struct {
		idx int
		w   int64
	}
	adjacency := make([][]nbr, len(keys))
	for pair, w := range edges {
		ui, uok := keyToIdx[pair[0]]
		vi, vok := keyToIdx[pair[1]]
		if !uok || !vok {
			continue
		}
		adjacency[ui] = append(adjacency[ui], nbr{vi, w})
		adjacency[vi] = append(adjacency[vi], nbr{ui, w})
	}

	xadj := make([]int, len(keys)+1)
	var adjncy []int
	var adjwgt []int64
	for i := range keys {
		sort.Slice(adjacency[i], func(a, b int) bool { return adjacency[i][a].idx < adjacency[i][b].idx })
		for _, n := range adjacency[i] {
			adjncy = append(adjncy, n.idx)
			adjwgt = append(adjwgt, n.w)
		}
		xadj[i+1] = len(adjncy)
	}

	return &CSR{
		Xadj:     xadj,
		Adjncy:   adjncy,
		Adjwgt:   adjwgt,
		Vwgt:     vwgt,
		IdxToKey: keys,
		KeyToIdx: keyToIdx,
	}, nil
}

// NumVertices is a convenience accessor.
func (c *CSR) NumVertices() int { return len(c.IdxToKey) }
