package partition

import (
	"context"
	"testing"

	"github.com/Voskan/partkv/internal/coaccess"
)

func TestBuildCSREmptyGraph(t *testing.T) {
	g := coaccess.New()
	if _, err := BuildCSR(g); err != ErrGraphEmpty {
		t.Fatalf("want ErrGraphEmpty, got %v", err)
	}
}

func TestBuildCSRSortedNeighbors(t *testing.T) {
	g := coaccess.New()
	g.IncrementEdge("b", "a")
	g.IncrementEdge("b", "c")
	g.IncrementVertex("a")

	csr, err := BuildCSR(g)
	if err != nil {
		t.Fatal(err)
	}
	if csr.NumVertices() != 3 {
		t.Fatalf("want 3 vertices, got %d", csr.NumVertices())
	}
	bi := csr.KeyToIdx["b"]
	neighbors := csr.Adjncy[csr.Xadj[bi]:csr.Xadj[bi+1]]
	for i := 1; i < len(neighbors); i++ {
		if neighbors[i-1] > neighbors[i] {
			t.Fatalf("neighbors not sorted ascending: %v", neighbors)
		}
	}
}

func TestAdapterTooFewVertices(t *testing.T) {
	g := coaccess.New()
	g.IncrementVertex("a")
	a := NewAdapter(GreedyBalanced{})
	if _, err := a.Run(context.Background(), g, 5); err != ErrTooFewVertices {
		t.Fatalf("want ErrTooFewVertices, got %v", err)
	}
}

func TestAdapterGreedyAssignsAllVertices(t *testing.T) {
	g := coaccess.New()
	keys := []string{"k1", "k2", "k3", "k4", "k5", "k6"}
	for _, k := range keys {
		g.IncrementVertex(k)
	}
	for i := 0; i < len(keys)-1; i++ {
		g.IncrementEdge(keys[i], keys[i+1])
	}

	a := NewAdapter(GreedyBalanced{})
	result, err := a.Run(context.Background(), g, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(result) != len(keys) {
		t.Fatalf("want %d assignments, got %d", len(keys), len(result))
	}
	for _, k := range keys {
		p, ok := result[k]
		if !ok {
			t.Fatalf("missing assignment for %s", k)
		}
		if p < 0 || p >= 2 {
			t.Fatalf("part %d out of range for %s", p, k)
		}
	}
}

type failingPartitioner struct{}

func (failingPartitioner) Partition(ctx context.Context, csr *CSR, k int) ([]int, error) {
	return nil, errMismatchedResult
}

func TestAdapterPropagatesPartitionerFailure(t *testing.T) {
	g := coaccess.New()
	g.IncrementVertex("a")
	g.IncrementVertex("b")
	a := NewAdapter(failingPartitioner{})
	_, err := a.Run(context.Background(), g, 2)
	if err == nil {
		t.Fatal("expected error")
	}
}
