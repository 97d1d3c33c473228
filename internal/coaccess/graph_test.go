package coaccess

import "testing"

func TestIncrementVertexCreatesAtOne(t *testing.T) {
	g := New()
	if w := g.IncrementVertex("a"); w != 1 {
		t.Fatalf("want 1, got %d", w)
	}
	if w := g.IncrementVertex("a"); w != 2 {
		t.Fatalf("want 2, got %d", w)
	}
	if g.VertexCount() != 1 {
		t.Fatalf("want 1 vertex, got %d", g.VertexCount())
	}
}

func TestIncrementEdgeUndirected(t *testing.T) {
	g := New()
	if w := g.IncrementEdge("a", "b"); w != 1 {
		t.Fatalf("want 1, got %d", w)
	}
	if w := g.IncrementEdge("b", "a"); w != 2 {
		t.Fatalf("want 2 (same edge), got %d", w)
	}
	if g.EdgeCount() != 1 {
		t.Fatalf("want 1 edge, got %d", g.EdgeCount())
	}
	if !g.HasVertex("a") || !g.HasVertex("b") {
		t.Fatal("endpoints should be created implicitly")
	}
}

func TestClear(t *testing.T) {
	g := New()
	g.IncrementVertex("a")
	g.IncrementEdge("a", "b")
	g.Clear()
	if g.VertexCount() != 0 || g.EdgeCount() != 0 {
		t.Fatal("clear should zero both counts")
	}
	if w := g.IncrementVertex("a"); w != 1 {
		t.Fatalf("accumulation after clear should restart from 0, got %d", w)
	}
}

func TestScanClusteringWeights(t *testing.T) {
	g := New()
	group1 := []string{"group1_key1", "group1_key2", "group1_key3"}
	group2 := []string{"group2_key1", "group2_key2"}

	update := func(keys []string) {
		for _, k := range keys {
			g.IncrementVertex(k)
		}
		for i := range keys {
			for j := i + 1; j < len(keys); j++ {
				g.IncrementEdge(keys[i], keys[j])
			}
		}
	}

	for i := 0; i < 5; i++ {
		update(group1)
	}
	for i := 0; i < 3; i++ {
		update(group2)
	}

	for i := range group1 {
		for j := i + 1; j < len(group1); j++ {
			if w := g.EdgeWeight(group1[i], group1[j]); w != 5 {
				t.Fatalf("group1 edge %s-%s want 5, got %d", group1[i], group1[j], w)
			}
		}
	}
	for i := range group2 {
		for j := i + 1; j < len(group2); j++ {
			if w := g.EdgeWeight(group2[i], group2[j]); w != 3 {
				t.Fatalf("group2 edge %s-%s want 3, got %d", group2[i], group2[j], w)
			}
		}
	}
	for _, a := range group1 {
		for _, b := range group2 {
			if w := g.EdgeWeight(a, b); w != 0 {
				t.Fatalf("cross-group edge %s-%s should be 0, got %d", a, b, w)
			}
		}
	}
}
