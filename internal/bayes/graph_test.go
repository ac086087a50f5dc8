package bayes

import (
	"slices"
	"testing"
)

func TestGraph_HasCycle_DAG(t *testing.T) {
	g := NewGraph(4)
	g.AddEdge(0, 1)
	g.AddEdge(0, 2)
	g.AddEdge(1, 3)
	g.AddEdge(2, 3)

	if g.HasCycle() {
		t.Fatalf("expected no cycle")
	}
}

func TestGraph_HasCycle_SingleBackEdge(t *testing.T) {
	g := NewGraph(4)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 3)
	g.AddEdge(3, 1)

	if !g.HasCycle() {
		t.Fatalf("expected cycle to be detected")
	}
}

func TestGraph_TopologicalOrder_RespectsEveryEdge(t *testing.T) {
	g := NewGraph(6)
	edges := [][2]int{{5, 2}, {5, 0}, {4, 0}, {4, 1}, {2, 3}, {3, 1}}
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}

	order := g.TopologicalOrder()
	if len(order) != 6 {
		t.Fatalf("expected permutation of 6 vertices, got %v", order)
	}
	pos := make(map[int]int, len(order))
	for i, v := range order {
		pos[v] = i
	}
	if len(pos) != 6 {
		t.Fatalf("expected distinct vertices, got %v", order)
	}
	for _, e := range edges {
		if pos[e[0]] >= pos[e[1]] {
			t.Fatalf("edge %d->%d violated by order %v", e[0], e[1], order)
		}
	}
}

func TestGraph_TopologicalOrder_FIFOTieBreak(t *testing.T) {
	g := NewGraph(4)
	g.AddEdge(3, 0)

	got := g.TopologicalOrder()
	want := []int{1, 2, 3, 0}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestGraph_TopologicalOrder_CyclicIsPartial(t *testing.T) {
	g := NewGraph(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)
	g.AddEdge(2, 1)

	got := g.TopologicalOrder()
	if !slices.Equal(got, []int{0}) {
		t.Fatalf("expected only the acyclic prefix, got %v", got)
	}
}

func TestGraph_AddEdge_Idempotent(t *testing.T) {
	g := NewGraph(2)
	g.AddEdge(0, 1)
	g.AddEdge(0, 1)

	if got := g.Parents(1); !slices.Equal(got, []int{0}) {
		t.Fatalf("expected single parent, got %v", got)
	}
	if got := g.Children(0); !slices.Equal(got, []int{1}) {
		t.Fatalf("expected single child, got %v", got)
	}
}

func TestGraph_CloneIsIndependent(t *testing.T) {
	g := NewGraph(3)
	g.AddEdge(0, 2)
	g.AddEdge(1, 2)

	c := g.Clone()
	c.RemoveEdgesInto(2)

	if c.HasOutgoing(0) || c.HasOutgoing(1) {
		t.Fatalf("expected clone edges into 2 to be removed")
	}
	if !g.HasEdge(0, 2) || !g.HasEdge(1, 2) {
		t.Fatalf("expected original graph untouched")
	}
}
