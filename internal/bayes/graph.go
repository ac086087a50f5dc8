package bayes

// Graph is a directed graph over variable indices stored as a dense
// adjacency matrix. Successors are always scanned in ascending index
// order.
type Graph struct {
	adj [][]bool
}

func NewGraph(n int) *Graph {
	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
	}
	return &Graph{adj: adj}
}

func (g *Graph) Len() int { return len(g.adj) }

// AddEdge records from -> to. Adding the same edge twice is a no-op.
func (g *Graph) AddEdge(from, to int) {
	g.adj[from][to] = true
}

func (g *Graph) HasEdge(from, to int) bool {
	return g.adj[from][to]
}

// HasOutgoing reports whether v has at least one surviving out-edge.
func (g *Graph) HasOutgoing(v int) bool {
	for _, ok := range g.adj[v] {
		if ok {
			return true
		}
	}
	return false
}

func (g *Graph) Children(v int) []int {
	var out []int
	for j, ok := range g.adj[v] {
		if ok {
			out = append(out, j)
		}
	}
	return out
}

func (g *Graph) Parents(v int) []int {
	var out []int
	for i := range g.adj {
		if g.adj[i][v] {
			out = append(out, i)
		}
	}
	return out
}

// RemoveEdgesInto deletes every edge ending at v.
func (g *Graph) RemoveEdgesInto(v int) {
	for i := range g.adj {
		g.adj[i][v] = false
	}
}

func (g *Graph) Clone() *Graph {
	c := NewGraph(len(g.adj))
	for i := range g.adj {
		copy(c.adj[i], g.adj[i])
	}
	return c
}

// HasCycle runs Kahn's algorithm and reports whether some vertex never
// reached in-degree zero.
func (g *Graph) HasCycle() bool {
	return len(g.kahn()) != len(g.adj)
}

// TopologicalOrder returns the Kahn removal order. Zero in-degree
// vertices are queued FIFO in the order they are discovered, scanning
// indices ascending. On a cyclic graph the result silently omits the
// vertices on or behind a cycle, so callers check HasCycle first.
func (g *Graph) TopologicalOrder() []int {
	return g.kahn()
}

func (g *Graph) kahn() []int {
	n := len(g.adj)
	in := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if g.adj[i][j] {
				in[j]++
			}
		}
	}

	queue := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if in[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := make([]int, 0, n)
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)
		for j := 0; j < n; j++ {
			if !g.adj[node][j] {
				continue
			}
			in[j]--
			if in[j] == 0 {
				queue = append(queue, j)
			}
		}
	}
	return order
}
