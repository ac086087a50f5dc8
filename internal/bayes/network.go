package bayes

import (
	"fmt"
	"math"
)

// DefaultTableTolerance bounds how far a per-parent-configuration block
// of a probability table may sum away from 1.
const DefaultTableTolerance = 1e-6

// Variable is one discrete node of a network. Table is laid out with
// the parents in Parents order followed by the variable itself, the
// variable's own outcomes varying fastest.
type Variable struct {
	Name     string
	Outcomes []string
	Index    int
	Parents  []string
	Table    []float64
}

func (v *Variable) Cardinality() int { return len(v.Outcomes) }

// OutcomeIndex returns the position of label in Outcomes, or -1.
func (v *Variable) OutcomeIndex(label string) int {
	for i, o := range v.Outcomes {
		if o == label {
			return i
		}
	}
	return -1
}

// Network is an immutable Bayesian network: variables addressed by name
// and by index, and the parent -> child graph over those indices.
type Network struct {
	vars   []*Variable
	byName map[string]*Variable
	graph  *Graph
}

type networkOptions struct {
	tolerance float64
}

type NetworkOption func(*networkOptions)

func WithTableTolerance(tol float64) NetworkOption {
	return func(o *networkOptions) {
		if tol > 0 {
			o.tolerance = tol
		}
	}
}

// NewNetwork copies vars, assigns indices by slice position, builds the
// graph and validates the structure and every probability table.
func NewNetwork(vars []Variable, opts ...NetworkOption) (*Network, error) {
	o := networkOptions{tolerance: DefaultTableTolerance}
	for _, opt := range opts {
		opt(&o)
	}

	if len(vars) == 0 {
		return nil, fmt.Errorf("%w: no variables", ErrInvalidNetwork)
	}

	n := &Network{
		vars:   make([]*Variable, len(vars)),
		byName: make(map[string]*Variable, len(vars)),
		graph:  NewGraph(len(vars)),
	}

	for i, src := range vars {
		if src.Name == "" {
			return nil, fmt.Errorf("%w: variable at position %d has no name", ErrInvalidNetwork, i)
		}
		if _, dup := n.byName[src.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate variable %q", ErrInvalidNetwork, src.Name)
		}
		if len(src.Outcomes) < 2 {
			return nil, fmt.Errorf("%w: variable %q needs at least 2 outcomes, got %d", ErrInvalidNetwork, src.Name, len(src.Outcomes))
		}
		seen := make(map[string]struct{}, len(src.Outcomes))
		for _, out := range src.Outcomes {
			if out == "" {
				return nil, fmt.Errorf("%w: variable %q has an empty outcome", ErrInvalidNetwork, src.Name)
			}
			if _, dup := seen[out]; dup {
				return nil, fmt.Errorf("%w: variable %q repeats outcome %q", ErrInvalidNetwork, src.Name, out)
			}
			seen[out] = struct{}{}
		}

		v := &Variable{
			Name:     src.Name,
			Outcomes: append([]string(nil), src.Outcomes...),
			Index:    i,
			Parents:  append([]string(nil), src.Parents...),
			Table:    append([]float64(nil), src.Table...),
		}
		n.vars[i] = v
		n.byName[v.Name] = v
	}

	for _, v := range n.vars {
		seen := make(map[string]struct{}, len(v.Parents))
		want := v.Cardinality()
		for _, p := range v.Parents {
			parent, ok := n.byName[p]
			if !ok {
				return nil, fmt.Errorf("%w: variable %q references unknown parent %q", ErrInvalidNetwork, v.Name, p)
			}
			if p == v.Name {
				return nil, fmt.Errorf("%w: variable %q lists itself as parent", ErrInvalidNetwork, v.Name)
			}
			if _, dup := seen[p]; dup {
				return nil, fmt.Errorf("%w: variable %q lists parent %q twice", ErrInvalidNetwork, v.Name, p)
			}
			seen[p] = struct{}{}
			n.graph.AddEdge(parent.Index, v.Index)
			want *= parent.Cardinality()
		}
		if len(v.Table) != want {
			return nil, fmt.Errorf("%w: variable %q table has %d entries, want %d", ErrInvalidNetwork, v.Name, len(v.Table), want)
		}
	}

	if n.graph.HasCycle() {
		return nil, ErrCyclicGraph
	}

	var invalid []string
	for _, v := range n.vars {
		if !v.validTable(o.tolerance) {
			invalid = append(invalid, v.Name)
		}
	}
	if len(invalid) > 0 {
		return nil, &TableError{Variables: invalid}
	}

	return n, nil
}

// validTable checks that every entry lies in [0,1] and each block of own
// outcomes sums to 1 within tol.
func (v *Variable) validTable(tol float64) bool {
	k := v.Cardinality()
	for i := 0; i+k <= len(v.Table); i += k {
		sum := 0.0
		for _, p := range v.Table[i : i+k] {
			if math.IsNaN(p) || p < 0 || p > 1 {
				return false
			}
			sum += p
		}
		if math.Abs(sum-1) > tol {
			return false
		}
	}
	return true
}

func (n *Network) Len() int { return len(n.vars) }

// Graph returns a copy of the parent -> child graph.
func (n *Network) Graph() *Graph { return n.graph.Clone() }

// Variable returns a copy of the named variable. Changing it does not
// affect the network.
func (n *Network) Variable(name string) (*Variable, bool) {
	v, ok := n.byName[name]
	if !ok {
		return nil, false
	}
	return v.clone(), true
}

func (n *Network) VariableAt(index int) *Variable {
	return n.vars[index].clone()
}

// Variables returns copies of the variables in index order.
func (n *Network) Variables() []*Variable {
	out := make([]*Variable, len(n.vars))
	for i, v := range n.vars {
		out[i] = v.clone()
	}
	return out
}

func (v *Variable) clone() *Variable {
	c := *v
	c.Outcomes = append([]string(nil), v.Outcomes...)
	c.Parents = append([]string(nil), v.Parents...)
	c.Table = append([]float64(nil), v.Table...)
	return &c
}

func (n *Network) Names() []string {
	out := make([]string, len(n.vars))
	for i, v := range n.vars {
		out[i] = v.Name
	}
	return out
}

// Cardinality implements Cardinalities. Unknown names yield 0.
func (n *Network) Cardinality(name string) int {
	v, ok := n.byName[name]
	if !ok {
		return 0
	}
	return v.Cardinality()
}
