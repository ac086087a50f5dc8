package bayes

import (
	"fmt"
	"math"
	"slices"
)

// Cardinalities resolves a variable name to its number of outcomes.
type Cardinalities interface {
	Cardinality(name string) int
}

// Assignment maps a variable name to the zero-based index of one of its
// outcomes.
type Assignment map[string]int

// Factor is a dense table over an ordered scope. Values are row-major
// with the last scope variable varying fastest. Operations return new
// factors and never share storage with their receiver.
type Factor struct {
	scope  []string
	values []float64
}

// NewFactor copies scope and values and checks that the value count
// matches the product of the scope cardinalities.
func NewFactor(scope []string, values []float64, card Cardinalities) (*Factor, error) {
	size := 1
	seen := make(map[string]struct{}, len(scope))
	for _, v := range scope {
		if _, dup := seen[v]; dup {
			return nil, invariantf("variable %q appears twice in factor scope", v)
		}
		seen[v] = struct{}{}
		c := card.Cardinality(v)
		if c <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, v)
		}
		size *= c
	}
	if len(values) != size {
		return nil, invariantf("factor over %v has %d values, want %d", scope, len(values), size)
	}
	return &Factor{
		scope:  slices.Clone(scope),
		values: slices.Clone(values),
	}, nil
}

func (f *Factor) Scope() []string { return slices.Clone(f.scope) }

func (f *Factor) Values() []float64 { return slices.Clone(f.values) }

func (f *Factor) Len() int { return len(f.values) }

func (f *Factor) Contains(variable string) bool {
	return slices.Contains(f.scope, variable)
}

func (f *Factor) Sum() float64 {
	total := 0.0
	for _, v := range f.values {
		total += v
	}
	return total
}

// Stride is 1 for the last scope variable and otherwise the product of
// the cardinalities of every variable listed after it. ok is false when
// variable is not in scope.
func (f *Factor) Stride(variable string, card Cardinalities) (stride int, ok bool) {
	pos := slices.Index(f.scope, variable)
	if pos < 0 {
		return 0, false
	}
	return f.strides(card)[pos], true
}

// strides is recomputed from the current scope on every call.
func (f *Factor) strides(card Cardinalities) []int {
	out := make([]int, len(f.scope))
	stride := 1
	for i := len(f.scope) - 1; i >= 0; i-- {
		out[i] = stride
		stride *= card.Cardinality(f.scope[i])
	}
	return out
}

// IndexOf returns the flat index of a, which must hold a coordinate for
// every scope variable. Extra entries are ignored.
func (f *Factor) IndexOf(a Assignment, card Cardinalities) (int, error) {
	return indexOf(f.scope, f.strides(card), a)
}

func indexOf(scope []string, strides []int, a Assignment) (int, error) {
	idx := 0
	for i, v := range scope {
		coord, ok := a[v]
		if !ok {
			return 0, invariantf("assignment has no coordinate for %q", v)
		}
		idx += strides[i] * coord
	}
	return idx, nil
}

// AssignmentAt decodes a flat index into one coordinate per scope
// variable.
func (f *Factor) AssignmentAt(index int, card Cardinalities) Assignment {
	a := make(Assignment, len(f.scope))
	decode(f.scope, f.strides(card), index, a)
	return a
}

func decode(scope []string, strides []int, index int, into Assignment) {
	rest := index
	for i, v := range scope {
		into[v] = rest / strides[i]
		rest %= strides[i]
	}
}

// Assign restricts the factor to the slice where variable takes the
// outcome at valueIndex and drops variable from the scope.
func (f *Factor) Assign(variable string, valueIndex int, card Cardinalities) (*Factor, error) {
	stride, ok := f.Stride(variable, card)
	if !ok {
		return nil, invariantf("assign: %q not in factor scope %v", variable, f.scope)
	}
	count := card.Cardinality(variable)
	if valueIndex < 0 || valueIndex >= count {
		return nil, fmt.Errorf("%w: index %d for %q", ErrUnknownOutcome, valueIndex, variable)
	}

	values := make([]float64, 0, len(f.values)/count)
	for i := 0; ; i++ {
		start := stride * (count*i + valueIndex)
		if start >= len(f.values) {
			break
		}
		values = append(values, f.values[start:start+stride]...)
	}

	scope := make([]string, 0, len(f.scope)-1)
	for _, v := range f.scope {
		if v != variable {
			scope = append(scope, v)
		}
	}
	return &Factor{scope: scope, values: values}, nil
}

// Join multiplies two factors pointwise over the union of their scopes.
// The union keeps f's scope order and appends other's variables that f
// does not have, in other's order.
func (f *Factor) Join(other *Factor, card Cardinalities) *Factor {
	scope := slices.Clone(f.scope)
	for _, v := range other.scope {
		if !slices.Contains(scope, v) {
			scope = append(scope, v)
		}
	}

	size := 1
	for _, v := range scope {
		size *= card.Cardinality(v)
	}

	out := &Factor{scope: scope, values: make([]float64, size)}
	outStrides := out.strides(card)
	leftStrides := f.strides(card)
	rightStrides := other.strides(card)

	a := make(Assignment, len(scope))
	for i := range out.values {
		decode(scope, outStrides, i, a)
		// every coordinate is present, so the lookups cannot fail
		li, _ := indexOf(f.scope, leftStrides, a)
		ri, _ := indexOf(other.scope, rightStrides, a)
		out.values[i] = f.values[li] * other.values[ri]
	}
	return out
}

// SumOut marginalizes variable away.
func (f *Factor) SumOut(variable string, card Cardinalities) (*Factor, error) {
	if !f.Contains(variable) {
		return nil, invariantf("sum out: %q not in factor scope %v", variable, f.scope)
	}
	count := card.Cardinality(variable)

	scope := make([]string, 0, len(f.scope)-1)
	for _, v := range f.scope {
		if v != variable {
			scope = append(scope, v)
		}
	}

	out := &Factor{scope: scope, values: make([]float64, len(f.values)/count)}
	outStrides := out.strides(card)
	srcStrides := f.strides(card)

	a := make(Assignment, len(f.scope))
	for i := range out.values {
		decode(scope, outStrides, i, a)
		sum := 0.0
		for j := 0; j < count; j++ {
			a[variable] = j
			idx, _ := indexOf(f.scope, srcStrides, a)
			sum += f.values[idx]
		}
		out.values[i] = sum
	}
	return out, nil
}

// Normalize scales the values to sum to 1. A total of exactly zero
// yields ErrZeroEvidence.
func (f *Factor) Normalize() (*Factor, error) {
	total := f.Sum()
	if total == 0 {
		return nil, ErrZeroEvidence
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, invariantf("factor mass is %v", total)
	}
	values := make([]float64, len(f.values))
	for i, v := range f.values {
		values[i] = v / total
	}
	return &Factor{scope: slices.Clone(f.scope), values: values}, nil
}

func (f *Factor) String() string {
	return fmt.Sprintf("Factor%v%v", f.scope, f.values)
}
