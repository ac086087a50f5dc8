package bayes

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Engine answers queries against a Network by variable elimination. It
// keeps no per-query state, so one Engine may serve concurrent queries.
type Engine struct {
	stepObserver StepObserver
	newQueryID   func() string
}

type EngineOption func(*Engine)

func WithStepObserver(observer StepObserver) EngineOption {
	return func(e *Engine) {
		e.stepObserver = observer
	}
}

func WithQueryIDGenerator(fn func() string) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.newQueryID = fn
		}
	}
}

func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{newQueryID: uuid.NewString}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run returns P(q.Variable=q.Outcome | q.Evidence).
func (e *Engine) Run(n *Network, q Query) (float64, error) {
	p, _, err := e.run(n, q, false)
	return p, err
}

// RunWithTrace is Run plus a record of pruning, ordering and every
// elimination step. The trace is returned on failure too, unless the
// network itself is nil.
func (e *Engine) RunWithTrace(n *Network, q Query) (float64, *EliminationTrace, error) {
	return e.run(n, q, true)
}

// Distribution returns the normalized posterior over every outcome of
// q.Variable, in outcome order. q.Outcome is ignored.
func (e *Engine) Distribution(n *Network, q Query) ([]float64, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: network is nil", ErrInvalidNetwork)
	}
	final, err := e.posterior(n, q, false, nil)
	if err != nil {
		return nil, err
	}
	return final.Values(), nil
}

func (e *Engine) run(n *Network, q Query, withTrace bool) (float64, *EliminationTrace, error) {
	if n == nil {
		return 0, nil, fmt.Errorf("%w: network is nil", ErrInvalidNetwork)
	}

	var trace *EliminationTrace
	if withTrace {
		trace = &EliminationTrace{
			QueryID:  e.newQueryID(),
			Query:    q.String(),
			Pruned:   []string{},
			Order:    []string{},
			Steps:    []EliminationStep{},
			Evidence: evidenceStrings(q.Evidence),
		}
	}

	final, err := e.posterior(n, q, true, trace)
	if err != nil {
		if trace != nil {
			trace.Terminated = terminationFor(err)
		}
		return 0, trace, err
	}

	qv := n.byName[q.Variable]
	p := final.values[qv.OutcomeIndex(q.Outcome)]
	if trace != nil {
		trace.FinalScope = final.Scope()
		trace.Posterior = final.Values()
		trace.Terminated = TerminatedNormalized
	}
	return p, trace, nil
}

// posterior runs the whole pipeline and returns the normalized factor
// over the query variable.
func (e *Engine) posterior(n *Network, q Query, requireOutcome bool, trace *EliminationTrace) (*Factor, error) {
	evidence, err := validateQuery(n, q, requireOutcome)
	if err != nil {
		return nil, err
	}

	nuisance := make(map[string]struct{}, n.Len())
	for _, name := range n.Names() {
		nuisance[name] = struct{}{}
	}
	delete(nuisance, q.Variable)
	protected := make(map[int]bool, len(evidence)+1)
	protected[n.byName[q.Variable].Index] = true
	for _, ev := range evidence {
		delete(nuisance, ev.variable.Name)
		protected[ev.variable.Index] = true
	}

	pruned := pruneLeaves(n, nuisance, protected)

	factors, err := initialFactors(n, pruned)
	if err != nil {
		return nil, err
	}

	order := eliminationOrder(n, nuisance, q.Order)
	if trace != nil {
		trace.Pruned = append(trace.Pruned, pruned...)
		trace.Order = append(trace.Order, order...)
	}

	for _, ev := range evidence {
		for i, f := range factors {
			if !f.Contains(ev.variable.Name) {
				continue
			}
			restricted, err := f.Assign(ev.variable.Name, ev.outcome, n)
			if err != nil {
				return nil, err
			}
			factors[i] = restricted
		}
	}

	for _, variable := range order {
		start := time.Now()

		var consumed, rest []*Factor
		for _, f := range factors {
			if f.Contains(variable) {
				consumed = append(consumed, f)
			} else {
				rest = append(rest, f)
			}
		}

		joined, err := joinAll(consumed, n)
		if err != nil {
			return nil, fmt.Errorf("eliminating %q: %w", variable, err)
		}
		summed, err := joined.SumOut(variable, n)
		if err != nil {
			return nil, err
		}
		factors = append(rest, summed)

		ev := newStepEvent(variable, time.Since(start), len(consumed), joined, summed)
		if e.stepObserver != nil {
			e.stepObserver.ObserveStep(ev)
		}
		if trace != nil {
			trace.Steps = append(trace.Steps, EliminationStep{
				Variable:       variable,
				DurationMicros: ev.Duration.Microseconds(),
				Joined:         ev.Joined,
				JoinedSize:     ev.JoinedSize,
				JoinedScope:    joined.Scope(),
				ResultScope:    summed.Scope(),
			})
		}
	}

	return finalPosterior(factors, q.Variable, n, trace)
}

// finalPosterior multiplies the factors left after elimination and
// normalizes the product, which must range over query alone.
func finalPosterior(factors []*Factor, query string, card Cardinalities, trace *EliminationTrace) (*Factor, error) {
	final, err := joinAll(factors, card)
	if err != nil {
		return nil, fmt.Errorf("final combination: %w", err)
	}
	if trace != nil {
		trace.FinalScope = final.Scope()
	}

	normalized, err := final.Normalize()
	if err != nil {
		return nil, err
	}
	if len(normalized.scope) != 1 || normalized.scope[0] != query {
		return nil, invariantf("final factor scope is %v, want [%s]", normalized.scope, query)
	}
	return normalized, nil
}

type resolvedEvidence struct {
	variable *Variable
	outcome  int
}

func validateQuery(n *Network, q Query, requireOutcome bool) ([]resolvedEvidence, error) {
	if q.Variable == "" {
		return nil, fmt.Errorf("%w: query variable is empty", ErrMalformedQuery)
	}
	qv, ok := n.byName[q.Variable]
	if !ok {
		return nil, fmt.Errorf("%w: query variable %q", ErrUnknownVariable, q.Variable)
	}
	if requireOutcome && qv.OutcomeIndex(q.Outcome) < 0 {
		return nil, fmt.Errorf("%w: %q is not an outcome of %q %v", ErrUnknownOutcome, q.Outcome, qv.Name, qv.Outcomes)
	}

	out := make([]resolvedEvidence, 0, len(q.Evidence))
	seen := make(map[string]struct{}, len(q.Evidence))
	for _, ev := range q.Evidence {
		if ev.Variable == "" || ev.Outcome == "" {
			return nil, fmt.Errorf("%w: evidence %q", ErrMalformedQuery, ev.String())
		}
		v, ok := n.byName[ev.Variable]
		if !ok {
			return nil, fmt.Errorf("%w: evidence variable %q", ErrUnknownVariable, ev.Variable)
		}
		if v.Name == qv.Name {
			return nil, fmt.Errorf("%w: %q", ErrEvidenceOnQuery, v.Name)
		}
		if _, dup := seen[v.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateEvidence, v.Name)
		}
		seen[v.Name] = struct{}{}
		idx := v.OutcomeIndex(ev.Outcome)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q is not an outcome of %q %v", ErrUnknownOutcome, ev.Outcome, v.Name, v.Outcomes)
		}
		out = append(out, resolvedEvidence{variable: v, outcome: idx})
	}

	listed := make(map[string]struct{}, len(q.Order))
	for _, name := range q.Order {
		if _, ok := n.byName[name]; !ok {
			return nil, fmt.Errorf("%w: unknown variable %q", ErrInvalidOrder, name)
		}
		if _, dup := listed[name]; dup {
			return nil, fmt.Errorf("%w: %q listed twice", ErrInvalidOrder, name)
		}
		listed[name] = struct{}{}
	}
	return out, nil
}

// pruneLeaves repeatedly removes nuisance variables that have no
// surviving out-edge. Protected indices (query and evidence) are never
// pruned. Pruned names are deleted from nuisance and returned in the
// order they were removed.
func pruneLeaves(n *Network, nuisance map[string]struct{}, protected map[int]bool) []string {
	g := n.graph.Clone()
	visited := make([]bool, g.Len())
	pruned := []string{}

	for len(nuisance) > 0 {
		var leaves []int
		for i := 0; i < g.Len(); i++ {
			if protected[i] || visited[i] || g.HasOutgoing(i) {
				continue
			}
			leaves = append(leaves, i)
			visited[i] = true
		}
		if len(leaves) == 0 {
			break
		}

		for _, leaf := range leaves {
			name := n.vars[leaf].Name
			if _, ok := nuisance[name]; !ok {
				continue
			}
			delete(nuisance, name)
			pruned = append(pruned, name)
			g.RemoveEdgesInto(leaf)
		}
	}
	return pruned
}

// initialFactors builds one factor per surviving variable, in index
// order, with scope parents followed by the variable itself.
func initialFactors(n *Network, pruned []string) ([]*Factor, error) {
	skip := make(map[string]struct{}, len(pruned))
	for _, name := range pruned {
		skip[name] = struct{}{}
	}

	factors := make([]*Factor, 0, n.Len()-len(pruned))
	for _, v := range n.vars {
		if _, ok := skip[v.Name]; ok {
			continue
		}
		scope := make([]string, 0, len(v.Parents)+1)
		scope = append(scope, v.Parents...)
		scope = append(scope, v.Name)
		f, err := NewFactor(scope, v.Table, n)
		if err != nil {
			return nil, fmt.Errorf("factor for %q: %w", v.Name, err)
		}
		factors = append(factors, f)
	}
	return factors, nil
}

// eliminationOrder picks the nuisance variables from explicit in the
// caller's order, or from the reverse topological order when explicit
// is nil, and appends any remaining nuisance variable in index order.
func eliminationOrder(n *Network, nuisance map[string]struct{}, explicit []string) []string {
	remaining := make(map[string]struct{}, len(nuisance))
	for name := range nuisance {
		remaining[name] = struct{}{}
	}

	order := make([]string, 0, len(nuisance))
	take := func(name string) {
		if _, ok := remaining[name]; ok {
			order = append(order, name)
			delete(remaining, name)
		}
	}

	if explicit != nil {
		for _, name := range explicit {
			take(name)
		}
	} else {
		topo := n.graph.TopologicalOrder()
		for i := len(topo) - 1; i >= 0; i-- {
			take(n.vars[topo[i]].Name)
		}
	}

	for _, v := range n.vars {
		take(v.Name)
	}
	return order
}

// joinAll folds factors left to right with Join.
func joinAll(factors []*Factor, card Cardinalities) (*Factor, error) {
	if len(factors) == 0 {
		return nil, invariantf("no factors to join")
	}
	joined := factors[0]
	for _, f := range factors[1:] {
		joined = joined.Join(f, card)
	}
	return joined, nil
}

func terminationFor(err error) string {
	switch {
	case errors.Is(err, ErrZeroEvidence):
		return TerminatedZeroEvidence
	case errors.Is(err, ErrInvariant):
		return TerminatedInvariant
	default:
		return TerminatedQueryError
	}
}

func evidenceStrings(evidence []Evidence) []string {
	if len(evidence) == 0 {
		return nil
	}
	out := make([]string, len(evidence))
	for i, ev := range evidence {
		out[i] = ev.String()
	}
	return out
}
