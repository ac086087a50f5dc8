package bayes

import (
	"fmt"
	"strings"
)

type Evidence struct {
	Variable string `json:"variable"`
	Outcome  string `json:"outcome"`
}

func (e Evidence) String() string { return e.Variable + ":" + e.Outcome }

// Query asks for P(Variable=Outcome | Evidence). A nil Evidence means no
// evidence and a nil Order means the default reverse topological order.
type Query struct {
	Variable string
	Outcome  string
	Evidence []Evidence
	Order    []string
}

func (q Query) String() string {
	var b strings.Builder
	b.WriteString("P(")
	b.WriteString(q.Variable)
	if q.Outcome != "" {
		b.WriteString("=")
		b.WriteString(q.Outcome)
	}
	if len(q.Evidence) > 0 {
		b.WriteString(" | ")
		for i, e := range q.Evidence {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.Variable)
			b.WriteString("=")
			b.WriteString(e.Outcome)
		}
	}
	b.WriteString(")")
	return b.String()
}

// ParseQuery parses "Variable:Outcome".
func ParseQuery(raw string) (variable, outcome string, err error) {
	pair, err := parsePair(strings.TrimSpace(raw))
	if err != nil {
		return "", "", err
	}
	return pair.Variable, pair.Outcome, nil
}

// ParseEvidence parses whitespace separated "Variable:Outcome" pairs.
// Blank input yields nil.
func ParseEvidence(raw string) ([]Evidence, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]Evidence, 0, len(fields))
	for _, f := range fields {
		e, err := parsePair(f)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ParseOrder parses a comma separated list of variable names. Blank
// input yields nil.
func ParseOrder(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("%w: empty name in order %q", ErrInvalidOrder, raw)
		}
		out = append(out, part)
	}
	return out, nil
}

func parsePair(raw string) (Evidence, error) {
	kv := strings.Split(raw, ":")
	if len(kv) != 2 {
		return Evidence{}, fmt.Errorf("%w: %q (expected Variable:Outcome)", ErrMalformedQuery, raw)
	}
	variable := strings.TrimSpace(kv[0])
	outcome := strings.TrimSpace(kv[1])
	if variable == "" || outcome == "" {
		return Evidence{}, fmt.Errorf("%w: %q (empty variable or outcome)", ErrMalformedQuery, raw)
	}
	return Evidence{Variable: variable, Outcome: outcome}, nil
}
