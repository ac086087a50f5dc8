package bayes

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidNetwork = errors.New("invalid network")
	ErrCyclicGraph    = errors.New("the given graph is not a directed acyclic graph")
	ErrInvalidTable   = errors.New("invalid probability distribution")

	ErrMalformedQuery    = errors.New("malformed query")
	ErrUnknownVariable   = errors.New("unknown variable")
	ErrUnknownOutcome    = errors.New("unknown outcome")
	ErrEvidenceOnQuery   = errors.New("evidence variable equals query variable")
	ErrDuplicateEvidence = errors.New("evidence variable given more than once")
	ErrInvalidOrder      = errors.New("invalid elimination order")

	// ErrZeroEvidence means the evidence has zero probability under the
	// network, so the posterior is undefined.
	ErrZeroEvidence = errors.New("evidence has zero probability")

	// ErrInvariant marks a defect in pruning or ordering, never bad input.
	ErrInvariant = errors.New("elimination invariant violated")
)

// TableError lists every variable whose probability table is invalid.
type TableError struct {
	Variables []string
}

func (e *TableError) Error() string {
	return fmt.Sprintf("%s for variables [%s]", ErrInvalidTable, strings.Join(e.Variables, ", "))
}

func (e *TableError) Unwrap() error { return ErrInvalidTable }

type ErrorKind string

const (
	KindUnknown            ErrorKind = "unknown"
	KindStructural         ErrorKind = "structural"
	KindQueryInput         ErrorKind = "query_input"
	KindDegenerateEvidence ErrorKind = "degenerate_evidence"
	KindInvariant          ErrorKind = "invariant"
)

// Classify maps an error returned by this package onto its category.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrZeroEvidence):
		return KindDegenerateEvidence
	case errors.Is(err, ErrInvariant):
		return KindInvariant
	case errors.Is(err, ErrInvalidNetwork), errors.Is(err, ErrCyclicGraph), errors.Is(err, ErrInvalidTable):
		return KindStructural
	case errors.Is(err, ErrMalformedQuery),
		errors.Is(err, ErrUnknownVariable),
		errors.Is(err, ErrUnknownOutcome),
		errors.Is(err, ErrEvidenceOnQuery),
		errors.Is(err, ErrDuplicateEvidence),
		errors.Is(err, ErrInvalidOrder):
		return KindQueryInput
	default:
		return KindUnknown
	}
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
