package inferdto

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"testing"

	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
)

func TestQueryRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     QueryRequest
		wantErr bool
	}{
		{name: "ok", req: QueryRequest{Network: "x", Query: "A:T"}},
		{name: "ok_with_format_alias", req: QueryRequest{Network: "x", Query: "A:T", Format: "yml"}},
		{name: "missing_network", req: QueryRequest{Query: "A:T"}, wantErr: true},
		{name: "missing_query", req: QueryRequest{Network: "x"}, wantErr: true},
		{name: "unknown_format", req: QueryRequest{Network: "x", Query: "A:T", Format: "json"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestQueryRequest_ToQuery_MergesEvidence(t *testing.T) {
	req := QueryRequest{
		Query:        "Burglary:T",
		Evidence:     "JohnCalls:T",
		EvidenceExpr: `MaryCalls == "T"`,
		Order:        "Alarm,Earthquake",
	}

	q, err := req.ToQuery()
	if err != nil {
		t.Fatal(err)
	}
	if q.Variable != "Burglary" || q.Outcome != "T" {
		t.Fatalf("unexpected query %+v", q)
	}
	want := []bayes.Evidence{{Variable: "JohnCalls", Outcome: "T"}, {Variable: "MaryCalls", Outcome: "T"}}
	if !slices.Equal(q.Evidence, want) {
		t.Fatalf("expected evidence %v, got %v", want, q.Evidence)
	}
	if !slices.Equal(q.Order, []string{"Alarm", "Earthquake"}) {
		t.Fatalf("unexpected order %v", q.Order)
	}
}

func TestQueryRequest_ToQuery_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  QueryRequest
		want error
	}{
		{name: "query_arity", req: QueryRequest{Query: "A:T:F"}, want: bayes.ErrMalformedQuery},
		{name: "evidence_arity", req: QueryRequest{Query: "A:T", Evidence: "B"}, want: bayes.ErrMalformedQuery},
		{name: "evidence_expr", req: QueryRequest{Query: "A:T", EvidenceExpr: `B != "T"`}, want: bayes.ErrMalformedQuery},
		{name: "order", req: QueryRequest{Query: "A:T", Order: "B,,C"}, want: bayes.ErrInvalidOrder},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.req.ToQuery()
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestQueryRequest_Options(t *testing.T) {
	opts, err := QueryRequest{Format: "graphviz"}.Options()
	if err != nil || opts.Format != bayes.FormatDOT {
		t.Fatalf("expected dot format, got %+v (%v)", opts, err)
	}
	opts, err = QueryRequest{}.Options()
	if err != nil || opts.Format != "" {
		t.Fatalf("expected empty format, got %+v (%v)", opts, err)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("wrap: %w", bayes.ErrUnknownOutcome), want: http.StatusBadRequest},
		{err: bayes.ErrCyclicGraph, want: http.StatusBadRequest},
		{err: &bayes.TableError{Variables: []string{"A"}}, want: http.StatusBadRequest},
		{err: bayes.ErrZeroEvidence, want: http.StatusUnprocessableEntity},
		{err: fmt.Errorf("step: %w", bayes.ErrInvariant), want: http.StatusInternalServerError},
		{err: errors.New("xml syntax error"), want: http.StatusBadRequest},
	}

	for _, tc := range tests {
		if got := Status(tc.err); got != tc.want {
			t.Fatalf("Status(%v): expected %d, got %d", tc.err, tc.want, got)
		}
	}
}
