package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
)

var _ bayes.StepObserver = (*PrometheusStepObserver)(nil)

func TestPrometheusStepObserver_CountsSteps(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewPrometheusStepObserver(reg)

	o.ObserveStep(bayes.StepEvent{Variable: "Alarm", Duration: 2 * time.Millisecond, JoinedWidth: 3, JoinedSize: 8})
	o.ObserveStep(bayes.StepEvent{Variable: "Earthquake", Duration: 3 * time.Millisecond, JoinedWidth: 2, JoinedSize: 4})

	if got := testutil.ToFloat64(o.steps); got != 2 {
		t.Fatalf("expected 2 steps, got %v", got)
	}
	for _, name := range []string{
		"bayes_elimination_step_duration_seconds",
		"bayes_elimination_joined_factor_entries",
		"bayes_elimination_joined_factor_width",
	} {
		if got := testutil.CollectAndCount(reg, name); got != 1 {
			t.Fatalf("expected %s registered, got %d series", name, got)
		}
	}
}

func TestPrometheusStepObserver_RecordsFactorSize(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewPrometheusStepObserver(reg)

	o.ObserveStep(bayes.StepEvent{Variable: "Alarm", JoinedWidth: 3, JoinedSize: 8})
	o.ObserveStep(bayes.StepEvent{Variable: "Earthquake", JoinedWidth: 2, JoinedSize: 4})

	want := `
# HELP bayes_elimination_joined_factor_entries Entries in the product factor built before summing a variable out
# TYPE bayes_elimination_joined_factor_entries histogram
bayes_elimination_joined_factor_entries_bucket{le="2"} 0
bayes_elimination_joined_factor_entries_bucket{le="8"} 2
bayes_elimination_joined_factor_entries_bucket{le="32"} 2
bayes_elimination_joined_factor_entries_bucket{le="128"} 2
bayes_elimination_joined_factor_entries_bucket{le="512"} 2
bayes_elimination_joined_factor_entries_bucket{le="2048"} 2
bayes_elimination_joined_factor_entries_bucket{le="8192"} 2
bayes_elimination_joined_factor_entries_bucket{le="32768"} 2
bayes_elimination_joined_factor_entries_bucket{le="131072"} 2
bayes_elimination_joined_factor_entries_bucket{le="524288"} 2
bayes_elimination_joined_factor_entries_bucket{le="+Inf"} 2
bayes_elimination_joined_factor_entries_sum 12
bayes_elimination_joined_factor_entries_count 2
`
	if err := testutil.CollectAndCompare(reg, strings.NewReader(want), "bayes_elimination_joined_factor_entries"); err != nil {
		t.Fatal(err)
	}
}

func TestPrometheusStepObserver_WiredIntoEngine(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewPrometheusStepObserver(reg)

	n, err := bayes.NewNetwork([]bayes.Variable{
		{Name: "A", Outcomes: []string{"T", "F"}, Table: []float64{0.3, 0.7}},
		{Name: "B", Outcomes: []string{"T", "F"}, Parents: []string{"A"}, Table: []float64{0.8, 0.2, 0.1, 0.9}},
		{Name: "C", Outcomes: []string{"T", "F"}, Parents: []string{"B"}, Table: []float64{0.6, 0.4, 0.2, 0.8}},
	})
	if err != nil {
		t.Fatal(err)
	}

	e := bayes.NewEngine(bayes.WithStepObserver(o))
	if _, err := e.Run(n, bayes.Query{Variable: "C", Outcome: "T"}); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(o.steps); got != 2 {
		t.Fatalf("expected A and B eliminated, got %v steps", got)
	}
}

func TestPrometheusStepObserver_NilIsNoop(t *testing.T) {
	var o *PrometheusStepObserver
	o.ObserveStep(bayes.StepEvent{Variable: "A"})
}
