package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
)

// PrometheusStepObserver records how long each elimination step took
// and how large the product factor it built was. It satisfies
// bayes.StepObserver.
type PrometheusStepObserver struct {
	duration   prometheus.Histogram
	factorSize prometheus.Histogram
	width      prometheus.Histogram
	steps      prometheus.Counter
}

// NewPrometheusStepObserver registers its collectors with reg. A nil reg
// uses the default registerer.
func NewPrometheusStepObserver(reg prometheus.Registerer) *PrometheusStepObserver {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusStepObserver{
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bayes",
			Subsystem: "elimination",
			Name:      "step_duration_seconds",
			Help:      "Duration of one join-and-sum-out step of variable elimination",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		factorSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bayes",
			Subsystem: "elimination",
			Name:      "joined_factor_entries",
			Help:      "Entries in the product factor built before summing a variable out",
			Buckets:   prometheus.ExponentialBuckets(2, 4, 10),
		}),
		width: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bayes",
			Subsystem: "elimination",
			Name:      "joined_factor_width",
			Help:      "Number of variables in the product factor built before summing a variable out",
			Buckets:   prometheus.LinearBuckets(1, 1, 12),
		}),
		steps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "bayes",
			Subsystem: "elimination",
			Name:      "steps_total",
			Help:      "Total variables eliminated across all queries",
		}),
	}
}

func (o *PrometheusStepObserver) ObserveStep(ev bayes.StepEvent) {
	if o == nil {
		return
	}
	o.duration.Observe(ev.Duration.Seconds())
	o.factorSize.Observe(float64(ev.JoinedSize))
	o.width.Observe(float64(ev.JoinedWidth))
	o.steps.Inc()
}
