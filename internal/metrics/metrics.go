// Package metrics exposes Prometheus collectors for sweeps and dashboard evaluations.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/copyleftdev/chemsweep/internal/optimization"
)

const namespace = "chemsweep"

// Sweep outcomes used as the "outcome" label.
const (
	OutcomeOK               = "ok"
	OutcomeInvalidInterval  = "invalid_interval"
	OutcomeObjectiveFailure = "objective_failure"
	OutcomeNoFeasiblePoint  = "no_feasible_point"
	OutcomeCanceled         = "canceled"
	OutcomeError            = "error"
)

// Recorder collects service metrics. A nil *Recorder discards everything.
type Recorder struct {
	sweeps      *prometheus.CounterVec
	points      *prometheus.HistogramVec
	duration    *prometheus.HistogramVec
	evaluations *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Parameter sweeps run, by target and outcome.",
		}, []string{"target", "outcome"}),
		points: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_points",
			Help:      "Grid points evaluated per successful sweep.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 10000},
		}, []string{"target"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of a sweep.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"target"}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Dashboard evaluations, by kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(r.sweeps, r.points, r.duration, r.evaluations)
	}
	return r
}

// Outcome classifies a sweep error into a label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, optimization.ErrInvalidInterval):
		return OutcomeInvalidInterval
	case errors.Is(err, optimization.ErrNoFeasiblePoint):
		return OutcomeNoFeasiblePoint
	case errors.Is(err, optimization.ErrObjectiveEvaluation):
		return OutcomeObjectiveFailure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}

// ObserveSweep records one sweep of target.
func (r *Recorder) ObserveSweep(target string, res *optimization.Result, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	r.sweeps.WithLabelValues(target, Outcome(err)).Inc()
	r.duration.WithLabelValues(target).Observe(elapsed.Seconds())
	if res != nil {
		r.points.WithLabelValues(target).Observe(float64(res.Evaluated))
	}
}

// ObserveEvaluation counts one evaluation of the given kind.
func (r *Recorder) ObserveEvaluation(kind string) {
	if r == nil {
		return
	}
	r.evaluations.WithLabelValues(kind).Inc()
}
