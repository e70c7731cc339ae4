package rcaide

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	segmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rcaide_segments_total",
			Help: "Segments solved, by final solver status",
		},
		[]string{"status"},
	)
	solverEvaluations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rcaide_solver_evaluations",
			Help:    "Residual evaluations per segment solve",
			Buckets: prometheus.ExponentialBuckets(4, 2, 10),
		},
	)
	missionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rcaide_missions_total",
			Help: "Missions evaluated, by outcome",
		},
		[]string{"outcome"},
	)
)

// RegisterMetrics registers the solver metrics on reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{segmentsTotal, solverEvaluations, missionsTotal} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func observeSolve(status Status, evaluations int) {
	segmentsTotal.WithLabelValues(status.String()).Inc()
	solverEvaluations.Observe(float64(evaluations))
}

func observeMission(err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	missionsTotal.WithLabelValues(outcome).Inc()
}
