// Package metrics provides observability for the verification pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks verification outcomes and latency.
type Metrics struct {
	// Claim outcomes by decision and rejection reason. Accepted claims carry
	// an empty reason label.
	Outcomes *prometheus.CounterVec

	// Full pipeline latency.
	VerifyLatency prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rollcall_verify_outcomes_total",
			Help: "Total verification outcomes by decision and rejection reason",
		}, []string{"decision", "reason"}),

		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rollcall_verify_duration_seconds",
			Help:    "Duration of full claim verification including store lookups",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementOutcome records a verification outcome.
func (m *Metrics) IncrementOutcome(decision, reason string) {
	if m != nil {
		m.Outcomes.WithLabelValues(decision, reason).Inc()
	}
}

// ObserveVerifyLatency records the total pipeline duration.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}
