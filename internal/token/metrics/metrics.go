package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TokensMinted   prometheus.Counter
	TokenRequests  prometheus.Counter
	UnknownSession prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		TokensMinted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_token_minted_total",
			Help: "Total number of session tokens minted",
		}),
		TokenRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_token_requests_total",
			Help: "Total number of token polls served",
		}),
		UnknownSession: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_token_unknown_session_total",
			Help: "Total number of token polls for unknown sessions",
		}),
	}
}

func (m *Metrics) IncrementTokensMinted() {
	m.TokensMinted.Inc()
}

func (m *Metrics) IncrementTokenRequests() {
	m.TokenRequests.Inc()
}

func (m *Metrics) IncrementUnknownSession() {
	m.UnknownSession.Inc()
}
