package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the identity client.
type Metrics struct {
	SignIns      *prometheus.CounterVec
	Restores     *prometheus.CounterVec
	TokenFetches prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		SignIns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gridview_identity_signins_total",
			Help: "Total number of sign-in and sign-up exchanges by method and result",
		}, []string{"method", "result"}),
		Restores: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gridview_identity_restores_total",
			Help: "Total number of startup session restore attempts by result",
		}, []string{"result"}),
		TokenFetches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gridview_identity_token_fetches_total",
			Help: "Total number of fresh bearer token fetches",
		}),
	}
}

func (m *Metrics) ObserveSignIn(method string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SignIns.WithLabelValues(method, result).Inc()
}

func (m *Metrics) ObserveRestore(restored bool) {
	result := "signed_out"
	if restored {
		result = "restored"
	}
	m.Restores.WithLabelValues(result).Inc()
}

func (m *Metrics) IncrementTokenFetches() {
	m.TokenFetches.Inc()
}
